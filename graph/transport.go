package graph

import (
	"context"
	"encoding/json"
	"fmt"
)

// Transport executes a Request against the Graph backend and returns the
// raw response body. It is the network collaborator of this layer; the
// caches and services depend only on this interface.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Execute must honor cancellation/deadlines.
// - Errors: backend-reported failures are returned as *APIError;
//   everything else (connectivity, encoding) as ordinary errors.
type Transport interface {
	Execute(ctx context.Context, req *Request) (json.RawMessage, error)
}

// ErrorCategory classifies a backend error for recovery decisions.
type ErrorCategory int

const (
	// CategoryOther covers errors with no automatic remedy.
	CategoryOther ErrorCategory = iota
	// CategoryTransient covers errors safe to retry as-is.
	CategoryTransient
	// CategoryThrottling covers rate-limit errors, retryable after backoff.
	CategoryThrottling
	// CategoryLoginRecoverable covers auth errors remediable by a new login.
	CategoryLoginRecoverable
)

// Backend error codes with known recovery semantics.
var (
	transientCodes        = map[int]bool{1: true, 2: true}
	throttlingCodes       = map[int]bool{4: true, 9: true, 17: true, 341: true}
	loginRecoverableCodes = map[int]bool{102: true, 190: true}
	transientSubcodes     = map[int]bool{2108006: true}
)

// APIError is a structured error reported by the Graph backend.
type APIError struct {
	Code       int    `json:"code"`
	Subcode    int    `json:"error_subcode"`
	Type       string `json:"type"`
	Message    string `json:"message"`
	UserTitle  string `json:"error_user_title"`
	UserMsg    string `json:"error_user_msg"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph: backend error %d (subcode %d): %s", e.Code, e.Subcode, e.Message)
}

// Category classifies the error for the recovery processor.
func (e *APIError) Category() ErrorCategory {
	switch {
	case transientCodes[e.Code] || transientSubcodes[e.Subcode]:
		return CategoryTransient
	case throttlingCodes[e.Code]:
		return CategoryThrottling
	case loginRecoverableCodes[e.Code]:
		return CategoryLoginRecoverable
	default:
		return CategoryOther
	}
}

// IsAuthError reports whether the error invalidates the credential used.
func (e *APIError) IsAuthError() bool {
	return e.Category() == CategoryLoginRecoverable
}
