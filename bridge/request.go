package bridge

import (
	"github.com/google/uuid"
)

// Request describes one inter-process bridge call. It is created once per
// call, consumed by the URL builder, and never mutated.
type Request struct {
	// ActionID uniquely identifies this call for idempotency tracking on
	// the receiving side.
	ActionID string

	// Method is the bridge method name.
	Method string

	// Version is the bridge method version.
	Version string

	// Params are the method arguments.
	Params map[string]any

	// Scheme is the target application's custom URL scheme.
	Scheme string

	// UserInfo carries caller context returned untouched with the response.
	UserInfo map[string]any
}

// RequestConfig carries caller intent for building a Request.
type RequestConfig struct {
	ActionID string // generated when empty
	Method   string
	Version  string
	Params   map[string]any
	Scheme   string
	UserInfo map[string]any
}

// NewRequest builds a Request, generating a fresh ActionID when none is
// supplied so every call is individually trackable.
func NewRequest(cfg RequestConfig) *Request {
	actionID := cfg.ActionID
	if actionID == "" {
		actionID = uuid.NewString()
	}
	return &Request{
		ActionID: actionID,
		Method:   cfg.Method,
		Version:  cfg.Version,
		Params:   cfg.Params,
		Scheme:   cfg.Scheme,
		UserInfo: cfg.UserInfo,
	}
}
