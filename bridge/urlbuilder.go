package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/graphkit/graphkit/config"
	"github.com/graphkit/graphkit/observe"
)

// Query parameter names injected into every bridge URL.
const (
	paramActionID     = "action_id"
	paramVersion      = "version"
	paramCipherKey    = "cipher_key"
	paramAppID        = "app_id"
	paramSchemeSuffix = "scheme_suffix"
)

// bridgeHost is the well-known host component of bridge URLs.
const bridgeHost = "dialog"

// SchemeChecker reports the host application's URL-scheme registration
// state to the builder.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: methods never error; a negative answer is a terminal
//   validation failure for the caller.
type SchemeChecker interface {
	// CanOpen reports whether the platform can open the given URL.
	CanOpen(url string) bool

	// ApplicationQueryScheme returns the scheme the host uses to query
	// companion applications.
	ApplicationQueryScheme() string

	// RequiredSchemesDeclared reports whether the host has declared the
	// URL-scheme entries bridge calls require.
	RequiredSchemesDeclared() bool
}

// URLBuilder constructs validated, security-augmented bridge request URLs.
type URLBuilder struct {
	settings config.Provider
	checker  SchemeChecker
	logger   observe.Logger
}

// NewURLBuilder creates a builder. logger may be nil.
func NewURLBuilder(settings config.Provider, checker SchemeChecker, logger observe.Logger) *URLBuilder {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &URLBuilder{
		settings: settings,
		checker:  checker,
		logger:   logger.WithCategory(observe.CategoryBridge),
	}
}

// isNativeScheme reports whether scheme targets a companion application
// rather than the web.
func isNativeScheme(scheme string) bool {
	return scheme != "" && !strings.HasPrefix(scheme, "http")
}

// BuildRequestURL builds the fully-qualified URL for req. Scheme
// openability is verified before anything is built, so a misconfigured
// host never constructs partially valid state. The returned URL carries
// the shared-secret and application-identifier parameters; a scheme_suffix
// parameter is appended only when one is configured. A request without a
// scheme targets the configured bridge scheme.
func (b *URLBuilder) BuildRequestURL(req *Request) (*url.URL, error) {
	settings := b.settings()

	scheme := req.Scheme
	if scheme == "" {
		scheme = settings.BridgeScheme
	}

	if isNativeScheme(scheme) {
		probe := scheme + "://" + bridgeHost
		if !b.checker.CanOpen(probe) {
			return nil, fmt.Errorf("%w: %s", ErrSchemeUnavailable, scheme)
		}
	}

	base, err := encodeBaseURL(req)
	if err != nil {
		return nil, err
	}

	if !b.checker.RequiredSchemesDeclared() {
		return nil, ErrInvalidURLScheme
	}

	appID := strings.TrimSpace(settings.AppID)
	if appID == "" {
		return nil, ErrInvalidAppID
	}

	query, err := url.ParseQuery(base.RawQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrURLBuildFailed, err)
	}
	query.Set(paramCipherKey, settings.ClientToken)
	query.Set(paramAppID, appID)
	if settings.URLSchemeSuffix != "" {
		query.Set(paramSchemeSuffix, settings.URLSchemeSuffix)
	}

	built := &url.URL{
		Scheme:   scheme,
		Host:     base.Host,
		Path:     base.Path,
		RawQuery: query.Encode(),
	}
	if built.Scheme == "" || built.Host == "" {
		return nil, ErrURLBuildFailed
	}

	b.logger.Debug(context.Background(), "bridge URL built",
		observe.Field{Key: "method", Value: req.Method},
		observe.Field{Key: "action_id", Value: req.ActionID},
	)
	return built, nil
}

// encodeBaseURL builds the unsecured base URL from the action identifier,
// method name, method version and parameters.
func encodeBaseURL(req *Request) (*url.URL, error) {
	query := url.Values{}
	query.Set(paramActionID, req.ActionID)
	if req.Version != "" {
		query.Set(paramVersion, req.Version)
	}
	for key, value := range req.Params {
		encoded, err := encodeParam(value)
		if err != nil {
			return nil, fmt.Errorf("%w: parameter %q: %v", ErrURLBuildFailed, key, err)
		}
		query.Set(key, encoded)
	}

	return &url.URL{
		Scheme:   req.Scheme,
		Host:     bridgeHost,
		Path:     "/" + req.Method,
		RawQuery: query.Encode(),
	}, nil
}

// encodeParam renders a parameter value for the query string. Strings pass
// through; everything else is JSON-encoded.
func encodeParam(value any) (string, error) {
	if s, ok := value.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
