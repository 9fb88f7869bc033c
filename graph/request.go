package graph

import (
	"io"

	"github.com/graphkit/graphkit/auth"
	"github.com/graphkit/graphkit/config"
)

// Method is the HTTP verb of a Graph request.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodDelete Method = "DELETE"
)

// Param is one request parameter. Parameters keep their insertion order.
type Param struct {
	Key   string
	Value any
}

// Attachment is a binary payload parameter. Its presence switches the
// transport to multipart encoding.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Request is an immutable description of a single Graph API call.
// SetRecoverable is the single permitted mutation.
type Request struct {
	path       Path
	params     []Param
	method     Method
	credential *auth.Credential
	version    string
	flags      Flags
}

// RequestConfig carries caller intent for building a Request. Zero-value
// fields take factory defaults.
type RequestConfig struct {
	Path       Path
	Params     []Param
	Method     Method
	Credential *auth.Credential
	Version    string
	Flags      Flags
}

// Factory builds Requests with client-wide defaults applied: verb GET,
// version from settings, credential from the provider when the caller
// supplies none and FlagSkipCredential is absent.
type Factory struct {
	settings    config.Provider
	credentials auth.Provider
}

// NewFactory creates a request factory. credentials may be nil when the
// host never relies on a default credential.
func NewFactory(settings config.Provider, credentials auth.Provider) *Factory {
	return &Factory{settings: settings, credentials: credentials}
}

// New builds an immutable Request from cfg. No I/O and no network
// validation happen here; a Request only captures intent.
func (f *Factory) New(cfg RequestConfig) *Request {
	settings := f.settings()

	r := &Request{
		path:       cfg.Path,
		params:     append([]Param(nil), cfg.Params...),
		method:     cfg.Method,
		credential: cfg.Credential,
		version:    cfg.Version,
		flags:      cfg.Flags,
	}
	if r.method == "" {
		r.method = MethodGet
	}
	if r.version == "" {
		r.version = settings.Normalize().APIVersion
	}
	if r.credential == nil && !r.flags.Has(FlagSkipCredential) && f.credentials != nil {
		r.credential = f.credentials.Current()
	}
	// A global recovery kill-switch overrides caller intent at construction.
	if settings.DisableErrorRecovery {
		r.flags = r.flags.With(FlagDisableErrorRecovery)
	}
	return r
}

// Path returns the target path expression.
func (r *Request) Path() Path { return r.path }

// Params returns a copy of the ordered parameter list.
func (r *Request) Params() []Param {
	return append([]Param(nil), r.params...)
}

// Method returns the HTTP verb.
func (r *Request) Method() Method { return r.method }

// Credential returns the credential the request was built with, or nil.
func (r *Request) Credential() *auth.Credential { return r.credential }

// Version returns the API version prefix.
func (r *Request) Version() string { return r.version }

// Flags returns the behavior flag set.
func (r *Request) Flags() Flags { return r.flags }

// HasAttachments reports whether any parameter carries a binary payload.
// The transport uses it to choose multipart over query encoding, without
// inspecting the network layer.
func (r *Request) HasAttachments() bool {
	for _, p := range r.params {
		switch p.Value.(type) {
		case Attachment, *Attachment, []byte, io.Reader:
			return true
		}
	}
	return false
}

// SetRecoverable toggles only FlagDisableErrorRecovery; no other flags or
// fields are touched.
func (r *Request) SetRecoverable(enabled bool) {
	if enabled {
		r.flags = r.flags.Without(FlagDisableErrorRecovery)
	} else {
		r.flags = r.flags.With(FlagDisableErrorRecovery)
	}
}
