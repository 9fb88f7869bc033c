package bridge

import (
	"errors"
	"net/url"
	"testing"

	"github.com/graphkit/graphkit/config"
)

// fakeChecker is a configurable SchemeChecker for tests.
type fakeChecker struct {
	canOpen   bool
	declared  bool
	probes    []string
	queryName string
}

func (f *fakeChecker) CanOpen(u string) bool {
	f.probes = append(f.probes, u)
	return f.canOpen
}

func (f *fakeChecker) ApplicationQueryScheme() string { return f.queryName }
func (f *fakeChecker) RequiredSchemesDeclared() bool  { return f.declared }

func testSettings() config.Provider {
	return config.Static(config.Settings{
		AppID:       "123456",
		ClientToken: "secret-token",
	})
}

func TestBuildRequestURL(t *testing.T) {
	checker := &fakeChecker{canOpen: true, declared: true}
	builder := NewURLBuilder(testSettings(), checker, nil)

	req := NewRequest(RequestConfig{
		Method:  "share",
		Version: "20210101",
		Scheme:  "fbapi",
		Params:  map[string]any{"link": "https://example.com/page"},
	})

	built, err := builder.BuildRequestURL(req)
	if err != nil {
		t.Fatalf("BuildRequestURL failed: %v", err)
	}

	if built.Scheme != "fbapi" {
		t.Errorf("Scheme = %q, want fbapi", built.Scheme)
	}
	if built.Host != "dialog" {
		t.Errorf("Host = %q, want dialog", built.Host)
	}
	if built.Path != "/share" {
		t.Errorf("Path = %q, want /share", built.Path)
	}

	query := built.Query()
	if got := query.Get("action_id"); got != req.ActionID {
		t.Errorf("action_id = %q, want %q", got, req.ActionID)
	}
	if got := query.Get("version"); got != "20210101" {
		t.Errorf("version = %q, want 20210101", got)
	}
	if got := query.Get("cipher_key"); got != "secret-token" {
		t.Errorf("cipher_key = %q, want secret-token", got)
	}
	if got := query.Get("app_id"); got != "123456" {
		t.Errorf("app_id = %q, want 123456", got)
	}
	if got := query.Get("link"); got != "https://example.com/page" {
		t.Errorf("link = %q, want passthrough string", got)
	}
	if query.Has("scheme_suffix") {
		t.Error("scheme_suffix present without a configured suffix")
	}
}

func TestBuildRequestURL_SchemeSuffix(t *testing.T) {
	settings := config.Static(config.Settings{
		AppID:           "123456",
		ClientToken:     "secret-token",
		URLSchemeSuffix: "beta",
	})
	builder := NewURLBuilder(settings, &fakeChecker{canOpen: true, declared: true}, nil)

	req := NewRequest(RequestConfig{ActionID: "fixed-id", Method: "share", Scheme: "fbapi"})
	built, err := builder.BuildRequestURL(req)
	if err != nil {
		t.Fatalf("BuildRequestURL failed: %v", err)
	}
	if got := built.Query().Get("scheme_suffix"); got != "beta" {
		t.Errorf("scheme_suffix = %q, want beta", got)
	}

	// Changing only the suffix leaves every other query item byte-identical.
	plain := NewURLBuilder(testSettings(), &fakeChecker{canOpen: true, declared: true}, nil)
	without, err := plain.BuildRequestURL(req)
	if err != nil {
		t.Fatalf("BuildRequestURL failed: %v", err)
	}
	withQuery := built.Query()
	withQuery.Del("scheme_suffix")
	if withQuery.Encode() != without.Query().Encode() {
		t.Errorf("query items differ beyond the suffix:\n%s\n%s", withQuery.Encode(), without.Query().Encode())
	}
}

func TestBuildRequestURL_DefaultsToConfiguredScheme(t *testing.T) {
	settings := config.Static(config.Settings{
		AppID:        "123456",
		ClientToken:  "secret-token",
		BridgeScheme: "fbapi",
	})
	builder := NewURLBuilder(settings, &fakeChecker{canOpen: true, declared: true}, nil)

	built, err := builder.BuildRequestURL(NewRequest(RequestConfig{Method: "share"}))
	if err != nil {
		t.Fatalf("BuildRequestURL failed: %v", err)
	}
	if built.Scheme != "fbapi" {
		t.Errorf("Scheme = %q, want the configured bridge scheme", built.Scheme)
	}
}

func TestBuildRequestURL_SchemeUnavailable(t *testing.T) {
	checker := &fakeChecker{canOpen: false, declared: true}
	builder := NewURLBuilder(testSettings(), checker, nil)

	_, err := builder.BuildRequestURL(NewRequest(RequestConfig{Method: "share", Scheme: "fbapi"}))
	if !errors.Is(err, ErrSchemeUnavailable) {
		t.Fatalf("err = %v, want ErrSchemeUnavailable", err)
	}
	if len(checker.probes) != 1 || checker.probes[0] != "fbapi://dialog" {
		t.Errorf("probes = %v, want [fbapi://dialog]", checker.probes)
	}
}

func TestBuildRequestURL_WebSchemeSkipsProbe(t *testing.T) {
	checker := &fakeChecker{canOpen: false, declared: true}
	builder := NewURLBuilder(testSettings(), checker, nil)

	built, err := builder.BuildRequestURL(NewRequest(RequestConfig{Method: "share", Scheme: "https"}))
	if err != nil {
		t.Fatalf("BuildRequestURL failed: %v", err)
	}
	if len(checker.probes) != 0 {
		t.Errorf("web schemes must not probe openability, got %v", checker.probes)
	}
	if built.Scheme != "https" {
		t.Errorf("Scheme = %q, want https", built.Scheme)
	}
}

func TestBuildRequestURL_SchemesNotDeclared(t *testing.T) {
	builder := NewURLBuilder(testSettings(), &fakeChecker{canOpen: true, declared: false}, nil)

	_, err := builder.BuildRequestURL(NewRequest(RequestConfig{Method: "share", Scheme: "fbapi"}))
	if !errors.Is(err, ErrInvalidURLScheme) {
		t.Errorf("err = %v, want ErrInvalidURLScheme", err)
	}
}

func TestBuildRequestURL_MissingAppID(t *testing.T) {
	settings := config.Static(config.Settings{AppID: "  ", ClientToken: "secret"})
	builder := NewURLBuilder(settings, &fakeChecker{canOpen: true, declared: true}, nil)

	_, err := builder.BuildRequestURL(NewRequest(RequestConfig{Method: "share", Scheme: "fbapi"}))
	if !errors.Is(err, ErrInvalidAppID) {
		t.Errorf("err = %v, want ErrInvalidAppID", err)
	}
}

func TestBuildRequestURL_Deterministic(t *testing.T) {
	builder := NewURLBuilder(testSettings(), &fakeChecker{canOpen: true, declared: true}, nil)
	req := NewRequest(RequestConfig{
		ActionID: "fixed-id",
		Method:   "share",
		Version:  "20210101",
		Scheme:   "fbapi",
		Params:   map[string]any{"z": "last", "a": "first", "m": 42},
	})

	first, err := builder.BuildRequestURL(req)
	if err != nil {
		t.Fatalf("BuildRequestURL failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := builder.BuildRequestURL(req)
		if err != nil {
			t.Fatalf("BuildRequestURL failed: %v", err)
		}
		if again.String() != first.String() {
			t.Fatalf("URL differs across builds:\n%s\n%s", first, again)
		}
	}
}

func TestBuildRequestURL_JSONParams(t *testing.T) {
	builder := NewURLBuilder(testSettings(), &fakeChecker{canOpen: true, declared: true}, nil)
	req := NewRequest(RequestConfig{
		Method: "share",
		Scheme: "fbapi",
		Params: map[string]any{
			"count": 3,
			"tags":  []string{"a", "b"},
		},
	})

	built, err := builder.BuildRequestURL(req)
	if err != nil {
		t.Fatalf("BuildRequestURL failed: %v", err)
	}
	query := built.Query()
	if got := query.Get("count"); got != "3" {
		t.Errorf("count = %q, want 3", got)
	}
	if got := query.Get("tags"); got != `["a","b"]` {
		t.Errorf("tags = %q, want JSON array", got)
	}
}

func TestBuildRequestURL_UnencodableParam(t *testing.T) {
	builder := NewURLBuilder(testSettings(), &fakeChecker{canOpen: true, declared: true}, nil)
	req := NewRequest(RequestConfig{
		Method: "share",
		Scheme: "fbapi",
		Params: map[string]any{"bad": func() {}},
	})

	_, err := builder.BuildRequestURL(req)
	if !errors.Is(err, ErrURLBuildFailed) {
		t.Errorf("err = %v, want ErrURLBuildFailed", err)
	}
}

func TestBuildRequestURL_ParsesBack(t *testing.T) {
	builder := NewURLBuilder(testSettings(), &fakeChecker{canOpen: true, declared: true}, nil)
	built, err := builder.BuildRequestURL(NewRequest(RequestConfig{Method: "share", Scheme: "fbapi"}))
	if err != nil {
		t.Fatalf("BuildRequestURL failed: %v", err)
	}
	if _, err := url.Parse(built.String()); err != nil {
		t.Errorf("built URL does not round-trip through url.Parse: %v", err)
	}
}
