package gatekeeper

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/graphkit/graphkit/cache"
	"github.com/graphkit/graphkit/config"
	"github.com/graphkit/graphkit/graph"
)

// fakeTransport records executed requests and replays canned responses.
type fakeTransport struct {
	mu       sync.Mutex
	requests []*graph.Request
	response json.RawMessage
	err      error
}

func (f *fakeTransport) Execute(_ context.Context, req *graph.Request) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func (f *fakeTransport) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeTransport) last() *graph.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

const gatekeeperEnvelope = `{"data":[{"gatekeepers":[
	{"key":"app_events_enabled","value":true},
	{"key":"kill_switch","value":false}
]}]}`

func newTestService(t *testing.T, transport *fakeTransport, store cache.Store) *Service {
	t.Helper()
	settings := config.Static(config.Settings{AppID: "123", ClientToken: "ct"})
	svc := NewService(ServiceConfig{
		Settings:  settings,
		Factory:   graph.NewFactory(settings, nil),
		Transport: transport,
		Store:     store,
	})
	t.Cleanup(svc.Close)
	return svc
}

func TestService_LoadFetchesOnce(t *testing.T) {
	transport := &fakeTransport{response: json.RawMessage(gatekeeperEnvelope)}
	svc := newTestService(t, transport, nil)

	set, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if enabled, ok := set.Get("app_events_enabled"); !ok || !enabled {
		t.Errorf("app_events_enabled = %v, %v; want true, true", enabled, ok)
	}
	if enabled, ok := set.Get("kill_switch"); !ok || enabled {
		t.Errorf("kill_switch = %v, %v; want false, true", enabled, ok)
	}

	// Fresh within the window and after a completed requery: no second fetch.
	if _, err := svc.Load(context.Background()); err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if transport.calls() != 1 {
		t.Errorf("transport called %d times, want 1", transport.calls())
	}
}

func TestService_FetchRequestShape(t *testing.T) {
	transport := &fakeTransport{response: json.RawMessage(gatekeeperEnvelope)}
	svc := newTestService(t, transport, nil)

	if _, err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	req := transport.last()
	if req == nil {
		t.Fatal("no request executed")
	}
	if got := req.Path().String(); got != "123/mobile_sdk_gk" {
		t.Errorf("path = %q, want 123/mobile_sdk_gk", got)
	}
	want := graph.FlagSkipCredential | graph.FlagNoInvalidateOnAuthError | graph.FlagDisableErrorRecovery
	if req.Flags() != want {
		t.Errorf("flags = %v, want %v", req.Flags(), want)
	}
	if req.Credential() != nil {
		t.Error("gatekeeper refresh must not carry a credential")
	}
	params := req.Params()
	if len(params) != 1 || params[0].Key != "fields" || params[0].Value != "gatekeepers" {
		t.Errorf("params = %v, want [{fields gatekeepers}]", params)
	}
}

func TestService_PersistedValueServedOnFailure(t *testing.T) {
	store := cache.NewMemoryStore()
	persisted, _ := encodeStored(Set{{Name: "cached_flag", Enabled: true}})
	if err := store.Write("gatekeepers.123", persisted); err != nil {
		t.Fatal(err)
	}

	transport := &fakeTransport{err: errors.New("backend down")}
	svc := newTestService(t, transport, store)

	set, err := svc.Load(context.Background())
	var fetchErr *cache.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("err = %v, want *cache.FetchError", err)
	}
	if enabled, ok := set.Get("cached_flag"); !ok || !enabled {
		t.Errorf("persisted flag not served on fetch failure: %v, %v", enabled, ok)
	}
}

func TestService_PersistedValueDoesNotSuppressRequery(t *testing.T) {
	store := cache.NewMemoryStore()
	persisted, _ := encodeStored(Set{{Name: "cached_flag", Enabled: true}})
	if err := store.Write("gatekeepers.123", persisted); err != nil {
		t.Fatal(err)
	}

	transport := &fakeTransport{response: json.RawMessage(gatekeeperEnvelope)}
	svc := newTestService(t, transport, store)

	set, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	// The requery replaces the persisted value.
	if _, ok := set.Get("cached_flag"); ok {
		t.Error("stale persisted flag survived a successful requery")
	}
	if transport.calls() != 1 {
		t.Errorf("transport called %d times, want 1", transport.calls())
	}
}

func TestService_SuccessfulLoadPersists(t *testing.T) {
	store := cache.NewMemoryStore()
	transport := &fakeTransport{response: json.RawMessage(gatekeeperEnvelope)}
	svc := newTestService(t, transport, store)

	if _, err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	data, ok := store.Read("gatekeepers.123")
	if !ok {
		t.Fatal("successful load did not persist the set")
	}
	set, err := decodeStored(data)
	if err != nil {
		t.Fatalf("decoding persisted set: %v", err)
	}
	if enabled, ok := set.Get("app_events_enabled"); !ok || !enabled {
		t.Errorf("persisted set = %v, missing app_events_enabled", set)
	}
}

func TestService_GetNeverFetches(t *testing.T) {
	store := cache.NewMemoryStore()
	persisted, _ := encodeStored(Set{{Name: "cached_flag", Enabled: true}})
	if err := store.Write("gatekeepers.123", persisted); err != nil {
		t.Fatal(err)
	}

	transport := &fakeTransport{response: json.RawMessage(gatekeeperEnvelope)}
	svc := newTestService(t, transport, store)

	enabled, ok := svc.Get("cached_flag")
	if !ok || !enabled {
		t.Errorf("Get(cached_flag) = %v, %v; want true, true", enabled, ok)
	}
	if _, ok := svc.Get("absent_flag"); ok {
		t.Error("Get on absent flag should report ok=false")
	}
	if transport.calls() != 0 {
		t.Errorf("Get triggered %d fetches, want 0", transport.calls())
	}
}

func TestService_GetWithoutAnyValue(t *testing.T) {
	svc := newTestService(t, &fakeTransport{}, nil)
	if enabled, ok := svc.Get("anything"); enabled || ok {
		t.Errorf("Get with no cached set = %v, %v; want false, false", enabled, ok)
	}
}

func TestService_PerApplicationIsolation(t *testing.T) {
	var mu sync.Mutex
	appID := "app-a"
	settings := config.Provider(func() config.Settings {
		mu.Lock()
		defer mu.Unlock()
		return config.Settings{AppID: appID, ClientToken: "ct"}
	})

	transport := &fakeTransport{response: json.RawMessage(gatekeeperEnvelope)}
	svc := NewService(ServiceConfig{
		Settings:  settings,
		Factory:   graph.NewFactory(settings, nil),
		Transport: transport,
	})
	defer svc.Close()

	if _, err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load for app-a failed: %v", err)
	}

	mu.Lock()
	appID = "app-b"
	mu.Unlock()

	if _, err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load for app-b failed: %v", err)
	}

	// Distinct app identities never share cached state: each got its own fetch.
	if transport.calls() != 2 {
		t.Errorf("transport called %d times, want 2", transport.calls())
	}
	if got := transport.last().Path().String(); got != "app-b/mobile_sdk_gk" {
		t.Errorf("second fetch path = %q, want app-b/mobile_sdk_gk", got)
	}
}

func TestService_LoadAsync(t *testing.T) {
	transport := &fakeTransport{response: json.RawMessage(gatekeeperEnvelope)}
	svc := newTestService(t, transport, nil)

	done := make(chan struct{})
	var got Set
	var gotErr error
	svc.LoadAsync(context.Background(), func(set Set, err error) {
		got, gotErr = set, err
		close(done)
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("LoadAsync callback never fired")
	}
	if gotErr != nil {
		t.Fatalf("LoadAsync delivered error: %v", gotErr)
	}
	if enabled, ok := got.Get("app_events_enabled"); !ok || !enabled {
		t.Errorf("LoadAsync set = %v, missing app_events_enabled", got)
	}
}

func TestService_CloseStopsMutation(t *testing.T) {
	transport := &fakeTransport{response: json.RawMessage(gatekeeperEnvelope)}
	svc := newTestService(t, transport, nil)

	if _, err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	svc.Close()

	if _, err := svc.Load(context.Background()); !errors.Is(err, cache.ErrClosed) {
		t.Errorf("Load after Close: err = %v, want ErrClosed", err)
	}
}
