package gatekeeper

import (
	"context"
	"sync"
	"time"

	"github.com/graphkit/graphkit/auth"
	"github.com/graphkit/graphkit/cache"
	"github.com/graphkit/graphkit/config"
	"github.com/graphkit/graphkit/graph"
	"github.com/graphkit/graphkit/observe"
)

// storeKeyPrefix namespaces persisted sets by application identifier.
const storeKeyPrefix = "gatekeepers."

// ServiceConfig configures a Service.
type ServiceConfig struct {
	Settings  config.Provider
	Factory   *graph.Factory
	Transport graph.Transport
	Store     cache.Store
	Logger    observe.Logger
	Metrics   observe.Metrics

	// Now overrides the clock. Default: time.Now.
	Now func() time.Time
}

// Service keeps feature flags synchronized with the Graph backend. Flags
// are cached per application identifier so distinct app identities (test
// vs. production configuration) never share state.
type Service struct {
	cfg ServiceConfig

	mu      sync.Mutex
	loaders map[string]*cache.Loader[Set]

	// requeryDone has its own lock: the loader consults it from inside its
	// state lock, which must never nest with mu.
	requeryMu   sync.Mutex
	requeryDone map[string]bool // full requery completed since process start
}

// NewService creates a gatekeeper service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.NopMetrics()
	}
	return &Service{
		cfg:         cfg,
		loaders:     make(map[string]*cache.Loader[Set]),
		requeryDone: make(map[string]bool),
	}
}

// Load returns the gatekeepers for the configured application, refreshing
// them when stale. The persistent mirror is seeded synchronously on every
// call before staleness is consulted, so the last persisted flags serve
// readers even if the refresh is skipped or fails.
func (s *Service) Load(ctx context.Context) (Set, error) {
	appID := s.cfg.Settings().AppID
	loader := s.loaderFor(appID)
	loader.Seed()
	return loader.EnsureFresh(ctx, nil)
}

// LoadAsync runs Load on its own goroutine and delivers the outcome to
// onComplete, which may be nil.
func (s *Service) LoadAsync(ctx context.Context, onComplete func(Set, error)) {
	go func() {
		set, err := s.Load(ctx)
		if onComplete != nil {
			onComplete(set, err)
		}
	}()
}

// Get reports the enabled state of one gatekeeper from the cached set.
// It never triggers a fetch; absent flags report (false, false).
func (s *Service) Get(name string) (enabled, ok bool) {
	loader := s.loaderFor(s.cfg.Settings().AppID)
	loader.Seed()
	set, ok := loader.Snapshot()
	if !ok {
		return false, false
	}
	return set.Get(name)
}

// Close detaches every loader. Outstanding fetches run to completion but
// no longer mutate state.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.loaders {
		l.Close()
	}
}

func (s *Service) loaderFor(appID string) *cache.Loader[Set] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if loader, ok := s.loaders[appID]; ok {
		return loader
	}

	loader, err := cache.NewLoader(cache.LoaderConfig[Set]{
		Kind:     "gatekeeper",
		Window:   cache.GatekeeperWindow,
		StoreKey: storeKeyPrefix + appID,
		Store:    s.cfg.Store,
		Encode:   encodeStored,
		Decode:   decodeStored,
		Now:      s.cfg.Now,
		Logger:   s.cfg.Logger.WithCategory(observe.CategoryGatekeeper),
		Metrics:  s.cfg.Metrics,
		Fetch: func(ctx context.Context, _ *auth.Credential) (Set, error) {
			return s.fetch(ctx, appID)
		},
		Fresh: func(_ Set, _ *auth.Credential) bool {
			s.requeryMu.Lock()
			defer s.requeryMu.Unlock()
			return s.requeryDone[appID]
		},
		OnUpdate: func(_ *Set, _ Set) {
			s.requeryMu.Lock()
			defer s.requeryMu.Unlock()
			s.requeryDone[appID] = true
		},
	})
	if err != nil {
		// Only reachable with a nil fetch func, which we always supply.
		panic(err)
	}
	s.loaders[appID] = loader
	return loader
}

// fetch performs one full requery of the gatekeeper edge. Refreshes never
// invalidate the credential and never enter error recovery.
func (s *Service) fetch(ctx context.Context, appID string) (Set, error) {
	req := s.cfg.Factory.New(graph.RequestConfig{
		Path: graph.Gatekeepers(appID),
		Params: []graph.Param{
			{Key: "fields", Value: "gatekeepers"},
		},
		Flags: graph.FlagSkipCredential |
			graph.FlagNoInvalidateOnAuthError |
			graph.FlagDisableErrorRecovery,
	})
	raw, err := s.cfg.Transport.Execute(ctx, req)
	if err != nil {
		return nil, err
	}
	return DecodeSet(raw)
}
