package profile

import (
	"context"
	"sync"
	"time"

	"github.com/graphkit/graphkit/auth"
	"github.com/graphkit/graphkit/cache"
	"github.com/graphkit/graphkit/config"
	"github.com/graphkit/graphkit/graph"
	"github.com/graphkit/graphkit/notify"
	"github.com/graphkit/graphkit/observe"
)

// autoUpdateKey identifies this service's credential-change subscription.
// A fixed key makes repeated enable/disable toggles idempotent.
const autoUpdateKey = "graphkit.profile.autoupdate"

// ServiceConfig configures a Service.
type ServiceConfig struct {
	Settings    config.Provider
	Factory     *graph.Factory
	Transport   graph.Transport
	Credentials auth.Provider
	Channel     notify.Channel
	Store       cache.Store
	Logger      observe.Logger
	Metrics     observe.Metrics

	// Now overrides the clock. Default: time.Now.
	Now func() time.Time
}

// Service keeps the current user's profile synchronized with the Graph
// backend and notifies observers when it changes.
type Service struct {
	cfg    ServiceConfig
	loader *cache.Loader[*Profile]
	logger observe.Logger

	mu         sync.Mutex
	autoUpdate bool
}

// NewService creates a profile service. The persistent mirror is seeded
// immediately so a cold start serves the last known profile before the
// first refresh completes.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.NopMetrics()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Service{cfg: cfg, logger: cfg.Logger.WithCategory(observe.CategoryProfile)}

	loader, err := cache.NewLoader(cache.LoaderConfig[*Profile]{
		Kind:    "profile",
		Window:  cache.ProfileWindow,
		Store:   cfg.Store,
		Encode:  encodeStored,
		Decode:  decodeStored,
		Now:     cfg.Now,
		Logger:  s.logger,
		Metrics: cfg.Metrics,
		Fetch:   s.fetch,
		Fresh: func(p *Profile, cred *auth.Credential) bool {
			// A profile owned by a different identity than the credential
			// in use is never fresh, whatever its age.
			return p != nil && cred != nil && p.ID == cred.OwnerID()
		},
		RefreshedAt: func(p *Profile) time.Time {
			if p == nil {
				return time.Time{}
			}
			return p.FetchedAt
		},
		OnUpdate: s.notifyChanged,
	})
	if err != nil {
		// Only reachable with a nil fetch func, which we always supply.
		panic(err)
	}
	s.loader = loader
	s.loader.Seed()
	return s
}

// Load returns the current user's profile, refreshing it when stale or
// when the cached profile belongs to a different identity than cred. When
// cred is nil the provider's current credential is used; with none
// available, ErrCredentialRequired is returned synchronously and no
// network call is made.
func (s *Service) Load(ctx context.Context, cred *auth.Credential) (*Profile, error) {
	if cred == nil && s.cfg.Credentials != nil {
		cred = s.cfg.Credentials.Current()
	}
	if cred == nil {
		return nil, auth.ErrCredentialRequired
	}

	// An identity mismatch also discards the stored refresh baseline; pure
	// time staleness leaves it to the refresh outcome.
	if current, ok := s.loader.Snapshot(); ok && current != nil && current.ID != cred.OwnerID() {
		s.loader.Invalidate()
	}

	return s.loader.EnsureFresh(ctx, cred)
}

// LoadAsync runs Load on its own goroutine and delivers the outcome to
// onComplete, which may be nil.
func (s *Service) LoadAsync(ctx context.Context, cred *auth.Credential, onComplete func(*Profile, error)) {
	go func() {
		p, err := s.Load(ctx, cred)
		if onComplete != nil {
			onComplete(p, err)
		}
	}()
}

// Current returns the cached profile without triggering a fetch.
func (s *Service) Current() (*Profile, bool) {
	p, ok := s.loader.Snapshot()
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}

// SetCurrent replaces the cached profile, persists it and posts a change
// notification. Setting the same value twice posts two notifications, each
// with the then-previous value.
func (s *Service) SetCurrent(ctx context.Context, p *Profile) {
	s.loader.Put(ctx, p)
}

// EnableAutoUpdate subscribes the service to credential changes so the
// profile reloads automatically when the identity changes. Enabling or
// disabling repeatedly is idempotent; toggling never accumulates duplicate
// observer registrations.
func (s *Service) EnableAutoUpdate(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.Channel == nil || enabled == s.autoUpdate {
		return
	}
	s.autoUpdate = enabled

	if !enabled {
		s.cfg.Channel.Unobserve(notify.CredentialChanged, autoUpdateKey)
		return
	}
	s.cfg.Channel.Observe(notify.CredentialChanged, autoUpdateKey, func(change notify.Change) {
		cred, _ := change.Current.(*auth.Credential)
		if cred == nil {
			return
		}
		if current, ok := s.Current(); ok && current.ID == cred.OwnerID() {
			return
		}
		s.LoadAsync(context.Background(), cred, nil)
	})
}

// Close detaches the service from its cache. An outstanding fetch runs to
// completion but no longer mutates state.
func (s *Service) Close() {
	s.EnableAutoUpdate(false)
	s.loader.Close()
}

// fetch retrieves the profile of the credential's owner. Refreshes never
// invalidate the credential and never enter error recovery.
func (s *Service) fetch(ctx context.Context, cred *auth.Credential) (*Profile, error) {
	req := s.cfg.Factory.New(graph.RequestConfig{
		Path:       graph.Me(),
		Params:     []graph.Param{{Key: "fields", Value: fields}},
		Credential: cred,
		Flags:      graph.FlagNoInvalidateOnAuthError | graph.FlagDisableErrorRecovery,
	})
	raw, err := s.cfg.Transport.Execute(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeProfile(raw, s.cfg.Now())
}

// notifyChanged posts the profile change. The previous value rides along
// only when one existed; its absence is itself observable.
func (s *Service) notifyChanged(previous **Profile, current *Profile) {
	if s.cfg.Channel == nil {
		return
	}
	change := notify.Change{Current: current}
	if previous != nil && *previous != nil {
		change.Previous = *previous
	}
	s.cfg.Channel.Post(notify.ProfileChanged, change)
}
