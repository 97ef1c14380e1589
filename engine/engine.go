package engine

import (
	"sync"
	"sync/atomic"

	"camo/cache"
	"camo/entropy"
	"camo/fingerprint"
	"camo/profile"
	"camo/registry"
	"camo/telemetry"
)

// Engine is the public facade over the randomization pipeline. Construct
// one instance at process start and pass it by reference; there is no
// process-wide singleton.
type Engine struct {
	pool    *entropy.Pool
	ciphers *registry.CipherSuites
	exts    *registry.Extensions
	store   *profile.Store
	cache   *cache.Cache
	tracer  telemetry.Tracer

	totalGenerated  atomic.Int64
	fallbacksServed atomic.Int64

	usageMu sync.Mutex
	usage   map[string]int64
}

// New wires the pipeline around store. A nil tracer means no telemetry.
func New(store *profile.Store, tracer telemetry.Tracer) (*Engine, error) {
	if store == nil {
		store = profile.NewStore()
	}
	if tracer == nil {
		tracer = telemetry.Noop()
	}
	pool := entropy.NewPool(store.Rotation().EntropyRefreshRate)
	ciphers := registry.NewCipherSuites()
	exts := registry.NewExtensions()
	gen := fingerprint.NewGenerator(pool, ciphers, exts)
	c, err := cache.New(gen, store, ciphers, exts)
	if err != nil {
		return nil, err
	}
	return &Engine{
		pool:    pool,
		ciphers: ciphers,
		exts:    exts,
		store:   store,
		cache:   c,
		tracer:  tracer,
		usage:   make(map[string]int64),
	}, nil
}

// GenerateForSession returns the valid cached fingerprint for the session
// under the named profile, generating a fresh one when none exists or the
// profile's update frequency has elapsed. Never fails: unknown profiles
// fall back to the default, broken generations to the fixed degraded
// fingerprint.
func (e *Engine) GenerateForSession(sessionID, profileName string, override *profile.Constraints) *fingerprint.Fingerprint {
	span := e.tracer.StartSpan("fingerprint.generate")
	defer span.End()
	span.SetAttribute("session", sessionID)

	e.pool.Refresh()
	fp, fresh, profileID := e.cache.GetOrGenerate(sessionID, profileName, override)
	span.SetAttribute("profile", profileID)
	span.SetAttribute("cache_hit", !fresh)
	if len(fp.JA3) >= 8 {
		span.SetAttribute("ja3_prefix", fp.JA3[:8])
	}
	if fresh {
		e.totalGenerated.Add(1)
		if fp.Degraded {
			e.fallbacksServed.Add(1)
		}
		e.usageMu.Lock()
		e.usage[profileID]++
		e.usageMu.Unlock()
	}
	return fp
}

func (e *Engine) SetDefaultProfile(id string) bool {
	return e.store.SetDefault(id)
}

// RegisterCustomProfile validates and installs p. On error the store is
// left untouched.
func (e *Engine) RegisterCustomProfile(p *profile.Profile) error {
	return e.store.Register(p)
}

// InvalidateSession drops all cached fingerprints for the session,
// reporting whether any existed.
func (e *Engine) InvalidateSession(sessionID string) bool {
	return e.cache.Invalidate(sessionID) > 0
}

// SweepExpired purges entries past their profile's update frequency.
func (e *Engine) SweepExpired() int {
	return e.cache.Sweep()
}

// LookupByHash recovers a recently generated fingerprint from its JA3.
func (e *Engine) LookupByHash(ja3 string) (*fingerprint.Fingerprint, bool) {
	return e.cache.LookupByHash(ja3)
}

func (e *Engine) Profiles() *profile.Store {
	return e.store
}

// SetOnGenerate installs an observer for fresh generations. Call before
// serving traffic.
func (e *Engine) SetOnGenerate(fn func(sessionID, profileID string, fp *fingerprint.Fingerprint)) {
	e.cache.OnGenerate = fn
}

// Statistics is a point-in-time snapshot of the engine counters.
type Statistics struct {
	TotalGenerated    int64            `json:"total_generated"`
	FallbacksServed   int64            `json:"fallbacks_served"`
	PerProfileUsage   map[string]int64 `json:"per_profile_usage"`
	CacheSize         int              `json:"cache_size"`
	EntropyLevel      float64          `json:"entropy_level"`
	ProfilesAvailable int              `json:"profiles_available"`
}

func (e *Engine) Statistics() Statistics {
	e.usageMu.Lock()
	usage := make(map[string]int64, len(e.usage))
	for k, v := range e.usage {
		usage[k] = v
	}
	e.usageMu.Unlock()
	return Statistics{
		TotalGenerated:    e.totalGenerated.Load(),
		FallbacksServed:   e.fallbacksServed.Load(),
		PerProfileUsage:   usage,
		CacheSize:         e.cache.Len(),
		EntropyLevel:      e.pool.Level(),
		ProfilesAvailable: e.store.Len(),
	}
}

func (e *Engine) Close() {
	e.cache.Close()
}
