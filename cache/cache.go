package cache

import (
	"os"
	"sync"
	"time"

	"camo/fingerprint"
	"camo/pkg"
	"camo/profile"
	"camo/registry"

	"github.com/dgraph-io/ristretto/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger = pkg.NewLogger(zapcore.InfoLevel, os.Stdout)

func SetLogger(l *zap.SugaredLogger) {
	logger = l
}

type key struct {
	session string
	profile string
}

// entry is never mutated in place once its fingerprint is set; expiry
// replaces the fingerprint wholesale under the entry lock.
type entry struct {
	mu  sync.Mutex
	fp  *fingerprint.Fingerprint
	ttl time.Duration
}

// Cache stores one fingerprint per (session, profile) for the profile's
// update frequency. The entry lock guarantees at most one fresh
// generation per expired key; lookups for different keys never contend
// beyond the brief map access.
type Cache struct {
	mu      sync.Mutex
	entries map[key]*entry

	gen     *fingerprint.Generator
	store   *profile.Store
	ciphers *registry.CipherSuites
	exts    *registry.Extensions

	// index allows downstream callers to recover a recently generated
	// fingerprint from its JA3 hash.
	index *ristretto.Cache[string, *fingerprint.Fingerprint]

	now func() time.Time

	// OnGenerate, when set, observes every fresh generation. Set before
	// first use; not guarded.
	OnGenerate func(sessionID, profileID string, fp *fingerprint.Fingerprint)
}

func New(gen *fingerprint.Generator, store *profile.Store, ciphers *registry.CipherSuites, exts *registry.Extensions) (*Cache, error) {
	index, err := ristretto.NewCache(&ristretto.Config[string, *fingerprint.Fingerprint]{
		NumCounters: 1e5, MaxCost: 1 << 20, BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{
		entries: make(map[key]*entry),
		gen:     gen,
		store:   store,
		ciphers: ciphers,
		exts:    exts,
		index:   index,
		now:     time.Now,
	}, nil
}

// GetOrGenerate returns the cached fingerprint for (sessionID, profileID)
// while it is still valid, generating a new one otherwise. An unknown
// profileID falls back to the default profile; a failed generation falls
// back to the fixed degraded fingerprint. fresh reports whether a new
// fingerprint was produced by this call.
func (c *Cache) GetOrGenerate(sessionID, profileID string, override *profile.Constraints) (fp *fingerprint.Fingerprint, fresh bool, resolvedProfile string) {
	prof, substituted := c.store.Resolve(profileID)
	if substituted {
		logger.Warnf("Unknown profile %q, using %q", profileID, prof.ID)
	}

	k := key{session: sessionID, profile: prof.ID}
	c.mu.Lock()
	e, ok := c.entries[k]
	if !ok {
		e = &entry{}
		c.entries[k] = e
	}
	c.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fp != nil && c.now().Sub(e.fp.CreatedAt) < e.ttl {
		return e.fp, false, prof.ID
	}

	generated, err := c.gen.Generate(sessionID, prof, override)
	if err != nil {
		logger.Errorf("Generation for session %s under profile %s degraded to fallback: %v", sessionID, prof.ID, err)
		generated = fingerprint.Fallback(c.ciphers, c.exts)
	}
	e.fp = generated
	e.ttl = prof.UpdateFrequency
	if e.ttl > 0 {
		c.index.SetWithTTL(generated.JA3, generated, 1, e.ttl)
	}
	if c.OnGenerate != nil {
		c.OnGenerate(sessionID, prof.ID, generated)
	}
	return generated, true, prof.ID
}

// LookupByHash finds a recently generated fingerprint by its JA3 hash.
func (c *Cache) LookupByHash(ja3 string) (*fingerprint.Fingerprint, bool) {
	return c.index.Get(ja3)
}

// Invalidate removes every entry belonging to sessionID and returns how
// many were removed.
func (c *Cache) Invalidate(sessionID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var removed int
	for k := range c.entries {
		if k.session == sessionID {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Sweep purges entries expired relative to their own profile TTL. Meant
// for a periodic background timer; safe against concurrent lookups.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var removed int
	for k, e := range c.entries {
		e.mu.Lock()
		expired := e.fp == nil || c.now().Sub(e.fp.CreatedAt) >= e.ttl
		e.mu.Unlock()
		if expired {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) Close() {
	c.index.Close()
}
