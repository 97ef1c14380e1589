package cache

import (
	"sync"
	"testing"
	"time"

	"camo/entropy"
	"camo/fingerprint"
	"camo/profile"
	"camo/registry"

	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *profile.Store) {
	t.Helper()
	store := profile.NewStore()
	ciphers := registry.NewCipherSuites()
	exts := registry.NewExtensions()
	gen := fingerprint.NewGenerator(entropy.NewPool(0), ciphers, exts)
	c, err := New(gen, store, ciphers, exts)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, store
}

func TestGetOrGenerateCachesWithinTTL(t *testing.T) {
	c, _ := newTestCache(t)
	now := time.Now()
	c.now = func() time.Time { return now }

	fp1, fresh, id := c.GetOrGenerate("session-a", "balanced", nil)
	require.True(t, fresh)
	require.Equal(t, "balanced", id)
	require.NotNil(t, fp1)

	now = now.Add(time.Minute)
	fp2, fresh, _ := c.GetOrGenerate("session-a", "balanced", nil)
	require.False(t, fresh)
	require.Same(t, fp1, fp2)
}

func TestGetOrGenerateRegeneratesAfterExpiry(t *testing.T) {
	c, store := newTestCache(t)
	now := time.Now()
	c.now = func() time.Time { return now }

	prof, ok := store.Get("balanced")
	require.True(t, ok)

	fp1, fresh, _ := c.GetOrGenerate("session-a", "balanced", nil)
	require.True(t, fresh)

	now = now.Add(prof.UpdateFrequency + time.Second)
	fp2, fresh, _ := c.GetOrGenerate("session-a", "balanced", nil)
	require.True(t, fresh)
	require.NotSame(t, fp1, fp2)
	require.False(t, fp2.CreatedAt.Before(fp1.CreatedAt))
}

func TestGetOrGenerateUnknownProfileFallsBack(t *testing.T) {
	c, _ := newTestCache(t)
	fp, fresh, id := c.GetOrGenerate("session-a", "no_such_profile", nil)
	require.True(t, fresh)
	require.Equal(t, profile.DefaultProfileID, id)
	require.False(t, fp.Degraded)

	// The entry is keyed under the resolved profile, so the next call for
	// the default hits the cache.
	_, fresh, _ = c.GetOrGenerate("session-a", "balanced", nil)
	require.False(t, fresh)
}

func TestGetOrGenerateDegradesToFallback(t *testing.T) {
	c, store := newTestCache(t)
	require.NoError(t, store.Register(&profile.Profile{
		ID:                 "broken_mimic",
		Level:              profile.LevelHigh,
		TargetApplications: []string{"netscape"},
		Constraints:        profile.Constraints{BrowserTemplate: true},
	}))

	fp, fresh, id := c.GetOrGenerate("session-a", "broken_mimic", nil)
	require.True(t, fresh)
	require.Equal(t, "broken_mimic", id)
	require.True(t, fp.Degraded)
	require.NotEmpty(t, fp.JA3)
}

func TestPerProfileEntries(t *testing.T) {
	c, _ := newTestCache(t)
	a, _, _ := c.GetOrGenerate("session-a", "balanced", nil)
	b, _, _ := c.GetOrGenerate("session-a", "maximum_entropy", nil)
	require.NotSame(t, a, b)
	require.Equal(t, 2, c.Len())
}

func TestInvalidate(t *testing.T) {
	c, _ := newTestCache(t)
	c.GetOrGenerate("session-a", "balanced", nil)
	c.GetOrGenerate("session-a", "maximum_entropy", nil)
	c.GetOrGenerate("session-b", "balanced", nil)

	require.Equal(t, 2, c.Invalidate("session-a"))
	require.Equal(t, 0, c.Invalidate("session-a"))
	require.Equal(t, 1, c.Len())

	_, fresh, _ := c.GetOrGenerate("session-b", "balanced", nil)
	require.False(t, fresh, "other sessions must survive the invalidation")
}

func TestSweep(t *testing.T) {
	c, store := newTestCache(t)
	now := time.Now()
	c.now = func() time.Time { return now }

	prof, _ := store.Get("maximum_entropy")
	c.GetOrGenerate("session-a", "maximum_entropy", nil)
	c.GetOrGenerate("session-b", "balanced", nil)
	require.Equal(t, 0, c.Sweep())

	// maximum_entropy rotates every minute; balanced every five.
	now = now.Add(prof.UpdateFrequency + time.Second)
	require.Equal(t, 1, c.Sweep())
	require.Equal(t, 1, c.Len())
}

func TestLookupByHash(t *testing.T) {
	c, _ := newTestCache(t)
	fp, _, _ := c.GetOrGenerate("session-a", "balanced", nil)
	c.index.Wait()

	got, ok := c.LookupByHash(fp.JA3)
	require.True(t, ok)
	require.Equal(t, fp.JA3, got.JA3)

	_, ok = c.LookupByHash("ffffffffffffffffffffffffffffffff")
	require.False(t, ok)
}

func TestOnGenerateFiresOnlyOnFresh(t *testing.T) {
	c, _ := newTestCache(t)
	now := time.Now()
	c.now = func() time.Time { return now }

	var calls int
	c.OnGenerate = func(sessionID, profileID string, fp *fingerprint.Fingerprint) {
		calls++
		require.Equal(t, "session-a", sessionID)
		require.Equal(t, "balanced", profileID)
		require.NotNil(t, fp)
	}
	c.GetOrGenerate("session-a", "balanced", nil)
	c.GetOrGenerate("session-a", "balanced", nil)
	require.Equal(t, 1, calls)
}

func TestConcurrentSameKeySingleGeneration(t *testing.T) {
	c, _ := newTestCache(t)
	now := time.Now()
	c.now = func() time.Time { return now }

	const workers = 32
	var wg sync.WaitGroup
	freshCount := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, fresh, _ := c.GetOrGenerate("session-a", "balanced", nil)
			freshCount <- fresh
		}()
	}
	wg.Wait()
	close(freshCount)

	var freshes int
	for fresh := range freshCount {
		if fresh {
			freshes++
		}
	}
	require.Equal(t, 1, freshes, "exactly one generation per expired key")
	require.Equal(t, 1, c.Len())
}
