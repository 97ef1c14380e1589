package engine

import (
	"testing"
	"time"

	"camo/fingerprint"
	"camo/profile"

	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(profile.NewStore(), nil)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestNewNilStore(t *testing.T) {
	e, err := New(nil, nil)
	require.NoError(t, err)
	defer e.Close()
	require.Equal(t, profile.DefaultProfileID, e.Profiles().Default().ID)
}

func TestGenerateForSessionNeverNil(t *testing.T) {
	e := newTestEngine(t)
	for _, profileID := range []string{"", "balanced", "compatibility", "browser_mimic", "maximum_entropy", "unknown"} {
		fp := e.GenerateForSession("session-a", profileID, nil)
		require.NotNil(t, fp, "profile %q", profileID)
		require.NotEmpty(t, fp.JA3)
		require.NotEmpty(t, fp.JA4)
	}
}

func TestStatistics(t *testing.T) {
	e := newTestEngine(t)

	stats := e.Statistics()
	require.Zero(t, stats.TotalGenerated)
	require.Equal(t, 4, stats.ProfilesAvailable)

	e.GenerateForSession("session-a", "balanced", nil)
	e.GenerateForSession("session-a", "balanced", nil) // cache hit
	e.GenerateForSession("session-b", "maximum_entropy", nil)

	stats = e.Statistics()
	require.Equal(t, int64(2), stats.TotalGenerated)
	require.Equal(t, int64(1), stats.PerProfileUsage["balanced"])
	require.Equal(t, int64(1), stats.PerProfileUsage["maximum_entropy"])
	require.Equal(t, 2, stats.CacheSize)
	require.Zero(t, stats.FallbacksServed)
	require.Greater(t, stats.EntropyLevel, 0.0)
}

func TestFallbackCounter(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.RegisterCustomProfile(&profile.Profile{
		ID:                 "broken_mimic",
		Level:              profile.LevelHigh,
		TargetApplications: []string{"netscape"},
		Constraints:        profile.Constraints{BrowserTemplate: true},
	}))

	fp := e.GenerateForSession("session-a", "broken_mimic", nil)
	require.True(t, fp.Degraded)
	require.Equal(t, int64(1), e.Statistics().FallbacksServed)
}

func TestSetDefaultProfile(t *testing.T) {
	e := newTestEngine(t)
	require.False(t, e.SetDefaultProfile("nope"))
	require.True(t, e.SetDefaultProfile("compatibility"))

	fp := e.GenerateForSession("session-a", "", nil)
	require.NotNil(t, fp)
	require.Equal(t, int64(1), e.Statistics().PerProfileUsage["compatibility"])
}

func TestRegisterCustomProfile(t *testing.T) {
	e := newTestEngine(t)
	require.Error(t, e.RegisterCustomProfile(&profile.Profile{ID: "balanced", Level: profile.LevelLow}))

	// Contradictory constraints are rejected without touching the store.
	err := e.RegisterCustomProfile(&profile.Profile{
		ID:          "contradictory",
		Level:       profile.LevelLow,
		Constraints: profile.Constraints{MinCipherSuites: 8, MaxCipherSuites: 4},
	})
	require.ErrorIs(t, err, profile.ErrInvalidProfile)
	require.Equal(t, 4, e.Statistics().ProfilesAvailable)

	require.NoError(t, e.RegisterCustomProfile(&profile.Profile{ID: "mine", Level: profile.LevelLow}))
	require.Equal(t, 5, e.Statistics().ProfilesAvailable)

	fp := e.GenerateForSession("session-a", "mine", nil)
	require.NotNil(t, fp)
	require.False(t, fp.Degraded)
}

func TestInvalidateSession(t *testing.T) {
	e := newTestEngine(t)
	require.False(t, e.InvalidateSession("session-a"))
	e.GenerateForSession("session-a", "balanced", nil)
	require.True(t, e.InvalidateSession("session-a"))
	require.Zero(t, e.Statistics().CacheSize)
}

func TestLookupByHash(t *testing.T) {
	e := newTestEngine(t)
	fp := e.GenerateForSession("session-a", "balanced", nil)

	// The hash index applies buffered writes asynchronously.
	var got *fingerprint.Fingerprint
	var found bool
	for i := 0; i < 50 && !found; i++ {
		got, found = e.LookupByHash(fp.JA3)
		if !found {
			time.Sleep(10 * time.Millisecond)
		}
	}
	require.True(t, found)
	require.Equal(t, fp.JA3, got.JA3)

	_, found = e.LookupByHash("ffffffffffffffffffffffffffffffff")
	require.False(t, found)
}

func TestOnGenerateObserver(t *testing.T) {
	e := newTestEngine(t)
	var sessions []string
	e.SetOnGenerate(func(sessionID, profileID string, fp *fingerprint.Fingerprint) {
		sessions = append(sessions, sessionID)
		require.Equal(t, "balanced", profileID)
		require.NotNil(t, fp)
	})
	e.GenerateForSession("session-a", "balanced", nil)
	e.GenerateForSession("session-a", "balanced", nil)
	e.GenerateForSession("session-b", "balanced", nil)
	require.Equal(t, []string{"session-a", "session-b"}, sessions)
}
