package entropy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUniformRange(t *testing.T) {
	p := NewPool(0)
	for i := 0; i < 1000; i++ {
		v := p.Uniform()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}

func TestIntRangeInclusive(t *testing.T) {
	p := NewPool(0)
	seen := make(map[int]bool)
	for i := 0; i < 2000; i++ {
		v := p.IntRange(3, 7)
		require.GreaterOrEqual(t, v, 3)
		require.LessOrEqual(t, v, 7)
		seen[v] = true
	}
	for v := 3; v <= 7; v++ {
		require.True(t, seen[v], "value %d never drawn", v)
	}
	require.Equal(t, 5, p.IntRange(5, 5))
	require.Equal(t, 5, p.IntRange(5, 2))
}

func TestChance(t *testing.T) {
	p := NewPool(0)
	for i := 0; i < 100; i++ {
		require.False(t, p.Chance(0))
		require.True(t, p.Chance(1.01))
	}
}

func TestSample(t *testing.T) {
	p := NewPool(0)
	seq := []string{"a", "b", "c", "d", "e"}
	got := Sample(p, seq, 3)
	require.Len(t, got, 3)
	seen := make(map[string]bool)
	for _, v := range got {
		require.Contains(t, seq, v)
		require.False(t, seen[v], "duplicate %q in sample", v)
		seen[v] = true
	}
	require.Len(t, Sample(p, seq, 99), len(seq))
	require.Equal(t, []string{"a", "b", "c", "d", "e"}, seq, "source must not be mutated")
}

func TestShufflePreservesElements(t *testing.T) {
	p := NewPool(0)
	seq := []int{1, 2, 3, 4, 5, 6, 7, 8}
	Shuffle(p, seq)
	counts := make(map[int]int)
	for _, v := range seq {
		counts[v]++
	}
	for v := 1; v <= 8; v++ {
		require.Equal(t, 1, counts[v])
	}
}

func TestWeightedChoice(t *testing.T) {
	p := NewPool(0)
	items := []string{"a", "b", "c"}
	require.Equal(t, "a", WeightedChoice(p, items, []float64{0, 0, 0}))
	require.Equal(t, "b", WeightedChoice(p, items, []float64{0, 1, 0}))
	counts := make(map[string]int)
	for i := 0; i < 3000; i++ {
		counts[WeightedChoice(p, items, []float64{0.1, 0.1, 0.8})]++
	}
	require.Greater(t, counts["c"], counts["a"])
	require.Greater(t, counts["c"], counts["b"])
}

func TestRefreshAndLevel(t *testing.T) {
	p := NewPool(0)
	require.Equal(t, 0.0, p.Level())
	p.Refresh()
	signals := p.Signals()
	require.Len(t, signals, 4)
	require.Contains(t, signals, "csprng_primary")
	require.Contains(t, signals, "csprng_secondary")
	require.Contains(t, signals, "timing_jitter")
	require.Contains(t, signals, "process_memory")
	// The two CSPRNG signals are all but certainly non-zero, so at least
	// half the signals must read.
	require.GreaterOrEqual(t, p.Level(), 0.5)
}

func TestRefreshRateLimit(t *testing.T) {
	p := NewPool(1)
	p.Refresh()
	first := p.Signals()
	p.Refresh() // dropped by the limiter
	second := p.Signals()
	require.Equal(t, first, second)
}
