package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/mem"
	"golang.org/x/time/rate"
)

// Pool draws all generation randomness from crypto/rand. The named signals
// gathered by Refresh are diagnostic only and are never mixed into the
// generator output.
type Pool struct {
	mu      sync.Mutex
	signals map[string]float64
	limiter *rate.Limiter
}

// refreshesPerSecond <= 0 disables rate limiting.
func NewPool(refreshesPerSecond float64) *Pool {
	p := &Pool{
		signals: make(map[string]float64),
	}
	if refreshesPerSecond > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(refreshesPerSecond), 1)
	}
	return p
}

// Refresh gathers the diagnostic entropy signals. Calls beyond the
// configured refresh rate are dropped silently.
func (p *Pool) Refresh() {
	if p.limiter != nil && !p.limiter.Allow() {
		return
	}
	signals := map[string]float64{
		"csprng_primary":   p.Uniform(),
		"csprng_secondary": p.Uniform(),
		"timing_jitter":    timingJitter(),
		"process_memory":   processMemory(),
	}
	p.mu.Lock()
	p.signals = signals
	p.mu.Unlock()
}

// Level reports the fraction of signals with a non-zero reading, 0..1.
// Diagnostic only.
func (p *Pool) Level() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.signals) == 0 {
		return 0
	}
	var nonZero int
	for _, v := range p.signals {
		if v != 0 {
			nonZero++
		}
	}
	return float64(nonZero) / float64(len(p.signals))
}

// Snapshot of the last Refresh, keyed by signal name.
func (p *Pool) Signals() map[string]float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	m := make(map[string]float64, len(p.signals))
	for k, v := range p.signals {
		m[k] = v
	}
	return m
}

// Uniform returns a value in [0, 1).
func (p *Pool) Uniform() float64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("entropy: crypto/rand unavailable: " + err.Error())
	}
	return float64(binary.BigEndian.Uint64(b[:])>>11) / (1 << 53)
}

// IntRange returns a value in [a, b], both inclusive.
func (p *Pool) IntRange(a, b int) int {
	if b <= a {
		return a
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(b-a+1)))
	if err != nil {
		panic("entropy: crypto/rand unavailable: " + err.Error())
	}
	return a + int(n.Int64())
}

// Chance returns true with probability prob.
func (p *Pool) Chance(prob float64) bool {
	return p.Uniform() < prob
}

func Choice[T any](p *Pool, seq []T) T {
	return seq[p.IntRange(0, len(seq)-1)]
}

// Sample picks k elements without replacement, in random order.
// k is clamped to len(seq).
func Sample[T any](p *Pool, seq []T, k int) []T {
	if k > len(seq) {
		k = len(seq)
	}
	pool := make([]T, len(seq))
	copy(pool, seq)
	Shuffle(p, pool)
	return pool[:k]
}

// Shuffle is an in-place Fisher-Yates over the CSPRNG.
func Shuffle[T any](p *Pool, seq []T) {
	for i := len(seq) - 1; i > 0; i-- {
		j := p.IntRange(0, i)
		seq[i], seq[j] = seq[j], seq[i]
	}
}

// WeightedChoice picks an item with probability proportional to its weight.
// Non-positive weights are treated as zero; if all weights are zero the
// first item is returned.
func WeightedChoice[T any](p *Pool, items []T, weights []float64) T {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return items[0]
	}
	target := p.Uniform() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		target -= w
		if target < 0 {
			return items[i]
		}
	}
	return items[len(items)-1]
}

// timingJitter measures scheduling noise around a tight loop and folds the
// sub-microsecond remainder into [0, 1).
func timingJitter() float64 {
	const rounds = 16
	var total int64
	for i := 0; i < rounds; i++ {
		start := time.Now()
		acc := 0
		for j := 0; j < 1000; j++ {
			acc += j
		}
		_ = acc
		total += time.Since(start).Nanoseconds()
	}
	return float64(total%1000) / 1000
}

func processMemory() float64 {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0
	}
	return vm.UsedPercent / 100
}
