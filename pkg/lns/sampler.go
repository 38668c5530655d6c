package lns

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/gnames/lnsdesign/pkg/design"
)

// NewRand creates a random source. A zero seed gives a randomly seeded
// source; any other seed gives a reproducible one.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Sampler draws uniform random subsets of collection names.
type Sampler struct {
	rng         *rand.Rand
	collections []string
}

// NewSampler creates a sampler over a copy of collections. A nil rng gets
// a randomly seeded source.
func NewSampler(collections []string, rng *rand.Rand) *Sampler {
	if rng == nil {
		rng = NewRand(0)
	}
	return &Sampler{rng: rng, collections: slices.Clone(collections)}
}

// Sample returns k distinct names drawn without replacement.
// It fails when k is negative or exceeds the population.
func (s *Sampler) Sample(k int) ([]string, error) {
	n := len(s.collections)
	if k < 0 || k > n {
		return nil, InvalidArgumentError(k, n)
	}

	// partial Fisher-Yates on a copy keeps the population intact
	pool := slices.Clone(s.collections)
	for i := range k {
		j := i + s.rng.IntN(n-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k:k], nil
}

// Relaxer produces relaxed copies of a design.
type Relaxer struct {
	collections []string
	sampler     *Sampler
}

// NewRelaxer creates a Relaxer over the given collections.
func NewRelaxer(collections []string, rng *rand.Rand) *Relaxer {
	return &Relaxer{
		collections: slices.Clone(collections),
		sampler:     NewSampler(collections, rng),
	}
}

// Relax resets round(n*ratio) randomly chosen collections in a clone of
// the design. When the rounded count covers all collections every one of
// them is reset, without sampling.
func (r *Relaxer) Relax(
	d *design.Design,
	ratio float64,
) ([]string, *design.Design, error) {
	n := len(r.collections)
	k := int(math.Round(float64(n) * ratio))
	k = max(0, min(k, n))

	relaxed := d.Copy()
	if k == n {
		names := slices.Clone(r.collections)
		for _, v := range names {
			relaxed.Reset(v)
		}
		return names, relaxed, nil
	}

	names, err := r.sampler.Sample(k)
	if err != nil {
		return nil, nil, err
	}
	for _, v := range names {
		relaxed.Reset(v)
	}
	return names, relaxed, nil
}
