package forecast

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// VarianceSpread is the full width of the monthly noise band, centred on zero.
const VarianceSpread = 0.1

// Variance supplies the per-month noise fraction applied to the blend.
type Variance interface {
	Next() float64
}

// VarianceFactory returns a fresh source for each prediction call so
// concurrent predictions never share generator state.
type VarianceFactory func() Variance

// ZeroVariance disables noise.
type ZeroVariance struct{}

func (ZeroVariance) Next() float64 { return 0 }

// FixedVariance returns the same fraction every month.
type FixedVariance float64

func (f FixedVariance) Next() float64 { return float64(f) }

// RandomVariance draws uniformly from [-0.05, 0.05).
type RandomVariance struct {
	dist distuv.Uniform
}

// NewRandomVariance returns a generator fully determined by seed.
func NewRandomVariance(seed uint64) *RandomVariance {
	return &RandomVariance{dist: distuv.Uniform{
		Min: -VarianceSpread / 2,
		Max: VarianceSpread / 2,
		Src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15),
	}}
}

func (v *RandomVariance) Next() float64 {
	return v.dist.Rand()
}

// NoVariance is the factory for deterministic runs.
func NoVariance() VarianceFactory {
	return func() Variance { return ZeroVariance{} }
}

// SeededVariance gives every prediction a generator with the same seed, so
// identical requests produce identical forecasts.
func SeededVariance(seed uint64) VarianceFactory {
	return func() Variance { return NewRandomVariance(seed) }
}

// RandomVarianceFactory seeds each prediction's generator independently.
func RandomVarianceFactory() VarianceFactory {
	return func() Variance { return NewRandomVariance(rand.Uint64()) }
}
