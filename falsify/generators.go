package falsify

import (
	"math/rand"
	"sort"

	"github.com/aletheialabs/aletheia/verifier"
)

// Built-in generator names
const (
	GenDupHeavy     = "dup_heavy_small"
	GenNearlySorted = "nearly_sorted"
	GenAllEqual     = "all_equal"
	GenKDistinct    = "k_distinct"
	GenFloatDot     = "float_dot_vectors"
)

// GenParams tunes a generator's input distribution. Zero fields take
// the generator's own defaults, so an empty GenParams is always valid.
type GenParams struct {
	// NMin and NMax bound the input length
	NMin int `json:"nmin,omitempty" yaml:"nmin,omitempty"`
	NMax int `json:"nmax,omitempty" yaml:"nmax,omitempty"`

	// ValueMax bounds element values for integer generators
	ValueMax uint64 `json:"valueMax,omitempty" yaml:"value_max,omitempty"`

	// SwapsMin and SwapsMax bound the disorder fraction for
	// nearly-sorted inputs.
	SwapsMin float64 `json:"swapsMin,omitempty" yaml:"swaps_min,omitempty"`
	SwapsMax float64 `json:"swapsMax,omitempty" yaml:"swaps_max,omitempty"`

	// Distinct caps the number of distinct values for k_distinct
	Distinct int `json:"distinct,omitempty" yaml:"distinct,omitempty"`

	// Hi and Lo set the magnitude mix for float vector generators
	Hi float64 `json:"hi,omitempty" yaml:"hi,omitempty"`
	Lo float64 `json:"lo,omitempty" yaml:"lo,omitempty"`
}

// Map flattens the params for embedding in a certificate's domain block
func (p GenParams) Map() map[string]interface{} {
	m := make(map[string]interface{})
	if p.NMin != 0 {
		m["nmin"] = p.NMin
	}
	if p.NMax != 0 {
		m["nmax"] = p.NMax
	}
	if p.ValueMax != 0 {
		m["valueMax"] = p.ValueMax
	}
	if p.SwapsMin != 0 {
		m["swapsMin"] = p.SwapsMin
	}
	if p.SwapsMax != 0 {
		m["swapsMax"] = p.SwapsMax
	}
	if p.Distinct != 0 {
		m["distinct"] = p.Distinct
	}
	if p.Hi != 0 {
		m["hi"] = p.Hi
	}
	if p.Lo != 0 {
		m["lo"] = p.Lo
	}
	return m
}

func lengthIn(rng *rand.Rand, min, max int) int {
	if max <= min {
		return min
	}
	return min + rng.Intn(max-min+1)
}

// DupHeavy emits short arrays drawn from a tiny value range, so nearly
// every input carries duplicates. This is the distribution that catches
// sorts which drop pivot-equal elements.
func DupHeavy(rng *rand.Rand, p GenParams) []byte {
	nmax := p.NMax
	if nmax == 0 {
		nmax = 12
	}
	vmax := p.ValueMax
	if vmax == 0 {
		vmax = 9
	}
	n := lengthIn(rng, p.NMin, nmax)
	a := make([]uint64, n)
	for i := range a {
		a[i] = uint64(rng.Int63n(int64(vmax) + 1))
	}
	return verifier.EncodeUints(a)
}

// NearlySorted emits sorted arrays perturbed by a small fraction of
// random swaps.
func NearlySorted(rng *rand.Rand, p GenParams) []byte {
	nmin, nmax := p.NMin, p.NMax
	if nmin == 0 {
		nmin = 64
	}
	if nmax == 0 {
		nmax = 512
	}
	vmax := p.ValueMax
	if vmax == 0 {
		vmax = 10_000_000
	}
	smin, smax := p.SwapsMin, p.SwapsMax
	if smin == 0 {
		smin = 0.005
	}
	if smax == 0 {
		smax = 0.08
	}

	n := lengthIn(rng, nmin, nmax)
	a := make([]uint64, n)
	for i := range a {
		a[i] = uint64(rng.Int63n(int64(vmax) + 1))
	}
	sortUints(a)

	if n > 0 {
		frac := smin + rng.Float64()*(smax-smin)
		swaps := int(frac * float64(n))
		if swaps < 1 {
			swaps = 1
		}
		for s := 0; s < swaps; s++ {
			i, j := rng.Intn(n), rng.Intn(n)
			a[i], a[j] = a[j], a[i]
		}
	}
	return verifier.EncodeUints(a)
}

// AllEqual emits arrays of a single repeated value
func AllEqual(rng *rand.Rand, p GenParams) []byte {
	nmin, nmax := p.NMin, p.NMax
	if nmin == 0 {
		nmin = 128
	}
	if nmax == 0 {
		nmax = 1024
	}
	vmax := p.ValueMax
	if vmax == 0 {
		vmax = 100
	}
	n := lengthIn(rng, nmin, nmax)
	v := uint64(rng.Int63n(int64(vmax) + 1))
	a := make([]uint64, n)
	for i := range a {
		a[i] = v
	}
	return verifier.EncodeUints(a)
}

// KDistinct emits long arrays drawn from a handful of distinct values
func KDistinct(rng *rand.Rand, p GenParams) []byte {
	nmin, nmax := p.NMin, p.NMax
	if nmin == 0 {
		nmin = 128
	}
	if nmax == 0 {
		nmax = 1024
	}
	k := p.Distinct
	if k == 0 {
		k = 1 + rng.Intn(4)
	}
	vmax := p.ValueMax
	if vmax == 0 {
		vmax = 10_000_000
	}

	values := make([]uint64, k)
	for i := range values {
		values[i] = uint64(rng.Int63n(int64(vmax) + 1))
	}
	n := lengthIn(rng, nmin, nmax)
	a := make([]uint64, n)
	for i := range a {
		a[i] = values[rng.Intn(k)]
	}
	return verifier.EncodeUints(a)
}

// FloatDotVectors emits paired vectors mixing very large and very small
// magnitudes, the regime where naive float accumulation loses digits.
func FloatDotVectors(rng *rand.Rand, p GenParams) []byte {
	nmin, nmax := p.NMin, p.NMax
	if nmin == 0 {
		nmin = 64
	}
	if nmax == 0 {
		nmax = 2048
	}
	hi, lo := p.Hi, p.Lo
	if hi == 0 {
		hi = 1e16
	}
	if lo == 0 {
		lo = 1e-16
	}

	n := lengthIn(rng, nmin, nmax)
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = mixedMagnitude(rng, hi, lo)
		y[i] = mixedMagnitude(rng, hi, lo)
	}
	return verifier.EncodeFloatPairs(x, y)
}

func mixedMagnitude(rng *rand.Rand, hi, lo float64) float64 {
	scale := hi
	if rng.Float64() < 0.5 {
		scale = lo
	}
	return (rng.Float64() - 0.5) * scale
}

func sortUints(a []uint64) {
	sort.Slice(a, func(i, j int) bool { return a[i] < a[j] })
}
