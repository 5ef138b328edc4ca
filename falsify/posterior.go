package falsify

import (
	"math"
	"math/rand"
)

// BetaBernoulli maintains a Beta(alpha, beta) posterior over a
// Bernoulli success probability, updated one outcome at a time. The
// performance study uses it to track "variant A beat variant B" across
// trials.
type BetaBernoulli struct {
	Alpha float64
	Beta  float64

	successes int
	trials    int
}

// NewBetaBernoulli starts from the uniform Beta(1, 1) prior
func NewBetaBernoulli() *BetaBernoulli {
	return &BetaBernoulli{Alpha: 1, Beta: 1}
}

// Update folds one outcome into the posterior
func (b *BetaBernoulli) Update(success bool) {
	b.trials++
	if success {
		b.successes++
		b.Alpha++
	} else {
		b.Beta++
	}
}

// Trials returns the number of observed outcomes
func (b *BetaBernoulli) Trials() int { return b.trials }

// Successes returns the number of observed successes
func (b *BetaBernoulli) Successes() int { return b.successes }

// PosteriorMean returns E[p] under the current posterior
func (b *BetaBernoulli) PosteriorMean() float64 {
	return b.Alpha / (b.Alpha + b.Beta)
}

// ProbGreaterThan estimates P(p > threshold) by Monte Carlo sampling
// from the posterior.
func (b *BetaBernoulli) ProbGreaterThan(threshold float64, samples int, rng *rand.Rand) float64 {
	if samples <= 0 {
		samples = 20000
	}
	count := 0
	for i := 0; i < samples; i++ {
		if SampleBeta(rng, b.Alpha, b.Beta) > threshold {
			count++
		}
	}
	return float64(count) / float64(samples)
}

// SampleBeta draws from Beta(a, b) as Ga/(Ga+Gb) with independent
// gamma variates.
func SampleBeta(rng *rand.Rand, a, b float64) float64 {
	ga := sampleGamma(rng, a)
	gb := sampleGamma(rng, b)
	if ga+gb == 0 {
		return 0.5
	}
	return ga / (ga + gb)
}

// sampleGamma draws from Gamma(shape, 1) using the Marsaglia-Tsang
// squeeze method. Shapes below one are boosted through the
// Gamma(shape+1) identity.
func sampleGamma(rng *rand.Rand, shape float64) float64 {
	if shape < 1 {
		u := rng.Float64()
		for u == 0 {
			u = rng.Float64()
		}
		return sampleGamma(rng, shape+1) * math.Pow(u, 1/shape)
	}
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)
	for {
		x := rng.NormFloat64()
		v := 1.0 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1.0-0.0331*x*x*x*x {
			return d * v
		}
		if u > 0 && math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v
		}
	}
}
