package falsify

import (
	"context"
	"math/rand"

	"go.uber.org/zap"

	"github.com/aletheialabs/aletheia/verifier"
)

// PerfResult summarizes a comparison-count study between the three-way
// quicksort and mergesort over one input distribution.
type PerfResult struct {
	Generator string
	Trials    int

	// Wins counts trials where quicksort used strictly fewer
	// comparisons than mergesort.
	Wins int

	// PosteriorMean is E[p] for p = P(quicksort wins) under a
	// Beta-Bernoulli posterior started from the uniform prior.
	PosteriorMean float64

	// ProbBetter is the posterior probability that p exceeds one half
	ProbBetter float64
}

// Refuted reports whether the study refutes "quicksort is faster here"
func (r *PerfResult) Refuted() bool {
	return r.ProbBetter < 0.5
}

// ComparePerf runs a performance study: per trial, generate an input,
// sort it with both algorithms counting element comparisons, and score
// a win when quicksort compares less. Trials run sequentially so the
// posterior update order is deterministic per seed.
func (e *Engine) ComparePerf(ctx context.Context, genName string, params GenParams, trials int, masterSeed string) (*PerfResult, error) {
	gen, err := e.catalog.Generator(genName)
	if err != nil {
		return nil, err
	}
	if trials <= 0 {
		trials = 200
	}

	post := NewBetaBernoulli()
	namespace := "perf|" + genName
	for i := 0; i < trials; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rng := rand.New(rand.NewSource(DeriveSeed(masterSeed, namespace, i)))
		a, err := verifier.DecodeUints(gen(rng, params))
		if err != nil {
			return nil, err
		}
		qs := quicksort3Count(a)
		ms := mergesortCount(a)
		post.Update(qs < ms)
	}

	probRNG := rand.New(rand.NewSource(DeriveSeed(masterSeed, namespace, trials)))
	res := &PerfResult{
		Generator:     genName,
		Trials:        post.Trials(),
		Wins:          post.Successes(),
		PosteriorMean: post.PosteriorMean(),
		ProbBetter:    post.ProbGreaterThan(0.5, 20000, probRNG),
	}

	e.logger.Info("performance study finished",
		zap.String("generator", genName),
		zap.Int("trials", res.Trials),
		zap.Int("wins", res.Wins),
		zap.Float64("posterior_mean", res.PosteriorMean),
		zap.Float64("prob_better", res.ProbBetter))
	return res, nil
}

// quicksort3Count sorts a copy with three-way quicksort and returns the
// element comparison count.
func quicksort3Count(a []uint64) int {
	count := 0
	var rec func(a []uint64) []uint64
	rec = func(a []uint64) []uint64 {
		if len(a) <= 1 {
			out := make([]uint64, len(a))
			copy(out, a)
			return out
		}
		pivot := a[len(a)/2]
		var lt, eq, gt []uint64
		for _, x := range a {
			count++
			if x < pivot {
				lt = append(lt, x)
				continue
			}
			count++
			if x == pivot {
				eq = append(eq, x)
			} else {
				gt = append(gt, x)
			}
		}
		out := rec(lt)
		out = append(out, eq...)
		return append(out, rec(gt)...)
	}
	rec(a)
	return count
}

// mergesortCount sorts a copy with stable mergesort and returns the
// element comparison count.
func mergesortCount(a []uint64) int {
	count := 0
	var rec func(a []uint64) []uint64
	rec = func(a []uint64) []uint64 {
		n := len(a)
		if n <= 1 {
			out := make([]uint64, n)
			copy(out, a)
			return out
		}
		left := rec(a[:n/2])
		right := rec(a[n/2:])
		out := make([]uint64, 0, n)
		i, j := 0, 0
		for i < len(left) && j < len(right) {
			count++
			if left[i] <= right[j] {
				out = append(out, left[i])
				i++
			} else {
				out = append(out, right[j])
				j++
			}
		}
		out = append(out, left[i:]...)
		out = append(out, right[j:]...)
		return out
	}
	rec(a)
	return count
}
