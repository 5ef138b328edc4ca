package falsify

import (
	"context"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aletheialabs/aletheia/certificate"
	"github.com/aletheialabs/aletheia/verifier"
)

// maxSampleFailures caps how many counterexamples a result retains
const maxSampleFailures = 5

// Trial is one failed trial's evidence pair, in the oracle's wire form.
// It can be submitted verbatim to the dispute registry as a challenge.
type Trial struct {
	Idx    int
	Input  []byte
	Output []byte
}

// Result summarizes a completed campaign
type Result struct {
	ClaimID string
	Impl    string

	Failures  int
	TrialsRun int

	// SampleFailures holds up to maxSampleFailures counterexamples
	SampleFailures []Trial

	// Upper95 is the rule-of-three bound 3/n, set only when the
	// campaign saw zero failures.
	Upper95 *float64

	RNGCommit string
	Duration  time.Duration
}

// Falsified reports whether the campaign found a counterexample
func (r *Result) Falsified() bool {
	return r.Failures > 0
}

// Record converts the result into a certificate claim record
func (r *Result) Record(def ClaimDef) certificate.ClaimRecord {
	return certificate.ClaimRecord{
		ID:          def.ID,
		Proposition: def.Proposition,
		Domain: certificate.Domain{
			Name:   def.Domain,
			Params: def.Params.Map(),
		},
		Adversary: def.Adversary,
		Oracle:    def.Oracle,
		Power: certificate.Power{
			Alpha:  def.Alpha,
			Trials: def.Trials,
		},
		Results: certificate.Results{
			Failures:           r.Failures,
			TrialsRun:          r.TrialsRun,
			Upper95FailureProb: r.Upper95,
			RNGCommit:          r.RNGCommit,
			DurationSec:        r.Duration.Seconds(),
		},
	}
}

// RuleOfThree returns the conservative 95% upper bound on the failure
// probability after n failure-free trials, or nil if any trial failed.
func RuleOfThree(failures, n int) *float64 {
	if failures != 0 || n <= 0 {
		return nil
	}
	bound := 3.0 / float64(n)
	return &bound
}

// Options configures an engine. Zero fields get defaults.
type Options struct {
	Catalog   *Catalog
	Verifiers *verifier.Registry
	Workers   int
	Clock     clock.Clock
	Logger    *zap.Logger
}

// Engine runs falsification campaigns
type Engine struct {
	catalog   *Catalog
	verifiers *verifier.Registry
	workers   int
	clock     clock.Clock
	logger    *zap.Logger
}

// NewEngine creates an engine
func NewEngine(opts Options) *Engine {
	if opts.Catalog == nil {
		opts.Catalog = DefaultCatalog()
	}
	if opts.Verifiers == nil {
		opts.Verifiers = verifier.DefaultRegistry()
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
		if opts.Workers > 32 {
			opts.Workers = 32
		}
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Engine{
		catalog:   opts.Catalog,
		verifiers: opts.Verifiers,
		workers:   opts.Workers,
		clock:     opts.Clock,
		logger:    opts.Logger,
	}
}

// Run executes one campaign: claim def against one implementation,
// seeded from masterSeed. Trials run in parallel; every trial's RNG is
// derived independently from (masterSeed, claim id, index), so results
// do not depend on scheduling.
func (e *Engine) Run(ctx context.Context, def ClaimDef, implName, masterSeed string) (*Result, error) {
	def.Normalize()
	if err := def.ValidateBasic(); err != nil {
		return nil, err
	}
	gen, err := e.catalog.Generator(def.Adversary)
	if err != nil {
		return nil, err
	}
	impl, err := e.catalog.Impl(implName)
	if err != nil {
		return nil, err
	}
	oracle, err := e.verifiers.Get(def.Oracle)
	if err != nil {
		return nil, err
	}

	start := e.clock.Now()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		failures int
		ran      int
		samples  []Trial
	)

	idxCh := make(chan int)
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		defer close(idxCh)
		for i := 0; i < def.Trials; i++ {
			select {
			case idxCh <- i:
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})

	for w := 0; w < e.workers; w++ {
		g.Go(func() error {
			for idx := range idxCh {
				rng := rand.New(rand.NewSource(DeriveSeed(masterSeed, def.ID, idx)))
				input := gen(rng, def.Params)
				output, err := impl(rng, input)
				if err != nil {
					return err
				}
				violated := oracle.Violates(input, output)

				mu.Lock()
				ran++
				if violated {
					failures++
					if len(samples) < maxSampleFailures {
						samples = append(samples, Trial{Idx: idx, Input: input, Output: output})
					}
					if !def.Exhaustive {
						mu.Unlock()
						cancel()
						continue
					}
				}
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		// Caller-initiated cancellation, not stop-on-first-failure
		if failures == 0 {
			return nil, err
		}
	}

	res := &Result{
		ClaimID:        def.ID,
		Impl:           implName,
		Failures:       failures,
		TrialsRun:      ran,
		SampleFailures: samples,
		Upper95:        RuleOfThree(failures, ran),
		RNGCommit:      RNGCommit(masterSeed, def.ID, implName),
		Duration:       e.clock.Since(start),
	}

	e.logger.Info("campaign finished",
		zap.String("claim", def.ID),
		zap.String("impl", implName),
		zap.Int("trials_run", res.TrialsRun),
		zap.Int("failures", res.Failures),
		zap.Duration("duration", res.Duration))
	return res, nil
}

// RunAll runs each claim definition against its own named
// implementation and returns results in claim order.
func (e *Engine) RunAll(ctx context.Context, defs []ClaimDef, masterSeed string) ([]*Result, error) {
	results := make([]*Result, 0, len(defs))
	for _, def := range defs {
		res, err := e.Run(ctx, def, def.Impl, masterSeed)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}
