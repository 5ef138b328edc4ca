package falsify

import (
	"context"
	"testing"

	"go.uber.org/goleak"

	"github.com/aletheialabs/aletheia/verifier"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sortClaim(trials int) ClaimDef {
	return ClaimDef{
		ID:        "SortsCorrect@test",
		Domain:    "int_array",
		Adversary: GenDupHeavy,
		Oracle:    verifier.RefSort,
		Impl:      ImplQuicksort3,
		Trials:    trials,
	}
}

func TestBuggyQuicksortFalsified(t *testing.T) {
	e := NewEngine(Options{Workers: 4})

	res, err := e.Run(context.Background(), sortClaim(2000), ImplBuggyQuicksort, "seed-1")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.Falsified() {
		t.Fatal("duplicate-dropping quicksort survived a duplicate-heavy campaign")
	}
	if res.Upper95 != nil {
		t.Error("upper bound set despite failures")
	}
	if len(res.SampleFailures) == 0 {
		t.Fatal("no counterexample retained")
	}

	// The retained evidence pair must stand on its own as a challenge
	sample := res.SampleFailures[0]
	if !verifier.NewSort().Violates(sample.Input, sample.Output) {
		t.Error("retained counterexample does not violate the sort oracle")
	}
}

func TestQuicksort3Survives(t *testing.T) {
	e := NewEngine(Options{Workers: 4})

	res, err := e.Run(context.Background(), sortClaim(500), ImplQuicksort3, "seed-2")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Falsified() {
		sample := res.SampleFailures[0]
		t.Fatalf("correct quicksort falsified at trial %d", sample.Idx)
	}
	if res.TrialsRun != 500 {
		t.Errorf("trials run = %d, want 500", res.TrialsRun)
	}
	if res.Upper95 == nil || *res.Upper95 != 3.0/500.0 {
		t.Errorf("upper bound = %v, want 3/500", res.Upper95)
	}
}

func TestDotKahanSurvives(t *testing.T) {
	e := NewEngine(Options{Workers: 4})
	def := ClaimDef{
		ID:        "DotKahanCorrect@test",
		Domain:    "float_dot",
		Adversary: GenFloatDot,
		Oracle:    verifier.RefDot,
		Impl:      ImplDotKahan,
		Trials:    300,
		Params:    GenParams{NMin: 64, NMax: 512, Hi: 1e16, Lo: 1e-16},
	}

	res, err := e.Run(context.Background(), def, ImplDotKahan, "seed-3")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Falsified() {
		t.Fatalf("kahan dot falsified: %d failures", res.Failures)
	}
}

func TestCampaignDeterministic(t *testing.T) {
	// With an exhaustive budget the failure count depends only on the
	// seed, not on worker scheduling.
	def := sortClaim(300)
	def.Exhaustive = true

	e := NewEngine(Options{Workers: 8})
	r1, err := e.Run(context.Background(), def, ImplBuggyQuicksort, "seed-4")
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	r2, err := e.Run(context.Background(), def, ImplBuggyQuicksort, "seed-4")
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if r1.Failures != r2.Failures {
		t.Errorf("failure counts differ across replays: %d vs %d", r1.Failures, r2.Failures)
	}
	if r1.TrialsRun != 300 || r2.TrialsRun != 300 {
		t.Errorf("exhaustive campaign cut short: %d, %d", r1.TrialsRun, r2.TrialsRun)
	}
	if r1.RNGCommit != r2.RNGCommit {
		t.Error("rng commitments differ for identical campaigns")
	}
}

func TestRunAllDemoClaims(t *testing.T) {
	e := NewEngine(Options{Workers: 4})
	defs := DemoClaims(200)

	results, err := e.RunAll(context.Background(), defs, "seed-5")
	if err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}
	if len(results) != len(defs) {
		t.Fatalf("got %d results, want %d", len(results), len(defs))
	}
	for i, res := range results {
		if res.Falsified() {
			t.Errorf("demo claim %s falsified", defs[i].ID)
		}
		rec := res.Record(defs[i])
		if rec.ID != defs[i].ID || rec.Results.TrialsRun != res.TrialsRun {
			t.Errorf("record does not match result for %s", defs[i].ID)
		}
	}
}

func TestRunUnknownNames(t *testing.T) {
	e := NewEngine(Options{})
	def := sortClaim(10)

	bad := def
	bad.Adversary = "nonsense"
	if _, err := e.Run(context.Background(), bad, ImplQuicksort3, "s"); err == nil {
		t.Error("unknown generator accepted")
	}

	bad = def
	bad.Oracle = "nonsense"
	if _, err := e.Run(context.Background(), bad, ImplQuicksort3, "s"); err == nil {
		t.Error("unknown oracle accepted")
	}

	if _, err := e.Run(context.Background(), def, "nonsense", "s"); err == nil {
		t.Error("unknown impl accepted")
	}
}

func TestRunCancelled(t *testing.T) {
	e := NewEngine(Options{Workers: 2})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.Run(ctx, sortClaim(10000), ImplQuicksort3, "s"); err == nil {
		t.Error("cancelled campaign returned a result")
	}
}

func TestComparePerf(t *testing.T) {
	e := NewEngine(Options{})

	res, err := e.ComparePerf(context.Background(), GenNearlySorted, GenParams{NMin: 64, NMax: 128}, 30, "seed-6")
	if err != nil {
		t.Fatalf("ComparePerf failed: %v", err)
	}
	if res.Trials != 30 {
		t.Errorf("trials = %d, want 30", res.Trials)
	}
	if res.PosteriorMean <= 0 || res.PosteriorMean >= 1 {
		t.Errorf("posterior mean out of range: %f", res.PosteriorMean)
	}
	if res.ProbBetter < 0 || res.ProbBetter > 1 {
		t.Errorf("probability out of range: %f", res.ProbBetter)
	}

	// Same seed, same study
	res2, err := e.ComparePerf(context.Background(), GenNearlySorted, GenParams{NMin: 64, NMax: 128}, 30, "seed-6")
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if res.Wins != res2.Wins {
		t.Errorf("wins differ across replays: %d vs %d", res.Wins, res2.Wins)
	}
}
