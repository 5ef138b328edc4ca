package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aletheialabs/aletheia/certificate"
	"github.com/aletheialabs/aletheia/falsify"
)

var (
	compileSeed        string
	compileTrials      int
	compileWorkers     int
	compileOut         string
	compileClaimsFile  string
	compileProgramHash string
	compileShowBug     bool
)

// compileCmd runs the falsification campaigns and emits a certificate
var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Run falsification campaigns and emit a belief certificate",
	Long: `Run every claim's trial campaign against its implementation and
write a belief certificate summarizing the evidence. Claims come from a
YAML file, or from the built-in demonstration claims when no file is
given.`,
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().StringVar(&compileSeed, "seed", "", "master RNG seed (required)")
	compileCmd.Flags().IntVar(&compileTrials, "trials", 20000, "trial budget per claim")
	compileCmd.Flags().IntVar(&compileWorkers, "workers", 0, "parallel trial workers (default: NumCPU)")
	compileCmd.Flags().StringVar(&compileOut, "out", "aletheia_certificate.json", "certificate output path")
	compileCmd.Flags().StringVar(&compileClaimsFile, "claims", "", "YAML claim definitions (default: built-in demo claims)")
	compileCmd.Flags().StringVar(&compileProgramHash, "program-hash", "", "program hash to certify (default: random)")
	compileCmd.Flags().BoolVar(&compileShowBug, "show-bug", false, "also run the known-buggy variants and print counterexamples")
	_ = compileCmd.MarkFlagRequired("seed")

	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	var defs []falsify.ClaimDef
	if compileClaimsFile != "" {
		defs, err = falsify.LoadClaims(compileClaimsFile)
		if err != nil {
			return err
		}
		// The flag overrides per-claim budgets only when set explicitly
		if cmd.Flags().Changed("trials") {
			for i := range defs {
				defs[i].Trials = compileTrials
			}
		}
	} else {
		defs = falsify.DemoClaims(compileTrials)
	}

	engine := falsify.NewEngine(falsify.Options{
		Workers: compileWorkers,
		Logger:  logger,
	})
	ctx := cmd.Context()

	if compileShowBug {
		if err := showBugs(cmd, engine, defs); err != nil {
			return err
		}
	}

	results, err := engine.RunAll(ctx, defs, compileSeed)
	if err != nil {
		return err
	}

	records := make([]certificate.ClaimRecord, len(results))
	for i, res := range results {
		records[i] = res.Record(defs[i])
		status := "held"
		if res.Falsified() {
			status = "FALSIFIED"
		}
		fmt.Printf("%-40s %s  (%d/%d trials failed)\n", defs[i].ID, status, res.Failures, res.TrialsRun)
	}

	programHash := compileProgramHash
	if programHash == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return err
		}
		programHash = "0x" + hex.EncodeToString(buf)
	}
	hostname, _ := os.Hostname()

	cert := &certificate.BeliefCertificate{
		CertVersion: certificate.Version,
		ProgramHash: programHash,
		Machine:     hostname,
		CreatedAt:   time.Now().Unix(),
		Claims:      records,
		Proofs:      []certificate.ProofArtifact{},
	}

	path, err := certificate.Save(cert, compileOut)
	if err != nil {
		return err
	}
	hash, err := cert.HashString()
	if err != nil {
		return err
	}
	digest, err := certificate.FileDigest(path)
	if err != nil {
		return err
	}

	fmt.Println("Wrote certificate to", path)
	fmt.Println("Certificate hash:", hash)
	fmt.Println("File sha256:", digest)
	return nil
}

// showBugs demonstrates the campaigns' power by running the known-bad
// variants and printing the counterexamples they produce.
func showBugs(cmd *cobra.Command, engine *falsify.Engine, defs []falsify.ClaimDef) error {
	buggy := map[string]string{
		falsify.ImplQuicksort3: falsify.ImplBuggyQuicksort,
		falsify.ImplDotKahan:   falsify.ImplDotNaive,
	}
	for _, def := range defs {
		bad, ok := buggy[def.Impl]
		if !ok {
			continue
		}
		res, err := engine.Run(cmd.Context(), def, bad, compileSeed)
		if err != nil {
			return err
		}
		if !res.Falsified() {
			fmt.Printf("Warning: %s unexpectedly survived %s\n", bad, def.ID)
			continue
		}
		sample := res.SampleFailures[0]
		fmt.Printf("Bug in %s caught at trial %d\n", bad, sample.Idx)
		fmt.Printf("  input:  %x\n", sample.Input)
		fmt.Printf("  output: %x\n", sample.Output)
	}
	return nil
}
