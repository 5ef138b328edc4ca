package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aletheialabs/aletheia/certificate"
	"github.com/aletheialabs/aletheia/journal"
	"github.com/aletheialabs/aletheia/registry"
	"github.com/aletheialabs/aletheia/store"
	"github.com/aletheialabs/aletheia/treasury"
	"github.com/aletheialabs/aletheia/types"
)

var (
	disputeFrom     string
	disputeCert     string
	disputeVerifier string
	disputeBond     uint64
	disputeInput    string
	disputeOutput   string
	fundAmount      uint64
)

// node bundles the persistent dispute state under the data directory
type node struct {
	reg   *registry.Registry
	store *store.SQLStore
	jrnl  *journal.FileJournal
}

func (n *node) Close() {
	n.jrnl.Close()
	n.store.Close()
}

// openNode wires the registry to its durable backends: a sqlite claim
// store, a segmented file journal, and a file-backed ledger.
func openNode() (*node, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}

	claims, err := store.OpenSQL(filepath.Join(dir, "claims.db"))
	if err != nil {
		return nil, err
	}
	jrnl, err := journal.OpenFile(filepath.Join(dir, "journal"))
	if err != nil {
		claims.Close()
		return nil, err
	}
	ledger, err := treasury.NewFileLedger(filepath.Join(dir, "ledger.json"))
	if err != nil {
		jrnl.Close()
		claims.Close()
		return nil, err
	}

	reg, err := registry.New(registry.Params{
		Config: registry.Config{
			MinBond: viper.GetUint64("registry.min_bond"),
			Window:  viper.GetDuration("registry.window"),
			Escrow:  types.Address(viper.GetString("registry.escrow")),
		},
		Store:    claims,
		Treasury: ledger,
		Journal:  jrnl,
		Logger:   logger,
	})
	if err != nil {
		jrnl.Close()
		claims.Close()
		return nil, err
	}
	return &node{reg: reg, store: claims, jrnl: jrnl}, nil
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a certificate claim backed by a bond",
	RunE: func(cmd *cobra.Command, args []string) error {
		cert, err := certificate.Load(disputeCert)
		if err != nil {
			return err
		}
		certHash, err := cert.Hash()
		if err != nil {
			return err
		}

		n, err := openNode()
		if err != nil {
			return err
		}
		defer n.Close()

		id, err := n.reg.Submit(types.Address(disputeFrom), certHash, disputeVerifier, disputeBond)
		if err != nil {
			return err
		}
		claim, err := n.reg.Get(id)
		if err != nil {
			return err
		}
		fmt.Printf("Claim %d submitted: bond %d escrowed, challengeable until %s\n",
			id, disputeBond, claim.Deadline.Format("2006-01-02 15:04:05 MST"))
		return nil
	},
}

var challengeCmd = &cobra.Command{
	Use:   "challenge <id>",
	Short: "Challenge a claim with an evidence pair",
	Long: `Present a hex-encoded (input, output) evidence pair against an open
claim. The claim's verifier decides; a confirmed violation slashes the
bond to the challenger.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		input, err := hex.DecodeString(disputeInput)
		if err != nil {
			return fmt.Errorf("bad --input hex: %w", err)
		}
		output, err := hex.DecodeString(disputeOutput)
		if err != nil {
			return fmt.Errorf("bad --output hex: %w", err)
		}

		n, err := openNode()
		if err != nil {
			return err
		}
		defer n.Close()

		slashed, err := n.reg.Challenge(types.Address(disputeFrom), id, input, output)
		if err != nil {
			return err
		}
		if slashed {
			fmt.Printf("Violation confirmed: claim %d slashed, bond paid to %s\n", id, disputeFrom)
		} else {
			fmt.Printf("No violation: claim %d stands\n", id)
		}
		return nil
	},
}

var finalizeCmd = &cobra.Command{
	Use:   "finalize <id>",
	Short: "Finalize a claim past its challenge deadline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		n, err := openNode()
		if err != nil {
			return err
		}
		defer n.Close()

		if err := n.reg.Finalize(id); err != nil {
			return err
		}
		fmt.Printf("Claim %d finalized\n", id)
		return nil
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw <id>",
	Short: "Withdraw the bond of a finalized, unslashed claim",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		n, err := openNode()
		if err != nil {
			return err
		}
		defer n.Close()

		amount, err := n.reg.Withdraw(types.Address(disputeFrom), id)
		if err != nil {
			return err
		}
		fmt.Printf("Withdrew %d to %s\n", amount, disputeFrom)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one claim, or all claims",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := openNode()
		if err != nil {
			return err
		}
		defer n.Close()

		var claims []*types.Claim
		if len(args) == 1 {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			claim, err := n.reg.Get(id)
			if err != nil {
				return err
			}
			claims = append(claims, claim)
		} else {
			claims, err = n.reg.List()
			if err != nil {
				return err
			}
		}

		for _, c := range claims {
			status := "open"
			switch {
			case c.Slashed:
				status = "slashed"
			case c.Finalized:
				status = "finalized"
			}
			fmt.Printf("claim %d  %-9s  submitter=%s verifier=%s bond=%d deadline=%s\n  cert=%s\n",
				c.ID, status, c.Submitter, c.VerifierRef, c.Bond,
				c.Deadline.Format("2006-01-02 15:04:05 MST"), types.HashString(c.CertHash))
		}
		return nil
	},
}

var fundCmd = &cobra.Command{
	Use:   "fund <address>",
	Short: "Credit an address in the local ledger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := dataDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		ledger, err := treasury.NewFileLedger(filepath.Join(dir, "ledger.json"))
		if err != nil {
			return err
		}
		addr := types.Address(args[0])
		if err := ledger.Credit(addr, fundAmount); err != nil {
			return err
		}
		fmt.Printf("Credited %d to %s (balance %d)\n", fundAmount, addr, ledger.Balance(addr))
		return nil
	},
}

func parseID(s string) (uint64, error) {
	var id uint64
	if _, err := fmt.Sscanf(s, "%d", &id); err != nil {
		return 0, fmt.Errorf("bad claim id %q", s)
	}
	return id, nil
}

func init() {
	submitCmd.Flags().StringVar(&disputeFrom, "from", "", "submitter address (required)")
	submitCmd.Flags().StringVar(&disputeCert, "cert", "", "certificate file to bond (required)")
	submitCmd.Flags().StringVar(&disputeVerifier, "verifier", "sort/v1", "verifier reference for the claim")
	submitCmd.Flags().Uint64Var(&disputeBond, "bond", 1, "bond amount to escrow")
	_ = submitCmd.MarkFlagRequired("from")
	_ = submitCmd.MarkFlagRequired("cert")

	challengeCmd.Flags().StringVar(&disputeFrom, "from", "", "challenger address (required)")
	challengeCmd.Flags().StringVar(&disputeInput, "input", "", "hex-encoded evidence input (required)")
	challengeCmd.Flags().StringVar(&disputeOutput, "output", "", "hex-encoded evidence output (required)")
	_ = challengeCmd.MarkFlagRequired("from")
	_ = challengeCmd.MarkFlagRequired("input")
	_ = challengeCmd.MarkFlagRequired("output")

	withdrawCmd.Flags().StringVar(&disputeFrom, "from", "", "submitter address (required)")
	_ = withdrawCmd.MarkFlagRequired("from")

	fundCmd.Flags().Uint64Var(&fundAmount, "amount", 1000, "amount to credit")

	rootCmd.AddCommand(submitCmd, challengeCmd, finalizeCmd, withdrawCmd, showCmd, fundCmd)
}
