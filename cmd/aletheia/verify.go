package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aletheialabs/aletheia/certificate"
)

// verifyCmd recomputes a certificate's hashes
var verifyCmd = &cobra.Command{
	Use:   "verify <certificate.json>",
	Short: "Recompute hashes for an existing certificate",
	Long: `Load a certificate file, validate it, and print its canonical
content hash and raw file digest. A claim submitted to the dispute
registry is bound to the canonical hash.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cert, err := certificate.Load(args[0])
		if err != nil {
			return err
		}
		hash, err := cert.HashString()
		if err != nil {
			return err
		}
		digest, err := certificate.FileDigest(args[0])
		if err != nil {
			return err
		}
		fmt.Println("Computed certificate hash:", hash)
		fmt.Println("File sha256:", digest)
		fmt.Printf("Claims: %d, created at %d on %s\n", len(cert.Claims), cert.CreatedAt, cert.Machine)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
