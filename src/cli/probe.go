package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"keyring-export/src/keyring"
)

const probeSampleSize = 5

func newProbeCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check keyring access and show what would be exported",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd, stderr)

			store, err := keyring.ConnectSecretService(log)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Keyring backend: %s\n", store.Name())

			records, err := store.Credentials()
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(stdout, "No credentials found. The keyring may be empty or locked.")
				return nil
			}

			fmt.Fprintf(stdout, "Found %d credentials\n", len(records))
			fmt.Fprintln(stdout, "Sample entries (passwords hidden):")
			for i, rec := range records {
				if i == probeSampleSize {
					fmt.Fprintf(stdout, "  ... and %d more\n", len(records)-probeSampleSize)
					break
				}
				fmt.Fprintf(stdout, "  %d. %s / %s\n", i+1, rec.Service, rec.Username)
			}
			return nil
		},
	}
}
