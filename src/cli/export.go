package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"keyring-export/src/export"
	"keyring-export/src/kdbx"
	"keyring-export/src/keyring"
	"keyring-export/src/safety"
)

func newExportCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		output     string
		onConflict string
		groupBy    string
		update     bool
		backup     bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all keyring credentials to a KDBX file",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd, stderr)

			// Flags win; unset flags fall back to viper (config file + env).
			if !cmd.Flags().Changed("output") {
				output = viper.GetString("output")
			}
			if !cmd.Flags().Changed("on-conflict") {
				onConflict = viper.GetString("on_conflict")
			}
			if !cmd.Flags().Changed("group-by") {
				groupBy = viper.GetString("group_by")
			}
			if !cmd.Flags().Changed("backup") {
				backup = viper.GetBool("backup")
			}

			conflict, err := export.ParseConflictStrategy(onConflict)
			if err != nil {
				return err
			}
			group, err := export.ParseGroupStrategy(groupBy)
			if err != nil {
				return err
			}

			exists := fileExists(output)
			if update && !exists {
				return fmt.Errorf("file %s does not exist; drop --update to create it", output)
			}
			if exists && !update && !backup {
				return fmt.Errorf("file %s already exists; use --update to modify it or --backup to copy it aside first", output)
			}
			if exists && update {
				question := fmt.Sprintf("Update existing database %s in place?", output)
				ok, err := safety.Confirm(getSafetyOptions(cmd), os.Stdin, stdout, question)
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}

			password, err := resolvePassword(stdout, output, exists)
			if err != nil {
				return err
			}

			store, err := keyring.ConnectSecretService(log)
			if err != nil {
				return err
			}

			exporter := export.New(store, kdbx.OpenFile, export.Options{
				OutputPath: output,
				Password:   password,
				OnConflict: conflict,
				GroupBy:    group,
				Backup:     backup,
				Update:     update,
				Logger:     log,
			})
			result, err := exporter.Run()
			if err != nil {
				return err
			}

			renderResult(stdout, result, output)

			// Owner-only: the file holds every exported secret.
			if err := os.Chmod(output, 0o600); err != nil {
				log.Warn().Err(err).Msg("could not set file permissions")
			}

			if result.Errored > 0 {
				return fmt.Errorf("%d entries failed to export", result.Errored)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "keyring-export.kdbx", "Output KDBX file path")
	cmd.Flags().BoolVar(&update, "update", false, "Update existing KDBX file instead of creating new")
	cmd.Flags().BoolVar(&backup, "backup", false, "Copy an existing KDBX file aside before modifying")
	cmd.Flags().StringVar(&onConflict, "on-conflict", "skip", "How to handle duplicate entries: skip|overwrite|rename")
	cmd.Flags().StringVar(&groupBy, "group-by", "service", "How to organize entries in groups: flat|service|domain")
	return cmd
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func renderResult(w io.Writer, r *export.Result, output string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export results:")
	fmt.Fprintf(w, "  Total entries processed: %d\n", r.Total)
	fmt.Fprintf(w, "  Added:                   %d\n", r.Added)
	fmt.Fprintf(w, "  Updated:                 %d\n", r.Updated)
	fmt.Fprintf(w, "  Skipped:                 %d\n", r.Skipped)
	fmt.Fprintf(w, "  Errors:                  %d\n", r.Errored)
	for _, f := range r.Failures {
		fmt.Fprintf(w, "    ! %s (%s): %v\n", f.ID, f.Kind, f.Err)
	}
	fmt.Fprintf(w, "\nDatabase saved to: %s\n", output)
}
