package cli

import (
	"maps"
	"slices"

	"github.com/spf13/cobra"
)

func newStorageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Storage access",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "options",
		Short: "Print storage settings as shell exports",
		Long: `Prints the storage endpoint and credentials as export statements for
S3-compatible tools:

  eval "$(atria storage options)"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ready, err := appFrom(cmd.Context()).ready(cmd.Context())
			if err != nil {
				return err
			}

			opts := ready.StorageOptions()
			for _, k := range slices.Sorted(maps.Keys(opts)) {
				printf(cmd, "export %s=%s\n", k, shellQuote(opts[k]))
			}
			return nil
		},
	})

	return cmd
}

// shellQuote wraps v in single quotes for POSIX shells.
func shellQuote(v string) string {
	out := []byte{'\''}
	for i := 0; i < len(v); i++ {
		if v[i] == '\'' {
			out = append(out, `'\''`...)
			continue
		}
		out = append(out, v[i])
	}
	return string(append(out, '\''))
}

func newHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the hub is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd.Context())

			if err := app.Hub.HealthCheck(cmd.Context()); err != nil {
				return err
			}
			printf(cmd, "ok %s\n", app.Config.BaseURL)
			return nil
		},
	}
}
