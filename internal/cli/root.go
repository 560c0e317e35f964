package cli

import (
	"fmt"
	"os"

	"github.com/aussiebroadwan/atriahub/pkg/hub"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// rootOptions are the persistent flags. Empty values keep the environment.
type rootOptions struct {
	baseURL        string
	storageURL     string
	secretBackend  string
	logLevel       string
	logFormat      string
	nonInteractive bool

	// hubOptions are appended when the hub is built. Used by tests.
	hubOptions []hub.Option
	prompter   *Prompter
}

// NewRootCommand builds the atria command tree.
func NewRootCommand(version string) *cobra.Command {
	return newRootCommand(version, &rootOptions{})
}

func newRootCommand(version string, opts *rootOptions) *cobra.Command {
	var app *App

	root := &cobra.Command{
		Use:   "atria",
		Short: "Atria hub CLI",
		Long: `atria talks to an Atria hub: it signs you in, manages datasets and
models, and moves their files in and out of versioned storage.

Configuration comes from ATRIAX_* environment variables; flags override them.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if os.Getenv("ATRIAX_NON_INTERACTIVE") == "1" {
				opts.nonInteractive = true
			}
			if opts.nonInteractive {
				pterm.DisableStyling()
			}

			cfg := opts.config()
			prompter := opts.prompter
			if prompter == nil {
				prompter = NewPrompter(opts.nonInteractive)
			}

			var err error
			app, err = newApp(cfg, version, prompter, opts.hubOptions...)
			if err != nil {
				return err
			}
			cmd.SetContext(commandContext(cmd.Context(), app, cmd.CommandPath()))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app == nil {
				return nil
			}
			return app.Close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.baseURL, "url", "", "hub base URL (ATRIAX_URL)")
	flags.StringVar(&opts.storageURL, "storage-url", "", "storage base URL (ATRIAX_STORAGE_URL)")
	flags.StringVar(&opts.secretBackend, "secret-backend", "", "keyring, sqlite or memory (ATRIAX_SECRET_BACKEND)")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (LOG_LEVEL)")
	flags.StringVar(&opts.logFormat, "log-format", "", "text or json (LOG_FORMAT)")
	flags.BoolVar(&opts.nonInteractive, "non-interactive", false, "never prompt (also ATRIAX_NON_INTERACTIVE=1)")

	root.AddCommand(
		newAuthCommand(opts),
		newStorageCommand(),
		newDatasetsCommand(),
		newModelsCommand(),
		newTasksCommand(),
		newHealthCommand(),
	)

	return root
}

// config loads the environment and applies flag overrides.
func (o *rootOptions) config() hub.Config {
	cfg := hub.LoadConfig()
	override(&cfg.BaseURL, o.baseURL)
	override(&cfg.StorageURL, o.storageURL)
	override(&cfg.SecretBackend, o.secretBackend)
	override(&cfg.LogLevel, o.logLevel)
	override(&cfg.LogFormat, o.logFormat)
	return cfg
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Execute runs the CLI and exits non-zero on error.
func Execute(version string) {
	if err := NewRootCommand(version).Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
