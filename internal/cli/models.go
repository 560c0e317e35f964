package cli

import (
	"context"
	"strconv"

	"github.com/aussiebroadwan/atriahub/pkg/apiclient"
	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newModelsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "models",
		Aliases: []string{"model"},
		Short:   "Inspect models",
	}

	cmd.AddCommand(newModelGetCommand(), newModelConfigsCommand())
	return cmd
}

func findModel(ctx context.Context, user, name string) (*App, *apiclient.Model, error) {
	app := appFrom(ctx)
	if _, err := app.ready(ctx); err != nil {
		return nil, nil, err
	}

	owner, err := app.owner(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	model, err := app.Hub.Models().GetByName(ctx, owner, name)
	if err != nil {
		return nil, nil, err
	}
	return app, model, nil
}

func newModelGetCommand() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Show a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, m, err := findModel(cmd.Context(), user, args[0])
			if err != nil {
				return err
			}

			out, err := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
				{"NAME", "OWNER", "TASK", "REPO", "BRANCH", "PUBLIC", "CREATED"},
				{m.Name, m.Username, string(m.TaskType), m.RepoID, m.DefaultBranch,
					strconv.FormatBool(m.IsPublic), humanize.Time(m.CreatedAt)},
			}).Srender()
			if err != nil {
				return err
			}
			printf(cmd, "%s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "model owner (default: signed-in user)")
	return cmd
}

func newModelConfigsCommand() *cobra.Command {
	var (
		user        string
		branch      string
		configsBase string
	)

	cmd := &cobra.Command{
		Use:   "configs NAME",
		Short: "List model configs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, m, err := findModel(cmd.Context(), user, args[0])
			if err != nil {
				return err
			}

			if branch == "" {
				branch = m.DefaultBranch
			}
			configs, err := app.Hub.Models().AvailableConfigs(cmd.Context(), m.RepoID, branch, configsBase)
			if err != nil {
				return err
			}
			for _, c := range configs {
				printf(cmd, "%s\n", c)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "model owner (default: signed-in user)")
	cmd.Flags().StringVar(&branch, "branch", "", "branch (default: the model's default branch)")
	cmd.Flags().StringVar(&configsBase, "configs-base", "conf/model", "directory holding model configs")
	return cmd
}
