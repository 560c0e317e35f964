package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aussiebroadwan/atriahub/pkg/apiclient"
	"github.com/aussiebroadwan/atriahub/pkg/hub"
	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newDatasetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "datasets",
		Aliases: []string{"dataset", "ds"},
		Short:   "Manage datasets",
	}

	cmd.AddCommand(
		newDatasetGetCommand(),
		newDatasetCreateCommand(),
		newDatasetUploadCommand(),
		newDatasetDownloadCommand(),
		newDatasetConfigsCommand(),
		newDatasetCommitCommand(),
	)
	return cmd
}

// findDataset initializes the hub and resolves user/name.
func findDataset(ctx context.Context, user, name string) (*App, *apiclient.Dataset, error) {
	app := appFrom(ctx)
	if _, err := app.ready(ctx); err != nil {
		return nil, nil, err
	}

	owner, err := app.owner(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	ds, err := app.Hub.Datasets().GetByName(ctx, owner, name)
	if err != nil {
		return nil, nil, err
	}
	return app, ds, nil
}

func renderDatasets(cmd *cobra.Command, datasets ...*apiclient.Dataset) error {
	data := pterm.TableData{{"NAME", "OWNER", "REPO", "BRANCH", "TYPE", "PUBLIC", "CREATED"}}
	for _, ds := range datasets {
		data = append(data, []string{
			ds.Name, ds.Username, ds.RepoID, ds.DefaultBranch, string(ds.DataInstanceType),
			strconv.FormatBool(ds.IsPublic), humanize.Time(ds.CreatedAt),
		})
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	printf(cmd, "%s\n", out)
	return nil
}

func newDatasetGetCommand() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Show a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ds, err := findDataset(cmd.Context(), user, args[0])
			if err != nil {
				return err
			}
			return renderDatasets(cmd, ds)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "dataset owner (default: signed-in user)")
	return cmd
}

func newDatasetCreateCommand() *cobra.Command {
	var (
		in           hub.CreateDatasetInput
		instanceType string
	)

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a dataset, or return the existing one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd.Context())
			if _, err := app.ready(cmd.Context()); err != nil {
				return err
			}

			in.Name = args[0]
			in.DataInstanceType = apiclient.DataInstanceType(instanceType)
			ds, err := app.Hub.Datasets().GetOrCreate(cmd.Context(), in)
			if err != nil {
				return err
			}
			return renderDatasets(cmd, ds)
		},
	}

	cmd.Flags().StringVar(&in.Description, "description", "", "dataset description")
	cmd.Flags().StringVar(&instanceType, "type", string(apiclient.DataInstanceDocument), "data instance type: image or document")
	cmd.Flags().StringVar(&in.DefaultBranch, "branch", hub.DefaultBranch, "default branch")
	cmd.Flags().BoolVar(&in.IsPublic, "public", false, "make the dataset public")
	return cmd
}

func newDatasetUploadCommand() *cobra.Command {
	var (
		user      string
		branch    string
		config    string
		dir       string
		pattern   string
		overwrite bool
		message   string
	)

	cmd := &cobra.Command{
		Use:   "upload NAME",
		Short: "Upload local files into a dataset config",
		Long: `Uploads every file under --dir matching --pattern into
{config}/delta/ on --branch, keeping paths relative to --dir. With
--message the branch is committed afterwards.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ds, err := findDataset(cmd.Context(), user, args[0])
			if err != nil {
				return err
			}

			files, err := hub.CollectFiles(dir, pattern, config+"/delta")
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no files under %s match %q", dir, pattern)
			}

			if branch == "" {
				branch = ds.DefaultBranch
			}
			t, err := app.Hub.Datasets().UploadFiles(cmd.Context(), ds, branch, config, files, overwrite)
			if err != nil {
				return err
			}
			pterm.Success.Printf("Uploaded %d files (%s) to %s/%s\n", t.Files, humanize.Bytes(uint64(t.Bytes)), ds.RepoID, branch)

			if message == "" {
				return nil
			}
			commit, err := app.Hub.Datasets().CommitChanges(cmd.Context(), ds.RepoID, branch, message)
			if err != nil {
				return err
			}
			if commit != nil {
				pterm.Success.Printf("Committed %s\n", hub.ShortSHA(commit.ID))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "dataset owner (default: signed-in user)")
	cmd.Flags().StringVar(&branch, "branch", "", "target branch (default: the dataset's default branch)")
	cmd.Flags().StringVar(&config, "config", "default", "dataset config name")
	cmd.Flags().StringVar(&dir, "dir", ".", "local directory to upload from")
	cmd.Flags().StringVar(&pattern, "pattern", "**/*.parquet", "doublestar glob relative to --dir")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "write into an existing config")
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit with this message after uploading")
	return cmd
}

func newDatasetDownloadCommand() *cobra.Command {
	var (
		user   string
		branch string
		config string
		dest   string
	)

	cmd := &cobra.Command{
		Use:   "download NAME",
		Short: "Download a dataset config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ds, err := findDataset(cmd.Context(), user, args[0])
			if err != nil {
				return err
			}

			if branch == "" {
				branch = ds.DefaultBranch
			}
			t, err := app.Hub.Datasets().DownloadFiles(cmd.Context(), ds.RepoID, branch, config, dest)
			if err != nil {
				return err
			}
			pterm.Success.Printf("Downloaded %d files (%s) to %s\n", t.Files, humanize.Bytes(uint64(t.Bytes)), dest)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "dataset owner (default: signed-in user)")
	cmd.Flags().StringVar(&branch, "branch", "", "source branch (default: the dataset's default branch)")
	cmd.Flags().StringVar(&config, "config", "default", "dataset config name")
	cmd.Flags().StringVar(&dest, "dest", ".", "local destination directory")
	return cmd
}

func newDatasetConfigsCommand() *cobra.Command {
	var (
		user   string
		branch string
	)

	cmd := &cobra.Command{
		Use:   "configs NAME",
		Short: "List dataset configs and their splits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ds, err := findDataset(cmd.Context(), user, args[0])
			if err != nil {
				return err
			}

			if branch == "" {
				branch = ds.DefaultBranch
			}
			configs, err := app.Hub.Datasets().AvailableConfigs(cmd.Context(), ds.RepoID, branch)
			if err != nil {
				return err
			}

			for _, c := range configs {
				splits, err := app.Hub.Datasets().Splits(cmd.Context(), ds.RepoID, branch, c)
				if err != nil {
					return err
				}
				printf(cmd, "%s\t%v\n", c, splits)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "dataset owner (default: signed-in user)")
	cmd.Flags().StringVar(&branch, "branch", "", "branch (default: the dataset's default branch)")
	return cmd
}

func newDatasetCommitCommand() *cobra.Command {
	var (
		user    string
		branch  string
		message string
	)

	cmd := &cobra.Command{
		Use:   "commit NAME",
		Short: "Commit staged changes on a branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ds, err := findDataset(cmd.Context(), user, args[0])
			if err != nil {
				return err
			}

			if branch == "" {
				branch = ds.DefaultBranch
			}
			commit, err := app.Hub.Datasets().CommitChanges(cmd.Context(), ds.RepoID, branch, message)
			if err != nil {
				return err
			}
			if commit == nil {
				pterm.Info.Println("Nothing to commit")
				return nil
			}
			printf(cmd, "%s\n", commit.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "dataset owner (default: signed-in user)")
	cmd.Flags().StringVar(&branch, "branch", "", "branch (default: the dataset's default branch)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}
