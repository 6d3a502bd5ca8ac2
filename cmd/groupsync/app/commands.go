package app

import (
	"github.com/spf13/cobra"

	"github.com/groupsync/groupsync/pkg/logging"
	"github.com/groupsync/groupsync/pkg/reconciler"
)

// NewSyncCommand creates the sync command.
func (a *App) NewSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile group membership into the target directory",
		Long: `Sync resolves each configured group pair in both directories, diffs
their member display names, and adds the members missing from the
target group. With --dry-run the diff is computed and reported but no
update is sent.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSync(cmd)
		},
	}

	cmd.Flags().StringVar(&a.config.PairsFile, "pairs", "", "YAML file mapping source groups to target groups")
	cmd.Flags().StringVar(&a.config.SourceGroup, "source-group", "", "source group display name")
	cmd.Flags().StringVar(&a.config.TargetGroup, "target-group", "", "target group display name")
	cmd.Flags().BoolVar(&a.config.DryRun, "dry-run", false, "report the diff without applying it")
	cmd.Flags().BoolVar(&a.config.FirstMatch, "first-match", false, "pick the first group when a name matches more than one")
	cmd.Flags().IntVar(&a.config.Concurrency, "concurrency", 0, "parallel user lookups per run (default 4)")

	return cmd
}

// runSync builds the client and reconciles every configured pair.
func (a *App) runSync(cmd *cobra.Command) error {
	client, err := a.Client()
	if err != nil {
		return err
	}

	ctx := logging.WithLogger(cmd.Context(), a.logger)
	results, err := client.Sync(ctx)
	for _, result := range results {
		a.printResult(cmd, result)
	}
	return err
}

// printResult writes a per-pair summary to the command's stdout.
func (a *App) printResult(cmd *cobra.Command, result *reconciler.Result) {
	if result == nil {
		return
	}

	cmd.Printf("%s -> %s: %s\n", result.SourceGroup.Name, result.TargetGroup.Name, result.Summary())
	for _, name := range result.Missing {
		cmd.Printf("  missing: %s\n", name)
	}
	for _, warning := range result.Warnings {
		cmd.Printf("  warning: %s\n", warning)
	}
	if a.config.Verbose {
		cmd.Printf("  run %s finished in %s (state %s)\n", result.RunID, result.Duration, result.State)
	}
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("groupsync %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
