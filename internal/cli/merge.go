package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/davidgrant/aimerge/internal/config"
	"github.com/davidgrant/aimerge/internal/gitrepo"
	"github.com/davidgrant/aimerge/internal/merge"
	"github.com/davidgrant/aimerge/internal/resolve"
)

var (
	mergeTarget     string
	mergeSource     string
	mergeReportFile string
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge a source branch into a target branch, resolving conflicts with AI",
	Long: `Merge checks out the target branch and merges the source branch into it.
Conflicted regions are sent to the configured completion service; if every
region in every file resolves, the results are staged and left for you to
review and commit. If any region fails, the merge is aborted and the
repository restored to its pre-merge state.

Another merge already running against the same repository causes this one
to fail rather than interleave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := gitrepo.Open(repoPath)
		if err != nil {
			return err
		}

		cfg, err := config.Load(repo.Root())
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		tmpl, err := resolve.LoadTemplate(repo.Root())
		if err != nil {
			return fmt.Errorf("loading prompt template: %w", err)
		}

		client := resolve.NewOpenAIClient(cfg)
		resolver := resolve.NewResolver(client, cfg, tmpl)
		session := merge.NewSession(repo, resolver, cfg, mergeTarget, mergeSource)

		var report *merge.Report
		err = repo.WithMergeLock(gitrepo.DefaultLockTimeout, func() error {
			var runErr error
			report, runErr = session.Run(cmd.Context())
			return runErr
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), report.Render())

		if mergeReportFile != "" {
			if err := report.WriteYAML(mergeReportFile); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
		}

		if !report.Succeeded() {
			return fmt.Errorf("merge of %s into %s aborted", mergeSource, mergeTarget)
		}
		return nil
	},
}

func init() {
	mergeCmd.Flags().StringVar(&mergeTarget, "target", "", "Branch to merge into")
	mergeCmd.Flags().StringVar(&mergeSource, "source", "", "Branch to merge from")
	mergeCmd.Flags().StringVar(&mergeReportFile, "report-file", "", "Write a YAML merge report to this path")
	_ = mergeCmd.MarkFlagRequired("target")
	_ = mergeCmd.MarkFlagRequired("source")
	rootCmd.AddCommand(mergeCmd)
}
