package cli

import (
	"github.com/davidgrant/aimerge/internal/logging"
	"github.com/spf13/cobra"
)

var (
	repoPath string
	verbose  bool
	rootCmd  = &cobra.Command{
		Use:   "aimerge",
		Short: "AI-assisted git merge conflict resolution",
		Long:  `Aimerge merges branches and resolves conflict regions through an OpenAI-compatible completion service, staging the result for review.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&repoPath, "repo", ".", "Path to the git repository")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logging.Setup(verbose)
	}
}

func Execute() error {
	return rootCmd.Execute()
}
