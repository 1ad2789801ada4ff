package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/davidgrant/aimerge/internal/gitrepo"
)

var (
	listTarget string
	listSource string
)

var listUniqueCmd = &cobra.Command{
	Use:   "list-unique",
	Short: "List commits on the target branch that the source branch lacks",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := gitrepo.Open(repoPath)
		if err != nil {
			return err
		}

		if listSource == "" {
			listSource, err = repo.CurrentBranch()
			if err != nil {
				return err
			}
		}

		for _, branch := range []string{listTarget, listSource} {
			if !repo.BranchExists(branch) {
				return fmt.Errorf("branch %q does not exist", branch)
			}
		}

		commits, err := repo.ListUniqueCommits(listTarget, listSource)
		if err != nil {
			return err
		}

		if len(commits) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No commits on %s that are not on %s.\n", listTarget, listSource)
			return nil
		}

		headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
		cellStyle := lipgloss.NewStyle().Padding(0, 1)

		rows := make([][]string, 0, len(commits))
		for i, c := range commits {
			rows = append(rows, []string{strconv.Itoa(i + 1), c.Hash, c.Subject})
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("#", "HASH", "SUBJECT").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})

		fmt.Fprintln(cmd.OutOrStdout(), t)
		return nil
	},
}

func init() {
	listUniqueCmd.Flags().StringVar(&listTarget, "target", "", "Branch whose unique commits to list")
	listUniqueCmd.Flags().StringVar(&listSource, "source", "", "Branch to compare against (default: current branch)")
	_ = listUniqueCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(listUniqueCmd)
}
