package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openstandardagents/ossa/internal/gitops"
)

var rollbackOriginal string

func init() {
	rollbackRestoreCmd.Flags().StringVar(&rollbackOriginal, "original", "main", "Branch to restore")
	rollbackCmd.AddCommand(rollbackListCmd)
	rollbackCmd.AddCommand(rollbackRestoreCmd)
	rootCmd.AddCommand(rollbackCmd)
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Inspect and restore migration safety branches",
}

var rollbackListCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List migration branches in a repository",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := newServices()
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		branches, err := svc.git.ListMigrationBranches(cmd.Context(), dir)
		if err != nil {
			return err
		}
		if len(branches) == 0 {
			fmt.Println("no migration branches")
			return nil
		}
		for _, b := range branches {
			fmt.Println(b)
		}
		return nil
	},
}

var rollbackRestoreCmd = &cobra.Command{
	Use:   "restore <branch> [dir]",
	Short: "Restore the original branch and delete a migration branch",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := newServices()
		branch := args[0]
		dir := "."
		if len(args) == 2 {
			dir = args[1]
		}
		if !strings.HasPrefix(branch, gitops.BranchPrefix) {
			return fmt.Errorf("%q is not a migration branch", branch)
		}

		result := svc.git.Rollback(cmd.Context(), dir, &gitops.RollbackPoint{
			BranchName:     branch,
			OriginalBranch: rollbackOriginal,
		})
		if !result.Success {
			return fmt.Errorf("rollback failed: %s", strings.Join(result.Errors, "; "))
		}
		if err := svc.git.DeleteBranch(cmd.Context(), dir, branch); err != nil {
			fmt.Printf("warning: restored %s but could not delete %s: %v\n", rollbackOriginal, branch, err)
			return nil
		}
		fmt.Printf("restored %s and deleted %s\n", rollbackOriginal, branch)
		return nil
	},
}
