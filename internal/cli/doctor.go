package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Health check for the OSSA toolchain",
	Long:  `Verify that the embedded schemas compile and that git is available for migration safety branches.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := newServices()
		failed := false

		versions := svc.repo.Versions()
		fmt.Printf("schemas: %s\n", strings.Join(versions, ", "))
		for _, v := range versions {
			if _, err := svc.repo.Load(v); err != nil {
				failed = true
				fmt.Printf("✗ schema %s does not compile: %v\n", v, err)
			}
		}
		if !failed {
			fmt.Printf("✓ all %d schemas compile\n", len(versions))
		}

		if svc.git.IsGitAvailable() {
			fmt.Println("✓ git is available; migrations will run behind a safety branch")
		} else {
			fmt.Println("✗ git not found; migrations require --no-git and run unprotected")
		}

		fmt.Printf("transforms: %d registered\n", len(svc.migrator.AllTransforms()))

		if failed {
			return fmt.Errorf("doctor found problems")
		}
		return nil
	},
}
