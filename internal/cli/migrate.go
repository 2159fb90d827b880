package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openstandardagents/ossa/internal/config"
	"github.com/openstandardagents/ossa/internal/migrate"
	"github.com/openstandardagents/ossa/internal/schema"
)

var (
	migrateTo         string
	migrateDryRun     bool
	migrateNoGit      bool
	migrateKeepBranch bool
)

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "Target schema version (default: latest known)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "Show the transform plan without writing")
	migrateCmd.Flags().BoolVar(&migrateNoGit, "no-git", false, "Migrate without a git safety branch")
	migrateCmd.Flags().BoolVar(&migrateKeepBranch, "keep-branch", false, "Commit the result on the migration branch and stay on it")
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(transformsCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate <manifest>",
	Short: "Migrate a manifest to a newer schema version",
	Long: `Detect the manifest's current schema version, chain the registered
transforms to the target version, and rewrite the file in place. Unless
--no-git is given, the file's repository gets a disposable migration/
branch first, and any failure restores the pre-migration state.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := newServices()

		target := migrateTo
		if target == "" {
			target = config.Get(config.KeyMigrateTarget)
		}
		if target == "" {
			target = schema.Latest()
		}

		report, err := svc.runner.MigrateFile(cmd.Context(), args[0], migrate.RunOptions{
			Target:     target,
			DryRun:     migrateDryRun,
			NoGit:      migrateNoGit,
			KeepBranch: migrateKeepBranch,
		})
		if report != nil {
			printReport(report, args[0])
		}
		if err != nil {
			return err
		}
		return nil
	},
}

func printReport(r *migrate.Report, path string) {
	fmt.Printf("detected version %s (%s confidence, via %s)\n",
		r.Detection.Version, r.Detection.Confidence, r.Detection.Source)

	if r.NoOp {
		fmt.Printf("%s is already at or beyond %s; nothing to do\n", path, r.To)
		return
	}

	for _, line := range r.Summary {
		fmt.Println("  " + line)
	}
	if len(r.Path) > 0 {
		fmt.Printf("path: %v\n", r.Path)
	}
	if r.Rollback != nil {
		fmt.Printf("safety branch: %s\n", r.Rollback.BranchName)
	}
	if r.RolledBack {
		fmt.Println("migration failed; pre-migration state was restored")
	}
	for _, w := range r.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
}

var transformsCmd = &cobra.Command{
	Use:   "transforms",
	Short: "List the registered migration transforms",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := newServices()
		for _, t := range svc.migrator.AllTransforms() {
			flags := ""
			if t.Breaking {
				flags = " [breaking]"
			}
			fmt.Printf("%s -> %s%s: %s\n", t.From, t.To, flags, t.Summary)
		}
		return nil
	},
}
