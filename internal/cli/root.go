package cli

import (
	"github.com/spf13/cobra"

	"github.com/openstandardagents/ossa/internal/branding"
	"github.com/openstandardagents/ossa/internal/config"
	"github.com/openstandardagents/ossa/internal/detect"
	"github.com/openstandardagents/ossa/internal/gitops"
	"github.com/openstandardagents/ossa/internal/migrate"
	"github.com/openstandardagents/ossa/internal/schema"
	"github.com/openstandardagents/ossa/internal/validate"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` validates OSSA agent manifests, migrates them across
schema versions behind a git safety branch, and converts their
capabilities to and from MCP tool descriptors.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
	},
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}

// services bundles the core components behind the CLI commands. Each
// invocation builds one set, so the schema cache lives for the process
// and the registry is populated exactly once.
type services struct {
	repo      *schema.Repository
	validator *validate.Service
	detector  *detect.Service
	migrator  *migrate.Service
	git       *gitops.Service
	runner    *migrate.Runner
}

func newServices() *services {
	var repo *schema.Repository
	if dir := config.Get(config.KeySchemaDir); dir != "" {
		repo = schema.NewRepositoryWithOverlay(dir)
	} else {
		repo = schema.NewRepository()
	}

	validator := validate.NewService(repo)
	migrator := migrate.NewService(migrate.DefaultRegistry(), validator)
	detector := detect.NewService(validator, migrator)
	git := gitops.NewService(config.GitTimeout())

	return &services{
		repo:      repo,
		validator: validator,
		detector:  detector,
		migrator:  migrator,
		git:       git,
		runner: &migrate.Runner{
			Detector: detector,
			Migrator: migrator,
			Git:      git,
		},
	}
}
