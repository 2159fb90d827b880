package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openstandardagents/ossa/internal/manifest"
)

var validateVersion string

func init() {
	validateCmd.Flags().StringVar(&validateVersion, "version", "", "Validate against this schema version instead of the manifest's own marker")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate <manifest>...",
	Short: "Validate manifests against their schema version",
	Long: `Validate one or more OSSA manifests against the JSON Schema for their
declared version (or the version given with --version). Structural errors
make the command fail; best-practice warnings are advisory only.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := newServices()

		docs := make([]manifest.Document, 0, len(args))
		for _, path := range args {
			doc, err := manifest.Load(path)
			if err != nil {
				return err
			}
			docs = append(docs, doc)
		}

		items := svc.validator.ValidateMany(docs, validateVersion)

		invalid := 0
		for i, item := range items {
			path := args[i]
			if item.Err != nil {
				invalid++
				fmt.Printf("✗ %s: %v\n", path, item.Err)
				continue
			}
			r := item.Result
			if r.Valid {
				fmt.Printf("✓ %s is valid (schema %s)\n", path, r.Version)
			} else {
				invalid++
				fmt.Printf("✗ %s fails schema %s:\n", path, r.Version)
				for _, issue := range r.Errors {
					fmt.Printf("    %s: %s\n", issue.Path, issue.Message)
				}
			}
			for _, w := range r.Warnings {
				fmt.Printf("    warning: %s\n", w)
			}
		}

		if invalid > 0 {
			return fmt.Errorf("%d of %d manifests invalid", invalid, len(args))
		}
		return nil
	},
}
