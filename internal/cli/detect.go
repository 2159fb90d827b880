package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openstandardagents/ossa/internal/manifest"
	"github.com/openstandardagents/ossa/internal/schema"
)

var detectJSON bool

func init() {
	detectCmd.Flags().BoolVar(&detectJSON, "json", false, "Print the detection result as JSON")
	rootCmd.AddCommand(detectCmd)
}

var detectCmd = &cobra.Command{
	Use:   "detect <manifest>",
	Short: "Detect a manifest's schema version",
	Long: `Infer the schema version of a manifest from its version marker, its
legacy ossaVersion field, or by probing the known schemas, and report the
confidence of the detection.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := newServices()

		doc, err := manifest.Load(args[0])
		if err != nil {
			return err
		}

		result := svc.detector.DetectVersion(doc)

		if detectJSON {
			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling detection result: %w", err)
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Printf("version:    %s\n", result.Version)
		fmt.Printf("confidence: %s\n", result.Confidence)
		fmt.Printf("source:     %s\n", result.Source)
		for _, w := range result.Warnings {
			fmt.Printf("warning:    %s\n", w)
		}

		latest := schema.Latest()
		if svc.detector.NeedsMigration(result.Version, latest) {
			fmt.Printf("\nmigration to %s is available: run '%s migrate %s --to %s'\n",
				latest, rootCmd.Use, args[0], latest)
		}
		return nil
	},
}
