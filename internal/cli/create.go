package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openstandardagents/ossa/internal/manifest"
)

var (
	createKind   string
	createOutput string
)

func init() {
	createCmd.Flags().StringVar(&createKind, "kind", string(manifest.KindAgent), "Manifest kind (Agent, Task, or Workflow)")
	createCmd.Flags().StringVarP(&createOutput, "output", "o", "", "Write to this file instead of <name>.ossa.yaml")
	rootCmd.AddCommand(createCmd)
}

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new manifest at the current schema version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		m := manifest.New(name, manifest.Kind(createKind))

		// Round-trip through the untyped document so Save emits the same
		// shape validate and migrate consume.
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("encoding manifest: %w", err)
		}
		doc, err := manifest.Parse(data, ".json")
		if err != nil {
			return err
		}

		path := createOutput
		if path == "" {
			path = name + ".ossa.yaml"
		}
		if err := manifest.Save(doc, path, manifest.FormatForPath(path)); err != nil {
			return err
		}
		fmt.Printf("created %s (%s, schema %s)\n", path, createKind, manifest.CurrentVersion)
		return nil
	},
}
