package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	api "github.com/felixgeelhaar/maker-go/interfaces/api"
)

func (a *App) newExportSchemaCmd() *cobra.Command {
	var (
		output  string
		compact bool
	)

	cmd := &cobra.Command{
		Use:   "export-schema",
		Short: "Print the JSON Schema of the solver configuration",
		Long: `Print the JSON Schema (draft 2020-12) describing solver configuration files.

Point an editor's YAML language server at the exported file to get
completion and inline validation for maker.yaml:

  maker export-schema -o maker.schema.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := schemaBytes(compact)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = fmt.Fprintln(a.stdout, string(data))
				return err
			}
			if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
				return fmt.Errorf("write schema: %w", err)
			}
			fmt.Fprintf(a.stdout, "Schema written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	cmd.Flags().BoolVar(&compact, "compact", false, "emit single-line JSON")
	return cmd
}

func schemaBytes(compact bool) ([]byte, error) {
	if compact {
		return json.Marshal(api.GenerateConfigSchema())
	}
	s, err := api.ConfigSchemaJSON()
	if err != nil {
		return nil, fmt.Errorf("generate schema: %w", err)
	}
	return []byte(s), nil
}
