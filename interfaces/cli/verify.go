package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	api "github.com/felixgeelhaar/maker-go/interfaces/api"
)

type verifyOptions struct {
	movesPath  string
	disks      int
	jsonOutput bool
}

func (a *App) newVerifyCmd() *cobra.Command {
	opts := &verifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Re-simulate a list of moves",
		Long: `Verify reads a JSON array of [disk, from, to] moves, replays it from the
start configuration and checks that it ends with every disk on peg 2.

Examples:
  maker verify --moves moves.json --disks 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.verify(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.movesPath, "moves", "m", "", "Path to a JSON array of moves (required)")
	cmd.Flags().IntVarP(&opts.disks, "disks", "n", 0, "Number of disks (required)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output the report as JSON")
	_ = cmd.MarkFlagRequired("moves")
	_ = cmd.MarkFlagRequired("disks")

	return cmd
}

func (a *App) verify(opts *verifyOptions) error {
	if opts.disks < 1 {
		return fmt.Errorf("--disks must be at least 1, got %d", opts.disks)
	}

	data, err := os.ReadFile(opts.movesPath)
	if err != nil {
		return fmt.Errorf("failed to read moves: %w", err)
	}

	var plan api.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return fmt.Errorf("failed to parse moves: %w", err)
	}

	report := api.Verify(plan, opts.disks)
	if opts.jsonOutput {
		if err := writeJSON(a, report); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(a.stdout, "Verifying %d moves...\n", len(plan))
		printReport(a, &report)
	}

	if !report.Valid {
		return errSolutionInvalid
	}
	return nil
}
