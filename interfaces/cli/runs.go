package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/maker-go/domain/run"
	api "github.com/felixgeelhaar/maker-go/interfaces/api"
)

type runsOptions struct {
	store      string
	status     string
	disks      int
	limit      int
	jsonOutput bool
}

func (a *App) newRunsCmd() *cobra.Command {
	opts := &runsOptions{}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect persisted runs",
		Long: `Inspect runs recorded in a sqlite run store.

Examples:
  maker runs list --store runs.db
  maker runs list --store runs.db --status failed --limit 5
  maker runs show 3f1c... --store runs.db --json`,
	}

	cmd.PersistentFlags().StringVar(&opts.store, "store", "runs.db", "Path to the sqlite run store")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")

	list := &cobra.Command{
		Use:   "list",
		Short: "List runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listRuns(cmd.Context(), opts)
		},
	}
	list.Flags().StringVar(&opts.status, "status", "", "Filter by status: running, completed, failed")
	list.Flags().IntVar(&opts.disks, "disks", 0, "Filter by disk count")
	list.Flags().IntVar(&opts.limit, "limit", 20, "Maximum runs to show (0 for all)")

	show := &cobra.Command{
		Use:   "show ID",
		Short: "Show one run with its per-step votes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.showRun(cmd.Context(), opts, args[0])
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}

func (a *App) listRuns(ctx context.Context, opts *runsOptions) error {
	store, err := api.OpenRunStore(opts.store)
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}
	defer store.Close()

	filter := run.ListFilter{DiskCount: opts.disks, Limit: opts.limit}
	if opts.status != "" {
		filter.Status = []run.Status{run.Status(opts.status)}
	}

	records, err := store.List(ctx, filter)
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		return writeJSON(a, records)
	}
	if len(records) == 0 {
		fmt.Fprintln(a.stdout, "No runs found.")
		return nil
	}

	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tDISKS\tK\tSTEPS\tVERIFIED\tSTARTED\tDURATION")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%t\t%s\t%s\n",
			r.ID, r.Status, r.DiskCount, r.K, len(r.Steps), r.Verified,
			r.StartTime.Format(time.RFC3339), r.Duration().Round(time.Millisecond))
	}
	return w.Flush()
}

func (a *App) showRun(ctx context.Context, opts *runsOptions, id string) error {
	store, err := api.OpenRunStore(opts.store)
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}
	defer store.Close()

	r, err := store.Get(ctx, id)
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		return writeJSON(a, r)
	}

	fmt.Fprintf(a.stdout, "Run %s\n", r.ID)
	fmt.Fprintf(a.stdout, "  Status:   %s\n", r.Status)
	fmt.Fprintf(a.stdout, "  Model:    %s\n", r.Model)
	fmt.Fprintf(a.stdout, "  Disks:    %d (k=%d)\n", r.DiskCount, r.K)
	fmt.Fprintf(a.stdout, "  Steps:    %d/%d\n", len(r.Steps), api.OptimalLength(r.DiskCount))
	fmt.Fprintf(a.stdout, "  Duration: %s\n", r.Duration().Round(time.Millisecond))
	if r.Error != "" {
		fmt.Fprintf(a.stdout, "  Error:    %s\n", r.Error)
	}
	printReport(a, r.Report)

	if len(r.Steps) == 0 {
		return nil
	}
	fmt.Fprintln(a.stdout)
	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tMOVE\tROUNDS\tVOTES\tTIMEOUT")
	for _, s := range r.Steps {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%t\n", s.Index, s.Action, s.Rounds, formatVotes(s), s.TimedOut)
	}
	return w.Flush()
}

func formatVotes(s run.StepSummary) string {
	out := ""
	for i, v := range s.Votes {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s=%d", v.Key, v.Count)
	}
	return out
}

func writeJSON(a *App, v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
