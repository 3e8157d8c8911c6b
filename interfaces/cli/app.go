// Package cli implements the maker command.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	makergo "github.com/felixgeelhaar/maker-go"
)

// Build metadata, overridden with -ldflags "-X".
var (
	Version   = makergo.Version
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App is the maker command tree bound to a pair of output streams.
type App struct {
	root   *cobra.Command
	stdout io.Writer
	stderr io.Writer
}

// New builds the command tree writing to the process streams.
func New() *App {
	a := &App{stdout: os.Stdout, stderr: os.Stderr}

	a.root = &cobra.Command{
		Use:   "maker",
		Short: "Consensus step planning over an unreliable language model",
		Long: `maker solves the Tower of Hanoi one move at a time with a language model.

Every move is proposed by the model, validated against the rules, and voted
on until one move leads all others by k votes. The finished plan is
re-simulated before it is reported.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	a.root.AddCommand(
		a.newSolveCmd(),
		a.newVerifyCmd(),
		a.newRunsCmd(),
		a.newCacheCmd(),
		a.newValidateCmd(),
		a.newExportSchemaCmd(),
		a.newVersionCmd(),
	)
	return a
}

// WithOutput redirects command output, mostly for tests.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout, a.stderr = stdout, stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// Execute runs the command named by os.Args. An interrupt or SIGTERM
// cancels the context handed to the running command.
func (a *App) Execute(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the command named by args instead of os.Args.
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

func (a *App) newVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			if short {
				fmt.Fprintln(a.stdout, Version)
				return
			}
			fmt.Fprintf(a.stdout, "maker-go version %s\n  commit %s\n  built  %s\n", Version, GitCommit, BuildDate)
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print only the version number")
	return cmd
}
