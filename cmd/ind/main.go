package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/PiranhaCodes/ind/internal/config"
	"github.com/PiranhaCodes/ind/internal/format"
	"github.com/PiranhaCodes/ind/internal/logging"
	"github.com/PiranhaCodes/ind/internal/pty"
	"github.com/PiranhaCodes/ind/internal/supervisor"
)

// runFunc executes the command line once flags are parsed.
type runFunc func(cfg *config.Config, args []string) (int, error)

func newRootCmd(cfg *config.Config, run runFunc, status *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ind [flags] [--] [command [args...]]",
		Short: "Run a command and prefix every line of its output",
		Long: `ind runs a command and writes its stdout and stderr with a prefix at the
start and a postfix at the end of every line. Streams attached to a terminal
are given a pseudo-terminal so the command behaves as it would interactively.

Templates understand %% for a literal percent sign and %c for the current time.
Without a command the user's shell is started.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			st, err := run(cfg, args)
			*status = st
			return err
		},
	}

	flags := cmd.Flags()
	flags.SetInterspersed(false)
	flags.StringVarP(&cfg.Prefix, "prefix", "p", cfg.Prefix, "stdout line prefix")
	flags.StringVarP(&cfg.Postfix, "postfix", "a", cfg.Postfix, "stdout line postfix")
	flags.StringVarP(&cfg.ErrPrefix, "err-prefix", "P", cfg.ErrPrefix, "stderr line prefix")
	flags.StringVarP(&cfg.ErrPostfix, "err-postfix", "A", cfg.ErrPostfix, "stderr line postfix")
	flags.CountVarP(&cfg.Verbose, "verbose", "v", "increase diagnostic output (repeatable)")
	return cmd
}

// runSupervisor is the production runFunc.
func runSupervisor(cfg *config.Config, args []string) (int, error) {
	log := logging.New(logging.Config{Verbosity: cfg.Verbose, Output: os.Stderr})
	defer log.Sync()

	cfg.Validate(func(w format.Warning) {
		log.Warn("malformed template", zap.String("detail", w.String()))
	})

	argv, err := config.Command(args)
	if err != nil {
		return supervisor.ExitFailure, err
	}

	provider := pty.Detect(pty.DefaultProbe())
	log.Debug("pty provider selected", zap.Stringer("kind", provider.Kind()))

	outPre, outPost, errPre, errPost := cfg.Templates()
	return supervisor.New(supervisor.Config{
		Argv:       argv,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		OutPrefix:  outPre,
		OutPostfix: outPost,
		ErrPrefix:  errPre,
		ErrPostfix: errPost,
		Provider:   provider,
		Logger:     log,
	}).Run()
}

func execute(args []string, run runFunc) int {
	prog := filepath.Base(os.Args[0])

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: config: %v\n", prog, err)
		return supervisor.ExitFailure
	}

	status := 0
	cmd := newRootCmd(cfg, run, &status)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", prog, err)
		if status == 0 {
			status = supervisor.ExitFailure
		}
	}
	return status
}

func main() {
	os.Exit(execute(os.Args[1:], runSupervisor))
}
