// Command procx runs a single external command with configurable
// stdio redirection and an optional deadline, exercising the process
// package from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/geb0598/coj-go/internal/logging"
	"github.com/geb0598/coj-go/ipc"
	"github.com/geb0598/coj-go/process"
)

var (
	flagStdout  string
	flagStderr  string
	flagStdin   string
	flagTimeout time.Duration
	flagVerbose bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "procx -- command [args...]",
		Short: "Run a command with piped I/O and a deadline",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runProcx,
	}
	cmd.Flags().StringVar(&flagStdout, "stdout", "pipe", "stdout redirection: none|pipe|devnull|<path>")
	cmd.Flags().StringVar(&flagStderr, "stderr", "pipe", "stderr redirection: none|pipe|devnull|stdout|<path>")
	cmd.Flags().StringVar(&flagStdin, "stdin", "none", "stdin redirection: none|pipe|<path>")
	cmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "deadline for the command; 0 disables it")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "emit debug-level logging")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "procx:", err)
		os.Exit(1)
	}
}

func runProcx(cmd *cobra.Command, args []string) error {
	logging.SetVerbose(flagVerbose)
	log := logging.For("procx")

	stdinOpt, err := parseSource(flagStdin)
	if err != nil {
		return err
	}
	stdoutOpt, err := parseDestination(flagStdout, false)
	if err != nil {
		return err
	}
	stderrOpt, err := parseDestination(flagStderr, true)
	if err != nil {
		return err
	}

	p, err := process.New(strings.Join(args, " "),
		process.WithStdin(stdinOpt),
		process.WithStdout(stdoutOpt),
		process.WithStderr(stderrOpt))
	if err != nil {
		return fmt.Errorf("starting %q: %w", args, err)
	}
	defer p.Close()

	ctx := context.Background()
	var cancel context.CancelFunc
	if flagTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, flagTimeout)
		defer cancel()
	}

	result, err := p.Communicate(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("communicate failed")
		return err
	}

	if len(result.Stdout) > 0 {
		os.Stdout.Write(result.Stdout)
	}
	if len(result.Stderr) > 0 {
		os.Stderr.Write(result.Stderr)
	}

	code, ok := p.ReturnCode()
	if ok && code != 0 {
		os.Exit(normalizeExit(code))
	}
	return nil
}

func normalizeExit(code int) int {
	if code < 0 {
		return 128 - code
	}
	return code
}

func parseSource(flag string) (ipc.Source, error) {
	switch flag {
	case "none":
		return ipc.NewSourceNone(), nil
	case "pipe":
		return ipc.NewSourcePipe(), nil
	default:
		return ipc.NewSourceFile(flag), nil
	}
}

func parseDestination(flag string, isStderr bool) (ipc.Destination, error) {
	switch flag {
	case "none":
		return ipc.NewDestinationNone(), nil
	case "pipe":
		return ipc.NewDestinationPipe(), nil
	case "devnull":
		return ipc.NewDestinationDevnull(), nil
	case "stdout":
		if !isStderr {
			return ipc.Destination{}, fmt.Errorf("stdout redirection target %q only valid for --stderr", flag)
		}
		return ipc.NewDestinationStdout(), nil
	default:
		return ipc.NewDestinationFile(flag), nil
	}
}
