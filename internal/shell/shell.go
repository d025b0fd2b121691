package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-hclog"
)

const Prompt = "logviz> "

// Runner executes one tokenized command line.
type Runner func(ctx context.Context, args []string) error

// Shell reads commands from in until EOF, "exit" or "quit", or until ctx is
// done. Errors from a command are printed and the loop continues.
type Shell struct {
	in     io.Reader
	out    io.Writer
	run    Runner
	logger hclog.Logger
}

// New creates a Shell.
func New(in io.Reader, out io.Writer, run Runner, logger hclog.Logger) *Shell {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Shell{in: in, out: out, run: run, logger: logger.Named("shell")}
}

// Run drives the prompt loop and returns the number of commands that failed.
func (s *Shell) Run(ctx context.Context) (int, error) {
	scanner := bufio.NewScanner(s.in)
	failed := 0

	for {
		if err := ctx.Err(); err != nil {
			return failed, err
		}
		fmt.Fprint(s.out, Prompt)
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return failed, scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == "exit" || line == "quit" {
			return failed, nil
		}

		args, err := Split(line)
		if err != nil {
			failed++
			fmt.Fprintf(s.out, "error: %v\n", err)
			continue
		}

		s.logger.Debug("running command", "args", args)
		if err := s.run(ctx, args); err != nil {
			failed++
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
}
