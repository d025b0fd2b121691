package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/provide-io/logviz/internal/server"
	"github.com/provide-io/logviz/internal/shell"
	"github.com/provide-io/logviz/pkg"
)

func (a *app) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the engine as a JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Addr = addr
			}
			if err := pkg.VerifyEngineWithLogger(a.logger); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(a.cfg, a.logger).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default $LOGVIZ_ADDR or :8080)")
	return cmd
}

var errNestedShell = errors.New("shell is already running")

func (a *app) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run logviz commands interactively",
		Long: `shell reads one logviz command per line, for example

  convert 255 --base 16
  scene 8 --compute-base 2.5

and prints each result. "exit", "quit" or end of input leave the shell.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			run := func(ctx context.Context, line []string) error {
				if len(line) > 0 && line[0] == "shell" {
					return errNestedShell
				}
				sub := newRootCmd(a.out, a.errOut)
				inherited := []string{"--log-level", a.cfg.LogLevel}
				if a.configPath != "" {
					inherited = append(inherited, "--config", a.configPath)
				}
				if a.jsonOutput {
					inherited = append(inherited, "--json")
				}
				sub.SetArgs(append(line, inherited...))
				return sub.ExecuteContext(ctx)
			}

			failed, err := shell.New(cmd.InOrStdin(), a.out, run, a.logger).Run(cmd.Context())
			a.logger.Debug("shell finished", "failed_commands", failed)
			return err
		},
	}
}
