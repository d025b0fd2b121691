package main

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/provide-io/logviz/internal/config"
	"github.com/provide-io/logviz/pkg/logging"
)

const version = "0.1.0"

func getBuildTimestamp() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.time" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					return t.UTC().Format(time.RFC3339)
				}
			}
		}
	}
	if exePath, err := os.Executable(); err == nil {
		if stat, err := os.Stat(exePath); err == nil {
			return stat.ModTime().UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

// app carries the state shared by every subcommand of one invocation.
type app struct {
	out    io.Writer
	errOut io.Writer

	configPath  string
	logLevel    string
	jsonOutput  bool
	versionFlag bool

	cfg    config.Config
	logger hclog.Logger
	logOut *logging.PrefixWriter
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut, logger: hclog.NewNullLogger()}

	root := &cobra.Command{
		Use:   "logviz",
		Short: "Digit bands, numerals and logarithms for visualizers",
		Long: `logviz computes what a logarithm visualizer draws: a value's numeral in
any base from 2 to 36, the power-of-base boundaries of its digit bands, which
bands and axis ticks to label, and log_b(x) with its area under 1/t.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.versionFlag {
				a.printVersion()
				return nil
			}
			return cmd.Help()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Path to a YAML config file (default $LOGVIZ_CONFIG)")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	pf.BoolVar(&a.jsonOutput, "json", false, "Print results as JSON")
	root.Flags().BoolVarP(&a.versionFlag, "version", "V", false, "Show version information")

	root.AddCommand(
		a.convertCmd(),
		a.parseCmd(),
		a.boundariesCmd(),
		a.labelsCmd(),
		a.ticksCmd(),
		a.logCmd(),
		a.areaCmd(),
		a.curveCmd(),
		a.sceneCmd(),
		a.verifyCmd(),
		a.serveCmd(),
		a.shellCmd(),
	)
	return root
}

// teardown writes out a partial log line still held by the prefix writer.
func (a *app) teardown(cmd *cobra.Command, args []string) error {
	if a.logOut == nil {
		return nil
	}
	return a.logOut.Flush()
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Resolve(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg
	a.logOut = logging.NewPrefixWriter(logging.LinePrefix, a.errOut)
	a.logger = logging.NewLogger("logviz", cfg.LogLevel, a.logOut)
	a.logger.Debug("configuration resolved", "config", a.configPath, "log_level", logging.ResolveLevel(cfg.LogLevel))
	return nil
}

func (a *app) printVersion() {
	fmt.Fprintf(a.out, "logviz %s\n", version)
	fmt.Fprintf(a.out, "Built: %s\n", getBuildTimestamp())
}

func main() {
	// Handle --version or -V before cobra parses other flags
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-V") {
		fmt.Printf("logviz %s\n", version)
		fmt.Printf("Built: %s\n", getBuildTimestamp())
		os.Exit(0)
	}

	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
