// Command nutriplan manages a nutrition food log and a grocery list from the
// command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"nutriplan/internal/app"
	"nutriplan/internal/config"
	"nutriplan/internal/core"
	"nutriplan/internal/logging"
	"nutriplan/pkg/domain"
)

// cli carries the state shared by all subcommands of one invocation.
type cli struct {
	configPath string
	verbose    bool
	seed       bool

	out      io.Writer
	logger   *logging.Logger
	app      *app.App
	registry *prometheus.Registry
	now      func() time.Time
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run executes one command line and releases the stores it opened, whether or
// not the command succeeded.
func run(ctx context.Context, out io.Writer, args []string) error {
	root, c := newRootCmd(out)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return errors.Join(err, c.close(context.WithoutCancel(ctx)))
}

func newRootCmd(out io.Writer) (*cobra.Command, *cli) {
	c := &cli{out: out, now: time.Now}
	root := &cobra.Command{
		Use:           "nutriplan",
		Short:         "Track meals and plan groceries",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !needsStores(cmd) {
				return nil
			}
			return c.open(cmd)
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&c.configPath, "config", config.DefaultPath(), "path to config.yaml")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&c.seed, "sample-data", true, "seed empty stores with sample data (overrides config)")

	root.AddCommand(newLogCmd(c), newGroceryCmd(c), newParseCmd(c), newExportCmd(c), newWatchCmd(c))
	return root, c
}

// needsStores reports whether cmd touches persisted state.
func needsStores(cmd *cobra.Command) bool {
	return cmd.Annotations["stores"] != "none"
}

func (c *cli) open(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("sample-data") {
		cfg.SampleData = c.seed
	}
	logger, err := logging.New(cfg.Logging.Level, c.verbose)
	if err != nil {
		return err
	}
	c.logger = logger

	c.registry = prometheus.NewRegistry()
	prom, err := core.NewPrometheusMetricsRecorder(c.registry)
	if err != nil {
		return err
	}
	metrics := core.MultiMetricsRecorder{prom, core.NewExpvarMetricsRecorder("")}

	a, err := app.Open(cmd.Context(), cfg, logger, core.WithMetricsRecorder(metrics))
	if err != nil {
		return err
	}
	c.app = a
	return nil
}

func (c *cli) close(ctx context.Context) error {
	var err error
	if c.app != nil {
		err = c.app.Close(ctx)
		c.app = nil
	}
	if c.logger != nil {
		_ = c.logger.Sync()
	}
	return err
}

func (c *cli) today() string { return c.now().Format(domain.DateLayout) }
