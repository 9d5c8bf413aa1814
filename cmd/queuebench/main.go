// Command queuebench measures producer/consumer throughput of the
// lock-free and blocking queues.
//
// Usage:
//
//	go run ./cmd/queuebench run --queue lockfree -p 4 -c 4 -n 1000000
//	go run ./cmd/queuebench run --queue blocking --pin --output results.csv
//	go run ./cmd/queuebench sweep plan.yaml --output results.csv
//
// Defaults are read from QUEUEBENCH_* environment variables (and an
// optional .env file); flags override them.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/randomizedcoder/msqueue/internal/bench"
	"github.com/randomizedcoder/msqueue/internal/logging"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "queuebench: %v\n", err)
		os.Exit(2)
	}

	if err := newRootCmd(&cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the state shared by the subcommands once flags are parsed.
type app struct {
	cfg     *Config
	log     zerolog.Logger
	reg     *prometheus.Registry
	metrics *bench.Metrics
	server  *http.Server
}

func newRootCmd(cfg *Config) *cobra.Command {
	a := &app{cfg: cfg}

	root := &cobra.Command{
		Use:           "queuebench",
		Short:         "Lock-free vs blocking MPMC queue benchmark",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.shutdown()
		},
	}
	root.CompletionOptions.HiddenDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: console or json")
	pf.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve Prometheus /metrics on this address")
	pf.StringVarP(&cfg.Output, "output", "o", cfg.Output, "append CSV results to this file")
	pf.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "abort after this long (0 = no limit)")
	pf.DurationVar(&cfg.Progress, "progress", cfg.Progress, "progress log interval (0 = off)")

	root.AddCommand(a.runCmd())
	root.AddCommand(a.sweepCmd())
	return root
}

func (a *app) runCmd() *cobra.Command {
	cfg := a.cfg
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one benchmark configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := ValidateConfig(cfg); err != nil {
				return a.fail(err)
			}
			bc, err := cfg.Bench()
			if err != nil {
				return a.fail(err)
			}

			ctx, cancel := a.context()
			defer cancel()

			res, err := bench.NewDriver(a.log, a.metrics).Run(ctx, bc)
			if err != nil {
				return a.fail(err)
			}
			return a.fail(a.report(res))
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.Queue, "queue", "q", cfg.Queue, "queue kind: lockfree or blocking")
	f.IntVarP(&cfg.Producers, "producers", "p", cfg.Producers, "number of producer goroutines")
	f.IntVarP(&cfg.Consumers, "consumers", "c", cfg.Consumers, "number of consumer goroutines")
	f.IntVarP(&cfg.Elements, "elements", "n", cfg.Elements, "total elements to enqueue")
	f.BoolVar(&cfg.Pin, "pin", cfg.Pin, "pin each worker to a CPU core")
	f.BoolVar(&cfg.Verify, "verify", cfg.Verify, "verify no element was lost or duplicated")
	return cmd
}

func (a *app) sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep PLAN-FILE",
		Short: "Run every configuration in a YAML plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := bench.LoadPlan(args[0])
			if err != nil {
				return a.fail(err)
			}
			base := bench.DefaultConfig()
			base.ProgressInterval = a.cfg.Progress
			cfgs, err := plan.Configs(base)
			if err != nil {
				return a.fail(err)
			}
			a.log.Info().Str("plan", args[0]).Int("runs", len(cfgs)).Msg("sweep starting")

			ctx, cancel := a.context()
			defer cancel()

			d := bench.NewDriver(a.log, a.metrics)
			for i, bc := range cfgs {
				res, err := d.Run(ctx, bc)
				if err != nil {
					return a.fail(fmt.Errorf("sweep run %d of %d: %w", i+1, len(cfgs), err))
				}
				if err := a.report(res); err != nil {
					return a.fail(err)
				}
			}
			a.log.Info().Int("runs", len(cfgs)).Msg("sweep finished")
			return nil
		},
	}
}

func (a *app) setup() error {
	log, err := logging.New(a.cfg.logging())
	if err != nil {
		fmt.Fprintf(os.Stderr, "queuebench: %v\n", err)
		return err
	}
	a.log = log

	if a.cfg.Timeout < 0 {
		return a.fail(ErrInvalidTimeout)
	}

	if a.cfg.MetricsAddr == "" {
		return nil
	}

	a.reg = prometheus.NewRegistry()
	a.reg.MustRegister(collectors.NewGoCollector())
	a.metrics = bench.NewMetrics(a.reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.reg, promhttp.HandlerOpts{}))
	a.server = &http.Server{
		Addr:              a.cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		a.log.Info().Str("address", a.cfg.MetricsAddr).Msg("starting metrics server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error().Err(err).Msg("metrics server failed")
		}
	}()
	return nil
}

func (a *app) shutdown() error {
	if a.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.server.Shutdown(ctx)
}

// context is cancelled by SIGINT/SIGTERM and, if set, the timeout.
func (a *app) context() (context.Context, context.CancelFunc) {
	ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if a.cfg.Timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func (a *app) report(res bench.Result) error {
	fmt.Printf("%-9s P=%-3d C=%-3d N=%-10d %10.3f ms %14.0f elements/s\n",
		res.Kind, res.Producers, res.Consumers, res.Elements,
		res.ElapsedMillis(), res.Throughput())

	if a.cfg.Output == "" {
		return nil
	}
	if err := bench.AppendCSV(a.cfg.Output, res); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

// fail logs err and hands it back to cobra. A nil err passes through.
func (a *app) fail(err error) error {
	if err != nil {
		a.log.Error().Err(err).Msg("queuebench failed")
	}
	return err
}
