/*

  Copyright 2012 Dmitry Kolesnikov, All Rights Reserved

  Licensed under the Apache License, Version 2.0 (the "License");
  you may not use this file except in compliance with the License.
  You may obtain a copy of the License at

      http://www.apache.org/licenses/LICENSE-2.0

  Unless required by applicable law or agreed to in writing, software
  distributed under the License is distributed on an "AS IS" BASIS,
  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
  See the License for the specific language governing permissions and
  limitations under the License.

*/

// Command tuid prints time-based unique identifiers.
//
//	tuid -n 10 --source system
//	tuid -n 100000 -w 8 --source parallel --derive v5
//	tuid -n 1000 --metrics :9090
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fogfish/tuid"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type args struct {
	source  string
	n       int
	workers int
	timeout time.Duration
	derive  string
	state   string
	metrics string
	verbose bool
}

func newRootCmd() *cobra.Command {
	var a args

	cmd := &cobra.Command{
		Use:           "tuid",
		Short:         "Print time-based unique identifiers",
		Long:          "tuid prints version 1 identifiers, optionally derived to version 3 or 5.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(a.verbose)

			if err := godotenv.Load(); err != nil {
				logger.Debug().Msg("no .env file found, using environment variables")
			}

			if err := run(cmd.Context(), a, logger, cmd.OutOrStdout()); err != nil {
				logger.Error().Err(err).Msg("generation failed")
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&a.source, "source", "s", tuid.SourceSystem, "source: system, process, parallel")
	flags.IntVarP(&a.n, "count", "n", 1, "number of identifiers")
	flags.IntVarP(&a.workers, "workers", "w", 1, "concurrent callers")
	flags.DurationVar(&a.timeout, "timeout", time.Minute, "deadline of generation")
	flags.StringVar(&a.derive, "derive", "", "derive name-based identifiers: v3, v5")
	flags.StringVar(&a.state, "state", "", "state file, overrides "+tuid.EnvStateFile)
	flags.StringVar(&a.metrics, "metrics", "", "serve prometheus metrics at address, e.g. :9090")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	return cmd
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Str("service", "tuid").
		Logger()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, a args, logger zerolog.Logger, stdout io.Writer) error {
	cfg, err := tuid.ConfigFromEnv()
	if err != nil {
		return err
	}
	if a.state != "" {
		cfg.StateFile = a.state
	}

	prom := prometheus.NewRegistry()
	metrics := tuid.NewMetrics(prom)

	if a.metrics != "" {
		srv := serve(a.metrics, prom, logger)
		defer srv.Shutdown(context.Background())
	}

	reg, err := tuid.NewRegistry(cfg, tuid.WithLogger(logger), tuid.WithMetrics(metrics))
	if err != nil {
		return err
	}
	defer reg.Close()

	source, err := reg.Get(a.source)
	if err != nil {
		return fmt.Errorf("%w, known: %v", err, reg.Names())
	}

	switch a.derive {
	case "":
	case "v3":
		source = tuid.Derived(source, tuid.ToV3)
	case "v5":
		source = tuid.Derived(source, tuid.ToV5)
	default:
		return fmt.Errorf("unknown derive %q", a.derive)
	}

	gctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	out := bufio.NewWriter(stdout)
	defer out.Flush()

	if err := generate(gctx, source, a.n, a.workers, out); err != nil {
		return err
	}

	logger.Debug().Int("n", a.n).Str("source", a.source).Msg("generated")

	if a.metrics != "" {
		out.Flush()
		logger.Info().Str("addr", a.metrics).Msg("serving metrics, interrupt to exit")
		<-ctx.Done()
	}

	return nil
}

// generate splits n over workers, each worker requests single batch
func generate(ctx context.Context, source tuid.Source, n, workers int, out io.Writer) error {
	if workers < 1 {
		workers = 1
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)

	for w := 0; w < workers; w++ {
		size := n / workers
		if w < n%workers {
			size++
		}

		g.Go(func() error {
			seq, err := source.NextBatch(ctx, size)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			return write(out, seq)
		})
	}

	return g.Wait()
}

func write(out io.Writer, seq []uuid.UUID) error {
	for _, uid := range seq {
		if _, err := fmt.Fprintln(out, uid); err != nil {
			return err
		}
	}
	return nil
}

func serve(addr string, prom *prometheus.Registry, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(prom, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server failed")
		}
	}()

	return srv
}
