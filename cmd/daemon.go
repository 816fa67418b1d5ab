package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/pawglance/internal/metrics"
	"github.com/twiced-technology-gmbh/pawglance/internal/watcher"
	"github.com/twiced-technology-gmbh/pawglance/internal/writer"
)

const (
	metricsReadTimeout = 5 * time.Second
	shutdownTimeout    = 5 * time.Second
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Keep the snapshot current",
	Long: `Runs the writer in the foreground. A snapshot is published at start, whenever
the task source changes, at each local midnight and once per refresh
interval. Failed publishes are logged and retried on the next trigger.`,
	Args: cobra.NoArgs,
	RunE: runDaemon,
}

func init() {
	daemonCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9464")
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()
	e.metrics = metrics.New()

	w, err := e.newWriter()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		srv := &http.Server{Addr: addr, Handler: metricsMux(e.metrics), ReadHeaderTimeout: metricsReadTimeout}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				e.logger.Error("metrics server stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		e.logger.Info("serving metrics", "addr", addr)
	}

	const dirMode = 0o750
	if err := os.MkdirAll(e.cfg.TasksPath(), dirMode); err != nil {
		return err
	}

	changed := make(chan struct{}, 1)
	tw, err := watcher.New([]string{e.cfg.TasksPath()}, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}, watcher.WithFilter(watcher.Extension(".md")))
	if err != nil {
		return err
	}
	defer tw.Close()
	go tw.Run(ctx, func(err error) { e.logger.Warn("task source watcher", "error", err) })

	e.logger.Info("daemon started",
		"channel", e.cfg.Channel,
		"tasks", e.cfg.TasksPath(),
		"interval", e.cfg.Policy().Interval)
	return runPublishLoop(ctx, e, w, changed)
}

// runPublishLoop publishes once, then on every task source change and at each
// republish instant the policy yields, until ctx is done.
func runPublishLoop(ctx context.Context, e *env, w *writer.Writer, changed <-chan struct{}) error {
	policy := e.cfg.Policy()

	publish := func(reason string) time.Time {
		now := time.Now()
		tasks, err := readTasks(e.cfg)
		if err == nil {
			_, err = w.Publish(ctx, tasks)
		}
		if err != nil {
			e.logger.Warn("publish failed; retrying on next trigger", "reason", reason, "error", err)
		} else {
			e.logger.Debug("published", "reason", reason)
		}
		return now
	}

	last := publish("start")
	timer := time.NewTimer(time.Until(policy.NextPublishAfter(last)))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("daemon stopped")
			return nil
		case <-changed:
			last = publish("tasks changed")
		case <-timer.C:
			last = publish("scheduled")
		}
		timer.Reset(time.Until(policy.NextPublishAfter(last)))
	}
}

func metricsMux(m *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
