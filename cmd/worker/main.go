package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kito-labs/risiti/internal/bootstrap"
	"github.com/kito-labs/risiti/internal/config"
	"github.com/kito-labs/risiti/internal/observability/logging"
	"github.com/kito-labs/risiti/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	app.ParseUC.SetTextFallbackHook(func() {
		workerMetrics.RecordTextFallback("worker")
	})

	metricsServer := &http.Server{
		Addr:        ":" + cfg.WorkerMetricsPort,
		Handler:     workerMetricsHandler(workerMetrics),
		ReadTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeBillUploaded(ctx, func(handlerCtx context.Context, billID string) error {
		parseCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		if bill, getErr := app.Repo.GetByID(parseCtx, billID); getErr == nil {
			workerMetrics.ObserveQueueLag("worker", time.Since(bill.CreatedAt))
		}

		workerMetrics.StartParse()
		start := time.Now()
		parseErr := app.ParseUC.ParseByID(parseCtx, billID)
		workerMetrics.FinishParse("worker", time.Since(start), parseErr)
		return parseErr
	})
	if err != nil {
		slog.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}

func workerMetricsHandler(m *metrics.WorkerMetrics) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("/metrics", m.Handler())
	return mux
}
