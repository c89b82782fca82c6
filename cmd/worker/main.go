package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arun84-eng/AI-Agent-System/internal/bootstrap"
	"github.com/arun84-eng/AI-Agent-System/internal/config"
	"github.com/arun84-eng/AI-Agent-System/internal/core/ports"
	"github.com/arun84-eng/AI-Agent-System/internal/observability/logging"
	"github.com/arun84-eng/AI-Agent-System/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics("worker")

	app, err := bootstrap.New(ctx, cfg,
		bootstrap.WithActivityDecorator(func(next ports.ActivityStore) ports.ActivityStore {
			return metrics.NewInstrumentedActivityStore(next, workerMetrics, "worker")
		}),
		bootstrap.WithActionDecorator(func(next ports.ActionStore) ports.ActionStore {
			return metrics.NewInstrumentedActionStore(next, workerMetrics, "worker")
		}),
	)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	app.DispatchExecutor.OnRetry(func(operation string, attempt int) {
		workerMetrics.ObserveDispatchRetry("worker", operation)
	})

	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: metricsMux(workerMetrics),
	}
	go func() {
		logger.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	processTimeout := time.Duration(cfg.ProcessTimeoutSeconds) * time.Second

	logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeDocumentIngested(ctx, func(handlerCtx context.Context, documentID string) error {
		docLogger := logging.WithDocument(logger, documentID)

		if doc, err := app.Repo.GetByID(handlerCtx, documentID); err == nil {
			workerMetrics.ObserveQueueLag("worker", time.Since(doc.CreatedAt))
		}

		processCtx, cancel := context.WithTimeout(handlerCtx, processTimeout)
		defer cancel()

		workerMetrics.StartDocument()
		start := time.Now()
		processErr := app.ProcessUC.ProcessByID(processCtx, documentID)
		workerMetrics.FinishDocument("worker", time.Since(start), processErr)

		if processErr != nil {
			docLogger.Error("document processing failed", "error", processErr)
			return processErr
		}
		docLogger.Info("document processed", "duration_ms", time.Since(start).Milliseconds())
		return nil
	})
	if err != nil {
		logger.Error("worker subscribe failed", "error", err)
		os.Exit(1)
	}
}

func metricsMux(m *metrics.WorkerMetrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
