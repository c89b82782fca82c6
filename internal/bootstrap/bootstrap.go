package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/arun84-eng/AI-Agent-System/internal/config"
	"github.com/arun84-eng/AI-Agent-System/internal/core/domain"
	"github.com/arun84-eng/AI-Agent-System/internal/core/ports"
	"github.com/arun84-eng/AI-Agent-System/internal/core/usecase"
	"github.com/arun84-eng/AI-Agent-System/internal/infrastructure/agent/email"
	"github.com/arun84-eng/AI-Agent-System/internal/infrastructure/agent/jsonpayload"
	"github.com/arun84-eng/AI-Agent-System/internal/infrastructure/agent/pdfdoc"
	"github.com/arun84-eng/AI-Agent-System/internal/infrastructure/classifier/keyword"
	"github.com/arun84-eng/AI-Agent-System/internal/infrastructure/queue/nats"
	"github.com/arun84-eng/AI-Agent-System/internal/infrastructure/repository/postgres"
	"github.com/arun84-eng/AI-Agent-System/internal/infrastructure/resilience"
	"github.com/arun84-eng/AI-Agent-System/internal/infrastructure/sink/httpsink"
	"github.com/arun84-eng/AI-Agent-System/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue ports.MessageQueue
	Repo  ports.DocumentRepository

	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor

	// DispatchExecutor is exposed so the worker can observe retry
	// attempts before processing starts.
	DispatchExecutor *resilience.Executor

	closeFn func()
}

// Option customizes wiring. Decorators let the worker layer metrics
// onto the audit stores without the core knowing about prometheus.
type Option func(*options)

type options struct {
	activityDecorator func(ports.ActivityStore) ports.ActivityStore
	actionDecorator   func(ports.ActionStore) ports.ActionStore
}

func WithActivityDecorator(fn func(ports.ActivityStore) ports.ActivityStore) Option {
	return func(o *options) { o.activityDecorator = fn }
}

func WithActionDecorator(fn func(ports.ActionStore) ports.ActionStore) Option {
	return func(o *options) { o.actionDecorator = fn }
}

func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	repo := postgres.NewDocumentRepository(db)
	activities := postgres.NewActivityRepository(db)
	actions := postgres.NewActionRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure documents schema: %w", err)
	}
	if err := activities.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure activity schema: %w", err)
	}
	if err := actions.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure actions schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	classifier := keyword.New(cfg.ClassifierMinScore, keyword.WithPDFText(pdfdoc.ExtractText))

	agents := map[domain.Format]ports.FormatAgent{
		domain.FormatEmail: email.New(cfg.EmailHighUrgency, cfg.EmailMediumUrgency),
		domain.FormatJSON:  jsonpayload.New(cfg.JSONAmountThreshold),
		domain.FormatPDF:   pdfdoc.New(cfg.PDFHighValueThreshold),
	}

	routes, err := config.LoadSinkRoutes(cfg.SinkRoutesPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("load sink routes: %w", err)
	}

	dispatchExecutor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    cfg.DispatchMaxAttempts,
		RetryInitialBackoff: time.Duration(cfg.DispatchInitialBackoffMs) * time.Millisecond,
		RetryMaxBackoff:     time.Duration(cfg.DispatchMaxBackoffMs) * time.Millisecond,
		BreakerEnabled:      true,
	})

	sink := httpsink.New(httpsink.Config{
		Routes:        sinkRoutes(routes),
		Timeout:       time.Duration(cfg.DispatchTimeoutSeconds) * time.Second,
		RatePerSecond: cfg.DispatchRatePerSecond,
		Executor:      dispatchExecutor,
	})
	sinks := make(map[domain.ActionType]ports.ActionSink)
	for actionType := range sinkRoutes(routes) {
		sinks[actionType] = sink
	}

	var activityStore ports.ActivityStore = activities
	if o.activityDecorator != nil {
		activityStore = o.activityDecorator(activityStore)
	}
	var actionStore ports.ActionStore = actions
	if o.actionDecorator != nil {
		actionStore = o.actionDecorator(actionStore)
	}

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(
		repo,
		storage,
		activityStore,
		actionStore,
		classifier,
		agents,
		sinks,
		time.Duration(cfg.DispatchTimeoutSeconds)*time.Second,
	)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		IngestUC:  ingestUC,
		ProcessUC: processUC,

		DispatchExecutor: dispatchExecutor,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

// sinkRoutes drops empty endpoints so unrouted action types fall through
// to internal logging instead of failing dispatch.
func sinkRoutes(routes map[string]string) map[domain.ActionType]string {
	out := make(map[domain.ActionType]string, len(routes))
	for action, endpoint := range routes {
		if endpoint == "" {
			continue
		}
		out[domain.ActionType(action)] = endpoint
	}
	return out
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
