package metrics

import (
	"context"
	"time"

	"github.com/arun84-eng/AI-Agent-System/internal/core/domain"
	"github.com/arun84-eng/AI-Agent-System/internal/core/ports"
)

// InstrumentedActivityStore observes stage durations as records land in
// the audit trail, keeping the orchestrator free of metrics plumbing.
type InstrumentedActivityStore struct {
	next    ports.ActivityStore
	metrics *WorkerMetrics
	service string
}

func NewInstrumentedActivityStore(next ports.ActivityStore, m *WorkerMetrics, service string) *InstrumentedActivityStore {
	return &InstrumentedActivityStore{
		next:    next,
		metrics: m,
		service: service,
	}
}

func (s *InstrumentedActivityStore) Append(ctx context.Context, record *domain.ActivityRecord) error {
	err := s.next.Append(ctx, record)
	if err == nil {
		s.metrics.ObserveStage(
			s.service,
			record.Action,
			string(record.Status),
			time.Duration(record.DurationMs)*time.Millisecond,
		)
	}
	return err
}

// InstrumentedActionStore counts follow-up actions by type and status.
type InstrumentedActionStore struct {
	next    ports.ActionStore
	metrics *WorkerMetrics
	service string
}

func NewInstrumentedActionStore(next ports.ActionStore, m *WorkerMetrics, service string) *InstrumentedActionStore {
	return &InstrumentedActionStore{
		next:    next,
		metrics: m,
		service: service,
	}
}

func (s *InstrumentedActionStore) Append(ctx context.Context, record *domain.ActionRecord) error {
	err := s.next.Append(ctx, record)
	if err == nil {
		s.metrics.ObserveAction(s.service, string(record.Type), string(record.Status))
	}
	return err
}
