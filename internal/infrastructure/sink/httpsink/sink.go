// Package httpsink delivers routed actions to external collaborators
// (CRM escalation, risk alerting) over HTTP with retry, circuit breaking,
// and client-side rate limiting.
package httpsink

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/arun84-eng/AI-Agent-System/internal/core/domain"
	"github.com/arun84-eng/AI-Agent-System/internal/core/ports"
	"github.com/arun84-eng/AI-Agent-System/internal/infrastructure/resilience"
)

type Config struct {
	// Routes maps action types to endpoint URLs. Types without a route
	// are rejected at dispatch time.
	Routes map[domain.ActionType]string

	Timeout       time.Duration
	RatePerSecond int
	Executor      *resilience.Executor
}

type Sink struct {
	routes   map[domain.ActionType]string
	client   *http.Client
	executor *resilience.Executor
	limiter  *rate.Limiter
}

func New(cfg Config) *Sink {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ratePerSecond := cfg.RatePerSecond
	if ratePerSecond <= 0 {
		ratePerSecond = 10
	}
	return &Sink{
		routes:   cfg.Routes,
		client:   &http.Client{Timeout: timeout},
		executor: cfg.Executor,
		limiter:  rate.NewLimiter(rate.Limit(ratePerSecond), ratePerSecond),
	}
}

type dispatchRequest struct {
	DocumentID  string         `json:"document_id"`
	Action      string         `json:"action"`
	Description string         `json:"description"`
	Priority    string         `json:"priority"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type dispatchResponse struct {
	Reference string `json:"reference"`
	ID        string `json:"id"`
}

// Dispatch posts the action to its configured endpoint and returns the
// external reference id. Retries and the breaker live in the executor;
// the rate limiter smooths bursts across concurrent documents.
func (s *Sink) Dispatch(ctx context.Context, actionType domain.ActionType, payload ports.ActionDispatch) (string, error) {
	endpoint, ok := s.routes[actionType]
	if !ok || endpoint == "" {
		return "", domain.WrapError(domain.ErrDispatchFailure, "sink dispatch",
			fmt.Errorf("no endpoint configured for action %q", actionType))
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	request := dispatchRequest{
		DocumentID:  payload.DocumentID,
		Action:      string(actionType),
		Description: payload.Description,
		Priority:    string(payload.Priority),
		Metadata:    payload.Metadata,
	}
	operation := "sink." + string(actionType)

	var response dispatchResponse
	call := func(callCtx context.Context) error {
		return s.postJSON(callCtx, endpoint, request, &response, operation)
	}

	var err error
	if s.executor != nil {
		err = s.executor.Execute(ctx, operation, call, classifySinkError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded(operation, err)
	}

	if response.Reference != "" {
		return response.Reference, nil
	}
	return response.ID, nil
}
