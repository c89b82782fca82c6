package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/arun84-eng/AI-Agent-System/internal/core/domain"
	"github.com/arun84-eng/AI-Agent-System/internal/core/ports"
)

// ProcessDocumentUseCase drives one document through the pipeline:
// Classifying -> Extracting -> Routing -> Recording. Stages are strictly
// sequential within a run; each stage entered appends exactly one
// activity record before the run advances. If the trail cannot be
// written, the run halts rather than proceed unaudited.
type ProcessDocumentUseCase struct {
	repo       ports.DocumentRepository
	storage    ports.ObjectStorage
	activities ports.ActivityStore
	actions    ports.ActionStore
	classifier ports.Classifier
	agents     map[domain.Format]ports.FormatAgent
	sinks      map[domain.ActionType]ports.ActionSink

	dispatchTimeout time.Duration
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	activities ports.ActivityStore,
	actions ports.ActionStore,
	classifier ports.Classifier,
	agents map[domain.Format]ports.FormatAgent,
	sinks map[domain.ActionType]ports.ActionSink,
	dispatchTimeout time.Duration,
) *ProcessDocumentUseCase {
	if dispatchTimeout <= 0 {
		dispatchTimeout = 30 * time.Second
	}
	return &ProcessDocumentUseCase{
		repo:            repo,
		storage:         storage,
		activities:      activities,
		actions:         actions,
		classifier:      classifier,
		agents:          agents,
		sinks:           sinks,
		dispatchTimeout: dispatchTimeout,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.markStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	if err := uc.runPipeline(ctx, documentID); err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.markStatus(ctx, documentID, domain.StatusCompleted, ""); err != nil {
		return fmt.Errorf("set status=completed: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) runPipeline(ctx context.Context, documentID string) error {
	doc, raw, err := uc.loadDocument(ctx, documentID)
	if err != nil {
		return err
	}

	cls, err := uc.classifyStage(ctx, doc, raw)
	if err != nil {
		return err
	}
	if err := uc.checkCancelled(ctx, doc, domain.StageExtracting); err != nil {
		return err
	}

	ext, err := uc.extractStage(ctx, doc, raw, cls)
	if err != nil {
		return err
	}
	if err := uc.checkCancelled(ctx, doc, domain.StageRouting); err != nil {
		return err
	}

	outcome, err := uc.routeStage(ctx, doc, cls, ext)
	if err != nil {
		return err
	}
	if err := uc.checkCancelled(ctx, doc, domain.StageRecording); err != nil {
		return err
	}

	return uc.recordStageSummary(ctx, doc, cls, ext, outcome)
}

func (uc *ProcessDocumentUseCase) loadDocument(ctx context.Context, documentID string) (*domain.Document, []byte, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch document by id: %w", err)
	}
	body, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open stored document: %w", err)
	}
	defer body.Close()
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, nil, fmt.Errorf("read stored document: %w", err)
	}
	return doc, raw, nil
}

func (uc *ProcessDocumentUseCase) classifyStage(ctx context.Context, doc *domain.Document, raw []byte) (domain.ClassificationResult, error) {
	start := time.Now()
	cls, clsErr := uc.classifier.Classify(ctx, doc, raw)

	input := map[string]any{"filename": doc.Filename, "size_bytes": doc.SizeBytes}
	output := map[string]any{
		"format":     string(cls.Format),
		"intent":     string(cls.Intent),
		"confidence": cls.Confidence,
	}
	if err := uc.appendActivity(ctx, doc.ID, "classifier_agent", domain.StageClassifying, start, input, output, clsErr); err != nil {
		return domain.ClassificationResult{}, err
	}
	if clsErr != nil {
		return domain.ClassificationResult{}, fmt.Errorf("classify document: %w", clsErr)
	}

	if err := uc.repo.SaveClassification(ctx, doc.ID, cls); err != nil {
		return domain.ClassificationResult{}, domain.WrapError(domain.ErrPersistenceFailure, "save classification", err)
	}
	doc.Format = cls.Format
	doc.Intent = cls.Intent
	doc.Confidence = cls.Confidence
	return cls, nil
}

func (uc *ProcessDocumentUseCase) extractStage(ctx context.Context, doc *domain.Document, raw []byte, cls domain.ClassificationResult) (domain.ExtractionResult, error) {
	agent, ok := uc.agents[cls.Format]
	if !ok {
		err := domain.WrapError(domain.ErrUnrecognizedFormat, "select format agent",
			fmt.Errorf("no agent registered for format %q", cls.Format))
		if recErr := uc.appendActivity(ctx, doc.ID, "orchestrator", domain.StageExtracting, time.Now(), nil, nil, err); recErr != nil {
			return domain.ExtractionResult{}, recErr
		}
		return domain.ExtractionResult{}, err
	}

	start := time.Now()
	ext, extErr := agent.Extract(ctx, doc, raw, cls)

	input := map[string]any{"format": string(cls.Format), "intent": string(cls.Intent)}
	output := map[string]any{
		"priority":   string(ext.Priority),
		"flags":      append([]string(nil), ext.Flags...),
		"field_keys": fieldKeys(ext.Fields),
	}
	if err := uc.appendActivity(ctx, doc.ID, agent.Name(), domain.StageExtracting, start, input, output, extErr); err != nil {
		return domain.ExtractionResult{}, err
	}
	if extErr != nil {
		return domain.ExtractionResult{}, fmt.Errorf("extract fields: %w", extErr)
	}

	if err := uc.repo.SaveExtraction(ctx, doc.ID, ext); err != nil {
		return domain.ExtractionResult{}, domain.WrapError(domain.ErrPersistenceFailure, "save extraction", err)
	}
	doc.Priority = ext.Priority
	doc.Fields = ext.Fields
	doc.Flags = ext.Flags
	return ext, nil
}

type routeOutcome struct {
	dispatched int
	failed     int
	types      []string
}

// routeStage dispatches routed actions. Dispatch failures surface in the
// activity trail and the action record but never fail the document;
// completed extraction work is not erased by an unreachable sink.
func (uc *ProcessDocumentUseCase) routeStage(ctx context.Context, doc *domain.Document, cls domain.ClassificationResult, ext domain.ExtractionResult) (routeOutcome, error) {
	start := time.Now()
	records := RouteActions(doc.ID, cls.Intent, ext)

	outcome := routeOutcome{}
	var firstErr error
	for _, record := range records {
		outcome.types = append(outcome.types, string(record.Type))
		if err := uc.dispatchAction(ctx, record); err != nil {
			if domain.IsKind(err, domain.ErrPersistenceFailure) {
				return routeOutcome{}, err
			}
			outcome.failed++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		outcome.dispatched++
	}

	input := map[string]any{"intent": string(cls.Intent), "priority": string(ext.Priority)}
	output := map[string]any{
		"actions":    outcome.types,
		"dispatched": outcome.dispatched,
		"failed":     outcome.failed,
	}
	if err := uc.appendActivity(ctx, doc.ID, "action_router", domain.StageRouting, start, input, output, firstErr); err != nil {
		return routeOutcome{}, err
	}
	return outcome, nil
}

// dispatchAction delivers one action to its sink with a bounded
// wall-clock budget, then persists the terminal record. Action types
// without a sink are internal and complete immediately.
func (uc *ProcessDocumentUseCase) dispatchAction(ctx context.Context, record *domain.ActionRecord) error {
	sink, ok := uc.sinks[record.Type]
	if !ok {
		record.Status = domain.ActionCompleted
		record.UpdatedAt = time.Now().UTC()
		slog.Info("action_logged",
			"document_id", record.DocumentID,
			"action", string(record.Type),
			"description", record.Description,
		)
		return uc.appendAction(ctx, record)
	}

	dispatchCtx, cancel := context.WithTimeout(ctx, uc.dispatchTimeout)
	defer cancel()

	ref, err := sink.Dispatch(dispatchCtx, record.Type, ports.ActionDispatch{
		DocumentID:  record.DocumentID,
		Description: record.Description,
		Priority:    record.Priority,
		Metadata:    record.Metadata,
	})
	record.UpdatedAt = time.Now().UTC()
	if err != nil {
		record.Status = domain.ActionFailed
		record.Error = err.Error()
		if appendErr := uc.appendAction(ctx, record); appendErr != nil {
			return appendErr
		}
		return domain.WrapError(domain.ErrDispatchFailure, "dispatch action", err)
	}

	record.Status = domain.ActionCompleted
	record.ExternalRef = ref
	return uc.appendAction(ctx, record)
}

// recordStageSummary closes the run with the Recording stage entry.
func (uc *ProcessDocumentUseCase) recordStageSummary(ctx context.Context, doc *domain.Document, cls domain.ClassificationResult, ext domain.ExtractionResult, outcome routeOutcome) error {
	start := time.Now()
	output := map[string]any{
		"format":         string(cls.Format),
		"intent":         string(cls.Intent),
		"priority":       string(ext.Priority),
		"actions":        outcome.types,
		"actions_failed": outcome.failed,
	}
	return uc.appendActivity(ctx, doc.ID, "orchestrator", domain.StageRecording, start, nil, output, nil)
}

// checkCancelled aborts between stages on shutdown. The aborted document
// still gets a terminal activity record; a run is never left pending
// with no trace of why.
func (uc *ProcessDocumentUseCase) checkCancelled(ctx context.Context, doc *domain.Document, nextStage string) error {
	ctxErr := ctx.Err()
	if ctxErr == nil {
		return nil
	}
	record := &domain.ActivityRecord{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		AgentName:  "orchestrator",
		Action:     nextStage,
		Status:     domain.ActivityFailed,
		Error:      fmt.Sprintf("aborted before %s: %v", nextStage, ctxErr),
		CreatedAt:  time.Now().UTC(),
	}
	if err := uc.activities.Append(context.WithoutCancel(ctx), record); err != nil {
		return domain.WrapError(domain.ErrPersistenceFailure, "append abort record", err)
	}
	return fmt.Errorf("processing aborted before %s: %w", nextStage, ctxErr)
}

func (uc *ProcessDocumentUseCase) appendActivity(ctx context.Context, documentID, agentName, stage string, start time.Time, input, output map[string]any, stageErr error) error {
	record := &domain.ActivityRecord{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		AgentName:  agentName,
		Action:     stage,
		Input:      input,
		Output:     output,
		Status:     domain.ActivitySuccess,
		DurationMs: time.Since(start).Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	if stageErr != nil {
		record.Status = domain.ActivityFailed
		record.Error = stageErr.Error()
	}
	if err := uc.activities.Append(ctx, record); err != nil {
		return domain.WrapError(domain.ErrPersistenceFailure, "append activity record", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) appendAction(ctx context.Context, record *domain.ActionRecord) error {
	if err := uc.actions.Append(ctx, record); err != nil {
		return domain.WrapError(domain.ErrPersistenceFailure, "append action record", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) markStatus(ctx context.Context, documentID string, status domain.DocumentStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, documentID, status, errMessage)
}

func (uc *ProcessDocumentUseCase) markFailed(ctx context.Context, documentID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	return uc.markStatus(context.WithoutCancel(ctx), documentID, domain.StatusFailed, processErr.Error())
}

func fieldKeys(fields map[string]any) []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	return keys
}
