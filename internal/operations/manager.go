package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// StepRecorder receives one observation per finished step
type StepRecorder interface {
	RecordStep(ctx context.Context, variant, step string, d time.Duration, failed bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordStep(context.Context, string, string, time.Duration, bool) {}

// Manager runs registered steps in order and stops at the first failure
type Manager struct {
	registry *Registry
	logger   *slog.Logger
	tracer   *OperationTracer
	recorder StepRecorder
}

// NewManager creates a new operation manager with dependency injection
func NewManager(registry *Registry, logger *slog.Logger, tracer trace.Tracer, recorder StepRecorder) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Manager{
		registry: registry,
		logger:   logger,
		tracer:   NewOperationTracer(tracer),
		recorder: recorder,
	}
}

// RegisterStage registers a step with the operation
func (m *Manager) RegisterStage(step Step) error {
	return m.registry.Register(step)
}

// GetRegistry returns the registry for accessing registered steps
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// Execute runs every registered step for req and returns a response that
// describes each step. The returned error is the first step failure.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	state := NewOperationState(uuid.NewString())
	state.SetContext(ContextKeyVariant, req.Variant)
	for k, v := range req.Parameters {
		state.SetContext(k, v)
	}

	err := m.Run(ctx, req, state)
	return m.buildResponse(req, state, err), err
}

// Run executes the registered steps against an existing state. Steps after
// a failure are marked skipped.
func (m *Manager) Run(ctx context.Context, req OperationRequest, state *OperationState) error {
	steps := m.registry.List()
	if len(steps) == 0 {
		return ErrEmptyOperation
	}
	timeout := req.StepTimeout
	if timeout <= 0 {
		timeout = DefaultStepTimeout
	}

	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, span := m.tracer.TraceOperationExecution(ctx, state.ID, req)
	defer span.End()

	m.logOperationStart(ctx, state.ID, req)
	state.Start()

	var runErr error
	for _, step := range steps {
		stepState := state.GetStage(step.ID())
		if runErr != nil {
			stepState.Skip(fmt.Sprintf("previous step %s failed", FailedStep(runErr)))
			m.logStageSkipped(ctx, state.ID, step.ID(), stepState.Message)
			continue
		}
		if err := ctx.Err(); err != nil {
			runErr = NewCancellationError(step.ID(), err)
			stepState.Skip("operation cancelled")
			continue
		}
		runErr = m.executeStep(ctx, req.Variant, state, step, stepState, timeout)
	}

	m.tracer.RecordResult(span, runErr)
	switch {
	case runErr == nil:
		state.Complete()
	case GetErrorType(runErr) == ErrorTypeCancellation:
		state.Cancel()
		state.Error = runErr
	default:
		state.Fail(runErr)
	}

	if runErr != nil {
		m.logOperationError(ctx, state.ID, runErr)
	}
	m.logOperationComplete(ctx, state.ID, state.Duration(), state.Status)
	return runErr
}

func (m *Manager) executeStep(ctx context.Context, variant string, state *OperationState, step Step, stepState *StepState, timeout time.Duration) error {
	ctx, span := m.tracer.TraceStepExecution(ctx, state.ID, step)
	defer span.End()

	m.logStageStart(ctx, state.ID, step.ID())
	stepState.Start()

	err := step.Validate(state)
	if err != nil {
		err = NewValidationError(step.ID(), err)
	} else {
		stepCtx, cancel := context.WithTimeout(ctx, timeout)
		err = step.Execute(stepCtx, state)
		cancel()
		if err != nil {
			err = wrapStepError(step.ID(), err)
		}
	}

	m.tracer.RecordResult(span, err)
	if err != nil {
		stepState.Fail(err)
		m.recorder.RecordStep(ctx, variant, step.ID(), stepState.Duration(), true)
		m.logStageError(ctx, state.ID, step.ID(), err)
		return err
	}

	stepState.Complete()
	m.recorder.RecordStep(ctx, variant, step.ID(), stepState.Duration(), false)
	m.logStageComplete(ctx, state.ID, step.ID(), stepState.Duration())
	return nil
}

func wrapStepError(stepID string, err error) error {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		if opErr.Step == "" {
			opErr.Step = stepID
		}
		return opErr
	}
	if errors.Is(err, context.Canceled) {
		return NewCancellationError(stepID, err)
	}
	return NewExecutionError(stepID, err, errors.Is(err, context.DeadlineExceeded))
}

func (m *Manager) buildResponse(req OperationRequest, state *OperationState, err error) *OperationResponse {
	resp := &OperationResponse{
		ID:        state.ID,
		Variant:   req.Variant,
		Status:    state.Status,
		Duration:  state.Duration(),
		Artifacts: state.GetArtifacts(),
	}
	for _, id := range m.registry.ListIDs() {
		s := state.GetStage(id)
		if s == nil {
			continue
		}
		resp.Steps = append(resp.Steps, StepResult{
			ID:       s.ID,
			Name:     s.Name,
			Status:   s.GetStatus(),
			Duration: s.Duration(),
			Message:  s.Message,
		})
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}
