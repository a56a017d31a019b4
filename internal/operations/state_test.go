package operations

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepState_Transitions(t *testing.T) {
	s := NewStepState(StepIDChart, StepNameChart)
	assert.Equal(t, StepStatusPending, s.GetStatus())
	assert.Zero(t, s.Duration())

	s.Start()
	assert.Equal(t, StepStatusActive, s.GetStatus())
	require.NotNil(t, s.StartTime)

	s.SetMetadata("path", "charts/cape.png")
	s.Complete()
	assert.Equal(t, StepStatusCompleted, s.GetStatus())
	assert.GreaterOrEqual(t, s.Duration().Nanoseconds(), int64(0))
	assert.Equal(t, "charts/cape.png", s.Metadata["path"])

	failed := NewStepState(StepIDPublish, StepNamePublish)
	failed.Start()
	failed.Fail(errors.New("denied"))
	assert.Equal(t, StepStatusFailed, failed.GetStatus())
	assert.EqualError(t, failed.Error, "denied")

	skipped := NewStepState(StepIDReport, StepNameReport)
	skipped.Skip("not needed")
	assert.Equal(t, StepStatusSkipped, skipped.GetStatus())
	assert.Equal(t, "not needed", skipped.Message)
}

func TestOperationState(t *testing.T) {
	state := NewOperationState("op-1")
	assert.Equal(t, OperationStatusPending, state.Status)

	state.SetStage(StepIDFetch, NewStepState(StepIDFetch, StepNameFetch))
	state.SetStage(StepIDNormalize, NewStepState(StepIDNormalize, StepNameNormalize))
	state.GetStage(StepIDFetch).Complete()
	state.GetStage(StepIDNormalize).Fail(errors.New("boom"))

	assert.Len(t, state.GetCompletedStages(), 1)
	assert.True(t, state.HasFailures())

	state.AddArtifact("a.csv")
	state.AddArtifact("b.png")
	artifacts := state.GetArtifacts()
	assert.Equal(t, []string{"a.csv", "b.png"}, artifacts)
	artifacts[0] = "mutated"
	assert.Equal(t, "a.csv", state.GetArtifacts()[0])

	state.Start()
	assert.Equal(t, OperationStatusRunning, state.Status)
	state.Fail(errors.New("boom"))
	assert.Equal(t, OperationStatusFailed, state.Status)
	assert.NotNil(t, state.EndTime)
}

func TestContextValue(t *testing.T) {
	state := NewOperationState("op-2")
	state.SetContext(ContextKeyRowsIn, 42)

	n, err := ContextValue[int](state, ContextKeyRowsIn)
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = ContextValue[string](state, ContextKeyRowsIn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "holds int")

	_, err = ContextValue[int](state, "missing")
	assert.Error(t, err)
}
