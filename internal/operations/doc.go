// Package operations runs a batch job as an ordered list of steps.
//
// A Manager executes the steps held by its Registry one after another,
// passing data between them through the OperationState context map. The
// first step that fails validation or execution stops the run; the steps
// after it are marked skipped and the error is returned wrapped in an
// OperationError that still unwraps to the step's own error.
//
// Each step gets its own OpenTelemetry span and one StepRecorder
// observation, and start, completion and failure are logged through slog.
//
//	registry := operations.NewRegistry()
//	registry.Register(operations.NewFuncStep("fetch", "Fetch", fetch))
//	registry.Register(operations.NewFuncStep("normalize", "Normalize", normalize))
//
//	manager := operations.NewManager(registry, logger, tracer, metrics)
//	resp, err := manager.Execute(ctx, operations.OperationRequest{Variant: "cape-source"})
package operations
