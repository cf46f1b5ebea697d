// Package operations drives the cleaning pipeline.
//
// A Manager owns a Registry of steps, one per cleaning stage, chained by
// dependencies so the registry's topological order is the pipeline order:
// dedup, canonicalize, missing values, outliers, consistency. Execute clones
// the input dataset once, runs the steps sequentially on the clone and
// checks for cancellation between steps. Every run gets a trace id (the run
// id unless the caller's context already carries one) so that each log line
// of the run can be correlated.
//
// Example usage:
//
//	manager, err := operations.NewCleaningManager(
//		cleaning.DefaultRules(cfg.Rules), operations.NewConfig(), logger, tracer, metrics)
//	if err != nil {
//		return err
//	}
//	resp, err := manager.Execute(ctx, operations.OperationRequest{}, loaded)
//
// JobQueue runs pipeline work asynchronously for the report server's
// POST /api/runs.
package operations
