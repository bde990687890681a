// Package sandbox provides time-bounded execution of generated code.
//
// Every execution gets its own unit, a fresh directory created by the
// Arena and removed afterwards, so concurrent runs never share an artifact
// path. Two backends exist:
//
//   - local runs the interpreter as a separate OS process. That is the only
//     isolation it offers: the child has the same user, environment, network
//     and filesystem access as the server.
//   - docker and podman run the code in a throwaway container with no network,
//     a memory cap, dropped capabilities and a read-only root filesystem.
//
// Executors never return errors. Non-zero exits, timeouts and launch failures
// all become a failed ExecutionResult whose Output is written to be useful as
// feedback for the next generation attempt.
//
// Usage:
//
//	executor, err := sandbox.NewExecutor(logger, cfg)
//	result := executor.Execute(ctx, sandbox.ExecuteRequest{
//	    RunID: runID,
//	    Code:  "print(120)",
//	})
package sandbox
