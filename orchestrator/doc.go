// Package orchestrator runs the self-correcting loop: generate code, audit it,
// execute it in the sandbox, and feed every failure back to the generator.
//
// Each Run owns its history, log trace and run ID. Runs are independent and
// may execute concurrently up to the configured limit; attempts inside a run
// are strictly sequential.
package orchestrator
