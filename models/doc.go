// Package models holds the data types shared by the generator, auditor,
// sandbox and orchestrator.
//
// Only failed attempts are ever stored as history. The attempt that
// succeeds ends the run and is returned as RunResult.FinalCode instead.
package models
