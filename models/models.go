package models

import "time"

// Outcome tags why a recorded attempt failed
type Outcome string

const (
	OutcomeSecurityRejected Outcome = "security-rejected"
	OutcomeRuntimeFailed    Outcome = "runtime-failed"
)

// Attempt is one failed generate-audit-execute cycle. Successful attempts are never recorded.
type Attempt struct {
	Code     string  `json:"code"`
	Outcome  Outcome `json:"outcome"`
	Feedback string  `json:"feedback"`
}

// VerdictStatus is the auditor's decision
type VerdictStatus string

const (
	VerdictApproved VerdictStatus = "APPROVED"
	VerdictRejected VerdictStatus = "REJECTED"
)

// Verdict is the result of a security audit
type Verdict struct {
	Status   VerdictStatus `json:"status"`
	Feedback string        `json:"feedback,omitempty"`
}

// Approved reports whether the verdict lets the code through to the sandbox
func (v Verdict) Approved() bool {
	return v.Status == VerdictApproved
}

// Rejected builds a rejecting verdict with the given reason
func Rejected(feedback string) Verdict {
	return Verdict{Status: VerdictRejected, Feedback: feedback}
}

// ExecutionResult is the outcome of one sandbox run.
// Output holds stdout on success and stderr or a synthesized diagnostic on failure.
type ExecutionResult struct {
	Success  bool
	Output   string
	TimedOut bool
	ExitCode int
	Duration time.Duration
}

// RunStatus is the terminal state of a run
type RunStatus string

const (
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusFailed  RunStatus = "FAILED"
)

// RunResult is what a caller receives at the end of a run
type RunResult struct {
	RunID     string    `json:"run_id"`
	Status    RunStatus `json:"status"`
	FinalCode *string   `json:"final_code"`
	Logs      []string  `json:"logs"`
	Attempts  int       `json:"attempts"`

	// History is the ordered failure trajectory of the run.
	History []Attempt `json:"-"`
}
