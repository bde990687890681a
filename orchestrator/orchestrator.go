package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/isdmx/nexus/config"
	"github.com/isdmx/nexus/logger"
	"github.com/isdmx/nexus/metrics"
	"github.com/isdmx/nexus/models"
	"github.com/isdmx/nexus/sandbox"
)

// ErrEmptyTask is returned when the task is blank
var ErrEmptyTask = errors.New("task must not be empty")

// runStatusError labels runs that ended with an error rather than a verdict
const runStatusError = "ERROR"

const attemptSuccess = "success"

// Generator produces candidate code for a task given the failures so far
type Generator interface {
	Generate(ctx context.Context, task string, history []models.Attempt) (string, error)
}

// Auditor reviews code before it is executed
type Auditor interface {
	Audit(ctx context.Context, code string) models.Verdict
}

// Orchestrator drives the generate, audit and execute loop for each run
type Orchestrator struct {
	logger     *zap.Logger
	generator  Generator
	auditor    Auditor
	executor   sandbox.SandboxExecutor
	metrics    *metrics.Metrics
	limiter    *semaphore.Weighted
	maxRetries int
	newRunID   func() string
}

// New creates an Orchestrator
func New(
	logger *zap.Logger,
	cfg *config.Config,
	gen Generator,
	aud Auditor,
	executor sandbox.SandboxExecutor,
	m *metrics.Metrics,
) *Orchestrator {
	return &Orchestrator{
		logger:     logger.Named("orchestrator"),
		generator:  gen,
		auditor:    aud,
		executor:   executor,
		metrics:    m,
		limiter:    semaphore.NewWeighted(int64(cfg.Loop.MaxConcurrentRuns)),
		maxRetries: cfg.Loop.MaxRetries,
		newRunID:   uuid.NewString,
	}
}

// run is the state owned by a single invocation of Run
type run struct {
	log     *zap.Logger
	result  models.RunResult
	history []models.Attempt
}

func (r *run) logf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	r.result.Logs = append(r.result.Logs, line)
	r.log.Info(line)
}

func (r *run) record(attempt models.Attempt) {
	r.history = append(r.history, attempt)
	r.result.History = r.history
}

// Run iterates until the code passes both the audit and the sandbox, or the
// retry budget is spent. Exhaustion is reported through the result status;
// a non-nil error means the run was aborted and the result holds the logs so far.
func (o *Orchestrator) Run(ctx context.Context, task string) (models.RunResult, error) {
	if strings.TrimSpace(task) == "" {
		return models.RunResult{}, ErrEmptyTask
	}

	if err := o.limiter.Acquire(ctx, 1); err != nil {
		return models.RunResult{}, fmt.Errorf("waiting for a free run slot: %w", err)
	}
	defer o.limiter.Release(1)

	o.metrics.ActiveRuns.Inc()
	defer o.metrics.ActiveRuns.Dec()

	runID := o.newRunID()
	r := &run{
		log:    logger.ForRun(o.logger, runID),
		result: models.RunResult{RunID: runID, Status: models.RunStatusFailed, Logs: []string{}},
	}

	start := time.Now()
	err := o.loop(ctx, task, r)

	status := string(r.result.Status)
	if err != nil {
		status = runStatusError
		r.log.Error("run aborted", zap.Error(err), zap.Int("attempts", r.result.Attempts))
	}
	o.metrics.ObserveRun(status, time.Since(start))

	return r.result, err
}

func (o *Orchestrator) loop(ctx context.Context, task string, r *run) error {
	r.logf("Received task: %s", task)

	for attempt := 1; attempt <= o.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run cancelled before attempt %d: %w", attempt, err)
		}

		r.result.Attempts = attempt
		r.logf("--- Attempt %d/%d ---", attempt, o.maxRetries)

		code, err := o.generator.Generate(ctx, task, r.history)
		if err != nil {
			r.logf("Generation failed: %v", err)
			return err
		}
		r.logf("Code generated.")

		verdict := o.auditor.Audit(ctx, code)
		if !verdict.Approved() {
			r.logf("Security audit rejected: %s", verdict.Feedback)
			r.record(models.Attempt{Code: code, Outcome: models.OutcomeSecurityRejected, Feedback: verdict.Feedback})
			o.metrics.ObserveAttempt(string(models.OutcomeSecurityRejected))
			continue
		}
		r.logf("Security audit passed. Running code in sandbox...")

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run cancelled before execution: %w", err)
		}

		result := o.executor.Execute(ctx, sandbox.ExecuteRequest{RunID: r.result.RunID, Code: code})
		o.metrics.ObserveExecution(result)

		if !result.Success {
			// A failure caused by cancellation is not feedback for the model
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("run cancelled during execution: %w", err)
			}
			r.logf("Runtime failure: %s", result.Output)
			r.record(models.Attempt{Code: code, Outcome: models.OutcomeRuntimeFailed, Feedback: result.Output})
			o.metrics.ObserveAttempt(string(models.OutcomeRuntimeFailed))
			continue
		}

		o.metrics.ObserveAttempt(attemptSuccess)
		r.logf("SUCCESS: code ran without errors.")
		r.logf("Output: %s", result.Output)
		r.result.Status = models.RunStatusSuccess
		r.result.FinalCode = &code
		return nil
	}

	r.logf("FAILED: no verified solution after %d attempts.", o.maxRetries)
	return nil
}
