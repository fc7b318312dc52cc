package bulk

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/GatorEducator/reporover/internal/githubapi"
	"github.com/GatorEducator/reporover/internal/targets"
)

// Dispatch defaults applied when options are left unset.
const (
	DefaultConcurrencyConstant  = 4
	DefaultRetryLimitConstant   = 3
	DefaultRetryBackoffConstant = 500 * time.Millisecond
)

const (
	outcomeSuccessStringConstant          = "success"
	outcomeFailureStringConstant          = "failure"
	operationNotConfiguredMessageConstant = "operation not configured"
	notAttemptedMessageConstant           = "not attempted: dispatch halted by a fatal error"
)

// ErrOperationNotConfigured indicates Run was invoked without an operation.
var ErrOperationNotConfigured = errors.New(operationNotConfiguredMessageConstant)

// Outcome states whether one target completed successfully.
type Outcome string

// Dispatch outcomes.
const (
	OutcomeSuccess Outcome = Outcome(outcomeSuccessStringConstant)
	OutcomeFailure Outcome = Outcome(outcomeFailureStringConstant)
)

// Operation is the unit of work a dispatch run applies to every target.
type Operation interface {
	Name() string
	Execute(executionContext context.Context, operationTarget targets.Target) (OperationOutput, error)
}

// OperationOutput carries the user-facing message and optional payload of one
// successful execution.
type OperationOutput struct {
	Message string
	Payload any
}

// OperationResult records the outcome of one target slot. Results keep the
// position of their target in the input sequence.
type OperationResult struct {
	Target        targets.Target
	Outcome       Outcome
	Message       string
	Payload       any
	RetryAttempts int
	Attempted     bool
	Failure       error
}

// Summary aggregates one dispatch run.
type Summary struct {
	SuccessCount int
	FailureCount int
	SkippedCount int
	FatalCause   error
}

// Options tunes a dispatcher. Zero or negative values fall back to the
// package defaults except RetryLimit, where zero disables retries.
type Options struct {
	Concurrency  int
	RetryLimit   int
	RetryBackoff time.Duration
}

// Dispatcher fans one operation out across targets while keeping results in
// input order.
type Dispatcher struct {
	options Options
}

// NewDispatcher constructs a Dispatcher with normalized options.
func NewDispatcher(options Options) *Dispatcher {
	return &Dispatcher{options: normalizeOptions(options)}
}

func normalizeOptions(options Options) Options {
	if options.Concurrency <= 0 {
		options.Concurrency = DefaultConcurrencyConstant
	}
	if options.RetryLimit < 0 {
		options.RetryLimit = DefaultRetryLimitConstant
	}
	if options.RetryBackoff <= 0 {
		options.RetryBackoff = DefaultRetryBackoffConstant
	}
	return options
}

// Run applies the operation to every target with bounded concurrency. The
// returned results hold one slot per input target in input order. A fatal
// failure stops new dispatch while in-flight targets finish; the slots that
// were never dispatched report OutcomeFailure without an attempt.
func (dispatcher *Dispatcher) Run(executionContext context.Context, operationTargets []targets.Target, operation Operation) ([]OperationResult, Summary, error) {
	if operation == nil {
		return nil, Summary{}, ErrOperationNotConfigured
	}

	operationResults := make([]OperationResult, len(operationTargets))
	concurrencySemaphore := semaphore.NewWeighted(int64(dispatcher.options.Concurrency))
	var waitGroup sync.WaitGroup
	var haltFlag atomic.Bool
	var haltOnce sync.Once
	var haltCause error

	recordHalt := func(cause error) {
		haltOnce.Do(func() {
			haltCause = cause
			haltFlag.Store(true)
		})
	}

	for targetIndex, operationTarget := range operationTargets {
		if haltFlag.Load() {
			operationResults[targetIndex] = skippedResult(operationTarget)
			continue
		}

		if acquireError := concurrencySemaphore.Acquire(executionContext, 1); acquireError != nil {
			recordHalt(acquireError)
			operationResults[targetIndex] = skippedResult(operationTarget)
			continue
		}

		// A fatal failure may have landed while waiting for a slot.
		if haltFlag.Load() {
			concurrencySemaphore.Release(1)
			operationResults[targetIndex] = skippedResult(operationTarget)
			continue
		}

		waitGroup.Add(1)
		go func(slotIndex int, slotTarget targets.Target) {
			defer waitGroup.Done()
			defer concurrencySemaphore.Release(1)

			slotResult := dispatcher.executeWithRetries(executionContext, operation, slotTarget)
			if slotResult.Failure != nil && githubapi.ClassifySeverity(slotResult.Failure) == githubapi.SeverityFatal {
				recordHalt(slotResult.Failure)
			}
			operationResults[slotIndex] = slotResult
		}(targetIndex, operationTarget)
	}

	waitGroup.Wait()

	summary := Summary{FatalCause: haltCause}
	for _, operationResult := range operationResults {
		switch {
		case !operationResult.Attempted:
			summary.SkippedCount++
		case operationResult.Outcome == OutcomeSuccess:
			summary.SuccessCount++
		default:
			summary.FailureCount++
		}
	}
	return operationResults, summary, nil
}

// executeWithRetries retries transient failures with doubling backoff until
// the retry limit is exhausted. Permanent and fatal failures return at once.
func (dispatcher *Dispatcher) executeWithRetries(executionContext context.Context, operation Operation, operationTarget targets.Target) OperationResult {
	retryBackoff := dispatcher.options.RetryBackoff
	var lastFailure error

	for attemptIndex := 0; attemptIndex <= dispatcher.options.RetryLimit; attemptIndex++ {
		if attemptIndex > 0 {
			if waitError := waitForRetry(executionContext, retryBackoff); waitError != nil {
				return failureResult(operationTarget, waitError, attemptIndex-1)
			}
			retryBackoff *= 2
		}

		operationOutput, executionError := operation.Execute(executionContext, operationTarget)
		if executionError == nil {
			return OperationResult{
				Target:        operationTarget,
				Outcome:       OutcomeSuccess,
				Message:       operationOutput.Message,
				Payload:       operationOutput.Payload,
				RetryAttempts: attemptIndex,
				Attempted:     true,
			}
		}

		lastFailure = executionError
		if githubapi.ClassifySeverity(executionError) != githubapi.SeverityTransient {
			return failureResult(operationTarget, executionError, attemptIndex)
		}
	}

	return failureResult(operationTarget, lastFailure, dispatcher.options.RetryLimit)
}

func waitForRetry(executionContext context.Context, backoffDuration time.Duration) error {
	backoffTimer := time.NewTimer(backoffDuration)
	defer backoffTimer.Stop()

	select {
	case <-executionContext.Done():
		return executionContext.Err()
	case <-backoffTimer.C:
		return nil
	}
}

func failureResult(operationTarget targets.Target, failure error, retryAttempts int) OperationResult {
	return OperationResult{
		Target:        operationTarget,
		Outcome:       OutcomeFailure,
		Message:       failure.Error(),
		RetryAttempts: retryAttempts,
		Attempted:     true,
		Failure:       failure,
	}
}

func skippedResult(operationTarget targets.Target) OperationResult {
	return OperationResult{
		Target:  operationTarget,
		Outcome: OutcomeFailure,
		Message: notAttemptedMessageConstant,
	}
}
