package ratelimit_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/GatorEducator/reporover/internal/ratelimit"
)

const (
	testUnprimedCaseNameConstant          = "unprimed_admits_immediately"
	testQuotaAvailableCaseNameConstant    = "quota_available_admits_immediately"
	testElapsedResetCaseNameConstant      = "elapsed_reset_replenishes"
	testSuspensionToleranceConstant       = 25 * time.Millisecond
	testSuspensionResetDelayConstant      = 40 * time.Millisecond
	testCancellationResetDelayConstant    = 5 * time.Second
	testCancellationTimeoutConstant       = 30 * time.Millisecond
	testConcurrentCallerCountConstant     = 3
	testConcurrentResetDelayConstant      = 30 * time.Millisecond
	testConcurrentCompletionBoundConstant = 2 * time.Second
)

type stubClock struct {
	currentTime time.Time
}

func (clock stubClock) Now() time.Time {
	return clock.currentTime
}

func TestGovernorAcquireWithoutSuspension(testInstance *testing.T) {
	referenceTime := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)

	testCases := []struct {
		name              string
		snapshot          *ratelimit.Snapshot
		expectedRemaining int
	}{
		{
			name:              testUnprimedCaseNameConstant,
			snapshot:          nil,
			expectedRemaining: 0,
		},
		{
			name:              testQuotaAvailableCaseNameConstant,
			snapshot:          &ratelimit.Snapshot{Limit: 60, Remaining: 2, ResetAt: referenceTime.Add(time.Hour)},
			expectedRemaining: 1,
		},
		{
			name:              testElapsedResetCaseNameConstant,
			snapshot:          &ratelimit.Snapshot{Limit: 60, Remaining: 0, ResetAt: referenceTime.Add(-time.Minute)},
			expectedRemaining: 59,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			governor := ratelimit.NewGovernor(stubClock{currentTime: referenceTime})
			if testCase.snapshot != nil {
				governor.Record(*testCase.snapshot)
			}

			acquireError := governor.Acquire(context.Background())
			require.NoError(testInstance, acquireError)
			require.Equal(testInstance, testCase.expectedRemaining, governor.CurrentSnapshot().Remaining)
		})
	}
}

func TestGovernorSuspendsUntilDeclaredReset(testInstance *testing.T) {
	governor := ratelimit.NewGovernor(nil)
	governor.Record(ratelimit.Snapshot{Limit: 60, Remaining: 0, ResetAt: time.Now().Add(testSuspensionResetDelayConstant)})

	acquireStart := time.Now()
	acquireError := governor.Acquire(context.Background())
	acquireDuration := time.Since(acquireStart)

	require.NoError(testInstance, acquireError)
	require.GreaterOrEqual(testInstance, acquireDuration, testSuspensionResetDelayConstant-testSuspensionToleranceConstant)
}

func TestGovernorAcquireHonorsContextCancellation(testInstance *testing.T) {
	governor := ratelimit.NewGovernor(nil)
	governor.Record(ratelimit.Snapshot{Limit: 60, Remaining: 0, ResetAt: time.Now().Add(testCancellationResetDelayConstant)})

	executionContext, cancelExecution := context.WithTimeout(context.Background(), testCancellationTimeoutConstant)
	defer cancelExecution()

	acquireError := governor.Acquire(executionContext)
	require.Error(testInstance, acquireError)
	require.ErrorIs(testInstance, acquireError, context.DeadlineExceeded)
}

func TestGovernorReleasesConcurrentCallersAfterReset(testInstance *testing.T) {
	governor := ratelimit.NewGovernor(nil)
	governor.Record(ratelimit.Snapshot{Limit: 60, Remaining: 0, ResetAt: time.Now().Add(testConcurrentResetDelayConstant)})

	var waitGroup sync.WaitGroup
	acquireErrors := make([]error, testConcurrentCallerCountConstant)
	for callerIndex := 0; callerIndex < testConcurrentCallerCountConstant; callerIndex++ {
		waitGroup.Add(1)
		go func(errorSlot int) {
			defer waitGroup.Done()
			acquireErrors[errorSlot] = governor.Acquire(context.Background())
		}(callerIndex)
	}

	completionSignal := make(chan struct{})
	go func() {
		waitGroup.Wait()
		close(completionSignal)
	}()

	select {
	case <-completionSignal:
	case <-time.After(testConcurrentCompletionBoundConstant):
		testInstance.Fatal("governor did not release callers after the reset elapsed")
	}

	for _, acquireError := range acquireErrors {
		require.NoError(testInstance, acquireError)
	}
}
