package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	defaultExhaustedCooldownConstant = 60 * time.Second
	minimumReplenishedQuotaConstant  = 1
)

// Clock abstracts time acquisition for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time source.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Snapshot captures the quota telemetry reported by one API response.
type Snapshot struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Governor serializes quota accounting for every API caller sharing it.
//
// Callers obtain a permit through Acquire before each remote call and feed the
// response telemetry back through Record afterwards, including for failed
// calls. Until the first snapshot arrives the governor admits callers freely
// because it has no basis to throttle.
type Governor struct {
	mutex             sync.Mutex
	clock             Clock
	exhaustedCooldown time.Duration
	primed            bool
	remaining         int
	ceiling           int
	resetAt           time.Time
}

// NewGovernor constructs a Governor backed by the supplied clock. A nil clock
// selects the system clock.
func NewGovernor(clock Clock) *Governor {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Governor{clock: clock, exhaustedCooldown: defaultExhaustedCooldownConstant}
}

// Acquire blocks until a call permit is available or the context ends.
//
// When the tracked quota is exhausted every caller waits until the reset time
// elapses, after which the quota is replenished to the service-declared
// ceiling. Waiting callers observe context cancellation.
func (governor *Governor) Acquire(executionContext context.Context) error {
	for {
		governor.mutex.Lock()

		if !governor.primed {
			governor.mutex.Unlock()
			return nil
		}

		if governor.remaining > 0 {
			governor.remaining--
			governor.mutex.Unlock()
			return nil
		}

		currentTime := governor.clock.Now()
		if governor.resetAt.IsZero() {
			governor.resetAt = currentTime.Add(governor.exhaustedCooldown)
		}
		if !currentTime.Before(governor.resetAt) {
			governor.replenishLocked()
			governor.mutex.Unlock()
			continue
		}

		waitDuration := governor.resetAt.Sub(currentTime)
		governor.mutex.Unlock()

		waitTimer := time.NewTimer(waitDuration)
		select {
		case <-executionContext.Done():
			waitTimer.Stop()
			return executionContext.Err()
		case <-waitTimer.C:
		}
	}
}

// Record ingests quota telemetry from a completed API call.
func (governor *Governor) Record(snapshot Snapshot) {
	governor.mutex.Lock()
	defer governor.mutex.Unlock()

	if snapshot.Limit > 0 {
		governor.ceiling = snapshot.Limit
	}
	governor.remaining = snapshot.Remaining
	if !snapshot.ResetAt.IsZero() {
		governor.resetAt = snapshot.ResetAt
	}
	governor.primed = true
}

// CurrentSnapshot reports the quota state the governor currently tracks.
func (governor *Governor) CurrentSnapshot() Snapshot {
	governor.mutex.Lock()
	defer governor.mutex.Unlock()

	return Snapshot{Limit: governor.ceiling, Remaining: governor.remaining, ResetAt: governor.resetAt}
}

func (governor *Governor) replenishLocked() {
	replenishedQuota := governor.ceiling
	if replenishedQuota < minimumReplenishedQuotaConstant {
		replenishedQuota = minimumReplenishedQuotaConstant
	}
	governor.remaining = replenishedQuota
	governor.resetAt = time.Time{}
}
