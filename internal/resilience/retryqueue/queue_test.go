package retryqueue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripnotify/internal/domain/entity"
	"tripnotify/internal/resilience/retry"
)

// fakeClock is an injectable clock advanced manually by tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recorder collects callback invocations for assertions.
type recorder struct {
	mu        sync.Mutex
	successes []entity.QueuedOperation
	retries   []entity.QueuedOperation
	retryAt   []time.Time
	failures  []entity.QueuedOperation
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnSuccess: func(op entity.QueuedOperation, _ entity.ProviderAttemptResult) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.successes = append(r.successes, op)
		},
		OnRetry: func(op entity.QueuedOperation, _ error, next time.Time) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.retries = append(r.retries, op)
			r.retryAt = append(r.retryAt, next)
		},
		OnPermanentFailure: func(op entity.QueuedOperation, _ error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.failures = append(r.failures, op)
		},
	}
}

func testOp(id string) entity.QueuedOperation {
	return entity.QueuedOperation{
		ID: id,
		Record: entity.DeliveryRecord{
			NotificationID:  "n-1",
			RecipientUserID: "user-1",
			Channel:         entity.ChannelPush,
			Status:          entity.StatusQueued,
		},
	}
}

func TestSuccessOnFirstAttemptIsIdempotent(t *testing.T) {
	clock := newFakeClock()
	rec := &recorder{}
	attempts := 0

	q := New(func(_ context.Context, _ entity.QueuedOperation) entity.ProviderAttemptResult {
		attempts++
		return entity.ProviderAttemptResult{Success: true, ProviderMessageID: "msg-1"}
	}, Options{Now: clock.Now}, rec.callbacks())

	q.Enqueue(testOp("op-1"), nil)
	q.Process(context.Background())

	require.Equal(t, 1, attempts)
	assert.Equal(t, 0, q.Len())

	// An immediate second pass must not reattempt the settled operation.
	q.Process(context.Background())
	assert.Equal(t, 1, attempts)

	require.Len(t, rec.successes, 1)
	assert.Equal(t, entity.StatusSent, rec.successes[0].Record.Status)
	assert.Equal(t, "msg-1", rec.successes[0].Record.ProviderMessageID)
}

func TestRetryCeilingAndBackoffSchedule(t *testing.T) {
	clock := newFakeClock()
	rec := &recorder{}
	var attemptTimes []time.Time

	q := New(func(_ context.Context, _ entity.QueuedOperation) entity.ProviderAttemptResult {
		attemptTimes = append(attemptTimes, clock.Now())
		return entity.ProviderAttemptResult{Err: retry.Transient("provider 503")}
	}, Options{Now: clock.Now}, rec.callbacks())

	q.Enqueue(testOp("op-1"), nil)

	// First attempt fails; retry scheduled 1s out.
	q.Process(context.Background())
	require.Len(t, attemptTimes, 1)
	require.Len(t, rec.retryAt, 1)
	assert.Equal(t, clock.Now().Add(1*time.Second), rec.retryAt[0])

	// Not due yet: a pass before the backoff elapses attempts nothing.
	q.Process(context.Background())
	require.Len(t, attemptTimes, 1)

	// Second attempt after 1s; retry scheduled 5s out.
	clock.Advance(1 * time.Second)
	q.Process(context.Background())
	require.Len(t, attemptTimes, 2)
	require.Len(t, rec.retryAt, 2)
	assert.Equal(t, clock.Now().Add(5*time.Second), rec.retryAt[1])

	// Third attempt after 5s exhausts the budget.
	clock.Advance(5 * time.Second)
	q.Process(context.Background())
	require.Len(t, attemptTimes, 3)
	require.Len(t, rec.failures, 1)
	assert.Equal(t, 3, rec.failures[0].Attempts)
	assert.Equal(t, entity.StatusFailed, rec.failures[0].Record.Status)
	assert.Equal(t, 0, q.Len())

	// Spacing: second attempt ≥1s after the first, third ≥5s after the second.
	assert.GreaterOrEqual(t, attemptTimes[1].Sub(attemptTimes[0]), 1*time.Second)
	assert.GreaterOrEqual(t, attemptTimes[2].Sub(attemptTimes[1]), 5*time.Second)

	// Exactly maxAttempts total, then no further activity.
	clock.Advance(time.Hour)
	q.Process(context.Background())
	assert.Len(t, attemptTimes, 3)
}

func TestNonRetryableErrorFailsImmediately(t *testing.T) {
	clock := newFakeClock()
	rec := &recorder{}
	attempts := 0

	q := New(func(_ context.Context, _ entity.QueuedOperation) entity.ProviderAttemptResult {
		attempts++
		return entity.ProviderAttemptResult{Err: retry.Permanent("invalid recipient")}
	}, Options{Now: clock.Now}, rec.callbacks())

	q.Enqueue(testOp("op-1"), nil)
	q.Process(context.Background())

	assert.Equal(t, 1, attempts)
	assert.Empty(t, rec.retries)
	require.Len(t, rec.failures, 1)
	assert.Equal(t, 0, q.Len())
}

func TestPanicIsFoldedIntoRetryablePath(t *testing.T) {
	clock := newFakeClock()
	rec := &recorder{}
	attempts := 0

	q := New(func(_ context.Context, _ entity.QueuedOperation) entity.ProviderAttemptResult {
		attempts++
		panic("transport exploded")
	}, Options{Now: clock.Now}, rec.callbacks())

	q.Enqueue(testOp("op-1"), nil)
	q.Process(context.Background())

	// The panic behaves exactly like a retryable provider failure.
	require.Len(t, rec.retries, 1)
	assert.Equal(t, 1, q.Len())

	// And it still respects the retry ceiling.
	clock.Advance(1 * time.Second)
	q.Process(context.Background())
	clock.Advance(5 * time.Second)
	q.Process(context.Background())

	assert.Equal(t, 3, attempts)
	require.Len(t, rec.failures, 1)
	assert.Equal(t, 0, q.Len())
}

func TestInflightSetPreventsConcurrentAttempts(t *testing.T) {
	clock := newFakeClock()
	started := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	attempts := 0

	q := New(func(_ context.Context, _ entity.QueuedOperation) entity.ProviderAttemptResult {
		mu.Lock()
		attempts++
		mu.Unlock()
		close(started)
		<-release
		return entity.ProviderAttemptResult{Success: true}
	}, Options{Now: clock.Now}, Callbacks{})

	q.Enqueue(testOp("op-1"), nil)

	done := make(chan struct{})
	go func() {
		q.Process(context.Background())
		close(done)
	}()

	<-started

	// A second pass while the attempt is outstanding must not select the
	// same operation.
	q.Process(context.Background())
	mu.Lock()
	assert.Equal(t, 1, attempts)
	mu.Unlock()

	close(release)
	<-done
	assert.Equal(t, 0, q.Len())
}

func TestEnqueueWithRetryableErrorTriggersImmediatePass(t *testing.T) {
	clock := newFakeClock()
	attempts := 0

	q := New(func(_ context.Context, _ entity.QueuedOperation) entity.ProviderAttemptResult {
		attempts++
		return entity.ProviderAttemptResult{Success: true}
	}, Options{Now: clock.Now}, Callbacks{})

	q.Enqueue(testOp("op-1"), retry.Transient("initial send failed"))

	// The pass ran inside Enqueue; no explicit Process call needed.
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 0, q.Len())
}

func TestEnqueueWithNonRetryableErrorDoesNotTrigger(t *testing.T) {
	clock := newFakeClock()
	attempts := 0

	q := New(func(_ context.Context, _ entity.QueuedOperation) entity.ProviderAttemptResult {
		attempts++
		return entity.ProviderAttemptResult{Success: true}
	}, Options{Now: clock.Now}, Callbacks{})

	q.Enqueue(testOp("op-1"), retry.Permanent("hard failure"))
	assert.Equal(t, 0, attempts)
	assert.Equal(t, 1, q.Len())
}

func TestEnqueueDuplicateIDIsNoop(t *testing.T) {
	clock := newFakeClock()
	q := New(func(_ context.Context, _ entity.QueuedOperation) entity.ProviderAttemptResult {
		return entity.ProviderAttemptResult{Err: retry.Transient("fail")}
	}, Options{Now: clock.Now}, Callbacks{})

	q.Enqueue(testOp("op-1"), nil)
	q.Process(context.Background())

	// Re-enqueueing the same ID must not reset attempt history.
	q.Enqueue(testOp("op-1"), nil)

	snap := q.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, 1, snap[0].Attempts)
}

func TestScheduledOperationNotAttemptedEarly(t *testing.T) {
	clock := newFakeClock()
	attempts := 0

	q := New(func(_ context.Context, _ entity.QueuedOperation) entity.ProviderAttemptResult {
		attempts++
		return entity.ProviderAttemptResult{Success: true}
	}, Options{Now: clock.Now}, Callbacks{})

	op := testOp("op-1")
	op.ScheduledAt = clock.Now().Add(10 * time.Minute) // quiet-hours deferral
	q.Enqueue(op, nil)

	q.Process(context.Background())
	assert.Equal(t, 0, attempts)

	clock.Advance(10 * time.Minute)
	q.Process(context.Background())
	assert.Equal(t, 1, attempts)
}

func TestSnapshotIsACopy(t *testing.T) {
	clock := newFakeClock()
	q := New(func(_ context.Context, _ entity.QueuedOperation) entity.ProviderAttemptResult {
		return entity.ProviderAttemptResult{Success: true}
	}, Options{Now: clock.Now}, Callbacks{})

	q.Enqueue(testOp("op-1"), nil)

	snap := q.Snapshot()
	require.Len(t, snap, 1)
	snap[0].Attempts = 99
	snap[0].Record.Status = entity.StatusFailed

	fresh := q.Snapshot()
	assert.Equal(t, 0, fresh[0].Attempts)
	assert.Equal(t, entity.StatusQueued, fresh[0].Record.Status)
}

func TestClearEmptiesQueue(t *testing.T) {
	clock := newFakeClock()
	q := New(func(_ context.Context, _ entity.QueuedOperation) entity.ProviderAttemptResult {
		return entity.ProviderAttemptResult{Success: true}
	}, Options{Now: clock.Now}, Callbacks{})

	q.Enqueue(testOp("op-1"), nil)
	q.Enqueue(testOp("op-2"), nil)
	require.Equal(t, 2, q.Len())

	q.Clear()
	assert.Equal(t, 0, q.Len())
	assert.Empty(t, q.Snapshot())
}

func TestOperationsForDifferentIDsRunConcurrently(t *testing.T) {
	clock := newFakeClock()
	var mu sync.Mutex
	running := 0
	peak := 0
	gate := make(chan struct{})

	q := New(func(_ context.Context, _ entity.QueuedOperation) entity.ProviderAttemptResult {
		mu.Lock()
		running++
		if running > peak {
			peak = running
		}
		mu.Unlock()
		<-gate
		mu.Lock()
		running--
		mu.Unlock()
		return entity.ProviderAttemptResult{Success: true}
	}, Options{Now: clock.Now, MaxConcurrent: 4}, Callbacks{})

	q.Enqueue(testOp("op-1"), nil)
	q.Enqueue(testOp("op-2"), nil)

	done := make(chan struct{})
	go func() {
		q.Process(context.Background())
		close(done)
	}()

	// Let both attempts start, then release them together.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return running == 2
	}, time.Second, time.Millisecond)
	close(gate)
	<-done

	mu.Lock()
	assert.Equal(t, 2, peak)
	mu.Unlock()
	assert.Equal(t, 0, q.Len())
}
