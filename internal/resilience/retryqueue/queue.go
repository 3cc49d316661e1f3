// Package retryqueue implements the bounded-retry delivery scheduler: an
// in-memory queue of delivery operations, each attempted at most MaxAttempts
// times with a fixed backoff schedule, and an in-flight set that prevents a
// second processing pass from double-attempting an operation while its
// previous attempt is outstanding.
//
// The queue is an owned object: callers construct instances with New and each
// instance has its own queue and in-flight set, so tests and multi-tenant
// callers never share state. It is designed for a single process; the queue
// is not safe for multi-process sharing without an external coordination
// layer such as a database-backed queue.
//
// Retries are time-deferred, not timer-driven: a caller must periodically
// invoke Process, so actual retry latency is bounded below by the backoff
// delay and above by the caller's polling interval.
package retryqueue

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"tripnotify/internal/domain/entity"
	"tripnotify/internal/resilience/retry"
)

// Defaults applied by New when the corresponding Options field is zero.
const (
	DefaultMaxAttempts    = 3
	DefaultAttemptTimeout = 30 * time.Second
	DefaultMaxConcurrent  = 10
)

// DefaultBackoff is the fixed backoff schedule, indexed by attempt number.
// Delay grows across the first three attempts then holds at the ceiling.
var DefaultBackoff = []time.Duration{1 * time.Second, 5 * time.Second, 30 * time.Second}

// DeliveryFunc is the external delivery function supplied by the caller. The
// queue never calls a provider directly; it hands the operation to this
// function and interprets the result.
type DeliveryFunc func(ctx context.Context, op entity.QueuedOperation) entity.ProviderAttemptResult

// Callbacks receive operation outcomes. All callbacks are optional and are
// invoked outside the queue lock; they must not call back into the queue for
// the same operation.
type Callbacks struct {
	// OnSuccess fires when an attempt succeeds and the operation leaves the queue.
	OnSuccess func(op entity.QueuedOperation, res entity.ProviderAttemptResult)

	// OnRetry fires when a retryable failure re-queues the operation.
	OnRetry func(op entity.QueuedOperation, err error, nextAttemptAt time.Time)

	// OnPermanentFailure fires when a non-retryable failure or an exhausted
	// attempt budget removes the operation from the queue.
	OnPermanentFailure func(op entity.QueuedOperation, err error)
}

// Options configures a Queue. Zero values take the package defaults.
type Options struct {
	// MaxAttempts bounds total attempts per operation.
	MaxAttempts int

	// Backoff is the delay schedule indexed by min(attempts-1, len-1).
	Backoff []time.Duration

	// AttemptTimeout bounds a single delivery call so a hung provider cannot
	// hold an in-flight marker indefinitely.
	AttemptTimeout time.Duration

	// MaxConcurrent bounds concurrent attempts within one processing pass.
	MaxConcurrent int

	// Now is the clock, injectable for tests. Defaults to time.Now.
	Now func() time.Time
}

// Queue is the retry scheduler. Safe for concurrent use.
type Queue struct {
	mu       sync.Mutex
	ops      map[string]*entity.QueuedOperation
	order    []string
	inflight map[string]struct{}

	deliver DeliveryFunc
	cb      Callbacks
	opts    Options
	logger  *slog.Logger
}

// New creates a retry queue that hands attempts to deliver. The deliver
// function is required.
func New(deliver DeliveryFunc, opts Options, cb Callbacks) *Queue {
	if deliver == nil {
		panic("retryqueue: deliver function is required")
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if len(opts.Backoff) == 0 {
		opts.Backoff = DefaultBackoff
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = DefaultAttemptTimeout
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Queue{
		ops:      make(map[string]*entity.QueuedOperation),
		inflight: make(map[string]struct{}),
		deliver:  deliver,
		cb:       cb,
		opts:     opts,
		logger:   slog.Default(),
	}
}

// Enqueue appends an operation to the queue with its attempt counter reset.
// A zero ScheduledAt means the operation is due immediately. If initialErr is
// marked retryable, Enqueue immediately runs a processing pass so transient
// startup failures get their first retry without waiting for the next poll.
//
// Enqueueing an ID that is already queued is a no-op; the existing operation
// keeps its attempt history.
func (q *Queue) Enqueue(op entity.QueuedOperation, initialErr error) {
	q.mu.Lock()
	if _, exists := q.ops[op.ID]; exists {
		q.mu.Unlock()
		q.logger.Debug("operation already queued, ignoring enqueue",
			slog.String("operation_id", op.ID))
		return
	}

	op.Attempts = 0
	if op.MaxAttempts <= 0 {
		op.MaxAttempts = q.opts.MaxAttempts
	}
	if op.ScheduledAt.IsZero() {
		op.ScheduledAt = q.opts.Now()
	}
	if initialErr != nil {
		op.LastError = initialErr.Error()
	}

	q.ops[op.ID] = &op
	q.order = append(q.order, op.ID)
	depth := len(q.ops)
	q.mu.Unlock()

	SetQueueDepth(depth)

	if initialErr != nil && retry.IsRetryable(initialErr) {
		q.Process(context.Background())
	}
}

// Process runs one processing pass: every queued operation that is not
// in-flight, below its attempt budget, and due at or before now is attempted.
// Attempts for different operations run concurrently, bounded by
// MaxConcurrent; Process returns when every selected attempt has settled.
//
// Concurrent passes are safe: the in-flight set guarantees no operation is
// attempted twice at once.
func (q *Queue) Process(ctx context.Context) {
	due := q.claimDue()
	if len(due) == 0 {
		return
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(q.opts.MaxConcurrent)
	for _, id := range due {
		g.Go(func() error {
			q.attempt(ctx, id)
			return nil
		})
	}
	// Attempts never return errors; failures flow through callbacks.
	_ = g.Wait()
}

// claimDue selects due operations and marks them in-flight atomically.
func (q *Queue) claimDue() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.opts.Now()
	var due []string
	for _, id := range q.order {
		op, ok := q.ops[id]
		if !ok {
			continue
		}
		if _, busy := q.inflight[id]; busy {
			continue
		}
		if op.Attempts >= op.MaxAttempts {
			continue
		}
		if op.ScheduledAt.After(now) {
			continue
		}
		q.inflight[id] = struct{}{}
		due = append(due, id)
	}
	SetInflight(len(q.inflight))
	return due
}

// attempt runs one delivery attempt for the given operation and settles the
// outcome. The in-flight marker is released unconditionally.
func (q *Queue) attempt(ctx context.Context, id string) {
	defer func() {
		q.mu.Lock()
		delete(q.inflight, id)
		SetInflight(len(q.inflight))
		q.mu.Unlock()
	}()

	q.mu.Lock()
	op, ok := q.ops[id]
	if !ok {
		// Cleared externally between claim and attempt.
		q.mu.Unlock()
		return
	}
	op.Attempts++
	snapshot := *op
	q.mu.Unlock()

	res := q.runDelivery(ctx, snapshot)

	if res.Success {
		q.settleSuccess(id, res)
		return
	}

	err := res.Err
	if err == nil {
		err = retry.Transient("provider reported failure without error detail")
	}
	if retry.IsRetryable(err) && snapshot.Attempts < snapshot.MaxAttempts {
		q.settleRetry(id, err, snapshot.Attempts)
		return
	}
	q.settleFailure(id, err)
}

// runDelivery invokes the external delivery function with a per-attempt
// timeout and panic recovery. A panic is folded into the retryable-failure
// path with a generic label, so transport-level exceptions cannot bypass the
// retry ceiling.
func (q *Queue) runDelivery(ctx context.Context, op entity.QueuedOperation) (res entity.ProviderAttemptResult) {
	ctx, cancel := context.WithTimeout(ctx, q.opts.AttemptTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("panic in delivery attempt",
				slog.String("operation_id", op.ID),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			res = entity.ProviderAttemptResult{
				Err: retry.Transient("unexpected error during delivery attempt"),
			}
		}
	}()

	return q.deliver(ctx, op)
}

func (q *Queue) settleSuccess(id string, res entity.ProviderAttemptResult) {
	q.mu.Lock()
	op, ok := q.ops[id]
	if !ok {
		q.mu.Unlock()
		return
	}
	op.Record.Apply(res)
	settled := *op
	q.removeLocked(id)
	depth := len(q.ops)
	q.mu.Unlock()

	SetQueueDepth(depth)
	RecordAttempt("success")
	q.logger.Info("delivery succeeded",
		slog.String("operation_id", id),
		slog.Int("attempts", settled.Attempts),
		slog.String("provider_message_id", res.ProviderMessageID))
	if q.cb.OnSuccess != nil {
		q.cb.OnSuccess(settled, res)
	}
}

func (q *Queue) settleRetry(id string, err error, attempts int) {
	delay := q.backoffDelay(attempts)
	next := q.opts.Now().Add(delay)

	q.mu.Lock()
	op, ok := q.ops[id]
	if !ok {
		q.mu.Unlock()
		return
	}
	op.ScheduledAt = next
	op.LastError = err.Error()
	settled := *op
	q.mu.Unlock()

	RecordAttempt("retry")
	q.logger.Warn("delivery failed, will retry",
		slog.String("operation_id", id),
		slog.Int("attempts", settled.Attempts),
		slog.Int("max_attempts", settled.MaxAttempts),
		slog.Duration("delay", delay),
		slog.Any("error", err))
	if q.cb.OnRetry != nil {
		q.cb.OnRetry(settled, err, next)
	}
}

func (q *Queue) settleFailure(id string, err error) {
	q.mu.Lock()
	op, ok := q.ops[id]
	if !ok {
		q.mu.Unlock()
		return
	}
	op.LastError = err.Error()
	op.Record.MarkFailed(err.Error())
	settled := *op
	q.removeLocked(id)
	depth := len(q.ops)
	q.mu.Unlock()

	SetQueueDepth(depth)
	RecordAttempt("permanent_failure")
	q.logger.Error("delivery failed permanently",
		slog.String("operation_id", id),
		slog.Int("attempts", settled.Attempts),
		slog.Any("error", err))
	if q.cb.OnPermanentFailure != nil {
		q.cb.OnPermanentFailure(settled, err)
	}
}

// backoffDelay returns the delay after the given attempt count, holding at
// the schedule's last value.
func (q *Queue) backoffDelay(attempts int) time.Duration {
	idx := attempts - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(q.opts.Backoff) {
		idx = len(q.opts.Backoff) - 1
	}
	return q.opts.Backoff[idx]
}

// removeLocked deletes an operation from the map and its order slot.
// Callers must hold q.mu.
func (q *Queue) removeLocked(id string) {
	delete(q.ops, id)
	for i, oid := range q.order {
		if oid == id {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of operations currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ops)
}

// Snapshot returns a copy of every queued operation for inspection or
// persistence by the caller. The copies share no state with the queue.
func (q *Queue) Snapshot() []entity.QueuedOperation {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]entity.QueuedOperation, 0, len(q.ops))
	for _, id := range q.order {
		if op, ok := q.ops[id]; ok {
			out = append(out, *op)
		}
	}
	return out
}

// Clear removes every operation from the queue, including ones whose attempt
// is currently outstanding; a settling attempt for a cleared operation is
// dropped silently. Intended for shutdown and tests.
func (q *Queue) Clear() {
	q.mu.Lock()
	q.ops = make(map[string]*entity.QueuedOperation)
	q.order = nil
	q.mu.Unlock()
	SetQueueDepth(0)
}
