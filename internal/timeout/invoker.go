// Package timeout runs step procedures under a time budget.
//
// A call with a positive budget runs on a goroutine drawn from a bounded
// pool and receives a context that is canceled when the budget expires.
// Cancellation is cooperative: a procedure that ignores its context keeps
// running after the call reports TimedOut, and keeps its pool slot until it
// returns. Its eventual result is discarded.
package timeout

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/mrz1836/stepwire/internal/clock"
	"github.com/mrz1836/stepwire/internal/constants"
	swerrors "github.com/mrz1836/stepwire/internal/errors"
)

// State is the lifecycle state of a single bounded call.
type State int

// Call states. Every call ends in exactly one of Completed, Failed or TimedOut.
const (
	Idle State = iota
	Running
	Completed
	Failed
	TimedOut
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case TimedOut:
		return "timed_out"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Func is the unit of work run by an Invoker.
type Func func(ctx context.Context) error

// Result reports how a call ended.
type Result struct {
	State   State
	Err     error
	Elapsed time.Duration
}

// Invoker runs Funcs with optional time budgets.
// It is safe for concurrent use.
type Invoker struct {
	size     int64
	pool     *semaphore.Weighted
	inFlight atomic.Int64
	clock    clock.Clock
	logger   zerolog.Logger
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithPoolSize bounds how many bounded calls, leaked ones included, may run at once.
// Values below 1 are ignored.
func WithPoolSize(n int) Option {
	return func(inv *Invoker) {
		if n > 0 {
			inv.size = int64(n)
		}
	}
}

// WithClock sets the clock used to measure elapsed time.
func WithClock(c clock.Clock) Option {
	return func(inv *Invoker) {
		inv.clock = c
	}
}

// WithLogger sets the logger used to report abandoned work.
func WithLogger(logger zerolog.Logger) Option {
	return func(inv *Invoker) {
		inv.logger = logger
	}
}

// New creates an Invoker. The default pool size is constants.DefaultPoolSize.
func New(opts ...Option) *Invoker {
	inv := &Invoker{
		size:   constants.DefaultPoolSize,
		clock:  clock.RealClock{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(inv)
	}
	inv.pool = semaphore.NewWeighted(inv.size)
	return inv
}

// PoolSize returns the maximum number of concurrent bounded calls.
func (inv *Invoker) PoolSize() int {
	return int(inv.size)
}

// InFlight returns the number of pool goroutines still running, including
// work abandoned after a timeout.
func (inv *Invoker) InFlight() int {
	return int(inv.inFlight.Load())
}

// Invoke runs fn. A budget of zero or less runs fn synchronously on the
// caller's goroutine with no limit. Waiting for a pool slot counts
// against the budget.
func (inv *Invoker) Invoke(ctx context.Context, fn Func, budget time.Duration) Result {
	start := inv.clock.Now()
	if budget <= 0 {
		err := runGuarded(ctx, fn)
		return inv.finish(start, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, budget)

	if err := inv.pool.Acquire(callCtx, 1); err != nil {
		cancel()
		return inv.expired(ctx, start, budget)
	}

	done := make(chan error, 1)
	inv.inFlight.Add(1)
	go func() {
		defer inv.inFlight.Add(-1)
		defer inv.pool.Release(1)
		defer cancel()
		done <- runGuarded(callCtx, fn)
	}()

	select {
	case err := <-done:
		return inv.finish(start, err)
	case <-callCtx.Done():
		// Completion and expiry can race; a finished call wins.
		select {
		case err := <-done:
			return inv.finish(start, err)
		default:
		}
		return inv.expired(ctx, start, budget)
	}
}

func (inv *Invoker) finish(start time.Time, err error) Result {
	elapsed := inv.clock.Since(start)
	if err != nil {
		return Result{State: Failed, Err: err, Elapsed: elapsed}
	}
	return Result{State: Completed, Elapsed: elapsed}
}

func (inv *Invoker) expired(parent context.Context, start time.Time, budget time.Duration) Result {
	elapsed := inv.clock.Since(start)
	if err := parent.Err(); err != nil {
		return Result{State: Failed, Err: swerrors.Wrap(err, "step canceled"), Elapsed: elapsed}
	}

	inv.logger.Warn().
		Dur("budget", budget).
		Int64("duration_ms", elapsed.Milliseconds()).
		Int("in_flight", inv.InFlight()).
		Msg("step exceeded its time budget; abandoning call")

	return Result{
		State:   TimedOut,
		Err:     &swerrors.TimeoutError{Budget: budget, Elapsed: elapsed},
		Elapsed: elapsed,
	}
}

// runGuarded calls fn and turns a panic into a *PanicError.
func runGuarded(ctx context.Context, fn Func) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &swerrors.PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn(ctx)
}
