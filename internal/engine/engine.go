package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/todolist/internal/todo"
)

// Engine is the single-writer front of a todo.Store.
//
// Thread-safety model:
//   - Submit() and the typed helpers: safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//   - Close(): safe from any goroutine, idempotent
//
// Every store call happens in the Run goroutine.
type Engine struct {
	store   todo.Store
	clock   *Clock
	queue   *requestQueue
	reqGen  RequestIDGenerator
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used to stamp operations.
// Used to resume a sequence, e.g. across engines sharing one trace.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine over s. Operations are not applied until Run is
// started.
func New(s todo.Store, reqGen RequestIDGenerator, opts ...Option) *Engine {
	e := &Engine{
		store:  s,
		clock:  NewClock(),
		queue:  newRequestQueue(),
		reqGen: reqGen,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Submit enqueues op and waits for the Run loop to apply it.
//
// Returns ErrClosed if the engine is closed, or ctx.Err() if ctx ends first.
// An op whose ctx is already done when it reaches the front of the queue is
// skipped, but one that is already being applied runs to completion.
func (e *Engine) Submit(ctx context.Context, op Op) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	r := &request{
		ctx:   ctx,
		op:    op,
		reply: make(chan response, 1),
	}
	if !e.queue.Enqueue(r) {
		return Result{}, ErrClosed
	}

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case resp := <-r.reply:
		return resp.result, resp.err
	}
}

// Run starts the single-writer loop.
// Blocks until ctx is cancelled or Close is called.
//
// Must be called from exactly ONE goroutine.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Debug("engine starting")

	for {
		r, ok := e.queue.TryDequeue()
		if ok {
			e.process(r)
			continue
		}

		select {
		case <-ctx.Done():
			e.logger.Debug("engine stopping: context cancelled")
			e.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			// The signal channel is closed with the queue; Close has already
			// failed everything that was waiting.
			if e.queue.Len() == 0 && e.queue.Closed() {
				e.logger.Debug("engine stopping: closed")
				return nil
			}
		}
	}
}

// Close stops accepting operations. Operations still queued fail with
// ErrClosed; one already being applied completes normally.
func (e *Engine) Close() {
	if !e.queue.Close() {
		return
	}
	for _, r := range e.queue.Drain() {
		r.reply <- response{err: ErrClosed}
	}
}

// QueueLen returns the number of operations waiting to be applied.
func (e *Engine) QueueLen() int {
	return e.queue.Len()
}

// Clock returns the engine's clock.
func (e *Engine) Clock() *Clock {
	return e.clock
}

// process applies one request and replies.
// Called only from the Run goroutine.
func (e *Engine) process(r *request) {
	e.metrics.setQueueDepth(e.queue.Len())

	if err := r.ctx.Err(); err != nil {
		e.metrics.observe(r.op.Kind, OutcomeSkipped, 0)
		r.reply <- response{err: err}
		return
	}

	reqID := e.reqGen.Generate()
	seq := e.clock.Next()

	log := e.logger.With(
		"request_id", reqID,
		"seq", seq,
		"op", string(r.op.Kind),
	)
	log.Debug("applying operation")

	// Once dequeued, the op is applied even if the submitter goes away.
	start := time.Now()
	result, err := e.apply(context.WithoutCancel(r.ctx), r.op)
	elapsed := time.Since(start)
	result.RequestID = reqID
	result.Seq = seq

	switch code := todo.CodeOf(err); {
	case err == nil:
		log.Debug("operation applied")
		e.metrics.observe(r.op.Kind, OutcomeApplied, elapsed)
	case code != "":
		log.Info("operation rejected", "code", string(code), "error", err)
		e.metrics.observe(r.op.Kind, OutcomeRejected, elapsed)
	default:
		log.Error("operation failed", "error", err)
		e.metrics.observe(r.op.Kind, OutcomeFailed, elapsed)
	}

	r.reply <- response{result: result, err: err}
}

// apply runs op against the store.
// Called only from the Run goroutine.
func (e *Engine) apply(ctx context.Context, op Op) (Result, error) {
	var (
		res Result
		err error
	)

	switch op.Kind {
	case OpInstantiate:
		err = e.store.Instantiate(ctx, op.Owner)

	case OpCreate:
		res.Entry, err = e.store.Create(ctx, op.Description, op.Priority)

	case OpUpdate:
		res.Entry, err = e.store.Update(ctx, op.ID, op.Patch)

	case OpDelete:
		err = e.store.Delete(ctx, op.ID)

	case OpGet:
		res.Entry, err = e.store.Get(ctx, op.ID)

	case OpList:
		res.Entries, err = e.store.List(ctx, op.Page)

	case OpOwner:
		res.Owner, res.HasOwner, err = e.store.Owner(ctx)

	case OpPeekID:
		res.NextID, err = e.store.PeekID(ctx)

	default:
		return Result{}, &UnknownOpError{Kind: op.Kind}
	}

	if err != nil {
		return Result{}, err
	}
	return res, nil
}
