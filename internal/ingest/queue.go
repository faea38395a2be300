// Package ingest drives dump ingestion: page blocks are fanned out to a pool
// of workers that parse them, extract their links and stage them in the link
// store.
package ingest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/danielledeleo/wikigraph/dump"
	"github.com/pkg/errors"
)

// ErrQueueClosed is returned when Submit is called on a closed queue.
var ErrQueueClosed = errors.New("ingest queue is closed")

// HandleFunc processes one page block.
type HandleFunc func(b dump.Block) error

// ErrorFunc is called, from a worker goroutine, for every block whose handler
// failed or panicked.
type ErrorFunc func(b dump.Block, err error)

// Queue feeds page blocks to a fixed pool of workers. Submit blocks while
// the buffer is full, so a fast reader cannot outrun the workers by more than
// the buffer size.
type Queue struct {
	handle      HandleFunc
	onError     ErrorFunc
	mu          sync.RWMutex
	jobs        chan dump.Block
	closed      bool
	wg          sync.WaitGroup
	workerCount int

	processed atomic.Int64
	failed    atomic.Int64
}

// New creates a queue with the specified number of workers. onError may be nil.
func New(workerCount int, handle HandleFunc, onError ErrorFunc) *Queue {
	if workerCount < 1 {
		workerCount = 1
	}
	if onError == nil {
		onError = func(dump.Block, error) {}
	}

	q := &Queue{
		handle:      handle,
		onError:     onError,
		jobs:        make(chan dump.Block, workerCount*4),
		workerCount: workerCount,
	}

	q.wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go q.worker()
	}
	return q
}

// Submit hands a block to the workers, waiting for buffer space if needed.
//
// Returns ErrQueueClosed if the queue has been shut down.
func (q *Queue) Submit(ctx context.Context, b dump.Block) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.jobs <- b:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting blocks, lets the workers drain everything already
// submitted and waits for them (up to the context deadline).
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Processed returns the number of blocks handled so far, failed ones included.
func (q *Queue) Processed() int64 {
	return q.processed.Load()
}

// Failed returns the number of blocks whose handler returned an error or panicked.
func (q *Queue) Failed() int64 {
	return q.failed.Load()
}

func (q *Queue) worker() {
	defer q.wg.Done()

	for b := range q.jobs {
		if err := q.execute(b); err != nil {
			q.failed.Add(1)
			q.onError(b, err)
		}
		q.processed.Add(1)
	}
}

// execute calls the handler with panic recovery.
func (q *Queue) execute(b dump.Block) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return q.handle(b)
}
