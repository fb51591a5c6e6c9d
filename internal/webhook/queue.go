package webhook

import (
	"context"
	"errors"
	"sync"

	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
)

var (
	// ErrQueueClosed is returned by Enqueue after Stop.
	ErrQueueClosed = errors.New("update queue is closed")
	// ErrQueueFull is returned by Enqueue when the buffer has no free slot.
	ErrQueueFull = errors.New("update queue is full")
)

// Processor runs the handler chain for one update. *tbot.Bot satisfies it
// when built with tbot.WithNotAsyncHandlers, so that ProcessUpdate returns
// only after the handlers finish.
type Processor interface {
	ProcessUpdate(ctx context.Context, upd *models.Update)
}

// Queue decouples webhook intake from update dispatch.
type Queue struct {
	updates   chan *models.Update
	processor Processor
	workers   int
	log       *zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewQueue(processor Processor, size, workers int, log *zerolog.Logger) *Queue {
	if size < 0 {
		size = 0
	}
	if workers < 1 {
		workers = 1
	}
	return &Queue{
		updates:   make(chan *models.Update, size),
		processor: processor,
		workers:   workers,
		log:       log,
	}
}

// Start launches the workers. They run until Stop drains the queue.
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.work(ctx, i)
	}
}

func (q *Queue) work(ctx context.Context, id int) {
	defer q.wg.Done()
	for upd := range q.updates {
		q.log.Debug().Int("worker", id).Int64("update_id", upd.ID).Msg("dispatching update")
		q.processor.ProcessUpdate(ctx, upd)
	}
}

// Enqueue hands upd to the workers without waiting.
func (q *Queue) Enqueue(upd *models.Update) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.updates <- upd:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop closes the queue and waits for the workers to finish pending updates.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.updates)
	}
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
