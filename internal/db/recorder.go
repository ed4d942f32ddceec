package db

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/aitools-hub/link-engine/internal/tracker"
	"golang.org/x/sync/errgroup"
)

// Recorder defaults. The buffer absorbs ingestion bursts; when it fills,
// events are dropped rather than blocking the beacon handler.
const (
	defaultBufferSize    = 4096
	defaultBatchSize     = 128
	defaultFlushInterval = 2 * time.Second
	defaultWorkers       = 2

	dropLogEvery = 1000
	flushTimeout = 10 * time.Second
)

// inserter is the slice of DB the recorder needs; narrowed for testability.
type inserter interface {
	InsertEvents(ctx context.Context, events []tracker.Event) error
}

// Recorder is the write-behind persistence sink for the store: events are
// buffered in memory and batch-inserted by background workers. It implements
// tracker.Sink.
type Recorder struct {
	db      inserter
	ch      chan tracker.Event
	dropped atomic.Int64
	stopped atomic.Bool

	batchSize     int
	flushInterval time.Duration
	workers       int

	group  *errgroup.Group
	cancel context.CancelFunc
}

// NewRecorder creates a recorder. bufferSize and flushInterval fall back
// to defaults when zero.
func NewRecorder(database *DB, bufferSize int, flushInterval time.Duration) *Recorder {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	if flushInterval <= 0 {
		flushInterval = defaultFlushInterval
	}
	return &Recorder{
		db:            database,
		ch:            make(chan tracker.Event, bufferSize),
		batchSize:     defaultBatchSize,
		flushInterval: flushInterval,
		workers:       defaultWorkers,
	}
}

// Start launches the flush workers.
func (r *Recorder) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	g, gCtx := errgroup.WithContext(ctx)
	r.group = g
	for i := 0; i < r.workers; i++ {
		g.Go(func() error {
			r.run(gCtx)
			return nil
		})
	}
}

// Stop drains the buffer, flushes pending batches, and waits for workers.
func (r *Recorder) Stop() {
	r.stopped.Store(true)
	if r.cancel != nil {
		r.cancel()
	}
	if r.group != nil {
		_ = r.group.Wait()
	}
	if n := r.dropped.Load(); n > 0 {
		log.Printf("[recorder] %d events dropped during this run", n)
	}
}

// Enqueue buffers an event for persistence. It never blocks: when the buffer
// is full the event is dropped and counted. Safe to call from the request
// hot path.
func (r *Recorder) Enqueue(ev tracker.Event) {
	if r.stopped.Load() {
		return
	}
	select {
	case r.ch <- ev:
	default:
		if n := r.dropped.Add(1); n%dropLogEvery == 1 {
			log.Printf("[recorder] event buffer full, dropping (total dropped: %d)", n)
		}
	}
}

// Dropped returns the number of events discarded due to a full buffer.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// run is one flush worker: it accumulates events into batches and inserts
// them on size or interval. Insert failures are logged and the batch is
// discarded; ingestion continues memory-only.
func (r *Recorder) run(ctx context.Context) {
	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	batch := make([]tracker.Event, 0, r.batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		if err := r.db.InsertEvents(flushCtx, batch); err != nil {
			log.Printf("[recorder] failed to persist %d events: %v", len(batch), err)
		}
		cancel()
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			// Drain whatever is still buffered before exiting.
			for {
				select {
				case ev := <-r.ch:
					batch = append(batch, ev)
					if len(batch) >= r.batchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		case ev := <-r.ch:
			batch = append(batch, ev)
			if len(batch) >= r.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
