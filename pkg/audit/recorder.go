package audit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Recorder writes audit records asynchronously so the decision pipeline
// never blocks on storage. Records are queued on a bounded channel; a
// full queue drops the record and counts the drop rather than stalling
// a selection or evaluation call.
type Recorder struct {
	storage Storage
	logger  *slog.Logger

	queue    chan *Record
	dropped  atomic.Int64
	stopCh   chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// RecorderConfig contains recorder configuration.
type RecorderConfig struct {
	// QueueSize is the pending-record buffer size (default 1024).
	QueueSize int

	// StoreTimeout bounds each storage write (default 5s).
	StoreTimeout time.Duration
}

// DefaultRecorderConfig returns the default recorder configuration.
func DefaultRecorderConfig() *RecorderConfig {
	return &RecorderConfig{
		QueueSize:    1024,
		StoreTimeout: 5 * time.Second,
	}
}

// NewRecorder creates a recorder and starts its writer goroutine.
func NewRecorder(storage Storage, config *RecorderConfig, logger *slog.Logger) *Recorder {
	if config == nil {
		config = DefaultRecorderConfig()
	}
	if logger == nil {
		logger = slog.Default().With("component", "audit.recorder")
	}

	r := &Recorder{
		storage: storage,
		logger:  logger,
		queue:   make(chan *Record, config.QueueSize),
		stopCh:  make(chan struct{}),
	}

	r.wg.Add(1)
	go r.runWriter(config.StoreTimeout)

	return r
}

// Record queues a record for storage. Never blocks: a full queue drops
// the record.
func (r *Recorder) Record(record *Record) {
	select {
	case r.queue <- record:
	default:
		r.dropped.Add(1)
		r.logger.Warn("audit queue full, record dropped",
			"record_id", record.ID,
			"kind", string(record.Kind),
		)
	}
}

// runWriter drains the queue into storage.
func (r *Recorder) runWriter(storeTimeout time.Duration) {
	defer r.wg.Done()

	store := func(record *Record) {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		if err := r.storage.Store(ctx, record); err != nil {
			r.logger.Error("failed to store audit record",
				"record_id", record.ID,
				"error", err,
			)
		}
	}

	for {
		select {
		case <-r.stopCh:
			// Drain pending records before exiting.
			for {
				select {
				case record := <-r.queue:
					store(record)
				default:
					return
				}
			}
		case record := <-r.queue:
			store(record)
		}
	}
}

// Dropped returns the number of records dropped due to a full queue.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close stops the writer after draining pending records.
func (r *Recorder) Close() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})
	r.wg.Wait()
}
