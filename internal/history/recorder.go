package history

import (
	"context"

	"go.uber.org/zap"
)

// Recorder handles asynchronous capture of call records. Record never
// blocks the calling goroutine: when the buffer is full the record is
// dropped with a warning.
type Recorder interface {
	Record(rec Record)
	Start(ctx context.Context)
	Stop()
}

type recorder struct {
	logger *zap.Logger
	ring   *Ring
	ch     chan Record
}

func NewRecorder(logger *zap.Logger, ring *Ring) Recorder {
	return &recorder{
		logger: logger,
		ring:   ring,
		ch:     make(chan Record, 1024),
	}
}

func (r *recorder) Record(rec Record) {
	select {
	case r.ch <- rec:
	default:
		r.logger.Warn("History buffer full, dropping record", zap.String("id", rec.ID))
	}
}

func (r *recorder) Start(ctx context.Context) {
	go r.worker(ctx)
}

func (r *recorder) Stop() {
	close(r.ch)
}

func (r *recorder) worker(ctx context.Context) {
	for {
		select {
		case rec, ok := <-r.ch:
			if !ok {
				return
			}
			r.ring.Add(rec)
		case <-ctx.Done():
			return
		}
	}
}
