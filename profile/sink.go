package profile

import (
	"encoding/json"
	"io"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Encoder persists one frame record. Implementations run on the sink's
// worker goroutine, never on the frame-driving thread.
type Encoder interface {
	Encode(rec *FrameRecord) error
}

// JSONLEncoder writes one JSON object per line. The concrete field layout
// follows FrameRecord's tags; consumers treat it as an external contract.
type JSONLEncoder struct {
	enc *json.Encoder
}

// NewJSONLEncoder wraps w in a line-oriented JSON encoder.
func NewJSONLEncoder(w io.Writer) *JSONLEncoder {
	return &JSONLEncoder{enc: json.NewEncoder(w)}
}

func (e *JSONLEncoder) Encode(rec *FrameRecord) error {
	return e.enc.Encode(rec)
}

// Sink delivers frame records to an Encoder on a background worker. Record
// is fire-and-forget: the engine never blocks waiting for persistence, and
// encoder failures are logged and swallowed, never surfaced to the caller.
type Sink struct {
	ch     chan *FrameRecord
	log    *zap.Logger
	done   chan struct{}
	closed bool
	mu     sync.Mutex

	dropped atomic.Uint64
}

// NewSink starts the worker goroutine. depth is the channel buffer; a full
// buffer drops records rather than stalling the frame.
func NewSink(enc Encoder, depth int, log *zap.Logger) *Sink {
	if depth <= 0 {
		depth = 64
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Sink{
		ch:   make(chan *FrameRecord, depth),
		log:  log,
		done: make(chan struct{}),
	}
	go s.run(enc)
	return s
}

func (s *Sink) run(enc Encoder) {
	defer close(s.done)
	for rec := range s.ch {
		if err := enc.Encode(rec); err != nil {
			s.log.Warn("profile sink encode failed",
				zap.Uint64("seq", rec.Seq),
				zap.Error(err))
		}
	}
}

// Record queues a frame record. It never blocks: a full channel or a closed
// sink drops the record with a warning.
func (s *Sink) Record(rec *FrameRecord) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.drop(rec, "sink closed")
		return
	}
	select {
	case s.ch <- rec:
		s.mu.Unlock()
	default:
		s.mu.Unlock()
		s.drop(rec, "sink buffer full")
	}
}

func (s *Sink) drop(rec *FrameRecord, why string) {
	s.dropped.Add(1)
	s.log.Warn("profile record dropped",
		zap.Uint64("seq", rec.Seq),
		zap.String("reason", why))
}

// Dropped returns how many records were discarded.
func (s *Sink) Dropped() uint64 { return s.dropped.Load() }

// Close stops accepting records, drains the queue, and waits for the worker
// to finish.
func (s *Sink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()
	<-s.done
}
