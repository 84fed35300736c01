package logger

import (
	"bufio"
	"io"
	"sync"
)

// logPump moves serialized records from handlers to the sinks on a single
// goroutine, so emitting a log line never blocks on disk or stderr. All sinks
// share one buffered multi-writer; each record is flushed as it lands, which
// keeps file tails current.
type logPump struct {
	records chan []byte
	flushes chan chan error
	drained chan struct{}
	stop    sync.Once

	mu   sync.Mutex
	out  *bufio.Writer
	fail error
}

func newLogPump(writers []io.Writer, bufSize int) *logPump {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	sinks := make([]io.Writer, 0, len(writers))
	for _, w := range writers {
		if w != nil {
			sinks = append(sinks, w)
		}
	}
	p := &logPump{
		records: make(chan []byte, 256),
		flushes: make(chan chan error),
		drained: make(chan struct{}),
		out:     bufio.NewWriterSize(io.MultiWriter(sinks...), bufSize),
	}
	go p.run()
	return p
}

func (p *logPump) run() {
	for {
		select {
		case rec, ok := <-p.records:
			if !ok {
				p.settle(p.flush())
				close(p.drained)
				return
			}
			p.settle(p.emit(rec))
		case ack := <-p.flushes:
			ack <- p.flush()
		}
	}
}

// Write enqueues one serialized record. The payload is copied because slog
// handlers reuse their buffers.
func (p *logPump) Write(rec []byte) error {
	if err := p.err(); err != nil {
		return err
	}
	if len(rec) == 0 {
		return nil
	}
	p.records <- append([]byte(nil), rec...)
	return nil
}

// Flush blocks until every queued record reached the sinks.
func (p *logPump) Flush() error {
	if err := p.err(); err != nil {
		return err
	}
	ack := make(chan error, 1)
	p.flushes <- ack
	return <-ack
}

// Close drains the queue and reports the first write error seen.
func (p *logPump) Close() error {
	p.stop.Do(func() { close(p.records) })
	<-p.drained
	return p.err()
}

func (p *logPump) emit(rec []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.out.Write(rec); err != nil {
		return err
	}
	return p.out.Flush()
}

func (p *logPump) flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.Flush()
}

func (p *logPump) err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fail
}

// settle keeps the first error sticky; later writes report it to callers.
func (p *logPump) settle(err error) {
	if err == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail == nil {
		p.fail = err
	}
}
