package logging

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
	"time"
)

// LineWriter prefixes every complete line with a sequence number and timestamp.
// Partial lines are held until their newline arrives or Close is called.
type LineWriter struct {
	mu      sync.Mutex
	target  io.Writer
	seq     uint64
	pending bytes.Buffer
	now     func() time.Time
}

func NewLineWriter(target io.Writer) *LineWriter {
	return &LineWriter{
		target: target,
		now:    time.Now,
	}
}

func (w *LineWriter) writeLine(line []byte) error {
	w.seq++
	prefix := slog.Uint64("line", w.seq).String() + " " +
		slog.String("time", w.now().Format(time.RFC3339)).String() + " "
	if _, err := io.WriteString(w.target, prefix); err != nil {
		return err
	}
	if _, err := w.target.Write(line); err != nil {
		return err
	}
	_, err := w.target.Write([]byte{'\n'})
	return err
}

// Write reports len(p) on success so callers like slog see a full write.
func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending.Write(p)
	for {
		data := w.pending.Bytes()
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		line := bytes.TrimSuffix(data[:i], []byte{'\r'})
		if err := w.writeLine(line); err != nil {
			return 0, err
		}
		w.pending.Next(i + 1)
	}
	return len(p), nil
}

// Close flushes a trailing partial line.
func (w *LineWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending.Len() == 0 {
		return nil
	}
	line := append([]byte(nil), w.pending.Bytes()...)
	w.pending.Reset()
	return w.writeLine(line)
}
