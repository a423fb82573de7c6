// Package trajectory records packing steps as zstd-compressed JSON lines.
package trajectory

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/piwi3910/BinPack3D/internal/model"
)

// Ext is the file extension used for trajectory files.
const Ext = ".jsonl.zst"

// ErrClosed is returned by Record after Close.
var ErrClosed = errors.New("trajectory writer is closed")

// Writer appends step records to a single compressed file. It is safe for
// concurrent use and satisfies env.Recorder.
type Writer struct {
	mu     sync.Mutex
	path   string
	f      *os.File
	enc    *zstd.Encoder
	w      *bufio.Writer
	count  int
	closed bool
}

// Create opens path for writing, truncating an existing file.
func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create trajectory directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open trajectory file: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to start zstd encoder: %w", err)
	}
	return &Writer{
		path: path,
		f:    f,
		enc:  enc,
		w:    bufio.NewWriterSize(enc, 64*1024),
	}, nil
}

// Path returns the file being written.
func (w *Writer) Path() string {
	return w.path
}

// Count returns the number of records written so far.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Record appends one step as a JSON line.
func (w *Writer) Record(step model.StepRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}

	b, err := json.Marshal(step)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	w.count++
	return nil
}

// Close flushes buffered records and finishes the zstd frame. Calling it
// more than once is a no-op.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	errFlush := w.w.Flush()
	errEnc := w.enc.Close()
	errFile := w.f.Close()
	return errors.Join(errFlush, errEnc, errFile)
}

// ReadAll decodes every record of a trajectory file.
func ReadAll(path string) ([]model.StepRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trajectory file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads zstd-compressed JSON lines from r.
func Decode(r io.Reader) ([]model.StepRecord, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to start zstd decoder: %w", err)
	}
	defer dec.Close()

	var steps []model.StepRecord
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var s model.StepRecord
		if err := json.Unmarshal(line, &s); err != nil {
			return steps, fmt.Errorf("failed to decode step %d: %w", len(steps), err)
		}
		steps = append(steps, s)
	}
	if err := sc.Err(); err != nil {
		return steps, fmt.Errorf("failed to read trajectory: %w", err)
	}
	return steps, nil
}
