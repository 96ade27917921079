package extract

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Sink receives finished records in extraction order.
type Sink interface {
	Write(r Record) error
}

// JSONLSink writes one JSON object per line.
type JSONLSink struct {
	mu    sync.Mutex
	enc   *json.Encoder
	file  *os.File
	count int
}

// NewJSONLSink writes records to w.
func NewJSONLSink(w io.Writer) *JSONLSink {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONLSink{enc: enc}
}

// OpenSink opens the JSON-lines destination at path, creating parent
// directories. "-" or "" writes to stdout. Call Close when done.
func OpenSink(path string, stdout io.Writer) (*JSONLSink, error) {
	if path == "" || path == "-" {
		return NewJSONLSink(stdout), nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %s: %w", path, err)
	}

	s := NewJSONLSink(f)
	s.file = f
	return s, nil
}

// Write encodes r as one line.
func (s *JSONLSink) Write(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(r); err != nil {
		return fmt.Errorf("failed to write record %s: %w", r.TaskID, err)
	}
	s.count++
	return nil
}

// Count returns the number of records written.
func (s *JSONLSink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Close closes the output file, if the sink owns one.
func (s *JSONLSink) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}
