// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// Writer writes records as NDJSON. It is safe for concurrent use.
type Writer struct {
	mu        sync.Mutex
	output    io.Writer
	encoder   *json.Encoder
	count     int
	closeFunc func() error
}

// NewWriter creates a new NDJSON writer that writes to the specified output.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		output:  w,
		encoder: json.NewEncoder(w),
	}
}

// NewFileWriter creates a new NDJSON writer that appends to a file, creating
// it if needed. The caller must call Close() when done.
func NewFileWriter(filename string) (*Writer, error) {
	file, err := openAppend(filename)
	if err != nil {
		return nil, err
	}

	return &Writer{
		output:    file,
		encoder:   json.NewEncoder(file),
		closeFunc: file.Close,
	}, nil
}

// Write writes a single record as NDJSON.
func (w *Writer) Write(record any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.encoder.Encode(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	w.count++
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close closes the underlying writer if it's a file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closeFunc != nil {
		return w.closeFunc()
	}
	return nil
}

// TextWriter prints the bare count of each CountRecord on its own line.
type TextWriter struct {
	mu        sync.Mutex
	output    io.Writer
	closeFunc func() error
}

// NewTextWriter creates a text writer over w.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{output: w}
}

// Write prints record's count. Only CountRecord values are accepted.
func (w *TextWriter) Write(record any) error {
	var rec CountRecord
	switch r := record.(type) {
	case CountRecord:
		rec = r
	case *CountRecord:
		rec = *r
	default:
		return fmt.Errorf("text output supports count records only, got %T", record)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := fmt.Fprintln(w.output, rec.Count); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// Close closes the underlying writer if it's a file.
func (w *TextWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closeFunc != nil {
		return w.closeFunc()
	}
	return nil
}

// Open returns a writer in format over path, or over stdout when path is
// empty or "-".
func Open(path string, format Format) (RecordWriter, error) {
	if path == "" || path == "-" {
		return New(os.Stdout, format)
	}

	if format != FormatText && format != FormatNDJSON && format != "" {
		return nil, fmt.Errorf("unknown output format %q", format)
	}

	file, err := openAppend(path)
	if err != nil {
		return nil, err
	}
	if format == FormatText {
		return &TextWriter{output: file, closeFunc: file.Close}, nil
	}
	return &Writer{output: file, encoder: json.NewEncoder(file), closeFunc: file.Close}, nil
}

// New returns a writer in format over w. w is never closed.
func New(w io.Writer, format Format) (RecordWriter, error) {
	switch format {
	case FormatText:
		return NewTextWriter(w), nil
	case FormatNDJSON, "":
		return NewWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

func openAppend(filename string) (*os.File, error) {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, nil
}
