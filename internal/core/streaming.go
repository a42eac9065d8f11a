package core

// streaming.go prepares uploaded files for line-by-line processing without
// loading them into memory:
//
//   - a leading UTF-8 BOM (0xEF 0xBB 0xBF) written by Windows tools is dropped
//   - bytes read are counted for logging and metrics
//
// Invalid UTF-8 is repaired per line by the Aggregator, not here.

import (
	"bufio"
	"bytes"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CountingReader wraps an io.Reader and tracks how many bytes it returned.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
	Total     int64 // 0 if unknown
}

// NewCountingReader creates a counting reader with an optional known size.
func NewCountingReader(r io.Reader, total int64) *CountingReader {
	return &CountingReader{reader: r, Total: total}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// Progress returns the read progress as a percentage (0-100), or 0 when the
// total is unknown.
func (r *CountingReader) Progress() int {
	if r.Total <= 0 {
		return 0
	}
	return int(r.BytesRead * 100 / r.Total)
}

// SkipBOM returns a reader positioned after a leading UTF-8 BOM, if any.
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(utf8BOM))
	if err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// WrapForStreaming strips the BOM and counts the bytes consumed from r.
// Counting happens on the raw input so it matches the uploaded size.
func WrapForStreaming(r io.Reader, totalSize int64) (io.Reader, *CountingReader) {
	counter := NewCountingReader(r, totalSize)
	return SkipBOM(counter), counter
}
