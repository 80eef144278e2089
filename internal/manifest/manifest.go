// Package manifest owns the one file format of the core: a JSON-lines
// record sequence describing which camera placement produced which output
// image. The first line is a session header; every following line is one
// pose record in index order.
package manifest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"camsphere/internal/sphere"
)

// Status of one rendered pose.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Header opens the manifest and echoes the request.
type Header struct {
	SessionID string      `json:"session_id"`
	CreatedAt time.Time   `json:"created_at"`
	Spec      sphere.Spec `json:"spec"`
	HDRI      string      `json:"hdri,omitempty"`
	Requested int         `json:"requested_poses"`
	Kept      int         `json:"kept_poses"`
}

// Record describes one pose and its render outcome.
type Record struct {
	Index     int     `json:"index"`
	Filename  string  `json:"filename"`
	Azimuth   float64 `json:"azimuth"`
	Elevation float64 `json:"elevation"`
	Radius    float64 `json:"radius"`
	Status    Status  `json:"status"`
	Error     string  `json:"error,omitempty"`
}

// Writer streams a header followed by records as JSON lines.
type Writer struct {
	enc         *json.Encoder
	wroteHeader bool
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: json.NewEncoder(w)}
}

func (w *Writer) WriteHeader(h Header) error {
	if w.wroteHeader {
		return fmt.Errorf("manifest: header already written")
	}
	w.wroteHeader = true
	return w.enc.Encode(h)
}

func (w *Writer) WriteRecord(r Record) error {
	if !w.wroteHeader {
		return fmt.Errorf("manifest: record before header")
	}
	return w.enc.Encode(r)
}

// Write saves a complete manifest to path.
func Write(path string, h Header, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("manifest: create %s: %w", path, err)
	}
	defer f.Close()

	w := NewWriter(f)
	if err := w.WriteHeader(h); err != nil {
		return err
	}
	for _, r := range records {
		if err := w.WriteRecord(r); err != nil {
			return err
		}
	}
	return nil
}

// Read parses a manifest stream back into header and records.
func Read(r io.Reader) (Header, []Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var h Header
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return h, nil, fmt.Errorf("manifest: read header: %w", err)
		}
		return h, nil, fmt.Errorf("manifest: empty stream")
	}
	if err := json.Unmarshal(sc.Bytes(), &h); err != nil {
		return h, nil, fmt.Errorf("manifest: parse header: %w", err)
	}

	var records []Record
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return h, records, fmt.Errorf("manifest: parse record %d: %w", len(records), err)
		}
		records = append(records, rec)
	}
	return h, records, sc.Err()
}

// Load reads a manifest file from disk.
func Load(path string) (Header, []Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, nil, fmt.Errorf("manifest: open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
