package journal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"yidino-api/pkg/market"
)

// Format selects the on-disk encoding of journal files.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat maps a config value to a Format, defaulting to JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatMsgpack, "mpk":
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("journal: unknown format %q", s)
	}
}

func (f Format) ext() string {
	if f == FormatMsgpack {
		return ".mpk"
	}
	return ".json"
}

// CycleRecord captures one poll cycle for audit and replay.
type CycleRecord struct {
	Timestamp    time.Time        `json:"timestamp"`
	Poller       string           `json:"poller"`
	CycleNumber  int              `json:"cycle_number"`
	DurationMs   int64            `json:"duration_ms"`
	Trigger      string           `json:"trigger,omitempty"`
	Success      bool             `json:"success"`
	ErrorMessage string           `json:"error_message,omitempty"`
	Snapshot     *market.Snapshot `json:"snapshot,omitempty"`
	Bundle       *market.Bundle   `json:"bundle,omitempty"`
}

// Writer persists cycle records to a directory, one file per cycle.
type Writer struct {
	dir    string
	format Format
	nowFn  func() time.Time

	mu  sync.Mutex
	seq int
}

// NewWriter constructs a journal writer.
func NewWriter(dir string, format Format) *Writer {
	if dir == "" {
		dir = "journal"
	}
	if format == "" {
		format = FormatJSON
	}
	_ = os.MkdirAll(dir, 0o755)
	return &Writer{dir: dir, format: format, nowFn: time.Now}
}

// Dir returns the journal directory.
func (w *Writer) Dir() string { return w.dir }

// WriteCycle numbers rec and writes it to a timestamped file.
func (w *Writer) WriteCycle(rec *CycleRecord) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("journal: nil record")
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if rec.Timestamp.IsZero() {
		rec.Timestamp = w.nowFn()
	}
	w.seq++
	rec.CycleNumber = w.seq
	poller := rec.Poller
	if poller == "" {
		poller = "cycle"
	}
	name := fmt.Sprintf("%s_%s_%05d%s", poller, rec.Timestamp.UTC().Format("20060102_150405"), w.seq, w.format.ext())
	path := filepath.Join(w.dir, name)

	data, err := encode(w.format, rec)
	if err != nil {
		return "", fmt.Errorf("journal: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// ReadCycle loads a record written by WriteCycle; the encoding follows the
// file extension.
func ReadCycle(path string) (*CycleRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec CycleRecord
	if strings.EqualFold(filepath.Ext(path), FormatMsgpack.ext()) {
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		dec.SetCustomStructTag("json")
		err = dec.Decode(&rec)
	} else {
		err = json.Unmarshal(data, &rec)
	}
	if err != nil {
		return nil, fmt.Errorf("journal: decode %s: %w", path, err)
	}
	return &rec, nil
}

func encode(format Format, rec *CycleRecord) ([]byte, error) {
	if format != FormatMsgpack {
		return json.MarshalIndent(rec, "", "  ")
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
