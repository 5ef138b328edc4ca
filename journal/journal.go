package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/aletheialabs/aletheia/types"
)

// Errors
var (
	ErrJournalClosed    = errors.New("journal is closed")
	ErrJournalCorrupted = errors.New("journal is corrupted")
	ErrJournalNotFound  = errors.New("journal not found")
)

// Record is one audit log entry
type Record struct {
	// ID uniquely identifies this record (for cross-referencing audits)
	ID string `json:"id"`
	// Type is the event type carried in Data
	Type types.EventType `json:"type"`
	// Time is the wall-clock time the record was appended, unix nanos
	Time int64 `json:"time"`
	// Data is the canonical JSON encoding of the event payload
	Data json.RawMessage `json:"data"`
}

// NewRecord wraps an event payload in a Record
func NewRecord(eventType types.EventType, at time.Time, payload interface{}) (*Record, error) {
	data, err := types.CanonicalJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}
	return &Record{
		ID:   uuid.NewString(),
		Type: eventType,
		Time: at.UnixNano(),
		Data: data,
	}, nil
}

// Journal is an append-only audit event sink
type Journal interface {
	// Append durably appends a record
	Append(rec *Record) error

	// Close flushes and closes the journal
	Close() error
}

// Reader iterates over journal records
type Reader interface {
	// Read returns the next record, or io.EOF at the end
	Read() (*Record, error)

	// Close closes the reader
	Close() error
}

// NopJournal discards all records. Used where audit persistence is
// handled elsewhere or not wanted (tests).
type NopJournal struct{}

func (NopJournal) Append(rec *Record) error { return nil }
func (NopJournal) Close() error             { return nil }

var _ Journal = NopJournal{}

// NopReader yields no records
type NopReader struct{}

func (NopReader) Read() (*Record, error) { return nil, io.EOF }
func (NopReader) Close() error           { return nil }

var _ Reader = NopReader{}

// MemJournal collects records in memory, for tests and inspection
type MemJournal struct {
	Records []*Record
}

func (m *MemJournal) Append(rec *Record) error {
	m.Records = append(m.Records, rec)
	return nil
}

func (m *MemJournal) Close() error { return nil }

// ByType returns the appended records of one event type, in order
func (m *MemJournal) ByType(t types.EventType) []*Record {
	var out []*Record
	for _, rec := range m.Records {
		if rec.Type == t {
			out = append(out, rec)
		}
	}
	return out
}

var _ Journal = (*MemJournal)(nil)
