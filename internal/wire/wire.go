// Package wire reads and writes time log documents in the shape the hosted
// app stores them: camelCase fields and {seconds, nanoseconds} timestamps.
// Timestamps are turned into time.Time here and nowhere else.
package wire

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

var (
	ErrMalformedTimestamp = errors.New("malformed timestamp")
	ErrMissingID          = errors.New("record has no id")
)

// Timestamp is a point in time as seconds since the Unix epoch plus a
// nanosecond fraction in [0, 1e9).
type Timestamp struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int64 `json:"nanoseconds"`
}

func FromTime(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanoseconds: int64(t.Nanosecond())}
}

// Time converts ts to a UTC time.
func (ts Timestamp) Time() (time.Time, error) {
	if ts.Nanoseconds < 0 || ts.Nanoseconds >= int64(time.Second) {
		return time.Time{}, fmt.Errorf("%w: nanoseconds %d out of range", ErrMalformedTimestamp, ts.Nanoseconds)
	}
	return time.Unix(ts.Seconds, ts.Nanoseconds).UTC(), nil
}

type Category struct {
	ID     string `json:"id"`
	Value  string `json:"value"`
	Label  string `json:"label"`
	Icon   string `json:"icon"`
	Color  string `json:"color,omitempty"`
	Order  int    `json:"order,omitempty"`
	Hidden bool   `json:"hidden,omitempty"`
}

// Record is one stored interval. EndTime is nil for a recording that was
// still running when the document was written.
type Record struct {
	ID         string     `json:"id"`
	CategoryID string     `json:"categoryId"`
	Task       string     `json:"task"`
	StartTime  Timestamp  `json:"startTime"`
	EndTime    *Timestamp `json:"endTime,omitempty"`
	Duration   int64      `json:"duration"`
	CreatedAt  *Timestamp `json:"createdAt,omitempty"`
	UpdatedAt  *Timestamp `json:"updatedAt,omitempty"`
}

type Document struct {
	ExportedAt *Timestamp `json:"exportedAt,omitempty"`
	Categories []Category `json:"categories"`
	Records    []Record   `json:"records"`
}

// Decode reads a document. A bare JSON array is accepted as a list of
// records with no categories. Record contents are not checked here; see
// ReportInput and StoreRecord.
func Decode(r io.Reader) (*Document, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	dec := json.NewDecoder(br)
	var doc Document
	if first == '[' {
		err = dec.Decode(&doc.Records)
	} else {
		err = dec.Decode(&doc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, errors.New("empty input")
			}
			return 0, err
		}
		if !bytes.ContainsAny(b, " \t\r\n") {
			return b[0], nil
		}
		br.Discard(1)
	}
}

// Encode writes doc as indented JSON. Nil lists are written as [].
func Encode(w io.Writer, doc *Document) error {
	out := *doc
	if out.Categories == nil {
		out.Categories = []Category{}
	}
	if out.Records == nil {
		out.Records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return nil
}
