// Package ingest loads the track dataset into the search index.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformedRecord marks a dataset row that cannot be indexed. Rows
// carrying it are skipped and counted, never fatal.
var ErrMalformedRecord = errors.New("ingest: malformed record")

// Record is one dataset row keyed by column name.
type Record struct {
	Line   int
	Values map[string]string
}

// Get returns the trimmed value of column and whether it is non-empty.
func (r Record) Get(column string) (string, bool) {
	v := strings.TrimSpace(r.Values[column])
	return v, v != ""
}

// Reader streams dataset rows. A leading unnamed column, the row index
// written by dataframe exports, is dropped.
type Reader struct {
	csv    *csv.Reader
	header []string
	offset int
}

// NewReader reads the header row of src.
func NewReader(src io.Reader) (*Reader, error) {
	cr := csv.NewReader(src)
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("ingest: empty dataset")
		}
		return nil, fmt.Errorf("ingest: read header: %w", err)
	}

	r := &Reader{csv: cr}
	if len(header) > 0 && isIndexColumn(header[0]) {
		r.offset = 1
	}
	r.header = make([]string, 0, len(header)-r.offset)
	for _, h := range header[r.offset:] {
		r.header = append(r.header, strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}
	return r, nil
}

func isIndexColumn(name string) bool {
	name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	return name == "" || strings.HasPrefix(name, "Unnamed:")
}

// Columns returns the header without the dropped index column.
func (r *Reader) Columns() []string {
	return r.header
}

// Next returns the next row, io.EOF at the end of input, or an error wrapping
// ErrMalformedRecord for a row with the wrong number of fields. Other errors
// are fatal.
func (r *Reader) Next() (Record, error) {
	fields, err := r.csv.Read()
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) && errors.Is(perr.Err, csv.ErrFieldCount) {
			return Record{Line: perr.Line}, fmt.Errorf("%w: line %d: %v", ErrMalformedRecord, perr.Line, perr.Err)
		}
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("ingest: read row: %w", err)
	}

	line, _ := r.csv.FieldPos(0)
	values := make(map[string]string, len(r.header))
	for i, name := range r.header {
		values[name] = fields[i+r.offset]
	}
	return Record{Line: line, Values: values}, nil
}
