package model

import "strings"

// Record is a single shelf observation row, keyed by master column name.
// Rows arrive with columns already mapped to master names; the resolution
// engine only ever reads and writes canonical (or blank) values.
type Record struct {
	// SourceFile is the originating workbook, used for traceability and
	// for stable ordering during consolidation.
	SourceFile string
	// Row is the 1-based data row within the source file.
	Row int
	// Master indicates the record came from the pre-existing master set
	// rather than a newly processed source file.
	Master bool

	fields map[string]string
}

// NewRecord creates an empty record for the given source position.
func NewRecord(sourceFile string, row int) *Record {
	return &Record{
		SourceFile: sourceFile,
		Row:        row,
		fields:     make(map[string]string),
	}
}

// Get returns the trimmed value of a column. Missing columns read as blank.
func (r *Record) Get(column string) string {
	return strings.TrimSpace(r.fields[column])
}

// Set stores a value for a column. Setting a blank clears the cell.
func (r *Record) Set(column, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		delete(r.fields, column)
		return
	}
	r.fields[column] = value
}

// Clear blanks a column.
func (r *Record) Clear(column string) {
	delete(r.fields, column)
}

// Blank reports whether a column is empty or absent.
func (r *Record) Blank(column string) bool {
	return r.Get(column) == ""
}

// Equals reports whether a column holds exactly the given value after
// trimming. Blank cells never equal anything, including blank.
func (r *Record) Equals(column, value string) bool {
	v := r.Get(column)
	return v != "" && v == value
}

// EqualsFold is Equals with case-insensitive comparison.
func (r *Record) EqualsFold(column, value string) bool {
	v := r.Get(column)
	return v != "" && strings.EqualFold(v, value)
}

// Columns returns the set of populated column names. Order is unspecified.
func (r *Record) Columns() []string {
	cols := make([]string, 0, len(r.fields))
	for c := range r.fields {
		cols = append(cols, c)
	}
	return cols
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	out := &Record{
		SourceFile: r.SourceFile,
		Row:        r.Row,
		Master:     r.Master,
		fields:     make(map[string]string, len(r.fields)),
	}
	for k, v := range r.fields {
		out.fields[k] = v
	}
	return out
}
