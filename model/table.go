package model

import (
	"encoding/json"
	"fmt"
)

// Record is a single table row. Values are positionally aligned with the
// owning Table's Columns and a nil value is a field that was missing from the
// source record.
type Record struct {
	Values []any
}

// Table is an Airtable table and the Google Sheets worksheet it is copied to.
//
// SourceID, Name and Columns are set once when the base schema is retrieved.
// Records is nil until the table records have been fetched and is read-only
// thereafter.
type Table struct {
	SourceID string
	Name     string
	Columns  []string
	Records  []Record
}

// Fetched returns true once the table records have been retrieved.
func (t *Table) Fetched() bool {
	return t.Records != nil
}

// Validate checks that every record is aligned with the table columns.
func (t *Table) Validate() error {
	for i, record := range t.Records {
		if len(record.Values) != len(t.Columns) {
			return fmt.Errorf("table '%v' record %v has %v values (expected %v)", t.Name, i+1, len(record.Values), len(t.Columns))
		}
	}

	return nil
}

// Strings returns the record values as text: nil is empty, strings and numbers
// are unchanged and anything else (lists, attachments, linked records) is
// rendered as JSON.
func (r Record) Strings() []string {
	list := make([]string, len(r.Values))
	for i, v := range r.Values {
		list[i] = Text(v)
	}

	return list
}

// Text returns a value as cell text.
func Text(v any) string {
	switch value := v.(type) {
	case nil:
		return ""

	case string:
		return value

	case json.Number:
		return value.String()

	case bool, int, int64, float64:
		return fmt.Sprintf("%v", value)

	default:
		if b, err := json.Marshal(value); err != nil {
			return fmt.Sprintf("%v", value)
		} else {
			return string(b)
		}
	}
}
