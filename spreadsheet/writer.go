package spreadsheet

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-logr/logr"
	"google.golang.org/api/sheets/v4"

	"github.com/uhppoted/uhppoted-app-airtable/model"
)

// Writer fills a worksheet with the columns and records of a table.
type Writer struct {
	service Service
	log     logr.Logger
}

// NewWriter returns a Writer that writes through the Google service.
func NewWriter(service Service, log logr.Logger) *Writer {
	return &Writer{
		service: service,
		log:     log.WithName("writer"),
	}
}

// Fill writes the table columns to the first row of the worksheet with the
// table name and then writes the records from row 2 down. Both writes store
// the values as given (RAW) rather than parsing them as user input.
func (w *Writer) Fill(ctx context.Context, table *model.Table, spreadsheetID string) error {
	op := fmt.Sprintf("fill sheet %v", table.Name)

	w.log.Info("Filling table", "table", table.Name, "records", len(table.Records))

	if len(table.Columns) == 0 {
		w.log.Info("Skipping table with no columns", "table", table.Name)
		return nil
	}

	// ... header
	header := make([]any, len(table.Columns))
	for i, column := range table.Columns {
		header[i] = column
	}

	columns := sheets.ValueRange{
		Range:          qualify(table.Name, HeaderRange(len(table.Columns))),
		MajorDimension: ROWS,
		Values:         [][]any{header},
	}

	if err := w.service.UpdateValues(ctx, spreadsheetID, &columns, RAW); err != nil {
		return model.Wrap(model.KindDestination, op, err)
	}

	w.log.V(1).Info("wrote header", "range", columns.Range)

	// ... records
	if len(table.Records) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(table.Records))
	for _, record := range table.Records {
		row := make([]any, len(record.Values))
		for i, v := range record.Values {
			row[i] = cell(v)
		}

		rows = append(rows, row)
	}

	rq := sheets.BatchUpdateValuesRequest{
		ValueInputOption: RAW,
		Data: []*sheets.ValueRange{
			&sheets.ValueRange{
				Range:          qualify(table.Name, BodyRange(len(table.Columns), len(table.Records))),
				MajorDimension: ROWS,
				Values:         rows,
			},
		},
	}

	if err := w.service.BatchUpdateValues(ctx, spreadsheetID, &rq); err != nil {
		return model.Wrap(model.KindDestination, op, err)
	}

	w.log.V(1).Info("wrote records", "range", rq.Data[0].Range)

	return nil
}

// cell passes scalar values through unchanged and converts composite values
// (lists, attachments, linked records) to JSON text, which is the only form a
// worksheet cell can hold them in.
func cell(v any) any {
	switch value := v.(type) {
	case nil, string, bool, json.Number, float64, int, int64:
		return value

	default:
		return model.Text(value)
	}
}
