// Package spreadsheet creates the Google Sheets spreadsheet for a migrated
// Airtable base and writes the table headers and records to its worksheets.
package spreadsheet

import (
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	SHEETS = sheets.SpreadsheetsScope
	DRIVE  = drive.DriveScope

	RAW  = "RAW"
	ROWS = "ROWS"
)

// Service is the subset of the Google Sheets and Drive APIs used to create
// and fill a spreadsheet.
type Service interface {
	CreateSpreadsheet(ctx context.Context, spreadsheet *sheets.Spreadsheet) (*sheets.Spreadsheet, error)
	CreatePermission(ctx context.Context, fileID string, permission *drive.Permission) error
	UpdateValues(ctx context.Context, spreadsheetID string, values *sheets.ValueRange, valueInputOption string) error
	BatchUpdateValues(ctx context.Context, spreadsheetID string, rq *sheets.BatchUpdateValuesRequest) error
}

// Google implements Service with the Sheets v4 and Drive v3 clients.
type Google struct {
	sheets *sheets.Service
	drive  *drive.Service
}

// NewGoogle creates the Sheets and Drive clients with the same options, which
// would typically be option.WithHTTPClient with an authorised client.
func NewGoogle(ctx context.Context, opts ...option.ClientOption) (*Google, error) {
	s, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create new Sheets client (%w)", err)
	}

	d, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create new Drive client (%w)", err)
	}

	return &Google{
		sheets: s,
		drive:  d,
	}, nil
}

func (g *Google) CreateSpreadsheet(ctx context.Context, spreadsheet *sheets.Spreadsheet) (*sheets.Spreadsheet, error) {
	return g.sheets.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
}

func (g *Google) CreatePermission(ctx context.Context, fileID string, permission *drive.Permission) error {
	_, err := g.drive.Permissions.Create(fileID, permission).
		Fields("id").
		Context(ctx).
		Do()

	return err
}

func (g *Google) UpdateValues(ctx context.Context, spreadsheetID string, values *sheets.ValueRange, valueInputOption string) error {
	_, err := g.sheets.Spreadsheets.Values.Update(spreadsheetID, values.Range, values).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()

	return err
}

func (g *Google) BatchUpdateValues(ctx context.Context, spreadsheetID string, rq *sheets.BatchUpdateValuesRequest) error {
	_, err := g.sheets.Spreadsheets.Values.BatchUpdate(spreadsheetID, rq).Context(ctx).Do()

	return err
}
