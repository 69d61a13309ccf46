package spreadsheet

import (
	"context"
	"strings"

	"github.com/go-logr/logr"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"

	"github.com/uhppoted/uhppoted-app-airtable/model"
)

// Provisioner creates and shares the spreadsheet that receives the migrated tables.
type Provisioner struct {
	service Service
	title   string
	log     logr.Logger
}

// NewProvisioner returns a Provisioner for spreadsheets with the given title.
func NewProvisioner(service Service, title string, log logr.Logger) *Provisioner {
	return &Provisioner{
		service: service,
		title:   title,
		log:     log.WithName("provisioner"),
	}
}

// Create creates a spreadsheet with one worksheet per table, titled with the
// table name, and then makes it writable by anyone with the link. Only the
// table names are used so the table records need not have been fetched.
func (p *Provisioner) Create(ctx context.Context, tables []*model.Table) (string, error) {
	op := "create spreadsheet"

	rq := sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title: p.title,
		},
		Sheets: []*sheets.Sheet{},
	}

	titles := map[string]bool{}
	for _, table := range tables {
		// worksheet titles are case-insensitive
		k := strings.ToLower(table.Name)
		if titles[k] {
			return "", model.Errorf(model.KindDestination, op, "duplicate worksheet title '%v'", table.Name)
		}

		titles[k] = true
		rq.Sheets = append(rq.Sheets, &sheets.Sheet{
			Properties: &sheets.SheetProperties{
				Title: table.Name,
			},
		})
	}

	spreadsheet, err := p.service.CreateSpreadsheet(ctx, &rq)
	if err != nil {
		return "", model.Wrap(model.KindDestination, op, err)
	} else if spreadsheet == nil || spreadsheet.SpreadsheetId == "" {
		return "", model.Errorf(model.KindDestination, op, "no spreadsheet ID in response")
	}

	p.log.V(1).Info("created spreadsheet", "id", spreadsheet.SpreadsheetId, "sheets", len(rq.Sheets))

	permission := drive.Permission{
		Type: "anyone",
		Role: "writer",
	}

	if err := p.service.CreatePermission(ctx, spreadsheet.SpreadsheetId, &permission); err != nil {
		return "", model.Wrap(model.KindDestination, "share spreadsheet", err)
	}

	return spreadsheet.SpreadsheetId, nil
}
