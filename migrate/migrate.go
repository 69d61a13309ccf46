// Package migrate copies every table of an Airtable base to a new Google
// Sheets spreadsheet.
//
// A migration runs in two concurrent phases separated by a barrier: the
// records of all tables are fetched from Airtable, then the spreadsheet is
// created and finally the worksheets are filled. Each phase runs its
// per-table tasks on a bounded worker pool and the first failure aborts the
// run.
package migrate

import (
	"context"
	"runtime"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/uhppoted/uhppoted-app-airtable/model"
)

// Reader discovers the tables in a base and fetches their records.
type Reader interface {
	DiscoverTables(ctx context.Context, baseID string) ([]*model.Table, error)
	FetchRecords(ctx context.Context, baseID string, table *model.Table) error
}

// Provisioner creates the spreadsheet for a set of tables and returns its ID.
type Provisioner interface {
	Create(ctx context.Context, tables []*model.Table) (string, error)
}

// Writer writes a fetched table to its worksheet.
type Writer interface {
	Fill(ctx context.Context, table *model.Table, spreadsheetID string) error
}

// Migration copies the tables of an Airtable base to a new spreadsheet.
type Migration struct {
	BaseID      string
	Reader      Reader
	Provisioner Provisioner
	Writer      Writer

	// Workers bounds the number of concurrent per-table tasks. Defaults to
	// GOMAXPROCS if not set.
	Workers int
	Log     logr.Logger
}

// Run migrates the base and returns the ID of the new spreadsheet.
func (m *Migration) Run(ctx context.Context) (string, error) {
	m.Log.Info("Copying Airtable tables", "base", m.BaseID)

	tables, err := m.Fetch(ctx)
	if err != nil {
		return "", err
	}

	m.Log.Info("Creating tables in Google Sheets", "tables", len(tables))

	spreadsheetID, err := m.Provisioner.Create(ctx, tables)
	if err != nil {
		return "", model.Wrap(model.KindDestination, "create spreadsheet", err)
	}

	m.Log.Info("Spreadsheet created", "id", spreadsheetID)

	if err := m.Fill(ctx, tables, spreadsheetID); err != nil {
		return "", err
	}

	m.Log.Info("All tables have been created")

	return spreadsheetID, nil
}

// Fetch discovers the tables in the base and fetches the records of each
// table concurrently, returning once every table has been fetched.
func (m *Migration) Fetch(ctx context.Context) ([]*model.Table, error) {
	tables, err := m.Reader.DiscoverTables(ctx, m.BaseID)
	if err != nil {
		return nil, model.Wrap(model.KindSource, "discover tables", err)
	}

	fetch := func(ctx context.Context, table *model.Table) error {
		if err := m.Reader.FetchRecords(ctx, m.BaseID, table); err != nil {
			return model.Wrap(model.KindSource, "fetch records", err)
		}

		m.Log.V(1).Info("fetched table", "table", table.Name, "records", len(table.Records))

		return nil
	}

	if err := m.fanout(ctx, tables, fetch); err != nil {
		return nil, err
	}

	return tables, nil
}

// Fill writes every table to its worksheet concurrently.
func (m *Migration) Fill(ctx context.Context, tables []*model.Table, spreadsheetID string) error {
	fill := func(ctx context.Context, table *model.Table) error {
		if err := m.Writer.Fill(ctx, table, spreadsheetID); err != nil {
			return model.Wrap(model.KindDestination, "fill table", err)
		}

		return nil
	}

	return m.fanout(ctx, tables, fill)
}

// fanout runs f for each table on a pool of at most m.Workers goroutines and
// waits for all of them. The first error cancels the remaining tasks and is
// the error returned.
func (m *Migration) fanout(ctx context.Context, tables []*model.Table, f func(context.Context, *model.Table) error) error {
	workers := m.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, table := range tables {
		if gctx.Err() != nil {
			break
		}

		table := table
		g.Go(func() error {
			return f(gctx, table)
		})
	}

	err := g.Wait()

	// interrupted tasks may fail with arbitrary transport errors
	if ctx.Err() != nil {
		return model.Wrap(model.KindCancelled, "", ctx.Err())
	}

	return err
}
