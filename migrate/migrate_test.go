package migrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"
	"gopkg.in/h2non/gock.v1"

	"github.com/uhppoted/uhppoted-app-airtable/airtable"
	"github.com/uhppoted/uhppoted-app-airtable/config"
	"github.com/uhppoted/uhppoted-app-airtable/model"
	"github.com/uhppoted/uhppoted-app-airtable/spreadsheet"
)

const (
	TEST_URL   = "https://api.airtable.com"
	TEST_TOKEN = "patQWERTY"
	TEST_BASE  = "appUIOP"
	TEST_SHEET = "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms"
)

// google records the requests made against the Sheets and Drive APIs.
type google struct {
	sync.Mutex
	created     int
	permissions int
	values      map[string][][]any
}

func (g *google) CreateSpreadsheet(ctx context.Context, rq *sheets.Spreadsheet) (*sheets.Spreadsheet, error) {
	g.Lock()
	defer g.Unlock()

	g.created++

	return &sheets.Spreadsheet{SpreadsheetId: TEST_SHEET}, nil
}

func (g *google) CreatePermission(ctx context.Context, fileID string, permission *drive.Permission) error {
	g.Lock()
	defer g.Unlock()

	g.permissions++

	return nil
}

func (g *google) UpdateValues(ctx context.Context, spreadsheetID string, values *sheets.ValueRange, option string) error {
	g.Lock()
	defer g.Unlock()

	g.record(values)

	return nil
}

func (g *google) BatchUpdateValues(ctx context.Context, spreadsheetID string, rq *sheets.BatchUpdateValuesRequest) error {
	g.Lock()
	defer g.Unlock()

	for _, values := range rq.Data {
		g.record(values)
	}

	return nil
}

func (g *google) record(values *sheets.ValueRange) {
	if g.values == nil {
		g.values = map[string][][]any{}
	}

	g.values[values.Range] = values.Values
}

func newMigration(t *testing.T, service spreadsheet.Service) *Migration {
	client := &http.Client{}

	gock.InterceptClient(client)
	t.Cleanup(func() {
		gock.RestoreClient(client)
		gock.Off()
	})

	conf := config.Airtable{
		URL:    TEST_URL,
		APIKey: TEST_TOKEN,
		BaseID: TEST_BASE,
	}

	return &Migration{
		BaseID:      TEST_BASE,
		Reader:      airtable.NewClient(conf, client, logr.Discard()),
		Provisioner: spreadsheet.NewProvisioner(service, "My Spreadsheet", logr.Discard()),
		Writer:      spreadsheet.NewWriter(service, logr.Discard()),
		Workers:     2,
		Log:         logr.Discard(),
	}
}

func TestRun(t *testing.T) {
	gock.New(TEST_URL).
		Get("/v0/meta/bases/" + TEST_BASE + "/tables").
		MatchHeader("Authorization", "Bearer "+TEST_TOKEN).
		Reply(200).
		JSON(map[string]any{
			"tables": []any{
				map[string]any{
					"id":     "tblPeople",
					"name":   "People",
					"fields": []any{map[string]any{"name": "Name"}, map[string]any{"name": "Age"}},
				},
				map[string]any{
					"id":     "tblPets",
					"name":   "Pets",
					"fields": []any{map[string]any{"name": "Species"}},
				},
			},
		})

	gock.New(TEST_URL).
		Get("/v0/"+TEST_BASE+"/tblPeople").
		MatchParam("offset", "c1").
		Reply(200).
		JSON(map[string]any{
			"records": []any{
				map[string]any{"fields": map[string]any{"Name": "Alan", "Age": 41}},
			},
		})

	gock.New(TEST_URL).
		Get("/v0/" + TEST_BASE + "/tblPeople").
		Reply(200).
		JSON(map[string]any{
			"records": []any{
				map[string]any{"fields": map[string]any{"Name": "Ada", "Age": 36}},
				map[string]any{"fields": map[string]any{"Name": "Grace"}},
			},
			"offset": "c1",
		})

	gock.New(TEST_URL).
		Get("/v0/" + TEST_BASE + "/tblPets").
		Reply(200).
		JSON(map[string]any{
			"records": []any{
				map[string]any{"fields": map[string]any{"Species": "cat"}},
			},
		})

	service := google{}
	m := newMigration(t, &service)

	id, err := m.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, TEST_SHEET, id)
	assert.Equal(t, 1, service.created)
	assert.Equal(t, 1, service.permissions)

	assert.Equal(t, [][]any{{"Name", "Age"}}, service.values["'People'!A1:B1"])
	assert.Equal(t, [][]any{
		{"Ada", json.Number("36")},
		{"Grace", nil},
		{"Alan", json.Number("41")},
	}, service.values["'People'!A2:B5"])

	assert.Equal(t, [][]any{{"Species"}}, service.values["'Pets'!A1:A1"])
	assert.Equal(t, [][]any{{"cat"}}, service.values["'Pets'!A2:A3"])

	assert.Len(t, service.values, 4)
	assert.False(t, gock.HasUnmatchedRequest())
	assert.True(t, gock.IsDone())
}

func TestRunWithUnauthorizedDiscovery(t *testing.T) {
	gock.New(TEST_URL).
		Get("/v0/meta/bases/" + TEST_BASE + "/tables").
		Reply(401).
		JSON(map[string]any{"error": map[string]any{"type": "AUTHENTICATION_REQUIRED"}})

	service := google{}
	m := newMigration(t, &service)

	_, err := m.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, model.KindSource, model.KindOf(err))
	assert.Equal(t, 0, service.created)
	assert.Equal(t, 0, service.permissions)
	assert.Empty(t, service.values)
}

func TestRunWithFetchFailure(t *testing.T) {
	gock.New(TEST_URL).
		Get("/v0/meta/bases/" + TEST_BASE + "/tables").
		Reply(200).
		JSON(map[string]any{
			"tables": []any{
				map[string]any{"id": "tblPeople", "name": "People", "fields": []any{map[string]any{"name": "Name"}}},
			},
		})

	gock.New(TEST_URL).
		Get("/v0/" + TEST_BASE + "/tblPeople").
		Reply(503).
		BodyString("service unavailable")

	service := google{}
	m := newMigration(t, &service)

	_, err := m.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, model.KindSource, model.KindOf(err))
	assert.Equal(t, 0, service.created)
}

// reader is an in-memory Reader that tracks concurrent fetches.
type reader struct {
	tables  int
	delay   time.Duration
	fail    string
	fetched sync.Map

	active  atomic.Int32
	peak    atomic.Int32
	fetches atomic.Int32
}

func (r *reader) DiscoverTables(ctx context.Context, baseID string) ([]*model.Table, error) {
	tables := []*model.Table{}
	for i := 1; i <= r.tables; i++ {
		tables = append(tables, &model.Table{
			SourceID: fmt.Sprintf("tbl%v", i),
			Name:     fmt.Sprintf("Table %v", i),
			Columns:  []string{"Name"},
		})
	}

	return tables, nil
}

func (r *reader) FetchRecords(ctx context.Context, baseID string, table *model.Table) error {
	active := r.active.Add(1)
	defer r.active.Add(-1)

	for {
		peak := r.peak.Load()
		if active <= peak || r.peak.CompareAndSwap(peak, active) {
			break
		}
	}

	r.fetches.Add(1)

	if _, loaded := r.fetched.LoadOrStore(table.SourceID, true); loaded {
		return fmt.Errorf("table %v fetched more than once", table.Name)
	}

	if table.SourceID == r.fail {
		return model.Errorf(model.KindSource, "fetch records", "500 Internal Server Error")
	}

	select {
	case <-time.After(r.delay):
	case <-ctx.Done():
		return ctx.Err()
	}

	table.Records = []model.Record{{Values: []any{table.Name}}}

	return nil
}

type provisioner struct {
	called atomic.Bool
}

func (p *provisioner) Create(ctx context.Context, tables []*model.Table) (string, error) {
	p.called.Store(true)

	for _, table := range tables {
		if !table.Fetched() {
			return "", fmt.Errorf("spreadsheet created before table %v was fetched", table.Name)
		}
	}

	return TEST_SHEET, nil
}

type writer struct {
	sync.Mutex
	filled map[string]int
	fail   string
}

func (w *writer) Fill(ctx context.Context, table *model.Table, spreadsheetID string) error {
	w.Lock()
	defer w.Unlock()

	if !table.Fetched() {
		return fmt.Errorf("table %v filled before it was fetched", table.Name)
	}

	if table.Name == w.fail {
		return errors.New("quota exceeded")
	}

	if w.filled == nil {
		w.filled = map[string]int{}
	}

	w.filled[table.Name]++

	return nil
}

func TestRunWithBoundedPool(t *testing.T) {
	r := reader{tables: 5, delay: 20 * time.Millisecond}
	p := provisioner{}
	w := writer{}

	m := Migration{
		BaseID:      TEST_BASE,
		Reader:      &r,
		Provisioner: &p,
		Writer:      &w,
		Workers:     2,
		Log:         logr.Discard(),
	}

	id, err := m.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, TEST_SHEET, id)
	assert.Equal(t, int32(5), r.fetches.Load())
	assert.LessOrEqual(t, r.peak.Load(), int32(2))
	assert.True(t, p.called.Load())

	require.Len(t, w.filled, 5)
	for i := 1; i <= 5; i++ {
		assert.Equal(t, 1, w.filled[fmt.Sprintf("Table %v", i)])
	}
}

func TestRunWithFailedFetch(t *testing.T) {
	r := reader{tables: 5, delay: 10 * time.Millisecond, fail: "tbl3"}
	p := provisioner{}
	w := writer{}

	m := Migration{
		BaseID:      TEST_BASE,
		Reader:      &r,
		Provisioner: &p,
		Writer:      &w,
		Workers:     2,
		Log:         logr.Discard(),
	}

	_, err := m.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, model.KindSource, model.KindOf(err))
	assert.Contains(t, err.Error(), "500")
	assert.False(t, p.called.Load())
	assert.Empty(t, w.filled)
}

func TestRunWithFailedFill(t *testing.T) {
	r := reader{tables: 3}
	p := provisioner{}
	w := writer{fail: "Table 2"}

	m := Migration{
		BaseID:      TEST_BASE,
		Reader:      &r,
		Provisioner: &p,
		Writer:      &w,
		Workers:     1,
		Log:         logr.Discard(),
	}

	_, err := m.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, model.KindDestination, model.KindOf(err))
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestRunCancelled(t *testing.T) {
	r := reader{tables: 3, delay: time.Minute}
	p := provisioner{}
	w := writer{}

	m := Migration{
		BaseID:      TEST_BASE,
		Reader:      &r,
		Provisioner: &p,
		Writer:      &w,
		Workers:     3,
		Log:         logr.Discard(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := m.Run(ctx)

	require.Error(t, err)
	assert.Equal(t, model.KindCancelled, model.KindOf(err))
	assert.False(t, p.called.Load())
}

func TestFetch(t *testing.T) {
	r := reader{tables: 4}

	m := Migration{
		BaseID:  TEST_BASE,
		Reader:  &r,
		Workers: 0,
		Log:     logr.Discard(),
	}

	tables, err := m.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, tables, 4)

	for _, table := range tables {
		assert.True(t, table.Fetched())
		assert.NoError(t, table.Validate())
	}
}
