// Package airtable reads the table schema and records of an Airtable base.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-logr/logr"
	"golang.org/x/net/context/ctxhttp"

	"github.com/uhppoted/uhppoted-app-airtable/config"
	"github.com/uhppoted/uhppoted-app-airtable/model"
)

const (
	schemaEndpoint  = "/v0/meta/bases/{baseID}/tables"
	recordsEndpoint = "/v0/{baseID}/{tableID}"
)

// Client reads table schemas and records from the Airtable REST API.
type Client struct {
	url    string
	apiKey string
	client *http.Client
	log    logr.Logger
}

// NewClient returns an Airtable client for the configured API. A nil
// http.Client uses http.DefaultClient.
func NewClient(conf config.Airtable, client *http.Client, log logr.Logger) *Client {
	if client == nil {
		client = http.DefaultClient
	}

	return &Client{
		url:    strings.TrimSuffix(conf.URL, "/"),
		apiKey: conf.APIKey,
		client: client,
		log:    log.WithName("airtable"),
	}
}

// DiscoverTables retrieves the schema of every table in the base. The returned
// tables have their columns in the field order returned by Airtable and no
// records.
func (c *Client) DiscoverTables(ctx context.Context, baseID string) ([]*model.Table, error) {
	var response schema

	uri := c.endpoint(schemaEndpoint, map[string]string{"baseID": baseID})
	if err := c.get(ctx, "discover tables", uri, nil, &response); err != nil {
		return nil, err
	}

	tables := []*model.Table{}
	for _, t := range response.Tables {
		columns := make([]string, 0, len(t.Fields))
		for _, field := range t.Fields {
			columns = append(columns, field.Name)
		}

		tables = append(tables, &model.Table{
			SourceID: t.ID,
			Name:     t.Name,
			Columns:  columns,
		})
	}

	c.log.V(1).Info("discovered tables", "base", baseID, "tables", len(tables))

	return tables, nil
}

// FetchRecords pages through the table records, following the offset cursor
// until a page is returned without one. The table records are only updated
// once every page has been retrieved and a table can only be fetched once.
func (c *Client) FetchRecords(ctx context.Context, baseID string, table *model.Table) error {
	op := fmt.Sprintf("fetch table %v", table.Name)

	if table.Fetched() {
		return model.Errorf(model.KindSource, op, "records already fetched")
	}

	uri := c.endpoint(recordsEndpoint, map[string]string{"baseID": baseID, "tableID": table.SourceID})
	records := []model.Record{}
	offset := ""
	pages := 0

	for {
		var response page

		query := url.Values{}
		if offset != "" {
			query.Set("offset", offset)
		}

		if err := c.get(ctx, op, uri, query, &response); err != nil {
			return err
		}

		for _, r := range response.Records {
			records = append(records, project(table.Columns, r.Fields))
		}

		pages++
		c.log.V(1).Info("fetched page", "table", table.Name, "page", pages, "records", len(response.Records))

		if offset = response.Offset; offset == "" {
			break
		}
	}

	table.Records = records

	return nil
}

// project maps the record fields onto the table columns. Fields missing from
// a (sparse) Airtable record are nil.
func project(columns []string, fields map[string]any) model.Record {
	values := make([]any, len(columns))
	for i, column := range columns {
		values[i] = fields[column]
	}

	return model.Record{
		Values: values,
	}
}

func (c *Client) endpoint(path string, ids map[string]string) string {
	for k, v := range ids {
		path = strings.ReplaceAll(path, fmt.Sprintf("{%s}", k), url.PathEscape(v))
	}

	return c.url + path
}

func (c *Client) get(ctx context.Context, op string, uri string, query url.Values, reply any) error {
	if len(query) > 0 {
		uri = uri + "?" + query.Encode()
	}

	if err := ctx.Err(); err != nil {
		return model.Wrap(model.KindSource, op, err)
	}

	rq, err := http.NewRequest(http.MethodGet, uri, nil)
	if err != nil {
		return model.Wrap(model.KindSource, op, err)
	}

	rq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	rq.Header.Set("Accept", "application/json")

	response, err := ctxhttp.Do(ctx, c.client, rq)
	if err != nil {
		return model.Wrap(model.KindSource, op, err)
	}

	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return model.Wrap(model.KindSource, op, err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return model.Errorf(model.KindSource, op, "%v %v: %v", response.StatusCode, http.StatusText(response.StatusCode), describe(body))
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	if err := decoder.Decode(reply); err != nil {
		return model.Errorf(model.KindSource, op, "invalid response (%v)", err)
	}

	return nil
}

func describe(body []byte) string {
	var e errorResponse

	if err := json.Unmarshal(body, &e); err == nil && e.Error.Type != "" {
		if e.Error.Message != "" {
			return fmt.Sprintf("%v - %v", e.Error.Type, e.Error.Message)
		}

		return e.Error.Type
	}

	return strings.TrimSpace(string(body))
}
