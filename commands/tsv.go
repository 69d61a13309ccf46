package commands

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/uhppoted/uhppoted-app-airtable/model"
)

func tableToTSV(f io.Writer, table *model.Table) error {
	if len(table.Columns) == 0 {
		return fmt.Errorf("table %v has no columns", table.Name)
	}

	if err := table.Validate(); err != nil {
		return err
	}

	w := csv.NewWriter(f)
	w.Comma = '\t'

	if err := w.Write(table.Columns); err != nil {
		return err
	}

	for _, record := range table.Records {
		if err := w.Write(record.Strings()); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}
