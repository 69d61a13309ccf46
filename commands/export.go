package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/uhppoted/uhppoted-app-airtable/airtable"
	"github.com/uhppoted/uhppoted-app-airtable/migrate"
	"github.com/uhppoted/uhppoted-app-airtable/model"
)

var unsafe = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]`)

var ExportCmd = Export{
	command: command{
		env:   DEFAULT_ENV,
		debug: false,
	},

	dir: "",
}

type Export struct {
	command
	dir string
}

func (cmd *Export) Name() string {
	return "export"
}

func (cmd *Export) Description() string {
	return "Retrieves every table in an Airtable base and stores each table to a local TSV file"
}

func (cmd *Export) Usage() string {
	return "[--env <file>] --dir <dir>"
}

func (cmd *Export) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] export [options] --dir <dir>\n", APP)
	fmt.Println()
	fmt.Println("  Downloads the tables in the Airtable base to TSV files named for the table")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s --debug export --env .env --dir ./airtable\n", APP)
	fmt.Println()
}

func (cmd *Export) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("export")

	flagset.StringVar(&cmd.dir, "dir", cmd.dir, "Directory for the TSV files")

	return flagset
}

func (cmd *Export) Execute(args ...any) error {
	ctx := args[0].(context.Context)
	options := args[1].(*Options)

	// ... check parameters
	if strings.TrimSpace(cmd.dir) == "" {
		return model.Errorf(model.KindConfig, "export", "--dir is a required option")
	}

	conf, err := cmd.configure(options)
	if err != nil {
		return err
	}

	if err := conf.Airtable.Validate(); err != nil {
		return err
	}

	m := migrate.Migration{
		BaseID:  conf.Airtable.BaseID,
		Reader:  airtable.NewClient(conf.Airtable, nil, cmd.log),
		Workers: runtime.GOMAXPROCS(0),
		Log:     cmd.log,
	}

	tables, err := m.Fetch(ctx)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cmd.dir, 0770); err != nil {
		return fmt.Errorf("unable to create export directory (%w)", err)
	}

	files := map[string]string{}
	for _, table := range tables {
		file := filepath.Join(cmd.dir, filename(table.Name))

		if other, ok := files[strings.ToLower(file)]; ok {
			cmd.warnf("Skipping table %v (file %v already used by table %v)", table.Name, file, other)
			continue
		}

		if err := export(table, file); err != nil {
			return err
		}

		files[strings.ToLower(file)] = table.Name

		cmd.infof("Exported table %v to file %s", table.Name, file)
	}

	return nil
}

// export writes the table to a temporary file which is then renamed, so that
// an existing file is only replaced once the export has succeeded.
func export(table *model.Table, file string) error {
	tmp, err := os.CreateTemp(filepath.Dir(file), "airtable")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := tableToTSV(tmp, table); err != nil {
		return fmt.Errorf("error creating TSV file for table %v (%w)", table.Name, err)
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), file)
}

// filename replaces the characters in a table name that are not safe in a file
// name.
func filename(table string) string {
	name := unsafe.ReplaceAllString(strings.TrimSpace(table), "_")
	if name == "" || name == "." || name == ".." {
		name = "_"
	}

	return name + ".tsv"
}
