package commands

import (
	"context"
	"flag"
	"fmt"
	"runtime"
	"strings"

	"google.golang.org/api/option"

	"github.com/uhppoted/uhppoted-app-airtable/airtable"
	"github.com/uhppoted/uhppoted-app-airtable/migrate"
	"github.com/uhppoted/uhppoted-app-airtable/spreadsheet"
)

var MigrateCmd = Migrate{
	command: command{
		env:         DEFAULT_ENV,
		credentials: "",
		debug:       false,
	},

	title: "",
}

type Migrate struct {
	command
	title string
}

func (cmd *Migrate) Name() string {
	return "migrate"
}

func (cmd *Migrate) Description() string {
	return "Copies every table in an Airtable base to a new Google Sheets spreadsheet"
}

func (cmd *Migrate) Usage() string {
	return "[--env <file>] [--credentials <file>] [--title <title>]"
}

func (cmd *Migrate) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] migrate [options]\n", APP)
	fmt.Println()
	fmt.Println("  Copies the tables in the Airtable base to worksheets in a new Google Sheets spreadsheet")
	fmt.Println("  that is shared with anyone who has the link.")
	fmt.Println()
	fmt.Println("  The Airtable API key and base ID are read from the AIRTABLE_API_KEY and AIRTABLE_BASE_ID")
	fmt.Println("  environment variables, falling back to the dotenv file.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s migrate\n", APP)
	fmt.Printf("    %s --debug migrate --env .env --credentials \"credentials.json\" --title \"Inventory\"\n", APP)
	fmt.Println()
}

func (cmd *Migrate) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("migrate")

	flagset.StringVar(&cmd.credentials, "credentials", cmd.credentials, "Path for the Google service account 'credentials.json' file")
	flagset.StringVar(&cmd.title, "title", cmd.title, "Spreadsheet title. Defaults to SPREADSHEET_TITLE or 'My Spreadsheet'")

	return flagset
}

func (cmd *Migrate) Execute(args ...any) error {
	ctx := args[0].(context.Context)
	options := args[1].(*Options)

	conf, err := cmd.configure(options)
	if err != nil {
		return err
	}

	if title := strings.TrimSpace(cmd.title); title != "" {
		conf.Google.Title = title
	}

	if err := conf.Validate(); err != nil {
		return err
	}

	client, err := authorize(ctx, conf.Google)
	if err != nil {
		return err
	}

	google, err := spreadsheet.NewGoogle(ctx, option.WithHTTPClient(client))
	if err != nil {
		return err
	}

	m := migrate.Migration{
		BaseID:      conf.Airtable.BaseID,
		Reader:      airtable.NewClient(conf.Airtable, nil, cmd.log),
		Provisioner: spreadsheet.NewProvisioner(google, conf.Google.Title, cmd.log),
		Writer:      spreadsheet.NewWriter(google, cmd.log),
		Workers:     runtime.GOMAXPROCS(0),
		Log:         cmd.log,
	}

	id, err := m.Run(ctx)
	if err != nil {
		return err
	}

	cmd.infof("Spreadsheet url: %v", spreadsheet.URL(id))

	return nil
}
