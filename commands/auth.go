package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2/google"

	"github.com/uhppoted/uhppoted-app-airtable/config"
	"github.com/uhppoted/uhppoted-app-airtable/model"
	"github.com/uhppoted/uhppoted-app-airtable/spreadsheet"
)

// authorize returns an HTTP client authenticated as the service account in the
// Google credentials, scoped for both Sheets and Drive.
func authorize(ctx context.Context, conf config.Google) (*http.Client, error) {
	b, err := credentials(conf)
	if err != nil {
		return nil, model.Wrap(model.KindConfig, "authorize", err)
	}

	jwt, err := google.JWTConfigFromJSON(b, spreadsheet.SHEETS, spreadsheet.DRIVE)
	if err != nil {
		return nil, model.Errorf(model.KindConfig, "authorize", "invalid service account credentials (%v)", err)
	}

	return jwt.Client(ctx), nil
}

func credentials(conf config.Google) ([]byte, error) {
	if conf.Credentials != "" {
		return []byte(conf.Credentials), nil
	}

	b, err := os.ReadFile(conf.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("error reading credentials file (%w)", err)
	}

	return b, nil
}
