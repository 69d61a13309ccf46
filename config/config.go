// Package config loads the Airtable and Google Sheets settings for a migration
// from the environment and an optional dotenv file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/uhppoted/uhppoted-app-airtable/model"
)

const (
	DefaultAirtableURL      = "https://api.airtable.com"
	DefaultSpreadsheetTitle = "My Spreadsheet"
)

// Config holds the settings for a migration.
type Config struct {
	Airtable Airtable
	Google   Google
}

// Airtable holds the Airtable API endpoint, key and base.
type Airtable struct {
	URL    string
	APIKey string
	BaseID string
}

// Google holds the service account credentials either as the JSON payload or
// as the path to a JSON file. The payload takes precedence.
type Google struct {
	Credentials     string
	CredentialsFile string
	Title           string
}

// Load builds a Config from the process environment, falling back to the
// values in the dotenv file (if any). A missing dotenv file is not an error.
func Load(file string) (*Config, error) {
	env := map[string]string{}

	if strings.TrimSpace(file) != "" {
		if m, err := godotenv.Read(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, model.Errorf(model.KindConfig, "load", "error reading %v (%v)", file, err)
		} else if err == nil {
			env = m
		}
	}

	lookup := func(key, defval string) string {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}

		if v := strings.TrimSpace(env[key]); v != "" {
			return v
		}

		return defval
	}

	return &Config{
		Airtable: Airtable{
			URL:    strings.TrimSuffix(lookup("AIRTABLE_URL", DefaultAirtableURL), "/"),
			APIKey: lookup("AIRTABLE_API_KEY", ""),
			BaseID: lookup("AIRTABLE_BASE_ID", ""),
		},
		Google: Google{
			Credentials:     lookup("GOOGLE_CREDENTIALS", ""),
			CredentialsFile: lookup("GOOGLE_CREDENTIALS_FILE", ""),
			Title:           lookup("SPREADSHEET_TITLE", DefaultSpreadsheetTitle),
		},
	}, nil
}

// Validate checks the settings required to read from Airtable.
func (a Airtable) Validate() error {
	if a.APIKey == "" {
		return model.Errorf(model.KindConfig, "validate", "AIRTABLE_API_KEY is not set")
	}

	if a.BaseID == "" {
		return model.Errorf(model.KindConfig, "validate", "AIRTABLE_BASE_ID is not set")
	}

	if a.URL == "" {
		return model.Errorf(model.KindConfig, "validate", "AIRTABLE_URL is not set")
	}

	return nil
}

// Validate checks the settings required to write to Google Sheets.
func (g Google) Validate() error {
	if g.Credentials == "" && g.CredentialsFile == "" {
		return model.Errorf(model.KindConfig, "validate", "one of GOOGLE_CREDENTIALS or GOOGLE_CREDENTIALS_FILE is required")
	}

	return nil
}

// Validate checks both the Airtable and the Google settings.
func (c Config) Validate() error {
	if err := c.Airtable.Validate(); err != nil {
		return err
	}

	return c.Google.Validate()
}

// String returns the settings with the API key redacted.
func (c Config) String() string {
	credentials := c.Google.CredentialsFile
	if c.Google.Credentials != "" {
		credentials = "<inline>"
	}

	return fmt.Sprintf("airtable:%v  base:%v  key:%v  credentials:%v  title:%q",
		c.Airtable.URL,
		c.Airtable.BaseID,
		redact(c.Airtable.APIKey),
		credentials,
		c.Google.Title)
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}

	return "********"
}
