package commands

import (
	"flag"
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/uhppoted/uhppoted-app-airtable/config"
)

const APP = "uhppoted-app-airtable"

var VERSION = "v0.8.11"

type Options struct {
	Debug bool
	Log   logr.Logger
}

type command struct {
	env         string
	credentials string
	debug       bool
	log         logr.Logger
}

func (cmd *command) flagset(name string) *flag.FlagSet {
	flagset := flag.NewFlagSet(name, flag.ExitOnError)

	flagset.StringVar(&cmd.env, "env", cmd.env, "dotenv file with the Airtable and Google settings")

	return flagset
}

// configure loads the settings for a command from the environment and the
// dotenv file. A --credentials option replaces any credentials file from the
// environment but not the inline GOOGLE_CREDENTIALS payload.
func (cmd *command) configure(options *Options) (*config.Config, error) {
	cmd.debug = options.Debug
	cmd.log = options.Log.WithValues("env", cmd.env)

	conf, err := config.Load(cmd.env)
	if err != nil {
		return nil, err
	}

	if credentials := strings.TrimSpace(cmd.credentials); credentials != "" {
		conf.Google.CredentialsFile = credentials
	} else if conf.Google.Credentials == "" && conf.Google.CredentialsFile == "" {
		conf.Google.CredentialsFile = DEFAULT_CREDENTIALS
	}

	cmd.debugf("configuration %v", conf)

	return conf, nil
}

func (cmd *command) debugf(format string, args ...any) {
	if cmd.debug {
		cmd.log.V(1).Info(fmt.Sprintf(format, args...))
	}
}

func (cmd *command) infof(format string, args ...any) {
	cmd.log.Info(fmt.Sprintf(format, args...))
}

func (cmd *command) warnf(format string, args ...any) {
	cmd.log.Error(nil, fmt.Sprintf(format, args...))
}

func helpOptions(flagset *flag.FlagSet) {
	count := 0
	flag.VisitAll(func(f *flag.Flag) {
		count++
	})

	flagset.VisitAll(func(f *flag.Flag) {
		fmt.Printf("    --%-13s %s\n", f.Name, f.Usage)
	})

	if count > 0 {
		fmt.Println()
		fmt.Println("  Options:")
		flag.VisitAll(func(f *flag.Flag) {
			fmt.Printf("    --%-13s %s\n", f.Name, f.Usage)
		})
	}
}
