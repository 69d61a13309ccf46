package commands

const (
	_etc = "/usr/local/etc/uhppoted"

	DEFAULT_ENV         = _etc + "/airtable/.env"
	DEFAULT_CREDENTIALS = _etc + "/airtable/.google/credentials.json"
)
