// Copyright 2023 uhppoted@twyst.co.za. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

/*
Package uhppoted-app-airtable migrates the tables in an Airtable base to a Google Sheets spreadsheet.

uhppoted-app-airtable is a one-shot command line utility: it discovers the tables in the base, fetches the
records of every table concurrently and then creates a new spreadsheet with one worksheet per table, shared
with anyone who has the link.

uhppoted-app-airtable supports the following commands:

  - migrate, to copy every table in an Airtable base to a new Google Sheets spreadsheet
  - export, to download every table in an Airtable base to a set of TSV files
  - version, to display the application version
*/
package airtable
