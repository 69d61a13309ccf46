package spreadsheet

import (
	"fmt"
	"strings"
)

// Column returns the A1 column letters for a 0-based column index i.e. 0 is
// 'A', 25 is 'Z', 26 is 'AA' and 701 is 'ZZ'. Negative indices return "".
func Column(index int) string {
	if index < 0 {
		return ""
	}

	letters := []byte{}
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		letters = append([]byte{byte('A' + (n-1)%26)}, letters...)
	}

	return string(letters)
}

// HeaderRange returns the single row range for a header with the given number
// of columns e.g. A1:B1.
func HeaderRange(columns int) string {
	return fmt.Sprintf("A1:%v1", Column(columns-1))
}

// BodyRange returns the range for the records below the header row, starting
// at row 2 and ending at row records+2 e.g. A2:B5 for 2 columns and 3 records.
func BodyRange(columns, records int) string {
	return fmt.Sprintf("A2:%v%v", Column(columns-1), records+2)
}

// qualify prefixes an area with the quoted sheet title e.g. 'My Table'!A1:B1.
func qualify(sheet, area string) string {
	return fmt.Sprintf("'%v'!%v", strings.ReplaceAll(sheet, "'", "''"), area)
}

// URL returns the browser URL for a spreadsheet.
func URL(spreadsheetID string) string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%v", spreadsheetID)
}
