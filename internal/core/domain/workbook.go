package domain

import "fmt"

// DefaultSheet is the sheet every new workbook starts with.
const DefaultSheet = "Sheet1"

// Workbook is a remote spreadsheet.
type Workbook struct {
	ID    string
	Title string
}

// URL returns the browser address of the workbook.
func (w Workbook) URL() string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s", w.ID)
}

// PublishOutcome tags the result of publishing a table.
type PublishOutcome string

// Publish outcomes.
const (
	PublishCreated     PublishOutcome = "created"
	PublishOverwritten PublishOutcome = "overwritten"
	PublishUnchanged   PublishOutcome = "unchanged"
	PublishDeclined    PublishOutcome = "declined"
	PublishFailed      PublishOutcome = "failed"
)

// PublishRequest describes a table to write into a workbook sheet.
type PublishRequest struct {
	Table       *Table
	Workbook    string
	Sheet       string
	ShareWith   string
	Interactive bool
}

// PublishResult is the outcome of publishing a table.
type PublishResult struct {
	Outcome     PublishOutcome
	WorkbookURL string
	Err         error
}
