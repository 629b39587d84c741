package driven

import (
	"context"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// ConversationQuerier posts conversation detail queries.
type ConversationQuerier interface {
	// QueryConversations returns the conversations of one result page.
	// An empty slice means the page is past the last result.
	QueryConversations(ctx context.Context, query domain.ConversationQuery) ([]*domain.Record, error)
}

// UserDirectory lists contact center users.
type UserDirectory interface {
	// ListUsers returns every user, following pagination.
	ListUsers(ctx context.Context) ([]*domain.Record, error)
}

// RecordSource runs CRM queries and reports.
type RecordSource interface {
	// Query runs a SOQL statement and returns every record, following pagination.
	Query(ctx context.Context, soql string) ([]*domain.Record, error)

	// Report runs a saved report and returns its detail rows.
	Report(ctx context.Context, reportID string) (*domain.Report, error)
}

// DocumentLibrary is a remote site holding document libraries.
type DocumentLibrary interface {
	// FindLibrary looks up a document library by title.
	FindLibrary(ctx context.Context, title string) (domain.Library, bool, error)

	// FindFolder looks up a folder by library-relative path.
	// An empty path resolves to the library root.
	FindFolder(ctx context.Context, lib domain.Library, path string) (domain.Folder, bool, error)

	// ListChildren returns the files and subfolders directly under a folder.
	ListChildren(ctx context.Context, folder domain.Folder) ([]domain.RemoteFile, []domain.Folder, error)

	// Download returns the content of a file.
	Download(ctx context.Context, file domain.RemoteFile) ([]byte, error)

	// Upload writes content under a folder and returns its server-relative URL.
	Upload(ctx context.Context, folder domain.Folder, name string, data []byte) (string, error)
}

// SpreadsheetBackend manages remote workbooks and their sheets.
type SpreadsheetBackend interface {
	// FindWorkbook looks up a workbook by title.
	FindWorkbook(ctx context.Context, title string) (domain.Workbook, bool, error)

	// CreateWorkbook creates an empty workbook.
	CreateWorkbook(ctx context.Context, title string) (domain.Workbook, error)

	// Share grants a recipient writer access.
	Share(ctx context.Context, wb domain.Workbook, email string) error

	// ListSheets returns the sheet titles of a workbook.
	ListSheets(ctx context.Context, wb domain.Workbook) ([]string, error)

	// AddSheet adds an empty sheet.
	AddSheet(ctx context.Context, wb domain.Workbook, sheet string) error

	// ClearSheet removes every value from a sheet.
	ClearSheet(ctx context.Context, wb domain.Workbook, sheet string) error

	// DeleteSheet removes a sheet.
	DeleteSheet(ctx context.Context, wb domain.Workbook, sheet string) error

	// WriteValues writes rows starting at the top-left cell.
	WriteValues(ctx context.Context, wb domain.Workbook, sheet string, rows [][]any) error

	// FormatHeader freezes the first row and adds a filter over the data.
	FormatHeader(ctx context.Context, wb domain.Workbook, sheet string, columns int) error

	// AutoResize fits the width of the first columns to their content.
	AutoResize(ctx context.Context, wb domain.Workbook, sheet string, columns int) error

	// ReadValues returns every populated row of a sheet.
	ReadValues(ctx context.Context, wb domain.Workbook, sheet string) ([][]string, error)
}

// Mailbox searches, reads and sends mail for the authenticated user.
type Mailbox interface {
	// SearchMessageIDs returns the IDs of every message matching query,
	// newest first.
	SearchMessageIDs(ctx context.Context, query string) ([]string, error)

	// GetMessage returns a message with its file-bearing parts.
	GetMessage(ctx context.Context, id string) (domain.MailMessage, error)

	// GetAttachment returns attachment content.
	GetAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error)

	// SendRaw submits an RFC 822 message and returns its ID.
	SendRaw(ctx context.Context, raw []byte) (string, error)
}

// TabularCodec reads and writes table files.
type TabularCodec interface {
	// Load reads a table from a local file, dispatching on extension.
	Load(path, sheet string) (*domain.Table, error)

	// LoadBytes reads a table from in-memory content named by fileName.
	LoadBytes(fileName string, data []byte, sheet string) (*domain.Table, error)

	// IsTabular reports whether a file name has a recognised table extension.
	IsTabular(fileName string) bool

	// EncodeCSV renders a table as UTF-8 CSV with a header row.
	EncodeCSV(t *domain.Table) ([]byte, error)

	// EncodeWorkbook renders tables as a workbook with one sheet per table.
	EncodeWorkbook(tables []domain.NamedTable) ([]byte, error)
}

// Prompter asks the user a question on an interactive terminal.
type Prompter interface {
	Ask(question string) (string, error)
}

// ContactCenter is the conversation analytics and user directory of one
// contact center organisation.
type ContactCenter interface {
	ConversationQuerier
	UserDirectory
}

// VendorFactory builds vendor clients from the current settings.
// Each builder fails with domain.ErrMissingCredential when the settings
// it needs are absent, so callers only pay for the vendor they use.
type VendorFactory interface {
	ContactCenter() (ContactCenter, error)
	RecordSource() (RecordSource, error)
	DocumentLibrary() (DocumentLibrary, error)
	SpreadsheetBackend(ctx context.Context) (SpreadsheetBackend, error)
	Mailbox(ctx context.Context) (Mailbox, error)
}
