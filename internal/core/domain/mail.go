package domain

// DefaultInboxQuery is the mailbox search used when none is given.
const DefaultInboxQuery = "subject: Super Unique Subject"

// MailMessage is a fetched message with its file-bearing parts.
type MailMessage struct {
	ID      string
	Subject string
	Date    string
	Parts   []MailPart
}

// MailPart is a message part that carries a file.
// Data holds inline content; otherwise AttachmentID names the content to fetch.
type MailPart struct {
	Filename     string
	MimeType     string
	Data         []byte
	AttachmentID string
}

// Attachment is a file to attach to an outgoing message.
type Attachment struct {
	Filename string
	Data     []byte
}

// AttachmentSource is either a table or a local file path.
type AttachmentSource struct {
	Table *Table
	Path  string
}

// FetchRequest selects the newest message matching Query and the directory
// its attachments are saved to.
type FetchRequest struct {
	Query           string
	StoreDir        string
	Sheet           string
	DeleteAfterLoad bool
}

// SendRequest describes an outgoing message. Titles name the attachments
// and must have the same length as Attachments.
type SendRequest struct {
	To          string
	Subject     string
	Body        string
	Attachments []AttachmentSource
	Titles      []string
}

// SendResult is the outcome of sending a message.
type SendResult struct {
	Sent      bool
	MessageID string
	Err       error
}
