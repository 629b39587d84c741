package driving

import "context"

// Toolkit builds the vendor-backed services on demand. A builder fails
// when the vendor's settings are incomplete.
type Toolkit interface {
	Conversations() (ConversationService, error)
	Records() (RecordService, error)
	Explorer() (ExplorerService, error)
	Publisher(ctx context.Context) (PublisherService, error)
	Mail(ctx context.Context) (MailService, error)
}
