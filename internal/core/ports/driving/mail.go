package driving

import (
	"context"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// MailService fetches report attachments and sends tables by mail.
type MailService interface {
	// FetchReport loads the first table attached to the newest matching message.
	FetchReport(ctx context.Context, req domain.FetchRequest) (*domain.Table, error)

	// Send mails tables and local files as attachments.
	Send(ctx context.Context, req domain.SendRequest) domain.SendResult
}
