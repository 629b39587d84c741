package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
)

// Ensure Toolkit implements the interface.
var _ driving.Toolkit = (*Toolkit)(nil)

// Toolkit builds vendor-backed services from a VendorFactory.
type Toolkit struct {
	vendors  driven.VendorFactory
	codec    driven.TabularCodec
	settings driving.SettingsService
	prompter driven.Prompter
}

// NewToolkit creates a toolkit. prompter backs interactive publishing and
// may be nil when no terminal is attached.
func NewToolkit(
	vendors driven.VendorFactory,
	codec driven.TabularCodec,
	settings driving.SettingsService,
	prompter driven.Prompter,
) *Toolkit {
	return &Toolkit{vendors: vendors, codec: codec, settings: settings, prompter: prompter}
}

// Conversations returns a conversation service bound to the contact center.
func (t *Toolkit) Conversations() (driving.ConversationService, error) {
	cc, err := t.vendors.ContactCenter()
	if err != nil {
		return nil, fmt.Errorf("genesys: %w", err)
	}
	return NewConversationService(cc, cc), nil
}

// Records returns a record service bound to the CRM.
func (t *Toolkit) Records() (driving.RecordService, error) {
	src, err := t.vendors.RecordSource()
	if err != nil {
		return nil, fmt.Errorf("salesforce: %w", err)
	}
	return NewRecordService(src), nil
}

// Explorer returns an explorer bound to the document site.
func (t *Toolkit) Explorer() (driving.ExplorerService, error) {
	lib, err := t.vendors.DocumentLibrary()
	if err != nil {
		return nil, fmt.Errorf("sharepoint: %w", err)
	}
	return NewExplorerService(lib, t.codec, t.settings.Get().DownloadDir), nil
}

// Publisher returns a publisher bound to the spreadsheet backend.
func (t *Toolkit) Publisher(ctx context.Context) (driving.PublisherService, error) {
	backend, err := t.vendors.SpreadsheetBackend(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets: %w", err)
	}
	return NewPublisherService(backend, t.prompter), nil
}

// Mail returns a mail service bound to the authorised mailbox.
func (t *Toolkit) Mail(ctx context.Context) (driving.MailService, error) {
	mailbox, err := t.vendors.Mailbox(ctx)
	if err != nil {
		return nil, fmt.Errorf("gmail: %w", err)
	}
	s := t.settings.Get()
	return NewMailService(mailbox, t.codec, s.Google.Sender, s.DownloadDir), nil
}

