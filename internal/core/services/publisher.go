package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
	"github.com/custodia-labs/tabula/internal/logger"
)

// Ensure PublisherService implements the interface.
var _ driving.PublisherService = (*PublisherService)(nil)

// shareInvitesPerSecond paces share invitations below the Drive quota.
const shareInvitesPerSecond = 4

var recipientSeparator = regexp.MustCompile(`\s*,\s*`)

// PublisherService writes tables into spreadsheet workbooks.
type PublisherService struct {
	backend     driven.SpreadsheetBackend
	prompter    driven.Prompter
	shareLimits *rate.Limiter
}

// NewPublisherService creates a publisher. prompter is consulted only for
// interactive publishes and may be nil otherwise.
func NewPublisherService(backend driven.SpreadsheetBackend, prompter driven.Prompter) *PublisherService {
	return &PublisherService{
		backend:     backend,
		prompter:    prompter,
		shareLimits: rate.NewLimiter(rate.Every(time.Second/shareInvitesPerSecond), 1),
	}
}

// SplitRecipients splits a comma-separated address list, dropping blanks.
func SplitRecipients(list string) []string {
	var out []string
	for _, r := range recipientSeparator.Split(strings.TrimSpace(list), -1) {
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}

// Publish writes req.Table into req.Sheet of req.Workbook.
//
// A missing workbook is created, shared and has its default sheet removed.
// A missing sheet is added. An existing sheet is overwritten, or when
// Interactive is set, only after the user answers "yes".
func (s *PublisherService) Publish(ctx context.Context, req domain.PublishRequest) domain.PublishResult {
	if req.Table == nil || req.Workbook == "" || req.Sheet == "" {
		return failed(domain.Workbook{}, fmt.Errorf("%w: table, workbook and sheet are required", domain.ErrValidation))
	}

	wb, found, err := s.backend.FindWorkbook(ctx, req.Workbook)
	if err != nil {
		return failed(wb, err)
	}
	if !found {
		return s.publishNewWorkbook(ctx, req)
	}

	sheets, err := s.backend.ListSheets(ctx, wb)
	if err != nil {
		return failed(wb, err)
	}
	if !contains(sheets, req.Sheet) {
		if err := s.backend.AddSheet(ctx, wb, req.Sheet); err != nil {
			return failed(wb, err)
		}
		if err := s.write(ctx, wb, req); err != nil {
			return failed(wb, err)
		}
		logger.Status("%s has been created!", req.Sheet)
		return done(wb, domain.PublishCreated)
	}

	if !req.Interactive {
		logger.Status("Interactive sheet overwrite check skipped.")
		return s.overwrite(ctx, wb, req)
	}

	answer, err := s.ask(fmt.Sprintf("%s already exists in %s, would you like to over-write the existing sheet? ", req.Sheet, req.Workbook))
	if err != nil {
		return failed(wb, err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "yes":
		return s.overwrite(ctx, wb, req)
	case "no":
		logger.Status("%s was not over written.", req.Sheet)
		return done(wb, domain.PublishUnchanged)
	default:
		logger.Status(`Please answer "Yes" or "No" and try again.`)
		return domain.PublishResult{Outcome: domain.PublishDeclined, WorkbookURL: wb.URL()}
	}
}

func (s *PublisherService) ask(question string) (string, error) {
	if s.prompter == nil {
		return "", fmt.Errorf("%w: interactive publish needs a terminal", domain.ErrValidation)
	}
	return s.prompter.Ask(question)
}

func (s *PublisherService) publishNewWorkbook(ctx context.Context, req domain.PublishRequest) domain.PublishResult {
	wb, err := s.backend.CreateWorkbook(ctx, req.Workbook)
	if err != nil {
		return failed(wb, err)
	}
	for _, email := range SplitRecipients(req.ShareWith) {
		if err := s.shareLimits.Wait(ctx); err != nil {
			return failed(wb, err)
		}
		if err := s.backend.Share(ctx, wb, email); err != nil {
			return failed(wb, fmt.Errorf("share with %s: %w", email, err))
		}
		logger.Status("Shared with user: %s", email)
	}

	if req.Sheet != domain.DefaultSheet {
		if err := s.backend.AddSheet(ctx, wb, req.Sheet); err != nil {
			return failed(wb, err)
		}
	}
	if err := s.write(ctx, wb, req); err != nil {
		return failed(wb, err)
	}
	if req.Sheet != domain.DefaultSheet {
		if err := s.backend.DeleteSheet(ctx, wb, domain.DefaultSheet); err != nil {
			return failed(wb, err)
		}
	}
	logger.Status("%s has been created in new workbook %s!", req.Sheet, req.Workbook)
	return done(wb, domain.PublishCreated)
}

func (s *PublisherService) overwrite(ctx context.Context, wb domain.Workbook, req domain.PublishRequest) domain.PublishResult {
	if err := s.backend.ClearSheet(ctx, wb, req.Sheet); err != nil {
		return failed(wb, err)
	}
	if err := s.write(ctx, wb, req); err != nil {
		return failed(wb, err)
	}
	logger.Status("%s has been updated!", req.Sheet)
	return done(wb, domain.PublishOverwritten)
}

// write puts the header and rows into the sheet, then freezes the header
// and fits the column widths.
func (s *PublisherService) write(ctx context.Context, wb domain.Workbook, req domain.PublishRequest) error {
	if err := s.backend.WriteValues(ctx, wb, req.Sheet, sheetValues(req.Table)); err != nil {
		return err
	}
	width := req.Table.Width()
	if err := s.backend.FormatHeader(ctx, wb, req.Sheet, width); err != nil {
		return err
	}
	return s.backend.AutoResize(ctx, wb, req.Sheet, width+1)
}

// sheetValues renders a table as a header row followed by its data rows.
func sheetValues(t *domain.Table) [][]any {
	rows := make([][]any, 0, t.Len()+1)
	header := make([]any, t.Width())
	for i, c := range t.Columns() {
		header[i] = c
	}
	rows = append(rows, header)
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		for j, v := range row {
			switch v.(type) {
			case string, float64, int64, int, bool:
			default:
				row[j] = domain.FormatValue(v)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func done(wb domain.Workbook, outcome domain.PublishOutcome) domain.PublishResult {
	logger.Status("%s", wb.URL())
	return domain.PublishResult{Outcome: outcome, WorkbookURL: wb.URL()}
}

func failed(wb domain.Workbook, err error) domain.PublishResult {
	res := domain.PublishResult{Outcome: domain.PublishFailed, Err: err}
	if wb.ID != "" {
		res.WorkbookURL = wb.URL()
	}
	return res
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ReadSheet returns a sheet as a table with the first row as header.
// Failures print a diagnostic and yield an empty table.
func (s *PublisherService) ReadSheet(ctx context.Context, workbook, sheet string) (*domain.Table, error) {
	wb, found, err := s.backend.FindWorkbook(ctx, workbook)
	if err != nil {
		logger.Status("Could not open workbook '%s': %v", workbook, err)
		return domain.NewTable(), nil
	}
	if !found {
		logger.Status("Workbook '%s' was not found.", workbook)
		return domain.NewTable(), nil
	}
	values, err := s.backend.ReadValues(ctx, wb, sheet)
	if err != nil {
		logger.Status("Could not read sheet '%s' of '%s': %v", sheet, workbook, err)
		return domain.NewTable(), nil
	}
	if len(values) == 0 {
		return domain.NewTable(), nil
	}

	t := domain.NewTable(values[0]...)
	for _, v := range values[1:] {
		row := make([]any, t.Width())
		for j := range row {
			if j < len(v) {
				row[j] = v[j]
			}
		}
		if err := t.AppendRow(row...); err != nil {
			return nil, err
		}
	}
	return t, nil
}
