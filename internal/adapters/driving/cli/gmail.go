package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

var (
	fetchQuery  string
	fetchDir    string
	fetchSheet  string
	fetchDelete bool
	fetchOut    string

	sendTo      string
	sendSubject string
	sendBody    string
	sendAttach  []string
	sendTitles  []string
)

var gmailCmd = &cobra.Command{
	Use:   "gmail",
	Short: "Fetch report attachments and send files by mail",
}

var gmailFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Load the table attached to the newest matching message",
	Long: `Search the mailbox, save every attachment of the newest matching
message and load the first CSV, TSV, Excel or ZIP file among them.

Examples:
  tabula gmail fetch
  tabula gmail fetch --query "from:reports@example.com has:attachment" --out report.csv
  tabula gmail fetch --dir ./inbox --delete`,
	Args: cobra.NoArgs,
	RunE: runGmailFetch,
}

var gmailSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send local files as attachments",
	Long: `Send a message from google.sender with local files attached.

Examples:
  tabula gmail send --to ops@example.com --subject "Weekly calls" \
    --body "Attached." --attach details.csv --attach summary.xlsx`,
	Args: cobra.NoArgs,
	RunE: runGmailSend,
}

func init() {
	f := gmailFetchCmd.Flags()
	f.StringVarP(&fetchQuery, "query", "q", domain.DefaultInboxQuery, "mailbox search")
	f.StringVarP(&fetchDir, "dir", "d", "", "directory for saved attachments (default download_dir)")
	f.StringVar(&fetchSheet, "sheet", "", "worksheet of a workbook attachment")
	f.BoolVar(&fetchDelete, "delete", false, "delete the saved file after loading it")
	f.StringVarP(&fetchOut, "out", "o", "", "write the result to a file")

	s := gmailSendCmd.Flags()
	s.StringVar(&sendTo, "to", "", "recipient address")
	s.StringVar(&sendSubject, "subject", "", "message subject")
	s.StringVar(&sendBody, "body", "", "plain-text message body")
	s.StringArrayVarP(&sendAttach, "attach", "a", nil, "file to attach, repeatable")
	s.StringArrayVar(&sendTitles, "title", nil, "attachment title, repeatable (default the file name)")
	_ = gmailSendCmd.MarkFlagRequired("to")

	gmailCmd.AddCommand(gmailFetchCmd)
	gmailCmd.AddCommand(gmailSendCmd)
	rootCmd.AddCommand(gmailCmd)
}

func runGmailFetch(cmd *cobra.Command, _ []string) error {
	if toolkit == nil {
		return errToolkitUnavailable
	}
	svc, err := toolkit.Mail(cmd.Context())
	if err != nil {
		return err
	}
	t, err := svc.FetchReport(cmd.Context(), domain.FetchRequest{
		Query:           fetchQuery,
		StoreDir:        fetchDir,
		Sheet:           fetchSheet,
		DeleteAfterLoad: fetchDelete,
	})
	if err != nil {
		return err
	}
	return emitTable(cmd, t, fetchOut)
}

func runGmailSend(cmd *cobra.Command, _ []string) error {
	if toolkit == nil {
		return errToolkitUnavailable
	}
	titles, err := attachmentTitles(sendAttach, sendTitles)
	if err != nil {
		return err
	}
	svc, err := toolkit.Mail(cmd.Context())
	if err != nil {
		return err
	}

	sources := make([]domain.AttachmentSource, len(sendAttach))
	for i, path := range sendAttach {
		sources[i] = domain.AttachmentSource{Path: path}
	}
	result := svc.Send(cmd.Context(), domain.SendRequest{
		To:          sendTo,
		Subject:     sendSubject,
		Body:        sendBody,
		Attachments: sources,
		Titles:      titles,
	})
	if result.Err != nil {
		return fmt.Errorf("send to %s: %w", sendTo, result.Err)
	}
	cmd.Println(successStyle.Render("Sent. Message Id: " + result.MessageID))
	return nil
}

// attachmentTitles pairs each attachment with a title, defaulting to the
// file's base name when no titles are given.
func attachmentTitles(paths, titles []string) ([]string, error) {
	if len(titles) == 0 {
		out := make([]string, len(paths))
		for i, p := range paths {
			out[i] = filepath.Base(p)
		}
		return out, nil
	}
	if len(titles) != len(paths) {
		return nil, fmt.Errorf("%w: %d --title values for %d --attach files", domain.ErrValidation, len(titles), len(paths))
	}
	return titles, nil
}
