package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

var (
	publishWorkbook    string
	publishSheet       string
	publishInputSheet  string
	publishShare       string
	publishInteractive bool

	readWorkbook string
	readSheet    string
	readOut      string
)

var sheetsCmd = &cobra.Command{
	Use:   "sheets",
	Short: "Publish tables to Google Sheets",
}

var sheetsPublishCmd = &cobra.Command{
	Use:   "publish <file>",
	Short: "Write a table into a workbook sheet",
	Long: `Write a local CSV, TSV or Excel table into a Google Sheets workbook.

A missing workbook is created and shared with --share (a comma-separated
list of addresses). A missing sheet is added. An existing sheet is
overwritten; with --interactive you are asked first.

Examples:
  tabula sheets publish details.csv --workbook "Weekly Calls" --sheet "2024-05-01"
  tabula sheets publish details.xlsx --workbook "Weekly Calls" --sheet Summary \
    --share "ops@example.com,lead@example.com" --interactive`,
	Args: cobra.ExactArgs(1),
	RunE: runSheetsPublish,
}

var sheetsReadCmd = &cobra.Command{
	Use:   "read",
	Short: "Read a workbook sheet as a table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if toolkit == nil {
			return errToolkitUnavailable
		}
		svc, err := toolkit.Publisher(cmd.Context())
		if err != nil {
			return err
		}
		t, err := svc.ReadSheet(cmd.Context(), readWorkbook, readSheet)
		if err != nil {
			return err
		}
		return emitTable(cmd, t, readOut)
	},
}

func init() {
	p := sheetsPublishCmd.Flags()
	p.StringVarP(&publishWorkbook, "workbook", "w", "", "workbook title")
	p.StringVarP(&publishSheet, "sheet", "s", "", "sheet to write")
	p.StringVar(&publishInputSheet, "input-sheet", "", "worksheet of a workbook input")
	p.StringVar(&publishShare, "share", "", "comma-separated addresses to share a new workbook with")
	p.BoolVarP(&publishInteractive, "interactive", "i", false, "ask before overwriting an existing sheet")
	_ = sheetsPublishCmd.MarkFlagRequired("workbook")
	_ = sheetsPublishCmd.MarkFlagRequired("sheet")

	r := sheetsReadCmd.Flags()
	r.StringVarP(&readWorkbook, "workbook", "w", "", "workbook title")
	r.StringVarP(&readSheet, "sheet", "s", "", "sheet to read")
	r.StringVarP(&readOut, "out", "o", "", "write the result to a file")
	_ = sheetsReadCmd.MarkFlagRequired("workbook")
	_ = sheetsReadCmd.MarkFlagRequired("sheet")

	sheetsCmd.AddCommand(sheetsPublishCmd)
	sheetsCmd.AddCommand(sheetsReadCmd)
	rootCmd.AddCommand(sheetsCmd)
}

func runSheetsPublish(cmd *cobra.Command, args []string) error {
	if toolkit == nil {
		return errToolkitUnavailable
	}
	t, err := loadTable(args[0], publishInputSheet)
	if err != nil {
		return err
	}
	svc, err := toolkit.Publisher(cmd.Context())
	if err != nil {
		return err
	}

	result := svc.Publish(cmd.Context(), domain.PublishRequest{
		Table:       t,
		Workbook:    publishWorkbook,
		Sheet:       publishSheet,
		ShareWith:   strings.TrimSpace(publishShare),
		Interactive: publishInteractive,
	})
	if result.Err != nil {
		return fmt.Errorf("publish %s: %w", publishSheet, result.Err)
	}

	style := successStyle
	if result.Outcome == domain.PublishDeclined || result.Outcome == domain.PublishUnchanged {
		style = mutedStyle
	}
	cmd.Println(style.Render(fmt.Sprintf("%s: %s", publishSheet, result.Outcome)))
	if result.WorkbookURL != "" {
		cmd.Println(result.WorkbookURL)
	}
	return nil
}
