package cli

import (
	"github.com/spf13/cobra"
)

var (
	cleanIDsColumn string
	cleanIDsSheet  string
	cleanIDsOut    string
)

var cleanIDsCmd = &cobra.Command{
	Use:   "clean-ids <file>",
	Short: "Keep only rows whose column holds a conversation ID",
	Long: `Read a table and drop every row whose ID column does not hold a
conversation ID. Anything up to the last "/" is stripped, so pasted
conversation URLs reduce to their ID. Rows that still do not hold a
lowercase UUID, such as "Pending" or blank cells, are dropped.

Examples:
  tabula clean-ids export.csv --column conversation_id --out ids.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runCleanIDs,
}

func init() {
	cleanIDsCmd.Flags().StringVarP(&cleanIDsColumn, "column", "c", "conversationId", "column holding the IDs")
	cleanIDsCmd.Flags().StringVar(&cleanIDsSheet, "sheet", "", "worksheet of a workbook input")
	cleanIDsCmd.Flags().StringVarP(&cleanIDsOut, "out", "o", "", "write the result to a file")
	rootCmd.AddCommand(cleanIDsCmd)
}

func runCleanIDs(cmd *cobra.Command, args []string) error {
	if tableService == nil {
		return errTablesUnavailable
	}
	input, err := loadTable(args[0], cleanIDsSheet)
	if err != nil {
		return err
	}
	t, err := tableService.CleanIDs(input, cleanIDsColumn)
	if err != nil {
		return err
	}
	cmd.Printf("Kept %d of %d rows.\n", t.Len(), input.Len())
	return emitTable(cmd, t, cleanIDsOut)
}
