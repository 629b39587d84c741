package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	soqlFile  string
	queryOut  string
	reportOut string
)

var salesforceCmd = &cobra.Command{
	Use:   "salesforce",
	Short: "Query Salesforce",
}

var salesforceQueryCmd = &cobra.Command{
	Use:   "query [soql]",
	Short: "Run a SOQL query",
	Long: `Run a SOQL query and print the records as a table.

Relationship fields are flattened into Parent__Field columns, timestamps
are converted to US Eastern time and column names are cleaned.

Examples:
  tabula salesforce query "SELECT Id, CaseNumber, Owner.Name FROM Case LIMIT 10"
  tabula salesforce query --file cases.soql --out cases.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSalesforceQuery,
}

var salesforceReportCmd = &cobra.Command{
	Use:   "report <report-id>",
	Short: "Run a saved report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if toolkit == nil {
			return errToolkitUnavailable
		}
		svc, err := toolkit.Records()
		if err != nil {
			return err
		}
		t, err := svc.Report(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return emitTable(cmd, t, reportOut)
	},
}

func init() {
	salesforceQueryCmd.Flags().StringVarP(&soqlFile, "file", "f", "", "read the SOQL statement from a file")
	salesforceQueryCmd.Flags().StringVarP(&queryOut, "out", "o", "", "write the result to a file")
	salesforceReportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "write the result to a file")

	salesforceCmd.AddCommand(salesforceQueryCmd)
	salesforceCmd.AddCommand(salesforceReportCmd)
	rootCmd.AddCommand(salesforceCmd)
}

func runSalesforceQuery(cmd *cobra.Command, args []string) error {
	if toolkit == nil {
		return errToolkitUnavailable
	}

	var soql string
	switch {
	case len(args) == 1:
		soql = args[0]
	case soqlFile != "":
		data, err := os.ReadFile(soqlFile)
		if err != nil {
			return err
		}
		soql = string(data)
	default:
		return cmd.Usage()
	}
	soql = strings.TrimSpace(soql)

	svc, err := toolkit.Records()
	if err != nil {
		return err
	}
	t, err := svc.Query(cmd.Context(), soql)
	if err != nil {
		return err
	}
	return emitTable(cmd, t, queryOut)
}
