package cli

import (
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize vendor APIs",
	Long: `Run the authorization flows that obtain and store vendor tokens.

Genesys Cloud uses the client-credentials grant, so 'auth genesys' only
checks that the configured client is accepted. Salesforce uses the
web-server flow: open the URL printed by 'auth salesforce-url', approve,
then pass the code (or the whole redirect URL) to 'auth salesforce-exchange'.
Gmail opens a browser and listens for the redirect on localhost.

Examples:
  tabula auth genesys
  tabula auth salesforce-url
  tabula auth salesforce-exchange "https://localhost/?code=aPrx..."
  tabula auth gmail`,
}

var authGenesysCmd = &cobra.Command{
	Use:   "genesys",
	Short: "Check the Genesys Cloud client credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if authService == nil {
			return errAuthUnavailable
		}
		return authService.CheckGenesys(cmd.Context())
	},
}

var authSalesforceURLCmd = &cobra.Command{
	Use:   "salesforce-url",
	Short: "Print the Salesforce consent URL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if authService == nil {
			return errAuthUnavailable
		}
		u, err := authService.SalesforceAuthorizeURL()
		if err != nil {
			return err
		}
		cmd.Println("Open this URL, approve access, then run 'tabula auth salesforce-exchange <code>':")
		cmd.Println()
		cmd.Println(u)
		return nil
	},
}

var authSalesforceExchangeCmd = &cobra.Command{
	Use:   "salesforce-exchange <code|redirect-url>",
	Short: "Redeem a Salesforce authorization code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if authService == nil {
			return errAuthUnavailable
		}
		return authService.ExchangeSalesforceCode(cmd.Context(), extractCode(args[0]))
	},
}

var authSalesforceRefreshCmd = &cobra.Command{
	Use:   "salesforce-refresh",
	Short: "Refresh the Salesforce access token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if authService == nil {
			return errAuthUnavailable
		}
		return authService.RefreshSalesforce(cmd.Context())
	},
}

var authGmailCmd = &cobra.Command{
	Use:   "gmail",
	Short: "Authorize Gmail in the browser",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if authService == nil {
			return errAuthUnavailable
		}
		path, err := authService.AuthorizeGmail(cmd.Context())
		if err != nil {
			return err
		}
		cmd.Println(successStyle.Render("Gmail authorized. Token: " + path))
		return nil
	},
}

func init() {
	authCmd.AddCommand(authGenesysCmd)
	authCmd.AddCommand(authSalesforceURLCmd)
	authCmd.AddCommand(authSalesforceExchangeCmd)
	authCmd.AddCommand(authSalesforceRefreshCmd)
	authCmd.AddCommand(authGmailCmd)
	rootCmd.AddCommand(authCmd)
}

// extractCode accepts either a bare authorization code or the redirect URL
// carrying it in the code parameter. Codes are URL-decoded.
func extractCode(input string) string {
	input = strings.TrimSpace(input)
	if u, err := url.Parse(input); err == nil && u.RawQuery != "" {
		if code := u.Query().Get("code"); code != "" {
			return code
		}
	}
	if decoded, err := url.QueryUnescape(input); err == nil {
		return decoded
	}
	return input
}
