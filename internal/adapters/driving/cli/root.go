package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tabula/internal/core/ports/driving"
	"github.com/custodia-labs/tabula/internal/logger"
)

var (
	// Version is set by goreleaser ldflags.
	version = "dev"

	// Verbose enables debug logging.
	verbose bool

	// Services holds injected service implementations for CLI commands.
	settingsService driving.SettingsService
	authService     driving.AuthService
	tableService    driving.TableService
	toolkit         driving.Toolkit
)

// Services holds configuration for CLI commands.
type Services struct {
	Settings driving.SettingsService
	Auth     driving.AuthService
	Tables   driving.TableService
	Toolkit  driving.Toolkit
}

// SetServices injects service implementations for CLI commands.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	settingsService = s.Settings
	authService = s.Auth
	tableService = s.Tables
	toolkit = s.Toolkit
}

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "tabula",
	Short: "Move report tables between contact center, CRM and office tools",
	Long: `Tabula pulls tables out of Genesys Cloud, Salesforce, SharePoint and
Gmail, cleans them up, and pushes them back out to Google Sheets,
SharePoint and Gmail.

Credentials live in ~/.tabula/config.toml. Run 'tabula config list' to
see what is configured.`,
	SilenceUsage: true,
}

// Execute runs the root command. Command output goes to stdout.
func Execute() error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.Execute()
}

// SetVersion sets the version string for the CLI.
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose debug output")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		logger.SetOutput(cmd.ErrOrStderr())
		logger.SetStatusOutput(cmd.OutOrStdout())
		logger.SetVerbose(verbose)
		return nil
	}
}

var (
	errSettingsUnavailable = errors.New("settings service not configured")
	errAuthUnavailable     = errors.New("auth service not configured")
	errTablesUnavailable   = errors.New("table service not configured")
	errToolkitUnavailable  = errors.New("toolkit not configured")
)
