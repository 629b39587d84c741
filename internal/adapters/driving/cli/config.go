package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage credentials and settings",
	Long: `View and change the values stored in the config file.

Keys are dotted names such as genesys.client_id or sharepoint.hostname.
Secrets are masked when listed. Omit the value of 'config set' to be
prompted for it without echo.

Examples:
  tabula config set genesys.environment mypurecloud.com
  tabula config set salesforce.client_secret
  tabula config get sharepoint.library
  tabula config list`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set a config value (empty value removes it)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runConfigSet,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a config value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored config values",
	RunE:  runConfigList,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if settingsService == nil {
			return errSettingsUnavailable
		}
		cmd.Println(settingsService.Path())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errSettingsUnavailable
	}

	key := args[0]
	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		cmd.Printf("Enter value for %s: ", key)
		value = readSecret(cmd.InOrStdin())
		cmd.Println()
	}

	if err := settingsService.Set(key, value); err != nil {
		return err
	}
	if value == "" {
		cmd.Printf("Removed %s\n", key)
		return nil
	}
	cmd.Printf("Set %s = %s\n", key, displayValue(key, value))
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errSettingsUnavailable
	}
	value, ok := settingsService.Value(args[0])
	if !ok {
		return fmt.Errorf("%s is not set", args[0])
	}
	cmd.Println(value)
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsUnavailable
	}

	keys := settingsService.Keys()
	if len(keys) == 0 {
		cmd.Println("No values stored.")
		cmd.Printf("Config file: %s\n", settingsService.Path())
		return nil
	}
	width := 0
	for _, k := range keys {
		width = max(width, len(k))
	}
	for _, k := range keys {
		v, _ := settingsService.Value(k)
		cmd.Printf("  %-*s  %s\n", width, k, displayValue(k, v))
	}
	return nil
}

func displayValue(key, value string) string {
	if domain.IsSecretKey(key) {
		return domain.MaskSecret(value)
	}
	return value
}

// readSecret reads a line without echo when in is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readSecret(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	line, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(line)
}
