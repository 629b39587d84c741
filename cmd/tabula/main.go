package main

import (
	"context"
	"log"
	"os"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/tabula/internal/adapters/driven/config/file"
	"github.com/custodia-labs/tabula/internal/adapters/driven/tabular"
	"github.com/custodia-labs/tabula/internal/adapters/driving/cli"
	oauthcb "github.com/custodia-labs/tabula/internal/adapters/driving/oauth"
	"github.com/custodia-labs/tabula/internal/connectors"
	"github.com/custodia-labs/tabula/internal/core/services"
)

var version = "dev"

// consentTimeout bounds how long the browser consent flow waits for the redirect.
const consentTimeout = 5 * time.Minute

func main() {
	os.Exit(run())
}

func run() int {
	cli.SetVersion(version)

	// TABULA_CONFIG_DIR overrides ~/.tabula
	configStore, err := file.NewConfigStore(os.Getenv("TABULA_CONFIG_DIR"))
	if err != nil {
		log.Printf("failed to create config store: %v", err)
		return 1
	}
	settingsSvc := services.NewSettingsService(configStore)

	codec := tabular.NewCodec("")
	prompter := cli.NewTerminalPrompter(os.Stdin, os.Stdout)

	consent := func(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
		return oauthcb.Authorize(ctx, cfg, oauthcb.OpenBrowser, consentTimeout)
	}
	factory := connectors.NewFactory(configStore, settingsSvc, consent)

	cli.SetServices(&cli.Services{
		Settings: settingsSvc,
		Auth:     factory,
		Tables:   services.NewTableService(codec),
		Toolkit:  services.NewToolkit(factory, codec, settingsSvc, prompter),
	})

	if err := cli.Execute(); err != nil {
		return 1
	}
	return 0
}
