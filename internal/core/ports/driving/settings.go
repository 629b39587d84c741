package driving

import "github.com/custodia-labs/tabula/internal/core/domain"

// SettingsService resolves vendor settings from the config store.
type SettingsService interface {
	// Get returns the current settings with defaults applied.
	Get() domain.Settings

	// Set stores one config key.
	Set(key, value string) error

	// Value returns one config key and whether it is set.
	Value(key string) (string, bool)

	// Keys returns every stored key in sorted order.
	Keys() []string

	// Path returns the config file location.
	Path() string
}
