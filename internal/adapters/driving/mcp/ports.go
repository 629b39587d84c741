package mcp

import (
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server calls.
type Ports struct {
	// Toolkit builds the vendor-backed services.
	Toolkit driving.Toolkit

	// Settings exposes the stored configuration. Optional.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Toolkit == nil {
		return ErrMissingToolkit
	}
	return nil
}
