package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for Tabula resources.
	uriScheme = "tabula://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "config",
		Name:        "config",
		Description: "Stored configuration values with secrets masked",
		MIMEType:    "application/json",
	}, s.handleConfigResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "config/{section}",
		Name:        "config-section",
		Description: "Stored configuration values of one vendor section, such as genesys or sharepoint",
		MIMEType:    "application/json",
	}, s.handleConfigSectionResource)
}

// handleConfigResource returns every stored key.
func (s *Server) handleConfigResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return s.configResult(req.Params.URI, "")
}

// handleConfigSectionResource returns the keys under one section.
func (s *Server) handleConfigSectionResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	section := extractSection(req.Params.URI)
	if section == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return s.configResult(req.Params.URI, section)
}

func (s *Server) configResult(uri, section string) (*mcp.ReadResourceResult, error) {
	values := configValues(s.ports, section)
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling config: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// configValues collects stored keys, optionally limited to "<section>.*".
func configValues(p *Ports, section string) map[string]string {
	values := map[string]string{}
	if p.Settings == nil {
		return values
	}
	for _, key := range p.Settings.Keys() {
		if section != "" && !strings.HasPrefix(key, section+".") {
			continue
		}
		v, _ := p.Settings.Value(key)
		if domain.IsSecretKey(key) {
			v = domain.MaskSecret(v)
		}
		values[key] = v
	}
	return values
}

// extractSection extracts the section from a URI like tabula://config/{section}.
func extractSection(uri string) string {
	const prefix = uriScheme + "config/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	section := strings.TrimPrefix(uri, prefix)
	if strings.Contains(section, "/") {
		return ""
	}
	return section
}
