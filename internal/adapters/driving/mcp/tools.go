package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// defaultRowLimit caps the rows returned when the caller gives no limit.
const defaultRowLimit = 100

// TableOutput is the output schema shared by every table-returning tool.
type TableOutput struct {
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	Count     int        `json:"count"`
	Truncated bool       `json:"truncated,omitempty"`
}

// QueryInput is the input schema for the salesforce_query tool.
type QueryInput struct {
	SOQL  string `json:"soql" jsonschema:"the SOQL statement to run"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of rows to return (default 100)"`
}

// ReportInput is the input schema for the salesforce_report tool.
type ReportInput struct {
	ReportID string `json:"report_id" jsonschema:"the saved report ID"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of rows to return (default 100)"`
}

// TreeInput is the input schema for the sharepoint_tree tool.
type TreeInput struct {
	Library string `json:"library,omitempty" jsonschema:"document library (default from config)"`
	Folder  string `json:"folder,omitempty" jsonschema:"library-relative folder (default from config)"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum number of rows to return (default 100)"`
}

// ConversationsInput is the input schema for the genesys_conversations tool.
type ConversationsInput struct {
	IDs       []string `json:"ids" jsonschema:"conversation IDs to look up"`
	Intervals []string `json:"intervals" jsonschema:"START/END date pairs formatted YYYY-MM-DD/YYYY-MM-DD"`
	Limit     int      `json:"limit,omitempty" jsonschema:"maximum number of rows to return (default 100)"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "salesforce_query",
		Description: "Run a SOQL query against Salesforce and return the records as a table",
	}, s.handleQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "salesforce_report",
		Description: "Run a saved Salesforce report and return its detail rows",
	}, s.handleReport)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sharepoint_tree",
		Description: "List every file beneath a SharePoint library folder",
	}, s.handleTree)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "genesys_conversations",
		Description: "Fetch Genesys Cloud conversation details for a list of conversation IDs",
	}, s.handleConversations)
}

func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, TableOutput, error) {
	svc, err := s.ports.Toolkit.Records()
	if err != nil {
		return nil, TableOutput{}, err
	}
	t, err := svc.Query(ctx, input.SOQL)
	if err != nil {
		return nil, TableOutput{}, err
	}
	return nil, tableOutput(t, input.Limit), nil
}

func (s *Server) handleReport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReportInput,
) (*mcp.CallToolResult, TableOutput, error) {
	svc, err := s.ports.Toolkit.Records()
	if err != nil {
		return nil, TableOutput{}, err
	}
	t, err := svc.Report(ctx, input.ReportID)
	if err != nil {
		return nil, TableOutput{}, err
	}
	return nil, tableOutput(t, input.Limit), nil
}

func (s *Server) handleTree(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input TreeInput,
) (*mcp.CallToolResult, TableOutput, error) {
	svc, err := s.ports.Toolkit.Explorer()
	if err != nil {
		return nil, TableOutput{}, err
	}

	library, folder := input.Library, input.Folder
	if s.ports.Settings != nil {
		sp := s.ports.Settings.Get().SharePoint
		if library == "" {
			library = sp.Library
		}
		if folder == "" {
			folder = sp.RootFolder
		}
	}

	result, err := svc.Explore(ctx, domain.ExploreRequest{Library: library, Subfolder: folder})
	if err != nil {
		return nil, TableOutput{}, err
	}
	if !result.LibraryFound {
		return nil, TableOutput{}, fmt.Errorf("%w: document library %q", domain.ErrNotFound, library)
	}
	if !result.SubfolderFound {
		return nil, TableOutput{}, fmt.Errorf("%w: folder %q in %q", domain.ErrNotFound, folder, library)
	}
	return nil, tableOutput(result.Tree, input.Limit), nil
}

func (s *Server) handleConversations(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ConversationsInput,
) (*mcp.CallToolResult, TableOutput, error) {
	if len(input.Intervals) == 0 {
		return nil, TableOutput{}, fmt.Errorf("%w: at least one interval is required", domain.ErrValidation)
	}
	intervals := make([]domain.DateInterval, 0, len(input.Intervals))
	for _, raw := range input.Intervals {
		d, err := domain.ParseInterval(raw)
		if err != nil {
			return nil, TableOutput{}, err
		}
		intervals = append(intervals, d)
	}

	ids := domain.NewTable(conversationIDColumn)
	for _, id := range input.IDs {
		if err := ids.AppendRow(id); err != nil {
			return nil, TableOutput{}, err
		}
	}

	svc, err := s.ports.Toolkit.Conversations()
	if err != nil {
		return nil, TableOutput{}, err
	}
	t, err := svc.FetchDetails(ctx, ids, conversationIDColumn, intervals)
	if err != nil {
		return nil, TableOutput{}, err
	}
	return nil, tableOutput(t, input.Limit), nil
}

const conversationIDColumn = "conversationId"

// tableOutput renders at most limit rows of t as text cells.
func tableOutput(t *domain.Table, limit int) TableOutput {
	out := TableOutput{Columns: []string{}, Rows: [][]string{}}
	if t == nil {
		return out
	}
	if limit <= 0 {
		limit = defaultRowLimit
	}

	out.Columns = t.Columns()
	out.Count = t.Len()
	n := min(t.Len(), limit)
	out.Truncated = n < t.Len()
	for i := range n {
		row := make([]string, len(out.Columns))
		for j, col := range out.Columns {
			row[j] = domain.FormatValue(t.Value(i, col))
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}
