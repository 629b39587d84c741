package salesforce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.RecordSource = (*Client)(nil)

// Client calls the REST and Analytics APIs of one org instance.
type Client struct {
	instanceURL string
	apiVersion  string
	tokens      driven.TokenProvider
	httpClient  *http.Client
}

// New creates a client for an instance such as https://acme.my.salesforce.com.
// An empty apiVersion selects DefaultAPIVersion.
func New(instanceURL, apiVersion string, tokens driven.TokenProvider) *Client {
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	return &Client{
		instanceURL: strings.TrimRight(instanceURL, "/"),
		apiVersion:  apiVersion,
		tokens:      tokens,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) dataURL(path string) string {
	return c.instanceURL + "/services/data/" + c.apiVersion + path
}

type queryPage struct {
	Done           bool             `json:"done"`
	TotalSize      int              `json:"totalSize"`
	NextRecordsURL string           `json:"nextRecordsUrl"`
	Records        []*domain.Record `json:"records"`
}

// Query runs a SOQL statement and returns every record across all pages.
// Records are returned as decoded, including their "attributes" objects.
func (c *Client) Query(ctx context.Context, soql string) ([]*domain.Record, error) {
	endpoint := c.dataURL("/query/?q=" + url.QueryEscape(soql))

	var records []*domain.Record
	for endpoint != "" {
		var page queryPage
		if err := c.get(ctx, endpoint, &page); err != nil {
			return nil, fmt.Errorf("soql query: %w", err)
		}
		records = append(records, page.Records...)
		logger.Debug("salesforce: %d of %d records", len(records), page.TotalSize)

		endpoint = ""
		if !page.Done && page.NextRecordsURL != "" {
			endpoint = c.instanceURL + page.NextRecordsURL
		}
	}
	return records, nil
}

type reportResponse struct {
	ReportMetadata struct {
		DetailColumns []string `json:"detailColumns"`
	} `json:"reportMetadata"`
	ReportExtendedMetadata struct {
		DetailColumnInfo map[string]struct {
			Label    string `json:"label"`
			DataType string `json:"dataType"`
		} `json:"detailColumnInfo"`
	} `json:"reportExtendedMetadata"`
	FactMap map[string]struct {
		Rows []struct {
			DataCells []struct {
				Label string `json:"label"`
				Value any    `json:"value"`
			} `json:"dataCells"`
		} `json:"rows"`
	} `json:"factMap"`
}

// Report runs a saved report with details and returns its detail rows.
// Rows from every factMap bucket are concatenated in bucket-key order.
func (c *Client) Report(ctx context.Context, reportID string) (*domain.Report, error) {
	if reportID == "" {
		return nil, fmt.Errorf("%w: report id is required", domain.ErrValidation)
	}
	endpoint := c.dataURL("/analytics/reports/" + url.PathEscape(reportID) + "?includeDetails=true")

	var resp reportResponse
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("report %s: %w", reportID, err)
	}

	report := &domain.Report{}
	for _, name := range resp.ReportMetadata.DetailColumns {
		info := resp.ReportExtendedMetadata.DetailColumnInfo[name]
		report.Columns = append(report.Columns, domain.ReportColumn{
			Name:     name,
			Label:    info.Label,
			DataType: info.DataType,
		})
	}

	keys := make([]string, 0, len(resp.FactMap))
	for k := range resp.FactMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		for _, row := range resp.FactMap[k].Rows {
			if len(row.DataCells) > len(report.Columns) {
				return nil, fmt.Errorf("%w: report %s row has %d cells for %d columns",
					domain.ErrParse, reportID, len(row.DataCells), len(report.Columns))
			}
			cells := make([]domain.ReportCell, len(row.DataCells))
			for i, dc := range row.DataCells {
				cells[i] = domain.ReportCell{Value: dc.Value, Label: dc.Label}
			}
			report.Rows = append(report.Rows, cells)
		}
	}
	logger.Debug("salesforce: report %s has %d rows", reportID, len(report.Rows))
	return report, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return fmt.Errorf("get token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrParse, err)
	}
	return nil
}
