package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bradwmorris/worldfair-connect/internal/httpc"
)

// DefaultTable is the catalog table queried by Search.
const DefaultTable = "talks"

// SupabaseClient queries the talk catalog through the Supabase REST API.
// It is safe for concurrent use and holds no mutable state.
type SupabaseClient struct {
	baseURL string
	apiKey  string
	table   string
	http    *http.Client
}

// NewSupabase creates a catalog client for the given project URL and anon key.
func NewSupabase(baseURL, apiKey string) *SupabaseClient {
	return &SupabaseClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		table:   DefaultTable,
		http:    httpc.Client,
	}
}

// WithTable returns a copy of the client targeting a different table.
func (c *SupabaseClient) WithTable(table string) *SupabaseClient {
	cp := *c
	cp.table = table
	return &cp
}

// Search finds up to limit records whose title or description matches any
// token of the query. A limit of 0 or less uses DefaultLimit. The store's
// row order is preserved; an empty result is a valid outcome, not an error.
func (c *SupabaseClient) Search(ctx context.Context, query string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	params := url.Values{}
	params.Set("select", "id,title,description")
	params.Set("or", orClause(BuildFilters(query)))
	params.Set("limit", strconv.Itoa(limit))

	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, c.table, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("knowledge: failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("knowledge: search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("knowledge: failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("knowledge: store error (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	var records []Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("knowledge: failed to parse response: %w", err)
	}

	// Normalize a null body to an empty result
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// truncate shortens a string to maxLen characters for error messages.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
