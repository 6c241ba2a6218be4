package postgrest_client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Config - адрес и ключ REST-интерфейса хостинга
type Config struct {
	BaseURL string // https://<project>.example.co
	APIKey  string
	Timeout time.Duration
}

// PostgRESTListingSource читает таблицы через REST-интерфейс хостинга (/rest/v1).
type PostgRESTListingSource struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewPostgRESTListingSource(cfg Config) (*PostgRESTListingSource, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("postgrest base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("postgrest API key is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PostgRESTListingSource{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// tableURL строит /rest/v1/<table>?select=...&order=created_at.asc,id.asc&<column>=eq.<id>
func (c *PostgRESTListingSource) tableURL(table, selectCols string, filters map[string]uuid.UUID) string {
	q := url.Values{}
	q.Set("select", selectCols)
	q.Set("order", "created_at.asc,id.asc")
	for column, id := range filters {
		q.Set(column, "eq."+id.String())
	}
	return c.baseURL + "/rest/v1/" + table + "?" + q.Encode()
}

// get выполняет запрос и декодирует JSON-массив в out
func (c *PostgRESTListingSource) get(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("postgrest returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *PostgRESTListingSource) FetchBranches(ctx context.Context, filter domain.BranchFilter) ([]domain.Branch, error) {
	clientLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgRESTListingSource",
		"method":    "FetchBranches",
	})
	filters := map[string]uuid.UUID{}
	if filter.ID != nil {
		filters["id"] = *filter.ID
	}

	var rows []branchRow
	if err := c.get(ctx, c.tableURL("branches", branchSelect, filters), &rows); err != nil {
		clientLogger.Error("Failed to fetch branches", err, nil)
		return nil, fmt.Errorf("failed to fetch branches: %w", err)
	}

	out := make([]domain.Branch, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (c *PostgRESTListingSource) FetchApartments(ctx context.Context, filter domain.ApartmentFilter) ([]domain.Apartment, error) {
	clientLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgRESTListingSource",
		"method":    "FetchApartments",
	})
	filters := map[string]uuid.UUID{}
	if filter.ID != nil {
		filters["id"] = *filter.ID
	}
	if filter.BranchID != nil {
		filters["branch_id"] = *filter.BranchID
	}

	var rows []apartmentRow
	if err := c.get(ctx, c.tableURL("apartments", apartmentSelect, filters), &rows); err != nil {
		clientLogger.Error("Failed to fetch apartments", err, nil)
		return nil, fmt.Errorf("failed to fetch apartments: %w", err)
	}

	out := make([]domain.Apartment, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (c *PostgRESTListingSource) FetchRooms(ctx context.Context, filter domain.RoomFilter) ([]domain.Room, error) {
	clientLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgRESTListingSource",
		"method":    "FetchRooms",
	})
	filters := map[string]uuid.UUID{}
	if filter.ID != nil {
		filters["id"] = *filter.ID
	}
	if filter.ApartmentID != nil {
		filters["apartment_id"] = *filter.ApartmentID
	}
	if filter.BranchID != nil {
		filters["branch_id"] = *filter.BranchID
	}

	var rows []roomRow
	if err := c.get(ctx, c.tableURL("rooms", roomSelect, filters), &rows); err != nil {
		clientLogger.Error("Failed to fetch rooms", err, nil)
		return nil, fmt.Errorf("failed to fetch rooms: %w", err)
	}

	out := make([]domain.Room, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}
