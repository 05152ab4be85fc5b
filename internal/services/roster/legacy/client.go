// Package legacy implements the HTTP client for the remote member registry.
package legacy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cadieux/rostersync/internal/platform/timeouts"
	"github.com/cadieux/rostersync/internal/services/roster/domain"
)

// Client fetches event member snapshots from the registry's JSON API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New builds a registry client. The token is sent as a bearer credential on
// every request.
func New(baseURL, token string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("registry base url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse registry base url: %w", err)
	}
	if timeout <= 0 {
		timeout = timeouts.RemoteFetch
	}
	return &Client{
		baseURL:    baseURL,
		token:      strings.TrimSpace(token),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// memberPayload mirrors one wire entry. The registry is loosely typed, so
// both sections decode as raw values and are stringified before the engine's
// schema sees them.
type memberPayload struct {
	Person     map[string]any `json:"Person"`
	Membership map[string]any `json:"Membership"`
}

// Fetch retrieves the member snapshot for one event. Transport failures and
// empty snapshots are both "no results" to the caller.
func (c *Client) Fetch(ctx context.Context, event domain.Event) ([]domain.RawMember, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("registry client is not configured")
	}
	code := strings.TrimSpace(event.Code)
	if code == "" {
		return nil, fmt.Errorf("event code is required")
	}

	endpoint := fmt.Sprintf("%s/api/v1/events/%s/members", c.baseURL, url.PathEscape(code))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build members request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch members for %s: %w", code, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch members for %s: registry returned %s", code, resp.Status)
	}

	var payload []memberPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode members for %s: %w", code, err)
	}

	members := make([]domain.RawMember, 0, len(payload))
	for _, entry := range payload {
		members = append(members, domain.RawMember{
			Person:     stringifyFields(entry.Person),
			Membership: stringifyFields(entry.Membership),
		})
	}
	return members, nil
}

func stringifyFields(fields map[string]any) map[string]string {
	out := make(map[string]string, len(fields))
	for name, value := range fields {
		out[name] = stringify(value)
	}
	return out
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "1"
		}
		return "0"
	case float64:
		// JSON numbers arrive as float64; legacy ids and epochs are whole.
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

var _ domain.RemoteSource = (*Client)(nil)
