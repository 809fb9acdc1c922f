package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"devhub.backend/internal/config"
	"devhub.backend/internal/domain/entities"
)

// usagePlans maps stored rate-limit tiers to the gateway's usage-plan names
var usagePlans = map[entities.RateLimitTier]string{
	entities.TierBronze:   "bronze",
	entities.TierSilver:   "silver",
	entities.TierGold:     "gold",
	entities.TierPlatinum: "platinum",
}

// UsagePlanFor returns the gateway usage-plan name for a tier
func UsagePlanFor(tier entities.RateLimitTier) string {
	if plan, ok := usagePlans[tier]; ok {
		return plan
	}
	return usagePlans[entities.TierBronze]
}

// Error is a typed failure returned by the gateway
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway error %d: %s", e.Code, e.Message)
}

// Client talks to the external API gateway's admin interface to keep
// usage-plan assignments in step with stored rate-limit tiers.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a gateway client from configuration
func NewClient(cfg config.GatewayConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type applicationRequest struct {
	ServerToken string `json:"serverToken"`
	UsagePlan   string `json:"usagePlan"`
}

// CreateOrUpdate asserts the application's API key membership in the usage
// plan matching tier
func (c *Client) CreateOrUpdate(ctx context.Context, appName, serverToken string, tier entities.RateLimitTier) error {
	body := applicationRequest{
		ServerToken: serverToken,
		UsagePlan:   UsagePlanFor(tier),
	}
	req, err := c.newJSONRequest(ctx, http.MethodPut, c.buildURL("applications", appName), body)
	if err != nil {
		return err
	}
	return c.do(req, []int{http.StatusOK, http.StatusCreated})
}

// Delete removes the application at the gateway. Not-found is success:
// the entry is already gone.
func (c *Client) Delete(ctx context.Context, appName string) error {
	req, err := c.newJSONRequest(ctx, http.MethodDelete, c.buildURL("applications", appName), nil)
	if err != nil {
		return err
	}
	err = c.do(req, []int{http.StatusOK, http.StatusNoContent})
	if gwErr, ok := err.(*Error); ok && gwErr.Code == http.StatusNotFound {
		return nil
	}
	return err
}

func (c *Client) buildURL(parts ...string) string {
	u := c.baseURL
	for _, p := range parts {
		u += "/" + url.PathEscape(p)
	}
	return u
}

func (c *Client) newJSONRequest(ctx context.Context, method, url string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, okStatuses []int) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	for _, s := range okStatuses {
		if resp.StatusCode == s {
			return nil
		}
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return &Error{Code: resp.StatusCode, Message: string(msg)}
}
