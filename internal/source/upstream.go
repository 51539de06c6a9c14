package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/gcbaptista/promo-search-engine/config"
	internalErrors "github.com/gcbaptista/promo-search-engine/internal/errors"
	"github.com/gcbaptista/promo-search-engine/model"
)

// maxResponseBytes caps upstream response bodies
const maxResponseBytes = 32 << 20

// UpstreamClient logs in to the promotions API and downloads the catalogue
type UpstreamClient struct {
	cfg    config.UpstreamConfig
	client *http.Client
	now    func() time.Time
}

// NewUpstreamClient creates a client. A nil httpClient uses http.DefaultClient.
func NewUpstreamClient(cfg config.UpstreamConfig, httpClient *http.Client) *UpstreamClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cfg.LoginTimeout <= 0 {
		cfg.LoginTimeout = 30 * time.Second
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 60 * time.Second
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = 200
	}
	return &UpstreamClient{cfg: cfg, client: httpClient, now: time.Now}
}

// Name identifies the source in logs and job metadata
func (c *UpstreamClient) Name() string {
	return "upstream"
}

// Fetch logs in, downloads the raw promotions and converts them to records.
func (c *UpstreamClient) Fetch(ctx context.Context) ([]model.PromotionRecord, error) {
	token, err := c.Login(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := c.FetchRaw(ctx, token)
	if err != nil {
		return nil, err
	}

	records, err := ProcessPromotions(raw, c.now(), c.cfg.LinkBaseURL)
	if err != nil {
		return nil, internalErrors.NewDataUnavailableError(err.Error())
	}
	if len(records) == 0 {
		return nil, internalErrors.NewDataUnavailableError("upstream returned no promotions")
	}

	log.WithField("records", len(records)).Info("fetched promotions from upstream")
	return records, nil
}

// Login exchanges the configured credentials for a bearer token.
func (c *UpstreamClient) Login(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.LoginTimeout)
	defer cancel()

	body, err := c.loginBody()
	if err != nil {
		return "", fmt.Errorf("failed to encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.LoginURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	respBody, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}

	token := gjson.GetBytes(respBody, "data.access_token").String()
	if token == "" {
		token = gjson.GetBytes(respBody, "data.accessToken").String()
	}
	if token == "" {
		return "", internalErrors.NewDataUnavailableError("login response carried no access token")
	}
	return token, nil
}

func (c *UpstreamClient) loginBody() ([]byte, error) {
	body := []byte(`{"platform":"web"}`)
	fields := []struct{ path, value string }{
		{"emp_code", c.cfg.Username},
		{"pass", c.cfg.Password},
		{"device_uuid", uuid.NewString()},
	}
	for _, f := range fields {
		var err error
		if body, err = sjson.SetBytes(body, f.path, f.value); err != nil {
			return nil, err
		}
	}
	return body, nil
}

// FetchRaw downloads the promotions list and returns the raw "data" array.
func (c *UpstreamClient) FetchRaw(ctx context.Context, token string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
	defer cancel()

	u, err := url.Parse(c.cfg.PromotionsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid promotions URL: %w", err)
	}
	q := u.Query()
	q.Set("perpage", strconv.Itoa(c.cfg.PerPage))
	q.Set("sort_by", "updated_at")
	q.Set("sort_direction", "desc")
	if c.cfg.BusinessUnits != "" {
		q.Set("business_units", c.cfg.BusinessUnits)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build promotions request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	respBody, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching promotions failed: %w", err)
	}

	data := gjson.GetBytes(respBody, "data")
	if !data.IsArray() {
		return nil, internalErrors.NewDataUnavailableError("promotions response has no data array")
	}
	return []byte(data.Raw), nil
}

func (c *UpstreamClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if errClose := resp.Body.Close(); errClose != nil {
			log.WithError(errClose).Debug("failed to close upstream response body")
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Host)
	}
	return body, nil
}
