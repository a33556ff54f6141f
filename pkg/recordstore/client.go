package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "recruitdesk/internal/errors"
	"recruitdesk/internal/models"

	"github.com/sirupsen/logrus"
)

// Client retrieves pages of raw records from the upstream store
type Client interface {
	FetchPage(ctx context.Context, req PageRequest) (*Page, error)
}

type HTTPClient struct {
	baseURL   string
	authToken string
	client    *http.Client
	logger    *logrus.Logger
}

func NewClient(baseURL, authToken string, httpClient *http.Client) *HTTPClient {
	return NewClientWithLogger(baseURL, authToken, httpClient, nil)
}

func NewClientWithLogger(baseURL, authToken string, httpClient *http.Client, logger *logrus.Logger) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}

	return &HTTPClient{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		authToken: authToken,
		client:    httpClient,
		logger:    logger,
	}
}

func (c *HTTPClient) FetchPage(ctx context.Context, req PageRequest) (*Page, error) {
	endpoint := c.pageURL(req)

	c.logger.WithFields(logrus.Fields{
		"table":     req.Table,
		"page":      req.Page,
		"page_size": req.PageSize,
	}).Debug("Fetching record page")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.NewAPIError("recordstore", endpoint, 0, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewAPIError("recordstore", endpoint, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.NewAPIError("recordstore", endpoint, resp.StatusCode,
			fmt.Errorf("record store error: status %d, body: %s", resp.StatusCode, truncate(string(bodyBytes), 512)))
	}

	page, err := DecodePage(bodyBytes)
	if err != nil {
		return nil, apperrors.NewAPIError("recordstore", endpoint, resp.StatusCode, err)
	}

	return page, nil
}

func (c *HTTPClient) pageURL(req PageRequest) string {
	params := url.Values{}
	params.Set("page", strconv.Itoa(req.Page))
	params.Set("pageSize", strconv.Itoa(req.PageSize))
	if req.Query != "" {
		params.Set("q", req.Query)
	}
	if req.Sort != "" {
		params.Set("sort", req.Sort)
	}

	return fmt.Sprintf("%s/api/v1/projects/%s/tables/%s/records?%s",
		c.baseURL, url.PathEscape(req.Project), url.PathEscape(req.Table), params.Encode())
}

// DecodePage parses an upstream response body. The records array and the total
// count are located by probing the known field names; a bare JSON array is also
// accepted and yields a page with an unknown total.
func DecodePage(body []byte) (*Page, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("failed to decode response: empty body")
	}

	if trimmed[0] == '[' {
		records, err := decodeRecords(trimmed)
		if err != nil {
			return nil, err
		}
		return &Page{Records: records}, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	page := &Page{}
	found := false
	for _, key := range recordKeys {
		raw, ok := envelope[key]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		records, err := decodeRecords(raw)
		if err != nil {
			return nil, err
		}
		page.Records = records
		found = true
		break
	}
	if !found {
		return nil, fmt.Errorf("failed to decode response: no records array")
	}

	page.Total, page.TotalKnown = probeTotal(envelope)
	if !page.TotalKnown {
		if raw, ok := envelope["pageInfo"]; ok {
			var nested map[string]json.RawMessage
			if json.Unmarshal(raw, &nested) == nil {
				page.Total, page.TotalKnown = probeTotal(nested)
			}
		}
	}

	return page, nil
}

func decodeRecords(raw []byte) ([]models.RawRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var items []any
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}

	records := make([]models.RawRecord, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			records = append(records, models.RawRecord(obj))
		}
	}
	return records, nil
}

func probeTotal(fields map[string]json.RawMessage) (int, bool) {
	for _, key := range totalKeys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var n float64
		if err := json.Unmarshal(raw, &n); err == nil && n >= 0 && !math.IsInf(n, 0) {
			return int(n), true
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && v >= 0 {
				return v, true
			}
		}
	}
	return 0, false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
