/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package integrations talks to the inventory APIs hosts are pulled from.
package integrations

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/hostsync/pkg/logger"
	"github.com/carverauto/hostsync/pkg/models"
)

const (
	// DefaultEndpoint serves both supported sources.
	DefaultEndpoint = "https://api.recruiting.app.silk.security"

	DefaultPageSize = 100
	defaultTimeout  = 30 * time.Second

	// maxErrorBody bounds how much of a failed response ends up in the error.
	maxErrorBody = 4096
)

// Client pages through "POST {endpoint}/api/{source}/hosts/get" for one source.
type Client struct {
	source     string
	config     *models.SourceConfig
	httpClient HTTPClient
	logger     logger.Logger
}

var _ Fetcher = (*Client)(nil)

// NewClient returns a Client for source. A nil httpClient gets a default one
// honoring the config's timeout and TLS settings.
func NewClient(source string, config *models.SourceConfig, httpClient HTTPClient, log logger.Logger) *Client {
	if config == nil {
		config = &models.SourceConfig{}
	}

	if httpClient == nil {
		//nolint:gosec // InsecureSkipVerify is an explicit operator opt-in
		httpClient = &http.Client{
			Timeout: config.Timeout.Or(defaultTimeout),
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: config.InsecureSkipVerify,
				},
			},
		}
	}

	if log == nil {
		log = logger.Global()
	}

	return &Client{
		source:     source,
		config:     config,
		httpClient: httpClient,
		logger:     log.WithComponent(source),
	}
}

// Source returns the source tag this client fetches for.
func (c *Client) Source() string {
	return c.source
}

func (c *Client) pageURL(offset, limit int) (string, error) {
	endpoint := strings.TrimRight(c.config.Endpoint, "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	u, err := url.Parse(endpoint + "/api/" + c.source + "/hosts/get")
	if err != nil {
		return "", fmt.Errorf("%w: %w", errInvalidEndpoint, err)
	}

	q := u.Query()
	q.Set("skip", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// FetchPage requests one page of raw host records.
func (c *Client) FetchPage(ctx context.Context, offset, limit int) ([]json.RawMessage, error) {
	pageURL, err := c.pageURL(offset, limit)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pageURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("token", c.config.APIKey())
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, c.source, err)
	}
	defer c.closeResponse(resp)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return nil, fmt.Errorf("%w: %d: %s", ErrUnexpectedStatusCode, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var page []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("%w: %s: decode page: %w", ErrSourceUnavailable, c.source, err)
	}

	return page, nil
}

// Fetch walks pages from the configured skip offset until a short page comes
// back or MaxPages pages have been read. MaxPages zero reads a single page.
func (c *Client) Fetch(ctx context.Context) ([]json.RawMessage, error) {
	pageSize := c.config.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	maxPages := c.config.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}

	offset := c.config.Skip

	var all []json.RawMessage

	for page := 0; page < maxPages; page++ {
		items, err := c.FetchPage(ctx, offset, pageSize)
		if err != nil {
			return nil, err
		}

		all = append(all, items...)

		c.logger.Debug().
			Int("offset", offset).
			Int("count", len(items)).
			Msg("Fetched host page")

		if len(items) < pageSize {
			break
		}

		offset += pageSize
	}

	c.logger.Info().Int("hosts", len(all)).Msg("Fetched hosts")

	return all, nil
}

func (c *Client) closeResponse(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to close response body")
	}
}
