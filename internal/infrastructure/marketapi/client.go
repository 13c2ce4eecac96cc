// Package marketapi is the client for the marketplace REST API that owns
// users, listings, reports and the block list.
package marketapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"campuschat/pkg/errors"
	"campuschat/pkg/logger"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Get(ctx context.Context, path, token string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, token, nil, out)
}

func (c *Client) Post(ctx context.Context, path, token string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, token, body, out)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Internal("Failed to encode request body", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Internal("Failed to build marketplace request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("marketapi: %s %s failed: %v", method, path, err)
		return errors.Upstream("Marketplace API unavailable", 0, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Upstream("Failed to read marketplace response", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Upstream("Unexpected marketplace response", resp.StatusCode, err)
	}
	return nil
}

func statusError(status int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)

	switch status {
	case http.StatusUnauthorized:
		return errors.Unauthorized("Marketplace session expired", nil)
	case http.StatusNotFound:
		return errors.NotFound("Marketplace resource", nil)
	case http.StatusBadRequest:
		msg := payload.Message
		if msg == "" {
			msg = "Marketplace rejected the request"
		}
		return errors.BadRequest(msg, nil)
	}
	return errors.Upstream("Marketplace API error", status, fmt.Errorf("%s", payload.Message))
}

func escape(id string) string {
	return url.PathEscape(id)
}
