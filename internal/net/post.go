package net

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	metaerrors "github.com/meta-secret/meta-secret/internal/errors"
)

// Client is a thin JSON-over-HTTP client used by the device gateway to
// talk to a relay server.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient builds a Client against baseURL using httpClient (the caller
// is expected to set a sane Timeout on it).
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, baseURL: baseURL}
}

// PostJSON POSTs reqBody as JSON to path and decodes the JSON response
// into respBody. A 409 response is surfaced as a Conflict error and any
// other non-2xx response as a Transport error, both carrying the
// response body text.
func (c *Client) PostJSON(ctx context.Context, path string, reqBody any, respBody any) error {
	payload, err := MarshalBody(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return metaerrors.Wrap(metaerrors.KindTransport, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return metaerrors.Wrap(metaerrors.KindTransport, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return metaerrors.Wrap(metaerrors.KindTransport, "failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		kind := metaerrors.KindTransport
		if resp.StatusCode == http.StatusConflict {
			kind = metaerrors.KindConflict
		}
		return metaerrors.Wrap(kind,
			fmt.Sprintf("unexpected status %d", resp.StatusCode),
			fmt.Errorf("%s", string(body)))
	}

	if respBody == nil {
		return nil
	}
	return ReadBytes(body, respBody)
}
