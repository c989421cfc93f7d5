// Package api is the client-side transport to the server of record. It
// is a thin wrapper: the sync engine decides what to send and how to
// react, this package only moves bytes.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrGone reports that the server says the target entity does not exist.
// The engine uses it to evict optimistic local copies.
var ErrGone = errors.New("entity not found on server")

// SnapshotPayload mirrors the snapshot endpoint's wire shape. Collection
// contents stay raw; the engine decodes them per collection.
type SnapshotPayload struct {
	GeneratedAt time.Time                  `json:"generated_at"`
	Data        map[string]json.RawMessage `json:"data"`
}

type Client struct {
	base  string
	token string
	http  *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		base:  baseURL,
		token: token,
		http:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Snapshot fetches the full authoritative state of every collection.
func (c *Client) Snapshot(ctx context.Context) (*SnapshotPayload, error) {
	var payload SnapshotPayload
	if err := c.do(ctx, http.MethodGet, "/api/v1/snapshot", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Post sends a JSON body to the given path. When out is non-nil the
// response body is decoded into it.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put replaces the entity at the given path with the JSON body. When out
// is non-nil the response body is decoded into it.
func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a delete for the given path.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return fmt.Errorf("%s %s: %w", method, path, ErrGone)
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, msg)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
