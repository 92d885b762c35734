// Package client is a Go client for the micromatch data API. It is what
// the presentation layer (or a script) talks to instead of issuing raw
// fetches.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"

	"github.com/micromatch/micromatch"
)

const (
	defaultTimeout = 3 * time.Second
	readCacheTTL   = 30 * time.Second
)

// ErrNotFound is returned for 404 responses.
var ErrNotFound = errors.New("item not found")

// ErrBadRequest is returned for 400 responses.
var ErrBadRequest = errors.New("bad request")

const allCacheKey = "\x00all"

type Client struct {
	client  *http.Client
	cache   *cache.Cache
	baseURL string
}

func New(baseURL string) *Client {
	return &Client{
		client:  &http.Client{Timeout: defaultTimeout},
		cache:   cache.New(readCacheTTL, time.Minute),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (c *Client) request(ctx context.Context, method, path string, body, response any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to perform request")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest:
		var apiErr micromatch.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return errors.Wrap(ErrBadRequest, apiErr.Error)
		}
		return ErrBadRequest
	default:
		return errors.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if response == nil {
		return nil
	}
	err = json.NewDecoder(resp.Body).Decode(response)
	if err != nil {
		return errors.Wrap(err, "failed to decode response")
	}
	return nil
}

// GetAll fetches every stored document. Responses are cached briefly.
func (c *Client) GetAll(ctx context.Context) (map[string]json.RawMessage, error) {
	if cached, ok := c.cache.Get(allCacheKey); ok {
		return cached.(map[string]json.RawMessage), nil
	}

	var data map[string]json.RawMessage
	if err := c.request(ctx, http.MethodGet, "/api/data", nil, &data); err != nil {
		return nil, err
	}
	c.cache.Set(allCacheKey, data, cache.DefaultExpiration)
	return data, nil
}

// Get fetches one document by id.
func (c *Client) Get(ctx context.Context, id string) (json.RawMessage, error) {
	if cached, ok := c.cache.Get(id); ok {
		return cached.(json.RawMessage), nil
	}

	var doc json.RawMessage
	if err := c.request(ctx, http.MethodGet, "/api/data/"+id, nil, &doc); err != nil {
		return nil, err
	}
	c.cache.Set(id, doc, cache.DefaultExpiration)
	return doc, nil
}

// GetRecord fetches one document and decodes it as a user record.
func (c *Client) GetRecord(ctx context.Context, id string) (micromatch.Record, error) {
	doc, err := c.Get(ctx, id)
	if err != nil {
		return micromatch.Record{}, err
	}
	var record micromatch.Record
	if err := json.Unmarshal(doc, &record); err != nil {
		return micromatch.Record{}, errors.Wrapf(err, "document %s is not a user record", id)
	}
	return record, nil
}

// Create stores a document under id, overwriting any existing one.
func (c *Client) Create(ctx context.Context, id string, doc any) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to encode document")
	}

	err = c.request(ctx, http.MethodPost, "/api/data", micromatch.CreateDataRequest{
		ID:   id,
		Data: payload,
	}, nil)
	if err != nil {
		return err
	}
	c.invalidate(id)
	return nil
}

// Replace overwrites the document stored under id, which must exist.
func (c *Client) Replace(ctx context.Context, id string, doc any) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to encode document")
	}

	err = c.request(ctx, http.MethodPut, "/api/data/"+id, micromatch.UpdateDataRequest{
		Data: payload,
	}, nil)
	if err != nil {
		return err
	}
	c.invalidate(id)
	return nil
}

// Delete removes the document stored under id.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.request(ctx, http.MethodDelete, "/api/data/"+id, nil, nil); err != nil {
		return err
	}
	c.invalidate(id)
	return nil
}

// Health checks the server's health endpoint.
func (c *Client) Health(ctx context.Context) (micromatch.HealthResponse, error) {
	var health micromatch.HealthResponse
	if err := c.request(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		return micromatch.HealthResponse{}, err
	}
	return health, nil
}

func (c *Client) invalidate(id string) {
	c.cache.Delete(id)
	c.cache.Delete(allCacheKey)
}
