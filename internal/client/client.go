// Package client is a typed client of the planner API. Reads are served from
// a cache until a successful write through the same client invalidates them.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"taskflow/internal/cache"
	"taskflow/internal/logger"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	// Cache may be nil, in which case every read goes to the server.
	Cache cache.Cache
}

// New returns a client for the server at baseURL (e.g. http://localhost:8080).
// Cookies set by the server are kept and sent back on later requests.
func New(baseURL string, c cache.Cache) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
		Cache: c,
	}, nil
}

// FieldError mirrors the field details of a validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details []FieldError
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("API error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("API error (status %d, %s): %s", e.Status, e.Code, e.Message)
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func IsValidation(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == "VALIDATION_ERROR"
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string       `json:"code"`
		Message string       `json:"message"`
		Details []FieldError `json:"details"`
	} `json:"error"`
}

// get reads path through the cache. The cache key is the method, path and
// encoded query, so equal requests share one entry.
func get[T any](ctx context.Context, c *Client, path string, query url.Values, tags ...string) (T, error) {
	key := http.MethodGet + " " + path
	if len(query) > 0 {
		key += "?" + query.Encode()
	}

	var out T
	if c.Cache == nil {
		err := c.do(ctx, http.MethodGet, path, query, nil, &out)
		return out, err
	}

	ok, err := c.Cache.Get(ctx, key, &out)
	if err != nil {
		logger.WarnContext(ctx, "Client cache read failed", "key", key, "error", err)
	} else if ok {
		return out, nil
	}

	// a mutation finishing while this request is in flight moves the version,
	// and the response it may have raced with is not kept
	version, verr := c.Cache.Version(ctx, tags...)
	if verr != nil {
		logger.WarnContext(ctx, "Client cache version failed", "key", key, "error", verr)
	}

	if err := c.do(ctx, http.MethodGet, path, query, nil, &out); err != nil {
		return out, err
	}

	if verr == nil {
		if _, err := c.Cache.SetIfCurrent(ctx, version, key, out, tags...); err != nil {
			logger.WarnContext(ctx, "Client cache write failed", "key", key, "error", err)
		}
	}
	return out, nil
}

// mutate sends a write and, only when it succeeded, drops the cached reads
// under tags so the next read refetches.
func mutate[T any](ctx context.Context, c *Client, method, path string, body any, tags ...string) (T, error) {
	var out T
	if err := c.do(ctx, method, path, nil, body, &out); err != nil {
		return out, err
	}

	if c.Cache != nil {
		if err := c.Cache.Invalidate(ctx, tags...); err != nil {
			return out, fmt.Errorf("invalidate %v: %w", tags, err)
		}
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(respBody, &env)

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		if decodeErr == nil && env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Details = env.Error.Details
		}
		return apiErr
	}
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func idPath(prefix string, id uint) string {
	return prefix + "/" + strconv.FormatUint(uint64(id), 10)
}

func itemTag(list string, id uint) string {
	return cache.Tag(list, strconv.FormatUint(uint64(id), 10))
}
