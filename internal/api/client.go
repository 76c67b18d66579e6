// Package api is the single chokepoint for every backend call: it
// attaches the bearer token, normalizes error handling, and applies the
// read-degradation policy for unreachable backends.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenSource hands the client the current bearer token, or "" when no
// session exists. The session store implements it; the interface keeps
// this package free of a dependency on the session package.
type TokenSource interface {
	Token() string
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *log.Logger
}

func New(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		logger:  log.Default(),
	}
}

// SetLogger replaces the default logger, mainly to keep tests quiet.
func (c *Client) SetLogger(l *log.Logger) { c.logger = l }

// Form is a multipart request body: string fields plus an optional file
// attachment. Catalog create/update calls use it so an image can ride
// along with the record.
type Form struct {
	Fields    map[string]string
	FileField string
	FileName  string
	File      io.Reader
}

// requiresAuth is the fixed name-pattern set of endpoints that need a
// bearer token: caller-scoped "/my" collections, the cart, and orders.
func requiresAuth(path string) bool {
	if strings.HasSuffix(path, "/my") || strings.Contains(path, "/my/") {
		return true
	}
	return strings.HasPrefix(path, "/cart") || strings.HasPrefix(path, "/orders")
}

// Get issues a read call. A transport-level failure (host unreachable)
// is logged and swallowed: dest keeps its zero value, so list views
// degrade to "no data" instead of crashing. HTTP error statuses are
// still surfaced as errors.
func (c *Client) Get(ctx context.Context, path string, query url.Values, dest any) error {
	if requiresAuth(path) && c.token() == "" {
		return ErrAuthenticationRequired
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.decorate(req, "")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Deliberate tradeoff: a dead backend renders as an empty list,
		// so it must at least be visible in the logs.
		c.logger.Printf("GET %s unreachable, returning empty result: %v", path, err)
		return nil
	}
	defer resp.Body.Close()

	return c.consume(resp, dest)
}

// Do issues a mutation. Unlike Get, an unreachable backend is an error
// the caller sees.
func (c *Client) Do(ctx context.Context, method, path string, body any, dest any) error {
	if requiresAuth(path) && c.token() == "" {
		return ErrAuthenticationRequired
	}

	var (
		reader      io.Reader
		contentType string
	)
	switch b := body.(type) {
	case nil:
	case *Form:
		buf := &bytes.Buffer{}
		w := multipart.NewWriter(buf)
		for k, v := range b.Fields {
			if err := w.WriteField(k, v); err != nil {
				return fmt.Errorf("encode form: %w", err)
			}
		}
		if b.File != nil {
			part, err := w.CreateFormFile(b.FileField, b.FileName)
			if err != nil {
				return fmt.Errorf("encode form file: %w", err)
			}
			if _, err := io.Copy(part, b.File); err != nil {
				return fmt.Errorf("copy form file: %w", err)
			}
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("finish form: %w", err)
		}
		reader = buf
		contentType = w.FormDataContentType()
	default:
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(raw)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.decorate(req, contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &ConnectivityError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	return c.consume(resp, dest)
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func (c *Client) decorate(req *http.Request, contentType string) {
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
}

// consume maps a response onto the error taxonomy and, for JSON
// successes, decodes into dest.
func (c *Client) consume(resp *http.Response, dest any) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if dest == nil {
			return nil
		}
		if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrAuthenticationRequired
	}

	msg := resp.Status
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		if payload.Message != "" {
			msg = payload.Message
		} else if payload.Error != "" {
			msg = payload.Error
		}
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
