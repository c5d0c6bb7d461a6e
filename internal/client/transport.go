// Package client implements the browser-side half of corkboard in Go: an
// HTTP transport for the board API and the synchronization engine that
// keeps a local working copy mirrored to the server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mtaverne/corkboard/internal/apperr"
	"github.com/mtaverne/corkboard/internal/board"
)

// Transport performs one request/response exchange per call against a board
// server. Implementations must map missing boards to apperr.ErrNotFound and
// rejected payloads to apperr.ErrValidation; any other error is treated as
// a transport failure by the engine.
type Transport interface {
	CreateBoard(ctx context.Context, notes []board.Note) (*board.Board, error)
	FetchBoard(ctx context.Context, id string) (*board.Board, error)
	ReplaceBoard(ctx context.Context, id string, notes []board.Note) (*board.Board, error)
	RemoveBoard(ctx context.Context, id string) (*board.RemoveSummary, error)
}

// Ensure HTTPTransport implements Transport at compile time.
var _ Transport = (*HTTPTransport)(nil)

const (
	defaultServer    = "127.0.0.1:8080"
	defaultUserAgent = "corkboard/0.1"
	requestTimeout   = 10 * time.Second
)

// HTTPTransport talks to the corkboard HTTP API.
type HTTPTransport struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

// NewHTTPTransport builds a transport for the given host:port or URL. An
// empty server uses the default local address.
func NewHTTPTransport(server string) (*HTTPTransport, error) {
	base, err := parseBaseURL(server)
	if err != nil {
		return nil, err
	}
	return &HTTPTransport{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// BoardURL composes the shareable address for a board identifier.
func (c *HTTPTransport) BoardURL(id string) string {
	return c.baseURL.JoinPath(id).String()
}

// CreateBoard stores notes under a freshly allocated identifier.
func (c *HTTPTransport) CreateBoard(ctx context.Context, notes []board.Note) (*board.Board, error) {
	var rec board.Board
	if err := c.do(ctx, http.MethodPost, "/api/", notes, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// FetchBoard retrieves the board stored under id.
func (c *HTTPTransport) FetchBoard(ctx context.Context, id string) (*board.Board, error) {
	var rec board.Board
	if err := c.do(ctx, http.MethodGet, "/api/"+id, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ReplaceBoard overwrites the notes stored under id.
func (c *HTTPTransport) ReplaceBoard(ctx context.Context, id string, notes []board.Note) (*board.Board, error) {
	var rec board.Board
	if err := c.do(ctx, http.MethodPut, "/api/"+id, notes, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// RemoveBoard deletes the board stored under id.
func (c *HTTPTransport) RemoveBoard(ctx context.Context, id string) (*board.RemoveSummary, error) {
	var sum board.RemoveSummary
	if err := c.do(ctx, http.MethodDelete, "/api/"+id, nil, &sum); err != nil {
		return nil, err
	}
	return &sum, nil
}

func (c *HTTPTransport) do(ctx context.Context, method, path string, body, dest any) error {
	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})

	var payload *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(raw)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), payload)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return statusError(resp)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError maps HTTP failure statuses back onto the shared error
// taxonomy.
func statusError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	msg := body.Error
	if msg == "" {
		msg = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", apperr.ErrNotFound, msg)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", apperr.ErrValidation, msg)
	default:
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, msg)
	}
}

func parseBaseURL(server string) (*url.URL, error) {
	trimmed := strings.TrimSpace(server)
	if trimmed == "" {
		trimmed = defaultServer
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server %q: %w", server, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
