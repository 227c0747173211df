// Package apiclient is the single request dispatcher for the FitSphere
// REST backend. Every request carries the session's bearer token; a 401
// from any endpoint clears the session and surfaces as *AuthError.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
	"github.com/vikrantan5/FitSphere-sub000/internal/session"
)

// TokenSource supplies the bearer token and forgets the session on 401.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// Observer receives one call per finished request. route is the path
// template (e.g. /api/bookings/{id}), status is 0 on transport errors.
type Observer interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// Client talks to the backend. The zero TokenSource sends anonymous requests.
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   TokenSource
	observer Observer
}

// New creates an anonymous client.
func New(baseURL string, httpClient *http.Client, observer Observer) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     httpClient,
		observer: observer,
	}
}

// For returns a copy bound to a session's token source.
func (c *Client) For(tokens TokenSource) *Client {
	cp := *c
	cp.tokens = tokens
	return &cp
}

// call describes one backend request.
type call struct {
	method      string
	route       string // for metrics and logs
	path        string
	query       url.Values
	body        any       // JSON encoded when set
	rawBody     io.Reader // sent as is when set
	contentType string
}

func (c *Client) newRequest(ctx context.Context, cl call) (*http.Request, error) {
	target := c.baseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	var body io.Reader
	contentType := cl.contentType
	switch {
	case cl.rawBody != nil:
		body = cl.rawBody
	case cl.body != nil:
		raw, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// send performs the request and returns the raw body of a 2xx response.
func (c *Client) send(ctx context.Context, cl call) ([]byte, error) {
	req, err := c.newRequest(ctx, cl)
	if err != nil {
		return nil, &RequestFailure{Detail: genericFailureMessage, Err: err}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(cl, 0, start)
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		log.Printf("ERROR: %s %s failed: %v", cl.method, cl.route, err)
		return nil, &RequestFailure{Detail: "Unable to reach the server. Please check your connection.", Err: err}
	}
	defer resp.Body.Close()
	c.observe(cl, resp.StatusCode, start)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestFailure{Status: resp.StatusCode, Detail: genericFailureMessage, Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if c.tokens != nil {
			if clearErr := c.tokens.Clear(ctx); clearErr != nil {
				log.Printf("ERROR: Failed to clear session after 401: %v", clearErr)
			}
		}
		return nil, &AuthError{Status: resp.StatusCode, Detail: extractDetail(raw), RedirectTo: session.LoginPath}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := extractDetail(raw)
		if detail == "" {
			detail = genericFailureMessage
		}
		return nil, &RequestFailure{Status: resp.StatusCode, Detail: detail}
	}
	return raw, nil
}

// do sends the call and decodes a JSON response into out, then validates it.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	raw, err := c.send(ctx, cl)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return &RequestFailure{Detail: "Malformed response from server.", Err: errors.New("empty body")}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Printf("ERROR: Decoding %s %s response: %v", cl.method, cl.route, err)
		return &RequestFailure{Detail: "Malformed response from server.", Err: err}
	}
	if err := domain.Validate(out); err != nil {
		log.Printf("ERROR: Rejecting %s %s response: %v", cl.method, cl.route, err)
		return &RequestFailure{Detail: "Malformed response from server.", Err: err}
	}
	return nil
}

func (c *Client) observe(cl call, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveRequest(cl.method, cl.route, status, time.Since(start))
	}
}

func pathEscape(id string) string {
	return url.PathEscape(id)
}
