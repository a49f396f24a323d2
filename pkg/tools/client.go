// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single Atelier request.
const DefaultTimeout = 30 * time.Second

// atelierRoot is the Atelier API prefix below the server base URL.
const atelierRoot = "/api/atelier"

// Version is reported in the User-Agent header. main sets it at startup.
var Version = "dev"

// ClientConfig configures NewClient.
type ClientConfig struct {
	// BaseURL is the web server root, e.g. http://localhost:52773 or
	// https://host/irisinstance. The Atelier prefix is appended by the client.
	BaseURL            string
	Namespace          string
	Username           string
	Password           string
	Timeout            time.Duration
	InsecureSkipVerify bool
	Logger             *slog.Logger
}

// Client talks to the IRIS Atelier REST API. It is safe for concurrent use.
type Client struct {
	BaseURL    string
	Namespace  string
	Username   string
	Password   string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewClient validates cfg and builds a client. It does not contact the server.
func NewClient(cfg ClientConfig) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("base URL is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", cfg.BaseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for self-signed dev instances
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		BaseURL:   base,
		Namespace: cfg.Namespace,
		Username:  cfg.Username,
		Password:  cfg.Password,
		HTTPClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		Logger: logger,
	}, nil
}

// Target returns the server base URL for messages.
func (c *Client) Target() string { return c.BaseURL }

// DefaultNamespace returns the namespace used when a call names none.
func (c *Client) DefaultNamespace() string { return c.Namespace }

// Close releases idle connections.
func (c *Client) Close() {
	c.HTTPClient.CloseIdleConnections()
}

// Document is a source document returned by the doc endpoint.
type Document struct {
	Name      string
	Category  string
	Database  string
	Timestamp string
	Content   []string
}

// Text returns the document body with lines joined by newlines.
func (d *Document) Text() string {
	return strings.Join(d.Content, "\n")
}

// AtelierError is reported when the server answers 2xx but lists errors in
// the response status block.
type AtelierError struct {
	Summary string
	Errors  []string
}

func (e *AtelierError) Error() string {
	if e.Summary != "" {
		return "atelier: " + e.Summary
	}
	return "atelier: " + strings.Join(e.Errors, "; ")
}

// ServerInfo returns the decoded payload of GET /api/atelier/.
func (c *Client) ServerInfo(ctx context.Context) (any, error) {
	return c.do(ctx, "server_info", http.MethodGet, atelierRoot+"/", nil, nil)
}

// GetDocument fetches one document by its exact server-side name.
func (c *Client) GetDocument(ctx context.Context, namespace, name string) (*Document, error) {
	path := fmt.Sprintf("%s/v1/%s/doc/%s", atelierRoot, url.PathEscape(c.namespaceOr(namespace)), url.PathEscape(name))
	payload, err := c.do(ctx, "doc", http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parseDocument(payload, name)
}

// Query runs a SQL statement through the query action and returns the
// decoded response payload.
func (c *Client) Query(ctx context.Context, namespace, sql string, params []any) (any, error) {
	if params == nil {
		params = []any{}
	}
	path := fmt.Sprintf("%s/v1/%s/action/query", atelierRoot, url.PathEscape(c.namespaceOr(namespace)))
	body := map[string]any{
		"query":      sql,
		"parameters": params,
	}
	return c.do(ctx, "query", http.MethodPost, path, nil, body)
}

// DocNames lists documents of a category ("*", "CLS", "RTN", "CSP", "OTH").
func (c *Client) DocNames(ctx context.Context, namespace, category, filter string, generated bool) (any, error) {
	if category == "" {
		category = "*"
	}
	path := fmt.Sprintf("%s/v1/%s/docnames/%s", atelierRoot, url.PathEscape(c.namespaceOr(namespace)), url.PathEscape(category))
	q := url.Values{}
	if filter != "" {
		q.Set("filter", filter)
	}
	if generated {
		q.Set("generated", "1")
	} else {
		q.Set("generated", "0")
	}
	return c.do(ctx, "docnames", http.MethodGet, path, q, nil)
}

func (c *Client) namespaceOr(ns string) string {
	if ns = strings.TrimSpace(ns); ns != "" {
		return ns
	}
	return c.Namespace
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, query url.Values, body any) (any, error) {
	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "irismcp/"+Version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Username != "" {
		req.SetBasicAuth(c.Username, c.Password)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		recordAtelierRequest(endpoint, 0, time.Since(start))
		c.Logger.Debug("atelier.request", "endpoint", endpoint, "method", method, "path", path, "err", err)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	recordAtelierRequest(endpoint, resp.StatusCode, elapsed)
	c.Logger.Debug("atelier.request",
		"endpoint", endpoint,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"elapsed_ms", elapsed.Milliseconds(),
	)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(respBody),
			URL:        c.BaseURL + path,
		}
	}

	payload, err := DecodeOrdered(respBody)
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if aerr := statusErrors(payload); aerr != nil {
		return nil, aerr
	}
	return payload, nil
}

// statusErrors reads the status block of an Atelier envelope.
func statusErrors(payload any) error {
	status, ok := fieldOf(payload, "status")
	if !ok {
		return nil
	}
	var msgs []string
	if errs, ok := fieldOf(status, "errors"); ok {
		list, _ := asSequence(errs)
		for _, e := range list {
			if isMapping(e) {
				if msg := stringField(e, "error"); msg != "" {
					msgs = append(msgs, msg)
					continue
				}
			}
			msgs = append(msgs, FormatCell(e))
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return &AtelierError{Summary: stringField(status, "summary"), Errors: msgs}
}

// parseDocument reads a document from the doc endpoint payload. The result
// wrapper is optional; without it the fields are read from the top level.
func parseDocument(payload any, requested string) (*Document, error) {
	body := payload
	if result, ok := fieldOf(payload, "result"); ok && isMapping(result) {
		body = result
	}
	if !isMapping(body) {
		return nil, fmt.Errorf("parse response: document payload is %s", Summarize(body))
	}

	doc := &Document{
		Name:      stringField(body, "name"),
		Category:  stringField(body, "cat"),
		Database:  stringField(body, "db"),
		Timestamp: stringField(body, "ts"),
	}
	if doc.Name == "" {
		doc.Name = requested
	}

	content, ok := fieldOf(body, "content")
	if !ok {
		return nil, fmt.Errorf("parse response: document %s has no content", doc.Name)
	}
	switch v := content.(type) {
	case string:
		doc.Content = strings.Split(strings.ReplaceAll(v, "\r\n", "\n"), "\n")
	case nil:
		doc.Content = []string{}
	default:
		lines, ok := asSequence(v)
		if !ok {
			return nil, fmt.Errorf("parse response: document %s content is not a line list", doc.Name)
		}
		doc.Content = make([]string, len(lines))
		for i, line := range lines {
			doc.Content[i] = FormatCell(line)
		}
	}
	return doc, nil
}
