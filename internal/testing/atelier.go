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

package testing

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
)

// DefaultVersion is the version string reported by a FakeAtelier.
const DefaultVersion = "IRIS for UNIX (Ubuntu Server LTS for x86-64) 2024.1 (Build 267U)"

// Request is one request seen by a FakeAtelier.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// FakeAtelier is an httptest server speaking the subset of the Atelier REST
// API that irismcp uses. Responses are programmable per test.
//
// Example:
//
//	fake := testing.NewFakeAtelier(t)
//	fake.AddDocument("USER", "Demo.Hello.1.int", "ROUTINE Demo.Hello.1", " quit")
//	fake.ScriptStatus("Demo.Hello.1.int", http.StatusServiceUnavailable)
//
//	client, _ := tools.NewClient(tools.ClientConfig{BaseURL: fake.URL(), Namespace: "USER"})
type FakeAtelier struct {
	Server *httptest.Server

	// Username and Password, when set, are required as Basic Auth.
	Username string
	Password string

	mu         sync.Mutex
	docs       map[string]map[string][]string
	statuses   map[string][]int
	info       *response
	query      *response
	queryFunc  func(namespace, sql string) (int, string)
	docNames   *response
	requests   []Request
	docLookups []string
}

type response struct {
	status int
	body   string
}

// NewFakeAtelier starts a fake server and closes it when the test ends.
func NewFakeAtelier(t testing.TB) *FakeAtelier {
	t.Helper()
	f := &FakeAtelier{
		docs:     make(map[string]map[string][]string),
		statuses: make(map[string][]int),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the server base URL.
func (f *FakeAtelier) URL() string { return f.Server.URL }

// AddDocument stores a document in a namespace.
func (f *FakeAtelier) AddDocument(namespace, name string, lines ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docs[namespace] == nil {
		f.docs[namespace] = make(map[string][]string)
	}
	f.docs[namespace][name] = lines
}

// ScriptStatus queues HTTP status codes returned for lookups of a document
// name, one per request, before normal handling resumes.
func (f *FakeAtelier) ScriptStatus(name string, codes ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[name] = append(f.statuses[name], codes...)
}

// SetServerInfo replaces the GET /api/atelier/ response.
func (f *FakeAtelier) SetServerInfo(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.info = &response{status: status, body: body}
}

// SetQueryResponse fixes the response of the query action.
func (f *FakeAtelier) SetQueryResponse(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.query = &response{status: status, body: body}
}

// SetQueryFunc answers the query action dynamically.
func (f *FakeAtelier) SetQueryFunc(fn func(namespace, sql string) (int, string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryFunc = fn
}

// SetDocNamesResponse fixes the response of the docnames endpoint. Without
// it the stored documents are listed.
func (f *FakeAtelier) SetDocNamesResponse(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docNames = &response{status: status, body: body}
}

// Requests returns every request received so far.
func (f *FakeAtelier) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

// DocLookups returns the document names requested, in order.
func (f *FakeAtelier) DocLookups() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.docLookups...)
}

// Envelope wraps content the way Atelier does.
func Envelope(content any) string {
	b, err := json.Marshal(map[string]any{
		"status":  map[string]any{"errors": []any{}, "summary": ""},
		"console": []any{},
		"result":  map[string]any{"content": content},
	})
	if err != nil {
		panic(err)
	}
	return string(b)
}

// ErrorEnvelope is an Atelier body reporting a single error.
func ErrorEnvelope(msg string) string {
	b, _ := json.Marshal(map[string]any{
		"status":  map[string]any{"errors": []any{map[string]any{"error": msg}}, "summary": msg},
		"console": []any{},
		"result":  map[string]any{},
	})
	return string(b)
}

func (f *FakeAtelier) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Body:   string(body),
	})

	if f.Username != "" {
		user, pass, ok := r.BasicAuth()
		if !ok || user != f.Username || pass != f.Password {
			write(w, http.StatusUnauthorized, "")
			return
		}
	}

	if r.URL.Path == "/api/atelier/" || r.URL.Path == "/api/atelier" {
		if f.info != nil {
			write(w, f.info.status, f.info.body)
			return
		}
		write(w, http.StatusOK, f.defaultInfo())
		return
	}

	rest, ok := strings.CutPrefix(r.URL.Path, "/api/atelier/v1/")
	if !ok {
		write(w, http.StatusNotFound, "")
		return
	}
	parts := strings.SplitN(rest, "/", 3)
	if len(parts) != 3 {
		write(w, http.StatusNotFound, "")
		return
	}
	ns, kind, arg := parts[0], parts[1], parts[2]

	switch {
	case kind == "doc" && r.Method == http.MethodGet:
		f.serveDoc(w, ns, arg)
	case kind == "action" && arg == "query" && r.Method == http.MethodPost:
		f.serveQuery(w, ns, body)
	case kind == "docnames" && r.Method == http.MethodGet:
		f.serveDocNames(w, ns, arg)
	default:
		write(w, http.StatusNotFound, ErrorEnvelope("unknown endpoint"))
	}
}

func (f *FakeAtelier) serveDoc(w http.ResponseWriter, ns, name string) {
	f.docLookups = append(f.docLookups, name)
	if codes := f.statuses[name]; len(codes) > 0 {
		f.statuses[name] = codes[1:]
		write(w, codes[0], ErrorEnvelope(http.StatusText(codes[0])))
		return
	}
	lines, ok := f.docs[ns][name]
	if !ok {
		write(w, http.StatusNotFound, ErrorEnvelope("ERROR #16005: Document '"+name+"' does not exist"))
		return
	}
	b, _ := json.Marshal(map[string]any{
		"status":  map[string]any{"errors": []any{}, "summary": ""},
		"console": []any{},
		"result": map[string]any{
			"name":    name,
			"db":      ns,
			"ts":      "2024-05-01 10:00:00.000",
			"cat":     category(name),
			"content": lines,
		},
	})
	write(w, http.StatusOK, string(b))
}

func (f *FakeAtelier) serveQuery(w http.ResponseWriter, ns string, body []byte) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		write(w, http.StatusBadRequest, ErrorEnvelope("invalid request body"))
		return
	}
	switch {
	case f.queryFunc != nil:
		status, resp := f.queryFunc(ns, req.Query)
		write(w, status, resp)
	case f.query != nil:
		write(w, f.query.status, f.query.body)
	default:
		write(w, http.StatusOK, Envelope([]any{}))
	}
}

func (f *FakeAtelier) serveDocNames(w http.ResponseWriter, ns, cat string) {
	if f.docNames != nil {
		write(w, f.docNames.status, f.docNames.body)
		return
	}
	names := make([]string, 0, len(f.docs[ns]))
	for name := range f.docs[ns] {
		if cat == "*" || strings.EqualFold(category(name), cat) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	rows := make([]any, len(names))
	for i, name := range names {
		rows[i] = map[string]any{"name": name, "cat": category(name), "db": ns, "gen": false}
	}
	write(w, http.StatusOK, Envelope(rows))
}

func (f *FakeAtelier) defaultInfo() string {
	namespaces := make([]string, 0, len(f.docs))
	for ns := range f.docs {
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)
	return Envelope(map[string]any{
		"version":    DefaultVersion,
		"id":         "FAKE-0001",
		"api":        8,
		"namespaces": namespaces,
	})
}

func category(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".cls"):
		return "CLS"
	case strings.HasSuffix(lower, ".int"), strings.HasSuffix(lower, ".mac"), strings.HasSuffix(lower, ".inc"):
		return "RTN"
	case strings.HasSuffix(lower, ".csp"):
		return "CSP"
	}
	return "OTH"
}

func write(w http.ResponseWriter, status int, body string) {
	if body != "" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
