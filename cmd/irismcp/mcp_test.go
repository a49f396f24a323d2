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

package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	irtest "github.com/kraklabs/irismcp/internal/testing"
	"github.com/kraklabs/irismcp/pkg/tools"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestToolbox wires a toolbox to a fake Atelier server with retries that
// do not sleep.
func newTestToolbox(t *testing.T, fake *irtest.FakeAtelier) *toolbox {
	t.Helper()
	client, err := tools.NewClient(tools.ClientConfig{
		BaseURL:   fake.URL(),
		Namespace: "USER",
		Timeout:   5 * time.Second,
		Logger:    discardLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	tb := newToolbox(client, discardLogger())
	tb.fetcher.Sleep = func(context.Context, time.Duration) error { return nil }
	return tb
}

// callText runs a tool and returns its single text block.
func callText(t *testing.T, tb *toolbox, name, args string) (string, bool) {
	t.Helper()
	res := tb.call(context.Background(), name, json.RawMessage(args))
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return text.Text, res.IsError
}

func TestToolDefs(t *testing.T) {
	require.Len(t, toolHandlers, len(toolDefs))

	names := make([]string, 0, len(toolDefs))
	for _, d := range toolDefs {
		names = append(names, d.name)
		assert.NotEmpty(t, d.description, d.name)
		assert.Contains(t, toolHandlers, d.name)

		var schema map[string]any
		require.NoError(t, json.Unmarshal(d.schema, &schema), d.name)
		assert.Equal(t, "object", schema["type"], d.name)
	}
	assert.Equal(t, []string{"iris_get_document", "iris_execute_sql", "iris_list_documents", "iris_server_info"}, names)
}

func TestCall_GetDocument(t *testing.T) {
	fake := irtest.NewFakeAtelier(t)
	fake.AddDocument("USER", "Demo.Hello.1.int", "ROUTINE Demo.Hello.1 [Type=INT]", "Hello() public { quit 1 }")
	tb := newTestToolbox(t, fake)

	text, isErr := callText(t, tb, "iris_get_document", `{"name": "Demo.Hello.cls"}`)
	assert.False(t, isErr)
	assert.Contains(t, text, "**Document**: Demo.Hello.1.int")
	assert.Contains(t, text, "**Namespace**: USER")
	assert.Contains(t, text, "Hello() public { quit 1 }")
	assert.Equal(t, []string{"Demo.Hello.1.int"}, fake.DocLookups())
}

func TestCall_GetDocument_RetryThenNextCandidate(t *testing.T) {
	fake := irtest.NewFakeAtelier(t)
	fake.AddDocument("USER", "Demo.Hello.int", "ROUTINE Demo.Hello")
	fake.ScriptStatus("Demo.Hello.1.int", http.StatusServiceUnavailable)
	tb := newTestToolbox(t, fake)

	text, isErr := callText(t, tb, "iris_get_document", `{"name": "Demo.Hello.cls"}`)
	assert.False(t, isErr)
	assert.Contains(t, text, "**Document**: Demo.Hello.int")
	assert.Equal(t, []string{"Demo.Hello.1.int", "Demo.Hello.1.int", "Demo.Hello.int"}, fake.DocLookups())
}

func TestCall_GetDocument_NotFound(t *testing.T) {
	fake := irtest.NewFakeAtelier(t)
	tb := newTestToolbox(t, fake)

	text, isErr := callText(t, tb, "iris_get_document", `{"name": "Missing.Thing", "namespace": "APP"}`)
	assert.False(t, isErr)
	assert.Contains(t, text, "Document not found in namespace APP")
	assert.Contains(t, text, "- Missing.Thing.1.int")
	assert.Contains(t, text, "- Missing.Thing.int")
	assert.Contains(t, text, "- Missing.Thing")
}

func TestCall_GetDocument_AuthAborts(t *testing.T) {
	fake := irtest.NewFakeAtelier(t)
	fake.ScriptStatus("Demo.Hello.1.int", http.StatusUnauthorized)
	tb := newTestToolbox(t, fake)

	text, isErr := callText(t, tb, "iris_get_document", `{"name": "Demo.Hello.cls"}`)
	assert.True(t, isErr)
	assert.Contains(t, text, "Authentication failed (HTTP 401)")
	assert.Equal(t, []string{"Demo.Hello.1.int"}, fake.DocLookups())
}

func TestCall_GetDocument_EmptyName(t *testing.T) {
	tb := newTestToolbox(t, irtest.NewFakeAtelier(t))
	text, isErr := callText(t, tb, "iris_get_document", `{}`)
	assert.True(t, isErr)
	assert.Equal(t, "Error: name cannot be empty", text)
}

func TestCall_ExecuteSQL(t *testing.T) {
	fake := irtest.NewFakeAtelier(t)
	var gotNS, gotSQL string
	fake.SetQueryFunc(func(ns, sql string) (int, string) {
		gotNS, gotSQL = ns, sql
		return http.StatusOK, irtest.Envelope([]map[string]any{
			{"Name": "Demo.Hello", "Super": "%RegisteredObject"},
		})
	})
	tb := newTestToolbox(t, fake)

	text, isErr := callText(t, tb, "iris_execute_sql",
		`{"query": "  SELECT Name, Super FROM %Dictionary.ClassDefinition WHERE Name = ? ", "parameters": ["Demo.Hello"], "namespace": "APP"}`)
	assert.False(t, isErr)
	assert.Equal(t, "APP", gotNS)
	assert.Equal(t, "SELECT Name, Super FROM %Dictionary.ClassDefinition WHERE Name = ?", gotSQL)
	assert.Contains(t, text, "| Name | Super |")
	assert.Contains(t, text, "| Demo.Hello | %RegisteredObject |")

	reqs := fake.Requests()
	require.NotEmpty(t, reqs)
	assert.Contains(t, reqs[len(reqs)-1].Body, `"parameters":["Demo.Hello"]`)
}

func TestCall_ExecuteSQL_RejectsWrites(t *testing.T) {
	fake := irtest.NewFakeAtelier(t)
	tb := newTestToolbox(t, fake)

	text, isErr := callText(t, tb, "iris_execute_sql", `{"query": "DELETE FROM Sample.Person"}`)
	assert.True(t, isErr)
	assert.Contains(t, text, "read-only")
	assert.Empty(t, fake.Requests())
}

func TestCall_ExecuteSQL_EmptyResult(t *testing.T) {
	fake := irtest.NewFakeAtelier(t)
	tb := newTestToolbox(t, fake)

	text, isErr := callText(t, tb, "iris_execute_sql", `{"query": "SELECT 1 WHERE 1 = 0"}`)
	assert.False(t, isErr)
	assert.Equal(t, tools.EmptyResultMarker, text)
}

func TestCall_ListDocuments(t *testing.T) {
	fake := irtest.NewFakeAtelier(t)
	fake.AddDocument("USER", "Demo.Hello.cls")
	fake.AddDocument("USER", "Demo.Util.mac")
	tb := newTestToolbox(t, fake)

	text, isErr := callText(t, tb, "iris_list_documents", `{"category": "cls"}`)
	assert.False(t, isErr)
	assert.Contains(t, text, "Demo.Hello.cls")
	assert.NotContains(t, text, "Demo.Util.mac")

	text, isErr = callText(t, tb, "iris_list_documents", `{"category": "XYZ"}`)
	assert.True(t, isErr)
	assert.Contains(t, text, "unknown category")
}

func TestCall_ServerInfo(t *testing.T) {
	fake := irtest.NewFakeAtelier(t)
	fake.AddDocument("USER", "A.cls")
	tb := newTestToolbox(t, fake)

	text, isErr := callText(t, tb, "iris_server_info", ``)
	assert.False(t, isErr)
	assert.Contains(t, text, "**Server**: "+fake.URL())
	assert.Contains(t, text, "version="+irtest.DefaultVersion)
	assert.Contains(t, text, "**Namespaces**:\n- USER")
}

func TestCall_Errors(t *testing.T) {
	tb := newTestToolbox(t, irtest.NewFakeAtelier(t))

	text, isErr := callText(t, tb, "iris_drop_database", `{}`)
	assert.True(t, isErr)
	assert.Contains(t, text, `unknown tool "iris_drop_database"`)

	text, isErr = callText(t, tb, "iris_get_document", `{"name": 42}`)
	assert.True(t, isErr)
	assert.Contains(t, text, "invalid arguments")
}

func TestMCPSession(t *testing.T) {
	fake := irtest.NewFakeAtelier(t)
	fake.AddDocument("USER", "Demo.Hello.1.int", "ROUTINE Demo.Hello.1")
	tb := newTestToolbox(t, fake)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	done := make(chan error, 1)
	go func() { done <- serveMCP(ctx, tb, serverTransport, "") }()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	listed, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range listed.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"iris_get_document", "iris_execute_sql", "iris_list_documents", "iris_server_info"}, names)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "iris_get_document",
		Arguments: map[string]any{"name": "Demo.Hello.cls"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "ROUTINE Demo.Hello.1")

	res, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "iris_execute_sql",
		Arguments: map[string]any{"query": "UPDATE Sample.Person SET Name = 'x'"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serveMCP did not return after cancel")
	}
	_ = session.Close()
}
