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
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kraklabs/irismcp/pkg/tools"
)

// toolHandler runs one tool against the Atelier client.
type toolHandler func(ctx context.Context, tb *toolbox, args json.RawMessage) (*tools.ToolResult, error)

// toolDef is one MCP tool: its advertised schema and its handler.
type toolDef struct {
	name        string
	description string
	schema      json.RawMessage
	handler     toolHandler
}

var toolDefs = []toolDef{
	{
		name: "iris_get_document",
		description: "Get the source of an IRIS class or routine. Accepts Package.Class.cls, " +
			"routine names with .int/.mac/.inc, or a bare name (Package.Name), which is tried " +
			"as intermediate code first and then as given.",
		schema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {"type": "string", "description": "Document name, e.g. %Library.String.cls or MyApp.Utils"},
				"namespace": {"type": "string", "description": "IRIS namespace (default: configured namespace)"}
			},
			"required": ["name"]
		}`),
		handler: handleGetDocument,
	},
	{
		name: "iris_execute_sql",
		description: "Run a read-only SQL query (SELECT or WITH) and return the rows as a " +
			"markdown table. Use ? placeholders with the parameters array.",
		schema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "SQL statement (SELECT or WITH only)"},
				"parameters": {"type": "array", "items": {}, "description": "Values for ? placeholders"},
				"namespace": {"type": "string", "description": "IRIS namespace (default: configured namespace)"}
			},
			"required": ["query"]
		}`),
		handler: handleExecuteSQL,
	},
	{
		name:        "iris_list_documents",
		description: "List document names in a namespace, optionally filtered by category and name pattern.",
		schema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"category": {"type": "string", "enum": ["*", "CLS", "RTN", "CSP", "OTH"], "description": "Document category (default: *)"},
				"filter": {"type": "string", "description": "Name filter, e.g. Ens* or %Library.*"},
				"generated": {"type": "boolean", "description": "Include generated documents"},
				"namespace": {"type": "string", "description": "IRIS namespace (default: configured namespace)"}
			}
		}`),
		handler: handleListDocuments,
	},
	{
		name:        "iris_server_info",
		description: "Show the IRIS server version and the namespaces it exposes.",
		schema:      json.RawMessage(`{"type": "object"}`),
		handler:     handleServerInfo,
	},
}

// toolHandlers maps tool names to handlers.
var toolHandlers = func() map[string]toolHandler {
	m := make(map[string]toolHandler, len(toolDefs))
	for _, d := range toolDefs {
		m[d.name] = d.handler
	}
	return m
}()

// toolbox is the state shared by every tool call: one client, one logger.
type toolbox struct {
	client  tools.Atelier
	fetcher *tools.Fetcher
	logger  *slog.Logger
}

func newToolbox(client tools.Atelier, logger *slog.Logger) *toolbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &toolbox{
		client:  client,
		fetcher: &tools.Fetcher{Logger: logger},
		logger:  logger,
	}
}

// newMCPServer registers every tool on a fresh MCP server.
func newMCPServer(tb *toolbox) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "irismcp",
		Version: version,
	}, nil)

	for _, d := range toolDefs {
		name := d.name
		server.AddTool(&mcp.Tool{
			Name:        d.name,
			Description: d.description,
			InputSchema: d.schema,
		}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var args json.RawMessage
			if req != nil && req.Params != nil {
				args = req.Params.Arguments
			}
			return tb.call(ctx, name, args), nil
		})
	}
	return server
}

// call runs a tool and converts its result into exactly one text block.
// Handler errors become error results; the MCP session never sees them.
func (tb *toolbox) call(ctx context.Context, name string, args json.RawMessage) *mcp.CallToolResult {
	start := time.Now()

	var res *tools.ToolResult
	h, ok := toolHandlers[name]
	if !ok {
		res = tools.NewError(fmt.Sprintf("Error: unknown tool %q", name))
	} else {
		var err error
		res, err = h(ctx, tb, args)
		if err != nil {
			res = tools.NewError("Error: " + err.Error())
		}
		if res == nil {
			res = tools.NewError("Error: tool returned no result")
		}
	}

	tools.RecordToolCall(name, res.IsError)
	tb.logger.Info("mcp.tool.call",
		"tool", name,
		"is_error", res.IsError,
		"elapsed", time.Since(start),
	)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: res.Text}},
		IsError: res.IsError,
	}
}

// decodeArgs unmarshals tool arguments. Empty arguments leave dst untouched.
func decodeArgs(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func handleGetDocument(ctx context.Context, tb *toolbox, raw json.RawMessage) (*tools.ToolResult, error) {
	var in struct {
		Name      string `json:"name"`
		Namespace string `json:"namespace"`
	}
	if err := decodeArgs(raw, &in); err != nil {
		return nil, err
	}
	return tools.GetDocumentSource(ctx, tb.client, tools.GetDocumentSourceArgs{
		Name:      in.Name,
		Namespace: in.Namespace,
		Fetcher:   tb.fetcher,
	})
}

func handleExecuteSQL(ctx context.Context, tb *toolbox, raw json.RawMessage) (*tools.ToolResult, error) {
	var in struct {
		Query      string `json:"query"`
		Parameters []any  `json:"parameters"`
		Namespace  string `json:"namespace"`
	}
	if err := decodeArgs(raw, &in); err != nil {
		return nil, err
	}
	return tools.ExecuteSQL(ctx, tb.client, tools.ExecuteSQLArgs{
		Query:      in.Query,
		Parameters: in.Parameters,
		Namespace:  in.Namespace,
	})
}

func handleListDocuments(ctx context.Context, tb *toolbox, raw json.RawMessage) (*tools.ToolResult, error) {
	var in struct {
		Category  string `json:"category"`
		Filter    string `json:"filter"`
		Generated bool   `json:"generated"`
		Namespace string `json:"namespace"`
	}
	if err := decodeArgs(raw, &in); err != nil {
		return nil, err
	}
	return tools.ListDocuments(ctx, tb.client, tools.ListDocumentsArgs{
		Category:  in.Category,
		Filter:    in.Filter,
		Generated: in.Generated,
		Namespace: in.Namespace,
	})
}

func handleServerInfo(ctx context.Context, tb *toolbox, _ json.RawMessage) (*tools.ToolResult, error) {
	return tools.GetServerInfo(ctx, tb.client)
}
