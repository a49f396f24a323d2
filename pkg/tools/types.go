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

import "context"

// ToolResult represents the result of a tool execution.
type ToolResult struct {
	Text    string
	IsError bool
}

// NewResult creates a successful tool result.
func NewResult(text string) *ToolResult {
	return &ToolResult{Text: text}
}

// NewError creates an error tool result.
func NewError(text string) *ToolResult {
	return &ToolResult{Text: text, IsError: true}
}

// Endpoint identifies the server a tool talks to.
type Endpoint interface {
	// Target is the server base URL, used in diagnostics.
	Target() string
	// DefaultNamespace is used when a call does not name a namespace.
	DefaultNamespace() string
}

// DocumentSource fetches documents by exact name.
type DocumentSource interface {
	Endpoint
	GetDocument(ctx context.Context, namespace, name string) (*Document, error)
}

// QueryRunner executes SQL statements.
type QueryRunner interface {
	Endpoint
	Query(ctx context.Context, namespace, sql string, params []any) (any, error)
}

// DocLister lists document names.
type DocLister interface {
	Endpoint
	DocNames(ctx context.Context, namespace, category, filter string, generated bool) (any, error)
}

// InfoSource reports server metadata.
type InfoSource interface {
	Endpoint
	ServerInfo(ctx context.Context) (any, error)
}

// Atelier is the full set of operations the tools need. *Client implements it.
type Atelier interface {
	DocumentSource
	QueryRunner
	DocLister
	InfoSource
}

var _ Atelier = (*Client)(nil)

// namespaceFor picks the call's namespace or the endpoint default.
func namespaceFor(e Endpoint, ns string) string {
	if ns != "" {
		return ns
	}
	return e.DefaultNamespace()
}
