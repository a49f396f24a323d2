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

// Package tools provides the IRIS introspection tools served over MCP and
// the Atelier REST client they share.
//
// # Quick Start
//
//	client, err := tools.NewClient(tools.ClientConfig{
//		BaseURL:   "http://localhost:52773",
//		Namespace: "USER",
//		Username:  "_SYSTEM",
//		Password:  "SYS",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	result, err := tools.GetDocumentSource(ctx, client, tools.GetDocumentSourceArgs{
//		Name: "Sample.Person.cls",
//	})
//	fmt.Println(result.Text)
//
// # Tools
//
//   - GetDocumentSource: fetch a class or routine, probing several names
//   - ExecuteSQL: run a SELECT or WITH statement, rendered as a table
//   - ListDocuments: list document names by category
//   - GetServerInfo: server version and namespaces
//
// # Name resolution
//
// IRIS stores compiled classes as routines, so a class name is looked up
// under its generated routine names. ResolveCandidates produces the ordered
// list and Fetcher walks it:
//
//   - 400 or 404 moves on to the next name
//   - 502, 503 or 504 retries the same name once after DefaultBackoff, then aborts
//   - 401 or 403 aborts with an authentication message
//   - an unreachable server aborts with a connectivity message
//   - anything else aborts with a generic message
//
// When every name is missing the result lists each name tried.
//
// # Tables
//
// Render turns an untyped query payload into a Markdown table. It accepts
// lists of objects, lists of lists (with an optional header row) and lists
// of scalars, and falls back to Summarize for anything else. Payloads are
// decoded with DecodeOrdered so columns keep the order the server sent.
//
// # Error Handling
//
// Tool functions report remote failures as a ToolResult with IsError set
// rather than as a Go error, so the host always receives text.
package tools
