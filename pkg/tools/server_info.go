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
	"context"
	"encoding/json"
	"strings"
)

// GetServerInfo reports the server version and the namespaces it exposes.
func GetServerInfo(ctx context.Context, src InfoSource) (*ToolResult, error) {
	payload, err := src.ServerInfo(ctx)
	if err != nil {
		return NewError(DescribeError(err, src.Target(), "")), nil
	}

	var sb strings.Builder
	sb.WriteString("**Server**: ")
	sb.WriteString(src.Target())
	sb.WriteString("\n**Info**: ")
	sb.WriteString(Summarize(payload))

	if names := ServerNamespaces(payload); len(names) > 0 {
		sb.WriteString("\n\n**Namespaces**:")
		for _, ns := range names {
			sb.WriteString("\n- ")
			sb.WriteString(ns)
		}
	}
	return NewResult(sb.String()), nil
}

// ServerNamespaces extracts the namespace list from a server info payload.
func ServerNamespaces(payload any) []string {
	content := ExtractQueryContent(payload)
	raw, ok := fieldOf(content, "namespaces")
	if !ok {
		return nil
	}
	list, _ := asSequence(raw)
	names := make([]string, 0, len(list))
	for _, v := range list {
		if s := FormatCell(v); s != "" {
			names = append(names, s)
		}
	}
	return names
}

// ServerVersion returns the version reported in a server info payload, or
// "" when none is present.
func ServerVersion(payload any) string {
	b, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	v, _ := extractVersion(string(b))
	return v
}
