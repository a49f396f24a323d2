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
	"fmt"
	"strings"

	"github.com/kraklabs/irismcp/internal/contract"
)

// ExecuteSQLArgs holds arguments for running a SQL query.
type ExecuteSQLArgs struct {
	Query      string
	Namespace  string
	Parameters []any
}

// ExecuteSQL runs a read-only SQL statement and renders the rows as a
// Markdown table.
func ExecuteSQL(ctx context.Context, runner QueryRunner, args ExecuteSQLArgs) (*ToolResult, error) {
	query := strings.TrimSpace(args.Query)
	if v := contract.ValidateQuery(query); !v.OK {
		return NewError(fmt.Sprintf("Error: %s", v.Message)), nil
	}
	ns := namespaceFor(runner, strings.TrimSpace(args.Namespace))

	payload, err := runner.Query(ctx, ns, query, args.Parameters)
	if err != nil {
		return NewError(DescribeError(err, runner.Target(), ns)), nil
	}
	return NewResult(Render(ExtractQueryContent(payload))), nil
}
