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
)

// DocCategories are the document categories accepted by ListDocuments.
var DocCategories = []string{"*", "CLS", "RTN", "CSP", "OTH"}

// ListDocumentsArgs holds arguments for listing documents.
type ListDocumentsArgs struct {
	Category  string
	Filter    string
	Generated bool
	Namespace string
}

// ListDocuments lists document names in a namespace as a table.
func ListDocuments(ctx context.Context, lister DocLister, args ListDocumentsArgs) (*ToolResult, error) {
	category := strings.ToUpper(strings.TrimSpace(args.Category))
	if category == "" {
		category = "*"
	}
	if !validCategory(category) {
		return NewError(fmt.Sprintf("Error: unknown category %q (valid: %s)", args.Category, strings.Join(DocCategories, ", "))), nil
	}
	ns := namespaceFor(lister, strings.TrimSpace(args.Namespace))

	payload, err := lister.DocNames(ctx, ns, category, strings.TrimSpace(args.Filter), args.Generated)
	if err != nil {
		return NewError(DescribeError(err, lister.Target(), ns)), nil
	}
	return NewResult(Render(ExtractQueryContent(payload))), nil
}

func validCategory(c string) bool {
	for _, v := range DocCategories {
		if c == v {
			return true
		}
	}
	return false
}
