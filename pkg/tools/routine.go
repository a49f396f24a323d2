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

// GetDocumentSourceArgs holds arguments for fetching a document's source.
type GetDocumentSourceArgs struct {
	// Name is a class (Pkg.Class.cls), routine (Foo.int, Foo.mac, Foo.inc)
	// or bare name (Foo.Bar).
	Name      string
	Namespace string
	// Fetcher overrides the candidate walk settings. Nil uses defaults.
	Fetcher *Fetcher
}

// GetDocumentSource resolves a user-supplied name to the server's document
// names and returns the first one that exists.
func GetDocumentSource(ctx context.Context, src DocumentSource, args GetDocumentSourceArgs) (*ToolResult, error) {
	name := strings.TrimSpace(args.Name)
	if name == "" {
		return NewError("Error: name cannot be empty"), nil
	}
	ns := namespaceFor(src, strings.TrimSpace(args.Namespace))

	f := Fetcher{}
	if args.Fetcher != nil {
		f = *args.Fetcher
	}
	f.Target = src.Target()
	f.Namespace = ns

	candidates := ResolveCandidates(name)
	res := f.Fetch(ctx, candidates, func(ctx context.Context, candidate string) (*Document, error) {
		return src.GetDocument(ctx, ns, candidate)
	})

	switch res.Status {
	case FetchFound:
		return NewResult(formatDocument(res.Document, ns)), nil
	case FetchNotFound:
		return NewResult(res.Message), nil
	}
	return NewError(res.Message), nil
}

func formatDocument(doc *Document, ns string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Document**: %s\n", doc.Name))
	sb.WriteString(fmt.Sprintf("**Namespace**: %s\n", ns))
	if doc.Timestamp != "" {
		sb.WriteString(fmt.Sprintf("**Modified**: %s\n", doc.Timestamp))
	}
	sb.WriteString("\n```objectscript\n")
	sb.WriteString(doc.Text())
	sb.WriteString("\n```")
	return sb.String()
}
