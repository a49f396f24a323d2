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

import "strings"

// Document name suffixes understood by the resolver.
const (
	classExt       = ".cls"
	routineExt     = ".int"
	routineRev1Ext = ".1.int"
)

// compiledExts are names the server already knows how to fetch verbatim.
var compiledExts = []string{".int", ".mac", ".inc"}

// ResolveCandidates expands a user-supplied name into the ordered list of
// document names to probe.
//
//	Pkg.Class.cls -> Pkg.Class.1.int, Pkg.Class.int
//	Foo.Bar.int   -> Foo.Bar.int
//	Foo.Bar       -> Foo.Bar.1.int, Foo.Bar.int, Foo.Bar
//
// A blank name yields no candidates.
func ResolveCandidates(raw string) []string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return nil
	}

	var out []string
	seen := make(map[string]bool)
	add := func(c string) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}

	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, classExt) {
		base := name[:len(name)-len(classExt)]
		add(base + routineRev1Ext)
		add(base + routineExt)
		return out
	}

	for _, ext := range compiledExts {
		if strings.HasSuffix(lower, ext) {
			add(name)
			return out
		}
	}

	add(name + routineRev1Ext)
	add(name + routineExt)
	add(name)
	return out
}
