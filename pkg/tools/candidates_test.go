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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolveCandidates(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"class", "Pkg.Class.cls", []string{"Pkg.Class.1.int", "Pkg.Class.int"}},
		{"class upper case", "Pkg.Class.CLS", []string{"Pkg.Class.1.int", "Pkg.Class.int"}},
		{"class padded", "  Pkg.Class.cls\n", []string{"Pkg.Class.1.int", "Pkg.Class.int"}},
		{"int", "Foo.Bar.int", []string{"Foo.Bar.int"}},
		{"mac", "Foo.Bar.MAC", []string{"Foo.Bar.MAC"}},
		{"inc", "Foo.Bar.inc", []string{"Foo.Bar.inc"}},
		{"revision int", "Foo.Bar.1.int", []string{"Foo.Bar.1.int"}},
		{"bare", "Foo.Bar", []string{"Foo.Bar.1.int", "Foo.Bar.int", "Foo.Bar"}},
		{"single word", "Foo", []string{"Foo.1.int", "Foo.int", "Foo"}},
		{"other extension", "page.csp", []string{"page.csp.1.int", "page.csp.int", "page.csp"}},
		{"empty", "", nil},
		{"blank", "   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveCandidates(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ResolveCandidates(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestResolveCandidates_Unique(t *testing.T) {
	for _, input := range []string{"A.cls", "A", "A.int", ".cls", ".int"} {
		got := ResolveCandidates(input)
		if len(got) == 0 {
			t.Fatalf("ResolveCandidates(%q) returned no candidates", input)
		}
		seen := make(map[string]bool)
		for _, c := range got {
			if seen[c] {
				t.Errorf("ResolveCandidates(%q) repeats %q", input, c)
			}
			seen[c] = true
		}
	}
}
