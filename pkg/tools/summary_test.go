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
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_Version(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{
			name:  "nested version",
			input: decode(t, `{"result":{"content":{"version":"IRIS for UNIX 2024.1","api":8}}}`),
			want:  "version=IRIS for UNIX 2024.1",
		},
		{
			name:  "numeric version",
			input: decode(t, `{"version":8}`),
			want:  "version=8",
		},
		{
			name:  "irisVersion",
			input: decode(t, `{"irisVersion":"2024.1.0"}`),
			want:  "version=2024.1.0",
		},
		{
			name:  "productVersion",
			input: decode(t, `{"productVersion":"2023.3"}`),
			want:  "version=2023.3",
		},
		{
			name:  "version wins over irisVersion",
			input: decode(t, `{"irisVersion":"a","version":"b"}`),
			want:  "version=b",
		},
		{
			name:  "raw string body",
			input: `{"version": "2024.2"}`,
			want:  "version=2024.2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.input))
		})
	}
}

func TestSummarize_Object(t *testing.T) {
	got := Summarize(decode(t, `{"b":1,"a":[true]}`))
	assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": [\n    true\n  ]\n}", got)
}

func TestSummarize_ObjectTruncated(t *testing.T) {
	got := Summarize(map[string]any{"text": strings.Repeat("x", 1000)})
	assert.Equal(t, summaryLimit, utf8.RuneCountInString(got))
	assert.True(t, strings.HasPrefix(got, "{\n  \"text\": \"xxx"))
}

func TestSummarize_String(t *testing.T) {
	assert.Equal(t, "Service Unavailable try later", Summarize("  Service \n\t Unavailable   try later \n"))
	assert.Equal(t, "(empty string)", Summarize(""))
	assert.Equal(t, "(empty string)", Summarize(" \n\t "))

	long := strings.Repeat("é", 500)
	got := Summarize(long)
	assert.Equal(t, summaryLimit, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))
}

func TestSummarize_Other(t *testing.T) {
	assert.Equal(t, "null", Summarize(nil))
	assert.Equal(t, "42", Summarize(42))
	assert.Equal(t, "true", Summarize(true))
	assert.Equal(t, "[1 2]", Summarize([]int{1, 2}))
	assert.Equal(t, "(non-serializable)", Summarize(math.NaN()))
	assert.Equal(t, "(non-serializable)", Summarize(make(chan int)))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 5))
	assert.Equal(t, "ab", truncateRunes("abc", 2))
	assert.Equal(t, "", truncateRunes("abc", 0))
	assert.Equal(t, "日本", truncateRunes("日本語", 2))
}
