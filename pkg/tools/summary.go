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
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// summaryLimit caps the length of a diagnostic summary, in characters.
const summaryLimit = 400

const (
	emptyStringMarker     = "(empty string)"
	nonSerializableMarker = "(non-serializable)"
)

// versionPatterns are tried in order against the serialized body.
var versionPatterns = []*regexp.Regexp{
	versionPattern("version"),
	versionPattern("irisVersion"),
	versionPattern("productVersion"),
}

// versionPattern matches key followed by a quoted string or a bare literal.
func versionPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`"` + key + `"\s*:\s*(?:"([^"]+)"|([^",{}\[\]\s]+))`)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Summarize returns a short, single-purpose description of an arbitrary
// response body for diagnostics. It never fails.
//
// A version field is preferred when one can be found. Otherwise objects are
// pretty-printed and strings are whitespace-collapsed, both truncated.
func Summarize(v any) (summary string) {
	defer func() {
		if r := recover(); r != nil {
			summary = nonSerializableMarker
		}
	}()

	raw, isString := v.(string)
	if !isString {
		b, err := json.Marshal(v)
		if err != nil {
			return nonSerializableMarker
		}
		raw = string(b)
	}
	if version, ok := extractVersion(raw); ok {
		return "version=" + version
	}

	if isString {
		collapsed := strings.TrimSpace(whitespaceRun.ReplaceAllString(raw, " "))
		if collapsed == "" {
			return emptyStringMarker
		}
		return truncateRunes(collapsed, summaryLimit)
	}

	if isMapping(v) {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nonSerializableMarker
		}
		return truncateRunes(string(b), summaryLimit)
	}
	if v == nil {
		return "null"
	}
	return fmt.Sprint(v)
}

func extractVersion(raw string) (string, bool) {
	for _, re := range versionPatterns {
		m := re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		if m[1] != "" {
			return m[1], true
		}
		return m[2], true
	}
	return "", false
}

// truncateRunes cuts s to at most n characters without splitting a rune.
func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
