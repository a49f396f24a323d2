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

package contract

import (
	"os"
	"strconv"
	"strings"
	"unicode"
)

// DefaultSoftLimitBytes is the baseline size limit for one SQL statement (64 KiB).
const DefaultSoftLimitBytes = 64 << 10

// SoftLimitBytes returns the effective size limit for a SQL statement.
// Controlled via env IRISMCP_QUERY_LIMIT_BYTES; falls back to DefaultSoftLimitBytes.
func SoftLimitBytes() int {
	if v := os.Getenv("IRISMCP_QUERY_LIMIT_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultSoftLimitBytes
}

// ValidationResult represents the result of a validation check.
type ValidationResult struct {
	OK      bool
	Message string
}

// ValidateQuery checks a SQL statement before it is sent to the server:
// it must be non-empty, within the size limit, and read-only.
func ValidateQuery(sql string) *ValidationResult {
	if strings.TrimSpace(sql) == "" {
		return &ValidationResult{Message: "query cannot be empty"}
	}
	if len(sql) > SoftLimitBytes() {
		return &ValidationResult{Message: "query exceeds soft limit of " + strconv.Itoa(SoftLimitBytes()) + " bytes"}
	}
	if !IsReadOnlyStatement(sql) {
		return &ValidationResult{Message: "only read-only statements (SELECT or WITH) are allowed"}
	}
	return &ValidationResult{OK: true}
}

// IsReadOnlyStatement reports whether the first keyword of sql, after
// leading whitespace and comments, is SELECT or WITH.
func IsReadOnlyStatement(sql string) bool {
	kw := strings.ToUpper(firstKeyword(sql))
	return kw == "SELECT" || kw == "WITH"
}

func firstKeyword(s string) string {
	for {
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
		switch {
		case strings.HasPrefix(s, "--"):
			i := strings.IndexByte(s, '\n')
			if i < 0 {
				return ""
			}
			s = s[i+1:]
		case strings.HasPrefix(s, "/*"):
			i := strings.Index(s[2:], "*/")
			if i < 0 {
				return ""
			}
			s = s[i+4:]
		case strings.HasPrefix(s, "("):
			s = s[1:]
		default:
			end := strings.IndexFunc(s, func(r rune) bool {
				return !unicode.IsLetter(r)
			})
			if end < 0 {
				return s
			}
			return s[:end]
		}
	}
}
