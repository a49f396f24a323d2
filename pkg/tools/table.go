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
	"math"
	"strconv"
	"strings"
)

// EmptyResultMarker is rendered for a query that returned an empty sequence.
const EmptyResultMarker = "_(empty result)_"

// nonTabularLabel prefixes the diagnostic summary of a payload that is not
// a sequence at all.
const nonTabularLabel = "Non-tabular result: "

// valueColumn names the single column used when rows carry no usable keys.
const valueColumn = "value"

// TableShape classifies a query payload before it is rendered.
type TableShape int

// Shapes are checked in declaration order; the first match wins.
const (
	// ShapeNotTabular is any value that is not a sequence.
	ShapeNotTabular TableShape = iota
	// ShapeEmpty is a sequence with no elements.
	ShapeEmpty
	// ShapeObjectRows is a sequence whose elements are all key/value mappings.
	ShapeObjectRows
	// ShapeArrayRows is a sequence whose elements are all sequences.
	ShapeArrayRows
	// ShapeScalarList is every other sequence (scalars or mixed elements).
	ShapeScalarList
)

// String returns the shape name.
func (s TableShape) String() string {
	switch s {
	case ShapeNotTabular:
		return "not_tabular"
	case ShapeEmpty:
		return "empty"
	case ShapeObjectRows:
		return "object_rows"
	case ShapeArrayRows:
		return "array_rows"
	case ShapeScalarList:
		return "scalar_list"
	}
	return "unknown"
}

// ClassifyShape decides how a payload will be rendered.
func ClassifyShape(v any) TableShape {
	rows, ok := asSequence(v)
	if !ok {
		return ShapeNotTabular
	}
	if len(rows) == 0 {
		return ShapeEmpty
	}
	if all(rows, isMapping) {
		return ShapeObjectRows
	}
	if all(rows, isSequence) {
		return ShapeArrayRows
	}
	return ShapeScalarList
}

func all(rows []any, pred func(any) bool) bool {
	for _, r := range rows {
		if !pred(r) {
			return false
		}
	}
	return true
}

func isSequence(v any) bool {
	_, ok := asSequence(v)
	return ok
}

// Render turns a decoded query payload into a Markdown table.
//
// It never fails: payloads that are not sequences are described with
// Summarize, and an empty sequence yields EmptyResultMarker.
func Render(v any) string {
	shape := ClassifyShape(v)
	switch shape {
	case ShapeNotTabular:
		return nonTabularLabel + Summarize(v)
	case ShapeEmpty:
		return EmptyResultMarker
	}

	rows, _ := asSequence(v)
	var headers []string
	var body [][]string
	switch shape {
	case ShapeObjectRows:
		headers, body = objectRowsTable(rows)
	case ShapeArrayRows:
		headers, body = arrayRowsTable(rows)
	default:
		headers, body = scalarListTable(rows)
	}
	return formatTable(headers, body)
}

// objectRowsTable builds columns from the union of row keys in first-seen order.
func objectRowsTable(rows []any) ([]string, [][]string) {
	var headers []string
	seen := make(map[string]bool)
	for _, row := range rows {
		for _, key := range keysOf(row) {
			if !seen[key] {
				seen[key] = true
				headers = append(headers, key)
			}
		}
	}
	if len(headers) == 0 {
		headers = []string{valueColumn}
	}

	body := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(headers))
		for i, h := range headers {
			if val, ok := fieldOf(row, h); ok {
				cells[i] = FormatCell(val)
			}
		}
		body = append(body, cells)
	}
	return headers, body
}

// arrayRowsTable uses the first row as header labels when it looks like one
// (a second row of the same nonzero length follows and every cell is a
// string); otherwise it synthesizes col1..colN.
func arrayRowsTable(rows []any) ([]string, [][]string) {
	seqs := make([][]any, len(rows))
	maxLen := 0
	for i, row := range rows {
		seqs[i], _ = asSequence(row)
		maxLen = max(maxLen, len(seqs[i]))
	}

	var headers []string
	data := seqs
	if hasHeaderRow(seqs) {
		headers = make([]string, len(seqs[0]))
		for i, cell := range seqs[0] {
			headers[i] = cell.(string)
		}
		data = seqs[1:]
	} else {
		n := max(maxLen, 1)
		headers = make([]string, n)
		for i := range headers {
			headers[i] = "col" + strconv.Itoa(i+1)
		}
	}

	width := len(headers)
	body := make([][]string, 0, len(data))
	for _, row := range data {
		cells := make([]string, width)
		for i := 0; i < width && i < len(row); i++ {
			cells[i] = FormatCell(row[i])
		}
		body = append(body, cells)
	}
	return headers, body
}

func hasHeaderRow(seqs [][]any) bool {
	if len(seqs) < 2 || len(seqs[0]) == 0 || len(seqs[0]) != len(seqs[1]) {
		return false
	}
	for _, cell := range seqs[0] {
		if _, ok := cell.(string); !ok {
			return false
		}
	}
	return true
}

func scalarListTable(rows []any) ([]string, [][]string) {
	body := make([][]string, len(rows))
	for i, row := range rows {
		body[i] = []string{FormatCell(row)}
	}
	return []string{valueColumn}, body
}

// formatTable lays out header, separator and data rows, one line each.
func formatTable(headers []string, body [][]string) string {
	lines := make([]string, 0, len(body)+2)
	lines = append(lines, tableRow(headers))

	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "---"
	}
	lines = append(lines, tableRow(sep))

	for _, row := range body {
		lines = append(lines, tableRow(row))
	}
	return strings.Join(lines, "\n")
}

func tableRow(cells []string) string {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = EscapeCell(c)
	}
	return "| " + strings.Join(escaped, " | ") + " |"
}

// EscapeCell makes a cell value safe inside a Markdown table row: pipes are
// escaped and line breaks become <br>.
func EscapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "<br>")
}

// FormatCell converts a decoded JSON value to its cell text.
func FormatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return formatNumber(val)
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return formatFloat(val)
	case float32:
		return formatFloat(float64(val))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// formatNumber keeps integer literals verbatim (no float rounding of large
// ids) and normalizes everything else through float64.
func formatNumber(n json.Number) string {
	s := n.String()
	if isIntegerLiteral(s) {
		return s
	}
	f, err := n.Float64()
	if err != nil {
		return s
	}
	return formatFloat(f)
}

func isIntegerLiteral(s string) bool {
	if strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func formatFloat(f float64) string {
	abs := math.Abs(f)
	if f == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ExtractQueryContent unwraps a query response envelope. The meaningful
// payload may sit under result.content, under a top-level content, or be the
// payload itself.
func ExtractQueryContent(payload any) any {
	if result, ok := fieldOf(payload, "result"); ok {
		if content, ok := fieldOf(result, "content"); ok {
			return content
		}
	}
	if content, ok := fieldOf(payload, "content"); ok {
		return content
	}
	return payload
}
