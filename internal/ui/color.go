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

// Package ui provides colored status output for the irismcp CLI.
//
// Helpers write to Out, which defaults to stdout. The serve command never
// prints through this package: stdout carries the MCP stream there.
//
// Colors respect --no-color and NO_COLOR, and are disabled automatically
// when the output is not a TTY.
//
//   - Red: failures
//   - Yellow: warnings
//   - Green: successful checks
//   - Cyan: informational values
//   - Bold: headers and labels
//   - Dim: URLs and paths
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Out is where status lines are written.
var Out io.Writer = os.Stdout

// Pre-configured color instances for consistent CLI output.
var (
	Red    = color.New(color.FgRed)
	Yellow = color.New(color.FgYellow)
	Green  = color.New(color.FgGreen)
	Cyan   = color.New(color.FgCyan)
	Bold   = color.New(color.Bold)
	Dim    = color.New(color.Faint)
)

// InitColors configures global color output. Call it after flag parsing.
func InitColors(noColor bool) {
	color.NoColor = noColor || os.Getenv("NO_COLOR") != ""
}

// Successf prints a green line with a checkmark prefix.
//
// Example output: "✓ Connected to http://localhost:52773"
func Successf(format string, args ...any) {
	_, _ = Green.Fprintf(Out, "✓ "+format+"\n", args...)
}

// Warningf prints a yellow line with a warning prefix.
func Warningf(format string, args ...any) {
	_, _ = Yellow.Fprintf(Out, "⚠ "+format+"\n", args...)
}

// Errorf prints a red line with an X prefix.
//
// Example output: "✗ Authentication failed (HTTP 401)"
func Errorf(format string, args ...any) {
	_, _ = Red.Fprintf(Out, "✗ "+format+"\n", args...)
}

// Infof prints a cyan line with an info prefix.
func Infof(format string, args ...any) {
	_, _ = Cyan.Fprintf(Out, "ℹ "+format+"\n", args...)
}

// Header prints a bold header with an underline separator.
//
//	IRIS Connection Check
//	=====================
func Header(text string) {
	_, _ = Bold.Fprintln(Out, text)
	fmt.Fprintln(Out, strings.Repeat("=", len(text)))
}

// Field prints an aligned "label value" line.
//
// Example: ui.Field("Namespace:", "USER")
func Field(label, value string) {
	fmt.Fprintf(Out, "  %s %s\n", Label(fmt.Sprintf("%-12s", label)), value)
}

// Check prints a pass or fail line for one named check.
func Check(name string, ok bool, detail string) {
	if ok {
		Successf("%s: %s", name, detail)
		return
	}
	Errorf("%s: %s", name, detail)
}

// Label returns a bold-formatted label string for inline use.
func Label(text string) string {
	return Bold.Sprint(text)
}

// DimText returns a dim-formatted string for less important text.
func DimText(text string) string {
	return Dim.Sprint(text)
}
