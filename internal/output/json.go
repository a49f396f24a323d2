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

// Package output writes machine-readable results for --json CLI modes.
//
// Query payloads keep the column order the server sent because they are
// decoded into ordered objects, and the encoder here never sorts keys.
//
//	if err := output.JSON(payload); err != nil {
//	    errors.FatalError(err, true)
//	}
//
// Errors go to stderr in the same shape the errors package uses:
//
//	output.JSONError(err)
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	clierrors "github.com/kraklabs/irismcp/internal/errors"
)

// JSON writes data as pretty-printed JSON to stdout.
func JSON(data any) error {
	return JSONTo(os.Stdout, data)
}

// JSONTo writes data as pretty-printed JSON to w. HTML characters are not
// escaped, so SQL such as "a < b" stays readable.
func JSONTo(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("JSON encoding failed: %w", err)
	}
	return nil
}

// JSONError writes an error as JSON to stderr.
func JSONError(err error) error {
	return JSONErrorTo(os.Stderr, err)
}

// JSONErrorTo writes err as JSON to w. A UserError keeps its cause, fix and
// exit code; any other error is reported with ExitInternal.
func JSONErrorTo(w io.Writer, err error) error {
	obj := clierrors.ErrorJSON{Error: err.Error(), ExitCode: clierrors.ExitInternal}
	var ue *clierrors.UserError
	if errors.As(err, &ue) {
		obj = ue.ToJSON()
	}
	if encErr := JSONTo(w, obj); encErr != nil {
		return fmt.Errorf("JSON error encoding failed: %w", encErr)
	}
	return nil
}
