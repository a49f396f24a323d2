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

// Package contract provides validation limits and checks for statements sent
// to IRIS.
//
// # Read-only guard
//
// irismcp never forwards statements that could modify data. A statement is
// accepted when its first keyword, after whitespace, comments and opening
// parentheses, is SELECT or WITH:
//
//	result := contract.ValidateQuery(sql)
//	if !result.OK {
//	    return tools.NewError("Error: " + result.Message), nil
//	}
//
// # Size limit
//
// Statements larger than SoftLimitBytes are rejected. The limit defaults to
// 64 KiB and can be adjusted with IRISMCP_QUERY_LIMIT_BYTES:
//
//	export IRISMCP_QUERY_LIMIT_BYTES=131072  # 128 KiB
package contract
