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

// Package bootstrap connects irismcp to an IRIS server at process start.
//
// Connect builds the single Atelier client shared by every tool call and
// checks that the server answers before any tool is advertised:
//
//	session, err := bootstrap.Connect(ctx, bootstrap.Options{
//	    Client: tools.ClientConfig{
//	        BaseURL:   "http://localhost:52773",
//	        Namespace: "USER",
//	        Username:  "_SYSTEM",
//	        Password:  "SYS",
//	    },
//	    Logger: logger,
//	})
//	if err != nil {
//	    errors.FatalError(err, false)
//	}
//	defer session.Close()
//
// An unreachable server or rejected credentials stop startup. Other
// failures, such as a 500 from the info endpoint, are logged and startup
// continues, since document and SQL endpoints may still work.
package bootstrap
