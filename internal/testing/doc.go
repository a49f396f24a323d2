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

// Package testing provides test fixtures for irismcp.
//
// FakeAtelier is an httptest server that answers the Atelier endpoints used
// by the client: server info, document fetch, the query action and
// document listing.
//
// # Quick Start
//
//	func TestMyFeature(t *testing.T) {
//	    fake := irtest.NewFakeAtelier(t)
//	    fake.AddDocument("USER", "Demo.Hello.int", "ROUTINE Demo.Hello", " write 1")
//
//	    // Point a client at fake.URL() and run the feature...
//
//	    require.Equal(t, []string{"Demo.Hello.int"}, fake.DocLookups())
//	}
//
// # Programming failures
//
//   - ScriptStatus: queue status codes for lookups of one document name
//   - SetServerInfo, SetQueryResponse, SetDocNamesResponse: fixed responses
//   - SetQueryFunc: answer queries based on the SQL text
//   - Username/Password: require Basic Auth, answering 401 otherwise
//
// Envelope and ErrorEnvelope build bodies in the Atelier response format.
package testing
