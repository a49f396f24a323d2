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

package testing

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, url string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if len(body) > 0 {
		require.NoError(t, json.Unmarshal(body, &out))
	}
	return resp.StatusCode, out
}

// TestFakeAtelier_Document verifies stored documents are served and missing
// ones answer 404.
func TestFakeAtelier_Document(t *testing.T) {
	fake := NewFakeAtelier(t)
	fake.AddDocument("USER", "Demo.int", "ROUTINE Demo", " quit")

	code, body := get(t, fake.URL()+"/api/atelier/v1/USER/doc/Demo.int")
	require.Equal(t, http.StatusOK, code)
	result := body["result"].(map[string]any)
	assert.Equal(t, "Demo.int", result["name"])
	assert.Equal(t, "RTN", result["cat"])
	assert.Equal(t, []any{"ROUTINE Demo", " quit"}, result["content"])

	code, _ = get(t, fake.URL()+"/api/atelier/v1/USER/doc/Missing.int")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = get(t, fake.URL()+"/api/atelier/v1/SAMPLES/doc/Demo.int")
	assert.Equal(t, http.StatusNotFound, code)

	assert.Equal(t, []string{"Demo.int", "Missing.int", "Demo.int"}, fake.DocLookups())
}

// TestFakeAtelier_ScriptStatus verifies scripted codes are consumed in order.
func TestFakeAtelier_ScriptStatus(t *testing.T) {
	fake := NewFakeAtelier(t)
	fake.AddDocument("USER", "Demo.int", "x")
	fake.ScriptStatus("Demo.int", http.StatusServiceUnavailable, http.StatusBadGateway)

	url := fake.URL() + "/api/atelier/v1/USER/doc/Demo.int"
	code, _ := get(t, url)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	code, _ = get(t, url)
	assert.Equal(t, http.StatusBadGateway, code)
	code, _ = get(t, url)
	assert.Equal(t, http.StatusOK, code)
}

// TestFakeAtelier_BasicAuth verifies credentials are enforced when set.
func TestFakeAtelier_BasicAuth(t *testing.T) {
	fake := NewFakeAtelier(t)
	fake.Username, fake.Password = "_SYSTEM", "SYS"

	code, _ := get(t, fake.URL()+"/api/atelier/")
	assert.Equal(t, http.StatusUnauthorized, code)

	req, err := http.NewRequest(http.MethodGet, fake.URL()+"/api/atelier/", nil)
	require.NoError(t, err)
	req.SetBasicAuth("_SYSTEM", "SYS")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestFakeAtelier_Query verifies the query action and request recording.
func TestFakeAtelier_Query(t *testing.T) {
	fake := NewFakeAtelier(t)
	fake.SetQueryFunc(func(ns, sql string) (int, string) {
		return http.StatusOK, Envelope([]any{map[string]any{"ns": ns, "sql": sql}})
	})

	resp, err := http.Post(fake.URL()+"/api/atelier/v1/USER/action/query", "application/json",
		strings.NewReader(`{"query":"SELECT 1","parameters":[]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Result struct {
			Content []map[string]string `json:"content"`
		} `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []map[string]string{{"ns": "USER", "sql": "SELECT 1"}}, body.Result.Content)

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/api/atelier/v1/USER/action/query", reqs[0].Path)
}

// TestFakeAtelier_DocNames verifies the default listing filters by category.
func TestFakeAtelier_DocNames(t *testing.T) {
	fake := NewFakeAtelier(t)
	fake.AddDocument("USER", "B.cls", "x")
	fake.AddDocument("USER", "A.int", "x")

	code, body := get(t, fake.URL()+"/api/atelier/v1/USER/docnames/*?generated=0")
	require.Equal(t, http.StatusOK, code)
	content := body["result"].(map[string]any)["content"].([]any)
	require.Len(t, content, 2)
	assert.Equal(t, "A.int", content[0].(map[string]any)["name"])

	code, body = get(t, fake.URL()+"/api/atelier/v1/USER/docnames/CLS")
	require.Equal(t, http.StatusOK, code)
	content = body["result"].(map[string]any)["content"].([]any)
	require.Len(t, content, 1)
	assert.Equal(t, "B.cls", content[0].(map[string]any)["name"])
}

// TestFakeAtelier_ServerInfo verifies the default info lists namespaces.
func TestFakeAtelier_ServerInfo(t *testing.T) {
	fake := NewFakeAtelier(t)
	fake.AddDocument("USER", "A.int")

	code, body := get(t, fake.URL()+"/api/atelier/")
	require.Equal(t, http.StatusOK, code)
	content := body["result"].(map[string]any)["content"].(map[string]any)
	assert.Equal(t, DefaultVersion, content["version"])
	assert.Equal(t, []any{"USER"}, content["namespaces"])
}
