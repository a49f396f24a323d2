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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOrdered_KeepsKeyOrder(t *testing.T) {
	v, err := DecodeOrdered([]byte(`{"z":1,"a":{"y":true,"b":null},"m":[1,"two"]}`))
	require.NoError(t, err)

	obj, ok := v.(Object)
	require.True(t, ok, "got %T", v)
	assert.Equal(t, []string{"z", "a", "m"}, obj.Keys())

	inner, ok := obj.Get("a")
	require.True(t, ok)
	assert.Equal(t, []string{"y", "b"}, inner.(Object).Keys())

	arr, _ := obj.Get("m")
	want := []any{json.Number("1"), "two"}
	if diff := cmp.Diff(want, arr); diff != "" {
		t.Errorf("array mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeOrdered_DuplicateKeyKeepsFirstPosition(t *testing.T) {
	v, err := DecodeOrdered([]byte(`{"a":1,"b":2,"a":3}`))
	require.NoError(t, err)
	obj := v.(Object)
	assert.Equal(t, []string{"a", "b"}, obj.Keys())
	got, _ := obj.Get("a")
	assert.Equal(t, json.Number("3"), got)
}

func TestDecodeOrdered_Scalars(t *testing.T) {
	tests := []struct {
		input string
		want  any
	}{
		{`"s"`, "s"},
		{`true`, true},
		{`null`, nil},
		{`12.5`, json.Number("12.5")},
		{`[]`, []any{}},
		{`{}`, Object{}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := DecodeOrdered([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeOrdered_Errors(t *testing.T) {
	for _, input := range []string{``, `{`, `[1,`, `{"a":1} x`, `<html>`, `{"a" 1}`} {
		_, err := DecodeOrdered([]byte(input))
		assert.Error(t, err, "input %q", input)
	}
}

func TestObject_MarshalJSON(t *testing.T) {
	obj := Object{{Key: "z", Value: 1}, {Key: "a", Value: Object{{Key: "q", Value: "x"}}}}
	b, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":{"q":"x"}}`, string(b))

	b, err = json.Marshal(Object{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(b))
}
