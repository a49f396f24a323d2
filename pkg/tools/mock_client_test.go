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
	"context"
	"net/http"
	"strconv"
)

// MockAtelier is a mock implementation of the Atelier interface for unit testing.
// Each func field is called when the matching method is invoked; a nil field
// yields an empty successful response.
//
// Usage:
//
//	client := &MockAtelier{
//	    GetDocumentFunc: func(ctx context.Context, ns, name string) (*Document, error) {
//	        return nil, &HTTPError{StatusCode: http.StatusNotFound}
//	    },
//	}
type MockAtelier struct {
	TargetURL string
	Namespace string

	GetDocumentFunc func(ctx context.Context, namespace, name string) (*Document, error)
	QueryFunc       func(ctx context.Context, namespace, sql string, params []any) (any, error)
	DocNamesFunc    func(ctx context.Context, namespace, category, filter string, generated bool) (any, error)
	ServerInfoFunc  func(ctx context.Context) (any, error)
}

var _ Atelier = (*MockAtelier)(nil)

// Target implements Endpoint.
func (m *MockAtelier) Target() string {
	if m.TargetURL == "" {
		return "http://iris.test:52773"
	}
	return m.TargetURL
}

// DefaultNamespace implements Endpoint.
func (m *MockAtelier) DefaultNamespace() string {
	if m.Namespace == "" {
		return "USER"
	}
	return m.Namespace
}

// GetDocument implements DocumentSource.
func (m *MockAtelier) GetDocument(ctx context.Context, namespace, name string) (*Document, error) {
	if m.GetDocumentFunc != nil {
		return m.GetDocumentFunc(ctx, namespace, name)
	}
	return &Document{Name: name, Content: []string{}}, nil
}

// Query implements QueryRunner.
func (m *MockAtelier) Query(ctx context.Context, namespace, sql string, params []any) (any, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, namespace, sql, params)
	}
	return []any{}, nil
}

// DocNames implements DocLister.
func (m *MockAtelier) DocNames(ctx context.Context, namespace, category, filter string, generated bool) (any, error) {
	if m.DocNamesFunc != nil {
		return m.DocNamesFunc(ctx, namespace, category, filter, generated)
	}
	return []any{}, nil
}

// ServerInfo implements InfoSource.
func (m *MockAtelier) ServerInfo(ctx context.Context) (any, error) {
	if m.ServerInfoFunc != nil {
		return m.ServerInfoFunc(ctx)
	}
	return Object{}, nil
}

// httpStatus builds the error the client returns for a non-2xx response.
func httpStatus(code int) error {
	return &HTTPError{StatusCode: code, Status: strconv.Itoa(code) + " " + http.StatusText(code)}
}
