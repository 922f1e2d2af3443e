// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sitecheck

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"
)

// ErrMockNotFound is returned by a strict MockTransport for unregistered URLs.
var ErrMockNotFound = errors.New("no mock response registered for URL")

// MockResponse is a canned response served by MockTransport.
type MockResponse struct {
	// StatusCode defaults to 200
	StatusCode int
	Body       string
	// BodyFunc builds the body from the request and takes precedence over Body
	BodyFunc func(*http.Request) string
	Headers  http.Header
	// Delay holds the response back; a cancelled request returns early
	Delay time.Duration
	// Error fails the round trip, as a network error would
	Error error
}

type mockPattern struct {
	re       *regexp.Regexp
	response *MockResponse
}

// MockTransport is an http.RoundTripper serving registered responses by
// exact URL, then by the first matching pattern. Sitemap, page and grammar
// fetches can all be pointed at one without starting a server.
type MockTransport struct {
	mu        sync.Mutex
	responses map[string]*MockResponse
	patterns  []mockPattern
	fallback  http.RoundTripper
	strict    bool
	hits      map[string]int
}

// NewMockTransport returns an empty MockTransport. Unregistered URLs get a 404.
func NewMockTransport() *MockTransport {
	return &MockTransport{
		responses: make(map[string]*MockResponse),
		hits:      make(map[string]int),
	}
}

func withDefaults(r *MockResponse) *MockResponse {
	if r.StatusCode == 0 {
		r.StatusCode = http.StatusOK
	}
	if r.Headers == nil {
		r.Headers = make(http.Header)
	}
	return r
}

// RegisterResponse serves response for url.
func (m *MockTransport) RegisterResponse(url string, response *MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[url] = withDefaults(response)
}

func (m *MockTransport) registerBody(url, contentType, body string) {
	h := make(http.Header)
	h.Set("Content-Type", contentType)
	m.RegisterResponse(url, &MockResponse{Body: body, Headers: h})
}

// RegisterHTML serves an HTML page with status 200.
func (m *MockTransport) RegisterHTML(url, html string) {
	m.registerBody(url, "text/html; charset=utf-8", html)
}

// RegisterJSON serves a JSON document with status 200.
func (m *MockTransport) RegisterJSON(url, json string) {
	m.registerBody(url, "application/json; charset=utf-8", json)
}

// RegisterXML serves a sitemap or other XML document with status 200.
func (m *MockTransport) RegisterXML(url, xml string) {
	m.registerBody(url, "application/xml; charset=utf-8", xml)
}

// RegisterGzip serves body gzip-compressed, the way .xml.gz sitemaps are.
func (m *MockTransport) RegisterGzip(url, body string) error {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := io.WriteString(zw, body); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	m.registerBody(url, "application/x-gzip", buf.String())
	return nil
}

// RegisterStatus serves an empty body with statusCode.
func (m *MockTransport) RegisterStatus(url string, statusCode int) {
	m.RegisterResponse(url, &MockResponse{StatusCode: statusCode})
}

// RegisterError fails every request for url with err.
func (m *MockTransport) RegisterError(url string, err error) {
	m.RegisterResponse(url, &MockResponse{Error: err})
}

// RegisterPattern serves response for URLs matching the regular expression
// pattern. Patterns are tried in registration order after exact URLs.
func (m *MockTransport) RegisterPattern(pattern string, response *MockResponse) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = append(m.patterns, mockPattern{re: re, response: withDefaults(response)})
	return nil
}

// SetFallback passes requests for unregistered URLs to fallback.
func (m *MockTransport) SetFallback(fallback http.RoundTripper) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = fallback
}

// SetStrict makes requests for unregistered URLs fail with ErrMockNotFound.
func (m *MockTransport) SetStrict(strict bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strict = strict
}

// Hits returns how many requests were made for url.
func (m *MockTransport) Hits(url string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits[url]
}

// Reset drops every registered response and hit count. The fallback and
// strict mode are kept.
func (m *MockTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = make(map[string]*MockResponse)
	m.patterns = nil
	m.hits = make(map[string]int)
}

// lookup counts the request and returns its registered response, if any.
func (m *MockTransport) lookup(url string) (*MockResponse, http.RoundTripper, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits[url]++
	if r, ok := m.responses[url]; ok {
		return r, nil, false
	}
	for _, p := range m.patterns {
		if p.re.MatchString(url) {
			return p.response, nil, false
		}
	}
	return nil, m.fallback, m.strict
}

// RoundTrip implements http.RoundTripper.
func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	mock, fallback, strict := m.lookup(req.URL.String())
	if mock == nil {
		switch {
		case fallback != nil:
			return fallback.RoundTrip(req)
		case strict:
			return nil, ErrMockNotFound
		}
		mock = &MockResponse{StatusCode: http.StatusNotFound, Body: "Not Found", Headers: make(http.Header)}
	}

	if mock.Delay > 0 {
		timer := time.NewTimer(mock.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}
	if mock.Error != nil {
		return nil, mock.Error
	}

	body := mock.Body
	if mock.BodyFunc != nil {
		body = mock.BodyFunc(req)
	}
	return &http.Response{
		Status:        http.StatusText(mock.StatusCode),
		StatusCode:    mock.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        mock.Headers.Clone(),
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}
