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
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, rt http.RoundTripper, url string) (*http.Response, string, error) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := rt.RoundTrip(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body), nil
}

func TestMockTransport_Register(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterHTML("https://pnncle.com/", "<html><body>Home</body></html>")
	mock.RegisterXML("https://pnncle.com/sitemap_index.xml", "<sitemapindex/>")
	mock.RegisterJSON("https://languagetool.invalid/v2/languages", `[]`)
	mock.RegisterStatus("https://pnncle.com/gone/", http.StatusGone)

	tests := []struct {
		url         string
		status      int
		contentType string
		body        string
	}{
		{"https://pnncle.com/", 200, "text/html; charset=utf-8", "<html><body>Home</body></html>"},
		{"https://pnncle.com/sitemap_index.xml", 200, "application/xml; charset=utf-8", "<sitemapindex/>"},
		{"https://languagetool.invalid/v2/languages", 200, "application/json; charset=utf-8", "[]"},
		{"https://pnncle.com/gone/", 410, "", ""},
		{"https://pnncle.com/unregistered/", 404, "", "Not Found"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			resp, body, err := roundTrip(t, mock, tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.contentType, resp.Header.Get("Content-Type"))
			assert.Equal(t, tt.body, body)
		})
	}
}

func TestMockTransport_PatternAndBodyFunc(t *testing.T) {
	mock := NewMockTransport()
	require.NoError(t, mock.RegisterPattern(`^https://pnncle\.com/kingdom-stories/.+`, &MockResponse{
		BodyFunc: func(r *http.Request) string { return "story at " + r.URL.Path },
	}))
	mock.RegisterHTML("https://pnncle.com/kingdom-stories/pinned/", "exact wins")

	_, body, err := roundTrip(t, mock, "https://pnncle.com/kingdom-stories/first-story/")
	require.NoError(t, err)
	assert.Equal(t, "story at /kingdom-stories/first-story/", body)

	_, body, err = roundTrip(t, mock, "https://pnncle.com/kingdom-stories/pinned/")
	require.NoError(t, err)
	assert.Equal(t, "exact wins", body)

	assert.Error(t, mock.RegisterPattern(`[`, &MockResponse{}))
}

func TestMockTransport_ErrorsAndStrict(t *testing.T) {
	mock := NewMockTransport()
	boom := errors.New("connection reset")
	mock.RegisterError("https://pnncle.com/reset/", boom)

	_, _, err := roundTrip(t, mock, "https://pnncle.com/reset/")
	assert.ErrorIs(t, err, boom)

	mock.SetStrict(true)
	_, _, err = roundTrip(t, mock, "https://pnncle.com/nothing/")
	assert.ErrorIs(t, err, ErrMockNotFound)
}

func TestMockTransport_DelayHonoursCancellation(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterResponse("https://pnncle.com/slow/", &MockResponse{Body: "late", Delay: time.Minute})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://pnncle.com/slow/", nil)
	require.NoError(t, err)

	start := time.Now()
	_, err = mock.RoundTrip(req)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestMockTransport_CancelledBeforeRoundTrip(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterHTML("https://pnncle.com/", "home")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://pnncle.com/", nil)
	require.NoError(t, err)

	_, err = mock.RoundTrip(req)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, mock.Hits("https://pnncle.com/"))
}

type staticTransport string

func (s staticTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(string(s))), Header: make(http.Header), Request: req}, nil
}

func TestMockTransport_FallbackHitsAndReset(t *testing.T) {
	mock := NewMockTransport()
	mock.SetFallback(staticTransport("from fallback"))
	mock.RegisterHTML("https://pnncle.com/", "mocked")

	_, body, err := roundTrip(t, mock, "https://pnncle.com/elsewhere/")
	require.NoError(t, err)
	assert.Equal(t, "from fallback", body)

	for range 3 {
		_, _, err = roundTrip(t, mock, "https://pnncle.com/")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, mock.Hits("https://pnncle.com/"))
	assert.Equal(t, 1, mock.Hits("https://pnncle.com/elsewhere/"))

	mock.Reset()
	assert.Zero(t, mock.Hits("https://pnncle.com/"))
	_, body, err = roundTrip(t, mock, "https://pnncle.com/")
	require.NoError(t, err)
	assert.Equal(t, "from fallback", body, "reset keeps the fallback")
}

func TestMockTransport_HeadersAreCopied(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterHTML("https://pnncle.com/", "home")

	resp, _, err := roundTrip(t, mock, "https://pnncle.com/")
	require.NoError(t, err)
	resp.Header.Set("Content-Type", "text/plain")

	resp, _, err = roundTrip(t, mock, "https://pnncle.com/")
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, int64(len("home")), resp.ContentLength)
}
