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
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const traceDelay = 200 * time.Millisecond

func newTraceTestServer(delay time.Duration) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delay)
		w.WriteHeader(http.StatusOK)
	}))
}

func TestHTTPTrace(t *testing.T) {
	tests := []struct {
		name         string
		delay        time.Duration
		minFirstByte time.Duration
		maxFirstByte time.Duration
	}{
		{"no delay", 0, 0, traceDelay},
		{"slow first byte", traceDelay, traceDelay, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTraceTestServer(tt.delay)
			defer ts.Close()

			trace := &HTTPTrace{}
			req, err := http.NewRequestWithContext(trace.WithContext(context.Background()), http.MethodGet, ts.URL, nil)
			require.NoError(t, err)
			resp, err := ts.Client().Do(req)
			require.NoError(t, err)
			resp.Body.Close()

			assert.Less(t, trace.ConnectDuration, traceDelay)
			assert.GreaterOrEqual(t, trace.FirstByteDuration, tt.minFirstByte)
			assert.Less(t, trace.FirstByteDuration, tt.maxFirstByte)
		})
	}
}

func TestHTTPBackend_LogsTimings(t *testing.T) {
	ts := newTraceTestServer(0)
	defer ts.Close()
	r, _, hook := newTestResolver(t)
	r.backend = newHTTPBackend(DefaultConfig().Fetch, nil, r.logger)

	_, err := r.FetchSitemap(context.Background(), ts.URL)
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "Fetched", entry.Message)
	assert.Equal(t, ts.URL, entry.Data["url"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])
	assert.Contains(t, entry.Data, "firstByte")
}
