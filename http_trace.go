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
	"net/http/httptrace"
	"time"
)

// HTTPTrace records connection timings of one request.
type HTTPTrace struct {
	start, connect    time.Time
	ConnectDuration   time.Duration
	FirstByteDuration time.Duration
}

func (ht *HTTPTrace) trace() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		GetConn:      func(string) { ht.start = time.Now() },
		ConnectStart: func(string, string) { ht.connect = time.Now() },
		ConnectDone: func(string, string, error) {
			ht.ConnectDuration = time.Since(ht.connect)
		},
		GotFirstResponseByte: func() {
			ht.FirstByteDuration = time.Since(ht.start)
		},
	}
}

// WithContext returns ctx carrying a client trace that fills in ht.
// Transports that never dial, like MockTransport, leave the durations zero.
func (ht *HTTPTrace) WithContext(ctx context.Context) context.Context {
	return httptrace.WithClientTrace(ctx, ht.trace())
}
