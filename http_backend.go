// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// This file includes modifications to code originally developed by Adam Tauber,
// licensed under the Apache License, Version 2.0.
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
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/saintfish/chardet"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"
)

// Response is a fetched document after decompression and charset decoding.
type Response struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// httpBackend performs plain GET requests. Sitemap fetches and the HTTP
// renderer share it so tests can swap the transport in one place.
type httpBackend struct {
	client      *resty.Client
	maxBodySize int
	userAgent   string
	logger      logrus.FieldLogger
}

func newHTTPBackend(cfg FetchConfig, transport http.RoundTripper, logger logrus.FieldLogger) *httpBackend {
	logger = orDiscard(logger)
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetLogger(logger)
	if transport != nil {
		client.SetTransport(transport)
	}
	return &httpBackend{
		client:      client,
		maxBodySize: cfg.MaxBodySize,
		userAgent:   cfg.UserAgent,
		logger:      logger,
	}
}

// Get fetches u. Transport errors and non-2xx statuses are returned as *FetchError.
func (h *httpBackend) Get(ctx context.Context, u string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	trace := &HTTPTrace{}
	req := h.client.R().
		SetContext(trace.WithContext(ctx)).
		SetDoNotParseResponse(true)
	if h.userAgent != "" {
		req.SetHeader("User-Agent", h.userAgent)
	}
	res, err := req.Get(u)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	raw := res.RawBody()
	if raw == nil {
		return nil, &FetchError{URL: u, Err: io.ErrUnexpectedEOF}
	}
	defer raw.Close()

	h.logger.WithFields(logrus.Fields{
		"url":       u,
		"status":    res.StatusCode(),
		"connect":   trace.ConnectDuration,
		"firstByte": trace.FirstByteDuration,
	}).Debug("Fetched")

	if !res.IsSuccess() {
		return nil, &FetchError{URL: u, StatusCode: res.StatusCode(), Err: fmt.Errorf("status %s", res.Status())}
	}

	var bodyReader io.Reader = raw
	if h.maxBodySize > 0 {
		bodyReader = io.LimitReader(bodyReader, int64(h.maxBodySize))
	}
	contentEncoding := strings.ToLower(res.Header().Get("Content-Encoding"))
	uncompressed := res.RawResponse != nil && res.RawResponse.Uncompressed
	if !uncompressed && (strings.Contains(contentEncoding, "gzip") ||
		(contentEncoding == "" && strings.Contains(strings.ToLower(res.Header().Get("Content-Type")), "gzip")) ||
		strings.HasSuffix(strings.ToLower(u), ".xml.gz")) {
		gz, err := gzip.NewReader(bodyReader)
		if err != nil {
			return nil, &FetchError{URL: u, Err: fmt.Errorf("gzip: %w", err)}
		}
		defer gz.Close()
		bodyReader = gz
	}
	body, err := io.ReadAll(bodyReader)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}

	resp := &Response{
		URL:        u,
		StatusCode: res.StatusCode(),
		Header:     res.Header(),
		Body:       body,
	}
	if err := resp.fixCharset(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", u, err)
	}
	return resp, nil
}

// fixCharset converts HTML bodies to UTF-8. When the Content-Type carries no
// charset the encoding is detected from the body.
func (r *Response) fixCharset() error {
	if len(r.Body) == 0 {
		return nil
	}
	contentType := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(contentType, "html") {
		return nil
	}
	if !strings.Contains(contentType, "charset") {
		d := chardet.NewTextDetector()
		best, err := d.DetectBest(r.Body)
		if err != nil {
			return err
		}
		contentType = "text/plain; charset=" + best.Charset
	}
	if strings.Contains(contentType, "utf-8") || strings.Contains(contentType, "utf8") {
		return nil
	}
	body, err := encodeBytes(r.Body, contentType)
	if err != nil {
		return err
	}
	r.Body = body
	return nil
}

func encodeBytes(b []byte, contentType string) ([]byte, error) {
	r, err := charset.NewReader(bytes.NewReader(b), contentType)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

// HTTPRenderer fetches pages without executing scripts. It serves sites that
// render server-side and lets the crawler and scan pipeline run without Chrome.
type HTTPRenderer struct {
	backend *httpBackend
}

// NewHTTPRenderer creates a renderer over the given transport; nil uses the default transport.
func NewHTTPRenderer(cfg FetchConfig, transport http.RoundTripper, logger logrus.FieldLogger) *HTTPRenderer {
	return &HTTPRenderer{backend: newHTTPBackend(cfg, transport, logger)}
}

// Render returns the page body as HTML.
func (r *HTTPRenderer) Render(ctx context.Context, u string) (string, error) {
	resp, err := r.backend.Get(ctx, u)
	if err != nil {
		return "", err
	}
	return string(resp.Body), nil
}
