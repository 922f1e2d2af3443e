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
	"errors"
	"fmt"
)

var (
	// ErrFetch is matched by every *FetchError
	ErrFetch = errors.New("fetch failed")
	// ErrResolution is matched by every *ResolutionError
	ErrResolution = errors.New("sitemap resolution failed")
	// ErrParse is returned when a sitemap document cannot be parsed in either strict or lenient mode
	ErrParse = errors.New("malformed sitemap document")
	// ErrEngineUnavailable is returned when the grammar engine cannot be reached at construction time
	ErrEngineUnavailable = errors.New("grammar engine unavailable")
	// ErrElementNotFound is returned when an expected control is no longer present on the page
	ErrElementNotFound = errors.New("element not found")
	// ErrTimeout is returned when navigation or a quiescence wait exceeds its bound
	ErrTimeout = errors.New("timeout exceeded")
	// ErrNoDictionary is returned when the spelling word list cannot be loaded
	ErrNoDictionary = errors.New("spelling dictionary unavailable")
)

// FetchError describes a failed sitemap GET: a transport error or a non-2xx status.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// ResolutionError is returned by ResolveAllURLs when the top-level sitemap
// index itself could not be fetched or parsed.
type ResolutionError struct {
	IndexURL string
	Err      error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve sitemap index %s: %v", e.IndexURL, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

func (e *ResolutionError) Is(target error) bool { return target == ErrResolution }
