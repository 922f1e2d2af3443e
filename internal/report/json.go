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

package report

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONReporter writes the whole report, with its summary, as one JSON document.
type JSONReporter struct {
	// Indent pretty-prints the output when set
	Indent string
}

type jsonDocument struct {
	*Report
	Summary Summary `json:"summary"`
}

// Write renders r to w.
func (j *JSONReporter) Write(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if j.Indent != "" {
		enc.SetIndent("", j.Indent)
	}
	if err := enc.Encode(jsonDocument{Report: r, Summary: r.Summary()}); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
