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

import "fmt"

// Status is the result of one unit of work (a page scan, a form test, a structural check)
type Status string

const (
	// StatusOK means the unit of work completed and its check passed
	StatusOK Status = "ok"
	// StatusSkipped means the unit of work could not be exercised or was inconclusive
	StatusSkipped Status = "skipped"
	// StatusFailed means a hard check was violated
	StatusFailed Status = "failed"
)

// Outcome pairs a Status with the thing it applies to and a human readable reason.
type Outcome struct {
	Status Status `json:"status"`
	// Target is the URL (or URL plus form index) the outcome applies to
	Target string `json:"target"`
	// Reason explains a skip or failure; empty for StatusOK
	Reason string `json:"reason,omitempty"`
}

// OK returns a successful outcome for target.
func OK(target string) Outcome {
	return Outcome{Status: StatusOK, Target: target}
}

// Skipped returns a skipped outcome with a formatted reason.
func Skipped(target, format string, args ...any) Outcome {
	return Outcome{Status: StatusSkipped, Target: target, Reason: fmt.Sprintf(format, args...)}
}

// Failed returns a failed outcome with a formatted reason.
func Failed(target, format string, args ...any) Outcome {
	return Outcome{Status: StatusFailed, Target: target, Reason: fmt.Sprintf(format, args...)}
}

func (o Outcome) String() string {
	if o.Reason == "" {
		return fmt.Sprintf("%s: %s", o.Status, o.Target)
	}
	return fmt.Sprintf("%s: %s (%s)", o.Status, o.Target, o.Reason)
}
