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
	"slices"
	"strings"
)

// FieldRole is the meaning of a form field, used to pick the test value typed into it
type FieldRole string

const (
	RoleName    FieldRole = "name"
	RoleEmail   FieldRole = "email"
	RolePhone   FieldRole = "phone"
	RoleMessage FieldRole = "message"
	// RoleOther covers organization, website and any remaining free text field
	RoleOther FieldRole = "other"
)

// Valid reports whether r is one of the known roles.
func (r FieldRole) Valid() bool {
	switch r {
	case RoleName, RoleEmail, RolePhone, RoleMessage, RoleOther:
		return true
	}
	return false
}

// Value returns the test value typed into a field with the given role.
func (d TestData) Value(role FieldRole) string {
	switch role {
	case RoleName:
		return d.Name
	case RoleEmail:
		return d.Email
	case RolePhone:
		return d.Phone
	default:
		return d.Other
	}
}

// ControlMatcher is a predicate over a control snapshot.
type ControlMatcher func(c Control) bool

// FieldRule locates the control for one role. Matchers are tried in order and
// the first one that matches a usable control wins; within a matcher, controls
// are considered in document order.
type FieldRule struct {
	Role     FieldRole
	Matchers []ControlMatcher
}

// Tag matches controls whose tag is one of tags.
func Tag(tags ...string) ControlMatcher {
	return func(c Control) bool {
		return slices.Contains(tags, c.Tag)
	}
}

// InputType matches <input> controls of one of the given types. An input
// without a type attribute is a text input.
func InputType(types ...string) ControlMatcher {
	return func(c Control) bool {
		if c.Tag != "input" {
			return false
		}
		t := c.Type
		if t == "" {
			t = "text"
		}
		return slices.Contains(types, t)
	}
}

// NameContains matches controls whose name attribute contains any of subs.
func NameContains(subs ...string) ControlMatcher {
	return func(c Control) bool {
		name := strings.ToLower(c.Name)
		for _, s := range subs {
			if strings.Contains(name, s) {
				return true
			}
		}
		return false
	}
}

// TextContains matches buttons whose visible label contains any of subs, ignoring case.
func TextContains(subs ...string) ControlMatcher {
	return func(c Control) bool {
		text := strings.ToLower(c.Text)
		for _, s := range subs {
			if strings.Contains(text, strings.ToLower(s)) {
				return true
			}
		}
		return false
	}
}

// All matches when every matcher does.
func All(matchers ...ControlMatcher) ControlMatcher {
	return func(c Control) bool {
		for _, m := range matchers {
			if !m(c) {
				return false
			}
		}
		return true
	}
}

// Not inverts m.
func Not(m ControlMatcher) ControlMatcher {
	return func(c Control) bool { return !m(c) }
}

// fillable excludes inputs that never take typed text
var fillable = Not(InputType("hidden", "submit", "button", "reset", "image", "checkbox", "radio", "file"))

// DefaultFieldRules are the field heuristics used for the site's forms.
var DefaultFieldRules = map[FieldRole]FieldRule{
	RoleName: {Role: RoleName, Matchers: []ControlMatcher{
		All(Tag("input"), fillable, Not(InputType("email", "tel")), NameContains("name")),
		InputType("text"),
	}},
	RoleEmail: {Role: RoleEmail, Matchers: []ControlMatcher{
		InputType("email"),
		All(Tag("input"), fillable, NameContains("email")),
	}},
	RolePhone: {Role: RolePhone, Matchers: []ControlMatcher{
		InputType("tel"),
		All(Tag("input"), fillable, NameContains("phone")),
	}},
	RoleMessage: {Role: RoleMessage, Matchers: []ControlMatcher{
		Tag("textarea"),
		All(Tag("input"), fillable, NameContains("message")),
	}},
	RoleOther: {Role: RoleOther, Matchers: []ControlMatcher{
		All(Tag("input"), fillable, NameContains("organization", "org", "website")),
		All(InputType("text"), Not(NameContains("name", "phone"))),
	}},
}

// ButtonType matches <button> controls by type attribute. "" matches a
// button without one, which submits its form.
func ButtonType(t string) ControlMatcher {
	return func(c Control) bool {
		return c.Tag == "button" && c.Type == t
	}
}

// SubmitMatchers locate the control that submits a form.
var SubmitMatchers = []ControlMatcher{
	ButtonType("submit"),
	All(Tag("button"), TextContains("send", "submit")),
	InputType("submit"),
	ButtonType(""),
}

// NewsletterSubmitMatchers locate the submit control of a newsletter signup.
var NewsletterSubmitMatchers = []ControlMatcher{
	ButtonType("submit"),
	All(Tag("button"), TextContains("subscribe", "submit")),
	InputType("submit"),
	ButtonType(""),
}

// usable reports whether a control can be interacted with.
func usable(c Control) bool {
	return c.Visible && !c.Disabled
}

// inForm restricts a search to one form. A negative index matches any control.
func inForm(form int) ControlMatcher {
	return func(c Control) bool {
		return form < 0 || c.Form == form
	}
}

// findControl applies matchers in priority order and returns the first usable
// control not already claimed.
func findControl(controls []Control, matchers []ControlMatcher, scope ControlMatcher, claimed map[string]bool) (Control, bool) {
	for _, m := range matchers {
		for _, c := range controls {
			if claimed[c.Ref] || !usable(c) || !scope(c) {
				continue
			}
			if m(c) {
				return c, true
			}
		}
	}
	return Control{}, false
}
