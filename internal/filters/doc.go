// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package filters selects top-level entries of a key/value document, such as
// the status body or the configuration document, before they are printed.
//
// Filters are key-operator-target expressions joined by a delimiter (default
// comma, overridable with AUTOPR_FILTER_DELIM). The key is either "key", which
// tests the entry's name, or "value", which tests the entry's value.
//
// Operators:
//
//   - = : exact match (!= negates)
//   - ~ : case-insensitive match
//   - ^ : prefix match
//   - < : less than (numeric when both sides are numbers)
//   - > : greater than (numeric when both sides are numbers)
//   - @ : contains (substring, list element or map key)
//   - / : regular expression match
//
// Examples:
//
//   - "key^llm" : entries whose name starts with "llm"
//   - "key!=github_token" : everything except github_token
//   - "value>3" : numeric values greater than 3
//
// Invalid expressions are logged and skipped so the remaining filters still
// apply. An entry is kept only when it passes every filter.
package filters
