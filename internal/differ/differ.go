// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"encoding/json"
	"fmt"

	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/codeflow-engine/autopr-desktop/internal/config"
	"github.com/codeflow-engine/autopr-desktop/internal/log"
)

// Identical is printed by callers when Diff reports no change.
const Identical = "The configurations are identical."

// Diff compares two YAML documents structurally. It returns the rendered
// difference (empty when unchanged) and whether anything changed. Both
// documents must be YAML mappings; an empty document counts as an empty
// mapping.
func Diff(current, proposed string, coloring bool) (string, bool, error) {
	log.Debugf(">> differ(): current=%d proposed=%d", len(current), len(proposed))

	left, leftDoc, err := toJSON(current)
	if err != nil {
		return "", false, fmt.Errorf("current config: %w", err)
	}
	right, _, err := toJSON(proposed)
	if err != nil {
		return "", false, fmt.Errorf("proposed config: %w", err)
	}

	delta, err := gojsondiff.New().Compare(left, right)
	if err != nil {
		return "", false, fmt.Errorf("failed to compare configs: %w", err)
	}

	if !delta.Modified() {
		return "", false, nil
	}

	f := formatter.NewAsciiFormatter(leftDoc, formatter.AsciiFormatterConfig{
		ShowArrayIndex: false,
		Coloring:       coloring,
	})
	out, err := f.Format(delta)
	if err != nil {
		return "", true, fmt.Errorf("failed to format diff: %w", err)
	}

	return out, true, nil
}

// toJSON parses a YAML document and re-encodes it as JSON so it can be fed to
// the JSON differ. The decoded JSON tree is returned alongside.
func toJSON(text string) ([]byte, map[string]interface{}, error) {
	data, err := config.Parse(text)
	if err != nil {
		return nil, nil, err
	}

	b, err := json.Marshal(data)
	if err != nil {
		return nil, nil, fmt.Errorf("config is not representable as JSON: %w", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, nil, err
	}

	return b, doc, nil
}
