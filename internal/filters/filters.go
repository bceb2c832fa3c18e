// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"
)

// filterRegex is the pattern used to parse filter expressions into key,
// operator, and target components. Operators are one of = ^ ~ < > @ or /,
// optionally prefixed with '!'. Examples: "key" (key only), "key^llm" (key +
// operator + target), "value=" (key + operator, no target).
var filterRegex = regexp.MustCompile(`^([^!?=^~<>@/]*)(!?[=^~<>@/])?(.*)$`)

// Subjects a filter can test.
const (
	SubjectKey   = "key"
	SubjectValue = "value"
)

// Filter is a single parsed --filter expression.
type Filter struct {
	Key     string `yaml:"key" json:"Key"`
	Negate  bool   `yaml:"negate" json:"Negate"`
	Operand string `yaml:"operand" json:"Operand"`
	Value   string `yaml:"value" json:"Value"`
}

// BuildFilters parses a filter specification string into a slice of Filter.
// Invalid specs (unknown key or malformed expression) are skipped.
func BuildFilters(spec string) []Filter {
	//nolint:prealloc
	var filters []Filter

	if spec == "" {
		return filters
	}

	// Default delimiter is ",", allow an override for situations where the value
	// contains commas.
	delim := ","
	if d, ok := os.LookupEnv("AUTOPR_FILTER_DELIM"); ok && d != "" {
		delim = d
	}

	for _, filterSpec := range strings.Split(spec, delim) {
		filterSpec = strings.TrimSpace(filterSpec)
		if filterSpec == "" {
			continue
		}

		parts := filterRegex.FindStringSubmatch(filterSpec)
		if parts == nil {
			log.Error("invalid filter: " + filterSpec)
			continue
		}

		key := strings.TrimSpace(parts[1])
		operand := parts[2]
		target := parts[3]

		if key != SubjectKey && key != SubjectValue {
			log.Error(fmt.Sprintf("invalid filter: key must be %q or %q in %s", SubjectKey, SubjectValue, filterSpec))
			continue
		}
		if operand == "" {
			log.Error("invalid filter: missing operator in " + filterSpec)
			continue
		}

		negate := strings.HasPrefix(operand, "!")
		if negate {
			operand = strings.TrimPrefix(operand, "!")
		}

		filters = append(filters, Filter{
			Key:     key,
			Negate:  negate,
			Operand: operand,
			Value:   target,
		})
	}

	return filters
}

// FilterMap returns the entries of m that pass spec. m itself is not
// modified.
func FilterMap(m map[string]interface{}, spec string) map[string]interface{} {
	filters := BuildFilters(spec)
	if len(filters) == 0 {
		return m
	}

	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		if Keep(k, v, filters) {
			out[k] = v
		}
	}
	return out
}

// FilterRows returns the [key, value] rows that pass spec, preserving order.
// Values that parse as numbers are compared numerically.
func FilterRows(rows [][]string, spec string) [][]string {
	filters := BuildFilters(spec)
	if len(filters) == 0 {
		return rows
	}

	var out [][]string
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}

		var value interface{} = row[1]
		if f, err := strconv.ParseFloat(row[1], 64); err == nil {
			value = f
		}

		if Keep(row[0], value, filters) {
			out = append(out, row)
		}
	}
	return out
}

// Keep reports whether the entry named key with the given value passes every
// filter.
func Keep(key string, value interface{}, filters []Filter) bool {
	for _, filter := range filters {
		subject := value
		if filter.Key == SubjectKey {
			subject = key
		}

		if !check(subject, filter) {
			return false
		}
	}
	return true
}

func check(value interface{}, filter Filter) bool {
	if value == nil {
		return filter.Negate
	}

	switch v := value.(type) {
	case string:
		return checkStringOperand(v, filter)
	case bool:
		return checkStringOperand(strconv.FormatBool(v), filter)
	}

	if num, ok := toFloat64(value); ok {
		if filter.Operand == "@" || filter.Operand == "/" || filter.Operand == "^" || filter.Operand == "~" {
			return checkStringOperand(strconv.FormatFloat(num, 'f', -1, 64), filter)
		}
		return checkNumericOperand(num, filter)
	}

	if filter.Operand == "@" {
		return checkContainsOperand(value, filter)
	}

	return checkStringOperand(fmt.Sprintf("%v", value), filter)
}

// checkContainsOperand evaluates a membership style filter (operand '@')
// against slice or map values.
func checkContainsOperand(value interface{}, filter Filter) bool {
	switch val := value.(type) {
	case []any:
		for _, item := range val {
			if fmt.Sprintf("%v", item) == filter.Value {
				return !filter.Negate
			}
		}
		return filter.Negate
	case map[string]any:
		_, found := val[filter.Value]
		return found == !filter.Negate
	default:
		log.Error(fmt.Sprintf("unsupported type for contains filtering: %T", value))
		return false
	}
}

// checkNumericOperand compares a numeric value against the filter value using
// numeric semantics. Supported operands: =, >, < and the negated forms.
func checkNumericOperand(value float64, filter Filter) bool {
	tgt, err := strconv.ParseFloat(strings.TrimSpace(filter.Value), 64)
	if err != nil {
		// Not a number on the right, so compare as text.
		return checkStringOperand(strconv.FormatFloat(value, 'f', -1, 64), filter)
	}

	switch filter.Operand {
	case "=":
		return (value == tgt) == !filter.Negate
	case ">":
		return (value > tgt) == !filter.Negate
	case "<":
		return (value < tgt) == !filter.Negate
	default:
		log.Error("unsupported numeric operand: " + filter.Operand)
		return false
	}
}

// checkStringOperand evaluates a string comparison style filter against the
// provided value using the operand semantics.
func checkStringOperand(value string, filter Filter) bool {
	switch filter.Operand {
	case "=":
		return value == filter.Value == !filter.Negate
	case "~":
		return strings.EqualFold(value, filter.Value) == !filter.Negate
	case "^":
		return strings.HasPrefix(value, filter.Value) == !filter.Negate
	case ">":
		return value > filter.Value == !filter.Negate
	case "<":
		return value < filter.Value == !filter.Negate
	case "@":
		return strings.Contains(value, filter.Value) == !filter.Negate
	case "/":
		matched, err := regexp.MatchString(filter.Value, value)
		if err != nil {
			log.Error("invalid regex: " + filter.Value)
			return false
		}
		return matched == !filter.Negate
	default:
		log.Error("unsupported filtering operand: " + filter.Operand)
		return false
	}
}

// toFloat64 normalizes the numeric types YAML and JSON decoders produce.
func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
