// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"os"
	"reflect"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/tidwall/gjson"
	yamlv2 "gopkg.in/yaml.v2"
	"gopkg.in/yaml.v3"

	"github.com/codeflow-engine/autopr-desktop/internal/config"
	"github.com/codeflow-engine/autopr-desktop/internal/filters"
)

// Formats lists the accepted values of --output.
var Formats = []string{"raw", "text", "json", "yaml"}

// Options control how Emit renders a value.
type Options struct {
	Format  string
	Titles  bool
	Color   bool
	Padding int
	Header  string
	Filter  string // see package filters; ignored by raw
}

// Emit renders value to w. Strings are treated as documents: raw writes them
// verbatim while the structured formats first decode them as JSON or YAML.
func Emit(w io.Writer, value any, opts Options) error {
	if w == nil {
		w = os.Stdout
	}

	switch opts.Format {
	case "", "raw":
		return writeRaw(w, value)
	case "json":
		b, err := json.MarshalIndent(filtered(value, opts.Filter), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml":
		b, err := yamlv2.Marshal(filtered(value, opts.Filter))
		if err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		_, err = w.Write(b)
		return err
	case "text":
		rows, ok := Rows(value)
		if !ok {
			_, err := fmt.Fprintln(w, InterfaceToString(decode(value), "-"))
			return err
		}
		TableWriter(w, filters.FilterRows(rows, opts.Filter), opts)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", opts.Format)
	}
}

// InterfaceToString converts supported primitive or composite values to a
// string. A custom empty value may be provided.
func InterfaceToString(value interface{}, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}

	if value == nil || reflect.ValueOf(value).IsZero() {
		return emptyValue[0]
	}

	switch value := value.(type) {
	case string:
		return value
	case int:
		return strconv.Itoa(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(jsonBytes)
	}
}

// Rows flattens a key/value shaped value into [key, value] rows. JSON object
// documents keep their key order; maps are sorted by key. The second result is
// false when value has no key/value shape.
func Rows(value any) ([][]string, bool) {
	if s, ok := value.(string); ok {
		if doc := gjson.Parse(s); gjson.Valid(s) && doc.IsObject() {
			var rows [][]string
			doc.ForEach(func(key, val gjson.Result) bool {
				rows = append(rows, []string{key.String(), val.String()})
				return true
			})
			return rows, true
		}
		value = decode(s)
	}

	m, ok := value.(map[string]interface{})
	if !ok || len(m) == 0 {
		return nil, false
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, InterfaceToString(m[k], "-")})
	}
	return rows, true
}

// TableWriter renders rows in a borderless two-column table honoring color,
// titles and padding options.
func TableWriter(w io.Writer, rows [][]string, opts Options) {
	if w == nil {
		w = os.Stdout
	}

	if len(rows) == 0 {
		return
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left).Bold(true)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if opts.Color {
		headerColor, evenColor, oddColor := getColors("colors")

		headerStyle = headerStyle.Foreground(headerColor)
		evenRowStyle = evenRowStyle.Foreground(evenColor)
		oddRowStyle = oddRowStyle.Foreground(oddColor)
	}

	if opts.Header != "" {
		fmt.Fprintln(w, headerStyle.Render(opts.Header))
	}

	pad := opts.Padding
	if pad <= 0 {
		pad = 2
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}

			if col > 0 {
				style = style.PaddingLeft(pad)
			}

			return style
		}).
		Headers().
		Rows(rows...)

	if opts.Titles {
		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers("KEY", "VALUE").BorderHeader(false)
	}
	fmt.Fprintln(w, t)
}

// decode turns a document string into structured data. JSON is tried first,
// then a YAML mapping; anything else stays a string.
func decode(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}

	if gjson.Valid(s) {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}

	var m map[string]interface{}
	if err := yaml.Unmarshal([]byte(s), &m); err == nil && len(m) > 0 {
		return m
	}

	return s
}

// filtered decodes value and, when it is a mapping, drops the entries that
// fail spec.
func filtered(value any, spec string) any {
	v := decode(value)
	if m, ok := v.(map[string]interface{}); ok && spec != "" {
		return filters.FilterMap(m, spec)
	}
	return v
}

// getColors returns configured color values for table rendering. Explicit
// colors come from the configuration document; otherwise defaults are picked
// for the terminal's background.
func getColors(key string) (header, even, odd color.Color) {
	isDark := lipgloss.HasDarkBackground(os.Stdin, os.Stdout)

	resolveColor := func(key string, light string, dark string) color.Color {
		colorCfg, err := config.GetString(key)
		if err == nil {
			return lipgloss.Color(colorCfg)
		}

		if isDark {
			return lipgloss.Color(dark)
		}
		return lipgloss.Color(light)
	}

	header = resolveColor(key+".title", "#5a3fc0", "#a48bff")
	even = resolveColor(key+".even", "#333333", "#ffffff")
	odd = resolveColor(key+".odd", "#0088a0", "#00c8f0")

	return
}

// ValidFormat reports whether f is one of Formats.
func ValidFormat(f string) bool {
	for _, v := range Formats {
		if v == f {
			return true
		}
	}
	return false
}

// writeRaw writes strings and byte slices untouched. Other values are
// stringified and terminated with a newline.
func writeRaw(w io.Writer, value any) error {
	var err error
	switch v := value.(type) {
	case nil:
	case string:
		_, err = io.WriteString(w, v)
	case []byte:
		_, err = w.Write(v)
	default:
		_, err = fmt.Fprintln(w, InterfaceToString(v))
	}
	return err
}
