// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the configuration document inside $HOME.
const FileName = ".autopr.yaml"

// ErrHomeNotSet is returned when the HOME environment variable is missing or
// empty and the document path cannot be resolved.
var ErrHomeNotSet = errors.New("environment variable HOME not set")

// ErrInvalidUTF8 is returned when the document, on disk or about to be
// written, is not valid UTF-8 text.
var ErrInvalidUTF8 = errors.New("config is not valid UTF-8")

// Type is the in-memory representation of the parsed configuration document.
//
// Fields:
//   - Source: absolute path of the YAML file loaded.
//   - Namespace: optional dot-prefixed keyspace used to prefer namespaced
//     lookups (e.g. "status.url" when Namespace is "status").
//   - Data: raw key/value tree unmarshaled from YAML.
type Type struct {
	Source    string
	Namespace string
	Data      map[string]interface{}
}

// Info describes the document on disk.
type Info struct {
	Path    string
	Exists  bool
	Size    int64
	ModTime time.Time
}

// Config holds the global, lazily-initialized parsed document.
var Config Type

// Path returns the absolute path of the configuration document. Only HOME is
// consulted so the location matches what the desktop front-end expects.
func Path() (string, error) {
	home, ok := os.LookupEnv("HOME")
	if !ok || home == "" {
		return "", ErrHomeNotSet
	}
	return filepath.Join(home, FileName), nil
}

// Read returns the document contents verbatim.
func Read() (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read config: %w", err)
	}
	if !utf8.Valid(bytes) {
		return "", fmt.Errorf("failed to read config %s: %w", path, ErrInvalidUTF8)
	}
	log.Debugf("read config: path=%s bytes=%d", path, len(bytes))

	return string(bytes), nil
}

// Write replaces the document with text. The file is created when missing and
// truncated otherwise. Text that is not valid UTF-8 is rejected and the
// existing document is left alone.
func Write(text string) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if !utf8.ValidString(text) {
		return fmt.Errorf("failed to write config: %w", ErrInvalidUTF8)
	}

	if err := os.WriteFile(path, []byte(text), 0o644); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write config: %w", err)
	}
	log.Debugf("wrote config: path=%s bytes=%d", path, len(text))

	// Drop the parsed copy so getters see the new document.
	Config = Type{}

	return nil
}

// Stat reports where the document lives and whether it exists yet.
func Stat() (Info, error) {
	path, err := Path()
	if err != nil {
		return Info{}, err
	}

	info := Info{Path: path}
	fi, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return info, nil
	case err != nil:
		return info, fmt.Errorf("failed to stat config: %w", err)
	case fi.IsDir():
		return info, fmt.Errorf("config path is a directory: %s", path)
	}

	info.Exists = true
	info.Size = fi.Size()
	info.ModTime = fi.ModTime()

	return info, nil
}

// Parse unmarshals YAML text into a key tree. An empty document yields an
// empty, non-nil map.
func Parse(text string) (map[string]interface{}, error) {
	var data map[string]interface{}
	if err := yaml.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	return data, nil
}

// Load reads and parses the document and populates the global Config. The
// current Namespace is preserved across reloads.
func Load() (Type, error) {
	path, err := Path()
	if err != nil {
		return Type{}, err
	}

	text, err := Read()
	if err != nil {
		return Type{}, err
	}

	data, err := Parse(text)
	if err != nil {
		return Type{}, err
	}

	Config = Type{
		Source:    path,
		Namespace: Config.Namespace,
		Data:      data,
	}

	return Config, nil
}

// Get returns the raw value at the dotted key path. If a single defaultValue
// is provided it is returned when the key is missing.
func Get(key string, defaultValue ...any) (any, error) {
	if len(Config.Data) == 0 {
		_, _ = Load()
	}

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return nil, err
	}
	return val, nil
}

// GetInt returns the integer value for the given dotted key path. A single
// defaultValue may be provided and is returned when the key is missing.
// YAML numbers may decode as int, int64, or float64; common cases are handled.
func GetInt(key string, defaultValue ...int) (int, error) {
	if len(Config.Data) == 0 {
		_, _ = Load()
	}

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return 0, err
	}

	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, errors.New("value is not an int")
	}
}

// GetString returns the string value for the given dotted key path. If the key
// is not found and a single defaultValue is provided, the default is returned.
// Returns an error if the value exists but is not a string.
func GetString(key string, defaultValue ...string) (string, error) {
	if len(Config.Data) == 0 {
		_, _ = Load()
	}

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return "", err
	}

	s, ok := val.(string)
	if !ok {
		return "", errors.New("value is not a string")
	}

	return s, nil
}

// GetStringSlice returns the string slice value for the given dotted key path.
// If the key is not found and a single default slice is provided, that default
// is returned. Returns an error if the value exists but is not a string slice.
func GetStringSlice(key string, defaultValue ...[]string) ([]string, error) {
	if len(Config.Data) == 0 {
		_, _ = Load()
	}

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return nil, err
	}

	switch v := val.(type) {
	case []string:
		return v, nil
	case []interface{}:
		result := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, errors.New("slice element is not a string")
			}
			result[i] = s
		}
		return result, nil
	default:
		return nil, errors.New("value is not a slice")
	}
}

// get traverses the configuration tree using a dotted key path (e.g.
// "status.url"). If Namespace is set, a namespaced candidate key is attempted
// first (Namespace + "." + kspec), then the unnamespaced key.
func (cfg *Type) get(kspec string) (any, error) {
	candidateKeys := []string{kspec}
	if cfg.Namespace != "" {
		candidateKeys = []string{cfg.Namespace + "." + kspec, kspec}
	}

	for _, key := range candidateKeys {
		keys := strings.Split(key, ".")
		var current interface{} = cfg.Data

		success := true
		for _, key := range keys {
			m, ok := current.(map[string]interface{})
			if !ok {
				success = false
				break
			}
			current, ok = m[key]
			if !ok {
				success = false
				break
			}
		}

		if success {
			return current, nil
		}
	}

	return nil, fmt.Errorf("no valid path found among: %v", candidateKeys)
}
