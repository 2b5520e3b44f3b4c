// Package jsontool manipulates arbitrary JSON documents: dot-path
// navigation with array indices, key/value search, shallow or deep merge,
// and whole-file load/save.
package jsontool

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	apperrors "taskninja/internal/errors"
)

// Document is a parsed JSON value: map[string]any, []any, or a scalar.
type Document = any

// LoadFile reads and parses a JSON file.
func LoadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.FileNotFound(path, err)
		}
		return nil, apperrors.Wrap(apperrors.CodeIO, fmt.Sprintf("cannot read %s", path), err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.FileFormat(path, err)
	}
	return doc, nil
}

// SaveFile writes a document as indented JSON, overwriting the destination.
func SaveFile(doc Document, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to encode JSON", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, fmt.Sprintf("failed to write %s", path), err)
	}
	return nil
}

// Pretty renders a document as indented JSON text.
func Pretty(doc Document) (string, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeInternal, "failed to encode JSON", err)
	}
	return string(data), nil
}

// splitPath breaks "users.0.name" into segments. An empty path is invalid.
func splitPath(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, apperrors.InvalidInput("path must not be empty")
	}
	return strings.Split(path, "."), nil
}

// Get returns the value at a dot path. Integer segments index arrays.
func Get(doc Document, path string) (any, error) {
	segments, err := splitPath(path)
	if err != nil {
		return nil, err
	}

	current := doc
	for i, seg := range segments {
		where := strings.Join(segments[:i+1], ".")
		switch node := current.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, apperrors.NotFound(fmt.Sprintf("path %q", where))
			}
			current = v
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, apperrors.NotFound(fmt.Sprintf("path %q", where))
			}
			current = node[idx]
		default:
			return nil, apperrors.NotFound(fmt.Sprintf("path %q", where))
		}
	}
	return current, nil
}

// Set writes value at a dot path, creating intermediate objects for
// missing map segments. Array segments must already exist and be in range.
func Set(doc Document, path string, value any) (Document, error) {
	segments, err := splitPath(path)
	if err != nil {
		return doc, err
	}
	return setSegments(doc, segments, value)
}

func setSegments(node any, segments []string, value any) (any, error) {
	seg := segments[0]
	last := len(segments) == 1

	switch typed := node.(type) {
	case map[string]any:
		if last {
			typed[seg] = value
			return typed, nil
		}
		child, ok := typed[seg]
		if !ok {
			child = map[string]any{}
		}
		updated, err := setSegments(child, segments[1:], value)
		if err != nil {
			return node, err
		}
		typed[seg] = updated
		return typed, nil
	case []any:
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 || idx >= len(typed) {
			return node, apperrors.InvalidInput(fmt.Sprintf("invalid array index %q", seg))
		}
		if last {
			typed[idx] = value
			return typed, nil
		}
		updated, err := setSegments(typed[idx], segments[1:], value)
		if err != nil {
			return node, err
		}
		typed[idx] = updated
		return typed, nil
	case nil:
		if node == nil && !last {
			child := map[string]any{}
			updated, err := setSegments(child, segments[1:], value)
			if err != nil {
				return node, err
			}
			return map[string]any{seg: updated}, nil
		}
		return map[string]any{seg: value}, nil
	default:
		return node, apperrors.InvalidInput(fmt.Sprintf("cannot set %q inside a scalar", seg))
	}
}

// Delete removes the value at a dot path. Deleting from an array removes
// the element and shifts the remainder.
func Delete(doc Document, path string) (Document, error) {
	segments, err := splitPath(path)
	if err != nil {
		return doc, err
	}
	return deleteSegments(doc, segments)
}

func deleteSegments(node any, segments []string) (any, error) {
	seg := segments[0]
	last := len(segments) == 1

	switch typed := node.(type) {
	case map[string]any:
		child, ok := typed[seg]
		if !ok {
			return node, apperrors.NotFound(fmt.Sprintf("path %q", seg))
		}
		if last {
			delete(typed, seg)
			return typed, nil
		}
		updated, err := deleteSegments(child, segments[1:])
		if err != nil {
			return node, err
		}
		typed[seg] = updated
		return typed, nil
	case []any:
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 || idx >= len(typed) {
			return node, apperrors.NotFound(fmt.Sprintf("index %q", seg))
		}
		if last {
			return append(typed[:idx], typed[idx+1:]...), nil
		}
		updated, err := deleteSegments(typed[idx], segments[1:])
		if err != nil {
			return node, err
		}
		typed[idx] = updated
		return typed, nil
	default:
		return node, apperrors.NotFound(fmt.Sprintf("path %q", seg))
	}
}

// Match is one search hit: the dot path where the term appeared.
type Match struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
	InKey bool   `json:"in_key"`
}

// Search walks the document and returns every key or scalar value whose
// text contains term (case-insensitive). Object keys are visited in sorted
// order so results are stable across runs.
func Search(doc Document, term string) []Match {
	var matches []Match
	lower := strings.ToLower(term)

	var walk func(node any, path string)
	walk = func(node any, path string) {
		switch typed := node.(type) {
		case map[string]any:
			keys := make([]string, 0, len(typed))
			for k := range typed {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				v := typed[k]
				childPath := k
				if path != "" {
					childPath = path + "." + k
				}
				if strings.Contains(strings.ToLower(k), lower) {
					matches = append(matches, Match{Path: childPath, Value: v, InKey: true})
				}
				walk(v, childPath)
			}
		case []any:
			for i, v := range typed {
				childPath := strconv.Itoa(i)
				if path != "" {
					childPath = path + "." + childPath
				}
				walk(v, childPath)
			}
		default:
			text := strings.ToLower(fmt.Sprintf("%v", typed))
			if strings.Contains(text, lower) {
				matches = append(matches, Match{Path: path, Value: typed})
			}
		}
	}
	walk(doc, "")
	return matches
}

// Merge combines two JSON objects. With deep=false, keys from overlay
// replace keys in base wholesale; with deep=true, nested objects merge
// recursively.
func Merge(base, overlay map[string]any, deep bool) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		if deep {
			if baseChild, ok := out[k].(map[string]any); ok {
				if overlayChild, ok := v.(map[string]any); ok {
					out[k] = Merge(baseChild, overlayChild, true)
					continue
				}
			}
		}
		out[k] = v
	}
	return out
}
