// Package frontmatter parses and serializes the YAML header block embedded at
// the top of a ticket file.
//
// A ticket file looks like:
//
//	---
//	id: T-001
//	title: Fix the widget
//	work_log:
//	  - at: "2025-01-02T10:00:00Z"
//	    actor: agent-7
//	    kind: change
//	    summary: swapped the widget
//	---
//
//	## Intent
//	...
//
// Decode never fails hard: a file without a delimited header is all body, and
// a header that is not valid YAML is reported as a parse error string so that
// callers can refuse to mutate the record while still reading it.
package frontmatter

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Delimiter is the line that opens and closes a header block.
const Delimiter = "---"

// CanonicalKeyOrder is the serialization order for known header keys. Keys
// not listed here are appended alphabetically after the known ones.
var CanonicalKeyOrder = []string{
	"id",
	"title",
	"status",
	"created_at",
	"updated_at",
	"area",
	"epic",
	"key_files",
	"intent",
	"requirements",
	"human_testing_steps",
	"constraints",
	"depends_on",
	"claimed_by",
	"claimed_at",
	"work_log",
	"review_notes",
}

// legacyEpicKey is an old alias for epic, folded into epic on read.
const legacyEpicKey = "feature"

// Fields holds the decoded header keys. A key mapped to nil is distinct from
// a key that is absent; both states matter to the validator.
type Fields map[string]any

// String returns the string value for key.
// Returns ("", false) if key is missing, nil, or not a string.
func (f Fields) String(key string) (string, bool) {
	v, ok := f[key]
	if !ok {
		return "", false
	}

	s, ok := v.(string)

	return s, ok
}

// List returns the value for key as a slice.
// Returns (nil, false) if key is missing, nil, or not list-typed.
func (f Fields) List(key string) ([]any, bool) {
	v, ok := f[key]
	if !ok {
		return nil, false
	}

	list, ok := v.([]any)

	return list, ok
}

// StringList returns the value for key as a string slice, coercing each
// element with fmt.Sprint. Returns (nil, false) if key is not list-typed.
func (f Fields) StringList(key string) ([]string, bool) {
	list, ok := f.List(key)
	if !ok {
		return nil, false
	}

	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, fmt.Sprint(item))
	}

	return out, true
}

// Clone returns a shallow copy of the fields map. Nested values are shared;
// callers that rewrite nested structures must replace them wholesale.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for key, value := range f {
		out[key] = value
	}

	return out
}

// Decode splits raw ticket content into header fields and body.
//
// When no delimited header block exists the whole input is returned as body
// with empty fields and no parse error. When the header block exists but is
// not valid YAML, fields are empty, parseErr carries the YAML error message,
// and the content after the closing delimiter is returned as body. Callers
// must treat a non-empty parseErr as "this record cannot be safely mutated".
func Decode(raw string) (Fields, string, string) {
	block, body, found := splitHeader(raw)
	if !found {
		return Fields{}, raw, ""
	}

	var decoded map[string]any

	err := yaml.Unmarshal([]byte(block), &decoded)
	if err != nil {
		return Fields{}, body, err.Error()
	}

	fields := normalize(decoded)

	return fields, body, ""
}

// splitHeader returns the YAML block between the delimiters and the trailing
// body. found is false when the input does not start with a delimiter line or
// the closing delimiter never appears.
func splitHeader(raw string) (string, string, bool) {
	first, rest, hasNewline := strings.Cut(raw, "\n")
	if strings.TrimRight(first, "\r") != Delimiter || !hasNewline {
		return "", "", false
	}

	var block strings.Builder

	for rest != "" {
		line, tail, _ := strings.Cut(rest, "\n")
		if strings.TrimRight(line, "\r") == Delimiter {
			return block.String(), trimLeadingBlankLines(tail), true
		}

		block.WriteString(line)
		block.WriteString("\n")

		rest = tail
	}

	return "", "", false
}

func trimLeadingBlankLines(body string) string {
	for {
		line, tail, hasNewline := strings.Cut(body, "\n")
		if !hasNewline || strings.TrimSpace(line) != "" {
			return body
		}

		body = tail
	}
}

// normalize converts YAML-native values to the representation the rest of
// the engine works with: timestamps back to RFC 3339 strings, and the legacy
// "feature" key folded into "epic".
func normalize(decoded map[string]any) Fields {
	fields := make(Fields, len(decoded))
	for key, value := range decoded {
		fields[key] = normalizeValue(value)
	}

	if legacy, ok := fields[legacyEpicKey]; ok {
		if _, hasEpic := fields["epic"]; !hasEpic {
			fields["epic"] = legacy
		}

		delete(fields, legacyEpicKey)
	}

	return fields
}

func normalizeValue(value any) any {
	switch typed := value.(type) {
	case time.Time:
		return typed.Format(time.RFC3339)
	case []any:
		out := make([]any, len(typed))
		for idx, item := range typed {
			out[idx] = normalizeValue(item)
		}

		return out
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = normalizeValue(item)
		}

		return out
	default:
		return value
	}
}

// Encode serializes fields and body into ticket file content. Known keys are
// written in CanonicalKeyOrder, remaining keys alphabetically after them. The
// header is wrapped in delimiters and followed by a blank line and the body
// with leading whitespace trimmed.
//
// Round-trip property: Decode(Encode(f, b)) reproduces f and b for any
// well-formed f.
func Encode(fields Fields, body string) (string, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}

	for _, key := range orderedKeys(fields) {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: key}

		valueNode, err := encodeValue(fields[key])
		if err != nil {
			return "", fmt.Errorf("encode header key %s: %w", key, err)
		}

		doc.Content = append(doc.Content, keyNode, valueNode)
	}

	var header strings.Builder

	if len(doc.Content) > 0 {
		enc := yaml.NewEncoder(&header)
		enc.SetIndent(2)

		err := enc.Encode(doc)
		if err != nil {
			return "", fmt.Errorf("encode header: %w", err)
		}

		closeErr := enc.Close()
		if closeErr != nil {
			return "", fmt.Errorf("encode header: %w", closeErr)
		}
	}

	var builder strings.Builder

	builder.WriteString(Delimiter)
	builder.WriteString("\n")
	builder.WriteString(header.String())
	builder.WriteString(Delimiter)
	builder.WriteString("\n\n")
	builder.WriteString(strings.TrimLeft(body, " \t\r\n"))

	out := builder.String()
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}

	return out, nil
}

func orderedKeys(fields Fields) []string {
	ordered := make([]string, 0, len(fields))

	for _, key := range CanonicalKeyOrder {
		if _, ok := fields[key]; ok {
			ordered = append(ordered, key)
		}
	}

	var extra []string

	for key := range fields {
		if !slices.Contains(CanonicalKeyOrder, key) {
			extra = append(extra, key)
		}
	}

	slices.Sort(extra)

	return append(ordered, extra...)
}

func encodeValue(value any) (*yaml.Node, error) {
	if value == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	}

	node := &yaml.Node{}

	err := node.Encode(value)
	if err != nil {
		return nil, err
	}

	return node, nil
}
