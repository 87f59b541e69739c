package ticket

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/recursivesquircle/ticket-mcp/internal/frontmatter"
)

// listTypedKeys must be list-typed whenever present.
var listTypedKeys = []string{
	"key_files",
	"requirements",
	"human_testing_steps",
	"constraints",
	"depends_on",
}

// stringOrNullKeys must be a string or null whenever present.
var stringOrNullKeys = []string{
	"epic",
	"claimed_by",
	"review_notes",
}

// timestampKeys must parse as valid dates whenever present and non-null.
var timestampKeys = []string{
	"created_at",
	"updated_at",
	"claimed_at",
}

// Validate checks a decoded ticket against the schema and the folder/status
// invariant for its file location. All applicable issues are collected; there
// is no early exit. The function never mutates its inputs.
func Validate(fields frontmatter.Fields, body, path string) []string {
	var issues []string

	for _, key := range RequiredKeys {
		if _, ok := fields[key]; !ok {
			issues = append(issues, "missing required field: "+key)
		}
	}

	for _, heading := range RequiredHeadings {
		if !strings.Contains(body, heading) {
			issues = append(issues, "missing required section: "+heading)
		}
	}

	issues = append(issues, statusIssues(fields)...)
	issues = append(issues, worklogIssues(fields)...)
	issues = append(issues, folderIssues(fields, path)...)
	issues = append(issues, timestampIssues(fields)...)
	issues = append(issues, typeIssues(fields)...)

	return issues
}

func statusIssues(fields frontmatter.Fields) []string {
	raw, ok := fields["status"]
	if !ok || raw == nil {
		return nil
	}

	status, isString := raw.(string)
	if isString && IsValidStatus(status) {
		return nil
	}

	display := fmt.Sprint(raw)

	suggestion, found := SuggestStatus(display)
	if !found {
		return []string{fmt.Sprintf("invalid status %q (no suggestion)", display)}
	}

	return []string{fmt.Sprintf("invalid status %q (did you mean %q?)", display, suggestion)}
}

func worklogIssues(fields frontmatter.Fields) []string {
	raw, ok := fields["work_log"]
	if !ok || raw == nil {
		return nil
	}

	entries, isList := raw.([]any)
	if !isList {
		return []string{"work_log must be a list"}
	}

	var issues []string

	for idx, raw := range entries {
		entry, isMap := raw.(map[string]any)
		if !isMap {
			issues = append(issues, fmt.Sprintf("work_log[%d]: entry must be a mapping", idx))

			continue
		}

		for _, key := range []string{"at", "actor", "kind", "summary"} {
			value, _ := entry[key].(string)
			if strings.TrimSpace(value) == "" {
				issues = append(issues, fmt.Sprintf("work_log[%d]: missing %s", idx, key))
			}
		}

		kind, _ := entry["kind"].(string)
		if kind != "" && !IsValidWorklogKind(kind) {
			issues = append(issues, fmt.Sprintf("work_log[%d]: invalid kind %q", idx, kind))
		}
	}

	return issues
}

func folderIssues(fields frontmatter.Fields, path string) []string {
	folder := filepath.Base(filepath.Dir(path))

	allowed, known := StatusesForFolder(folder)
	if !known {
		return nil
	}

	status, _ := fields.String("status")
	if slices.Contains(allowed, status) {
		return nil
	}

	return []string{fmt.Sprintf(
		"folder %q does not allow status %q (allowed: %s)",
		folder, status, strings.Join(allowed, ", "),
	)}
}

func timestampIssues(fields frontmatter.Fields) []string {
	var issues []string

	for _, key := range timestampKeys {
		raw, ok := fields[key]
		if !ok || raw == nil {
			continue
		}

		value, isString := raw.(string)

		if _, parses := ParseTime(value); !isString || !parses {
			issues = append(issues, fmt.Sprintf("%s is not a valid timestamp: %v", key, raw))
		}
	}

	return issues
}

func typeIssues(fields frontmatter.Fields) []string {
	var issues []string

	for _, key := range listTypedKeys {
		raw, ok := fields[key]
		if !ok || raw == nil {
			continue
		}

		if _, isList := raw.([]any); !isList {
			issues = append(issues, key+" must be a list")
		}
	}

	for _, key := range stringOrNullKeys {
		raw, ok := fields[key]
		if !ok || raw == nil {
			continue
		}

		if _, isString := raw.(string); !isString {
			issues = append(issues, key+" must be a string or null")
		}
	}

	return issues
}
