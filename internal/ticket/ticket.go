// Package ticket defines the ticket schema: the status enumeration, the
// folder/status invariant, work-log entry shapes, and the validator that
// turns a decoded header plus file location into a list of issues.
package ticket

import (
	"strings"
	"time"
)

// Status constants.
const (
	StatusPending           = "pending"
	StatusInProgress        = "in_progress"
	StatusBlocked           = "blocked"
	StatusAwaitingHumanTest = "awaiting_human_test"
	StatusDone              = "done"
	StatusArchived          = "archived"
)

// ValidStatuses is the fixed status enumeration, in lifecycle order.
var ValidStatuses = []string{
	StatusPending,
	StatusInProgress,
	StatusBlocked,
	StatusAwaitingHumanTest,
	StatusDone,
	StatusArchived,
}

// Folders are the five fixed status subdirectories under the ticket root.
var Folders = []string{
	"pending",
	"in_progress",
	"awaiting_human_test",
	"done",
	"archive",
}

// statusFolder maps each status to its required containing folder.
var statusFolder = map[string]string{
	StatusPending:           "pending",
	StatusInProgress:        "in_progress",
	StatusBlocked:           "in_progress",
	StatusAwaitingHumanTest: "awaiting_human_test",
	StatusDone:              "done",
	StatusArchived:          "archive",
}

// folderStatuses maps each folder to the statuses it is allowed to hold.
var folderStatuses = map[string][]string{
	"pending":             {StatusPending},
	"in_progress":         {StatusInProgress, StatusBlocked},
	"awaiting_human_test": {StatusAwaitingHumanTest},
	"done":                {StatusDone},
	"archive":             {StatusArchived},
}

// folderInferredStatus maps a folder to the status reconcile infers for a
// ticket found there without a usable status. The in_progress folder also
// legitimately holds blocked tickets; inference deliberately picks
// in_progress, never blocked. Known ambiguity, kept as-is.
var folderInferredStatus = map[string]string{
	"pending":             StatusPending,
	"in_progress":         StatusInProgress,
	"awaiting_human_test": StatusAwaitingHumanTest,
	"done":                StatusDone,
	"archive":             StatusArchived,
}

// IsValidStatus reports whether s is in the status enumeration.
func IsValidStatus(s string) bool {
	_, ok := statusFolder[s]

	return ok
}

// FolderForStatus returns the folder a ticket with the given status must
// live in. ok is false for statuses outside the enumeration.
func FolderForStatus(status string) (string, bool) {
	folder, ok := statusFolder[status]

	return folder, ok
}

// StatusesForFolder returns the statuses a folder is allowed to hold.
// ok is false for directories that are not one of the five status folders.
func StatusesForFolder(folder string) ([]string, bool) {
	statuses, ok := folderStatuses[folder]

	return statuses, ok
}

// InferStatusForFolder returns the status reconcile assigns to a ticket in
// the given folder when its status field is absent or invalid.
func InferStatusForFolder(folder string) (string, bool) {
	status, ok := folderInferredStatus[folder]

	return status, ok
}

// SuggestStatus returns the closest valid status for a misspelled value.
// A candidate matches when either string is a prefix of the other. Returns
// ("", false) when nothing matches.
func SuggestStatus(input string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(input))
	if needle == "" {
		return "", false
	}

	for _, candidate := range ValidStatuses {
		if strings.HasPrefix(candidate, needle) || strings.HasPrefix(needle, candidate) {
			return candidate, true
		}
	}

	return "", false
}

// Work-log entry kinds.
const (
	KindClaim    = "claim"
	KindAnalysis = "analysis"
	KindChange   = "change"
	KindCommand  = "command"
	KindHandoff  = "handoff"
	KindBlocker  = "blocker"
	KindNote     = "note"
)

// ValidWorklogKinds is the fixed work-log kind enumeration.
var ValidWorklogKinds = []string{
	KindClaim,
	KindAnalysis,
	KindChange,
	KindCommand,
	KindHandoff,
	KindBlocker,
	KindNote,
}

// IsValidWorklogKind reports whether kind is in the enumeration.
func IsValidWorklogKind(kind string) bool {
	for _, candidate := range ValidWorklogKinds {
		if candidate == kind {
			return true
		}
	}

	return false
}

// RequiredKeys are the header keys every ticket must carry. A key may hold
// null; only a missing key is a schema violation.
var RequiredKeys = []string{
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

// RequiredHeadings are the section headings every ticket body must contain,
// in template order. Presence is checked by substring match; ordering in the
// body is not enforced.
var RequiredHeadings = []string{
	"## Intent",
	"## Requirements",
	"## Human Testing Steps",
	"## Constraints",
	"## Key Files",
	"## Dependencies",
	"## Work Log",
	"## Review Notes",
	"## Resolution",
}

// timeLayouts are the accepted timestamp layouts, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses a header timestamp value.
func ParseTime(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}

	for _, layout := range timeLayouts {
		parsed, err := time.Parse(layout, trimmed)
		if err == nil {
			return parsed, true
		}
	}

	return time.Time{}, false
}

// Now returns the current time formatted the way tickets store timestamps.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
