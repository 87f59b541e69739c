package ticket_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/recursivesquircle/ticket-mcp/internal/frontmatter"
	"github.com/recursivesquircle/ticket-mcp/internal/ticket"
)

func validFields() frontmatter.Fields {
	return frontmatter.Fields{
		"id":                  "T-001",
		"title":               "A valid ticket",
		"status":              "pending",
		"created_at":          "2025-01-01T00:00:00Z",
		"updated_at":          "2025-01-01T00:00:00Z",
		"area":                "core",
		"epic":                "none",
		"key_files":           []any{},
		"intent":              "Exists for testing.",
		"requirements":        []any{"do the thing"},
		"human_testing_steps": []any{},
		"constraints":         []any{},
		"depends_on":          []any{},
		"claimed_by":          nil,
		"claimed_at":          nil,
		"work_log":            []any{},
		"review_notes":        nil,
	}
}

func validBody() string {
	return strings.Join([]string{
		"## Intent", "## Requirements", "## Human Testing Steps",
		"## Constraints", "## Key Files", "## Dependencies",
		"## Work Log", "## Review Notes", "## Resolution",
	}, "\n\n") + "\n"
}

func TestValidate_CleanTicket(t *testing.T) {
	t.Parallel()

	issues := ticket.Validate(validFields(), validBody(), "/root/pending/t.md")
	require.Empty(t, issues)
}

func TestValidate_MissingKeyAndHeading(t *testing.T) {
	t.Parallel()

	fields := validFields()
	delete(fields, "intent")

	body := strings.Replace(validBody(), "## Resolution", "", 1)

	issues := ticket.Validate(fields, body, "/root/pending/t.md")
	require.Contains(t, issues, "missing required field: intent")
	require.Contains(t, issues, "missing required section: ## Resolution")
}

func TestValidate_StatusSuggestion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status string
		want   string
	}{
		{name: "prefix typo", status: "pend", want: `invalid status "pend" (did you mean "pending"?)`},
		{name: "overshoot", status: "in_progresss", want: `invalid status "in_progresss" (did you mean "in_progress"?)`},
		{name: "no match", status: "bogus", want: `invalid status "bogus" (no suggestion)`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fields := validFields()
			fields["status"] = tc.status

			issues := ticket.Validate(fields, validBody(), "/root/pending/t.md")
			require.Contains(t, issues, tc.want)
		})
	}
}

func TestValidate_FolderStatusMismatch(t *testing.T) {
	t.Parallel()

	fields := validFields()
	fields["status"] = "done"

	issues := ticket.Validate(fields, validBody(), "/root/pending/t.md")

	found := false

	for _, issue := range issues {
		if strings.Contains(issue, `folder "pending" does not allow status "done"`) {
			found = true
		}
	}

	require.True(t, found, "expected a folder/status issue, got %v", issues)
}

func TestValidate_BlockedAllowedInInProgressFolder(t *testing.T) {
	t.Parallel()

	fields := validFields()
	fields["status"] = "blocked"

	issues := ticket.Validate(fields, validBody(), "/root/in_progress/t.md")
	require.Empty(t, issues)
}

func TestValidate_UnknownFolderSkipsLocationCheck(t *testing.T) {
	t.Parallel()

	issues := ticket.Validate(validFields(), validBody(), "/somewhere/scratch/t.md")
	require.Empty(t, issues)
}

func TestValidate_Worklog(t *testing.T) {
	t.Parallel()

	fields := validFields()
	fields["work_log"] = []any{
		map[string]any{
			"at":      "2025-01-01T10:00:00Z",
			"actor":   "agent-7",
			"kind":    "teleport",
			"summary": "",
		},
		"not a mapping",
	}

	issues := ticket.Validate(fields, validBody(), "/root/pending/t.md")
	require.Contains(t, issues, "work_log[0]: missing summary")
	require.Contains(t, issues, `work_log[0]: invalid kind "teleport"`)
	require.Contains(t, issues, "work_log[1]: entry must be a mapping")
}

func TestValidate_Timestamps(t *testing.T) {
	t.Parallel()

	fields := validFields()
	fields["created_at"] = "not-a-date"
	fields["updated_at"] = ""
	fields["claimed_at"] = nil // null is fine

	issues := ticket.Validate(fields, validBody(), "/root/pending/t.md")
	require.Contains(t, issues, "created_at is not a valid timestamp: not-a-date")
	require.Contains(t, issues, "updated_at is not a valid timestamp: ")

	for _, issue := range issues {
		require.NotContains(t, issue, "claimed_at")
	}
}

func TestValidate_TypeChecks(t *testing.T) {
	t.Parallel()

	fields := validFields()
	fields["requirements"] = "just a string"
	fields["epic"] = 42

	issues := ticket.Validate(fields, validBody(), "/root/pending/t.md")
	require.Contains(t, issues, "requirements must be a list")
	require.Contains(t, issues, "epic must be a string or null")
}

func TestParseTime_AcceptedLayouts(t *testing.T) {
	t.Parallel()

	for _, value := range []string{
		"2025-01-02T10:00:00Z",
		"2025-01-02T10:00:00",
		"2025-01-02 10:00:00",
		"2025-01-02",
	} {
		_, ok := ticket.ParseTime(value)
		require.True(t, ok, "expected %q to parse", value)
	}

	_, ok := ticket.ParseTime("02/01/2025")
	require.False(t, ok)
}

func TestFolderStatusMaps(t *testing.T) {
	t.Parallel()

	folder, ok := ticket.FolderForStatus(ticket.StatusBlocked)
	require.True(t, ok)
	require.Equal(t, "in_progress", folder)

	folder, ok = ticket.FolderForStatus(ticket.StatusArchived)
	require.True(t, ok)
	require.Equal(t, "archive", folder)

	inferred, ok := ticket.InferStatusForFolder("in_progress")
	require.True(t, ok)
	require.Equal(t, ticket.StatusInProgress, inferred)
}
