package frontmatter_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/recursivesquircle/ticket-mcp/internal/frontmatter"
)

func TestDecode_BasicHeader(t *testing.T) {
	t.Parallel()

	raw := `---
id: T-001
title: Fix the widget
status: pending
epic: none
claimed_by: null
requirements:
  - do the thing
---

## Intent

Because.
`

	fields, body, parseErr := frontmatter.Decode(raw)

	require.Empty(t, parseErr)
	require.Equal(t, "T-001", fields["id"])
	require.Equal(t, "pending", fields["status"])

	// claimed_by: null is present-with-nil, not absent.
	value, ok := fields["claimed_by"]
	require.True(t, ok)
	require.Nil(t, value)

	reqs, ok := fields.StringList("requirements")
	require.True(t, ok)
	require.Equal(t, []string{"do the thing"}, reqs)

	require.True(t, strings.HasPrefix(body, "## Intent"))
}

func TestDecode_NoHeaderIsAllBody(t *testing.T) {
	t.Parallel()

	raw := "just some markdown\n\nwith paragraphs\n"

	fields, body, parseErr := frontmatter.Decode(raw)

	require.Empty(t, parseErr)
	require.Empty(t, fields)
	require.Equal(t, raw, body)
}

func TestDecode_UnterminatedHeaderIsAllBody(t *testing.T) {
	t.Parallel()

	raw := "---\nid: T-002\nno closing delimiter\n"

	fields, body, parseErr := frontmatter.Decode(raw)

	require.Empty(t, parseErr)
	require.Empty(t, fields)
	require.Equal(t, raw, body)
}

func TestDecode_InvalidYAMLReportsParseError(t *testing.T) {
	t.Parallel()

	raw := "---\nid: [unclosed\n---\n\nbody text\n"

	fields, body, parseErr := frontmatter.Decode(raw)

	require.NotEmpty(t, parseErr)
	require.Empty(t, fields)
	require.Contains(t, body, "body text")
}

func TestDecode_TimestampsStayStrings(t *testing.T) {
	t.Parallel()

	// Unquoted ISO timestamps must not surface as time.Time values.
	raw := "---\ncreated_at: 2025-01-02T10:00:00Z\n---\nbody\n"

	fields, _, parseErr := frontmatter.Decode(raw)

	require.Empty(t, parseErr)
	require.Equal(t, "2025-01-02T10:00:00Z", fields["created_at"])
}

func TestDecode_LegacyFeatureKeyFoldsIntoEpic(t *testing.T) {
	t.Parallel()

	raw := "---\nid: T-003\nfeature: billing\n---\nbody\n"

	fields, _, parseErr := frontmatter.Decode(raw)

	require.Empty(t, parseErr)
	require.Equal(t, "billing", fields["epic"])

	_, hasFeature := fields["feature"]
	require.False(t, hasFeature)
}

func TestEncode_CanonicalKeyOrder(t *testing.T) {
	t.Parallel()

	fields := frontmatter.Fields{
		"work_log":   []any{},
		"id":         "T-004",
		"zz_custom":  "kept",
		"aa_custom":  "kept",
		"title":      "Ordered",
		"claimed_by": nil,
	}

	encoded, err := frontmatter.Encode(fields, "body\n")
	require.NoError(t, err)

	idIdx := strings.Index(encoded, "\nid:")
	titleIdx := strings.Index(encoded, "\ntitle:")
	claimedIdx := strings.Index(encoded, "\nclaimed_by:")
	workLogIdx := strings.Index(encoded, "\nwork_log:")
	aaIdx := strings.Index(encoded, "\naa_custom:")
	zzIdx := strings.Index(encoded, "\nzz_custom:")

	for name, idx := range map[string]int{
		"id": idIdx, "title": titleIdx, "claimed_by": claimedIdx,
		"work_log": workLogIdx, "aa_custom": aaIdx, "zz_custom": zzIdx,
	} {
		require.GreaterOrEqual(t, idx, 0, "key %s missing from output", name)
	}

	require.Less(t, idIdx, titleIdx)
	require.Less(t, titleIdx, claimedIdx)
	require.Less(t, claimedIdx, workLogIdx)

	// Unknown keys come after all canonical ones, alphabetically.
	require.Less(t, workLogIdx, aaIdx)
	require.Less(t, aaIdx, zzIdx)
}

func TestEncode_NullStaysNull(t *testing.T) {
	t.Parallel()

	fields := frontmatter.Fields{"id": "T-005", "claimed_by": nil}

	encoded, err := frontmatter.Encode(fields, "")
	require.NoError(t, err)
	require.Contains(t, encoded, "claimed_by: null")
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	fields := frontmatter.Fields{
		"id":         "T-006",
		"title":      "Round trip",
		"status":     "in_progress",
		"created_at": "2025-03-01T09:00:00Z",
		"epic":       "none",
		"claimed_by": "agent-7",
		"claimed_at": "2025-03-02T09:00:00Z",
		"requirements": []any{
			"first",
			"second: with colon",
		},
		"review_notes": nil,
		"work_log": []any{
			map[string]any{
				"at":      "2025-03-02T09:00:00Z",
				"actor":   "agent-7",
				"kind":    "claim",
				"summary": "Claimed by agent-7",
				"details": map[string]any{
					"touched_files": []any{"a.go", "b.go"},
				},
			},
		},
	}
	body := "## Intent\n\nSurvive the trip.\n"

	encoded, err := frontmatter.Encode(fields, body)
	require.NoError(t, err)

	gotFields, gotBody, parseErr := frontmatter.Decode(encoded)
	require.Empty(t, parseErr)

	if diff := cmp.Diff(fields, gotFields); diff != "" {
		t.Fatalf("fields changed across round trip (-want +got):\n%s", diff)
	}

	require.Equal(t, body, gotBody)
}
