package engine_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/recursivesquircle/ticket-mcp/internal/engine"
	"github.com/recursivesquircle/ticket-mcp/internal/ticket"
)

func TestUpdate_PatchMergesShallow(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, true)
	seedTicket(t, eng, "T-001")

	_, err := eng.Update(engine.UpdateRequest{
		Ref: engine.Ref{ID: "T-001"},
		Patch: map[string]any{
			"title": "New title",
			"epic":  "billing",
		},
	})
	require.NoError(t, err)

	eng.WaitForIndex()

	got, getErr := eng.Get(engine.GetRequest{Ref: engine.Ref{ID: "T-001"}})
	require.NoError(t, getErr)
	require.Empty(t, got.Issues)
	require.Equal(t, "New title", got.Fields["title"])
	require.Equal(t, "billing", got.Fields["epic"])
	require.Equal(t, "core", got.Fields["area"], "unpatched keys survive")
}

func TestUpdate_PatchNullKeepsKeyPresent(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, true)
	seedTicket(t, eng, "T-001")

	_, err := eng.Update(engine.UpdateRequest{
		Ref:   engine.Ref{ID: "T-001"},
		Patch: map[string]any{"review_notes": nil},
	})
	require.NoError(t, err)

	eng.WaitForIndex()

	got, getErr := eng.Get(engine.GetRequest{Ref: engine.Ref{ID: "T-001"}})
	require.NoError(t, getErr)

	value, present := got.Fields["review_notes"]
	require.True(t, present)
	require.Nil(t, value)
}

func TestUpdate_UnsetRequiredKeyRejectedInStrictMode(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, true)
	created := seedTicket(t, eng, "T-001")

	before, readErr := os.ReadFile(created.Path)
	require.NoError(t, readErr)

	_, err := eng.Update(engine.UpdateRequest{
		Ref:   engine.Ref{ID: "T-001"},
		Unset: []string{"intent"},
	})

	var validation *engine.ValidationError

	require.ErrorAs(t, err, &validation)
	require.Contains(t, validation.Issues, "missing required field: intent")

	after, readErr := os.ReadFile(created.Path)
	require.NoError(t, readErr)
	require.Equal(t, string(before), string(after), "rejected write must leave the file unchanged")
}

func TestUpdate_UnsetToleratedWithoutStrictMode(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, false)
	seedTicket(t, eng, "T-001")

	_, err := eng.Update(engine.UpdateRequest{
		Ref:   engine.Ref{ID: "T-001"},
		Unset: []string{"intent"},
	})
	require.NoError(t, err)

	eng.WaitForIndex()

	got, getErr := eng.Get(engine.GetRequest{Ref: engine.Ref{ID: "T-001"}})
	require.NoError(t, getErr)
	require.Contains(t, got.Issues, "missing required field: intent")
}

func TestUpdate_ExtraKeysAllowed(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, true)
	seedTicket(t, eng, "T-001")

	_, err := eng.Update(engine.UpdateRequest{
		Ref:   engine.Ref{ID: "T-001"},
		Patch: map[string]any{"custom_tag": "urgent"},
	})
	require.NoError(t, err)

	eng.WaitForIndex()

	got, getErr := eng.Get(engine.GetRequest{Ref: engine.Ref{ID: "T-001"}})
	require.NoError(t, getErr)
	require.Empty(t, got.Issues)
	require.Equal(t, "urgent", got.Fields["custom_tag"])
}

func TestAppendWorklog(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, true)
	seedTicket(t, eng, "T-001")

	first, err := eng.AppendWorklog(engine.AppendWorklogRequest{
		Ref: engine.Ref{ID: "T-001"},
		Entry: engine.WorklogEntry{
			Actor:   "agent-7",
			Kind:    ticket.KindAnalysis,
			Summary: "Read the code",
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, first.Entries)

	second, err := eng.AppendWorklog(engine.AppendWorklogRequest{
		Ref: engine.Ref{ID: "T-001"},
		Entry: engine.WorklogEntry{
			Actor:   "agent-7",
			Kind:    ticket.KindChange,
			Summary: "Changed the code",
			Details: &engine.WorklogDetails{
				TouchedFiles: []string{"main.go"},
				Commands:     []string{"make test"},
			},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 2, second.Entries)

	eng.WaitForIndex()

	got, getErr := eng.Get(engine.GetRequest{Ref: engine.Ref{ID: "T-001"}})
	require.NoError(t, getErr)
	require.Empty(t, got.Issues)

	entries, ok := got.Fields.List("work_log")
	require.True(t, ok)
	require.Len(t, entries, 2)

	last, isMap := entries[1].(map[string]any)
	require.True(t, isMap)

	details, hasDetails := last["details"].(map[string]any)
	require.True(t, hasDetails)
	require.Equal(t, []any{"main.go"}, details["touched_files"])
}

func TestAppendWorklog_InvalidEntry(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, true)
	seedTicket(t, eng, "T-001")

	tests := []struct {
		name  string
		entry engine.WorklogEntry
	}{
		{name: "missing actor", entry: engine.WorklogEntry{Kind: "note", Summary: "x"}},
		{name: "missing summary", entry: engine.WorklogEntry{Actor: "a", Kind: "note"}},
		{name: "unknown kind", entry: engine.WorklogEntry{Actor: "a", Kind: "teleport", Summary: "x"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := eng.AppendWorklog(engine.AppendWorklogRequest{
				Ref:   engine.Ref{ID: "T-001"},
				Entry: tc.entry,
			})
			require.ErrorIs(t, err, engine.ErrEntryInvalid)
		})
	}
}
