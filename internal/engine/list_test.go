package engine_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/recursivesquircle/ticket-mcp/internal/engine"
	"github.com/recursivesquircle/ticket-mcp/internal/ticket"
)

// seedStore creates three tickets across statuses and areas:
// T-BASE-001 (pending, core), T-BASE-002 (done, api, epic billing),
// T-BASE-042 (pending, core, intent mentions "fixture needle").
func seedStore(t *testing.T, eng *engine.Engine) {
	t.Helper()

	first := createRequest("T-BASE-001")
	first.CreatedAt = "2025-01-01T00:00:00Z"

	_, err := eng.Create(first)
	require.NoError(t, err)

	second := createRequest("T-BASE-002")
	second.Area = "api"
	second.Epic = "billing"
	second.CreatedAt = "2025-01-02T00:00:00Z"

	_, err = eng.Create(second)
	require.NoError(t, err)

	_, err = eng.Move(engine.MoveRequest{
		Ref:    engine.Ref{ID: "T-BASE-002"},
		Status: ticket.StatusDone,
	})
	require.NoError(t, err)

	third := createRequest("T-BASE-042")
	third.Intent = "Exists as the fixture needle for text search."
	third.CreatedAt = "2025-01-03T00:00:00Z"

	_, err = eng.Create(third)
	require.NoError(t, err)

	eng.WaitForIndex()
}

func ids(tickets []engine.Summary) []string {
	out := make([]string, 0, len(tickets))
	for _, row := range tickets {
		out = append(out, row.ID)
	}

	return out
}

func TestList_NoFiltersSortsByUpdatedAtDescending(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, true)
	seedStore(t, eng)

	result, err := eng.List(engine.ListRequest{})
	require.NoError(t, err)
	require.Len(t, result.Tickets, 3)

	// T-BASE-002 was moved after seeding, so its updated_at is the newest.
	require.Equal(t, "T-BASE-002", result.Tickets[0].ID)
}

func TestList_Filters(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, true)
	seedStore(t, eng)

	tests := []struct {
		name string
		req  engine.ListRequest
		want []string
	}{
		{
			name: "by status",
			req:  engine.ListRequest{Status: []string{"pending"}},
			want: []string{"T-BASE-042", "T-BASE-001"},
		},
		{
			name: "by area",
			req:  engine.ListRequest{Area: []string{"api"}},
			want: []string{"T-BASE-002"},
		},
		{
			name: "by epic",
			req:  engine.ListRequest{Epic: []string{"billing"}},
			want: []string{"T-BASE-002"},
		},
		{
			name: "text over intent",
			req:  engine.ListRequest{Text: "FIXTURE NEEDLE"},
			want: []string{"T-BASE-042"},
		},
		{
			name: "filters AND together",
			req:  engine.ListRequest{Status: []string{"pending"}, Area: []string{"api"}},
			want: []string{},
		},
		{
			name: "multiple statuses",
			req:  engine.ListRequest{Status: []string{"pending", "done"}},
			want: []string{"T-BASE-002", "T-BASE-042", "T-BASE-001"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			result, err := eng.List(tc.req)
			require.NoError(t, err)
			require.Equal(t, tc.want, ids(result.Tickets))
		})
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, true)
	seedStore(t, eng)

	result, err := eng.Stats()
	require.NoError(t, err)
	require.Equal(t, 3, result.Total)
	require.Equal(t, map[string]int{"pending": 2, "done": 1}, result.ByStatus)
	require.Equal(t, map[string]int{"core": 2, "api": 1}, result.ByArea)
	require.Equal(t, map[string]int{"none": 2, "billing": 1}, result.ByEpic)
	require.Equal(t, 42, result.HighestTicketNumber)
	require.Equal(t, 43, result.NextTicketNumber)
}

func TestNextID(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, true)
	seedStore(t, eng)

	result, err := eng.NextID(engine.NextIDRequest{})
	require.NoError(t, err)
	require.Equal(t, 42, result.Highest)
	require.Equal(t, 43, result.Next)
	require.Equal(t, "T-043", result.SuggestedID)
}

func TestNextID_CustomShape(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, true)

	req := createRequest("TICKET_100")
	_, err := eng.Create(req)
	require.NoError(t, err)

	eng.WaitForIndex()

	width := 0

	result, nextErr := eng.NextID(engine.NextIDRequest{
		Prefix:    "TICKET",
		Separator: "_",
		Width:     &width,
	})
	require.NoError(t, nextErr)
	require.Equal(t, 100, result.Highest)
	require.Equal(t, "TICKET_101", result.SuggestedID)
}

func TestNextID_EmptyStore(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, true)

	result, err := eng.NextID(engine.NextIDRequest{})
	require.NoError(t, err)
	require.Equal(t, 0, result.Highest)
	require.Equal(t, "T-001", result.SuggestedID)
}

func TestRegenerateIndex(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, true)
	seedStore(t, eng)

	require.NoError(t, eng.RegenerateIndex())

	data, err := os.ReadFile(filepath.Join(eng.Store().Root(), engine.IndexFileName))
	require.NoError(t, err)

	content := string(data)
	require.Contains(t, content, "# Ticket Index")
	require.Contains(t, content, "## pending (2)")
	require.Contains(t, content, "## in_progress (0)")
	require.Contains(t, content, "_none_")
	require.Contains(t, content, "<summary>done (1)</summary>")
	require.Contains(t, content, "- **T-BASE-001** Test ticket T-BASE-001 — core")
}
