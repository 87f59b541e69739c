package engine

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// List returns a filtered view of the store. All filters AND together; the
// text filter matches a case-insensitive substring over id, title, and
// intent. Results sort by updated_at descending — timestamps are ISO-8601
// strings, so the lexicographic compare is chronological.
func (e *Engine) List(req ListRequest) (*ListResult, error) {
	summaries, err := e.snapshot()
	if err != nil {
		return nil, err
	}

	text := normalizeText(req.Text)

	filtered := make([]Summary, 0, len(summaries))

	for _, row := range summaries {
		if len(req.Status) > 0 && !slices.Contains(req.Status, row.Status) {
			continue
		}

		if len(req.Area) > 0 && !slices.Contains(req.Area, row.Area) {
			continue
		}

		if len(req.Epic) > 0 && !slices.Contains(req.Epic, row.Epic) {
			continue
		}

		if text != "" && !strings.Contains(normalizeText(row.ID+" "+row.Title+" "+row.intent), text) {
			continue
		}

		filtered = append(filtered, row.Summary)
	}

	slices.SortStableFunc(filtered, func(a, b Summary) int {
		return strings.Compare(b.UpdatedAt, a.UpdatedAt)
	})

	return &ListResult{Tickets: filtered}, nil
}

// Stats counts tickets per status, area, and epic, and reports the highest
// numeric id suffix seen in the store.
func (e *Engine) Stats() (*StatsResult, error) {
	summaries, err := e.snapshot()
	if err != nil {
		return nil, err
	}

	result := &StatsResult{
		ByStatus: map[string]int{},
		ByArea:   map[string]int{},
		ByEpic:   map[string]int{},
	}

	for _, row := range summaries {
		result.Total++

		status := row.Status
		if status == "" {
			status = "unknown"
		}

		area := row.Area
		if area == "" {
			area = "unknown"
		}

		epic := row.Epic
		if epic == "" {
			epic = "unassigned"
		}

		result.ByStatus[status]++
		result.ByArea[area]++
		result.ByEpic[epic]++

		if n, ok := numericSuffix(row.ID); ok && n > result.HighestTicketNumber {
			result.HighestTicketNumber = n
		}
	}

	result.NextTicketNumber = result.HighestTicketNumber + 1

	return result, nil
}

// Default id suggestion shape: T-001.
const (
	defaultIDPrefix    = "T"
	defaultIDSeparator = "-"
	defaultIDWidth     = 3
)

// NextID reports the highest numeric id suffix in the store and formats a
// suggested next id. Width 0 disables zero padding.
func (e *Engine) NextID(req NextIDRequest) (*NextIDResult, error) {
	stats, err := e.Stats()
	if err != nil {
		return nil, err
	}

	prefix := req.Prefix
	if prefix == "" {
		prefix = defaultIDPrefix
	}

	separator := req.Separator
	if separator == "" {
		separator = defaultIDSeparator
	}

	width := defaultIDWidth
	if req.Width != nil {
		width = *req.Width
	}

	next := stats.NextTicketNumber

	number := strconv.Itoa(next)
	if width > 0 {
		number = fmt.Sprintf("%0*d", width, next)
	}

	return &NextIDResult{
		Highest:     stats.HighestTicketNumber,
		Next:        next,
		SuggestedID: prefix + separator + number,
	}, nil
}

// numericSuffix extracts the last maximal run of digits from an id:
// "T-BASE-042" yields 42. ok is false when the id has no digits.
func numericSuffix(id string) (int, bool) {
	end := -1

	for idx := len(id) - 1; idx >= 0; idx-- {
		isDigit := id[idx] >= '0' && id[idx] <= '9'

		if isDigit && end == -1 {
			end = idx + 1
		}

		if !isDigit && end != -1 {
			n, err := strconv.Atoi(id[idx+1 : end])
			if err != nil {
				return 0, false
			}

			return n, true
		}
	}

	if end == -1 {
		return 0, false
	}

	n, err := strconv.Atoi(id[:end])
	if err != nil {
		return 0, false
	}

	return n, true
}

// snapshot reads every parseable ticket into a summary row. Records whose
// header failed to parse carry no fields and are skipped; reconcile and
// validate are the tools that surface them.
func (e *Engine) snapshot() ([]summaryRow, error) {
	paths, err := e.store.ListFiles()
	if err != nil {
		return nil, err
	}

	rows := make([]summaryRow, 0, len(paths))

	for _, path := range paths {
		record, readErr := e.store.Read(path)
		if readErr != nil || record == nil || record.ParseErr != "" {
			continue
		}

		id, _ := record.Fields.String("id")
		title, _ := record.Fields.String("title")
		status, _ := record.Fields.String("status")
		area, _ := record.Fields.String("area")
		epic, _ := record.Fields.String("epic")
		updatedAt, _ := record.Fields.String("updated_at")
		claimedBy, _ := record.Fields.String("claimed_by")
		intent, _ := record.Fields.String("intent")

		rows = append(rows, summaryRow{
			Summary: Summary{
				ID:        id,
				Title:     title,
				Status:    status,
				Area:      area,
				Epic:      epic,
				UpdatedAt: updatedAt,
				ClaimedBy: claimedBy,
				Path:      path,
			},
			intent: intent,
		})
	}

	return rows, nil
}

// summaryRow is a Summary plus fields needed for filtering but not exposed.
type summaryRow struct {
	Summary

	intent string
}
