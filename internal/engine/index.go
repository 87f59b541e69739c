package engine

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/recursivesquircle/ticket-mcp/internal/ticket"
)

// IndexFileName is the generated summary document at the ticket root.
const IndexFileName = "INDEX.md"

// activeStatuses are listed first in the index; terminalStatuses follow,
// collapsed by default.
var (
	activeStatuses = []string{
		ticket.StatusPending,
		ticket.StatusInProgress,
		ticket.StatusBlocked,
		ticket.StatusAwaitingHumanTest,
	}

	terminalStatuses = []string{
		ticket.StatusDone,
		ticket.StatusArchived,
	}
)

// RegenerateIndex rewrites INDEX.md from the current store snapshot. The
// document is purely derived: safe to regenerate at any time, never read
// back as a source of truth.
func (e *Engine) RegenerateIndex() error {
	rows, err := e.snapshot()
	if err != nil {
		return err
	}

	groups := make(map[string][]summaryRow)
	for _, row := range rows {
		groups[row.Status] = append(groups[row.Status], row)
	}

	var builder strings.Builder

	builder.WriteString("# Ticket Index\n\n")
	builder.WriteString("Generated file. Regenerated after every mutation; do not edit.\n")

	for _, status := range activeStatuses {
		writeIndexGroup(&builder, status, groups[status], false)
	}

	for _, status := range terminalStatuses {
		writeIndexGroup(&builder, status, groups[status], true)
	}

	path := filepath.Join(e.cfg.RootDir, IndexFileName)

	writeErr := atomic.WriteFile(path, strings.NewReader(builder.String()))
	if writeErr != nil {
		return fmt.Errorf("writing index: %w", writeErr)
	}

	return nil
}

func writeIndexGroup(builder *strings.Builder, status string, rows []summaryRow, collapsed bool) {
	heading := fmt.Sprintf("%s (%d)", status, len(rows))

	if collapsed {
		builder.WriteString("\n<details>\n<summary>" + heading + "</summary>\n\n")
	} else {
		builder.WriteString("\n## " + heading + "\n\n")
	}

	if len(rows) == 0 {
		builder.WriteString("_none_\n")
	}

	for _, row := range rows {
		builder.WriteString("- **" + row.ID + "** " + row.Title)

		if row.Area != "" {
			builder.WriteString(" — " + row.Area)
		}

		if row.ClaimedBy != "" {
			builder.WriteString(" (claimed by " + row.ClaimedBy + ")")
		}

		builder.WriteString("\n")
	}

	if collapsed {
		builder.WriteString("\n</details>\n")
	}
}
