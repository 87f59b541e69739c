package engine

import (
	"fmt"
	"strings"

	"github.com/recursivesquircle/ticket-mcp/internal/ticket"
)

// AppendWorklog appends one caller-supplied entry to a ticket's work log and
// rewrites the file in place. The entry's timestamp defaults to now; actor,
// kind, and summary must be usable before the store is touched.
func (e *Engine) AppendWorklog(req AppendWorklogRequest) (*AppendWorklogResult, error) {
	entry := req.Entry

	if strings.TrimSpace(entry.Actor) == "" {
		return nil, fmt.Errorf("%w: missing actor", ErrEntryInvalid)
	}

	if strings.TrimSpace(entry.Summary) == "" {
		return nil, fmt.Errorf("%w: missing summary", ErrEntryInvalid)
	}

	if !ticket.IsValidWorklogKind(entry.Kind) {
		return nil, fmt.Errorf("%w: unknown kind %q (valid: %s)",
			ErrEntryInvalid, entry.Kind, strings.Join(ticket.ValidWorklogKinds, ", "))
	}

	record, err := e.resolveForMutation(req.Ref)
	if err != nil {
		return nil, err
	}

	fields := record.Fields.Clone()
	fields = appendEntry(fields, entry)
	fields["updated_at"] = ticket.Now()

	gateErr := e.gate(fields, record.Body, record.Path)
	if gateErr != nil {
		return nil, gateErr
	}

	writeErr := e.store.Write(record.Path, fields, record.Body)
	if writeErr != nil {
		return nil, writeErr
	}

	e.scheduleIndexRegen()

	entries, _ := fields.List("work_log")

	return &AppendWorklogResult{OK: true, Path: record.Path, Entries: len(entries)}, nil
}
