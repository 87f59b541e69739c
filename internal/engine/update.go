package engine

import (
	"github.com/recursivesquircle/ticket-mcp/internal/frontmatter"
	"github.com/recursivesquircle/ticket-mcp/internal/ticket"
)

// Update shallow-merges a header patch into an existing ticket and rewrites
// it in place. Patch values win; keys in Unset are removed. The candidate
// state is revalidated before the write, so in strict mode a patch that
// would break the schema leaves the file untouched.
func (e *Engine) Update(req UpdateRequest) (*UpdateResult, error) {
	record, err := e.resolveForMutation(req.Ref)
	if err != nil {
		return nil, err
	}

	fields := record.Fields.Clone()

	for key, value := range req.Patch {
		fields[key] = value
	}

	for _, key := range req.Unset {
		delete(fields, key)
	}

	fields["updated_at"] = ticket.Now()

	if req.Log != nil {
		fields = appendEntry(fields, *req.Log)
	}

	gateErr := e.gate(fields, record.Body, record.Path)
	if gateErr != nil {
		return nil, gateErr
	}

	writeErr := e.store.Write(record.Path, fields, record.Body)
	if writeErr != nil {
		return nil, writeErr
	}

	e.scheduleIndexRegen()

	return &UpdateResult{OK: true, Path: record.Path}, nil
}

// appendEntry appends one work-log entry, defaulting its timestamp to now.
// The full list is always rewritten; entries are never removed.
func appendEntry(fields frontmatter.Fields, entry WorklogEntry) frontmatter.Fields {
	if entry.At == "" {
		entry.At = ticket.Now()
	}

	existing, _ := fields.List("work_log")

	entries := make([]any, 0, len(existing)+1)
	entries = append(entries, existing...)
	entries = append(entries, entry.toMap())

	fields["work_log"] = entries

	return fields
}
