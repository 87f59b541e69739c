package engine

import (
	"fmt"
	"path/filepath"

	"github.com/recursivesquircle/ticket-mcp/internal/frontmatter"
	"github.com/recursivesquircle/ticket-mcp/internal/store"
	"github.com/recursivesquircle/ticket-mcp/internal/ticket"
)

// sentinelDefaults are the defaultable header fields reconcile fills in when
// absent. nil means "set the key to null".
var sentinelDefaults = []struct {
	key   string
	value func() any
}{
	{"epic", func() any { return "none" }},
	{"key_files", func() any { return []any{} }},
	{"requirements", func() any { return []any{} }},
	{"human_testing_steps", func() any { return []any{} }},
	{"constraints", func() any { return []any{} }},
	{"depends_on", func() any { return []any{} }},
	{"work_log", func() any { return []any{} }},
	{"claimed_by", func() any { return nil }},
	{"claimed_at", func() any { return nil }},
	{"review_notes", func() any { return nil }},
}

// Reconcile audits one ticket, or the entire store when the ref is empty.
// In preview mode (the default) it only reports each ticket's current
// issues. In apply mode it repairs what it safely can: sentinel defaults for
// absent fields, reset of broken timestamps, status inferred from the
// containing folder, and relocation to the folder the status requires.
//
// A ticket whose header failed to parse is never touched, even in apply
// mode: it is reported unresolved and skipped. Likewise a ticket whose
// status cannot be inferred stays where it is and counts as unresolved.
//
// Reconcile writes bypass the strict-mode gate: the whole point of apply
// mode is recovering tickets that do not currently validate.
func (e *Engine) Reconcile(req ReconcileRequest) (*ReconcileResult, error) {
	var paths []string

	if req.IsZero() {
		all, err := e.store.ListFiles()
		if err != nil {
			return nil, err
		}

		paths = all
	} else {
		record, err := e.resolveExisting(req.Ref)
		if err != nil {
			return nil, err
		}

		paths = []string{record.Path}
	}

	result := &ReconcileResult{Tickets: []ReconcileTicket{}}

	for _, path := range paths {
		record, readErr := e.store.Read(path)
		if readErr != nil || record == nil {
			result.Unresolved++
			result.Tickets = append(result.Tickets, ReconcileTicket{
				Path:       e.relPath(path),
				Unresolved: true,
				Reason:     "cannot read ticket file",
			})

			continue
		}

		entry := e.reconcileOne(record, req.ApplyFixes)
		if len(entry.Fixes) > 0 {
			result.Changed++
		}

		if entry.Unresolved {
			result.Unresolved++
		}

		result.Tickets = append(result.Tickets, entry)
	}

	return result, nil
}

func (e *Engine) reconcileOne(record *store.Record, applyFixes bool) ReconcileTicket {
	id, _ := record.Fields.String("id")

	entry := ReconcileTicket{Path: e.relPath(record.Path), ID: id}

	if record.ParseErr != "" {
		entry.Unresolved = true
		entry.Reason = "header parse error: " + record.ParseErr

		return entry
	}

	entry.BeforeIssues = ticket.Validate(record.Fields, record.Body, record.Path)

	if !applyFixes {
		return entry
	}

	fields := record.Fields.Clone()

	var fixes []string

	fixes = append(fixes, applyDefaults(fields)...)
	fixes = append(fixes, repairTimestamps(fields)...)

	status, statusOK := validStatus(fields)
	folder := folderOf(record.Path)

	if !statusOK {
		inferred, ok := ticket.InferStatusForFolder(folder)
		if !ok {
			entry.Unresolved = true
			entry.Reason = fmt.Sprintf("status is missing or invalid and folder %q maps to no status", folder)
		} else {
			fields["status"] = inferred
			status = inferred
			statusOK = true

			fixes = append(fixes, fmt.Sprintf("inferred status %q from folder %q", inferred, folder))
		}
	}

	destPath := record.Path

	if statusOK {
		wantFolder, _ := ticket.FolderForStatus(status)
		if wantFolder != folder {
			destPath = filepath.Join(e.cfg.RootDir, wantFolder, filepath.Base(record.Path))
			fixes = append(fixes, fmt.Sprintf("moved from folder %q to %q", folder, wantFolder))
		}
	}

	if len(fixes) == 0 {
		entry.Fixes = nil

		return entry
	}

	writeErr := e.store.Write(destPath, fields, record.Body)
	if writeErr != nil {
		entry.Unresolved = true
		entry.Reason = "write failed: " + writeErr.Error()

		return entry
	}

	if destPath != record.Path {
		removeErr := e.store.Remove(record.Path)
		if removeErr != nil {
			entry.Unresolved = true
			entry.Reason = "old file not removed: " + removeErr.Error()
		}
	}

	entry.Fixes = fixes

	e.scheduleIndexRegen()

	return entry
}

// applyDefaults fills sentinel values for absent defaultable fields.
func applyDefaults(fields frontmatter.Fields) []string {
	var fixes []string

	for _, def := range sentinelDefaults {
		if _, ok := fields[def.key]; ok {
			continue
		}

		value := def.value()
		fields[def.key] = value

		if value == nil {
			fixes = append(fixes, fmt.Sprintf("set %s to null", def.key))
		} else if _, isList := value.([]any); isList {
			fixes = append(fixes, fmt.Sprintf("set %s to []", def.key))
		} else {
			fixes = append(fixes, fmt.Sprintf("set %s to %q", def.key, value))
		}
	}

	return fixes
}

// repairTimestamps resets created_at/updated_at to now when absent or
// unparsable, and nulls claimed_at when present but unparsable.
func repairTimestamps(fields frontmatter.Fields) []string {
	var fixes []string

	now := ticket.Now()

	for _, key := range []string{"created_at", "updated_at"} {
		if timestampUsable(fields, key) {
			continue
		}

		fields[key] = now

		fixes = append(fixes, fmt.Sprintf("reset %s to %s", key, now))
	}

	if raw, ok := fields["claimed_at"]; ok && raw != nil && !timestampUsable(fields, "claimed_at") {
		fields["claimed_at"] = nil

		fixes = append(fixes, "cleared unparsable claimed_at")
	}

	return fixes
}

// timestampUsable reports whether the key holds a parsable timestamp string.
func timestampUsable(fields frontmatter.Fields, key string) bool {
	value, ok := fields.String(key)
	if !ok {
		return false
	}

	_, parses := ticket.ParseTime(value)

	return parses
}

// validStatus returns the status field when it is a valid enum value.
func validStatus(fields frontmatter.Fields) (string, bool) {
	status, ok := fields.String("status")
	if !ok || !ticket.IsValidStatus(status) {
		return "", false
	}

	return status, true
}
