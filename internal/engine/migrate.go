package engine

import (
	"os"

	"github.com/recursivesquircle/ticket-mcp/internal/frontmatter"
)

// Migrate rewrites every parseable ticket into canonical form: canonical
// header key order, legacy aliases folded, sentinel defaults filled in.
// Files whose content is already canonical are left alone; files whose
// header cannot be parsed are skipped and counted.
//
// This is the one-shot bulk pass for stores written by older tooling; it is
// idempotent and safe to re-run.
func (e *Engine) Migrate() (*MigrateResult, error) {
	paths, err := e.store.ListFiles()
	if err != nil {
		return nil, err
	}

	result := &MigrateResult{}

	for _, path := range paths {
		record, readErr := e.store.Read(path)
		if readErr != nil || record == nil {
			result.Skipped++

			continue
		}

		result.Total++

		if record.ParseErr != "" {
			result.Skipped++

			continue
		}

		fields := record.Fields.Clone()
		applyDefaults(fields)

		canonical, encodeErr := frontmatter.Encode(fields, record.Body)
		if encodeErr != nil {
			result.Skipped++

			continue
		}

		current, currentErr := os.ReadFile(path)
		if currentErr == nil && string(current) == canonical {
			continue
		}

		writeErr := e.store.Write(path, fields, record.Body)
		if writeErr != nil {
			result.Skipped++

			continue
		}

		result.Changed++
	}

	if result.Changed > 0 {
		e.scheduleIndexRegen()
	}

	return result, nil
}
