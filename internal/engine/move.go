package engine

import (
	"path/filepath"

	"github.com/recursivesquircle/ticket-mcp/internal/frontmatter"
	"github.com/recursivesquircle/ticket-mcp/internal/ticket"
)

// Move transitions a ticket to the given status and relocates its file to
// the folder mapped by the folder table. The destination is written before
// the source is deleted, so a failure can duplicate but never lose a ticket.
func (e *Engine) Move(req MoveRequest) (*MoveResult, error) {
	if _, ok := ticket.FolderForStatus(req.Status); !ok {
		return nil, statusError(req.Status)
	}

	record, err := e.resolveForMutation(req.Ref)
	if err != nil {
		return nil, err
	}

	fields := record.Fields.Clone()
	fields["status"] = req.Status
	fields["updated_at"] = ticket.Now()

	if req.Log != nil {
		fields = appendEntry(fields, *req.Log)
	}

	return e.relocate(record.Path, fields, record.Body, req.Status)
}

// relocate writes the record to the folder its status requires and removes
// the old file when the location changed. Shared by Move and Claim.
func (e *Engine) relocate(srcPath string, fields frontmatter.Fields, body, status string) (*MoveResult, error) {
	folder, _ := ticket.FolderForStatus(status)
	destPath := filepath.Join(e.cfg.RootDir, folder, filepath.Base(srcPath))

	gateErr := e.gate(fields, body, destPath)
	if gateErr != nil {
		return nil, gateErr
	}

	writeErr := e.store.Write(destPath, fields, body)
	if writeErr != nil {
		return nil, writeErr
	}

	if destPath != srcPath {
		removeErr := e.store.Remove(srcPath)
		if removeErr != nil {
			return nil, removeErr
		}
	}

	e.scheduleIndexRegen()

	return &MoveResult{OK: true, Path: destPath, Status: status}, nil
}
