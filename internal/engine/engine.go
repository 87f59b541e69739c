// Package engine implements the guarded ticket mutations (create, patch,
// move, claim, append-worklog, reconcile) and the derived views (list, stats,
// next-id, index) on top of the file store.
//
// Every operation re-reads the store; no state survives between calls. After
// a successful mutation the index document is regenerated asynchronously and
// best-effort: failures are logged, never returned to the caller.
package engine

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/recursivesquircle/ticket-mcp/internal/store"
	"github.com/recursivesquircle/ticket-mcp/internal/ticket"
)

// Engine executes ticket operations against a single root directory.
type Engine struct {
	store  *store.Store
	cfg    ticket.Config
	logger *slog.Logger

	indexJobs sync.WaitGroup
}

// New creates an engine for the given configuration. logger may be nil.
func New(cfg ticket.Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		store:  store.New(cfg.RootDir),
		cfg:    cfg,
		logger: logger,
	}
}

// Store exposes the underlying file store.
func (e *Engine) Store() *store.Store {
	return e.store
}

// ValidationError carries the issue list of a write rejected by strict mode.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Issues, "; ")
}

// gate validates the candidate state of a record. In strict mode any issue
// aborts the write; otherwise issues are tolerated and the write proceeds.
func (e *Engine) gate(fields map[string]any, body, path string) error {
	issues := ticket.Validate(fields, body, path)
	if len(issues) > 0 && e.cfg.StrictMode() {
		return &ValidationError{Issues: issues}
	}

	return nil
}

// resolveExisting maps an id/path reference to an existing record. The
// returned record may carry a parse error; mutating callers must check.
func (e *Engine) resolveExisting(ref Ref) (*store.Record, error) {
	path, err := e.store.Resolve(ref.ID, ref.Path)
	if err != nil {
		return nil, err
	}

	if path == "" {
		return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, ref.describe())
	}

	record, readErr := e.store.Read(path)
	if readErr != nil {
		return nil, readErr
	}

	if record == nil {
		return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, ref.describe())
	}

	return record, nil
}

// resolveForMutation is resolveExisting plus the parse-error guard: a record
// whose header failed to parse cannot be safely rewritten.
func (e *Engine) resolveForMutation(ref Ref) (*store.Record, error) {
	record, err := e.resolveExisting(ref)
	if err != nil {
		return nil, err
	}

	if record.ParseErr != "" {
		return nil, fmt.Errorf("%w: %s: %s", ErrHeaderUnparsable, record.Path, record.ParseErr)
	}

	return record, nil
}

// scheduleIndexRegen regenerates the index document in the background.
// Errors are logged and swallowed; callers never wait for completion.
func (e *Engine) scheduleIndexRegen() {
	e.indexJobs.Add(1)

	go func() {
		defer e.indexJobs.Done()

		err := e.RegenerateIndex()
		if err != nil {
			e.logger.Warn("index regeneration failed", "root", e.cfg.RootDir, "error", err)
		}
	}()
}

// WaitForIndex blocks until all scheduled index regenerations finish.
// Intended for tests and orderly shutdown.
func (e *Engine) WaitForIndex() {
	e.indexJobs.Wait()
}

// folderOf returns the name of the directory containing a ticket file.
func folderOf(path string) string {
	return filepath.Base(filepath.Dir(path))
}

// relPath renders a path relative to the ticket root for display.
func (e *Engine) relPath(path string) string {
	rel, err := filepath.Rel(e.cfg.RootDir, path)
	if err != nil {
		return path
	}

	return rel
}
