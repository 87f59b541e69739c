package engine

import "errors"

// Error variables for engine operations. All are returned as structured
// errors; the engine never panics on caller input.
var (
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrHeaderUnparsable = errors.New("ticket header cannot be parsed")
	ErrIDRequired       = errors.New("id is required")
	ErrDuplicateID      = errors.New("ticket id already exists")
	ErrTitleRequired    = errors.New("title is required")
	ErrAreaRequired     = errors.New("area is required")
	ErrIntentRequired   = errors.New("intent is required")
	ErrListFieldEmpty   = errors.New("list field must be non-empty")
	ErrTicketFileExists = errors.New("ticket file already exists")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrNotPending       = errors.New("ticket is not pending")
	ErrAgentRequired    = errors.New("agent is required")
	ErrEntryInvalid     = errors.New("work log entry is invalid")
)
