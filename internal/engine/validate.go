package engine

import (
	"github.com/recursivesquircle/ticket-mcp/internal/ticket"
)

// Get returns one fully decoded ticket together with its current validation
// issues. A header parse error is surfaced as an extra issue string rather
// than a failure; only a missing ticket is an error.
func (e *Engine) Get(req GetRequest) (*GetResult, error) {
	record, err := e.resolveExisting(req.Ref)
	if err != nil {
		return nil, err
	}

	issues := ticket.Validate(record.Fields, record.Body, record.Path)
	if record.ParseErr != "" {
		issues = append([]string{"header parse error: " + record.ParseErr}, issues...)
	}

	if issues == nil {
		issues = []string{}
	}

	return &GetResult{
		Path:   record.Path,
		Fields: record.Fields,
		Body:   record.Body,
		Issues: issues,
	}, nil
}

// Validate audits one ticket, or every ticket in the store when the ref is
// empty. Read-only.
func (e *Engine) Validate(req ValidateRequest) (*ValidateResult, error) {
	if !req.IsZero() {
		got, err := e.Get(GetRequest{Ref: req.Ref})
		if err != nil {
			return nil, err
		}

		id, _ := got.Fields.String("id")

		return &ValidateResult{
			Checked: 1,
			Tickets: []TicketIssues{{Path: e.relPath(got.Path), ID: id, Issues: got.Issues}},
		}, nil
	}

	paths, err := e.store.ListFiles()
	if err != nil {
		return nil, err
	}

	result := &ValidateResult{Tickets: []TicketIssues{}}

	for _, path := range paths {
		record, readErr := e.store.Read(path)
		if readErr != nil || record == nil {
			continue
		}

		result.Checked++

		issues := ticket.Validate(record.Fields, record.Body, path)
		if record.ParseErr != "" {
			issues = append([]string{"header parse error: " + record.ParseErr}, issues...)
		}

		if len(issues) == 0 {
			continue
		}

		id, _ := record.Fields.String("id")
		result.Tickets = append(result.Tickets, TicketIssues{
			Path:   e.relPath(path),
			ID:     id,
			Issues: issues,
		})
	}

	return result, nil
}
