package engine

import (
	"fmt"
	"strings"

	"github.com/recursivesquircle/ticket-mcp/internal/ticket"
)

// Claim assigns a pending ticket to an agent: status becomes in_progress,
// the claim fields are stamped, a claim-kind log entry is appended, and the
// file relocates to the in_progress folder. Claiming anything other than a
// pending ticket fails without touching the store.
func (e *Engine) Claim(req ClaimRequest) (*ClaimResult, error) {
	if strings.TrimSpace(req.Agent) == "" {
		return nil, ErrAgentRequired
	}

	record, err := e.resolveForMutation(req.Ref)
	if err != nil {
		return nil, err
	}

	status, _ := record.Fields.String("status")
	if status != ticket.StatusPending {
		return nil, fmt.Errorf("%w: status is %q", ErrNotPending, status)
	}

	now := ticket.Now()

	fields := record.Fields.Clone()
	fields["status"] = ticket.StatusInProgress
	fields["claimed_by"] = req.Agent
	fields["claimed_at"] = now
	fields["updated_at"] = now

	summary := req.Summary
	if summary == "" {
		summary = "Claimed by " + req.Agent
	}

	fields = appendEntry(fields, WorklogEntry{
		At:      now,
		Actor:   req.Agent,
		Kind:    ticket.KindClaim,
		Summary: summary,
	})

	moved, moveErr := e.relocate(record.Path, fields, record.Body, ticket.StatusInProgress)
	if moveErr != nil {
		return nil, moveErr
	}

	return &ClaimResult{
		OK:        true,
		Path:      moved.Path,
		Status:    moved.Status,
		ClaimedBy: req.Agent,
	}, nil
}
