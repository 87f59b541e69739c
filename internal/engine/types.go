package engine

import (
	"strings"

	"github.com/recursivesquircle/ticket-mcp/internal/frontmatter"
)

// Ref identifies a ticket by id or path. Path takes precedence when both are
// set; a relative path is resolved against the ticket root.
type Ref struct {
	ID   string `json:"id,omitempty"`
	Path string `json:"path,omitempty"`
}

func (r Ref) describe() string {
	if r.Path != "" {
		return r.Path
	}

	if r.ID != "" {
		return r.ID
	}

	return "(no id or path)"
}

// IsZero reports whether neither id nor path is set.
func (r Ref) IsZero() bool {
	return r.ID == "" && r.Path == ""
}

// WorklogDetails are the optional structured attachments of a log entry.
type WorklogDetails struct {
	TouchedFiles []string `json:"touched_files,omitempty"`
	Commands     []string `json:"commands,omitempty"`
	Links        []string `json:"links,omitempty"`
	Notes        []string `json:"notes,omitempty"`
}

// WorklogEntry is one work-log record as supplied by callers. At defaults to
// the current time when blank.
type WorklogEntry struct {
	At      string          `json:"at,omitempty"`
	Actor   string          `json:"actor"`
	Kind    string          `json:"kind"`
	Summary string          `json:"summary"`
	Details *WorklogDetails `json:"details,omitempty"`
}

func (w WorklogEntry) toMap() map[string]any {
	entry := map[string]any{
		"at":      w.At,
		"actor":   w.Actor,
		"kind":    w.Kind,
		"summary": w.Summary,
	}

	if w.Details != nil {
		details := map[string]any{}

		if len(w.Details.TouchedFiles) > 0 {
			details["touched_files"] = toAnyList(w.Details.TouchedFiles)
		}

		if len(w.Details.Commands) > 0 {
			details["commands"] = toAnyList(w.Details.Commands)
		}

		if len(w.Details.Links) > 0 {
			details["links"] = toAnyList(w.Details.Links)
		}

		if len(w.Details.Notes) > 0 {
			details["notes"] = toAnyList(w.Details.Notes)
		}

		if len(details) > 0 {
			entry["details"] = details
		}
	}

	return entry
}

func toAnyList(items []string) []any {
	out := make([]any, len(items))
	for idx, item := range items {
		out[idx] = item
	}

	return out
}

// CreateRequest carries the inputs of tickets.create.
type CreateRequest struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Area              string   `json:"area"`
	Intent            string   `json:"intent"`
	Epic              string   `json:"epic,omitempty"`
	Status            string   `json:"status,omitempty"`
	CreatedAt         string   `json:"created_at,omitempty"`
	Filename          string   `json:"filename,omitempty"`
	Body              string   `json:"body,omitempty"`
	Requirements      []string `json:"requirements"`
	HumanTestingSteps []string `json:"human_testing_steps"`
	Constraints       []string `json:"constraints"`
	KeyFiles          []string `json:"key_files"`
	DependsOn         []string `json:"depends_on,omitempty"`
}

// CreateResult reports a created ticket.
type CreateResult struct {
	OK   bool   `json:"ok"`
	ID   string `json:"id"`
	Path string `json:"path"`
}

// GetRequest fetches one ticket.
type GetRequest struct {
	Ref
}

// GetResult is one fully decoded ticket plus its current issues.
type GetResult struct {
	Path   string             `json:"path"`
	Fields frontmatter.Fields `json:"fields"`
	Body   string             `json:"body"`
	Issues []string           `json:"issues"`
}

// UpdateRequest is a shallow header patch. Patch values win over existing
// ones; keys listed in Unset are removed before revalidation.
type UpdateRequest struct {
	Ref
	Patch map[string]any `json:"patch"`
	Unset []string       `json:"unset,omitempty"`
	Log   *WorklogEntry  `json:"log,omitempty"`
}

// UpdateResult reports an in-place patch.
type UpdateResult struct {
	OK   bool   `json:"ok"`
	Path string `json:"path"`
}

// MoveRequest transitions a ticket to a new status.
type MoveRequest struct {
	Ref
	Status string        `json:"status"`
	Log    *WorklogEntry `json:"log,omitempty"`
}

// MoveResult reports the ticket's new location and status.
type MoveResult struct {
	OK     bool   `json:"ok"`
	Path   string `json:"path"`
	Status string `json:"status"`
}

// ClaimRequest marks a pending ticket as claimed by an agent.
type ClaimRequest struct {
	Ref
	Agent   string `json:"agent"`
	Summary string `json:"summary,omitempty"`
}

// ClaimResult reports a successful claim.
type ClaimResult struct {
	OK        bool   `json:"ok"`
	Path      string `json:"path"`
	Status    string `json:"status"`
	ClaimedBy string `json:"claimed_by"`
}

// AppendWorklogRequest appends one entry to a ticket's work log.
type AppendWorklogRequest struct {
	Ref
	Entry WorklogEntry `json:"entry"`
}

// AppendWorklogResult reports the append.
type AppendWorklogResult struct {
	OK      bool   `json:"ok"`
	Path    string `json:"path"`
	Entries int    `json:"entries"`
}

// ValidateRequest checks one ticket, or the whole store when the ref is
// empty.
type ValidateRequest struct {
	Ref
}

// TicketIssues is the validation outcome for one file.
type TicketIssues struct {
	Path   string   `json:"path"`
	ID     string   `json:"id,omitempty"`
	Issues []string `json:"issues"`
}

// ValidateResult aggregates validation outcomes. Checked counts every file
// scanned; Tickets holds only files with at least one issue, except for
// single-ticket requests where the entry is always present.
type ValidateResult struct {
	Checked int            `json:"checked"`
	Tickets []TicketIssues `json:"tickets"`
}

// ListRequest filters the store listing. All filters AND together.
type ListRequest struct {
	Status []string `json:"status,omitempty"`
	Area   []string `json:"area,omitempty"`
	Epic   []string `json:"epic,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// Summary is one row of a listing.
type Summary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	Area      string `json:"area"`
	Epic      string `json:"epic"`
	UpdatedAt string `json:"updated_at"`
	ClaimedBy string `json:"claimed_by,omitempty"`
	Path      string `json:"path"`
}

// ListResult is a filtered listing sorted by updated_at descending.
type ListResult struct {
	Tickets []Summary `json:"tickets"`
}

// StatsResult aggregates counts over the full store.
type StatsResult struct {
	Total               int            `json:"total"`
	ByStatus            map[string]int `json:"by_status"`
	ByArea              map[string]int `json:"by_area"`
	ByEpic              map[string]int `json:"by_epic"`
	HighestTicketNumber int            `json:"highest_ticket_number"`
	NextTicketNumber    int            `json:"next_ticket_number"`
}

// NextIDRequest configures id suggestion. Width nil means the default of 3;
// an explicit 0 disables zero padding.
type NextIDRequest struct {
	Prefix    string `json:"prefix,omitempty"`
	Separator string `json:"separator,omitempty"`
	Width     *int   `json:"width,omitempty"`
}

// NextIDResult reports the numeric id horizon and a formatted suggestion.
type NextIDResult struct {
	Highest     int    `json:"highest"`
	Next        int    `json:"next"`
	SuggestedID string `json:"suggested_id"`
}

// ReconcileRequest audits one ticket or the whole store. ApplyFixes off is
// preview mode: report, never mutate.
type ReconcileRequest struct {
	Ref
	ApplyFixes bool `json:"apply_fixes,omitempty"`
}

// ReconcileTicket is the audit outcome for one file.
type ReconcileTicket struct {
	Path         string   `json:"path"`
	ID           string   `json:"id,omitempty"`
	BeforeIssues []string `json:"before_issues"`
	Fixes        []string `json:"fixes,omitempty"`
	Unresolved   bool     `json:"unresolved,omitempty"`
	Reason       string   `json:"reason,omitempty"`
}

// ReconcileResult aggregates an audit pass. Changed counts tickets that were
// rewritten; Unresolved counts tickets left broken.
type ReconcileResult struct {
	Tickets    []ReconcileTicket `json:"tickets"`
	Changed    int               `json:"changed"`
	Unresolved int               `json:"unresolved"`
}

// MigrateResult reports a bulk canonical rewrite.
type MigrateResult struct {
	Total   int `json:"total"`
	Changed int `json:"changed"`
	Skipped int `json:"skipped"`
}

// normalizeText lowercases for case-insensitive substring matching.
func normalizeText(s string) string {
	return strings.ToLower(s)
}
