package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/recursivesquircle/ticket-mcp/internal/frontmatter"
	"github.com/recursivesquircle/ticket-mcp/internal/ticket"
)

const maxSlugLength = 60

// Create writes a new ticket file. The id must be unique across the store,
// title/area/intent must be non-empty, and the four seed lists must each
// carry at least one entry. Missing optional fields receive their sentinel
// defaults; the body defaults to a template containing every required
// section.
func (e *Engine) Create(req CreateRequest) (*CreateResult, error) {
	if strings.TrimSpace(req.ID) == "" {
		return nil, ErrIDRequired
	}

	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrTitleRequired
	}

	if strings.TrimSpace(req.Area) == "" {
		return nil, ErrAreaRequired
	}

	if strings.TrimSpace(req.Intent) == "" {
		return nil, ErrIntentRequired
	}

	for name, list := range map[string][]string{
		"requirements":        req.Requirements,
		"human_testing_steps": req.HumanTestingSteps,
		"constraints":         req.Constraints,
		"key_files":           req.KeyFiles,
	} {
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrListFieldEmpty, name)
		}
	}

	existing, err := e.store.FindByID(req.ID)
	if err != nil {
		return nil, err
	}

	if existing != "" {
		return nil, fmt.Errorf("%w: %s (%s)", ErrDuplicateID, req.ID, e.relPath(existing))
	}

	status := req.Status
	if status == "" {
		status = ticket.StatusPending
	}

	folder, ok := ticket.FolderForStatus(status)
	if !ok {
		return nil, statusError(status)
	}

	createdAt := req.CreatedAt
	if createdAt == "" {
		createdAt = ticket.Now()
	}

	epic := req.Epic
	if epic == "" {
		epic = "none"
	}

	fields := frontmatter.Fields{
		"id":                  req.ID,
		"title":               req.Title,
		"status":              status,
		"created_at":          createdAt,
		"updated_at":          createdAt,
		"area":                req.Area,
		"epic":                epic,
		"key_files":           toAnyList(req.KeyFiles),
		"intent":              req.Intent,
		"requirements":        toAnyList(req.Requirements),
		"human_testing_steps": toAnyList(req.HumanTestingSteps),
		"constraints":         toAnyList(req.Constraints),
		"depends_on":          toAnyList(req.DependsOn),
		"claimed_by":          nil,
		"claimed_at":          nil,
		"work_log":            []any{},
		"review_notes":        nil,
	}

	body := req.Body
	if body == "" {
		body = DefaultBody(req.Intent)
	}

	filename := req.Filename
	if filename == "" {
		filename = defaultFilename(createdAt, req.ID, req.Title)
	}

	path := filepath.Join(e.cfg.RootDir, folder, filename)

	_, statErr := os.Stat(path)
	if statErr == nil {
		return nil, fmt.Errorf("%w: %s", ErrTicketFileExists, e.relPath(path))
	}

	gateErr := e.gate(fields, body, path)
	if gateErr != nil {
		return nil, gateErr
	}

	writeErr := e.store.Write(path, fields, body)
	if writeErr != nil {
		return nil, writeErr
	}

	e.scheduleIndexRegen()

	return &CreateResult{OK: true, ID: req.ID, Path: path}, nil
}

// DefaultBody renders the body template with every required section heading.
func DefaultBody(intent string) string {
	var builder strings.Builder

	for idx, heading := range ticket.RequiredHeadings {
		if idx > 0 {
			builder.WriteString("\n")
		}

		builder.WriteString(heading)
		builder.WriteString("\n")

		if heading == "## Intent" && intent != "" {
			builder.WriteString("\n")
			builder.WriteString(intent)
			builder.WriteString("\n")
		}
	}

	return builder.String()
}

// defaultFilename renders {date}__{id}__{slug}.md from the creation
// timestamp, ticket id, and title.
func defaultFilename(createdAt, id, title string) string {
	date := ticket.Now()[:len("2006-01-02")]

	parsed, ok := ticket.ParseTime(createdAt)
	if ok {
		date = parsed.Format("2006-01-02")
	}

	return date + "__" + id + "__" + slugify(title) + ".md"
}

// slugify lowercases the title and collapses non-alphanumeric runs to a
// single dash, capped at maxSlugLength bytes.
func slugify(title string) string {
	var builder strings.Builder

	lastDash := true

	for _, r := range strings.ToLower(title) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			builder.WriteRune(r)

			lastDash = false

			continue
		}

		if !lastDash {
			builder.WriteString("-")

			lastDash = true
		}
	}

	slug := strings.Trim(builder.String(), "-")
	if len(slug) > maxSlugLength {
		slug = strings.Trim(slug[:maxSlugLength], "-")
	}

	if slug == "" {
		slug = "ticket"
	}

	return slug
}

// statusError renders an invalid-status error, suggesting the nearest valid
// enum value when one exists.
func statusError(status string) error {
	suggestion, ok := ticket.SuggestStatus(status)
	if !ok {
		return fmt.Errorf("%w: %q (no suggestion)", ErrInvalidStatus, status)
	}

	return fmt.Errorf("%w: %q (did you mean %q?)", ErrInvalidStatus, status, suggestion)
}
