package cli

import (
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/recursivesquircle/ticket-mcp/internal/engine"
	"github.com/recursivesquircle/ticket-mcp/internal/frontmatter"
)

func cmdLs(ioCtx *IO, eng *engine.Engine, args []string) error {
	flags := flag.NewFlagSet("ls", flag.ContinueOnError)
	flags.SetOutput(ioCtx.Err)

	var (
		req      engine.ListRequest
		asJSON   bool
		withPath bool
	)

	flags.StringSliceVar(&req.Status, "status", nil, "filter by status (repeatable)")
	flags.StringSliceVar(&req.Area, "area", nil, "filter by area (repeatable)")
	flags.StringSliceVar(&req.Epic, "epic", nil, "filter by epic (repeatable)")
	flags.StringVar(&req.Text, "text", "", "substring match over id, title and intent")
	flags.BoolVar(&asJSON, "json", false, "print the raw result as JSON")
	flags.BoolVar(&withPath, "paths", false, "include file paths")

	err := flags.Parse(args)
	if err != nil {
		return err
	}

	result, listErr := eng.List(req)
	if listErr != nil {
		return listErr
	}

	if asJSON {
		return ioCtx.PrintJSON(result)
	}

	for _, row := range result.Tickets {
		line := fmt.Sprintf("%-24s %-20s %-12s %s", row.ID, row.Status, row.Area, row.Title)

		if row.ClaimedBy != "" {
			line += " [" + row.ClaimedBy + "]"
		}

		if withPath {
			line += "\n    " + row.Path
		}

		ioCtx.Println(line)
	}

	ioCtx.Printf("%d ticket(s)\n", len(result.Tickets))

	return nil
}

func cmdShow(ioCtx *IO, eng *engine.Engine, args []string) error {
	flags := flag.NewFlagSet("show", flag.ContinueOnError)
	flags.SetOutput(ioCtx.Err)

	var asJSON bool

	flags.BoolVar(&asJSON, "json", false, "print fields, body and issues as JSON")

	err := flags.Parse(args)
	if err != nil {
		return err
	}

	ref, refErr := refFromArgs(flags.Args())
	if refErr != nil {
		return refErr
	}

	result, getErr := eng.Get(engine.GetRequest{Ref: ref})
	if getErr != nil {
		return getErr
	}

	if asJSON {
		return ioCtx.PrintJSON(result)
	}

	ioCtx.Println("#", result.Path)

	for _, issue := range result.Issues {
		ioCtx.Println("! issue:", issue)
	}

	encoded, encodeErr := frontmatter.Encode(result.Fields, result.Body)
	if encodeErr != nil {
		return encodeErr
	}

	ioCtx.Println(strings.TrimRight(encoded, "\n"))

	return nil
}

// refFromArgs builds a Ref from the first positional argument. A token that
// looks like a file path becomes Path, anything else becomes ID.
func refFromArgs(args []string) (engine.Ref, error) {
	if len(args) == 0 {
		return engine.Ref{}, ErrRefRequired
	}

	token := args[0]
	if strings.ContainsAny(token, "/\\") || strings.HasSuffix(token, ".md") {
		return engine.Ref{Path: token}, nil
	}

	return engine.Ref{ID: token}, nil
}
