package cli

import (
	"errors"

	flag "github.com/spf13/pflag"

	"github.com/recursivesquircle/ticket-mcp/internal/engine"
	"github.com/recursivesquircle/ticket-mcp/internal/ticket"
)

// ErrStatusRequired is returned when move is called without a target status.
var ErrStatusRequired = errors.New("target status is required")

func cmdMove(ioCtx *IO, eng *engine.Engine, args []string) error {
	flags := flag.NewFlagSet("move", flag.ContinueOnError)
	flags.SetOutput(ioCtx.Err)

	var (
		actor   string
		summary string
	)

	flags.StringVar(&actor, "actor", "", "record a work-log entry by this actor")
	flags.StringVar(&summary, "summary", "", "work-log summary for the move")

	err := flags.Parse(args)
	if err != nil {
		return err
	}

	positional := flags.Args()

	ref, refErr := refFromArgs(positional)
	if refErr != nil {
		return refErr
	}

	if len(positional) < 2 {
		return ErrStatusRequired
	}

	req := engine.MoveRequest{Ref: ref, Status: positional[1]}

	if actor != "" {
		if summary == "" {
			summary = "Moved to " + req.Status
		}

		req.Log = &engine.WorklogEntry{Actor: actor, Kind: ticket.KindChange, Summary: summary}
	}

	result, moveErr := eng.Move(req)
	if moveErr != nil {
		return moveErr
	}

	ioCtx.Println("moved to", result.Status, "at", result.Path)

	return nil
}

func cmdClaim(ioCtx *IO, eng *engine.Engine, args []string) error {
	flags := flag.NewFlagSet("claim", flag.ContinueOnError)
	flags.SetOutput(ioCtx.Err)

	var req engine.ClaimRequest

	flags.StringVar(&req.Agent, "agent", "", "agent identifier taking the ticket (required)")
	flags.StringVar(&req.Summary, "summary", "", "work-log summary for the claim")

	err := flags.Parse(args)
	if err != nil {
		return err
	}

	ref, refErr := refFromArgs(flags.Args())
	if refErr != nil {
		return refErr
	}

	req.Ref = ref

	result, claimErr := eng.Claim(req)
	if claimErr != nil {
		return claimErr
	}

	ioCtx.Println("claimed by", result.ClaimedBy, "at", result.Path)

	return nil
}

func cmdLog(ioCtx *IO, eng *engine.Engine, args []string) error {
	flags := flag.NewFlagSet("log", flag.ContinueOnError)
	flags.SetOutput(ioCtx.Err)

	var (
		entry   engine.WorklogEntry
		details engine.WorklogDetails
	)

	flags.StringVar(&entry.Actor, "actor", "", "who did the work (required)")
	flags.StringVar(&entry.Kind, "kind", "note", "entry kind")
	flags.StringVar(&entry.Summary, "summary", "", "what happened (required)")
	flags.StringVar(&entry.At, "at", "", "timestamp override (default now)")
	flags.StringArrayVar(&details.TouchedFiles, "file", nil, "touched file (repeatable)")
	flags.StringArrayVar(&details.Commands, "cmd", nil, "command run (repeatable)")
	flags.StringArrayVar(&details.Links, "link", nil, "related link (repeatable)")
	flags.StringArrayVar(&details.Notes, "note", nil, "extra note (repeatable)")

	err := flags.Parse(args)
	if err != nil {
		return err
	}

	ref, refErr := refFromArgs(flags.Args())
	if refErr != nil {
		return refErr
	}

	if len(details.TouchedFiles)+len(details.Commands)+len(details.Links)+len(details.Notes) > 0 {
		entry.Details = &details
	}

	result, logErr := eng.AppendWorklog(engine.AppendWorklogRequest{Ref: ref, Entry: entry})
	if logErr != nil {
		return logErr
	}

	ioCtx.Printf("logged entry %d at %s\n", result.Entries, result.Path)

	return nil
}
