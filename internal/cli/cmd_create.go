package cli

import (
	"os"

	flag "github.com/spf13/pflag"

	"github.com/recursivesquircle/ticket-mcp/internal/engine"
)

func cmdCreate(ioCtx *IO, eng *engine.Engine, args []string) error {
	flags := flag.NewFlagSet("create", flag.ContinueOnError)
	flags.SetOutput(ioCtx.Err)

	var req engine.CreateRequest

	var bodyFile string

	flags.StringVar(&req.ID, "id", "", "ticket id (required, unique)")
	flags.StringVar(&req.Title, "title", "", "ticket title (required)")
	flags.StringVar(&req.Area, "area", "", "ticket area (required)")
	flags.StringVar(&req.Intent, "intent", "", "why this work exists (required)")
	flags.StringVar(&req.Epic, "epic", "", "epic (default none)")
	flags.StringVar(&req.Status, "status", "", "initial status (default pending)")
	flags.StringVar(&req.Filename, "filename", "", "override the generated filename")
	flags.StringArrayVar(&req.Requirements, "req", nil, "requirement (repeatable)")
	flags.StringArrayVar(&req.HumanTestingSteps, "test-step", nil, "human testing step (repeatable)")
	flags.StringArrayVar(&req.Constraints, "constraint", nil, "constraint (repeatable)")
	flags.StringArrayVar(&req.KeyFiles, "key-file", nil, "key file (repeatable)")
	flags.StringArrayVar(&req.DependsOn, "depends-on", nil, "ticket id this depends on (repeatable)")
	flags.StringVar(&bodyFile, "body-file", "", "read the body from this file instead of the template")

	err := flags.Parse(args)
	if err != nil {
		return err
	}

	if bodyFile != "" {
		data, readErr := os.ReadFile(bodyFile)
		if readErr != nil {
			return readErr
		}

		req.Body = string(data)
	}

	result, createErr := eng.Create(req)
	if createErr != nil {
		return createErr
	}

	ioCtx.Println("created", result.ID, "at", result.Path)

	return nil
}
