package cli

import (
	flag "github.com/spf13/pflag"

	"github.com/recursivesquircle/ticket-mcp/internal/engine"
)

func cmdValidate(ioCtx *IO, eng *engine.Engine, args []string) error {
	flags := flag.NewFlagSet("validate", flag.ContinueOnError)
	flags.SetOutput(ioCtx.Err)

	var asJSON bool

	flags.BoolVar(&asJSON, "json", false, "print the raw result as JSON")

	err := flags.Parse(args)
	if err != nil {
		return err
	}

	var req engine.ValidateRequest

	if positional := flags.Args(); len(positional) > 0 {
		ref, refErr := refFromArgs(positional)
		if refErr != nil {
			return refErr
		}

		req.Ref = ref
	}

	result, validateErr := eng.Validate(req)
	if validateErr != nil {
		return validateErr
	}

	if asJSON {
		return ioCtx.PrintJSON(result)
	}

	for _, entry := range result.Tickets {
		if len(entry.Issues) == 0 {
			ioCtx.Println(entry.Path, "ok")

			continue
		}

		ioCtx.Println(entry.Path)

		for _, issue := range entry.Issues {
			ioCtx.Println("  -", issue)
		}
	}

	ioCtx.Printf("checked %d, %d with issues\n", result.Checked, countWithIssues(result.Tickets))

	return nil
}

func countWithIssues(tickets []engine.TicketIssues) int {
	count := 0

	for _, entry := range tickets {
		if len(entry.Issues) > 0 {
			count++
		}
	}

	return count
}

func cmdReconcile(ioCtx *IO, eng *engine.Engine, args []string) error {
	flags := flag.NewFlagSet("reconcile", flag.ContinueOnError)
	flags.SetOutput(ioCtx.Err)

	var (
		apply  bool
		asJSON bool
	)

	flags.BoolVar(&apply, "apply", false, "write fixes instead of previewing them")
	flags.BoolVar(&asJSON, "json", false, "print the raw result as JSON")

	err := flags.Parse(args)
	if err != nil {
		return err
	}

	req := engine.ReconcileRequest{ApplyFixes: apply}

	if positional := flags.Args(); len(positional) > 0 {
		ref, refErr := refFromArgs(positional)
		if refErr != nil {
			return refErr
		}

		req.Ref = ref
	}

	result, reconcileErr := eng.Reconcile(req)
	if reconcileErr != nil {
		return reconcileErr
	}

	if asJSON {
		return ioCtx.PrintJSON(result)
	}

	for _, entry := range result.Tickets {
		if entry.Unresolved {
			ioCtx.Println(entry.Path, "UNRESOLVED:", entry.Reason)

			continue
		}

		if len(entry.BeforeIssues) == 0 && len(entry.Fixes) == 0 {
			continue
		}

		ioCtx.Println(entry.Path)

		for _, issue := range entry.BeforeIssues {
			ioCtx.Println("  issue:", issue)
		}

		for _, fix := range entry.Fixes {
			ioCtx.Println("  fixed:", fix)
		}
	}

	mode := "previewed"
	if apply {
		mode = "applied"
	}

	ioCtx.Printf("%s: %d ticket(s), %d changed, %d unresolved\n",
		mode, len(result.Tickets), result.Changed, result.Unresolved)

	return nil
}

func cmdMigrate(ioCtx *IO, eng *engine.Engine) error {
	result, err := eng.Migrate()
	if err != nil {
		return err
	}

	ioCtx.Printf("migrated: %d total, %d rewritten, %d skipped\n",
		result.Total, result.Changed, result.Skipped)

	return nil
}
