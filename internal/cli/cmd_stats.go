package cli

import (
	"sort"

	flag "github.com/spf13/pflag"

	"github.com/recursivesquircle/ticket-mcp/internal/engine"
)

func cmdStats(ioCtx *IO, eng *engine.Engine) error {
	result, err := eng.Stats()
	if err != nil {
		return err
	}

	ioCtx.Printf("total: %d\n", result.Total)
	printCounts(ioCtx, "by status", result.ByStatus)
	printCounts(ioCtx, "by area", result.ByArea)
	printCounts(ioCtx, "by epic", result.ByEpic)
	ioCtx.Printf("highest ticket number: %d (next %d)\n",
		result.HighestTicketNumber, result.NextTicketNumber)

	return nil
}

func printCounts(ioCtx *IO, label string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}

	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	ioCtx.Println(label + ":")

	for _, key := range keys {
		ioCtx.Printf("  %-24s %d\n", key, counts[key])
	}
}

func cmdNextID(ioCtx *IO, eng *engine.Engine, args []string) error {
	flags := flag.NewFlagSet("next-id", flag.ContinueOnError)
	flags.SetOutput(ioCtx.Err)

	var req engine.NextIDRequest

	width := flags.Int("width", -1, "zero-pad the number to this width (0 disables)")
	flags.StringVar(&req.Prefix, "prefix", "", "id prefix (default T)")
	flags.StringVar(&req.Separator, "sep", "", "prefix separator (default -)")

	err := flags.Parse(args)
	if err != nil {
		return err
	}

	if *width >= 0 {
		req.Width = width
	}

	result, nextErr := eng.NextID(req)
	if nextErr != nil {
		return nextErr
	}

	ioCtx.Println(result.SuggestedID)

	return nil
}
