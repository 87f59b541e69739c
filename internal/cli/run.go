// Package cli implements the tickets command-line tool: thin shells around
// the engine for operators, plus the stdio relay and interactive console
// that speak the server's JSON-RPC protocol.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/recursivesquircle/ticket-mcp/internal/engine"
	"github.com/recursivesquircle/ticket-mcp/internal/ticket"
)

// Error variables for argument handling.
var (
	ErrFlagRequiresArg = errors.New("flag requires an argument")
	ErrUnknownFlag     = errors.New("unknown flag")
	ErrRefRequired     = errors.New("ticket id or path is required")
)

type globalFlags struct {
	workDir    string
	configPath string
	rootDir    string
	strict     *bool
	remaining  []string
}

// Run is the tickets entry point. Returns the process exit code.
func Run(in io.Reader, out, errOut io.Writer, args []string) int {
	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	workDir := flags.workDir
	if workDir == "" {
		workDir, err = os.Getwd()
		if err != nil {
			fprintln(errOut, "error: cannot get working directory:", err)

			return 1
		}
	}

	overrides := ticket.Config{RootDir: flags.rootDir, Strict: flags.strict}

	cfg, err := ticket.LoadConfig(workDir, flags.configPath, overrides)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	if len(flags.remaining) == 0 {
		printUsage(out)

		return 0
	}

	cmd := flags.remaining[0]
	rest := flags.remaining[1:]

	if cmd == "-h" || cmd == "--help" || cmd == "help" {
		printUsage(out)

		return 0
	}

	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: slog.LevelWarn}))
	eng := engine.New(cfg, logger)
	ioCtx := NewIO(in, out, errOut)

	var cmdErr error

	switch cmd {
	case "create":
		cmdErr = cmdCreate(ioCtx, eng, rest)
	case "ls":
		cmdErr = cmdLs(ioCtx, eng, rest)
	case "show":
		cmdErr = cmdShow(ioCtx, eng, rest)
	case "move":
		cmdErr = cmdMove(ioCtx, eng, rest)
	case "claim":
		cmdErr = cmdClaim(ioCtx, eng, rest)
	case "log":
		cmdErr = cmdLog(ioCtx, eng, rest)
	case "validate":
		cmdErr = cmdValidate(ioCtx, eng, rest)
	case "reconcile":
		cmdErr = cmdReconcile(ioCtx, eng, rest)
	case "stats":
		cmdErr = cmdStats(ioCtx, eng)
	case "next-id":
		cmdErr = cmdNextID(ioCtx, eng, rest)
	case "index":
		cmdErr = eng.RegenerateIndex()
	case "migrate":
		cmdErr = cmdMigrate(ioCtx, eng)
	case "relay":
		cmdErr = cmdRelay(ioCtx, cfg, rest)
	case "console":
		cmdErr = cmdConsole(ioCtx, cfg, rest)
	default:
		fprintln(errOut, "error: unknown command:", cmd)
		printUsage(errOut)

		return 1
	}

	// Mutations schedule index regeneration in the background; flush it so
	// the process does not exit mid-write.
	eng.WaitForIndex()

	if cmdErr != nil {
		var validation *engine.ValidationError

		if errors.As(cmdErr, &validation) {
			fprintln(errOut, "error: validation failed")

			for _, issue := range validation.Issues {
				fprintln(errOut, "  -", issue)
			}

			return 1
		}

		fprintln(errOut, "error:", cmdErr)

		return 1
	}

	return 0
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		arg := args[idx]

		switch arg {
		case "-C", "--chdir":
			value, consumed, err := flagValue(args, idx, arg)
			if err != nil {
				return globalFlags{}, err
			}

			flags.workDir = value
			idx += consumed
		case "--config":
			value, consumed, err := flagValue(args, idx, arg)
			if err != nil {
				return globalFlags{}, err
			}

			flags.configPath = value
			idx += consumed
		case "--root":
			value, consumed, err := flagValue(args, idx, arg)
			if err != nil {
				return globalFlags{}, err
			}

			flags.rootDir = value
			idx += consumed
		case "--strict":
			strict := true
			flags.strict = &strict
			idx++
		case "--no-strict":
			strict := false
			flags.strict = &strict
			idx++
		default:
			if strings.HasPrefix(arg, "-") && arg != "-h" && arg != "--help" {
				return globalFlags{}, fmt.Errorf("%w: %s", ErrUnknownFlag, arg)
			}

			// First non-flag token starts the command.
			flags.remaining = args[idx:]

			return flags, nil
		}
	}

	return flags, nil
}

func flagValue(args []string, idx int, flag string) (string, int, error) {
	if idx+1 >= len(args) {
		return "", 0, fmt.Errorf("%w: %s", ErrFlagRequiresArg, flag)
	}

	return args[idx+1], 2, nil
}

func printUsage(out io.Writer) {
	fprintln(out, `tickets - file-backed ticket store

Usage: tickets [global flags] <command> [args]

Global flags:
  -C, --chdir DIR   run as if started in DIR
  --config FILE     config file (default .tickets.json)
  --root DIR        ticket root directory
  --strict          reject writes that fail validation (default)
  --no-strict       tolerate validation issues on write

Commands:
  create      create a ticket
  ls          list tickets
  show        show one ticket
  move        change a ticket's status (and folder)
  claim       claim a pending ticket
  log         append a work-log entry
  validate    report validation issues (one ticket or whole store)
  reconcile   audit and optionally repair the store
  stats       per-status/area/epic counts and id horizon
  next-id     suggest the next free numeric id
  index       regenerate INDEX.md
  migrate     rewrite all tickets in canonical form
  relay       bridge JSON-RPC frames between stdio and a server
  console     interactive JSON-RPC console`)
}
