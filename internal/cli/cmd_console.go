package cli

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/recursivesquircle/ticket-mcp/internal/ticket"
)

// consoleMethods drives tab completion and the shorthand method names.
var consoleMethods = []string{
	"list", "get", "create", "update", "move", "claim",
	"append_worklog", "validate", "reconcile", "stats", "next_id",
}

// cmdConsole runs an interactive JSON-RPC console against a running ticketd.
// Each input line is `<method> [json params]`; the tickets. prefix may be
// omitted.
func cmdConsole(ioCtx *IO, cfg ticket.Config, args []string) error {
	flags := flag.NewFlagSet("console", flag.ContinueOnError)
	flags.SetOutput(ioCtx.Err)

	endpoint := flags.String("endpoint", "", "server endpoint (default from config)")

	err := flags.Parse(args)
	if err != nil {
		return err
	}

	client := newRelayClient(cfg, *endpoint)

	line := liner.NewLiner()
	defer func() { _ = line.Close() }()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(input string) []string {
		var matches []string

		for _, method := range consoleMethods {
			if strings.HasPrefix(method, strings.ToLower(input)) {
				matches = append(matches, method+" ")
			}
		}

		return matches
	})

	historyPath := filepath.Join(os.TempDir(), ".tickets_console_history")
	if file, openErr := os.Open(historyPath); openErr == nil {
		_, _ = line.ReadHistory(file)
		_ = file.Close()
	}

	defer func() {
		file, createErr := os.Create(historyPath)
		if createErr != nil {
			return
		}

		_, _ = line.WriteHistory(file)
		_ = file.Close()
	}()

	ioCtx.Println("tickets console — type a method name, 'help' or 'exit'")

	seq := 0

	for {
		input, promptErr := line.Prompt("tickets> ")
		if promptErr != nil {
			if errors.Is(promptErr, liner.ErrPromptAborted) || errors.Is(promptErr, io.EOF) {
				return nil
			}

			return promptErr
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)

		switch input {
		case "exit", "quit":
			return nil
		case "help":
			ioCtx.Println("methods:", strings.Join(consoleMethods, ", "))
			ioCtx.Println(`usage: <method> [json params], e.g. list {"status":["pending"]}`)

			continue
		}

		seq++

		reply, callErr := consoleCall(client, input, seq)
		if callErr != nil {
			ioCtx.Println("error:", callErr)

			continue
		}

		ioCtx.Println(reply)
	}
}

// consoleCall turns one console line into a JSON-RPC frame, sends it and
// pretty-prints the reply.
func consoleCall(client *relayClient, input string, seq int) (string, error) {
	method, paramsRaw, _ := strings.Cut(input, " ")

	if !strings.Contains(method, ".") {
		method = "tickets." + method
	}

	frame := map[string]any{
		"jsonrpc": "2.0",
		"id":      seq,
		"method":  method,
	}

	paramsRaw = strings.TrimSpace(paramsRaw)
	if paramsRaw != "" {
		var params any

		err := json.Unmarshal([]byte(paramsRaw), &params)
		if err != nil {
			return "", err
		}

		frame["params"] = params
	}

	payload, err := json.Marshal(frame)
	if err != nil {
		return "", err
	}

	reply, callErr := client.call(payload)
	if callErr != nil {
		return "", callErr
	}

	var pretty map[string]any
	if json.Unmarshal(reply, &pretty) == nil {
		indented, indentErr := json.MarshalIndent(pretty, "", "  ")
		if indentErr == nil {
			return string(indented), nil
		}
	}

	return string(reply), nil
}
