package cli_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/recursivesquircle/ticket-mcp/internal/cli"
)

func runCLI(t *testing.T, dir string, args ...string) (int, string, string) {
	t.Helper()

	var out, errOut bytes.Buffer

	full := append([]string{"tickets", "-C", dir}, args...)
	code := cli.Run(strings.NewReader(""), &out, &errOut, full)

	return code, out.String(), errOut.String()
}

func createArgs(id string) []string {
	return []string{
		"create",
		"--id", id,
		"--title", "CLI ticket " + id,
		"--area", "core",
		"--intent", "Exercise the command line.",
		"--req", "do the thing",
		"--test-step", "run it",
		"--constraint", "none",
		"--key-file", "main.go",
	}
}

func TestRun_CreateThenShow(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	code, out, errOut := runCLI(t, dir, createArgs("T-001")...)
	require.Zero(t, code, "stderr: %s", errOut)
	require.Contains(t, out, "created T-001")

	code, out, errOut = runCLI(t, dir, "show", "T-001")
	require.Zero(t, code, "stderr: %s", errOut)
	require.Contains(t, out, "id: T-001")
	require.Contains(t, out, "## Intent")
}

func TestRun_LsFilters(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	code, _, errOut := runCLI(t, dir, createArgs("T-001")...)
	require.Zero(t, code, "stderr: %s", errOut)

	code, _, errOut = runCLI(t, dir, createArgs("T-002")...)
	require.Zero(t, code, "stderr: %s", errOut)

	code, out, errOut := runCLI(t, dir, "ls", "--status", "pending")
	require.Zero(t, code, "stderr: %s", errOut)
	require.Contains(t, out, "T-001")
	require.Contains(t, out, "T-002")
	require.Contains(t, out, "2 ticket(s)")

	code, out, _ = runCLI(t, dir, "ls", "--status", "done")
	require.Zero(t, code)
	require.Contains(t, out, "0 ticket(s)")
}

func TestRun_MoveAndValidate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	code, _, errOut := runCLI(t, dir, createArgs("T-001")...)
	require.Zero(t, code, "stderr: %s", errOut)

	code, out, errOut := runCLI(t, dir, "move", "T-001", "done")
	require.Zero(t, code, "stderr: %s", errOut)
	require.Contains(t, out, "moved to done")

	code, out, errOut = runCLI(t, dir, "validate")
	require.Zero(t, code, "stderr: %s", errOut)
	require.Contains(t, out, "checked 1, 0 with issues")
}

func TestRun_ClaimAndLog(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	code, _, errOut := runCLI(t, dir, createArgs("T-001")...)
	require.Zero(t, code, "stderr: %s", errOut)

	code, out, errOut := runCLI(t, dir, "claim", "--agent", "agent-7", "T-001")
	require.Zero(t, code, "stderr: %s", errOut)
	require.Contains(t, out, "claimed by agent-7")

	code, out, errOut = runCLI(t, dir,
		"log", "--actor", "agent-7", "--kind", "change", "--summary", "did work", "T-001")
	require.Zero(t, code, "stderr: %s", errOut)
	require.Contains(t, out, "logged entry 2")
}

func TestRun_NextID(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	code, _, errOut := runCLI(t, dir, createArgs("T-041")...)
	require.Zero(t, code, "stderr: %s", errOut)

	code, out, errOut := runCLI(t, dir, "next-id")
	require.Zero(t, code, "stderr: %s", errOut)
	require.Equal(t, "T-042\n", out)
}

func TestRun_InvalidStatusFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	code, _, errOut := runCLI(t, dir, createArgs("T-001")...)
	require.Zero(t, code, "stderr: %s", errOut)

	code, _, errOut = runCLI(t, dir, "move", "T-001", "finished")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "invalid status")
}

func TestRun_UnknownCommand(t *testing.T) {
	t.Parallel()

	code, _, errOut := runCLI(t, t.TempDir(), "frobnicate")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "unknown command")
}

func TestRun_NoArgsPrintsUsage(t *testing.T) {
	t.Parallel()

	code, out, _ := runCLI(t, t.TempDir())
	require.Zero(t, code)
	require.Contains(t, out, "Usage: tickets")
}
