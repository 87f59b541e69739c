package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// IO bundles the command streams.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// NewIO creates an IO context.
func NewIO(in io.Reader, out, errOut io.Writer) *IO {
	return &IO{In: in, Out: out, Err: errOut}
}

// Println writes a line to standard output.
func (io *IO) Println(args ...any) {
	fprintln(io.Out, args...)
}

// Printf writes formatted output to standard output.
func (io *IO) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(io.Out, format, args...)
}

// PrintJSON pretty-prints a payload to standard output.
func (io *IO) PrintJSON(payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}

	fprintln(io.Out, string(data))

	return nil
}

// fprintln writes a line, ignoring write errors on the ground that there is
// nowhere left to report them.
func fprintln(w io.Writer, args ...any) {
	_, _ = fmt.Fprintln(w, args...)
}
