package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	flag "github.com/spf13/pflag"

	"github.com/recursivesquircle/ticket-mcp/internal/ticket"
)

// relayClient posts JSON-RPC frames to a running ticketd.
type relayClient struct {
	endpoint string
	client   *http.Client
}

func newRelayClient(cfg ticket.Config, endpoint string) *relayClient {
	if endpoint == "" {
		endpoint = fmt.Sprintf("http://%s:%d/rpc", cfg.Host, cfg.Port)
	}

	return &relayClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *relayClient) call(frame []byte) ([]byte, error) {
	resp, err := c.client.Post(c.endpoint, "application/json", bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("rpc request failed: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, fmt.Errorf("rpc response read failed: %w", readErr)
	}

	return body, nil
}

// cmdRelay bridges line-delimited JSON-RPC on stdin/stdout to the HTTP
// server, so editor and agent integrations can speak to ticketd without
// knowing its address. Frames missing an id get one assigned.
func cmdRelay(ioCtx *IO, cfg ticket.Config, args []string) error {
	flags := flag.NewFlagSet("relay", flag.ContinueOnError)
	flags.SetOutput(ioCtx.Err)

	endpoint := flags.String("endpoint", "", "server endpoint (default from config)")

	err := flags.Parse(args)
	if err != nil {
		return err
	}

	client := newRelayClient(cfg, *endpoint)
	scanner := bufio.NewScanner(ioCtx.In)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		frame, frameErr := ensureID([]byte(line))
		if frameErr != nil {
			// Forward the broken frame as-is; the server answers with a
			// parse error the caller can see.
			frame = []byte(line)
		}

		reply, callErr := client.call(frame)
		if callErr != nil {
			return callErr
		}

		ioCtx.Println(string(reply))
	}

	return scanner.Err()
}

// ensureID fills in a generated request id when the frame has none.
func ensureID(frame []byte) ([]byte, error) {
	var envelope map[string]json.RawMessage

	err := json.Unmarshal(frame, &envelope)
	if err != nil {
		return nil, err
	}

	if _, ok := envelope["id"]; ok {
		return frame, nil
	}

	id, marshalErr := json.Marshal(uuid.NewString())
	if marshalErr != nil {
		return nil, marshalErr
	}

	envelope["id"] = id

	return json.Marshal(envelope)
}
