// Package rpc exposes the engine over HTTP JSON-RPC: one POST endpoint, a
// method table of tickets.* operations, and a health probe. The transport
// stays thin — every contract lives in the engine.
package rpc

import (
	"encoding/json"
	"errors"

	"github.com/recursivesquircle/ticket-mcp/internal/engine"
)

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeEngineError    = -32000
)

// Request is a JSON-RPC 2.0 request frame.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Error is a JSON-RPC 2.0 error object. Issues carries validation issue
// strings when a strict-mode gate rejected a write.
type Error struct {
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Data    *ErrorData `json:"data,omitempty"`
}

// ErrorData is the structured payload of an Error.
type ErrorData struct {
	Issues []string `json:"issues,omitempty"`
}

// Response is a JSON-RPC 2.0 response frame.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// handler executes one decoded method call.
type handler func(params json.RawMessage) (any, error)

// methodTable builds the tickets.* dispatch table over an engine.
func methodTable(eng *engine.Engine) map[string]handler {
	return map[string]handler{
		"tickets.list": func(params json.RawMessage) (any, error) {
			var req engine.ListRequest
			if err := decodeParams(params, &req); err != nil {
				return nil, err
			}

			return eng.List(req)
		},
		"tickets.get": func(params json.RawMessage) (any, error) {
			var req engine.GetRequest
			if err := decodeParams(params, &req); err != nil {
				return nil, err
			}

			return eng.Get(req)
		},
		"tickets.create": func(params json.RawMessage) (any, error) {
			var req engine.CreateRequest
			if err := decodeParams(params, &req); err != nil {
				return nil, err
			}

			return eng.Create(req)
		},
		"tickets.update": func(params json.RawMessage) (any, error) {
			var req engine.UpdateRequest
			if err := decodeParams(params, &req); err != nil {
				return nil, err
			}

			return eng.Update(req)
		},
		"tickets.move": func(params json.RawMessage) (any, error) {
			var req engine.MoveRequest
			if err := decodeParams(params, &req); err != nil {
				return nil, err
			}

			return eng.Move(req)
		},
		"tickets.claim": func(params json.RawMessage) (any, error) {
			var req engine.ClaimRequest
			if err := decodeParams(params, &req); err != nil {
				return nil, err
			}

			return eng.Claim(req)
		},
		"tickets.append_worklog": func(params json.RawMessage) (any, error) {
			var req engine.AppendWorklogRequest
			if err := decodeParams(params, &req); err != nil {
				return nil, err
			}

			return eng.AppendWorklog(req)
		},
		"tickets.validate": func(params json.RawMessage) (any, error) {
			var req engine.ValidateRequest
			if err := decodeParams(params, &req); err != nil {
				return nil, err
			}

			return eng.Validate(req)
		},
		"tickets.reconcile": func(params json.RawMessage) (any, error) {
			var req engine.ReconcileRequest
			if err := decodeParams(params, &req); err != nil {
				return nil, err
			}

			return eng.Reconcile(req)
		},
		"tickets.stats": func(params json.RawMessage) (any, error) {
			if err := decodeParams(params, &struct{}{}); err != nil {
				return nil, err
			}

			return eng.Stats()
		},
		"tickets.next_id": func(params json.RawMessage) (any, error) {
			var req engine.NextIDRequest
			if err := decodeParams(params, &req); err != nil {
				return nil, err
			}

			return eng.NextID(req)
		},
	}
}

// errInvalidParams tags parameter decode failures for error-code mapping.
var errInvalidParams = errors.New("invalid params")

func decodeParams(params json.RawMessage, target any) error {
	if len(params) == 0 {
		return nil
	}

	err := json.Unmarshal(params, target)
	if err != nil {
		return errors.Join(errInvalidParams, err)
	}

	return nil
}

// toError maps an engine failure to a JSON-RPC error object. Strict-mode
// rejections carry their issue list in the data payload.
func toError(err error) *Error {
	var validation *engine.ValidationError

	if errors.As(err, &validation) {
		return &Error{
			Code:    codeEngineError,
			Message: "validation failed",
			Data:    &ErrorData{Issues: validation.Issues},
		}
	}

	if errors.Is(err, errInvalidParams) {
		return &Error{Code: codeInvalidParams, Message: err.Error()}
	}

	return &Error{Code: codeEngineError, Message: err.Error()}
}
