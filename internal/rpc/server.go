package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/recursivesquircle/ticket-mcp/internal/engine"
	"github.com/recursivesquircle/ticket-mcp/internal/ticket"
)

// RPCPath is the single JSON-RPC endpoint.
const RPCPath = "/rpc"

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server serves the ticket engine over HTTP.
type Server struct {
	methods map[string]handler
	logger  *slog.Logger
	srv     *http.Server
}

// NewServer wires an engine behind the JSON-RPC endpoint. logger may be nil.
func NewServer(eng *engine.Engine, cfg ticket.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		methods: methodTable(eng),
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+RPCPath, s.handleRPC)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.srv = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.corsMiddleware(mux),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s
}

// Start listens and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()

		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = s.srv.Shutdown(shutCtx)
	}()

	s.logger.Info("rpc server starting", "addr", s.srv.Addr)

	err := s.srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("rpc server: %w", err)
	}

	return nil
}

// Handler exposes the HTTP handler for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// corsMiddleware lets the browser dashboard call the endpoint directly.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req Request

	decodeErr := json.NewDecoder(r.Body).Decode(&req)
	if decodeErr != nil {
		s.writeResponse(w, Response{
			JSONRPC: "2.0",
			ID:      json.RawMessage("null"),
			Error:   &Error{Code: codeParseError, Message: "parse error: " + decodeErr.Error()},
		})

		return
	}

	resp := s.dispatch(req)

	s.logger.Info("rpc call",
		"method", req.Method,
		"ok", resp.Error == nil,
		"duration", time.Since(started),
	)

	s.writeResponse(w, resp)
}

func (s *Server) dispatch(req Request) Response {
	resp := Response{JSONRPC: "2.0", ID: req.ID}
	if resp.ID == nil {
		resp.ID = json.RawMessage("null")
	}

	if req.Method == "" {
		resp.Error = &Error{Code: codeInvalidRequest, Message: "missing method"}

		return resp
	}

	method, ok := s.methods[req.Method]
	if !ok {
		resp.Error = &Error{Code: codeMethodNotFound, Message: "unknown method: " + req.Method}

		return resp
	}

	result, err := method(req.Params)
	if err != nil {
		resp.Error = toError(err)

		return resp
	}

	resp.Result = result

	return resp
}

func (s *Server) writeResponse(w http.ResponseWriter, resp Response) {
	// Transport-level failures stay transport-level: engine errors ride in
	// the JSON-RPC error object with HTTP 200.
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(payload)
	if err != nil {
		s.logger.Warn("writing response failed", "error", err)
	}
}
