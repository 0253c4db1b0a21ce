// Package server exposes a bridge dispatcher over HTTP and WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/shazow/wifibridge/bridge"
	"github.com/shazow/wifibridge/internal/log"
	"github.com/shazow/wifibridge/wifi"
)

const maxBodySize = 64 << 10

// Handler runs a bridge action.
type Handler interface {
	Handle(ctx context.Context, action string, params json.RawMessage) (bridge.Result, error)
}

// Config configures a Server.
type Config struct {
	Addr     string
	Handler  Handler
	Gatherer prometheus.Gatherer
	// Logs returns the recent log entries served on /logs.
	Logs   func() []log.Entry
	Logger *slog.Logger
	// Trace wraps the router with otelhttp.
	Trace bool
}

// Server serves bridge requests.
type Server struct {
	cfg      Config
	logger   *slog.Logger
	router   *mux.Router
	upgrader websocket.Upgrader
	srv      *http.Server
}

// Response is the body of an /exec reply and of a websocket reply.
type Response struct {
	ID      string `json:"id,omitempty"`
	OK      bool   `json:"ok"`
	Payload any    `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Request is a websocket request frame.
type Request struct {
	ID     string          `json:"id"`
	Action string          `json:"action"`
	Params json.RawMessage `json:"params"`
}

// New creates a Server and registers its routes.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	s := &Server{
		cfg:    cfg,
		logger: logger,
		router: mux.NewRouter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	s.router.Handle("/exec/{action}", s.handleExec()).Methods(http.MethodPost)
	s.router.Handle("/logs", s.handleLogs()).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	s.router.Handle("/ws", s.handleWebSocket()).Methods(http.MethodGet)

	return s
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the root handler, instrumented when tracing is on.
func (s *Server) Handler() http.Handler {
	if s.cfg.Trace {
		return otelhttp.NewHandler(s.router, "wifibridge-server")
	}
	return s.router
}

// Run serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown failed", "error", err)
		}
	}()

	s.logger.Info("server listening", "addr", s.cfg.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleExec() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action := mux.Vars(r)["action"]
		params, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, Response{Error: "Invalid request body", Code: "invalid_params"})
			return
		}

		resp := s.exec(r.Context(), "", action, params)
		writeJSON(w, StatusCode(resp.Code), resp)
	}
}

func (s *Server) handleLogs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries := []log.Entry{}
		if s.cfg.Logs != nil {
			if e := s.cfg.Logs(); e != nil {
				entries = e
			}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func (s *Server) handleWebSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.logger.Warn("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		// Requests run concurrently so a pending scan does not block a
		// connect on the same socket; writes are serialized.
		var (
			writeMu sync.Mutex
			wg      sync.WaitGroup
		)
		defer wg.Wait()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		for {
			var req Request
			if err := conn.ReadJSON(&req); err != nil {
				var syntaxErr *json.SyntaxError
				if errors.As(err, &syntaxErr) {
					writeMu.Lock()
					_ = conn.WriteJSON(Response{Error: "Invalid request", Code: "invalid_params"})
					writeMu.Unlock()
					continue
				}
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					s.logger.Debug("websocket read ended", "error", err)
				}
				return
			}

			wg.Add(1)
			go func(req Request) {
				defer wg.Done()
				resp := s.exec(ctx, req.ID, req.Action, req.Params)
				writeMu.Lock()
				defer writeMu.Unlock()
				if err := conn.WriteJSON(resp); err != nil {
					s.logger.Debug("websocket write failed", "error", err)
				}
			}(req)
		}
	}
}

func (s *Server) exec(ctx context.Context, id, action string, params json.RawMessage) Response {
	res, err := s.cfg.Handler.Handle(ctx, action, params)
	if err != nil {
		return Response{ID: id, Error: wifi.Message(err), Code: bridge.ErrorCode(err)}
	}
	return Response{ID: id, OK: true, Payload: res.Payload()}
}

// StatusCode maps a bridge error code to an HTTP status.
func StatusCode(code string) int {
	switch code {
	case "":
		return http.StatusOK
	case "invalid_action", "invalid_params", "unsupported_auth_type":
		return http.StatusBadRequest
	case "network_not_found":
		return http.StatusNotFound
	case "scan_in_progress":
		return http.StatusConflict
	case "radio_unavailable":
		return http.StatusServiceUnavailable
	case "timed_out":
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
