// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/codeflow-engine/autopr-desktop/internal/dispatch"
	"github.com/codeflow-engine/autopr-desktop/internal/log"
	"github.com/codeflow-engine/autopr-desktop/internal/version"
)

// DefaultAddr keeps the bridge on loopback.
const DefaultAddr = "127.0.0.1:4810"

const (
	maxBodyBytes    = 8 << 20
	shutdownTimeout = 10 * time.Second
)

// ErrorBody is the JSON envelope for transport-level failures.
type ErrorBody struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

// CommandInfo describes one registered command.
type CommandInfo struct {
	Name  string `json:"name"`
	Param string `json:"param,omitempty"`
	Usage string `json:"usage,omitempty"`
}

// Server routes HTTP requests to a dispatch.Registry.
type Server struct {
	addr     string
	registry *dispatch.Registry
	router   chi.Router
}

// New builds a server for registry listening on addr (DefaultAddr when
// empty).
func New(registry *dispatch.Registry, addr string) *Server {
	if addr == "" {
		addr = DefaultAddr
	}

	s := &Server{addr: addr, registry: registry}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(recovery)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed on "+r.URL.Path)
	})

	r.Get("/health", s.health)
	r.Get("/commands", s.commands)
	r.Post("/invoke/{command}", s.invoke)

	s.router = r
	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.addr }

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("command bridge listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	log.Infof("command bridge stopped")

	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": version.Version,
	})
}

func (s *Server) commands(w http.ResponseWriter, r *http.Request) {
	var infos []CommandInfo
	for _, c := range s.registry.Commands() {
		infos = append(infos, CommandInfo{Name: c.Name, Param: c.Param, Usage: c.Usage})
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) invoke(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "command")

	if _, err := s.registry.Lookup(name); err != nil {
		writeError(w, r, http.StatusNotFound, "UNKNOWN_COMMAND", err.Error())
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "failed to read body: "+err.Error())
		return
	}

	res := s.registry.Invoke(r.Context(), name, body)
	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, code int, errCode, msg string) {
	var body ErrorBody
	body.Error.Code = errCode
	body.Error.Message = msg
	body.Error.RequestID = middleware.GetReqID(r.Context())
	writeJSON(w, code, body)
}

// recovery turns a handler panic into a 500 JSON envelope.
func recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				log.Errorf("panic serving %s: %v", r.URL.Path, p)
				writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", fmt.Sprintf("panic: %v", p))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debugf("%s %s status=%d bytes=%d dur=%s req=%s",
			r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start), middleware.GetReqID(r.Context()))
	})
}
