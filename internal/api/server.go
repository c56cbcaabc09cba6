package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"mangaeditor/internal/config"
	"mangaeditor/internal/logging"
	"mangaeditor/internal/rowdb"
	"mangaeditor/internal/rows"
)

const shutdownTimeout = 5 * time.Second

// Server is the row service HTTP listener.
type Server struct {
	bind    string
	maxBody int64
	logger  *slog.Logger
	rowSvc  *RowService
	handler http.Handler

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

// NewServer wires the row routes around store.
func NewServer(cfg *config.Config, store RowStore, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("api: config is required")
	}
	if store == nil {
		return nil, errors.New("api: row store is required")
	}
	bind := strings.TrimSpace(cfg.Server.Bind)
	if bind == "" {
		return nil, errors.New("api: server.bind is required")
	}
	maxBody := cfg.Server.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	srv := &Server{
		bind:    bind,
		maxBody: maxBody,
		logger:  logging.NewComponentLogger(logger, "api"),
		rowSvc:  NewRowService(store),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/rows", srv.handleRows)
	mux.HandleFunc("/health", srv.handleHealth)
	srv.handler = withRequestID(srv.logger, withCORS(mux))

	srv.server = &http.Server{
		Handler:           srv.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Start listens on the configured bind address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(s.logger, "api server error", "api_serve_failed", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the listener down, waiting briefly for in-flight requests.
func (s *Server) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListRows(w, r)
	case http.MethodPost:
		s.handleCreateRow(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, OPTIONS")
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleListRows(w http.ResponseWriter, r *http.Request) {
	records, err := s.rowSvc.List(r.Context())
	if err != nil {
		s.writeStoreError(r.Context(), w, "list rows failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCreateRow(w http.ResponseWriter, r *http.Request) {
	draft, err := s.decodeDraft(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := s.rowSvc.Create(r.Context(), draft)
	if err != nil {
		s.writeStoreError(r.Context(), w, "create row failed", err)
		return
	}
	logging.WithContext(r.Context(), s.logger).Info("row created", logging.Int64(logging.FieldRowID, created.ID))
	s.writeJSON(w, http.StatusOK, created)
}

// decodeDraft reads one JSON object. An empty body is an empty draft, so every
// column is stored as NULL.
func (s *Server) decodeDraft(w http.ResponseWriter, r *http.Request) (rows.Draft, error) {
	var draft rows.Draft
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err := decoder.Decode(&draft); err != nil {
		if errors.Is(err, io.EOF) {
			return rows.Draft{}, nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return rows.Draft{}, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return rows.Draft{}, fmt.Errorf("invalid request body: %w", err)
	}
	if decoder.More() {
		return rows.Draft{}, errors.New("invalid request body: trailing data after JSON object")
	}
	return draft, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET, OPTIONS")
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	health, err := s.rowSvc.Health(r.Context())
	if err != nil {
		logging.WarnWithContext(logging.WithContext(r.Context(), s.logger), "health check failed", "store_ping_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check store.path or store.dsn"),
			logging.String(logging.FieldImpact, "row requests will fail"),
		)
		s.writeJSON(w, http.StatusServiceUnavailable, health)
		return
	}
	s.writeJSON(w, http.StatusOK, health)
}

func (s *Server) writeStoreError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	logging.ErrorWithContext(logging.WithContext(ctx, s.logger), msg, "store_unavailable",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check store.path or store.dsn"),
	)
	message := err.Error()
	var storeErr *rowdb.StoreError
	if errors.As(err, &storeErr) && storeErr.Err != nil {
		message = storeErr.Err.Error()
	}
	s.writeError(w, http.StatusInternalServerError, message)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}
