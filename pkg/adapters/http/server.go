package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/KDL-umass/Toybox/internal/logging"
	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// Server serves one engine handle.
type Server struct {
	Engine ports.Engine
	logger *slog.Logger
}

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithLogger configures request logging.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// queryRequest is the body of POST /query/{name}.
type queryRequest struct {
	Arg any `json:"arg"`
}

// queryResponse is the reply of POST /query/{name}.
type queryResponse struct {
	Result any `json:"result"`
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.Engine, opts ...ServerOption) http.Handler {
	s := &Server{Engine: engine, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/game", s.GetGame)
	r.Get("/state", s.GetState)
	r.Put("/state", s.PutState)
	r.Get("/config", s.GetConfig)
	r.Post("/query/{name}", s.PostQuery)
	return r
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetGame handles the GET /game request.
func (s *Server) GetGame(w http.ResponseWriter, r *http.Request) {
	name, err := s.Engine.GameName(r.Context())
	if err != nil {
		s.writeError(w, "GameName", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"game": name})
}

// GetState handles the GET /state request.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Engine.ReadState(r.Context())
	if err != nil {
		s.writeError(w, "ReadState", err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// PutState handles the PUT /state request.
func (s *Server) PutState(w http.ResponseWriter, r *http.Request) {
	snap, err := domain.DecodeSnapshot(r.Body)
	if err != nil {
		s.logger.Warn("PutState: invalid request body", "err", err)
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Code: "bad_request"})
		return
	}
	if err := s.Engine.WriteState(r.Context(), snap); err != nil {
		s.writeError(w, "WriteState", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetConfig handles the GET /config request.
func (s *Server) GetConfig(w http.ResponseWriter, r *http.Request) {
	src, ok := s.Engine.(ports.ConfigSource)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorBody{Error: "engine exposes no config", Code: "not_found"})
		return
	}
	cfg, err := src.Config(r.Context())
	if err != nil {
		s.writeError(w, "Config", err)
		return
	}
	s.writeJSON(w, http.StatusOK, cfg)
}

// PostQuery handles the POST /query/{name} request.
func (s *Server) PostQuery(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var body queryRequest
	if r.ContentLength != 0 {
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil {
			s.logger.Warn("PostQuery: invalid request body", "query", name, "err", err)
			s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body", Code: "bad_request"})
			return
		}
	}

	result, err := s.Engine.Query(r.Context(), name, body.Arg)
	if err != nil {
		s.writeError(w, "Query", err)
		return
	}
	s.writeJSON(w, http.StatusOK, queryResponse{Result: result})
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	code, status := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("engine call failed", "op", op, "err", err)
	} else {
		s.logger.Debug("engine call rejected", "op", op, "code", code, "err", err)
	}
	s.writeJSON(w, status, errorBody{Error: err.Error(), Code: code})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
