// Package server wires the retriever, generator, and session store into the
// REST API of the portfolio assistant.
package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/portfolio-ai-assistant/internal/generation"
	"github.com/portfolio-ai-assistant/internal/jsonx"
	"github.com/portfolio-ai-assistant/internal/retrieval"
	"github.com/portfolio-ai-assistant/internal/session"
)

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
	UserIP    string `json:"userIP,omitempty"`
}

// ChatResponse is the envelope returned by POST /chat.
type ChatResponse struct {
	Response   string   `json:"response"`
	SessionID  string   `json:"sessionId"`
	Confidence float64  `json:"confidence"`
	Timestamp  string   `json:"timestamp"`
	Sources    []string `json:"sources"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	ModelLoaded   bool   `json:"model_loaded"`
	ContextLoaded bool   `json:"context_loaded"`
}

// Server exposes the assistant over HTTP. All state is owned here and
// injected at construction; there are no package-level singletons.
type Server struct {
	index     *retrieval.Index
	generator *generation.Generator
	sessions  *session.Store
	apiKey    string
	logger    *zap.Logger
}

// New creates the HTTP server around the assistant's components.
func New(index *retrieval.Index, generator *generation.Generator, sessions *session.Store, apiKey string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		index:     index,
		generator: generator,
		sessions:  sessions,
		apiKey:    apiKey,
		logger:    logger.Named("server"),
	}
}

// SetupRoutes registers every endpoint on the router.
func (s *Server) SetupRoutes(r *mux.Router) {
	r.Use(s.requestLogger)

	r.HandleFunc("/", s.handleRoot).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	r.Handle("/chat", s.requireAPIKey(s.handleChat)).Methods("POST")
	r.Handle("/context/reload", s.requireAPIKey(s.handleReload)).Methods("GET")
	r.Handle("/sessions/{id}", s.requireAPIKey(s.handleGetSession)).Methods("GET")
	r.Handle("/stats", s.requireAPIKey(s.handleStats)).Methods("GET")
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Portfolio AI Assistant",
		"status":  "running",
		"version": "1.0.0",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "OK",
		Timestamp:     time.Now().Format(time.RFC3339),
		ModelLoaded:   s.generator != nil && s.generator.Info().Loaded,
		ContextLoaded: s.index != nil && s.index.Loaded(),
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := jsonx.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		httpError(w, "Message is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	// Resolve or create the session.
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = s.sessions.Create(req.UserIP)
	}

	// A retrieval failure degrades to an uncontextualized answer, never a
	// failed request.
	contextItems, err := s.index.Search(ctx, req.Message, retrieval.DefaultTopK)
	if err != nil {
		s.logger.Warn("context retrieval failed", zap.Error(err))
		contextItems = nil
	}

	result, err := s.generator.Generate(ctx, req.Message, contextItems, sessionID)
	if err != nil {
		// Model unavailable or timed out: substitute the canned reply.
		result = generation.Fallback(req.Message)
	}

	s.sessions.Update(sessionID, req.Message, result.Response)

	writeJSON(w, http.StatusOK, ChatResponse{
		Response:   result.Response,
		SessionID:  sessionID,
		Confidence: result.Confidence,
		Timestamp:  time.Now().Format(time.RFC3339),
		Sources:    result.Sources,
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		httpError(w, "Context service not initialized", http.StatusServiceUnavailable)
		return
	}

	if err := s.index.Reload(r.Context()); err != nil {
		s.logger.Error("context reload failed", zap.Error(err))
		httpError(w, "Failed to reload context", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Context reloaded successfully",
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	sess, ok := s.sessions.Get(id)
	if !ok {
		httpError(w, "Session not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_sessions":  s.sessions.TotalSessions(),
		"active_sessions": s.sessions.ActiveSessions(),
		"total_messages":  s.sessions.TotalMessages(),
		"model_info":      s.generator.Info(),
		"context_info":    s.index.Info(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := jsonx.NewEncoder(w).Encode(v); err != nil {
		// Headers are already written; nothing left to do but drop it.
		return
	}
}

// httpError writes a JSON error body. Messages are generic on purpose; no
// internal detail crosses the boundary.
func httpError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"detail": message})
}
