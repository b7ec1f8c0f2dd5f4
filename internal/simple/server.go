package simple

import (
	"crypto/subtle"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/portfolio-ai-assistant/internal/jsonx"
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

// Exchange is one stored question/answer pair.
type Exchange struct {
	UserMessage string  `json:"user_message"`
	AIResponse  string  `json:"ai_response"`
	Timestamp   string  `json:"timestamp"`
	Confidence  float64 `json:"confidence"`
}

// Server is the fallback assistant service. Sessions are bare per-id lists
// with no expiry.
type Server struct {
	dataDir   string
	apiKey    string
	logger    *zap.Logger
	responder *Responder

	mu       sync.Mutex
	sessions map[string][]Exchange
}

// NewServer loads the portfolio data and builds the fallback service.
func NewServer(dataDir, apiKey string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("simple")

	return &Server{
		dataDir:   dataDir,
		apiKey:    apiKey,
		logger:    logger,
		responder: NewResponder(LoadData(dataDir, logger)),
		sessions:  make(map[string][]Exchange),
	}
}

// SetupRoutes registers the service endpoints.
func (s *Server) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/chat", s.handleChat).Methods("POST")
	r.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	r.HandleFunc("/stats", s.handleStats).Methods("GET")
	r.HandleFunc("/context/reload", s.handleReload).Methods("GET")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"service":   "portfolio-ai-service",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("X-API-Key")
	if subtle.ConstantTimeCompare([]byte(key), []byte(s.apiKey)) != 1 {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid API key"})
		return
	}

	var req ChatRequest
	if err := jsonx.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invalid request body"})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = fmt.Sprintf("session_%d_%04d", time.Now().Unix(), rand.Intn(9000)+1000)
	}

	s.mu.Lock()
	responder := s.responder
	s.mu.Unlock()

	response, confidence, sources := responder.Respond(req.Message)

	s.mu.Lock()
	s.sessions[sessionID] = append(s.sessions[sessionID], Exchange{
		UserMessage: req.Message,
		AIResponse:  response,
		Timestamp:   time.Now().Format(time.RFC3339),
		Confidence:  confidence,
	})
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, ChatResponse{
		Response:   response,
		SessionID:  sessionID,
		Confidence: confidence,
		Timestamp:  time.Now().Format(time.RFC3339),
		Sources:    sources,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	exchanges, ok := s.sessions[id]
	if ok {
		exchanges = append([]Exchange{}, exchanges...)
	}
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Session not found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": id,
		"messages":  exchanges,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	total := len(s.sessions)
	messages := 0
	for _, exchanges := range s.sessions {
		messages += len(exchanges)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_sessions":  total,
		"active_sessions": total,
		"total_messages":  messages,
		"timestamp":       time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	responder := NewResponder(LoadData(s.dataDir, s.logger))

	s.mu.Lock()
	s.responder = responder
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "success",
		"message":   "Portfolio context reloaded successfully",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = jsonx.NewEncoder(w).Encode(v)
}
