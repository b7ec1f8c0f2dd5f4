// Package session tracks in-memory chat sessions with idle-based expiry.
// Nothing here survives a process restart.
package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTimeout is the idle duration after which a session expires.
	DefaultTimeout = time.Hour

	// maxHistory caps the message history per session; the oldest exchanges
	// are dropped first.
	maxHistory = 20
)

// Message is one user/assistant exchange within a session.
type Message struct {
	Timestamp   string `json:"timestamp"`
	UserMessage string `json:"user_message"`
	AIResponse  string `json:"ai_response"`
}

// Session groups the exchanges of one conversation under an identifier.
type Session struct {
	ID           string    `json:"id"`
	UserIP       string    `json:"user_ip,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	Messages     []Message `json:"messages"`
}

// Stats aggregates session counters.
type Stats struct {
	TotalSessions          int     `json:"total_sessions"`
	ActiveSessions         int     `json:"active_sessions"`
	TotalMessages          int     `json:"total_messages"`
	AvgMessagesPerSession  float64 `json:"average_messages_per_session"`
	AvgSessionDurationSecs float64 `json:"average_session_duration_seconds"`
}

// Summary is a compact view of a session for listings.
type Summary struct {
	ID           string `json:"id"`
	CreatedAt    string `json:"created_at"`
	LastActivity string `json:"last_activity"`
	MessageCount int    `json:"message_count"`
	UserIP       string `json:"user_ip"`
}

// Store is an in-process session map. Expiry is computed on read: an expired
// session is deleted the moment it is observed and can never be resurrected.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	timeout  time.Duration
	now      func() time.Time
}

// NewStore creates a session store with the given idle timeout; zero means
// the default one hour.
func NewStore(timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store{
		sessions: make(map[string]*Session),
		timeout:  timeout,
		now:      time.Now,
	}
}

// Create registers a new session and returns its identifier. Creation also
// sweeps out every currently expired session.
func (s *Store) Create(userIP string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	id := fmt.Sprintf("session_%d_%s", now.Unix(), uuid.NewString()[:8])

	s.sessions[id] = &Session{
		ID:           id,
		UserIP:       userIP,
		CreatedAt:    now,
		LastActivity: now,
		Messages:     []Message{},
	}

	s.sweepLocked(now)
	return id
}

// Get returns a copy of the session, or false if it is unknown or expired.
// An expired session is deleted on sight.
func (s *Store) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.getLocked(id)
	if !ok {
		return Session{}, false
	}
	return copySession(sess), true
}

// Update appends an exchange to the session and bumps its activity time.
// Unknown or expired sessions are a no-op.
func (s *Store) Update(id, userMessage, aiResponse string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.getLocked(id)
	if !ok {
		return
	}

	now := s.now()
	sess.LastActivity = now
	sess.Messages = append(sess.Messages, Message{
		Timestamp:   now.Format(time.RFC3339),
		UserMessage: userMessage,
		AIResponse:  aiResponse,
	})
	if len(sess.Messages) > maxHistory {
		sess.Messages = sess.Messages[len(sess.Messages)-maxHistory:]
	}
}

// Delete removes a session regardless of its state.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// TotalSessions returns the number of sessions currently in the map,
// expired or not.
func (s *Store) TotalSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// ActiveSessions counts sessions that have not yet expired. Expiry is
// recomputed per session on every call.
func (s *Store) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	active := 0
	for _, sess := range s.sessions {
		if !s.expired(sess, now) {
			active++
		}
	}
	return active
}

// TotalMessages sums the message counts across all sessions.
func (s *Store) TotalMessages() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, sess := range s.sessions {
		total += len(sess.Messages)
	}
	return total
}

// Stats sweeps expired sessions and returns aggregate counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	total := len(s.sessions)
	messages := 0
	var durations []float64
	for _, sess := range s.sessions {
		messages += len(sess.Messages)
		durations = append(durations, sess.LastActivity.Sub(sess.CreatedAt).Seconds())
	}

	stats := Stats{
		TotalSessions:  total,
		ActiveSessions: total,
		TotalMessages:  messages,
	}
	if total > 0 {
		stats.AvgMessagesPerSession = float64(messages) / float64(total)
	}
	if len(durations) > 0 {
		var sum float64
		for _, d := range durations {
			sum += d
		}
		stats.AvgSessionDurationSecs = sum / float64(len(durations))
	}
	return stats
}

// Recent returns up to limit session summaries ordered by most recent
// activity.
func (s *Store) Recent(limit int) []Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 10
	}

	all := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		all = append(all, sess)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].LastActivity.After(all[j].LastActivity)
	})

	if len(all) > limit {
		all = all[:limit]
	}

	out := make([]Summary, 0, len(all))
	for _, sess := range all {
		ip := sess.UserIP
		if ip == "" {
			ip = "unknown"
		}
		out = append(out, Summary{
			ID:           sess.ID,
			CreatedAt:    sess.CreatedAt.Format(time.RFC3339),
			LastActivity: sess.LastActivity.Format(time.RFC3339),
			MessageCount: len(sess.Messages),
			UserIP:       ip,
		})
	}
	return out
}

// Clear drops every session.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*Session)
}

// getLocked resolves a live session, deleting it if expired. Caller holds
// the lock.
func (s *Store) getLocked(id string) (*Session, bool) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.expired(sess, s.now()) {
		delete(s.sessions, id)
		return nil, false
	}
	return sess, true
}

func (s *Store) expired(sess *Session, now time.Time) bool {
	return now.Sub(sess.LastActivity) > s.timeout
}

// sweepLocked deletes all currently expired sessions. Caller holds the lock.
func (s *Store) sweepLocked(now time.Time) {
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
		}
	}
}

func copySession(sess *Session) Session {
	out := *sess
	out.Messages = append([]Message{}, sess.Messages...)
	return out
}
