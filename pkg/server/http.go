package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/cracros-cyber/Tradutor-Inteligente-IA/pkg/language"
	"github.com/cracros-cyber/Tradutor-Inteligente-IA/pkg/session"
)

// HTTPServer exposes the session API the widget talks to: REST operations,
// an SSE stream and a WebSocket per session, plus health and metrics.
type HTTPServer struct {
	manager       *session.Manager
	logger        *logrus.Logger
	engineName    string
	defaultSource language.Code
	defaultTarget language.Code
	defaultLocale string
	srv           *http.Server
}

// Config holds the HTTP server dependencies.
type Config struct {
	Manager *session.Manager
	Logger  *logrus.Logger
	// Port is the listen port, without the colon.
	Port string
	// EngineName is reported by the health endpoint.
	EngineName string
	// DefaultSource, DefaultTarget and DefaultLocale fill in session
	// create requests that leave them out.
	DefaultSource language.Code
	DefaultTarget language.Code
	DefaultLocale string
}

// NewHTTPServer creates the widget-facing HTTP server.
func NewHTTPServer(cfg Config) *HTTPServer {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	s := &HTTPServer{
		manager:       cfg.Manager,
		logger:        cfg.Logger,
		engineName:    cfg.EngineName,
		defaultSource: cfg.DefaultSource,
		defaultTarget: cfg.DefaultTarget,
		defaultLocale: cfg.DefaultLocale,
	}

	mux := http.NewServeMux()

	// Session collection (POST /api/v1/sessions)
	mux.HandleFunc("/api/v1/sessions", s.handleSessions)

	// Per-session operations, SSE stream and WebSocket, all routed by path
	mux.HandleFunc("/api/v1/sessions/", s.handleSessionRequest)

	// Supported language set
	mux.HandleFunc("/api/v1/languages", s.handleLanguages)

	// Health check endpoint
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	s.srv = &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: withCORS(mux),
	}
	return s
}

// Start starts the HTTP server and blocks until it stops.
func (s *HTTPServer) Start() error {
	s.logger.WithFields(logrus.Fields{
		"addr":   s.srv.Addr,
		"engine": s.engineName,
	}).Info("Starting HTTP server")

	return s.srv.ListenAndServe()
}

// Shutdown stops the server, waiting for in-flight requests up to the
// context deadline.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Handler returns the root handler, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.srv.Handler
}

type createSessionRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Locale string `json:"locale"`
}

// handleSessions handles the session collection endpoint.
func (s *HTTPServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// The body is optional; an empty one creates a session with defaults.
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	source := language.Code(req.Source)
	if source == "" {
		source = s.defaultSource
	}
	target := language.Code(req.Target)
	if target == "" {
		target = s.defaultTarget
	}
	locale := req.Locale
	if locale == "" {
		locale = s.defaultLocale
	}

	sess, err := s.manager.Create(source, target, locale)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(sess.Snapshot())
}

// handleSessionRequest routes per-session requests based on the path:
// /api/v1/sessions/{id}[/action].
func (s *HTTPServer) handleSessionRequest(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path[len("/api/v1/sessions/"):]
	if path == "" {
		http.Error(w, "Session ID is required", http.StatusBadRequest)
		return
	}

	id := path
	action := ""
	if i := strings.IndexByte(path, '/'); i >= 0 {
		id, action = path[:i], path[i+1:]
	}

	sess, ok := s.manager.Get(id)
	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	switch action {
	case "":
		s.handleSession(w, r, sess)
	case "input":
		s.handleSessionInput(w, r, sess)
	case "clear":
		s.handleSessionAction(w, r, sess, sess.Clear)
	case "swap":
		s.handleSessionAction(w, r, sess, sess.Swap)
	case "retry":
		s.handleSessionAction(w, r, sess, sess.Retry)
	case "languages":
		s.handleSessionLanguages(w, r, sess)
	case "events":
		s.handleSessionEventsSSE(w, r, sess)
	case "ws":
		s.handleSessionWS(w, r, sess)
	default:
		http.Error(w, "Unknown session operation", http.StatusNotFound)
	}
}

// handleSession serves the snapshot (GET) and teardown (DELETE) of one session.
func (s *HTTPServer) handleSession(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sess.Snapshot())
	case http.MethodDelete:
		s.manager.Close(sess.ID)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type inputRequest struct {
	Text string `json:"text"`
}

// handleSessionInput feeds a text edit into the debounced submission cycle.
func (s *HTTPServer) handleSessionInput(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req inputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sess.SetInput(req.Text)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sess.Snapshot())
}

// handleSessionAction runs a bodyless POST operation (clear, swap, retry)
// and returns the resulting snapshot.
func (s *HTTPServer) handleSessionAction(w http.ResponseWriter, r *http.Request, sess *session.Session, op func()) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	op()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sess.Snapshot())
}

type languagesRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// handleSessionLanguages applies a manual selector change.
func (s *HTTPServer) handleSessionLanguages(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req languagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := sess.SetLanguages(language.Code(req.Source), language.Code(req.Target)); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sess.Snapshot())
}

// handleSessionEventsSSE streams state snapshots over Server-Sent Events.
// Every state change is pushed as soon as it happens.
func (s *HTTPServer) handleSessionEventsSSE(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Set up SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := sess.Subscribe()
	defer cancel()

	// Send the current state immediately
	s.sendSSEEvent(w, "state", sess.Snapshot())

	for {
		select {
		case <-r.Context().Done():
			// Client disconnected
			return
		case snap, ok := <-ch:
			if !ok {
				// Session closed server-side
				return
			}
			s.sendSSEEvent(w, "state", snap)
		}
	}
}

// sendSSEEvent sends a Server-Sent Event.
func (s *HTTPServer) sendSSEEvent(w http.ResponseWriter, eventType string, snap session.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.WithError(err).Error("Failed to marshal SSE event")
		return
	}

	// Write SSE format: event: <type>\ndata: <json>\n\n
	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", string(data))

	// Flush to ensure data is sent immediately
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// handleLanguages returns the supported language set with display names.
func (s *HTTPServer) handleLanguages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	type languageInfo struct {
		Code       string `json:"code"`
		Name       string `json:"name"`
		NativeName string `json:"native_name"`
	}

	codes := language.Supported()
	infos := make([]languageInfo, 0, len(codes))
	for _, code := range codes {
		infos = append(infos, languageInfo{
			Code:       code.String(),
			Name:       code.Name(),
			NativeName: code.NativeName(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"languages":      infos,
		"default_source": s.defaultSource,
		"default_target": s.defaultTarget,
	})
}

// handleHealth provides a health check endpoint.
func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":          "healthy",
		"engine":          s.engineName,
		"active_sessions": s.manager.Count(),
	})
}

// withCORS lets the widget call the API from any origin, matching the SSE
// and WebSocket surfaces.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
