// Package api provides the HTTP API for watching and playing the world.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talgya/clearing/internal/engine"
	"github.com/talgya/clearing/internal/persistence"
	"github.com/talgya/clearing/internal/world"
)

const maxStreamConns = 8

// Server serves the world over HTTP.
type Server struct {
	Sim         *engine.Simulation
	Eng         *engine.Engine
	DB          *persistence.DB // optional; history is disabled without it
	RunID       string
	Port        int
	AdminKey    string // Bearer token for POST endpoints. Empty = POST disabled.
	CORSOrigins []string
	Gatherer    prometheus.Gatherer // defaults to prometheus.DefaultGatherer

	// StreamInterval is how often /api/v1/stream pushes a snapshot.
	StreamInterval time.Duration

	streamConns int32
	upgrader    websocket.Upgrader
	limiter     *RateLimiter
}

// Handler builds the routed handler.
func (s *Server) Handler() http.Handler {
	if s.limiter == nil {
		s.limiter = NewRateLimiter(30, time.Second)
	}
	gatherer := s.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s.upgrader.CheckOrigin = s.originAllowed

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/world", s.handleWorld)
	mux.HandleFunc("GET /api/v1/text", s.handleText)
	mux.HandleFunc("GET /api/v1/events", s.handleEvents)
	mux.HandleFunc("GET /api/v1/stats", s.handleStats)
	mux.HandleFunc("GET /api/v1/history", s.handleHistory)
	mux.HandleFunc("GET /api/v1/stream", s.handleStream)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc("POST /api/v1/click", s.adminOnly(RateLimitMiddleware(s.limiter, s.handleClick)))
	mux.HandleFunc("POST /api/v1/speed", s.adminOnly(s.handleSpeed))

	return s.corsMiddleware(mux)
}

// Start serves the API until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	handler := s.Handler()
	go s.limiter.Sweep(ctx, time.Hour)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Streams are hijacked, so Shutdown cannot reach them; they watch ctx instead.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	slog.Info("HTTP API starting", "addr", srv.Addr, "admin_auth", s.AdminKey != "")

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// originAllowed reports whether a browser origin may use the API.
// Localhost dev servers are always allowed.
func (s *Server) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	switch origin {
	case "http://localhost:5173", "http://localhost:4173", "http://localhost:3000":
		return true
	}
	for _, o := range s.CORSOrigins {
		if strings.TrimSpace(o) == origin {
			return true
		}
	}
	return false
}

// corsMiddleware adds CORS headers for allowed frontend origins.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && s.originAllowed(r) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no WORLDSIM_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// Status is the body of GET /api/v1/status.
type Status struct {
	Tick    uint64            `json:"tick"`
	Time    string            `json:"time"`
	Speed   float64           `json:"speed"`
	Running bool              `json:"running"`
	RunID   string            `json:"run_id,omitempty"`
	Text    string            `json:"text"`
	Titles  map[string]string `json:"titles"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	wd := s.Sim.World()
	tick := s.Sim.CurrentTick()

	titles := make(map[string]string, len(world.Actions))
	for _, a := range world.Actions {
		titles[strconv.Itoa(int(a))] = wd.Title(a)
	}

	writeJSON(w, Status{
		Tick:    tick,
		Time:    engine.TickTime(tick),
		Speed:   s.Eng.Speed(),
		Running: s.Eng.Running(),
		RunID:   s.RunID,
		Text:    wd.Text(),
		Titles:  titles,
	})
}

// WorldResponse is the body of GET /api/v1/world.
type WorldResponse struct {
	Tick     uint64         `json:"tick"`
	Snapshot world.Snapshot `json:"world"`
}

func (s *Server) handleWorld(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, WorldResponse{
		Tick:     s.Sim.CurrentTick(),
		Snapshot: s.Sim.World().Snapshot(),
	})
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, s.Sim.World().Text())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.RecentEvents(queryLimit(r, 50, 500)))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Stats())
}

// HistoryResponse is the body of GET /api/v1/history.
type HistoryResponse struct {
	RunID     string                    `json:"run_id"`
	Snapshots []persistence.SnapshotRow `json:"snapshots"`
	Actions   []persistence.ActionRow   `json:"actions"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil || s.RunID == "" {
		http.Error(w, "journal disabled", http.StatusServiceUnavailable)
		return
	}
	limit := queryLimit(r, 20, 500)

	snaps, err := s.DB.RecentSnapshots(r.Context(), s.RunID, limit)
	if err != nil {
		slog.Error("history snapshots query failed", "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	actions, err := s.DB.RecentActions(r.Context(), s.RunID, limit)
	if err != nil {
		slog.Error("history actions query failed", "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}

	writeJSON(w, HistoryResponse{RunID: s.RunID, Snapshots: snaps, Actions: actions})
}

// ClickRequest accepts {"action": 2} or {"action": "birth"}.
type ClickRequest struct {
	Action json.RawMessage `json:"action"`
}

// ClickResponse is the body returned by POST /api/v1/click.
type ClickResponse struct {
	Tick    uint64        `json:"tick"`
	Outcome world.Outcome `json:"outcome"`
	Text    string        `json:"text"`
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req ClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	a, err := decodeAction(req.Action)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	out, err := s.Sim.Click(a)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, engine.ErrUnknownAction) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	writeJSON(w, ClickResponse{
		Tick:    s.Sim.CurrentTick(),
		Outcome: out,
		Text:    s.Sim.World().Text(),
	})
}

// decodeAction reads an action given as a number or as a caption.
func decodeAction(raw json.RawMessage) (world.Action, error) {
	if len(raw) == 0 {
		return 0, errors.New("missing action")
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return world.Action(n), nil
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return 0, errors.New("action must be a number or a name")
	}
	a, ok := world.ParseAction(name)
	if !ok {
		return 0, fmt.Errorf("unknown action %q", name)
	}
	return a, nil
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Speed < 0 || req.Speed > 1000 {
		http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
		return
	}
	s.Eng.SetSpeed(req.Speed)

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

// handleStream upgrades to a WebSocket and pushes world snapshots.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	current := atomic.AddInt32(&s.streamConns, 1)
	if current > maxStreamConns {
		atomic.AddInt32(&s.streamConns, -1)
		http.Error(w, "too many stream connections", http.StatusServiceUnavailable)
		return
	}
	defer atomic.AddInt32(&s.streamConns, -1)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("stream upgrade failed", "error", err)
		return
	}
	streamSnapshots(r.Context(), conn, s.Sim, s.streamInterval())
}

func (s *Server) streamInterval() time.Duration {
	if s.StreamInterval > 0 {
		return s.StreamInterval
	}
	return time.Second
}

func queryLimit(r *http.Request, def, max int) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= max {
			return n
		}
	}
	return def
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Debug("response encode failed", "error", err)
	}
}
