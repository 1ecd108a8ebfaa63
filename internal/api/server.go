// Package api provides the HTTP API for observing and steering a garden.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/talgya/garden-sim/internal/engine"
	"github.com/talgya/garden-sim/internal/persistence"
)

const maxSSEConns = 4

// Server serves the garden over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Clock    *engine.Clock
	DB       *persistence.DB // Optional; log and snapshot endpoints need it
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	sseConns int32

	subMu  sync.Mutex
	nextID int
	subs   map[int]chan engine.StepReport
}

// Handler builds the routed handler without starting a listener.
func (s *Server) Handler() http.Handler {
	plantLimiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/plants", s.handlePlants)
	mux.HandleFunc("/api/v1/hazards", s.handleHazards)
	mux.HandleFunc("/api/v1/catalog", s.handleCatalog)
	mux.HandleFunc("/api/v1/log", s.handleLog)
	mux.HandleFunc("/api/v1/stream", s.handleStream)

	// Admin endpoints.
	mux.HandleFunc("/api/v1/plant", s.adminOnly(RateLimitMiddleware(plantLimiter, s.handlePlace)))
	mux.HandleFunc("/api/v1/plant/remove", s.adminOnly(RateLimitMiddleware(plantLimiter, s.handleRemove)))
	mux.HandleFunc("/api/v1/soil", s.adminOnly(s.handleSoil))
	mux.HandleFunc("/api/v1/clock/start", s.adminOnly(s.handleClockStart))
	mux.HandleFunc("/api/v1/clock/stop", s.adminOnly(s.handleClockStop))
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	handler := s.Handler()
	go func() {
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of extra allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
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

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no GARDEN_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	month := s.Sim.Month()
	g := s.Sim.Garden()
	status := map[string]any{
		"run_id":     s.Sim.RunID(),
		"month":      month,
		"year":       engine.YearOf(month),
		"season":     s.Sim.Season(),
		"sim_time":   engine.SimTime(month),
		"running":    s.Clock.Running(),
		"speed":      s.Clock.Speed(),
		"interval":   s.Clock.Interval().String(),
		"cap_months": s.Clock.CapMonths(),
		"width":      g.Width,
		"height":     g.Height,
		"soil":       s.Sim.Soil(),
		"soil_mode":  s.Sim.SoilMode(),
		"hazards":    len(s.Sim.Hazards()),
		"stats":      s.Sim.Stats(),
	}
	writeJSON(w, status)
}

func (s *Server) handlePlants(w http.ResponseWriter, r *http.Request) {
	if idStr := r.URL.Query().Get("id"); idStr != "" {
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		p, ok := s.Sim.Plant(engine.PlantID(id))
		if !ok {
			http.Error(w, "plant not found", http.StatusNotFound)
			return
		}
		writeJSON(w, p)
		return
	}

	plants := s.Sim.Plants()
	if name := r.URL.Query().Get("type"); name != "" {
		filtered := plants[:0]
		for _, p := range plants {
			if strings.EqualFold(p.Name, name) {
				filtered = append(filtered, p)
			}
		}
		plants = filtered
	}
	writeJSON(w, plants)
}

func (s *Server) handleHazards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Hazards())
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Catalog())
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	entries, err := s.DB.RecentLog(limit)
	if err != nil {
		slog.Error("log query failed", "error", err)
		http.Error(w, "log query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, entries)
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		TypeID int     `json:"type_id,omitempty"`
		Name   string  `json:"name,omitempty"`
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	typeID := req.TypeID
	if typeID == 0 && req.Name != "" {
		pt, ok := s.Sim.Catalog().FindPlant(req.Name)
		if !ok {
			http.Error(w, fmt.Sprintf("no plant type matches %q", req.Name), http.StatusNotFound)
			return
		}
		typeID = pt.ID
	}

	id, err := s.Sim.Place(typeID, req.X, req.Y)
	switch {
	case errors.Is(err, engine.ErrUnknownPlantType):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, engine.ErrOutOfBounds):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	p, _ := s.Sim.Plant(id)
	writeJSONStatus(w, http.StatusCreated, p)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		ID engine.PlantID `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if !s.Sim.Remove(req.ID) {
		http.Error(w, "plant not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"removed": req.ID, "plants": s.Sim.LiveCount()})
}

func (s *Server) handleSoil(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			SoilID int `json:"soil_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := s.Sim.SetSoil(req.SoilID); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
	}
	writeJSON(w, s.Sim.Soil())
}

func (s *Server) handleClockStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.Clock.Start(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, map[string]any{"running": true, "month": s.Sim.Month()})
}

func (s *Server) handleClockStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.Clock.Stop()
	writeJSON(w, map[string]any{"running": false, "month": s.Sim.Month()})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed > 1000 {
			http.Error(w, "speed must be at most 1000", http.StatusBadRequest)
			return
		}
		if err := s.Clock.SetSpeed(req.Speed); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	writeJSON(w, map[string]any{"speed": s.Clock.Speed(), "interval": s.Clock.Interval().String()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	st := s.Sim.State()
	if err := s.DB.SaveState(st); err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"month":   st.Month,
		"plants":  len(st.Plants),
		"message": "snapshot saved",
	})
}

// Publish fans a step report out to connected stream clients. Slow clients
// miss reports rather than block the clock.
func (s *Server) Publish(report engine.StepReport) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- report:
		default:
		}
	}
}

func (s *Server) subscribe() (int, <-chan engine.StepReport) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.subs == nil {
		s.subs = make(map[int]chan engine.StepReport)
	}
	s.nextID++
	ch := make(chan engine.StepReport, 16)
	s.subs[s.nextID] = ch
	return s.nextID, ch
}

func (s *Server) unsubscribe(id int) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	delete(s.subs, id)
}

// handleStream sends each step report as a server-sent event.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	current := atomic.AddInt32(&s.sseConns, 1)
	if current > maxSSEConns {
		atomic.AddInt32(&s.sseConns, -1)
		http.Error(w, "too many SSE connections", http.StatusServiceUnavailable)
		return
	}
	defer atomic.AddInt32(&s.sseConns, -1)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	subID, ch := s.subscribe()
	defer s.unsubscribe(subID)
	flusher.Flush()

	slog.Info("SSE client connected", "sub_id", subID)

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case report := <-ch:
			writeSSEReport(w, report)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			slog.Info("SSE client disconnected", "sub_id", subID)
			return
		}
	}
}

// writeSSEReport writes a single step report in SSE format.
func writeSSEReport(w http.ResponseWriter, report engine.StepReport) {
	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: step\ndata: %s\n\n", data)
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
