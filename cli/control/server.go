package control

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"feedsweep/domain"
	"feedsweep/internal/oplog"
)

var ErrAlreadyRunning = errors.New("already running")

// TryListen tries to bind the control address. If it's already in use, we assume an instance is running.
func TryListen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, ErrAlreadyRunning
	}
	return ln, nil
}

// Server is the loopback control surface of a running sweeper process.
type Server struct {
	sweeper domain.Sweeper
	logs    *oplog.Buffer
}

func NewServer(sweeper domain.Sweeper, logs *oplog.Buffer) *Server {
	return &Server{sweeper: sweeper, logs: logs}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/sweep":
		s.handleSweep(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/set-interval":
		s.handleSetInterval(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/set-workers":
		s.handleSetWorkers(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/logs":
		s.handleLogs(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/logs/clear":
		s.handleLogsClear(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/status":
		s.handleStatus(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	res := s.sweeper.SweepNow(r.Context())
	_ = json.NewEncoder(w).Encode(res)
}

func (s *Server) handleSetInterval(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Duration string `json:"duration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	d, err := time.ParseDuration(req.Duration)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid duration: %v", err), http.StatusBadRequest)
		return
	}
	old := s.sweeper.CurrentInterval()
	s.sweeper.SetInterval(d)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "old": old.String(), "new": d.String()})
}

func (s *Server) handleSetWorkers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Workers int `json:"workers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.Workers <= 0 {
		http.Error(w, "workers must be > 0", http.StatusBadRequest)
		return
	}
	old := s.sweeper.CurrentWorkers()
	if err := s.sweeper.Resize(req.Workers); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "old": old, "new": req.Workers})
}

func (s *Server) handleLogs(w http.ResponseWriter, _ *http.Request) {
	_ = json.NewEncoder(w).Encode(s.logs.Entries())
}

func (s *Server) handleLogsClear(w http.ResponseWriter, _ *http.Request) {
	s.logs.Clear()
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"ok": true})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"interval": s.sweeper.CurrentInterval().String(),
		"workers":  s.sweeper.CurrentWorkers(),
		"logged":   s.logs.Len(),
	})
}
