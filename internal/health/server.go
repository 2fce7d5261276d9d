package health

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes agent liveness, last-cycle status and backlog depth on
// a local port, plus the prometheus registry under /metrics.
type Server struct {
	port        string
	running     int32
	lastCycleOk int32
	backlogSize func() int
	registry    *prometheus.Registry
}

func New(port string, backlogSize func() int, registry *prometheus.Registry) *Server {
	return &Server{port: port, backlogSize: backlogSize, registry: registry}
}

func (s *Server) SetRunning(ok bool) {
	if ok {
		atomic.StoreInt32(&s.running, 1)
	} else {
		atomic.StoreInt32(&s.running, 0)
	}
}

func (s *Server) SetCycleHealthy(ok bool) {
	if ok {
		atomic.StoreInt32(&s.lastCycleOk, 1)
	} else {
		atomic.StoreInt32(&s.lastCycleOk, 0)
	}
}

func (s *Server) Serve() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	if s.registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	return http.ListenAndServe("127.0.0.1:"+s.port, mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"running":  atomic.LoadInt32(&s.running) == 1,
		"cycle_ok": atomic.LoadInt32(&s.lastCycleOk) == 1,
	}
	if s.backlogSize != nil {
		resp["backlog"] = s.backlogSize()
	}
	json.NewEncoder(w).Encode(resp)
}
