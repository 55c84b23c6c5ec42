package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hamed0406/observatorycheck/internal/domain"
	apimw "github.com/hamed0406/observatorycheck/internal/httpapi/middleware"
	"github.com/hamed0406/observatorycheck/internal/repo"
)

// InstanceRunner runs one check invocation on demand.
type InstanceRunner interface {
	RunInstance(ctx context.Context, inst domain.Instance) ([]domain.Observation, error)
}

type Server struct {
	Logger    *zap.Logger
	Instances []domain.Instance
	Results   repo.ObservationStore
	Runner    InstanceRunner
	Gatherer  prometheus.Gatherer
}

func NewServer(l *zap.Logger, instances []domain.Instance, rs repo.ObservationStore, runner InstanceRunner, g prometheus.Gatherer) *Server {
	return &Server{Logger: l, Instances: instances, Results: rs, Runner: runner, Gatherer: g}
}

func (s *Server) Router(keys apimw.Keys, allowedOrigins []string, pubRPM, pubBurst, admRPM, admBurst int) http.Handler {
	r := chi.NewRouter()
	if len(allowedOrigins) == 0 {
		r.Use(cors.AllowAll().Handler)
	} else {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-API-Key"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if s.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(pubRPM, pubBurst))
		r.Use(apimw.RequireAny(keys))
		r.Get("/api/instances", s.handleListInstances)
		r.Get("/api/observations/latest", s.handleLatest)
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(admRPM, admBurst))
		r.Use(apimw.RequireAdmin(keys))
		r.Post("/api/checks/run", s.handleRunCheck)
	})

	return r
}

func (s *Server) handleListInstances(w http.ResponseWriter, r *http.Request) {
	out := s.Instances
	if out == nil {
		out = []domain.Instance{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Results.Latest(r.Context())
	if err != nil {
		s.Logger.Warn("latest_error", zap.Error(err))
		http.Error(w, "latest error", http.StatusInternalServerError)
		return
	}
	if host := r.URL.Query().Get("host"); host != "" {
		filtered := rows[:0:0]
		for _, o := range rows {
			if strings.EqualFold(o.Host, host) {
				filtered = append(filtered, o)
			}
		}
		rows = filtered
	}
	if rows == nil {
		rows = []domain.Observation{}
	}
	writeJSON(w, http.StatusOK, rows)
}

type runResult struct {
	Host         string               `json:"host"`
	Ready        bool                 `json:"ready"`
	Observations []domain.Observation `json:"observations"`
	Error        string               `json:"error,omitempty"`
}

func (s *Server) handleRunCheck(w http.ResponseWriter, r *http.Request) {
	host := strings.TrimSpace(r.URL.Query().Get("host"))
	if host == "" {
		http.Error(w, "host is required", http.StatusBadRequest)
		return
	}

	var out []runResult
	for _, inst := range s.Instances {
		if !strings.EqualFold(inst.Host, host) {
			continue
		}
		obs, err := s.Runner.RunInstance(r.Context(), inst)
		res := runResult{Host: inst.Host, Ready: len(obs) > 0, Observations: obs}
		if res.Observations == nil {
			res.Observations = []domain.Observation{}
		}
		if err != nil {
			res.Error = err.Error()
		}
		out = append(out, res)
	}
	if len(out) == 0 {
		http.Error(w, "unknown host", http.StatusNotFound)
		return
	}

	s.Logger.Info("manual_check", zap.String("host", host), zap.Int("instances", len(out)))
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
