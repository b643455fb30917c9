package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ruflab/simple-shapes-dataset/internal/logging"
	"github.com/ruflab/simple-shapes-dataset/pkg/domain"
	"github.com/ruflab/simple-shapes-dataset/pkg/sampler"
)

// Groups is the read side of an alignment result.
type Groups interface {
	N() int
	Groups() []domain.GroupKey
	Sampler(g domain.GroupKey) (*sampler.Composite, bool)
}

// Server serves the records of aligned groups as JSON.
type Server struct {
	groups   Groups
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithGatherer exposes the gathered metrics on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// GroupInfo describes one group.
type GroupInfo struct {
	Group   string   `json:"group"`
	Domains []string `json:"domains"`
	Len     int      `json:"len"`
	Indices []int    `json:"indices,omitempty"`
}

// GroupList is the body of GET /groups.
type GroupList struct {
	N      int         `json:"n"`
	Groups []GroupInfo `json:"groups"`
}

// Item is the body of GET /groups/{group}/items/{index}.
type Item struct {
	Group  string        `json:"group"`
	Index  int           `json:"index"`
	Record domain.Record `json:"record"`
}

// NewHandler creates the HTTP handler for groups.
func NewHandler(groups Groups, opts ...Option) http.Handler {
	s := &Server{
		groups: groups,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/groups", s.ListGroups)
	r.Get("/groups/{group}", s.GetGroup)
	r.Get("/groups/{group}/items/{index}", s.GetItem)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListGroups handles GET /groups.
func (s *Server) ListGroups(w http.ResponseWriter, r *http.Request) {
	resp := GroupList{N: s.groups.N(), Groups: []GroupInfo{}}
	for _, g := range s.groups.Groups() {
		smp, _ := s.groups.Sampler(g)
		resp.Groups = append(resp.Groups, GroupInfo{
			Group:   g.String(),
			Domains: g.Domains(),
			Len:     smp.Len(),
		})
	}
	s.writeJSON(w, resp)
}

// GetGroup handles GET /groups/{group}.
func (s *Server) GetGroup(w http.ResponseWriter, r *http.Request) {
	g, smp, ok := s.lookup(w, r)
	if !ok {
		return
	}
	indices := smp.Indices()
	if indices == nil {
		indices = []int{}
	}
	s.writeJSON(w, GroupInfo{
		Group:   g.String(),
		Domains: g.Domains(),
		Len:     smp.Len(),
		Indices: indices,
	})
}

// GetItem handles GET /groups/{group}/items/{index}.
func (s *Server) GetItem(w http.ResponseWriter, r *http.Request) {
	g, smp, ok := s.lookup(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "Invalid index", http.StatusBadRequest)
		return
	}

	rec, err := smp.Get(index)
	if err != nil {
		if errors.Is(err, domain.ErrIndexOutOfRange) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to read record", http.StatusInternalServerError)
		s.logger.Error("GetItem failed", "group", g.String(), "index", index, "error", err)
		return
	}
	s.writeJSON(w, Item{Group: g.String(), Index: index, Record: rec})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (domain.GroupKey, *sampler.Composite, bool) {
	g := domain.ParseGroupKey(chi.URLParam(r, "group"))
	smp, ok := s.groups.Sampler(g)
	if !ok {
		http.Error(w, "Unknown group", http.StatusNotFound)
		return g, nil, false
	}
	return g, smp, true
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
