package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/manager"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/rs/zerolog"
)

// Server exposes the controller's admin API over HTTP/JSON. It is the
// surface the CLI talks to: instance registration and heartbeats, resource
// definitions, ideal-state reads, and controller cluster membership.
type Server struct {
	manager *manager.Manager
	mux     *http.ServeMux
	logger  zerolog.Logger
	httpSrv *http.Server
}

// NewServer creates an admin API server around the manager
func NewServer(mgr *manager.Manager) *Server {
	s := &Server{
		manager: mgr,
		mux:     http.NewServeMux(),
		logger:  log.WithComponent("api"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /v1/instances", s.handleListInstances)
	s.mux.HandleFunc("POST /v1/instances", s.handleRegisterInstance)
	s.mux.HandleFunc("DELETE /v1/instances/{id}", s.handleRemoveInstance)
	s.mux.HandleFunc("POST /v1/instances/{id}/heartbeat", s.handleHeartbeat)

	s.mux.HandleFunc("GET /v1/resources", s.handleListResources)
	s.mux.HandleFunc("POST /v1/resources", s.handleCreateResource)
	s.mux.HandleFunc("DELETE /v1/resources/{name}", s.handleDeleteResource)

	s.mux.HandleFunc("GET /v1/statemodels", s.handleListStateModels)
	s.mux.HandleFunc("POST /v1/statemodels", s.handleCreateStateModel)

	s.mux.HandleFunc("GET /v1/idealstates/{resource}", s.handleGetIdealState)

	s.mux.HandleFunc("POST /v1/currentstates", s.handleReportCurrentState)

	s.mux.HandleFunc("POST /v1/cluster/controllers", s.handleAddController)
	s.mux.HandleFunc("GET /v1/cluster/leader", s.handleGetLeader)

	s.mux.HandleFunc("GET /health", s.healthHandler)
	s.mux.HandleFunc("GET /ready", s.readyHandler)
	s.mux.Handle("GET /metrics", metrics.Handler())
}

// Start starts serving on addr; it blocks until the server exits
func (s *Server) Start(addr string) error {
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.logged(s.mux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.logger.Info().Str("addr", addr).Msg("Admin API listening")
	return s.httpSrv.ListenAndServe()
}

// Close shuts the server down
func (s *Server) Close() error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Close()
}

// Handler returns the underlying handler for embedding or tests
func (s *Server) Handler() http.Handler {
	return s.logged(s.mux)
}

// logged wraps the mux with request logging
func (s *Server) logged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Handled request")
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleListInstances(w http.ResponseWriter, r *http.Request) {
	instances, err := s.manager.ListInstances()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, instances)
}

func (s *Server) handleRegisterInstance(w http.ResponseWriter, r *http.Request) {
	var instance types.Instance
	if err := json.NewDecoder(r.Body).Decode(&instance); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.manager.RegisterInstance(&instance); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, instance)
}

func (s *Server) handleRemoveInstance(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.RemoveInstance(r.PathValue("id")); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Heartbeat(r.PathValue("id")); err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListResources(w http.ResponseWriter, r *http.Request) {
	resources, err := s.manager.ListResources()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resources)
}

func (s *Server) handleCreateResource(w http.ResponseWriter, r *http.Request) {
	var resource types.Resource
	if err := json.NewDecoder(r.Body).Decode(&resource); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if resource.Name == "" || resource.NumPartitions <= 0 {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("resource needs a name and a positive partition count"))
		return
	}
	if _, err := s.manager.GetStateModel(resource.StateModel); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("unknown state model %q", resource.StateModel))
		return
	}
	if err := s.manager.CreateResource(&resource); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, resource)
}

func (s *Server) handleDeleteResource(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.DeleteResource(r.PathValue("name")); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListStateModels(w http.ResponseWriter, r *http.Request) {
	defs, err := s.manager.ListStateModels()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, defs)
}

func (s *Server) handleCreateStateModel(w http.ResponseWriter, r *http.Request) {
	var def types.StateModelDefinition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if def.Name == "" || len(def.States) == 0 {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("state model needs a name and at least one state"))
		return
	}
	if err := s.manager.CreateStateModel(&def); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, def)
}

func (s *Server) handleGetIdealState(w http.ResponseWriter, r *http.Request) {
	is, err := s.manager.GetIdealState(r.PathValue("resource"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeJSON(w, http.StatusOK, is)
}

func (s *Server) handleReportCurrentState(w http.ResponseWriter, r *http.Request) {
	var cs types.CurrentState
	if err := json.NewDecoder(r.Body).Decode(&cs); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if cs.InstanceID == "" || cs.Resource == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("current state needs instance_id and resource"))
		return
	}
	if err := s.manager.ReportCurrentState(&cs); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addControllerRequest struct {
	NodeID  string `json:"node_id"`
	Address string `json:"address"`
}

func (s *Server) handleAddController(w http.ResponseWriter, r *http.Request) {
	var req addControllerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.manager.AddVoter(req.NodeID, req.Address); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetLeader(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"leader":    s.manager.LeaderAddr(),
		"is_leader": s.manager.IsLeader(),
	})
}
