package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/user/lead-crawler/internal/contact"
	"github.com/user/lead-crawler/internal/domain"
	"github.com/user/lead-crawler/internal/search"
	"github.com/user/lead-crawler/internal/storage"
)

func (s *Server) handleSearchRequest(w http.ResponseWriter, r *http.Request) {
	var req domain.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Configs) == 0 {
		s.respondWithError(w, http.StatusBadRequest, "configs list cannot be empty")
		return
	}

	configs := make([]domain.SearchConfig, 0, len(req.Configs))
	for i, c := range req.Configs {
		c.Query = strings.TrimSpace(c.Query)
		c.Location = strings.TrimSpace(c.Location)
		if c.Query == "" || c.Location == "" {
			s.respondWithError(w, http.StatusBadRequest, "config "+strconv.Itoa(i)+": query and location are required")
			return
		}
		if c.Zoom == 0 {
			c.Zoom = search.DefaultZoom
		}
		c.Zoom = search.ClampZoom(c.Zoom, s.opts.ZoomMin, s.opts.ZoomMax)
		configs = append(configs, c)
	}

	id := middleware.GetReqID(r.Context())
	if !s.startJob(id, configs) {
		s.respondWithError(w, http.StatusConflict, "a search is already running")
		return
	}
	s.respondWithJSON(w, http.StatusAccepted, map[string]string{
		"message": "search accepted",
		"job_id":  id,
	})
}

func (s *Server) handleSearchStatus(w http.ResponseWriter, r *http.Request) {
	job, ok := s.currentJob()
	if !ok {
		s.respondWithError(w, http.StatusNotFound, "no search has been started")
		return
	}
	s.respondWithJSON(w, http.StatusOK, job)
}

func (s *Server) handleLeadsRequest(w http.ResponseWriter, r *http.Request) {
	if s.leads == nil {
		s.respondWithError(w, http.StatusServiceUnavailable, "lead store is not configured")
		return
	}
	raw := r.URL.Query().Get("website")
	if raw == "" {
		s.respondWithError(w, http.StatusBadRequest, "website query parameter is required")
		return
	}
	website := contact.NormalizeURL(raw)
	if website == "" {
		s.respondWithError(w, http.StatusBadRequest, "Invalid website: "+raw)
		return
	}

	leads, err := s.leads.FindByWebsite(r.Context(), website)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondWithError(w, http.StatusNotFound, "no leads found for website")
			return
		}
		s.logger.Error("failed to find leads", zap.String("website", website), zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not retrieve leads")
		return
	}
	s.respondWithJSON(w, http.StatusOK, leads)
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	healthStatus := make(map[string]string, len(names))
	healthy := true
	for _, name := range names {
		p := s.checks[name]
		if p == nil {
			healthStatus[name] = "disabled"
			continue
		}
		if err := p.Ping(ctx); err != nil {
			healthy = false
			healthStatus[name] = "unhealthy"
			s.logger.Error("health check failed", zap.String("dependency", name), zap.Error(err))
			continue
		}
		healthStatus[name] = "healthy"
	}

	if !healthy {
		s.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	s.respondWithJSON(w, http.StatusOK, healthStatus)
}

// --- Helper Functions ---

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
