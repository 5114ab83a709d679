package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/trackmatch/internal/model"
	"github.com/ppiankov/trackmatch/internal/pipeline"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

type identifyRequest struct {
	URL string `json:"url"`
}

// resolveRequest carries fragments scraped by a browser extension
type resolveRequest struct {
	Page model.Page `json:"page"`
}

type selectRequest struct {
	Candidate model.SearchCandidate `json:"candidate"`
}

func (s *Server) handleIdentify(w http.ResponseWriter, r *http.Request) {
	var req identifyRequest
	if !s.decode(w, r, &req) {
		return
	}
	u, err := url.Parse(strings.TrimSpace(req.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		s.respondError(w, http.StatusBadRequest, "url must be an absolute http(s) URL")
		return
	}

	s.logger.Debug("identify request", zap.String("url", u.String()))
	report, err := s.pipeline.Identify(r.Context(), u.String())
	if err != nil {
		s.logger.Warn("identify failed", zap.String("url", u.String()), zap.Error(err))
		status := http.StatusBadGateway
		if errors.Is(err, pipeline.ErrDisallowed) {
			status = http.StatusForbidden
		}
		s.respondError(w, status, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Page.IsEmpty() {
		s.respondError(w, http.StatusBadRequest, "page has no fragments")
		return
	}

	s.logger.Debug("resolve request", zap.String("title", req.Page.Title), zap.Int("rows", len(req.Page.MetadataRows)))
	s.respondJSON(w, http.StatusOK, s.pipeline.Run(r.Context(), req.Page))
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Candidate.URI) == "" {
		s.respondError(w, http.StatusBadRequest, "candidate.uri is required")
		return
	}

	res, err := s.pipeline.Select(r.Context(), req.Candidate)
	switch {
	case errors.Is(err, pipeline.ErrNoAdder), errors.Is(err, pipeline.ErrNoPlaylist):
		s.respondError(w, http.StatusNotImplemented, err.Error())
	case err != nil:
		s.logger.Error("select failed", zap.String("uri", req.Candidate.URI), zap.Error(err))
		s.respondError(w, http.StatusBadGateway, err.Error())
	default:
		s.respondJSON(w, http.StatusOK, res)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
