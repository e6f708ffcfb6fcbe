package handler

import (
	"encoding/json"
	"net/http"

	"github.com/pkordes/blog/internal/domain"
	"github.com/pkordes/blog/internal/service"
)

// PlaceholderRequest is the body of POST /admin/placeholders.
type PlaceholderRequest struct {
	Slot string `json:"slot"`
}

// PluginRequest is the body of POST /admin/placeholders/{id}/plugins.
// An empty language defaults to the request language.
type PluginRequest struct {
	PluginType string          `json:"plugin_type"`
	Language   string          `json:"language,omitempty"`
	Body       json.RawMessage `json:"body,omitempty"`
}

// PluginResponse returns the stored body as embedded JSON rather than a string.
type PluginResponse struct {
	domain.PluginInstance
	Body json.RawMessage `json:"body,omitempty"`
}

func pluginToResponse(p domain.PluginInstance) PluginResponse {
	resp := PluginResponse{PluginInstance: p}
	if p.Body != "" {
		resp.Body = json.RawMessage(p.Body)
	}
	return resp
}

// CreatePlaceholder handles POST /admin/placeholders.
func (s *Server) CreatePlaceholder(w http.ResponseWriter, r *http.Request) {
	var req PlaceholderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ph, err := s.content.CreatePlaceholder(r.Context(), req.Slot)
	if err != nil {
		s.writeError(w, r, err, "placeholder not found")
		return
	}
	writeJSON(w, http.StatusCreated, ph)
}

// GetPlaceholder handles GET /admin/placeholders/{id}.
func (s *Server) GetPlaceholder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	ph, err := s.content.GetPlaceholder(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "placeholder not found")
		return
	}
	writeJSON(w, http.StatusOK, ph)
}

// ListPlugins handles GET /admin/placeholders/{id}/plugins.
func (s *Server) ListPlugins(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	plugins, err := s.content.ListPlugins(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "placeholder not found")
		return
	}
	out := make([]PluginResponse, len(plugins))
	for i, p := range plugins {
		out[i] = pluginToResponse(p)
	}
	writeJSON(w, http.StatusOK, out)
}

// AddPlugin handles POST /admin/placeholders/{id}/plugins.
func (s *Server) AddPlugin(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req PluginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := s.content.AddPlugin(r.Context(), id, service.PluginInput{
		PluginType: req.PluginType,
		Language:   req.Language,
		Body:       string(req.Body),
	})
	if err != nil {
		s.writeError(w, r, err, "placeholder not found")
		return
	}
	writeJSON(w, http.StatusCreated, pluginToResponse(p))
}
