package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/plugin"
)

// PluginHandler lists discovered event hooks and triggers rescans.
type PluginHandler struct {
	manager *plugin.Manager
}

// NewPluginHandler creates a PluginHandler over manager.
func NewPluginHandler(manager *plugin.Manager) *PluginHandler {
	return &PluginHandler{manager: manager}
}

type pluginResponse struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description,omitempty"`
	Events      []string `json:"events"`
}

type listPluginsResponse struct {
	Dir     string           `json:"dir"`
	Plugins []pluginResponse `json:"plugins"`
}

func toPluginResponse(p *plugin.Plugin) pluginResponse {
	events := p.Manifest.Events
	if events == nil {
		events = []string{}
	}
	return pluginResponse{
		Name:        p.Manifest.Name,
		Version:     p.Manifest.Version,
		Description: p.Manifest.Description,
		Events:      events,
	}
}

// ServeHTTP routes GET /api/plugins, GET /api/plugins/{name} and
// POST /api/plugins/rescan.
func (h *PluginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/plugins"), "/")

	switch {
	case name == "" && r.Method == http.MethodGet:
		h.list(w)
	case name == "rescan" && r.Method == http.MethodPost:
		if err := h.manager.Discover(); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to discover plugins")
			return
		}
		h.list(w)
	case name != "" && name != "rescan" && r.Method == http.MethodGet:
		h.get(w, name)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *PluginHandler) list(w http.ResponseWriter) {
	plugins := h.manager.List()
	response := listPluginsResponse{
		Dir:     h.manager.PluginDir(),
		Plugins: make([]pluginResponse, 0, len(plugins)),
	}
	for _, p := range plugins {
		response.Plugins = append(response.Plugins, toPluginResponse(p))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *PluginHandler) get(w http.ResponseWriter, name string) {
	p, err := h.manager.Get(name)
	if err != nil {
		if errors.Is(err, plugin.ErrPluginNotFound) {
			writeError(w, http.StatusNotFound, "Plugin not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get plugin")
		return
	}
	writeJSON(w, http.StatusOK, toPluginResponse(p))
}
