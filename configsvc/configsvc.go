// Package configsvc implements the config service: a small HTTP server,
// keyed by tool ID, that serves each controller's JSON configuration with
// per-tool customization overlaid onto a shared base config.
package configsvc

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dallas-makerspace/interlock/config"
)

// ToolEntry is one controller's registration: its per-field overrides onto
// the shared BaseConfig.Config, keyed by dotted JSON path (e.g.
// "timeout"). Paths descend only through struct fields and slice indices,
// so values inside the connections map cannot be overridden.
type ToolEntry struct {
	Custom map[string]interface{} `json:"custom,omitempty"`
}

// BaseConfig is the config service's on-disk source document: one shared
// config.Config plus a registry of known tools and their overrides.
type BaseConfig struct {
	Config config.Config        `json:"config"`
	Tools  map[string]ToolEntry `json:"tools"`
}

// Server serves /config/<tool_id> from a BaseConfig.
type Server struct {
	base   BaseConfig
	logger *slog.Logger
}

// NewServer builds a Server over base.
func NewServer(base BaseConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{base: base, logger: logger}
}

// Handler returns the net/http handler serving /config/.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/config/", s.serveConfig)
	return mux
}

func (s *Server) serveConfig(w http.ResponseWriter, r *http.Request) {
	toolID := strings.TrimPrefix(r.URL.Path, "/config/")
	tool, ok := s.base.Tools[toolID]
	if !ok {
		s.logger.Error("config_service: tool not found", "tool_id", toolID)
		w.WriteHeader(http.StatusNotFound)
		return
	}

	c := s.base.Config
	c.ToolID = toolID

	for key, val := range tool.Custom {
		if err := setByPath(&c, val, strings.Split(key, ".")...); err != nil {
			s.logger.Warn("config_service: could not apply custom config key",
				"tool_id", toolID, "key", key, "value", val, "error", err)
		}
	}

	if err := json.NewEncoder(w).Encode(c); err != nil {
		s.logger.Error("config_service: error encoding JSON response", "error", err)
		return
	}
	s.logger.Info("config_service: served config", "tool_id", toolID)
}
