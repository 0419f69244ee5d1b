package web

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthInfo holds runtime status for the health endpoint.
type HealthInfo struct {
	LLMModel      string     // from config
	CatalogName   string     // e.g. "spotify"
	CatalogAuthed bool       // user authorization present
	SessionCount  func() int // callback to session store, nil when stateless
}

// HealthHandler serves GET /api/health.
type HealthHandler struct {
	info      HealthInfo
	startTime time.Time
}

// NewHealthHandler creates a health handler recording the server start time.
func NewHealthHandler(info HealthInfo) *HealthHandler {
	return &HealthHandler{info: info, startTime: time.Now()}
}

type healthResponse struct {
	Status     string           `json:"status"`
	UptimeSecs int64            `json:"uptime_seconds"`
	Components healthComponents `json:"components"`
}

type healthComponents struct {
	LLM      healthLLM      `json:"llm"`
	Catalog  healthCatalog  `json:"catalog"`
	Sessions healthSessions `json:"sessions"`
}

type healthLLM struct {
	Status string `json:"status"`
	Model  string `json:"model"`
}
type healthCatalog struct {
	Name       string `json:"name"`
	UserAuthed bool   `json:"user_authed"`
}
type healthSessions struct {
	Active int `json:"active"`
}

// ServeHTTP handles GET /api/health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	active := 0
	if h.info.SessionCount != nil {
		active = h.info.SessionCount()
	}

	resp := healthResponse{
		Status:     "ok",
		UptimeSecs: int64(time.Since(h.startTime).Seconds()),
		Components: healthComponents{
			LLM:      healthLLM{Status: "ok", Model: h.info.LLMModel},
			Catalog:  healthCatalog{Name: h.info.CatalogName, UserAuthed: h.info.CatalogAuthed},
			Sessions: healthSessions{Active: active},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
