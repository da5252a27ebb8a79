package http

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

const serviceName = "kidvocab_service"

// AI modes reported by the readiness check.
const (
	AIModeRemote   = "remote"
	AIModeFallback = "fallback"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	ready  atomic.Bool
	remote bool
}

// NewHealthHandler creates a new health handler. remote tells whether a
// generative service credential is configured.
func NewHealthHandler(remote bool) *HealthHandler {
	h := &HealthHandler{remote: remote}
	h.ready.Store(true)
	return h
}

// SetReady sets the ready state.
func (h *HealthHandler) SetReady(ready bool) {
	h.ready.Store(ready)
}

// AIMode reports whether generative features run remotely or from fallbacks.
func (h *HealthHandler) AIMode() string {
	if h.remote {
		return AIModeRemote
	}
	return AIModeFallback
}

// Health checks if the service is healthy.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": serviceName,
	})
}

// Ready checks if the service is ready to receive traffic.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if !h.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "not_ready",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ready",
		"ai_mode": h.AIMode(),
	})
}

// Live checks if the service is alive (Kubernetes liveness check).
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "alive",
	})
}

func writeJSON(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
