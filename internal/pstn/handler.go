package pstn

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/voicebridge/convoai-relay/internal/api"
	"github.com/voicebridge/convoai-relay/internal/origin"
)

// Handler exposes the bridge HTTP surface.
type Handler struct {
	bridge  *Bridge
	origins *origin.Validator
}

// NewHandler creates a Handler guarding the bridge route with origin checks.
func NewHandler(bridge *Bridge, origins *origin.Validator) *Handler {
	return &Handler{bridge: bridge, origins: origins}
}

// RegisterRoutes mounts the bridge routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/pstn", h.handleDial)
}

func (h *Handler) handleDial(w http.ResponseWriter, r *http.Request) {
	if !h.origins.IsAllowed(r.Header.Get("Origin")) {
		api.Error(w, http.StatusForbidden, "Access denied. Origin validation failed")
		return
	}

	var body struct {
		Region string `json:"region"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.Error(w, http.StatusBadRequest, "No JSON data in request")
		return
	}
	if body.Region == "" {
		api.Error(w, http.StatusBadRequest, "Region is required")
		return
	}

	result, err := h.bridge.Dial(r.Context(), body.Region)
	if err != nil {
		if errors.Is(err, ErrToken) {
			api.Error(w, http.StatusInternalServerError, "Token generation failed: "+err.Error())
			return
		}
		api.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	if result.StatusCode != http.StatusOK {
		details := "Unknown error occurred"
		if result.Body != nil {
			if msg, ok := result.Body["error"].(string); ok {
				details = msg
			}
		}
		api.JSON(w, http.StatusBadRequest, map[string]string{
			"error":   "PSTN service error",
			"details": details,
		})
		return
	}

	if result.Body == nil {
		api.Error(w, http.StatusInternalServerError, "Invalid response from PSTN service")
		return
	}

	api.JSON(w, http.StatusOK, result.Body)
}
