package webhook

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/voicebridge/convoai-relay/internal/api"
)

// Handler exposes the webhook HTTP surface.
type Handler struct {
	processor *Processor
	feed      *Feed
}

// NewHandler creates a Handler. feed may be nil to disable the live feed
// route.
func NewHandler(processor *Processor, feed *Feed) *Handler {
	return &Handler{processor: processor, feed: feed}
}

// RegisterRoutes mounts the webhook routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/webhook", h.handleWebhook)
	r.Get("/webhook", h.handleHealth)
	r.Get("/notifications", h.handleNotifications)
	if h.feed != nil {
		r.Get("/ws/notifications", h.feed.ServeHTTP)
	}
}

// handleWebhook receives one call notification. The notifier treats any 200
// as delivered, so processing outcomes ride in the body; only an unreadable
// payload is a 500.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var data map[string]any
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		api.JSON(w, http.StatusInternalServerError, map[string]string{
			"status": "error",
			"error":  err.Error(),
		})
		return
	}

	api.JSON(w, http.StatusOK, h.processor.Process(r.Context(), data))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleNotifications(w http.ResponseWriter, r *http.Request) {
	notifications := h.processor.Retained()
	api.JSON(w, http.StatusOK, map[string]any{
		"count":         len(notifications),
		"notifications": notifications,
	})
}
