package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	tbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/AiTravelerAi/TravelAi/internal/httpserver"
	"github.com/AiTravelerAi/TravelAi/internal/metrics"
)

// Enqueuer accepts updates for asynchronous dispatch.
type Enqueuer interface {
	Enqueue(upd *models.Update) error
}

// WebhookSetter registers the callback URL with Telegram. *tbot.Bot satisfies it.
type WebhookSetter interface {
	SetWebhook(ctx context.Context, params *tbot.SetWebhookParams) (bool, error)
}

type Handler struct {
	queue       Enqueuer
	setter      WebhookSetter
	callbackURL string
	metrics     *metrics.Metrics
	log         *zerolog.Logger
}

func NewHandler(queue Enqueuer, setter WebhookSetter, callbackURL string, m *metrics.Metrics, log *zerolog.Logger) (*Handler, error) {
	if queue == nil {
		return nil, errors.New("webhook: queue is nil")
	}
	if setter == nil {
		return nil, errors.New("webhook: setter is nil")
	}
	return &Handler{
		queue:       queue,
		setter:      setter,
		callbackURL: callbackURL,
		metrics:     m,
		log:         log,
	}, nil
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/webhook", h.Webhook).Methods(http.MethodPost)
	r.HandleFunc("/set_webhook", h.SetWebhook).Methods(http.MethodGet)
}

// Webhook always answers 200 OK; Telegram redelivers on anything else.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	var upd models.Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		h.log.Error().Err(err).
			Str("request_id", httpserver.RequestIDFrom(r.Context())).
			Msg("webhook handling error")
		h.metrics.WebhookUpdate("parse_error")
		httpserver.WriteText(w, http.StatusOK, "OK")
		return
	}

	if err := h.queue.Enqueue(&upd); err != nil {
		h.log.Warn().Err(err).Int64("update_id", upd.ID).Msg("update dropped")
		h.metrics.WebhookUpdate("dropped")
		httpserver.WriteText(w, http.StatusOK, "OK")
		return
	}

	h.metrics.WebhookUpdate("queued")
	httpserver.WriteText(w, http.StatusOK, "OK")
}

func (h *Handler) SetWebhook(w http.ResponseWriter, r *http.Request) {
	ok, err := h.setter.SetWebhook(r.Context(), &tbot.SetWebhookParams{URL: h.callbackURL})
	if err != nil {
		h.log.Error().Err(err).Str("url", h.callbackURL).Msg("unable to set webhook")
		httpserver.WriteText(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.log.Info().Str("url", h.callbackURL).Bool("success", ok).Msg("webhook set")
	httpserver.WriteText(w, http.StatusOK, fmt.Sprintf("Webhook set: %t", ok))
}
