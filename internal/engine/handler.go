package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/AiTravelerAi/TravelAi/internal/httpserver"
	"github.com/AiTravelerAi/TravelAi/internal/metrics"
	"github.com/gorilla/mux"
)

// Chatter generates a reply for a prompt.
type Chatter interface {
	Chat(ctx context.Context, prompt, model string) (string, error)
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Prompt *string `json:"prompt"`
	Model  *string `json:"model"`
}

// ChatResponse is the body of a successful POST /chat.
type ChatResponse struct {
	Response string `json:"response"`
}

// StatusResponse is the body of GET /.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Handler struct {
	chatter Chatter
	metrics *metrics.Metrics
}

func NewHandler(chatter Chatter, m *metrics.Metrics) (*Handler, error) {
	if chatter == nil {
		return nil, errors.New("engine: chatter is nil")
	}
	return &Handler{chatter: chatter, metrics: m}, nil
}

// Register mounts the engine routes on r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/", h.Root).Methods(http.MethodGet)
	r.HandleFunc("/chat", h.Chat).Methods(http.MethodPost)
}

func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	httpserver.WriteJSON(w, http.StatusOK, StatusResponse{
		Status:  "ok",
		Message: "TravelAi AI Engine running",
	})
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	req, err := decodeChatRequest(r.Body)
	if err != nil {
		h.metrics.ChatRequest("invalid")
		httpserver.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	model := ""
	if req.Model != nil {
		model = *req.Model
	}

	answer, err := h.chatter.Chat(r.Context(), *req.Prompt, model)
	if err != nil {
		h.metrics.ChatRequest("upstream_error")
		httpserver.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.metrics.ChatRequest("ok")
	httpserver.WriteJSON(w, http.StatusOK, ChatResponse{Response: answer})
}

func decodeChatRequest(body io.Reader) (ChatRequest, error) {
	var req ChatRequest
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return req, errors.New("request body is required")
		case errors.As(err, &typeErr) && typeErr.Field == "":
			return req, errors.New("request body must be a JSON object")
		case errors.As(err, &typeErr):
			return req, fmt.Errorf("field %q must be a string", typeErr.Field)
		default:
			return req, fmt.Errorf("invalid JSON body: %w", err)
		}
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return req, errors.New("invalid JSON body: unexpected data after the request object")
	}
	if req.Prompt == nil {
		return req, errors.New(`field "prompt" is required`)
	}
	return req, nil
}
