package engine

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/AiTravelerAi/TravelAi/internal/httpserver"
	"github.com/AiTravelerAi/TravelAi/internal/metrics"
)

type stubChatter struct {
	answer string
	err    error
	prompt string
	model  string
	calls  int
}

func (s *stubChatter) Chat(_ context.Context, prompt, model string) (string, error) {
	s.calls++
	s.prompt = prompt
	s.model = model
	return s.answer, s.err
}

func newTestRouter(t *testing.T, c Chatter) *mux.Router {
	t.Helper()
	h, err := NewHandler(c, metrics.New())
	require.NoError(t, err)
	r := httpserver.NewRouter(zerolog.Nop())
	h.Register(r)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestNewHandler_ValidatesDependency(t *testing.T) {
	_, err := NewHandler(nil, nil)
	require.Error(t, err)
}

func TestRoot_AlwaysOK(t *testing.T) {
	c := &stubChatter{}
	r := newTestRouter(t, c)

	for i := 0; i < 3; i++ {
		rec := do(r, http.MethodGet, "/", "")
		require.Equal(t, http.StatusOK, rec.Code)
		out := parseBody[StatusResponse](t, rec)
		require.Equal(t, "ok", out.Status)
		require.Equal(t, "TravelAi AI Engine running", out.Message)
	}
	require.Zero(t, c.calls)
}

func TestChat_HappyPath(t *testing.T) {
	c := &stubChatter{answer: "Try Kyoto in autumn."}
	r := newTestRouter(t, c)

	rec := do(r, http.MethodPost, "/chat", `{"prompt":"Where to in November?","model":"gpt-4o"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Try Kyoto in autumn.", parseBody[ChatResponse](t, rec).Response)
	require.Equal(t, "Where to in November?", c.prompt)
	require.Equal(t, "gpt-4o", c.model)
}

func TestChat_ModelIsOptional(t *testing.T) {
	c := &stubChatter{answer: "ok"}
	r := newTestRouter(t, c)

	rec := do(r, http.MethodPost, "/chat", "{\"prompt\":\"hi\",\"extra\":1}\n")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "", c.model)
}

func TestChat_UpstreamErrorIs500WithMessage(t *testing.T) {
	c := &stubChatter{err: errors.New("connection reset by peer")}
	r := newTestRouter(t, c)

	rec := do(r, http.MethodPost, "/chat", `{"prompt":"hi"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "connection reset by peer", parseBody[httpserver.ErrorResponse](t, rec).Detail)
	require.Equal(t, 1, c.calls)
}

func TestChat_RejectsInvalidBodies(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		detail string
	}{
		{name: "empty body", body: "", detail: "request body is required"},
		{name: "missing prompt", body: `{"model":"gpt-4o"}`, detail: `field "prompt" is required`},
		{name: "null prompt", body: `{"prompt":null}`, detail: `field "prompt" is required`},
		{name: "numeric prompt", body: `{"prompt":42}`, detail: `field "prompt" must be a string`},
		{name: "numeric model", body: `{"prompt":"hi","model":4}`, detail: `field "model" must be a string`},
		{name: "not an object", body: `"hi"`, detail: "request body must be a JSON object"},
		{name: "malformed", body: `{"prompt":`, detail: "invalid JSON body"},
		{name: "trailing partial object", body: `{"prompt":"hi"} {"prompt":`, detail: "unexpected data after the request object"},
		{name: "trailing second object", body: `{"prompt":"hi"}{"prompt":"again"}`, detail: "unexpected data after the request object"},
		{name: "trailing garbage", body: `{"prompt":"hi"} x`, detail: "unexpected data after the request object"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := &stubChatter{}
			r := newTestRouter(t, c)

			rec := do(r, http.MethodPost, "/chat", tc.body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			require.Contains(t, parseBody[httpserver.ErrorResponse](t, rec).Detail, tc.detail)
			require.Zero(t, c.calls, "handler logic must not run")
		})
	}
}

func TestChat_WrongMethod(t *testing.T) {
	r := newTestRouter(t, &stubChatter{})

	rec := do(r, http.MethodGet, "/chat", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
