package webhook

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/AiTravelerAi/TravelAi/internal/bot"
	"github.com/AiTravelerAi/TravelAi/internal/config"
	"github.com/AiTravelerAi/TravelAi/internal/httpserver"
	"github.com/AiTravelerAi/TravelAi/internal/metrics"
)

type fakeQueue struct {
	updates []*models.Update
	err     error
}

func (f *fakeQueue) Enqueue(upd *models.Update) error {
	if f.err != nil {
		return f.err
	}
	f.updates = append(f.updates, upd)
	return nil
}

type fakeSetter struct {
	ok  bool
	err error
	url string
}

func (f *fakeSetter) SetWebhook(_ context.Context, params *tbot.SetWebhookParams) (bool, error) {
	f.url = params.URL
	return f.ok, f.err
}

func newTestRouter(t *testing.T, q Enqueuer, s WebhookSetter) *mux.Router {
	t.Helper()
	log := zerolog.Nop()
	h, err := NewHandler(q, s, "https://example.com/webhook", metrics.New(), &log)
	require.NoError(t, err)
	r := httpserver.NewRouter(log)
	h.Register(r)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestNewHandler_ValidatesDependencies(t *testing.T) {
	log := zerolog.Nop()
	_, err := NewHandler(nil, &fakeSetter{}, "", nil, &log)
	require.Error(t, err)
	_, err = NewHandler(&fakeQueue{}, nil, "", nil, &log)
	require.Error(t, err)
}

func TestWebhook_QueuesParsedUpdate(t *testing.T) {
	q := &fakeQueue{}
	r := newTestRouter(t, q, &fakeSetter{})

	rec := do(r, http.MethodPost, "/webhook",
		`{"update_id":7,"message":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"},"text":"hello world"}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", rec.Body.String())
	require.Len(t, q.updates, 1)
	require.Equal(t, int64(7), q.updates[0].ID)
	require.Equal(t, "hello world", q.updates[0].Message.Text)
}

func TestWebhook_UnparsableBodyStillOK(t *testing.T) {
	for _, body := range []string{"", "not-json", `{"update_id":"seven"}`} {
		q := &fakeQueue{}
		r := newTestRouter(t, q, &fakeSetter{})

		rec := do(r, http.MethodPost, "/webhook", body)
		require.Equal(t, http.StatusOK, rec.Code, "body=%q", body)
		require.Equal(t, "OK", rec.Body.String())
		require.Empty(t, q.updates)
	}
}

func TestWebhook_DroppedUpdateStillOK(t *testing.T) {
	q := &fakeQueue{err: ErrQueueFull}
	r := newTestRouter(t, q, &fakeSetter{})

	rec := do(r, http.MethodPost, "/webhook", `{"update_id":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", rec.Body.String())
}

func TestSetWebhook(t *testing.T) {
	cases := []struct {
		name string
		ok   bool
		want string
	}{
		{name: "accepted", ok: true, want: "Webhook set: true"},
		{name: "rejected", ok: false, want: "Webhook set: false"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &fakeSetter{ok: tc.ok}
			r := newTestRouter(t, &fakeQueue{}, s)

			rec := do(r, http.MethodGet, "/set_webhook", "")
			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, tc.want, rec.Body.String())
			require.Equal(t, "https://example.com/webhook", s.url)
		})
	}
}

func TestSetWebhook_TelegramError(t *testing.T) {
	s := &fakeSetter{err: errors.New("Unauthorized")}
	r := newTestRouter(t, &fakeQueue{}, s)

	rec := do(r, http.MethodGet, "/set_webhook", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "Unauthorized")
}

// TestWebhook_EndToEnd drives a real bot and queue against a fake Bot API.
func TestWebhook_EndToEnd(t *testing.T) {
	sent := make(chan string, 10)
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/sendMessage") {
			sent <- r.FormValue("text")
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":2,"date":0,"chat":{"id":42,"type":"private"}}}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	}))
	defer api.Close()

	log := zerolog.Nop()
	d := bot.NewDispatcher(bot.Texts{Start: config.DefaultPrompts.Start, Help: config.DefaultPrompts.Help}, nil, &log)
	opts := append(bot.Options(d, &log), tbot.WithServerURL(api.URL), tbot.WithSkipGetMe(), tbot.WithNotAsyncHandlers())
	tg, err := tbot.New("123:test", opts...)
	require.NoError(t, err)

	q := NewQueue(tg, 10, 1, &log)
	q.Start(context.Background())

	r := newTestRouter(t, q, tg)

	rec := do(r, http.MethodPost, "/webhook", "garbage")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(r, http.MethodPost, "/webhook",
		`{"update_id":8,"message":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"},"text":"/start","entities":[{"type":"bot_command","offset":0,"length":6}]}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, q.Stop(context.Background()))

	select {
	case text := <-sent:
		require.Equal(t, config.DefaultPrompts.Start, text)
	case <-time.After(2 * time.Second):
		t.Fatal("no reply sent")
	}
	require.Empty(t, sent, "garbage body must not produce a reply")

	rec = do(r, http.MethodGet, "/set_webhook", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Webhook set: true", rec.Body.String())
}
