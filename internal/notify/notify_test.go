package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNotifier struct {
	calls int
	err   error
}

func (s *stubNotifier) Notify(ctx context.Context, subject, body string) error {
	s.calls++
	return s.err
}

func TestMultiFansOutAndJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	first := &stubNotifier{}
	second := &stubNotifier{err: boom}
	third := &stubNotifier{}

	err := Multi{first, second, third}.Notify(context.Background(), "subject", "body")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, third.calls, "a failing notifier must not stop the fan-out")
}

func TestMultiEmptyIsNoOp(t *testing.T) {
	require.NoError(t, Multi{}.Notify(context.Background(), "s", "b"))
}

func TestTelegramPostsToChat(t *testing.T) {
	var captured map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottoken123/sendMessage", r.URL.Path)
		payload, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(payload, &captured))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	telegram := NewTelegram("token123", "chat-42")
	telegram.BaseURL = server.URL

	require.NoError(t, telegram.Notify(context.Background(), "Bot started", "initial balances"))
	assert.Equal(t, "chat-42", captured["chat_id"])
	assert.Equal(t, "Bot started\ninitial balances", captured["text"])
}

func TestTelegramReportsAPIFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"ok":false}`))
	}))
	defer server.Close()

	telegram := NewTelegram("bad", "chat")
	telegram.BaseURL = server.URL

	err := telegram.Notify(context.Background(), "s", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
