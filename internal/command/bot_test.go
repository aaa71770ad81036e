package command

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raydium-sniper/internal/filter"
)

func newBot(t *testing.T) *Bot {
	t.Helper()
	return NewBot("test-token", filter.NewCriteria(), BotConfig{})
}

func TestHandleCommand_Start(t *testing.T) {
	reply := newBot(t).HandleCommand(1, "/start")
	assert.Contains(t, reply, "/filters")
	assert.Contains(t, reply, "/set")
	assert.Contains(t, reply, "/snipe")
}

func TestHandleCommand_FiltersMarksUnmodified(t *testing.T) {
	bot := newBot(t)

	reply := bot.HandleCommand(1, "/filters")
	for _, key := range filter.Keys() {
		assert.Contains(t, reply, key+": ?")
	}

	require.Contains(t, bot.HandleCommand(1, "/set dev_hold_max 7.5"), "✅")

	reply = bot.HandleCommand(1, "/filters")
	assert.Contains(t, reply, "dev_hold_max: 7.5")
	assert.Contains(t, reply, "lp_tokens_min: ?")
}

func TestHandleCommand_SetValidation(t *testing.T) {
	bot := newBot(t)

	reply := bot.HandleCommand(1, "/set social_accounts_min 1.5")
	assert.Contains(t, reply, "⚠️")
	assert.Contains(t, reply, "whole number")

	reply = bot.HandleCommand(1, "/set nope 1")
	assert.Contains(t, reply, "⚠️")

	reply = bot.HandleCommand(1, "/set social_accounts_min")
	assert.Contains(t, reply, "Usage:")

	reply = bot.HandleCommand(1, "/set social_accounts_min 2")
	assert.Contains(t, reply, "✅")
}

func TestHandleCommand_ConfirmShowsResolvedValues(t *testing.T) {
	bot := newBot(t)

	reply := bot.HandleCommand(1, "/confirm")
	assert.Contains(t, reply, "Confirmed thresholds:")
	// Defaults are shown even though nothing was modified.
	assert.Contains(t, reply, "social_accounts_min: 1")
	assert.Contains(t, reply, "locked_liquidity_max: 100")
	assert.NotContains(t, reply, "?")
}

func TestHandleCommand_SnipeRegistersChat(t *testing.T) {
	var mu sync.Mutex
	var chats []int64

	bot := NewBot("test-token", filter.NewCriteria(), BotConfig{
		OnSnipe: func(chatID int64) {
			mu.Lock()
			chats = append(chats, chatID)
			mu.Unlock()
		},
	})

	reply := bot.HandleCommand(42, "/snipe")
	assert.Contains(t, reply, "Monitoring started")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int64{42}, chats)
}

func TestHandleCommand_IgnoresPlainText(t *testing.T) {
	assert.Empty(t, newBot(t).HandleCommand(1, "hello there"))
	assert.Empty(t, newBot(t).HandleCommand(1, ""))
}

func TestHandleCommand_StripsBotSuffix(t *testing.T) {
	reply := newBot(t).HandleCommand(1, "/filters@sniper_bot")
	assert.Contains(t, reply, "social_accounts_min")
}

func TestBot_RunPollsAndReplies(t *testing.T) {
	var mu sync.Mutex
	var sent []string
	served := false

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			w.Header().Set("Content-Type", "application/json")
			mu.Lock()
			first := !served
			served = true
			mu.Unlock()
			if first {
				fmt.Fprint(w, `{"ok": true, "result": [
					{"update_id": 7, "message": {"text": "/start", "chat": {"id": 99}}}
				]}`)
				return
			}
			assert.Equal(t, "8", r.URL.Query().Get("offset"))
			fmt.Fprint(w, `{"ok": true, "result": []}`)

		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var req struct {
				ChatID int64  `json:"chat_id"`
				Text   string `json:"text"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, int64(99), req.ChatID)
			mu.Lock()
			sent = append(sent, req.Text)
			mu.Unlock()
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"ok": true}`)
		}
	}))
	defer srv.Close()

	bot := NewBot("test-token", filter.NewCriteria(), BotConfig{BaseURL: srv.URL})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bot.Run(ctx) }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(sent) == 1
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, sent[0], "Commands:")
}
