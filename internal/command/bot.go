// Package command is the Telegram command surface: a long-polling bot
// that reads and mutates the filter thresholds and starts monitoring
// for a chat.
package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"raydium-sniper/internal/filter"
	"raydium-sniper/internal/observability"
)

// DefaultBaseURL is the Telegram Bot API.
const DefaultBaseURL = "https://api.telegram.org"

// pollTimeout is the getUpdates long-poll timeout in seconds.
const pollTimeout = 30

const welcomeText = `Raydium pool sniper.

Commands:
/filters — show the current thresholds
/set <key> <value> — change a threshold
/snipe — start monitoring in this chat
/confirm — confirm the thresholds`

// Bot processes commands from Telegram chats. It runs alongside the
// pipeline and never blocks it.
type Bot struct {
	baseURL    string
	token      string
	httpClient *http.Client
	criteria   *filter.Criteria
	logger     *log.Logger

	// onSnipe registers a chat for alert delivery.
	onSnipe func(chatID int64)

	offset int64
}

// BotConfig holds bot parameters.
type BotConfig struct {
	// BaseURL overrides the Telegram API endpoint, for tests.
	BaseURL string
	// OnSnipe is called when a chat issues /snipe.
	OnSnipe func(chatID int64)
	// Logger receives command diagnostics. Defaults to log.Default().
	Logger *log.Logger
}

// NewBot creates a command bot bound to the shared criteria.
func NewBot(token string, criteria *filter.Criteria, config BotConfig) *Bot {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	logger := config.Logger
	if logger == nil {
		logger = log.Default()
	}
	onSnipe := config.OnSnipe
	if onSnipe == nil {
		onSnipe = func(int64) {}
	}
	return &Bot{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: (pollTimeout + 10) * time.Second,
		},
		criteria: criteria,
		logger:   logger,
		onSnipe:  onSnipe,
	}
}

type update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

type getUpdatesResponse struct {
	OK     bool     `json:"ok"`
	Result []update `json:"result"`
}

// Run polls for updates until the context is cancelled. Poll errors
// are logged and retried after a short pause.
func (b *Bot) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, err := b.getUpdates(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.Printf("[command] poll: %v", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= b.offset {
				b.offset = u.UpdateID + 1
			}
			if u.Message == nil {
				continue
			}
			b.handleCommand(ctx, u.Message.Chat.ID, u.Message.Text)
		}
	}
}

// HandleCommand processes one command line and returns the reply text.
// Exposed for the poll loop and for tests.
func (b *Bot) HandleCommand(chatID int64, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}

	// Strip a @botname suffix from group chats.
	cmd := strings.ToLower(strings.SplitN(fields[0], "@", 2)[0])
	observability.DefaultMetrics.CommandsProcessed.WithLabelValues(cmd).Inc()

	switch cmd {
	case "/start":
		return welcomeText

	case "/filters":
		return b.renderFilters(false)

	case "/set":
		if len(fields) != 3 {
			return "Usage: /set <key> <value>"
		}
		if err := b.criteria.Set(fields[1], fields[2]); err != nil {
			return fmt.Sprintf("⚠️ %v", err)
		}
		return fmt.Sprintf("✅ %s set to %s", strings.ToLower(fields[1]), fields[2])

	case "/snipe":
		b.onSnipe(chatID)
		return "🎯 Monitoring started. Alerts will arrive in this chat."

	case "/confirm":
		return "Confirmed thresholds:\n" + b.renderFilters(true)

	default:
		return "Unknown command. Try /start."
	}
}

// renderFilters lists the thresholds. Unmodified values show as "?"
// unless resolved is set.
func (b *Bot) renderFilters(resolved bool) string {
	snap := b.criteria.Snapshot()

	var sb strings.Builder
	for i, key := range filter.Keys() {
		value, modified, _ := snap.Get(key)
		if !modified && !resolved {
			value = "?"
		}
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s: %s", key, value)
	}
	return sb.String()
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, text string) {
	reply := b.HandleCommand(chatID, text)
	if reply == "" {
		return
	}
	if err := b.sendMessage(ctx, chatID, reply); err != nil {
		b.logger.Printf("[command] reply to %d: %v", chatID, err)
	}
}

func (b *Bot) getUpdates(ctx context.Context) ([]update, error) {
	q := url.Values{}
	q.Set("offset", fmt.Sprintf("%d", b.offset))
	q.Set("timeout", fmt.Sprintf("%d", pollTimeout))

	endpoint := fmt.Sprintf("%s/bot%s/getUpdates?%s", b.baseURL, b.token, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get updates: %w", err)
	}
	defer resp.Body.Close()

	var parsed getUpdatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("get updates: api returned ok=false")
	}
	return parsed.Result, nil
}

func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string) error {
	body, err := json.Marshal(map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", b.baseURL, b.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("send message: unexpected status %d", resp.StatusCode)
	}
	return nil
}
