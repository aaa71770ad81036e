package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTelegramBaseURL is the Telegram Bot API.
const DefaultTelegramBaseURL = "https://api.telegram.org"

// TelegramDestination delivers messages to one chat through the Bot
// API sendMessage method.
type TelegramDestination struct {
	baseURL    string
	token      string
	chatID     int64
	httpClient *http.Client
}

// NewTelegramDestination creates a destination for one chat.
func NewTelegramDestination(baseURL, token string, chatID int64) *TelegramDestination {
	if baseURL == "" {
		baseURL = DefaultTelegramBaseURL
	}
	return &TelegramDestination{
		baseURL: baseURL,
		token:   token,
		chatID:  chatID,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Name identifies the destination in logs and metrics.
func (d *TelegramDestination) Name() string {
	return fmt.Sprintf("telegram:%d", d.chatID)
}

type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// Send delivers one message to the chat.
func (d *TelegramDestination) Send(ctx context.Context, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: d.chatID, Text: text})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", d.baseURL, d.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	var parsed sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("decode response: %w", err)
	}

	if !parsed.OK {
		return fmt.Errorf("telegram error %d: %s", parsed.ErrorCode, parsed.Description)
	}
	return nil
}
