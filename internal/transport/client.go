// Package transport implements the subscriber chat surface (spec §6): a
// Telegram-style bot client, message rendering, the persisted subscriber
// list, and the inbound command handlers.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client sends messages and answers callback queries via the Telegram Bot
// API, grounded on the bot-API request/response shapes the teacher's
// executor.BaseExecutor-backed Telegram integration already models.
type Client struct {
	httpClient *http.Client
	baseURL    string
	botToken   string
}

// NewClient builds a Client. timeout bounds every individual outbound call
// per §5's "every outbound HTTP/RPC call carries an individual timeout".
func NewClient(botToken string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://api.telegram.org",
		botToken:   botToken,
	}
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	ErrorCode   int    `json:"error_code,omitempty"`
}

// inlineButton is one callback-carrying button.
type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// sendMessagePayload mirrors the Telegram Bot API's sendMessage body.
type sendMessagePayload struct {
	ChatID      string `json:"chat_id"`
	Text        string `json:"text"`
	ParseMode   string `json:"parse_mode,omitempty"`
	ReplyMarkup *struct {
		InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
	} `json:"reply_markup,omitempty"`
}

// SendText sends a plain message with no inline keyboard.
func (c *Client) SendText(ctx context.Context, chatID, text string) error {
	return c.send(ctx, sendMessagePayload{ChatID: chatID, Text: text, ParseMode: "Markdown"})
}

// SendWithButtons sends a message with one row of accept/postpone/reject
// inline buttons carrying the opaque callback payloads from §6.
func (c *Client) SendWithButtons(ctx context.Context, chatID, text string, buttons []inlineButton) error {
	payload := sendMessagePayload{ChatID: chatID, Text: text, ParseMode: "Markdown"}
	payload.ReplyMarkup = &struct {
		InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
	}{InlineKeyboard: [][]inlineButton{buttons}}
	return c.send(ctx, payload)
}

func (c *Client) send(ctx context.Context, payload sendMessagePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("transport: marshal send payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("transport: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("transport: send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("transport: read response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return fmt.Errorf("transport: parse response: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("transport: bot API error %d: %s", apiResp.ErrorCode, apiResp.Description)
	}
	return nil
}

// AnswerCallback acknowledges an inline button press so the client stops
// showing its loading spinner.
func (c *Client) AnswerCallback(ctx context.Context, callbackQueryID string) error {
	payload := map[string]any{"callback_query_id": callbackQueryID}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("transport: marshal callback ack: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/answerCallbackQuery", c.baseURL, c.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("transport: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("transport: send request: %w", err)
	}
	defer resp.Body.Close()
	return nil
}
