package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const defaultAPIBase = "https://api.telegram.org"

// Client is a thin Bot API client. It is the service's only outbound
// notification channel: warnings, nudges, death notices and command replies
// all go through SendMessage.
type Client struct {
	token      string
	apiBase    string
	httpClient *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		token:   token,
		apiBase: defaultAPIBase,
		httpClient: &http.Client{
			// getUpdates long-polls for up to 30s, leave headroom
			Timeout: 40 * time.Second,
		},
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

func (c *Client) call(ctx context.Context, method string, params any, result any) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to encode %s params: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(data, &apiResp); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", method, err)
	}
	if !apiResp.OK {
		return fmt.Errorf("%s rejected: %s", method, apiResp.Description)
	}

	if result != nil {
		if err := json.Unmarshal(apiResp.Result, result); err != nil {
			return fmt.Errorf("failed to parse %s result: %w", method, err)
		}
	}
	return nil
}

// GetMe returns the bot's own account, used to build invite deep links.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	me := &User{}
	if err := c.call(ctx, "getMe", map[string]any{}, me); err != nil {
		return nil, err
	}
	return me, nil
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	return c.call(ctx, "sendMessage", map[string]any{
		"chat_id": chatID,
		"text":    text,
	}, nil)
}

func (c *Client) SendMessageWithKeyboard(ctx context.Context, chatID int64, text string, keyboard *InlineKeyboardMarkup) error {
	return c.call(ctx, "sendMessage", map[string]any{
		"chat_id":      chatID,
		"text":         text,
		"reply_markup": keyboard,
	}, nil)
}

// SetWebhook registers url for update delivery. Telegram stops serving
// getUpdates while a webhook is registered, so this is called only in
// webhook mode.
func (c *Client) SetWebhook(ctx context.Context, url, secretToken string) error {
	return c.call(ctx, "setWebhook", map[string]any{
		"url":          url,
		"secret_token": secretToken,
	}, nil)
}

// DeleteWebhook clears any registered webhook. Polling mode calls this
// first; getUpdates is rejected while a webhook from a previous deployment
// is still registered.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	return c.call(ctx, "deleteWebhook", map[string]any{}, nil)
}

func (c *Client) getUpdates(ctx context.Context, offset int64) ([]Update, error) {
	var updates []Update
	err := c.call(ctx, "getUpdates", map[string]any{
		"offset":  offset,
		"timeout": 30,
	}, &updates)
	if err != nil {
		return nil, err
	}
	return updates, nil
}

// UpdateHandler consumes one inbound update. Implementations must not panic;
// the poller logs and continues either way.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, upd *Update)
}

// StartPolling runs the long-polling loop until ctx is cancelled. Transport
// errors back off and retry; a failing update handler never stops the loop.
func (c *Client) StartPolling(ctx context.Context, handler UpdateHandler) {
	go func() {
		var offset int64

		log.Println("Telegram poller started")
		for {
			select {
			case <-ctx.Done():
				log.Println("Telegram poller stopped")
				return
			default:
			}

			updates, err := c.getUpdates(ctx, offset)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				log.Printf("getUpdates failed: %v", err)
				time.Sleep(3 * time.Second)
				continue
			}

			for i := range updates {
				upd := &updates[i]
				offset = upd.UpdateID + 1
				handler.HandleUpdate(ctx, upd)
			}
		}
	}()
}
