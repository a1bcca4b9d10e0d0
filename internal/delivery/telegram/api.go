package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	pkghttp "CoinPulse/pkg/http"
)

const defaultAPIBase = "https://api.telegram.org"

// API is a thin client over the Telegram Bot HTTP API. Only the two methods
// the bot needs are wrapped: getUpdates long polling and sendMessage.
type API struct {
	http    *pkghttp.Client
	baseURL string
	token   string
}

// APIOption configures the API client.
type APIOption func(*API)

// WithAPIBase overrides the Bot API host.
func WithAPIBase(u string) APIOption {
	return func(a *API) {
		if u != "" {
			a.baseURL = u
		}
	}
}

// NewAPI creates a Bot API client for the given token.
func NewAPI(token string, httpClient *pkghttp.Client, opts ...APIOption) *API {
	a := &API{
		http:    httpClient,
		baseURL: defaultAPIBase,
		token:   token,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Update is one entry of a getUpdates response.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is an incoming chat message.
type Message struct {
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
	Chat      Chat   `json:"chat"`
	From      *User  `json:"from"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// apiResponse is the Bot API envelope.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

// GetUpdates long-polls for updates after offset.
func (a *API) GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]Update, error) {
	var resp apiResponse
	err := a.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    a.methodURL("getUpdates"),
		QueryParams: map[string][]string{
			"offset":  {strconv.FormatInt(offset, 10)},
			"timeout": {strconv.Itoa(timeoutSec)},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("getUpdates: %w", err)
	}
	if !resp.OK {
		return nil, fmt.Errorf("getUpdates: %s", resp.Description)
	}

	var updates []Update
	if err := json.Unmarshal(resp.Result, &updates); err != nil {
		return nil, fmt.Errorf("getUpdates: decode result: %w", err)
	}
	return updates, nil
}

// SendMessage posts a Markdown-formatted message to a chat.
func (a *API) SendMessage(ctx context.Context, chatID int64, text string) error {
	var resp apiResponse
	err := a.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodPost,
		URL:    a.methodURL("sendMessage"),
		Body: map[string]interface{}{
			"chat_id":    chatID,
			"text":       text,
			"parse_mode": "Markdown",
		},
	}, &resp)
	if err != nil {
		return fmt.Errorf("sendMessage: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("sendMessage: %s", resp.Description)
	}
	return nil
}

func (a *API) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", a.baseURL, a.token, method)
}
