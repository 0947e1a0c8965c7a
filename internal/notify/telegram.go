package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

const telegramMaxMessageLen = 4096

// TelegramOption configures a Telegram notifier.
type TelegramOption func(*Telegram)

// WithTelegramBaseURL overrides the Bot API endpoint, including the token
// path segment.
func WithTelegramBaseURL(u string) TelegramOption {
	return func(t *Telegram) { t.baseURL = strings.TrimRight(u, "/") }
}

// WithTelegramHTTPClient sets the HTTP client.
func WithTelegramHTTPClient(c *http.Client) TelegramOption {
	return func(t *Telegram) { t.client = c }
}

// WithAllLevels forwards success and info notifications too.
func WithAllLevels() TelegramOption {
	return func(t *Telegram) { t.errorsOnly = false }
}

// Telegram forwards notifications to an operator chat through the Telegram
// Bot API. By default only errors are sent.
type Telegram struct {
	chatID     string
	baseURL    string
	client     *http.Client
	errorsOnly bool
}

// NewTelegram creates a Telegram notifier for chatID.
func NewTelegram(token, chatID string, opts ...TelegramOption) (*Telegram, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is required (LEARN_TELEGRAM_BOT_TOKEN)")
	}
	if chatID == "" {
		return nil, fmt.Errorf("telegram chat id is required (LEARN_TELEGRAM_CHAT_ID)")
	}
	t := &Telegram{
		chatID:     chatID,
		baseURL:    "https://api.telegram.org/bot" + token,
		client:     &http.Client{Timeout: 10 * time.Second},
		errorsOnly: true,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

func (t *Telegram) Notify(ctx context.Context, n Notification) error {
	if err := validate(&n); err != nil {
		return err
	}
	if t.errorsOnly && n.Level != LevelError {
		return nil
	}

	for _, part := range SplitMessage(formatTelegram(n), telegramMaxMessageLen) {
		params := url.Values{
			"chat_id": {t.chatID},
			"text":    {part},
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/sendMessage", strings.NewReader(params.Encode()))
		if err != nil {
			return fmt.Errorf("building Telegram request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := t.client.Do(req)
		if err != nil {
			return fmt.Errorf("sending Telegram message: %w", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("telegram API error %d", resp.StatusCode)
		}
	}
	return nil
}

func formatTelegram(n Notification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", strings.ToUpper(string(n.Level)))
	if n.Resource != "" {
		fmt.Fprintf(&b, " %s", n.Resource)
		if n.Action != "" {
			fmt.Fprintf(&b, " %s", n.Action)
		}
	}
	if n.Status > 0 {
		fmt.Fprintf(&b, " (HTTP %d)", n.Status)
	}
	b.WriteString(": ")
	b.WriteString(n.Message)
	return b.String()
}

// SplitMessage splits text into parts of at most maxLen bytes, preferring to
// break after a newline, then after a space. Parts never end inside a
// multi-byte rune.
func SplitMessage(text string, maxLen int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= maxLen {
		return []string{text}
	}

	var parts []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			parts = append(parts, text)
			break
		}
		cutAt := maxLen
		for cutAt > 0 && !utf8.RuneStart(text[cutAt]) {
			cutAt--
		}
		if cutAt == 0 {
			_, cutAt = utf8.DecodeRuneInString(text)
		}
		if idx := strings.LastIndex(text[:maxLen], "\n"); idx > 0 {
			cutAt = idx + 1
		} else if idx := strings.LastIndex(text[:maxLen], " "); idx > 0 {
			cutAt = idx + 1
		}
		parts = append(parts, text[:cutAt])
		text = text[cutAt:]
	}
	return parts
}
