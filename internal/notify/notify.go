// Package notify sends an optional run summary via the Telegram Bot API
// when a pipeline run finishes. Delivery uses a retry loop with linear
// backoff; a failed notification never fails the run.
package notify

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"snowstack/internal/manifest"
)

// Client sends run-summary notifications.
type Client struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a notification client.
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// SendSummary sends a formatted summary of the given run.
func (c *Client) SendSummary(m *manifest.Manifest) error {
	msg := tgbotapi.NewMessage(c.chatID, formatSummary(m))

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		_, err := c.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		time.Sleep(c.retryDelayBase * time.Duration(i+1))
	}

	return fmt.Errorf("failed to send summary after %d retries: %w", c.maxRetries, lastErr)
}

// formatSummary renders a manifest as a plain-text report.
func formatSummary(m *manifest.Manifest) string {
	var sb strings.Builder

	counts := m.Counts()
	fmt.Fprintf(&sb, "Snow composite run %s\n", m.RunID)
	fmt.Fprintf(&sb, "Finished: %s (took %s)\n",
		m.FinishedAt.Format("2006-01-02 15:04:05"),
		formatDuration(m.FinishedAt.Sub(m.StartedAt)))
	fmt.Fprintf(&sb, "Rendered: %d, stacked only: %d, skipped: %d, failed: %d\n",
		counts[manifest.StatusRendered],
		counts[manifest.StatusStacked],
		counts[manifest.StatusSkipped],
		counts[manifest.StatusRenderFailed])

	for _, e := range m.Months {
		switch e.Status {
		case manifest.StatusSkipped:
			if len(e.MissingBands) > 0 {
				fmt.Fprintf(&sb, "- %s skipped: missing %s\n", e.Month, strings.Join(e.MissingBands, ", "))
			} else {
				fmt.Fprintf(&sb, "- %s skipped: %s\n", e.Month, e.Reason)
			}
		case manifest.StatusRenderFailed:
			fmt.Fprintf(&sb, "- %s render failed: %s\n", e.Month, e.Reason)
		}
	}

	return sb.String()
}

// formatDuration formats a duration at second granularity for the report.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}
