package notifier

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dyike/GammaPulse/internal/config"
	"github.com/dyike/GammaPulse/internal/models"
)

const telegramBaseURL = "https://api.telegram.org"

// TelegramNotifier posts the analysis message to a chat via the Bot
// API. Delivery is best-effort: every failure comes back as an outcome
// value, never as an error, so a broken chat can't sink a good run.
type TelegramNotifier struct {
	client   *resty.Client
	botToken string
	chatID   string
}

// NewTelegramNotifier creates a new Telegram notifier
func NewTelegramNotifier(cfg *config.Config) *TelegramNotifier {
	client := resty.New()
	client.SetBaseURL(telegramBaseURL)
	client.SetTimeout(cfg.NotifyTimeout)

	return &TelegramNotifier{
		client:   client,
		botToken: cfg.TelegramBotToken,
		chatID:   cfg.TelegramChatID,
	}
}

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Notify formats and posts the run's result to the configured chat.
// The chat ID must parse as an integer; group chats use negative IDs.
func (tn *TelegramNotifier) Notify(ctx context.Context, level models.ZeroGammaLevel, history models.PriceHistory, analysis models.AnalysisResult) models.NotificationOutcome {
	failed := func(detail string) models.NotificationOutcome {
		return models.NotificationOutcome{Delivered: false, Detail: detail}
	}

	chatID, err := strconv.ParseInt(tn.chatID, 10, 64)
	if err != nil {
		return failed(fmt.Sprintf("invalid chat ID format: %s", tn.chatID))
	}

	message := FormatAnalysisMessage(level, history, analysis, time.Now())

	resp, err := tn.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(sendMessageRequest{
			ChatID:    chatID,
			Text:      message,
			ParseMode: "HTML",
		}).
		Post(fmt.Sprintf("/bot%s/sendMessage", tn.botToken))
	if err != nil {
		return failed(fmt.Sprintf("send message: %v", err))
	}
	if resp.StatusCode() != 200 {
		return failed(fmt.Sprintf("telegram API error: status %d, body: %s", resp.StatusCode(), resp.String()))
	}

	return models.NotificationOutcome{Delivered: true}
}
