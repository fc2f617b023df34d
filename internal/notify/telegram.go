package notify

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"

	"signin_engine/internal/config"
)

type TelegramNotifier struct {
	bot    *bot.Bot
	chatID int64
}

// NewTelegramNotifier 不会在创建时访问网络（跳过 getMe）。
func NewTelegramNotifier(cfg config.TelegramConfig) (*TelegramNotifier, error) {
	opts := []bot.Option{bot.WithSkipGetMe()}
	if strings.TrimSpace(cfg.ServerURL) != "" {
		opts = append(opts, bot.WithServerURL(strings.TrimRight(cfg.ServerURL, "/")))
	}
	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{bot: b, chatID: cfg.ChatID}, nil
}

func (n *TelegramNotifier) Name() string { return "telegram" }

func (n *TelegramNotifier) Send(ctx context.Context, title, body string) error {
	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: n.chatID,
		Text:   title + "\n\n" + body,
	})
	return err
}
