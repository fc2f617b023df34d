package notify

import (
	"strings"

	"signin_engine/internal/config"
	"signin_engine/internal/logbus"
)

// FromConfig 按配置创建所有可用的渠道，创建失败的渠道记录日志后跳过。
func FromConfig(cfg config.NotifyConfig, bus *logbus.Bus) []Notifier {
	var out []Notifier
	if strings.TrimSpace(cfg.Email.Email) != "" && strings.TrimSpace(cfg.Email.AuthCode) != "" {
		out = append(out, NewEmailNotifier(cfg.Email))
	}
	if strings.TrimSpace(cfg.PushPlus.Token) != "" {
		out = append(out, NewPushPlusNotifier(cfg.PushPlus))
	}
	if strings.TrimSpace(cfg.Telegram.BotToken) != "" {
		tg, err := NewTelegramNotifier(cfg.Telegram)
		if err != nil {
			bus.Log("warn", "Telegram 通知初始化失败", map[string]any{"error": err.Error()})
		} else {
			out = append(out, tg)
		}
	}
	if strings.TrimSpace(cfg.CQHTTP.WSURL) != "" {
		out = append(out, NewCQHTTPNotifier(cfg.CQHTTP))
	}
	return out
}
