package config

type Notifier struct {
	// Alerts are disabled when the token is empty.
	TelegramToken  string `env:"NOTIFIER_TELEGRAM_TOKEN" json:"-"`
	TelegramChatID int64  `env:"NOTIFIER_TELEGRAM_CHAT_ID"`
}

func (n Notifier) Enabled() bool {
	return n.TelegramToken != "" && n.TelegramChatID != 0
}
