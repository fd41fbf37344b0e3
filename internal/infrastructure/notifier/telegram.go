package notifier

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"churnguard/internal/domain/entity"
)

// TelegramBot pushes critical risk alerts to a retention team chat.
type TelegramBot struct {
	bot    *telego.Bot
	chatID int64
	alerts chan entity.Prediction
}

func NewTelegramBot(token string, chatID int64) (*TelegramBot, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return &TelegramBot{
		bot:    bot,
		chatID: chatID,
		alerts: make(chan entity.Prediction, 64),
	}, nil
}

// Alert queues a prediction for delivery. A full queue drops the alert
// instead of blocking the scoring path.
func (b *TelegramBot) Alert(ctx context.Context, prediction entity.Prediction) error {
	select {
	case b.alerts <- prediction:
		return nil
	default:
		logger(ctx).Warn("alert queue full, dropping alert", "prediction_id", prediction.ID)
		return nil
	}
}

// Run delivers queued alerts until the context is cancelled.
func (b *TelegramBot) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case prediction, ok := <-b.alerts:
			if !ok {
				return nil
			}
			if err := b.sendAlert(ctx, prediction); err != nil {
				logger(ctx).Error("failed to send alert", "prediction_id", prediction.ID, "error", err)
			}
		}
	}
}

func (b *TelegramBot) sendAlert(ctx context.Context, prediction entity.Prediction) error {
	text := fmt.Sprintf(
		"🚨 <b>CRITICAL CHURN RISK</b>\n\n"+
			"👤 <b>Client:</b> %s\n"+
			"📈 <b>Probability:</b> %.1f%%\n"+
			"🎯 <b>Tier:</b> %s\n"+
			"📝 <b>Contract:</b> %s, %d months\n"+
			"💳 <b>Monthly:</b> %.2f\n\n"+
			"%s",
		clientLabel(prediction),
		prediction.Assessment.Probability*100,
		prediction.Assessment.Tier.String(),
		prediction.Record.Contract,
		prediction.Record.Tenure,
		prediction.Record.MonthlyCharges,
		prediction.Assessment.Recommendation,
	)

	msg := tu.Message(
		tu.ID(b.chatID),
		text,
	).WithParseMode(telego.ModeHTML)

	if _, err := b.bot.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

// SendText sends a plain text message.
func (b *TelegramBot) SendText(ctx context.Context, text string) error {
	msg := tu.Message(tu.ID(b.chatID), text)

	_, err := b.bot.SendMessage(ctx, msg)
	return err
}

func clientLabel(prediction entity.Prediction) string {
	if prediction.ClientID != "" {
		return prediction.ClientID
	}
	return prediction.ID
}
