package error_notificator

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram-уведомления в админский чат.
type Infra struct {
	bot         *tgbotapi.BotAPI
	adminChatID int64
}

func NewInfra(bot *tgbotapi.BotAPI, adminChatID int64) *Infra {
	return &Infra{bot: bot, adminChatID: adminChatID}
}

func (i *Infra) Notify(ctx context.Context, sessionID string, err error, details string) error {
	if i.bot == nil {
		return fmt.Errorf("telegram bot not configured")
	}

	text := fmt.Sprintf(
		"❗ Ошибка пайплайна (сессия %s)\n\nОшибка: %v\n\nДетали: %s",
		sessionID,
		err,
		details,
	)

	if _, sendErr := i.bot.Send(tgbotapi.NewMessage(i.adminChatID, text)); sendErr != nil {
		return fmt.Errorf("telegram send: %w", sendErr)
	}
	return nil
}
