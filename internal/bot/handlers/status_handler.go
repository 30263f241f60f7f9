package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStatusHandler returns a handler for the admin /status command.
func NewStatusHandler(deps *HandlerDeps) bot.HandlerFunc {
	return statusHandler{deps}.Handle
}

type statusHandler struct {
	deps *HandlerDeps
}

func (h statusHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "status")

	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /status command", "chat_id", chatID, "user_id", update.Message.From.ID)

	status := h.deps.Engine.Status()

	enabled := "выключен"
	if status.Enabled {
		enabled = "включен"
	}

	channels := "не настроены"
	if len(status.Channels) > 0 {
		channels = strings.Join(status.Channels, ", ")
	}

	var sb strings.Builder
	sb.WriteString("🤖 <b>Состояние движка</b>\n\n")
	fmt.Fprintf(&sb, "⚙️ Мониторинг: %s\n", enabled)
	fmt.Fprintf(&sb, "📺 Каналы: %s\n", channels)
	fmt.Fprintf(&sb, "🎯 Порог уверенности: %d\n", status.MinConfidenceScore)
	fmt.Fprintf(&sb, "📊 Порог интереса: %d\n", status.MinInterestScore)
	fmt.Fprintf(&sb, "🕐 Окно контекста: %dч\n\n", status.ContextWindowHours)
	fmt.Fprintf(&sb, "👥 Активных контекстов: %d\n", status.ActiveContexts)
	fmt.Fprintf(&sb, "🧠 Кэш анализов: %d\n", status.AnalysisCacheSize)
	fmt.Fprintf(&sb, "📨 Обработано сообщений: %d\n", status.SeenMessages)
	fmt.Fprintf(&sb, "⏳ На паузе (cooldown): %d\n", status.UsersOnCooldown)
	fmt.Fprintf(&sb, "🎯 Найдено лидов: %d", status.LeadsEmitted)

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      sb.String(),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send status message", "error", err, "chat_id", chatID)
	}
}
