package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewChannelsHandler returns a handler for the admin /channels command.
func NewChannelsHandler(deps *HandlerDeps) bot.HandlerFunc {
	return channelsHandler{deps}.Handle
}

type channelsHandler struct {
	deps *HandlerDeps
}

func (h channelsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "channels")

	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /channels command", "chat_id", chatID, "user_id", update.Message.From.ID)

	channels, err := h.deps.Store.GetChannels(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to fetch channels", "error", err)
		if _, sendErr := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: h.deps.Config.Messages.GeneralError}); sendErr != nil {
			log.ErrorContext(ctx, "Failed to send error message", "error", sendErr, "chat_id", chatID)
		}
		return
	}

	if len(channels) == 0 {
		_, err = b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Каналы не настроены."})
		if err != nil {
			log.ErrorContext(ctx, "Failed to send empty channels message", "error", err, "chat_id", chatID)
		}
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📺 <b>Отслеживаемые каналы (%d)</b>\n", len(channels))
	for _, ch := range channels {
		state := "⏸"
		if ch.Enabled {
			state = "▶️"
		}
		fmt.Fprintf(&sb, "\n%s <b>%s</b>\n", state, ch.Identifier)
		fmt.Fprintf(&sb, "  📨 Сообщений: %d | 🎯 Лидов: %d\n", ch.MessagesParsed, ch.LeadsFound)
	}

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      sb.String(),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send channels message", "error", err, "chat_id", chatID)
	}
}
