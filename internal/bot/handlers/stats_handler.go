package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStatsHandler returns a handler for the admin /stats command.
func NewStatsHandler(deps *HandlerDeps) bot.HandlerFunc {
	return statsHandler{deps}.Handle
}

type statsHandler struct {
	deps *HandlerDeps
}

func (h statsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "stats")

	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /stats command", "chat_id", chatID, "user_id", update.Message.From.ID)

	totalLeads, err := h.deps.Store.CountLeads(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to count leads", "error", err)
		if _, sendErr := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: h.deps.Config.Messages.GeneralError}); sendErr != nil {
			log.ErrorContext(ctx, "Failed to send error message", "error", sendErr, "chat_id", chatID)
		}
		return
	}

	var messagesParsed, leadsFound int64
	channels, err := h.deps.Store.GetChannels(ctx)
	if err != nil {
		log.WarnContext(ctx, "Failed to fetch channel stats, reporting leads only", "error", err)
	}
	for _, ch := range channels {
		messagesParsed += ch.MessagesParsed
		leadsFound += ch.LeadsFound
	}

	status := h.deps.Engine.Status()

	var sb strings.Builder
	sb.WriteString("📈 <b>Общая статистика</b>\n\n")
	fmt.Fprintf(&sb, "🎯 Лидов в базе: %d\n", totalLeads)
	fmt.Fprintf(&sb, "🎯 Лидов за сессию: %d\n", status.LeadsEmitted)
	fmt.Fprintf(&sb, "📺 Каналов: %d\n", len(channels))
	fmt.Fprintf(&sb, "📨 Сообщений обработано: %d\n", messagesParsed)
	fmt.Fprintf(&sb, "🔥 Лидов по каналам: %d", leadsFound)

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      sb.String(),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send stats message", "error", err, "chat_id", chatID)
	}
}
