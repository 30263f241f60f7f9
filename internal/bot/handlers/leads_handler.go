package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const recentLeadsLimit = 10

// NewLeadsHandler returns a handler for the admin /leads command.
func NewLeadsHandler(deps *HandlerDeps) bot.HandlerFunc {
	return leadsHandler{deps}.Handle
}

type leadsHandler struct {
	deps *HandlerDeps
}

func (h leadsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "leads")

	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /leads command", "chat_id", chatID, "user_id", update.Message.From.ID)

	leads, err := h.deps.Store.GetRecentLeads(ctx, recentLeadsLimit)
	if err != nil {
		log.ErrorContext(ctx, "Failed to fetch recent leads", "error", err)
		if _, sendErr := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: h.deps.Config.Messages.GeneralError}); sendErr != nil {
			log.ErrorContext(ctx, "Failed to send error message", "error", sendErr, "chat_id", chatID)
		}
		return
	}

	if len(leads) == 0 {
		_, err = b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Лидов пока нет."})
		if err != nil {
			log.ErrorContext(ctx, "Failed to send empty leads message", "error", err, "chat_id", chatID)
		}
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🎯 <b>Последние лиды (%d)</b>\n", len(leads))
	for _, lead := range leads {
		username := "без username"
		if lead.Username != "" {
			username = "@" + lead.Username
		}
		preview := lead.MessageText
		if len([]rune(preview)) > 80 {
			preview = string([]rune(preview)[:80]) + "..."
		}
		preview = strings.ReplaceAll(preview, "<", "&lt;")

		fmt.Fprintf(&sb, "\n• <b>%s</b> (%s) — %d%%, %s\n", lead.FirstName, username, lead.InterestScore, lead.LeadQuality)
		fmt.Fprintf(&sb, "  📺 %s | 🕐 %s\n", lead.SourceChannel, lead.CreatedAt.Format("02.01 15:04"))
		fmt.Fprintf(&sb, "  💬 <i>%s</i>\n", preview)
	}

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      sb.String(),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send leads message", "error", err, "chat_id", chatID)
	}
}
