// Package notify formats lead cards and fans them out to the configured
// admin recipients.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/leadscout/leadscout/internal/database"
)

// Sender is the outbound send primitive; *bot.Bot satisfies it.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Notifier delivers lead notifications to every configured admin. Failures
// are logged per recipient and never retried.
type Notifier struct {
	sender   Sender
	adminIDs []int64
	log      *slog.Logger
}

// New creates a Notifier for the given admin recipient list.
func New(sender Sender, adminIDs []int64, log *slog.Logger) *Notifier {
	return &Notifier{
		sender:   sender,
		adminIDs: adminIDs,
		log:      log.With("component", "notifier"),
	}
}

// NotifyLead sends an HTML lead card to all admins and logs per-recipient
// success and failure counts.
func (n *Notifier) NotifyLead(ctx context.Context, lead *database.Lead) {
	if len(n.adminIDs) == 0 {
		n.log.WarnContext(ctx, "No admins configured for lead notifications")
		return
	}

	text := FormatLeadCard(lead)

	sent, failed := 0, 0
	for _, adminID := range n.adminIDs {
		_, err := n.sender.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    adminID,
			Text:      text,
			ParseMode: models.ParseModeHTML,
		})
		if err != nil {
			failed++
			n.log.ErrorContext(ctx, "Failed to notify admin about lead",
				"admin_id", adminID, "telegram_id", lead.TelegramID, "error", err)
			continue
		}
		sent++
	}

	n.log.InfoContext(ctx, "Lead notification fan-out complete",
		"telegram_id", lead.TelegramID, "sent", sent, "failed", failed)
}

// FormatLeadCard renders the HTML notification card for a lead.
func FormatLeadCard(lead *database.Lead) string {
	emoji, tier := priorityTier(lead.LeadQuality, lead.InterestScore)

	username := "без username"
	if lead.Username != "" {
		username = "@" + escapeHTML(lead.Username)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s <b>%s</b>\n\n", emoji, tier)
	fmt.Fprintf(&sb, "👤 <b>Контакт:</b> %s (%s)\n", escapeHTML(lead.FirstName), username)
	fmt.Fprintf(&sb, "🆔 <b>ID:</b> <code>%d</code>\n", lead.TelegramID)
	fmt.Fprintf(&sb, "🎯 <b>Уверенность:</b> %d%%\n", lead.InterestScore)
	fmt.Fprintf(&sb, "📊 <b>Качество:</b> %s\n", strings.ToUpper(lead.LeadQuality))
	fmt.Fprintf(&sb, "📺 <b>Источник:</b> %s\n", escapeHTML(lead.SourceChannel))

	fmt.Fprintf(&sb, "\n🎪 <b>Интересы:</b> %s\n", joinOr(decodeList(lead.Interests), ", ", "не определены"))
	fmt.Fprintf(&sb, "\n🚩 <b>Болевые точки:</b>\n• %s\n", joinOr(decodeList(lead.PainPoints), "\n• ", "не выявлены"))
	fmt.Fprintf(&sb, "\n💰 <b>Покупательские сигналы:</b>\n• %s\n", joinOr(decodeList(lead.BuyingSignals), "\n• ", "не обнаружены"))

	fmt.Fprintf(&sb, "\n⚡ <b>Срочность:</b> %s\n", lead.UrgencyLevel)
	fmt.Fprintf(&sb, "💡 <b>Рекомендация:</b> %s\n", orDefault(lead.RecommendedAction, "связаться и уточнить потребность"))
	fmt.Fprintf(&sb, "💵 <b>Бюджет:</b> %s\n", orDefault(lead.EstimatedBudget.String, "не указан"))
	fmt.Fprintf(&sb, "📅 <b>Временные рамки:</b> %s\n", orDefault(lead.Timeline.String, "не указаны"))
	fmt.Fprintf(&sb, "🎭 <b>Стадия решения:</b> %s\n", lead.DecisionStage)

	fmt.Fprintf(&sb, "\n🔗 <b>Связаться:</b> <a href=\"tg://user?id=%d\">Открыть диалог</a>", lead.TelegramID)

	return sb.String()
}

func priorityTier(quality string, score int) (string, string) {
	switch quality {
	case "hot":
		return "🔥🔥🔥", "ГОРЯЧИЙ ЛИД"
	case "warm":
		return "🔥🔥", "ТЕПЛЫЙ ЛИД"
	case "cold":
		return "🔥", "ХОЛОДНЫЙ ЛИД"
	}
	// Heuristic-path leads carry quality "not_lead"; grade them by score.
	switch {
	case score >= 90:
		return "🔥🔥🔥", "СУПЕР ГОРЯЧИЙ ЛИД"
	case score >= 80:
		return "🔥🔥", "ОЧЕНЬ ГОРЯЧИЙ ЛИД"
	case score >= 70:
		return "🔥", "ГОРЯЧИЙ ЛИД"
	default:
		return "⭐", "ПОТЕНЦИАЛЬНЫЙ ЛИД"
	}
}

func decodeList(encoded string) []string {
	var items []string
	if err := json.Unmarshal([]byte(encoded), &items); err != nil {
		return nil
	}
	return items
}

func joinOr(items []string, sep, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	escaped := make([]string, len(items))
	for i, item := range items {
		escaped[i] = escapeHTML(item)
	}
	return strings.Join(escaped, sep)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return escapeHTML(s)
}

func escapeHTML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
