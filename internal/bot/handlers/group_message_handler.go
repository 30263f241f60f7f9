package handlers

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/leadscout/leadscout/internal/engine"
)

// NewGroupMessageHandler returns the default handler that feeds every
// non-command text message into the lead-scoring engine. The engine itself
// decides whether the chat is monitored; this handler only translates the
// update.
func NewGroupMessageHandler(deps *HandlerDeps) bot.HandlerFunc {
	return groupMessageHandler{deps}.Handle
}

type groupMessageHandler struct {
	deps *HandlerDeps
}

func (h groupMessageHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "group_message")

	msg := update.Message
	if msg == nil {
		msg = update.ChannelPost
	}
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}
	if h.deps.Engine == nil {
		log.WarnContext(ctx, "Engine not wired, dropping message", "chat_id", msg.Chat.ID)
		return
	}

	h.deps.Engine.ProcessMessage(ctx, engine.Message{
		ChatID:       msg.Chat.ID,
		MessageID:    msg.ID,
		UserID:       msg.From.ID,
		Username:     msg.From.Username,
		FirstName:    msg.From.FirstName,
		LastName:     msg.From.LastName,
		Text:         msg.Text,
		Timestamp:    time.Unix(int64(msg.Date), 0),
		ChatKind:     string(msg.Chat.Type),
		ChatTitle:    msg.Chat.Title,
		ChatUsername: msg.Chat.Username,
	})
}
