package notify

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/leadscout/leadscout/internal/database"
)

type fakeSender struct {
	params  []*bot.SendMessageParams
	failFor map[any]bool
}

func (s *fakeSender) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	s.params = append(s.params, params)
	if s.failFor[params.ChatID] {
		return nil, errors.New("blocked by recipient")
	}
	return &models.Message{}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testLead() *database.Lead {
	return &database.Lead{
		TelegramID:        12345,
		Username:          "buyer",
		FirstName:         "Олег",
		SourceChannel:     "@saleschat",
		InterestScore:     88,
		MessageText:       "нужна crm",
		LeadQuality:       "hot",
		Interests:         `["crm","автоматизация"]`,
		BuyingSignals:     `["спросил цену"]`,
		PainPoints:        `["теряем клиентов"]`,
		UrgencyLevel:      "immediate",
		RecommendedAction: "позвонить сегодня",
		EstimatedBudget:   sql.NullString{String: "50000", Valid: true},
		Timeline:          sql.NullString{String: "этот месяц", Valid: true},
		DecisionStage:     "decision",
	}
}

func TestNotifyLeadFanOut(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	n := New(sender, []int64{1, 2, 3}, testLogger())

	n.NotifyLead(context.Background(), testLead())

	if len(sender.params) != 3 {
		t.Fatalf("sends = %d, want 3", len(sender.params))
	}
	for i, p := range sender.params {
		if p.ParseMode != models.ParseModeHTML {
			t.Errorf("send %d ParseMode = %q, want HTML", i, p.ParseMode)
		}
		if p.Text == "" {
			t.Errorf("send %d has empty text", i)
		}
	}
}

func TestNotifyLeadContinuesPastFailure(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{failFor: map[any]bool{int64(2): true}}
	n := New(sender, []int64{1, 2, 3}, testLogger())

	n.NotifyLead(context.Background(), testLead())

	// All recipients are attempted even when one fails mid-list.
	if len(sender.params) != 3 {
		t.Errorf("sends attempted = %d, want 3", len(sender.params))
	}
}

func TestNotifyLeadNoAdmins(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	n := New(sender, nil, testLogger())

	n.NotifyLead(context.Background(), testLead())

	if len(sender.params) != 0 {
		t.Errorf("sends = %d with no admins, want 0", len(sender.params))
	}
}

func TestFormatLeadCard(t *testing.T) {
	t.Parallel()

	card := FormatLeadCard(testLead())

	for _, want := range []string{
		"ГОРЯЧИЙ ЛИД",
		"@buyer",
		"Олег",
		"<code>12345</code>",
		"88%",
		"HOT",
		"@saleschat",
		"crm, автоматизация",
		"• теряем клиентов",
		"• спросил цену",
		"позвонить сегодня",
		"50000",
		"этот месяц",
		`tg://user?id=12345`,
	} {
		if !strings.Contains(card, want) {
			t.Errorf("card missing %q:\n%s", want, card)
		}
	}
}

func TestFormatLeadCardFallbacks(t *testing.T) {
	t.Parallel()

	lead := &database.Lead{
		TelegramID:    777,
		FirstName:     "Аноним",
		SourceChannel: "-100500",
		InterestScore: 65,
		LeadQuality:   "not_lead",
		Interests:     "[]",
		BuyingSignals: "[]",
		PainPoints:    "[]",
		UrgencyLevel:  "none",
		DecisionStage: "awareness",
	}

	card := FormatLeadCard(lead)

	for _, want := range []string{
		"без username",
		"не определены",
		"не выявлены",
		"не обнаружены",
		"связаться и уточнить потребность",
		"не указан",
		"не указаны",
	} {
		if !strings.Contains(card, want) {
			t.Errorf("card missing fallback %q:\n%s", want, card)
		}
	}
}

func TestFormatLeadCardEscapesHTML(t *testing.T) {
	t.Parallel()

	lead := testLead()
	lead.FirstName = "<script>"
	lead.Interests = `["<b>bold</b>"]`

	card := FormatLeadCard(lead)

	if strings.Contains(card, "<script>") {
		t.Error("first name not escaped")
	}
	if !strings.Contains(card, "&lt;script&gt;") {
		t.Error("escaped first name missing")
	}
	if strings.Contains(card, "<b>bold</b>") {
		t.Error("interest list not escaped")
	}
}

func TestPriorityTier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		quality string
		score   int
		want    string
	}{
		{"hot quality", "hot", 0, "ГОРЯЧИЙ ЛИД"},
		{"warm quality", "warm", 0, "ТЕПЛЫЙ ЛИД"},
		{"cold quality", "cold", 0, "ХОЛОДНЫЙ ЛИД"},
		{"score band 90", "not_lead", 95, "СУПЕР ГОРЯЧИЙ ЛИД"},
		{"score band 80", "not_lead", 85, "ОЧЕНЬ ГОРЯЧИЙ ЛИД"},
		{"score band 70", "not_lead", 75, "ГОРЯЧИЙ ЛИД"},
		{"score below bands", "not_lead", 65, "ПОТЕНЦИАЛЬНЫЙ ЛИД"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, got := priorityTier(tt.quality, tt.score); got != tt.want {
				t.Errorf("priorityTier(%q, %d) = %q, want %q", tt.quality, tt.score, got, tt.want)
			}
		})
	}
}
