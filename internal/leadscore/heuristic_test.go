package leadscore

import (
	"strings"
	"testing"
)

func TestHeuristicScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		minScore int
		maxScore int
	}{
		{
			name:     "crm price question scores high",
			text:     "сколько стоит ваша CRM?",
			minScore: 85,
			maxScore: 100,
		},
		{
			name:     "plain greeting scores zero",
			text:     "привет",
			minScore: 0,
			maxScore: 0,
		},
		{
			name:     "empty text scores zero",
			text:     "",
			minScore: 0,
			maxScore: 0,
		},
		{
			name:     "irrelevant job posting penalized",
			text:     "вакансия",
			minScore: 0,
			maxScore: 0,
		},
		{
			name:     "bot development request",
			text:     "нужен телеграм бот для обработки заявок, кто делает?",
			minScore: 60,
			maxScore: 100,
		},
		{
			name:     "competitor migration",
			text:     "не устраивает текущая система, ищу альтернативу amocrm",
			minScore: 50,
			maxScore: 100,
		},
		{
			name:     "symbol only text",
			text:     "!!! ??? $$$",
			minScore: 0,
			maxScore: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := HeuristicScore(tt.text)
			if got < tt.minScore || got > tt.maxScore {
				t.Errorf("HeuristicScore(%q) = %d, want in [%d,%d]", tt.text, got, tt.minScore, tt.maxScore)
			}
		})
	}
}

func TestHeuristicScoreDeterministic(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"сколько стоит ваша CRM?",
		"привет",
		"нужна интеграция с bitrix24 и telegram api",
		strings.Repeat("автоматизация продаж ", 20),
	}

	for _, input := range inputs {
		first := HeuristicScore(input)
		for range 5 {
			if got := HeuristicScore(input); got != first {
				t.Fatalf("HeuristicScore(%q) not deterministic: got %d then %d", input, first, got)
			}
		}
	}
}

func TestHeuristicScoreAlwaysClamped(t *testing.T) {
	t.Parallel()

	// Stack every positive category plus length bonuses; the sum of raw
	// weights exceeds 100 and must be clamped.
	loaded := "ищу crm систему, нужен telegram bot, теряем клиентов, " +
		"нужна api интеграция с amocrm, посоветуйте кто делает? " +
		strings.Repeat("автоматизация ", 12)

	if got := HeuristicScore(loaded); got != 100 {
		t.Errorf("HeuristicScore(loaded) = %d, want 100", got)
	}

	// Stack penalties; the result must clamp at zero, never go negative.
	if got := HeuristicScore("спам +"); got != 0 {
		t.Errorf("HeuristicScore(penalized) = %d, want 0", got)
	}
}

func TestCategoryScoreCountsOnce(t *testing.T) {
	t.Parallel()

	// Repeating a category phrase must contribute the category weight a
	// single time. Both texts stay in the same length band so the scores
	// must be identical.
	single := HeuristicScore("лидогенерация для бизнеса сегодня")
	triple := HeuristicScore("лидогенерация лидогенерация лидогенерация сегодня")

	if triple != single {
		t.Errorf("repeated category phrases double-counted: single=%d triple=%d", single, triple)
	}
}
