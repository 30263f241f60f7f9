package leadscore

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Weighted keyword categories. Each category contributes its weight at most
// once per message, on the first matching phrase.
var (
	crmWords = []string{
		"crm", "црм", "customer relationship", "клиентская база",
		"управление клиентами", "автоматизация продаж", "система продаж",
		"продажная воронка", "sales funnel", "лидогенерация", "lead generation",
	}

	botWords = []string{
		"telegram bot", "телеграм бот", "чат бот", "chatbot", "бот для продаж",
		"автоответчик", "автоматические ответы", "обработка заявок",
		"прием заявок", "telegram api", "webhook",
	}

	businessProblemWords = []string{
		"не успеваем обрабатывать", "много заявок", "теряем клиентов",
		"нужна система", "ищу решение", "как автоматизировать",
		"эффективность продаж", "увеличить конверсию", "больше продаж",
		"автоматический ответ", "обработка сообщений", "учет клиентов",
	}

	buyingIntentWords = []string{
		"ищу", "нужно", "требуется", "хочу заказать", "планирую купить",
		"рассматриваю покупку", "интересует стоимость", "сколько стоит",
		"стоимость", "how much", "бюджет есть", "готов платить",
		"нужна консультация", "где заказать", "кто делает",
		"готов купить", "готов заказать",
	}

	techRequestWords = []string{
		"api интеграция", "интеграция с", "подключить к", "разработка под заказ",
		"кастомная разработка", "индивидуальное решение", "техническое задание",
		"настройка системы", "внедрение crm",
	}

	competitorWords = []string{
		"bitrix24", "amocrm", "megaplan", "pipedrive", "salesforce",
		"не устраивает текущая система", "ищу альтернативу", "смена crm",
	}

	questionWords = []string{
		"как", "что", "где", "кто может", "кто делает", "посоветуйте", "?",
	}

	irrelevantWords = []string{
		"продаю", "куплю авто", "недвижимость", "знакомства", "работа",
		"вакансия", "резюме", "спам", "реклама", "+", "цена за",
	}
)

// HeuristicScore rates message text as a potential sales lead without any
// external service. It is deterministic and total: the same text always
// yields the same score, always within [0,100].
func HeuristicScore(text string) int {
	if text == "" {
		return 0
	}

	lower := strings.ToLower(text)
	score := 0

	score += categoryScore(lower, crmWords, 50)
	score += categoryScore(lower, botWords, 45)
	score += categoryScore(lower, businessProblemWords, 40)
	score += categoryScore(lower, buyingIntentWords, 35)
	score += categoryScore(lower, techRequestWords, 30)
	score += categoryScore(lower, competitorWords, 25)

	// Questions signal someone looking for help rather than broadcasting.
	score += categoryScore(lower, questionWords, 15)

	length := utf8.RuneCountInString(text)
	if length > 50 {
		score += 10
	}
	if length > 150 {
		score += 5
	}

	score -= categoryScore(lower, irrelevantWords, 30)

	if length < 20 {
		score -= 15
	}
	if meaningfulRunes(text) < 10 {
		// Mostly emoji or punctuation.
		score -= 20
	}

	return clampScore(score)
}

// categoryScore returns weight if any phrase in the category occurs in the
// text, counting the category once no matter how many phrases match.
func categoryScore(lower string, phrases []string, weight int) int {
	for _, phrase := range phrases {
		if strings.Contains(lower, phrase) {
			return weight
		}
	}
	return 0
}

// meaningfulRunes counts letters, digits, underscores, and spaces.
func meaningfulRunes(text string) int {
	count := 0
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			count++
		}
	}
	return count
}
