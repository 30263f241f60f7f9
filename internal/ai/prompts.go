package ai

import (
	"fmt"
	"strings"
)

const analysisPromptTemplate = `Ты - эксперт по анализу потенциальных клиентов в сфере IT-услуг, CRM систем, автоматизации бизнеса и разработки Telegram ботов.

КОНТЕКСТ ПОЛЬЗОВАТЕЛЯ:
- Имя: %s (@%s)
- Канал: %s (%s)
- Количество сообщений: %d
- Период активности: %.1f часов

СООБЩЕНИЯ ПОЛЬЗОВАТЕЛЯ:
%s

ЗАДАЧА:
Проанализируй контекст и определи, является ли этот пользователь потенциальным клиентом для услуг:
- CRM систем и автоматизации бизнеса
- Разработки Telegram ботов
- IT-консалтинга и внедрения
- Интеграций и API разработки

ВЕРНИ РЕЗУЛЬТАТ СТРОГО В JSON ФОРМАТЕ:
{
    "is_lead": boolean,
    "confidence_score": number (0-100),
    "lead_quality": "hot|warm|cold|not_lead",
    "interests": ["список интересов"],
    "buying_signals": ["сигналы покупательского намерения"],
    "urgency_level": "immediate|short_term|long_term|none",
    "recommended_action": "рекомендуемое действие",
    "key_insights": ["ключевые инсайты"],
    "estimated_budget": "примерный бюджет или null",
    "timeline": "временные рамки или null",
    "pain_points": ["проблемы клиента"],
    "decision_stage": "awareness|consideration|decision|post_purchase"
}

КРИТЕРИИ ОЦЕНКИ:
- is_lead: true если есть явные признаки интереса к нашим услугам
- confidence_score: 90-100 = очевидный клиент, 70-89 = вероятный, 50-69 = возможный, <50 = маловероятный
- lead_quality: hot = готов покупать, warm = изучает рынок, cold = только начинает поиск
- urgency_level: насколько срочно нужно решение
- buying_signals: что указывает на готовность покупать
- pain_points: какие проблемы у клиента

ВАЖНО:
- Анализируй ВЕСЬ контекст, не отдельные сообщения
- Ищи скрытые потребности и подтекст
- Обращай внимание на бизнес-контекст
- Высокий confidence_score только при явных сигналах
- Будь объективным, не завышай оценки`

// buildAnalysisPrompt renders the classification prompt for a user context.
func buildAnalysisPrompt(uc *UserContext) string {
	var sb strings.Builder
	for _, m := range uc.Messages {
		sb.WriteString(fmt.Sprintf("[%s] %s\n", m.Date.Format("2006-01-02 15:04:05"), m.Text))
	}

	return fmt.Sprintf(analysisPromptTemplate,
		uc.FirstName,
		uc.Username,
		uc.ChannelTitle,
		uc.ChannelType,
		len(uc.Messages),
		uc.ActivitySpanHours(),
		strings.TrimRight(sb.String(), "\n"),
	)
}
