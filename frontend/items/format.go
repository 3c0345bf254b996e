package items

import (
	"strings"
	"time"
)

// FormatPrice groups the cleaned price in threes from the right with
// spaces. Grouping counts characters, so a decimal point takes a slot.
// When nothing survives cleaning the input is returned unchanged.
func FormatPrice(raw string) string {
	if raw == "" {
		return ""
	}
	clean := CleanPrice(raw)
	if clean == "" {
		return raw
	}
	var b strings.Builder
	b.Grow(len(clean) + len(clean)/3)
	for i := 0; i < len(clean); i++ {
		if i > 0 && (len(clean)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(clean[i])
	}
	return b.String()
}

var categoryLabels = map[string]string{
	CategoryBuyConsumables:  "💰 Скупка (расходники)",
	CategoryBuyEquipment:    "💰 Скупка (экипировка)",
	CategorySellConsumables: "💸 Продажа (расходники)",
	CategorySellEquipment:   "💸 Продажа (экипировка)",
	CategoryUnknown:         "❓ Неизвестно",
}

// FormatCategory maps a category code to its label. Unknown codes pass
// through.
func FormatCategory(code string) string {
	if label, ok := categoryLabels[code]; ok {
		return label
	}
	return code
}

// InvalidDate is returned by FormatDateTime for input it cannot parse.
const InvalidDate = "Invalid Date"

// DisplayOffset is added to stored timestamps before display.
const DisplayOffset = 8 * time.Hour

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02",
}

// FormatDateTime renders value shifted by DisplayOffset as
// DD.MM.YYYY HH:MM:SS.
func FormatDateTime(value string) string {
	value = strings.TrimSpace(value)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return FormatTime(t)
		}
	}
	return InvalidDate
}

// FormatTime is FormatDateTime for an already parsed time.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return InvalidDate
	}
	return t.UTC().Add(DisplayOffset).Format("02.01.2006 15:04:05")
}

var statusLabels = map[string]string{
	"start":              "🟢 Запуск",
	"running":            "🟢 Работает",
	"main":               "🟢 Запуск приложения",
	"ready":              "🟢 Готов к работе",
	"cycle_all_items":    "🟢 Обход всех предметов",
	"cycle_listed_items": "🟢 Обход списка предметов",
	"restart":            "🟡 Перезапуск",
	"paused":             "🟡 Приостановлено",
	"stop":               "🔴 Остановлен",
	"stopped":            "🔴 Остановлен",
	"error":              "❌ Ошибка",
	"unknown":            "❓ Неизвестно",
}

// FormatStatus maps a bot status to the badge label.
func FormatStatus(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return "🟢 " + status
}
