package usecase

import (
	"strings"

	"github.com/stylefeed/go-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// profileMaxItems ограничивает число записей в текстовом профиле,
// чтобы не раздувать промпт и вход эмбеддинга.
const profileMaxItems = 8

// BuildStyleProfile строит текстовый профиль стиля из сохранённых записей пользователя.
// Вызывающий обязан проверить непустоту списка: пустой список — это early-return
// уровня оркестратора, а не ошибка.
func BuildStyleProfile(items []domain.SavedItem) *domain.StyleProfile {
	if len(items) > profileMaxItems {
		items = items[:profileMaxItems]
	}

	parts := make([]string, 0, len(items))
	for i := range items {
		if part := renderItem(&items[i]); part != "" {
			parts = append(parts, part)
		}
	}

	return domain.NewStyleProfile(strings.Join(parts, "; "))
}

// renderItem рендерит запись в форме "brand title price", опуская пустые сегменты.
func renderItem(item *domain.SavedItem) string {
	segments := make([]string, 0, 3)

	if brand := strings.TrimSpace(item.Brand); brand != "" {
		segments = append(segments, brand)
	}
	if title := strings.TrimSpace(item.Title); title != "" {
		segments = append(segments, title)
	}
	if price := renderPrice(item.Price); price != "" {
		segments = append(segments, price)
	}

	return strings.Join(segments, " ")
}

// renderPrice нормализует цену через decimal; нечисловые значения опускаются.
func renderPrice(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	d, err := decimal.NewFromString(SanitizePrice(raw))
	if err != nil || d.IsZero() {
		return ""
	}

	return d.String()
}
