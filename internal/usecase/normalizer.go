package usecase

import (
	"fmt"
	"math"
	"strings"

	"github.com/stylefeed/go-backend/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	// maxRecommendations ограничивает размер ответа пайплайна.
	maxRecommendations = 8

	defaultTitle  = "Unknown Product"
	defaultBrand  = "Unknown Brand"
	defaultPrice  = "0"
	genericReason = "Matches your style profile"
)

// placeholderMarkers — подстроки, по которым отбраковываются фейковые превью.
var placeholderMarkers = []string{
	"example.com",
	"via.placeholder",
	"1234567890",
}

// NormalizeCandidates приводит разнородных кандидатов к канонической форме рекомендации.
// Детерминированная чистая функция: маппинг полей с приоритетами, дефолты,
// санитизация цены, отбраковка битых превью и записей без URL, срез до 8 штук.
// savedBrands — бренды из сохранённых записей пользователя для fallback-текста причины.
func NormalizeCandidates(userID string, candidates []domain.Candidate, savedBrands []string) []domain.Recommendation {
	result := make([]domain.Recommendation, 0, len(candidates))

	for i := range candidates {
		if len(result) == maxRecommendations {
			break
		}

		c := &candidates[i]

		url := pickURL(c)
		title := pickOrDefault(c.Title, defaultTitle)
		if url == "" || title == "" {
			continue
		}

		result = append(result, domain.Recommendation{
			UserID:          userID,
			URL:             url,
			Title:           title,
			Brand:           pickBrand(c),
			Price:           SanitizePrice(c.Price),
			ImageURL:        pickImageURL(c.Thumbnail),
			Reason:          buildReason(c, savedBrands),
			SimilarityScore: c.Score,
		})
	}

	return result
}

// pickURL выбирает ссылку по приоритету url > link > product_link.
func pickURL(c *domain.Candidate) string {
	for _, u := range []string{c.URL, c.Link, c.ProductLink} {
		if u = strings.TrimSpace(u); u != "" {
			return u
		}
	}

	return ""
}

// pickBrand предпочитает поле source полю brand — форма discovery-сервиса.
func pickBrand(c *domain.Candidate) string {
	if source := strings.TrimSpace(c.Source); source != "" {
		return source
	}

	return pickOrDefault(c.Brand, defaultBrand)
}

func pickOrDefault(value, fallback string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}

	return fallback
}

// SanitizePrice оставляет в цене только цифры и точку.
// Невалидный после зачистки остаток схлопывается в "0"; функция идемпотентна.
func SanitizePrice(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}

	stripped := b.String()
	if stripped == "" {
		return defaultPrice
	}

	if _, err := decimal.NewFromString(stripped); err != nil {
		return defaultPrice
	}

	return stripped
}

// pickImageURL пропускает превью только без известных placeholder-маркеров.
func pickImageURL(thumbnail string) *string {
	thumbnail = strings.TrimSpace(thumbnail)
	if thumbnail == "" {
		return nil
	}

	lowered := strings.ToLower(thumbnail)
	for _, marker := range placeholderMarkers {
		if strings.Contains(lowered, marker) {
			return nil
		}
	}

	return &thumbnail
}

// buildReason формирует текст причины в зависимости от происхождения кандидата:
// score от ранкера → "% style match", свой текст источника → как есть,
// иначе — бренды пользователя либо общий fallback.
func buildReason(c *domain.Candidate, savedBrands []string) string {
	if c.Score != nil {
		return fmt.Sprintf("%d%% style match", int(math.Round(*c.Score*100)))
	}

	if reason := strings.TrimSpace(c.Reason); reason != "" {
		return reason
	}

	if len(savedBrands) > 0 {
		top := savedBrands
		if len(top) > 3 {
			top = top[:3]
		}
		return "Based on your interest in " + strings.Join(top, ", ")
	}

	return genericReason
}

// DistinctBrands возвращает уникальные бренды сохранённых записей в порядке появления.
func DistinctBrands(items []domain.SavedItem) []string {
	seen := make(map[string]struct{}, len(items))
	brands := make([]string, 0, len(items))

	for i := range items {
		brand := strings.TrimSpace(items[i].Brand)
		if brand == "" {
			continue
		}
		if _, ok := seen[brand]; ok {
			continue
		}
		seen[brand] = struct{}{}
		brands = append(brands, brand)
	}

	return brands
}
