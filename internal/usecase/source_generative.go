package usecase

import (
	"context"
	"encoding/json"

	"github.com/stylefeed/go-backend/internal/domain"
	"github.com/stylefeed/go-backend/pkg/e"
	"github.com/stylefeed/go-backend/pkg/logger"
)

const stylistSystemPrompt = `You are an expert personal stylist and shopping assistant.
Given a summary of products a user has saved, suggest real products they are likely to want next.
Rules:
- suggest concrete products with realistic brands and prices;
- never repeat products from the summary;
- respond with a single JSON object of the form
  {"recommendations":[{"title":"...","brand":"...","price":"...","link":"...","reason":"..."}]};
- no prose outside the JSON object.`

// generatedPayload — ожидаемая форма ответа модели.
type generatedPayload struct {
	Recommendations []struct {
		Title  string `json:"title"`
		Brand  string `json:"brand"`
		Price  string `json:"price"`
		Link   string `json:"link"`
		URL    string `json:"url"`
		Image  string `json:"image_url"`
		Reason string `json:"reason"`
	} `json:"recommendations"`
}

// GenerativeSource запрашивает у языковой модели структурированный список кандидатов
// по текстовому профилю стиля.
type GenerativeSource struct {
	generative GenerativeInfra
	logger     logger.Logger
}

func NewGenerativeSource(generative GenerativeInfra, logger logger.Logger) *GenerativeSource {
	return &GenerativeSource{
		generative: generative,
		logger:     logger,
	}
}

func (s *GenerativeSource) Name() string {
	return SourceGenerative
}

// Fetch выполняет один structured-generation запрос.
// Синтаксически битый ответ или отсутствие поля recommendations — типизированная
// переходная ошибка, а не тихое проглатывание.
func (s *GenerativeSource) Fetch(ctx context.Context, profile *domain.StyleProfile, items []domain.SavedItem, userID string) ([]domain.Candidate, error) {
	const op = "GenerativeSource.Fetch"

	raw, err := s.generative.Generate(ctx, stylistSystemPrompt, "User's saved products: "+profile.Summary)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	var payload generatedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		s.logger.Warnf("generative output is not valid JSON: %v", err)
		return nil, e.Wrap(op, e.ErrMalformedGeneration)
	}

	if payload.Recommendations == nil {
		s.logger.Warnf("generative output lacks recommendations field")
		return nil, e.Wrap(op, e.ErrMalformedGeneration)
	}

	candidates := make([]domain.Candidate, 0, len(payload.Recommendations))
	for _, rec := range payload.Recommendations {
		candidates = append(candidates, domain.Candidate{
			Title:     rec.Title,
			Brand:     rec.Brand,
			Price:     rec.Price,
			URL:       rec.URL,
			Link:      rec.Link,
			Thumbnail: rec.Image,
			Reason:    rec.Reason,
		})
	}

	return candidates, nil
}
