package converter

import (
	"github.com/stylefeed/go-backend/internal/domain"
	"github.com/stylefeed/go-backend/internal/usecase"
)

// SavedItemConverter преобразует сущности SavedItem между domain и моделью PostgreSQL.
type SavedItemConverter interface {
	ToEntity(model *SavedItemModel) *domain.SavedItem
	ToArrEntity(models []*SavedItemModel) []domain.SavedItem
}

// RecommendationConverter преобразует сущности Recommendation между domain и моделью PostgreSQL.
type RecommendationConverter interface {
	ToModel(entity *domain.Recommendation) *RecommendationModel
	ToEntity(model *RecommendationModel) *domain.Recommendation
	ToArrEntity(models []*RecommendationModel) []domain.Recommendation
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter interface {
	ToModel(entity *usecase.OutboxEvent) *OutboxEventModel
	ToEntity(model *OutboxEventModel) *usecase.OutboxEvent
	ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent
}

type SavedItemConverterImpl struct{}

func NewSavedItemConverterImpl() *SavedItemConverterImpl {
	return &SavedItemConverterImpl{}
}

func (c *SavedItemConverterImpl) ToEntity(model *SavedItemModel) *domain.SavedItem {
	return &domain.SavedItem{
		ID:          model.ID,
		UserID:      model.UserID,
		URL:         model.URL,
		Title:       deref(model.Title),
		Brand:       deref(model.Brand),
		Price:       deref(model.Price),
		Description: deref(model.Description),
		ImageURL:    deref(model.ImageURL),
		Embedding:   model.Embedding,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func (c *SavedItemConverterImpl) ToArrEntity(models []*SavedItemModel) []domain.SavedItem {
	result := make([]domain.SavedItem, 0, len(models))
	for _, model := range models {
		result = append(result, *c.ToEntity(model))
	}
	return result
}

type RecommendationConverterImpl struct{}

func NewRecommendationConverterImpl() *RecommendationConverterImpl {
	return &RecommendationConverterImpl{}
}

func (c *RecommendationConverterImpl) ToModel(entity *domain.Recommendation) *RecommendationModel {
	return &RecommendationModel{
		ID:              entity.ID,
		UserID:          entity.UserID,
		URL:             entity.URL,
		Title:           entity.Title,
		Brand:           entity.Brand,
		Price:           entity.Price,
		ImageURL:        entity.ImageURL,
		Reason:          entity.Reason,
		SimilarityScore: entity.SimilarityScore,
		Feedback:        entity.Feedback,
		IsSaved:         entity.IsSaved,
		CreatedAt:       entity.CreatedAt,
	}
}

func (c *RecommendationConverterImpl) ToEntity(model *RecommendationModel) *domain.Recommendation {
	return &domain.Recommendation{
		ID:              model.ID,
		UserID:          model.UserID,
		URL:             model.URL,
		Title:           model.Title,
		Brand:           model.Brand,
		Price:           model.Price,
		ImageURL:        model.ImageURL,
		Reason:          model.Reason,
		SimilarityScore: model.SimilarityScore,
		Feedback:        model.Feedback,
		IsSaved:         model.IsSaved,
		CreatedAt:       model.CreatedAt,
	}
}

func (c *RecommendationConverterImpl) ToArrEntity(models []*RecommendationModel) []domain.Recommendation {
	result := make([]domain.Recommendation, 0, len(models))
	for _, model := range models {
		result = append(result, *c.ToEntity(model))
	}
	return result
}

type OutboxEventConverterImpl struct{}

func NewOutboxEventConverterImpl() *OutboxEventConverterImpl {
	return &OutboxEventConverterImpl{}
}

func (c *OutboxEventConverterImpl) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		UserID:      entity.UserID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (c *OutboxEventConverterImpl) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		UserID:      model.UserID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c *OutboxEventConverterImpl) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	result := make([]*usecase.OutboxEvent, 0, len(models))
	for _, model := range models {
		result = append(result, c.ToEntity(model))
	}
	return result
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
