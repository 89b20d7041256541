package usecase

import (
	"context"

	"github.com/stylefeed/go-backend/internal/domain"
)

type SavedItemRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.SavedItem, error)
	GetByID(ctx context.Context, id string) (*domain.SavedItem, error)
	// ListEmbeddedExcluding возвращает чужие записи с непустым embedding —
	// корпус кандидатов для векторного ранжирования.
	ListEmbeddedExcluding(ctx context.Context, userID string, limit int) ([]domain.SavedItem, error)
	UpdateEmbedding(ctx context.Context, id string, vector []float32) error
}

type RecommendationRepository interface {
	CreateBatch(ctx context.Context, recs []domain.Recommendation) error
	ListByUser(ctx context.Context, userID string) ([]domain.Recommendation, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
}

type CacheRepository interface {
	GetRecommendations(ctx context.Context, userID string) ([]RecommendationInfo, error)
	SetRecommendations(ctx context.Context, userID string, recs []RecommendationInfo) error
	DeleteRecommendations(ctx context.Context, userID string) error
}

// VectorIndexRepository — зеркало векторов в Qdrant.
type VectorIndexRepository interface {
	Upsert(ctx context.Context, vectors []domain.Embedding) error
}
