package usecase

import (
	"time"

	"github.com/stylefeed/go-backend/internal/domain"
)

// RECOMMENDATION USECASE

// GenerateRecommendationsReq — запрос на генерацию рекомендаций для пользователя.
type GenerateRecommendationsReq struct {
	UserID string
}

// GenerateRecommendationsRes — ответ пайплайна, всегда содержит массив (возможно пустой).
type GenerateRecommendationsRes struct {
	Recommendations []RecommendationInfo
}

// RecommendationInfo — DTO рекомендации для внешнего использования.
type RecommendationInfo struct {
	URL             string
	Title           string
	Brand           string
	Price           string
	ImageURL        *string
	Reason          string
	SimilarityScore *float64
}

// GenerateEmbeddingReq — запрос на векторизацию одной сохранённой ссылки.
type GenerateEmbeddingReq struct {
	LinkID      string
	Title       string
	Brand       string
	Description string
}

// INFRASTRUCTURE

// DiscoverySearchReq — один запрос к внешнему discovery-сервису.
// Заполняется либо URL, либо Query; вторая форма — для complementary retry.
type DiscoverySearchReq struct {
	URL        string
	Query      string
	MaxResults int
}

// DiscoveryItem — кандидат в форме discovery-сервиса.
type DiscoveryItem struct {
	Title     string
	Source    string
	Price     string
	Link      string
	Thumbnail string
}

type DiscoverySearchRes struct {
	Results []DiscoveryItem
}

type WriteRawMessageReq struct {
	Key     string
	Payload []byte
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const (
	RecommendationsGenerated OutboxEventType = "recommendations.generated"
)

type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	UserID      string
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// MAPPERS

func NewGenerateRecommendationsReq(userID string) *GenerateRecommendationsReq {
	return &GenerateRecommendationsReq{UserID: userID}
}

func NewGenerateRecommendationsRes(recs []RecommendationInfo) *GenerateRecommendationsRes {
	return &GenerateRecommendationsRes{Recommendations: recs}
}

func NewGenerateEmbeddingReq(linkID, title, brand, description string) *GenerateEmbeddingReq {
	return &GenerateEmbeddingReq{
		LinkID:      linkID,
		Title:       title,
		Brand:       brand,
		Description: description,
	}
}

func NewRecommendationInfo(rec *domain.Recommendation) RecommendationInfo {
	return RecommendationInfo{
		URL:             rec.URL,
		Title:           rec.Title,
		Brand:           rec.Brand,
		Price:           rec.Price,
		ImageURL:        rec.ImageURL,
		Reason:          rec.Reason,
		SimilarityScore: rec.SimilarityScore,
	}
}

func NewArrRecommendationInfo(recs []domain.Recommendation) []RecommendationInfo {
	result := make([]RecommendationInfo, 0, len(recs))
	for i := range recs {
		result = append(result, NewRecommendationInfo(&recs[i]))
	}

	return result
}

func NewDiscoverySearchReq(url, query string, maxResults int) *DiscoverySearchReq {
	return &DiscoverySearchReq{
		URL:        url,
		Query:      query,
		MaxResults: maxResults,
	}
}

func NewWriteRawMessageReq(key string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:     key,
		Payload: payload,
	}
}

func NewOutboxEvent(eventID string, eventType OutboxEventType, userID string, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		EventID:   eventID,
		EventType: eventType,
		UserID:    userID,
		Payload:   payload,
		Status:    Pending,
		CreatedAt: time.Now().UTC(),
	}
}
