package usecase

import "context"

type RecommendationUC interface {
	GenerateRecommendations(ctx context.Context, req *GenerateRecommendationsReq) (*GenerateRecommendationsRes, error)
	ListRecommendations(ctx context.Context, userID string) (*GenerateRecommendationsRes, error)
	GenerateItemEmbedding(ctx context.Context, req *GenerateEmbeddingReq) error
}
