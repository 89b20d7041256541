package converter

import (
	"github.com/stylefeed/go-backend/internal/usecase"
)

// RecommendationInfoConverter преобразует рекомендации между usecase и Redis-моделью.
type RecommendationInfoConverter interface {
	ToRedisModel(entity *usecase.RecommendationInfo) *RecommendationInfoRedisModel
	ToUseCase(model *RecommendationInfoRedisModel) *usecase.RecommendationInfo
	ToArrRedisModel(entities []usecase.RecommendationInfo) []RecommendationInfoRedisModel
	ToArrUseCase(models []RecommendationInfoRedisModel) []usecase.RecommendationInfo
}

type RecommendationInfoConverterImpl struct{}

func NewRecommendationInfoConverterImpl() *RecommendationInfoConverterImpl {
	return &RecommendationInfoConverterImpl{}
}

func (c *RecommendationInfoConverterImpl) ToRedisModel(entity *usecase.RecommendationInfo) *RecommendationInfoRedisModel {
	return &RecommendationInfoRedisModel{
		URL:             entity.URL,
		Title:           entity.Title,
		Brand:           entity.Brand,
		Price:           entity.Price,
		ImageURL:        entity.ImageURL,
		Reason:          entity.Reason,
		SimilarityScore: entity.SimilarityScore,
	}
}

func (c *RecommendationInfoConverterImpl) ToUseCase(model *RecommendationInfoRedisModel) *usecase.RecommendationInfo {
	return &usecase.RecommendationInfo{
		URL:             model.URL,
		Title:           model.Title,
		Brand:           model.Brand,
		Price:           model.Price,
		ImageURL:        model.ImageURL,
		Reason:          model.Reason,
		SimilarityScore: model.SimilarityScore,
	}
}

func (c *RecommendationInfoConverterImpl) ToArrRedisModel(entities []usecase.RecommendationInfo) []RecommendationInfoRedisModel {
	result := make([]RecommendationInfoRedisModel, 0, len(entities))
	for i := range entities {
		result = append(result, *c.ToRedisModel(&entities[i]))
	}
	return result
}

func (c *RecommendationInfoConverterImpl) ToArrUseCase(models []RecommendationInfoRedisModel) []usecase.RecommendationInfo {
	result := make([]usecase.RecommendationInfo, 0, len(models))
	for i := range models {
		result = append(result, *c.ToUseCase(&models[i]))
	}
	return result
}
