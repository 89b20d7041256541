package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stylefeed/go-backend/internal/usecase"
	"github.com/stylefeed/go-backend/pkg/e"
	"github.com/stylefeed/go-backend/pkg/logger"
)

type RecommendationHandler struct {
	recommendationUsecase usecase.RecommendationUC
	logger                logger.Logger
}

func NewRecommendationHandler(recommendationUsecase usecase.RecommendationUC, logger logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{recommendationUsecase: recommendationUsecase, logger: logger}
}

type generateRecommendationsRequest struct {
	UserID string `json:"userId"`
}

type generateEmbeddingRequest struct {
	LinkID      string `json:"linkId"`
	Title       string `json:"title"`
	Brand       string `json:"brand"`
	Description string `json:"description"`
}

// RecommendationView — рекомендация в форме ответа API.
type RecommendationView struct {
	URL             string   `json:"url"`
	Title           string   `json:"title"`
	Brand           string   `json:"brand"`
	Price           string   `json:"price"`
	ImageURL        *string  `json:"image_url"`
	Reason          string   `json:"reason"`
	SimilarityScore *float64 `json:"similarity_score,omitempty"`
}

type recommendationsResponse struct {
	Recommendations []RecommendationView `json:"recommendations"`
}

// liveness
//
//	@Summary		Проверка живости сервиса
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/ [get]
func (h *RecommendationHandler) liveness(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, http.StatusOK, map[string]string{
		"status": "Recommendation service is running!",
	})
}

// generateRecommendations
//
//	@Summary		Генерация рекомендаций для пользователя
//	@Description	Строит стилевой профиль по сохранённым товарам и возвращает подборку
//	@Tags			recommendations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		generateRecommendationsRequest	true	"Идентификатор пользователя"
//	@Success		200		{object}	recommendationsResponse
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/recommendations [post]
func (h *RecommendationHandler) generateRecommendations(w http.ResponseWriter, r *http.Request) {
	var req generateRecommendationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	res, err := h.recommendationUsecase.GenerateRecommendations(r.Context(), usecase.NewGenerateRecommendationsReq(req.UserID))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toRecommendationsResponse(res.Recommendations))
}

// listRecommendations
//
//	@Summary		История рекомендаций пользователя
//	@Tags			recommendations
//	@Produce		json
//	@Param			userID	path		string	true	"Идентификатор пользователя"
//	@Success		200		{object}	recommendationsResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/recommendations/{userID} [get]
func (h *RecommendationHandler) listRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	res, err := h.recommendationUsecase.ListRecommendations(r.Context(), userID)
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toRecommendationsResponse(res.Recommendations))
}

// generateEmbedding
//
//	@Summary		Векторизация сохранённого товара
//	@Description	Считает эмбеддинг по тексту товара и сохраняет его
//	@Tags			embeddings
//	@Accept			json
//	@Produce		json
//	@Param			request	body		generateEmbeddingRequest	true	"Текстовые поля товара"
//	@Success		200		{object}	map[string]bool
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/generate-embedding [post]
func (h *RecommendationHandler) generateEmbedding(w http.ResponseWriter, r *http.Request) {
	var req generateEmbeddingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	err := h.recommendationUsecase.GenerateItemEmbedding(r.Context(), usecase.NewGenerateEmbeddingReq(req.LinkID, req.Title, req.Brand, req.Description))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]bool{"success": true})
}

func toRecommendationsResponse(recs []usecase.RecommendationInfo) recommendationsResponse {
	views := make([]RecommendationView, 0, len(recs))
	for _, rec := range recs {
		views = append(views, RecommendationView{
			URL:             rec.URL,
			Title:           rec.Title,
			Brand:           rec.Brand,
			Price:           rec.Price,
			ImageURL:        rec.ImageURL,
			Reason:          rec.Reason,
			SimilarityScore: rec.SimilarityScore,
		})
	}
	return recommendationsResponse{Recommendations: views}
}
