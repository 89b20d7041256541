package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/stylefeed/go-backend/docs" // Импорт сгенерированных файлов
	"github.com/stylefeed/go-backend/internal/cfg"
	"github.com/stylefeed/go-backend/internal/usecase"
	"github.com/stylefeed/go-backend/pkg/logger"
)

type Router struct {
	router *chi.Mux
	cfg    *cfg.HTTPConfig
	logger logger.Logger
}

func NewRouter(router *chi.Mux, cfg *cfg.HTTPConfig, logger logger.Logger) *Router {
	return &Router{router: router, cfg: cfg, logger: logger}
}

func (r *Router) Init(recUC usecase.RecommendationUC) {
	r.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: r.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"), // ссылка на JSON
	))

	recHandler := NewRecommendationHandler(recUC, r.logger)

	r.router.Get("/", recHandler.liveness)

	r.router.Route("/api", func(api chi.Router) {
		registerRecommendationRoutes(api, recHandler)
	})
}

func registerRecommendationRoutes(router chi.Router, recHandler *RecommendationHandler) {
	router.Post("/recommendations", recHandler.generateRecommendations)
	router.Get("/recommendations/{userID}", recHandler.listRecommendations)
	router.Post("/generate-embedding", recHandler.generateEmbedding)
}
