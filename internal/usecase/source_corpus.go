package usecase

import (
	"context"

	"github.com/stylefeed/go-backend/internal/cfg"
	"github.com/stylefeed/go-backend/internal/domain"
	"github.com/stylefeed/go-backend/pkg/e"
	"github.com/stylefeed/go-backend/pkg/logger"
)

// CorpusSimilaritySource ранжирует векторизованные записи других пользователей
// по косинусной близости к embedding профиля.
type CorpusSimilaritySource struct {
	savedItemRepo SavedItemRepository
	embedder      EmbeddingInfra
	cfg           *cfg.RecommendCfg
	logger        logger.Logger
}

func NewCorpusSimilaritySource(
	savedItemRepo SavedItemRepository,
	embedder EmbeddingInfra,
	cfg *cfg.RecommendCfg,
	logger logger.Logger,
) *CorpusSimilaritySource {
	return &CorpusSimilaritySource{
		savedItemRepo: savedItemRepo,
		embedder:      embedder,
		cfg:           cfg,
		logger:        logger,
	}
}

func (s *CorpusSimilaritySource) Name() string {
	return SourceCorpus
}

// Fetch загружает корпус, при необходимости векторизует профиль и возвращает top-K.
// Корпус меньше MinCorpusSize — это "нет кандидатов", а не ошибка: оркестратор
// уходит в fallback.
func (s *CorpusSimilaritySource) Fetch(ctx context.Context, profile *domain.StyleProfile, items []domain.SavedItem, userID string) ([]domain.Candidate, error) {
	const op = "CorpusSimilaritySource.Fetch"

	corpus, err := s.savedItemRepo.ListEmbeddedExcluding(ctx, userID, s.cfg.CorpusLimit)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if len(corpus) < s.cfg.MinCorpusSize {
		s.logger.Debugf("corpus too small for similarity ranking: %d < %d", len(corpus), s.cfg.MinCorpusSize)
		return nil, e.Wrap(op, e.ErrNoCandidates)
	}

	if len(profile.Embedding) == 0 {
		vector, err := s.embedder.Embed(ctx, profile.Summary)
		if err != nil {
			s.logger.Warnf("profile embedding failed: %v", err)
			return nil, e.Wrap(op, e.ErrEmbeddingUnavailable)
		}
		profile.Embedding = vector
	}

	ranked := RankBySimilarity(profile.Embedding, corpus, s.cfg.TopK)
	if len(ranked) == 0 {
		return nil, e.Wrap(op, e.ErrNoCandidates)
	}

	candidates := make([]domain.Candidate, 0, len(ranked))
	for i := range ranked {
		score := ranked[i].Score
		candidates = append(candidates, domain.Candidate{
			Title:     ranked[i].Item.Title,
			Brand:     ranked[i].Item.Brand,
			Price:     ranked[i].Item.Price,
			URL:       ranked[i].Item.URL,
			Thumbnail: ranked[i].Item.ImageURL,
			Score:     &score,
		})
	}

	return candidates, nil
}
