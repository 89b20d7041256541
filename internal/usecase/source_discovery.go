package usecase

import (
	"context"

	"github.com/stylefeed/go-backend/internal/cfg"
	"github.com/stylefeed/go-backend/internal/domain"
	"github.com/stylefeed/go-backend/pkg/logger"
)

// DiscoverySource опрашивает внешний product-discovery сервис.
// Неуспех повторяется ровно один раз комплементарной формой запроса
// (URL → текст и наоборот); окончательный неуспех — пустой список, не ошибка:
// генерация рекомендаций обязана вернуть успешный ответ, а не 5xx.
type DiscoverySource struct {
	discovery DiscoveryInfra
	cfg       *cfg.DiscoveryCfg
	logger    logger.Logger
}

func NewDiscoverySource(discovery DiscoveryInfra, cfg *cfg.DiscoveryCfg, logger logger.Logger) *DiscoverySource {
	return &DiscoverySource{
		discovery: discovery,
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *DiscoverySource) Name() string {
	return SourceDiscovery
}

func (s *DiscoverySource) Fetch(ctx context.Context, profile *domain.StyleProfile, items []domain.SavedItem, userID string) ([]domain.Candidate, error) {
	primary, fallback := s.buildQueries(profile, items)

	res, err := s.discovery.Search(ctx, primary)
	if err != nil {
		s.logger.Warnf("discovery search failed, retrying with complementary query: %v", err)

		res, err = s.discovery.Search(ctx, fallback)
		if err != nil {
			s.logger.Warnf("discovery retry failed, giving up: %v", err)
			return []domain.Candidate{}, nil
		}
	}

	candidates := make([]domain.Candidate, 0, len(res.Results))
	for _, item := range res.Results {
		candidates = append(candidates, domain.Candidate{
			Title:     item.Title,
			Source:    item.Source,
			Price:     item.Price,
			Link:      item.Link,
			Thumbnail: item.Thumbnail,
		})
	}

	return candidates, nil
}

// buildQueries собирает основную и комплементарную формы запроса.
// Основная — по репрезентативному URL, когда он есть; иначе по тексту профиля.
func (s *DiscoverySource) buildQueries(profile *domain.StyleProfile, items []domain.SavedItem) (*DiscoverySearchReq, *DiscoverySearchReq) {
	byText := NewDiscoverySearchReq("", profile.Summary, s.cfg.MaxResults)

	if len(items) > 0 && items[0].URL != "" {
		byURL := NewDiscoverySearchReq(items[0].URL, "", s.cfg.MaxResults)
		return byURL, byText
	}

	return byText, byText
}
