package usecase

import (
	"context"
	"errors"

	"github.com/stylefeed/go-backend/internal/domain"
	"github.com/stylefeed/go-backend/pkg/e"
)

// Имена стратегий, допустимые в конфигурации RECOMMEND_STRATEGIES.
const (
	SourceCorpus     = "corpus"
	SourceGenerative = "generative"
	SourceDiscovery  = "discovery"
)

// CandidateSource — взаимозаменяемая стратегия получения сырых кандидатов.
// Переходные отказы сигнализируются типизированными ошибками из pkg/e,
// всё остальное оркестратор считает фатальным.
type CandidateSource interface {
	Name() string
	Fetch(ctx context.Context, profile *domain.StyleProfile, items []domain.SavedItem, userID string) ([]domain.Candidate, error)
}

// IsTransientSourceErr сообщает, допускает ли ошибка fallback на следующую стратегию.
// Ошибки программирования и отказа хранилища сюда не входят и всплывают как 500.
func IsTransientSourceErr(err error) bool {
	return errors.Is(err, e.ErrNoCandidates) ||
		errors.Is(err, e.ErrEmbeddingUnavailable) ||
		errors.Is(err, e.ErrMalformedGeneration) ||
		errors.Is(err, context.DeadlineExceeded)
}
