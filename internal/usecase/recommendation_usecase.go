package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/stylefeed/go-backend/internal/cfg"
	"github.com/stylefeed/go-backend/internal/domain"
	"github.com/stylefeed/go-backend/pkg/e"
	"github.com/stylefeed/go-backend/pkg/logger"
	trm "github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/google/uuid"
)

// maxFallbackHops — не более одного fallback-перехода на запрос.
const maxFallbackHops = 1

// RecommendationUseCase — оркестратор пайплайна рекомендаций:
// загрузка записей → профиль → выбранный источник (+ один fallback) →
// нормализация → best-effort персистентность → ответ.
type RecommendationUseCase struct {
	savedItemRepo SavedItemRepository
	recRepo       RecommendationRepository
	outboxRepo    OutboxRepository
	cacheRepo     CacheRepository
	vectorRepo    VectorIndexRepository
	trManager     trm.Manager
	embedder      EmbeddingInfra
	sources       []CandidateSource
	cfg           *cfg.RecommendCfg
	logger        logger.Logger
}

func NewRecommendationUC(
	savedItemRepo SavedItemRepository,
	recRepo RecommendationRepository,
	outboxRepo OutboxRepository,
	cacheRepo CacheRepository,
	vectorRepo VectorIndexRepository,
	trManager trm.Manager,
	embedder EmbeddingInfra,
	sources []CandidateSource,
	cfg *cfg.RecommendCfg,
	logger logger.Logger,
) *RecommendationUseCase {
	return &RecommendationUseCase{
		savedItemRepo: savedItemRepo,
		recRepo:       recRepo,
		outboxRepo:    outboxRepo,
		cacheRepo:     cacheRepo,
		vectorRepo:    vectorRepo,
		trManager:     trManager,
		embedder:      embedder,
		sources:       sources,
		cfg:           cfg,
		logger:        logger,
	}
}

// GenerateRecommendations выполняет один проход пайплайна для пользователя.
// Успешный ответ всегда содержит массив рекомендаций, возможно пустой.
func (u *RecommendationUseCase) GenerateRecommendations(ctx context.Context, req *GenerateRecommendationsReq) (*GenerateRecommendationsRes, error) {
	const op = "RecommendationUseCase.GenerateRecommendations"

	if strings.TrimSpace(req.UserID) == "" {
		return nil, e.Wrap(op, e.ErrUserIDRequired)
	}

	items, err := u.savedItemRepo.ListByUser(ctx, req.UserID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Пустой набор сохранённых записей — не ошибка, сразу пустой ответ.
	if len(items) == 0 {
		return NewGenerateRecommendationsRes([]RecommendationInfo{}), nil
	}

	profile := BuildStyleProfile(items)

	candidates, err := u.fetchCandidates(ctx, profile, items, req.UserID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	recs := NormalizeCandidates(req.UserID, candidates, DistinctBrands(items))

	// Персистентность best-effort: неудача записи логируется,
	// но уже сгенерированный ответ не меняет.
	u.persistRecommendations(ctx, req.UserID, recs)

	return NewGenerateRecommendationsRes(NewArrRecommendationInfo(recs)), nil
}

// fetchCandidates пробует основную стратегию и не более одного fallback.
// Fallback срабатывает только на типизированные переходные ошибки; всё прочее
// всплывает наверх как фатальный отказ.
func (u *RecommendationUseCase) fetchCandidates(ctx context.Context, profile *domain.StyleProfile, items []domain.SavedItem, userID string) ([]domain.Candidate, error) {
	attempts := u.sources
	if len(attempts) > maxFallbackHops+1 {
		attempts = attempts[:maxFallbackHops+1]
	}

	for _, source := range attempts {
		candidates, err := source.Fetch(ctx, profile, items, userID)
		if err == nil {
			u.logger.Debugf("source %q produced %d candidates", source.Name(), len(candidates))
			return candidates, nil
		}

		if !IsTransientSourceErr(err) {
			return nil, err
		}

		u.logger.Infof("source %q yielded no candidates (%v), falling back", source.Name(), err)
	}

	return []domain.Candidate{}, nil
}

// outboxPayload — тело события recommendations.generated.
type outboxPayload struct {
	EventID         string    `json:"event_id"`
	UserID          string    `json:"user_id"`
	GeneratedAt     time.Time `json:"generated_at"`
	Recommendations []struct {
		URL   string `json:"url"`
		Title string `json:"title"`
		Brand string `json:"brand"`
	} `json:"recommendations"`
}

// persistRecommendations записывает рекомендации и outbox-событие одной транзакцией
// и инвалидирует кэш пользователя. Любая неудача здесь — warning, не ошибка запроса.
func (u *RecommendationUseCase) persistRecommendations(ctx context.Context, userID string, recs []domain.Recommendation) {
	const op = "RecommendationUseCase.persistRecommendations"

	if len(recs) == 0 {
		return
	}

	now := time.Now().UTC()
	for i := range recs {
		recs[i].ID = uuid.NewString()
		recs[i].CreatedAt = now
	}

	eventID := uuid.NewString()
	payload, err := u.buildEventPayload(eventID, userID, now, recs)
	if err != nil {
		u.logger.Warnf("failed to marshal outbox payload: %v", e.Wrap(op, err))
		return
	}

	err = u.trManager.Do(ctx, func(ctx context.Context) error {
		if err := u.recRepo.CreateBatch(ctx, recs); err != nil {
			return err
		}

		_, err := u.outboxRepo.Create(ctx, NewOutboxEvent(eventID, RecommendationsGenerated, userID, payload))
		return err
	})
	if err != nil {
		u.logger.Warnf("failed to persist recommendations: %v", e.Wrap(op, err))
		return
	}

	if err := u.cacheRepo.DeleteRecommendations(ctx, userID); err != nil {
		u.logger.Warnf("failed to invalidate recommendations cache: %v", e.Wrap(op, err))
	}
}

func (u *RecommendationUseCase) buildEventPayload(eventID, userID string, generatedAt time.Time, recs []domain.Recommendation) ([]byte, error) {
	payload := outboxPayload{
		EventID:     eventID,
		UserID:      userID,
		GeneratedAt: generatedAt,
	}
	for i := range recs {
		payload.Recommendations = append(payload.Recommendations, struct {
			URL   string `json:"url"`
			Title string `json:"title"`
			Brand string `json:"brand"`
		}{
			URL:   recs[i].URL,
			Title: recs[i].Title,
			Brand: recs[i].Brand,
		})
	}

	return json.Marshal(payload)
}

// ListRecommendations возвращает сохранённые рекомендации пользователя.
// Сначала кэш; промах — чтение из БД с фоновым прогревом кэша.
func (u *RecommendationUseCase) ListRecommendations(ctx context.Context, userID string) (*GenerateRecommendationsRes, error) {
	const op = "RecommendationUseCase.ListRecommendations"

	if strings.TrimSpace(userID) == "" {
		return nil, e.Wrap(op, e.ErrUserIDRequired)
	}

	if cached, err := u.cacheRepo.GetRecommendations(ctx, userID); err == nil && cached != nil {
		return NewGenerateRecommendationsRes(cached), nil
	}

	recs, err := u.recRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	result := NewArrRecommendationInfo(recs)

	// Фоновый прогрев кэша
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		if err := u.cacheRepo.SetRecommendations(bgCtx, userID, result); err != nil {
			u.logger.Warnf("failed to cache recommendations in background: %v", e.Wrap(op, err))
		}
	}()

	return NewGenerateRecommendationsRes(result), nil
}

// GenerateItemEmbedding векторизует одну сохранённую ссылку и сохраняет вектор
// в строке записи и в Qdrant-зеркале.
func (u *RecommendationUseCase) GenerateItemEmbedding(ctx context.Context, req *GenerateEmbeddingReq) error {
	const op = "RecommendationUseCase.GenerateItemEmbedding"

	if strings.TrimSpace(req.LinkID) == "" {
		return e.Wrap(op, e.ErrLinkIDRequired)
	}

	text := joinNonEmpty(req.Title, req.Brand, req.Description)
	if text == "" {
		return e.Wrap(op, e.ErrEmbeddingTextEmpty)
	}

	vector, err := u.embedder.Embed(ctx, text)
	if err != nil {
		return e.Wrap(op, err)
	}
	if len(vector) == 0 {
		return e.Wrap(op, e.ErrEmptyVector)
	}

	if err := u.savedItemRepo.UpdateEmbedding(ctx, req.LinkID, vector); err != nil {
		return e.Wrap(op, err)
	}

	// Зеркалирование в Qdrant — вторичный индекс, его отказ не откатывает строку.
	item, err := u.savedItemRepo.GetByID(ctx, req.LinkID)
	if err != nil {
		u.logger.Warnf("failed to load item for vector mirror: %v", e.Wrap(op, err))
		return nil
	}

	embedding := domain.NewEmbedding(uuid.NewString(), vector, domain.NewPayload(item.ID, item.UserID, item.URL))
	if err := u.vectorRepo.Upsert(ctx, []domain.Embedding{*embedding}); err != nil {
		u.logger.Warnf("failed to mirror embedding to vector index: %v", e.Wrap(op, err))
	}

	return nil
}

func joinNonEmpty(parts ...string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			filtered = append(filtered, part)
		}
	}

	return strings.Join(filtered, " ")
}
