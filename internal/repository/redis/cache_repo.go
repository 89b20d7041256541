package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jimlawless/whereami"

	"github.com/stylefeed/go-backend/internal/cfg"
	"github.com/stylefeed/go-backend/internal/repository/redis/converter"
	"github.com/stylefeed/go-backend/internal/usecase"
	"github.com/stylefeed/go-backend/pkg/clients"
	"github.com/stylefeed/go-backend/pkg/e"
	"github.com/stylefeed/go-backend/pkg/logger"
)

// CacheRepo кэширует список рекомендаций пользователя целиком,
// одним JSON-массивом под одним ключом.
type CacheRepo struct {
	client *clients.RedisClient
	conv   converter.RecommendationInfoConverter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.RecommendationInfoConverter,
	cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
		logger: logger,
	}
}

// GetRecommendations возвращает закэшированный список рекомендаций.
// Промах кэша — (nil, nil), не ошибка.
func (r *CacheRepo) GetRecommendations(ctx context.Context, userID string) ([]usecase.RecommendationInfo, error) {
	key := r.recommendationsKey(userID)

	data, err := r.client.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil // cache miss
		}
		r.logger.Warnf("Redis GET failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var models []converter.RecommendationInfoRedisModel
	if err := json.Unmarshal(data, &models); err != nil {
		r.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		if err := r.client.Client.Del(context.Background(), key).Err(); err != nil {
			r.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
		}
		return nil, nil // трактуем битую запись как промах
	}

	return r.conv.ToArrUseCase(models), nil
}

// SetRecommendations кэширует список рекомендаций с TTL.
// Ошибки записи логируются и не прерывают запрос.
func (r *CacheRepo) SetRecommendations(ctx context.Context, userID string, recs []usecase.RecommendationInfo) error {
	models := r.conv.ToArrRedisModel(recs)

	data, err := json.Marshal(models)
	if err != nil {
		r.logger.Warnf("Failed to marshal recommendations for caching (user %s): %v", userID, e.Wrap(whereami.WhereAmI(), err))
		return nil
	}

	key := r.recommendationsKey(userID)
	if err := r.client.Client.Set(ctx, key, data, r.cfg.RecommendationsTTL).Err(); err != nil {
		r.logger.Warnf("Redis SET failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

// DeleteRecommendations инвалидирует кэш пользователя после генерации.
func (r *CacheRepo) DeleteRecommendations(ctx context.Context, userID string) error {
	key := r.recommendationsKey(userID)

	if err := r.client.Client.Del(ctx, key).Err(); err != nil {
		r.logger.Warnf("Redis DEL failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

// recommendationsKey возвращает Redis-ключ списка рекомендаций пользователя
func (r *CacheRepo) recommendationsKey(userID string) string {
	return fmt.Sprintf("recommendations:user:%s", userID)
}
