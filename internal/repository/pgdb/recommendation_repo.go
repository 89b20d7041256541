package pgdb

import (
	"context"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"

	"github.com/stylefeed/go-backend/internal/domain"
	"github.com/stylefeed/go-backend/internal/repository/pgdb/converter"
	"github.com/stylefeed/go-backend/pkg/e"
	"github.com/stylefeed/go-backend/pkg/logger"
)

// RecommendationRepo — доступ к таблице recommendations.
type RecommendationRepo struct {
	pool   *pgxpool.Pool
	getter *trmpgx.CtxGetter
	conv   converter.RecommendationConverter
	logger logger.Logger
}

func NewRecommendationRepo(
	pool *pgxpool.Pool,
	getter *trmpgx.CtxGetter,
	conv converter.RecommendationConverter,
	logger logger.Logger,
) *RecommendationRepo {
	return &RecommendationRepo{
		pool:   pool,
		getter: getter,
		conv:   conv,
		logger: logger,
	}
}

// CreateBatch вставляет пачку рекомендаций. Дубликаты по (user_id, url)
// молча пропускаются: пользователь мог уже получить этот товар раньше.
func (r *RecommendationRepo) CreateBatch(ctx context.Context, recs []domain.Recommendation) error {
	query := `INSERT INTO recommendations
			(id, user_id, url, title, brand, price, image_url, reason, similarity_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, url) DO NOTHING`

	conn := r.getter.DefaultTrOrDB(ctx, r.pool)
	for i := range recs {
		model := r.conv.ToModel(&recs[i])
		_, err := conn.Exec(ctx, query,
			model.ID,
			model.UserID,
			model.URL,
			model.Title,
			model.Brand,
			model.Price,
			model.ImageURL,
			model.Reason,
			model.SimilarityScore,
		)
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return nil
}

// ListByUser возвращает сохранённую историю рекомендаций пользователя.
func (r *RecommendationRepo) ListByUser(ctx context.Context, userID string) ([]domain.Recommendation, error) {
	query := `SELECT id, user_id, url, title, brand, price, image_url, reason,
			similarity_score, feedback, is_saved, created_at
		FROM recommendations
		WHERE user_id = $1
		ORDER BY created_at DESC, similarity_score DESC NULLS LAST`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	var models []*converter.RecommendationModel
	for rows.Next() {
		var m converter.RecommendationModel
		err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.URL,
			&m.Title,
			&m.Brand,
			&m.Price,
			&m.ImageURL,
			&m.Reason,
			&m.SimilarityScore,
			&m.Feedback,
			&m.IsSaved,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		models = append(models, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return r.conv.ToArrEntity(models), nil
}
