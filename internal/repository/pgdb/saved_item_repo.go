package pgdb

import (
	"context"
	"errors"
	"fmt"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"

	"github.com/stylefeed/go-backend/internal/domain"
	"github.com/stylefeed/go-backend/internal/repository/pgdb/converter"
	"github.com/stylefeed/go-backend/pkg/e"
	"github.com/stylefeed/go-backend/pkg/logger"
)

// SavedItemRepo — доступ к таблице saved_items.
type SavedItemRepo struct {
	pool   *pgxpool.Pool
	getter *trmpgx.CtxGetter
	conv   converter.SavedItemConverter
	logger logger.Logger
}

func NewSavedItemRepo(
	pool *pgxpool.Pool,
	getter *trmpgx.CtxGetter,
	conv converter.SavedItemConverter,
	logger logger.Logger,
) *SavedItemRepo {
	return &SavedItemRepo{
		pool:   pool,
		getter: getter,
		conv:   conv,
		logger: logger,
	}
}

const savedItemColumns = `id, user_id, url, title, brand, price, description, image_url, embedding, created_at, updated_at`

// ListByUser возвращает сохранённые товары пользователя, новые первыми.
func (r *SavedItemRepo) ListByUser(ctx context.Context, userID string) ([]domain.SavedItem, error) {
	query := `SELECT ` + savedItemColumns + `
		FROM saved_items
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	models, err := scanSavedItems(rows)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return r.conv.ToArrEntity(models), nil
}

// GetByID возвращает сохранённый товар по идентификатору.
func (r *SavedItemRepo) GetByID(ctx context.Context, id string) (*domain.SavedItem, error) {
	query := `SELECT ` + savedItemColumns + `
		FROM saved_items
		WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)

	model, err := scanSavedItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("saved item %s not found", id))
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return r.conv.ToEntity(model), nil
}

// ListEmbeddedExcluding возвращает до limit товаров других пользователей,
// у которых уже посчитан эмбеддинг.
func (r *SavedItemRepo) ListEmbeddedExcluding(ctx context.Context, userID string, limit int) ([]domain.SavedItem, error) {
	query := `SELECT ` + savedItemColumns + `
		FROM saved_items
		WHERE user_id <> $1 AND embedding IS NOT NULL
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	models, err := scanSavedItems(rows)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return r.conv.ToArrEntity(models), nil
}

// UpdateEmbedding записывает вектор товара. Участвует в транзакции,
// если она открыта в контексте.
func (r *SavedItemRepo) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	query := `UPDATE saved_items
		SET embedding = $2, updated_at = NOW()
		WHERE id = $1`

	conn := r.getter.DefaultTrOrDB(ctx, r.pool)
	tag, err := conn.Exec(ctx, query, id, embedding)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("saved item %s not found", id))
	}

	return nil
}

func scanSavedItem(row pgx.Row) (*converter.SavedItemModel, error) {
	var m converter.SavedItemModel
	err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.URL,
		&m.Title,
		&m.Brand,
		&m.Price,
		&m.Description,
		&m.ImageURL,
		&m.Embedding,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanSavedItems(rows pgx.Rows) ([]*converter.SavedItemModel, error) {
	var models []*converter.SavedItemModel
	for rows.Next() {
		m, err := scanSavedItem(rows)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return models, nil
}
