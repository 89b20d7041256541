package pgdb

import (
	"context"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"

	"github.com/stylefeed/go-backend/internal/repository/pgdb/converter"
	"github.com/stylefeed/go-backend/internal/usecase"
	"github.com/stylefeed/go-backend/pkg/e"
	"github.com/stylefeed/go-backend/pkg/logger"
)

// OutboxEventRepo — транзакционный outbox для событий рекомендаций.
// Событие пишется в одной транзакции с рекомендациями, воркер забирает
// его по NOTIFY и публикует в Kafka.
type OutboxEventRepo struct {
	pool   *pgxpool.Pool
	getter *trmpgx.CtxGetter
	conv   converter.OutboxEventConverter
	logger logger.Logger
}

func NewOutboxEventRepo(
	pool *pgxpool.Pool,
	getter *trmpgx.CtxGetter,
	conv converter.OutboxEventConverter,
	logger logger.Logger,
) *OutboxEventRepo {
	return &OutboxEventRepo{
		pool:   pool,
		getter: getter,
		conv:   conv,
		logger: logger,
	}
}

// Create вставляет событие и будит воркер через NOTIFY.
// Участвует в транзакции из контекста: NOTIFY уйдёт только после коммита.
func (r *OutboxEventRepo) Create(ctx context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	query := `INSERT INTO outbox_events (event_id, event_type, user_id, payload, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	model := r.conv.ToModel(event)

	conn := r.getter.DefaultTrOrDB(ctx, r.pool)
	err := conn.QueryRow(ctx, query,
		model.EventID,
		model.EventType,
		model.UserID,
		model.Payload,
		model.Status,
	).Scan(&model.ID, &model.CreatedAt)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if _, err := conn.Exec(ctx, `SELECT pg_notify('outbox_pending', $1)`, model.EventID); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return r.conv.ToEntity(model), nil
}

// GetAndMarkAsProcessing атомарно захватывает пачку pending-событий.
// FOR UPDATE SKIP LOCKED позволяет запускать несколько воркеров без гонок.
func (r *OutboxEventRepo) GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*usecase.OutboxEvent, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT id, event_id, event_type, user_id, payload, status, created_at, processed_at
		FROM outbox_events
		WHERE status = $1
		ORDER BY id
		LIMIT $2
		FOR UPDATE SKIP LOCKED`

	rows, err := tx.Query(ctx, query, string(usecase.Pending), limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var models []*converter.OutboxEventModel
	for rows.Next() {
		var m converter.OutboxEventModel
		err := rows.Scan(
			&m.ID,
			&m.EventID,
			&m.EventType,
			&m.UserID,
			&m.Payload,
			&m.Status,
			&m.CreatedAt,
			&m.ProcessedAt,
		)
		if err != nil {
			rows.Close()
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		models = append(models, &m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if len(models) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.ID)
	}

	updateQuery := `UPDATE outbox_events SET status = $1 WHERE id = ANY($2)`
	if _, err := tx.Exec(ctx, updateQuery, string(usecase.Processing), ids); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return r.conv.ToArrEntity(models), nil
}

// MarkAsProcessed помечает событие доставленным.
func (r *OutboxEventRepo) MarkAsProcessed(ctx context.Context, id int64) error {
	query := `UPDATE outbox_events
		SET status = $1, processed_at = NOW()
		WHERE id = $2`

	_, err := r.pool.Exec(ctx, query, string(usecase.Processed), id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
