package converter

import "time"

// SavedItemModel представляет запись таблицы saved_items в PostgreSQL.
type SavedItemModel struct {
	ID          string     `db:"id"`
	UserID      string     `db:"user_id"`
	URL         string     `db:"url"`
	Title       *string    `db:"title"`
	Brand       *string    `db:"brand"`
	Price       *string    `db:"price"`
	Description *string    `db:"description"`
	ImageURL    *string    `db:"image_url"`
	Embedding   []float32  `db:"embedding"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at"`
}

// RecommendationModel представляет запись таблицы recommendations в PostgreSQL.
type RecommendationModel struct {
	ID              string    `db:"id"`
	UserID          string    `db:"user_id"`
	URL             string    `db:"url"`
	Title           string    `db:"title"`
	Brand           string    `db:"brand"`
	Price           string    `db:"price"`
	ImageURL        *string   `db:"image_url"`
	Reason          string    `db:"reason"`
	SimilarityScore *float64  `db:"similarity_score"`
	Feedback        *string   `db:"feedback"`
	IsSaved         bool      `db:"is_saved"`
	CreatedAt       time.Time `db:"created_at"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	UserID      string     `db:"user_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
