package domain

import "time"

// Recommendation — каноническая рекомендация, результат пайплайна.
// Записывается один раз; feedback и is_saved мутируются внешними сценариями.
type Recommendation struct {
	ID              string
	UserID          string
	URL             string
	Title           string
	Brand           string
	Price           string
	ImageURL        *string
	Reason          string
	SimilarityScore *float64
	Feedback        *string
	IsSaved         bool
	CreatedAt       time.Time
}
