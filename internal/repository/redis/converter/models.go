package converter

// RecommendationInfoRedisModel — форма рекомендации в Redis-кэше.
type RecommendationInfoRedisModel struct {
	URL             string   `json:"url"`
	Title           string   `json:"title"`
	Brand           string   `json:"brand"`
	Price           string   `json:"price"`
	ImageURL        *string  `json:"image_url,omitempty"`
	Reason          string   `json:"reason"`
	SimilarityScore *float64 `json:"similarity_score,omitempty"`
}
