package usecase

import (
	"math"
	"sort"

	"github.com/stylefeed/go-backend/internal/domain"
)

// RankedItem — запись корпуса с её косинусной близостью к запросу.
type RankedItem struct {
	Item  domain.SavedItem
	Score float64
}

// CosineSimilarity вычисляет косинусную близость двух векторов.
// Возвращает 0 при несовпадении размерностей и для векторов нулевой длины —
// принятая политика вместо NaN, чтобы сортировка оставалась детерминированной.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// RankBySimilarity ранжирует корпус по убыванию близости к запросу и возвращает top-k.
// Сортировка стабильная: при равных score сохраняется исходный порядок.
// Записи без вектора должны быть отфильтрованы на этапе загрузки корпуса.
func RankBySimilarity(query []float32, corpus []domain.SavedItem, k int) []RankedItem {
	if len(corpus) == 0 {
		return nil
	}

	ranked := make([]RankedItem, 0, len(corpus))
	for i := range corpus {
		ranked = append(ranked, RankedItem{
			Item:  corpus[i],
			Score: CosineSimilarity(query, corpus[i].Embedding),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}

	return ranked
}
