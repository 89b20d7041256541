package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stylefeed/go-backend/internal/cfg"
	"github.com/stylefeed/go-backend/internal/domain"
	"github.com/stylefeed/go-backend/pkg/e"
)

func newTestUC(itemRepo *fakeSavedItemRepo, recRepo *fakeRecRepo, outboxRepo *fakeOutboxRepo,
	cacheRepo *fakeCacheRepo, vectorRepo *fakeVectorRepo, trManager *fakeTrManager,
	embedder *fakeEmbedder, sources ...CandidateSource) *RecommendationUseCase {
	return NewRecommendationUC(
		itemRepo,
		recRepo,
		outboxRepo,
		cacheRepo,
		vectorRepo,
		trManager,
		embedder,
		sources,
		&cfg.RecommendCfg{
			Strategies:    []string{SourceCorpus, SourceGenerative},
			MinCorpusSize: 5,
			CorpusLimit:   150,
			TopK:          8,
		},
		fakeLogger{},
	)
}

func TestGenerateRecommendations(t *testing.T) {
	ctx := context.Background()
	savedItems := []domain.SavedItem{
		{ID: "i1", UserID: "u1", URL: "https://shop/coat", Title: "Wool Coat", Brand: "COS", Price: "250"},
	}

	t.Run("empty user id is a validation error", func(t *testing.T) {
		uc := newTestUC(&fakeSavedItemRepo{}, &fakeRecRepo{}, &fakeOutboxRepo{}, &fakeCacheRepo{}, &fakeVectorRepo{}, &fakeTrManager{}, &fakeEmbedder{})

		_, err := uc.GenerateRecommendations(ctx, NewGenerateRecommendationsReq("  "))
		require.Error(t, err)
		assert.ErrorIs(t, err, e.ErrUserIDRequired)
	})

	t.Run("saved items read failure surfaces as error", func(t *testing.T) {
		itemRepo := &fakeSavedItemRepo{itemsErr: errors.New("db down")}
		uc := newTestUC(itemRepo, &fakeRecRepo{}, &fakeOutboxRepo{}, &fakeCacheRepo{}, &fakeVectorRepo{}, &fakeTrManager{}, &fakeEmbedder{})

		_, err := uc.GenerateRecommendations(ctx, NewGenerateRecommendationsReq("u1"))
		assert.Error(t, err)
	})

	t.Run("no saved items short-circuits to empty response", func(t *testing.T) {
		source := &fakeSource{name: SourceCorpus}
		uc := newTestUC(&fakeSavedItemRepo{}, &fakeRecRepo{}, &fakeOutboxRepo{}, &fakeCacheRepo{}, &fakeVectorRepo{}, &fakeTrManager{}, &fakeEmbedder{}, source)

		res, err := uc.GenerateRecommendations(ctx, NewGenerateRecommendationsReq("u1"))
		require.NoError(t, err)
		assert.Empty(t, res.Recommendations)
		assert.Zero(t, source.calls, "no source should run without saved items")
	})

	t.Run("primary source success persists and responds", func(t *testing.T) {
		score := 0.9
		primary := &fakeSource{name: SourceCorpus, candidates: []domain.Candidate{
			{Title: "Jacket", Brand: "Carhartt", Price: "$189", URL: "https://shop/jacket", Score: &score},
		}}
		fallback := &fakeSource{name: SourceGenerative}

		itemRepo := &fakeSavedItemRepo{items: savedItems}
		recRepo := &fakeRecRepo{}
		outboxRepo := &fakeOutboxRepo{}
		cacheRepo := &fakeCacheRepo{}
		uc := newTestUC(itemRepo, recRepo, outboxRepo, cacheRepo, &fakeVectorRepo{}, &fakeTrManager{}, &fakeEmbedder{}, primary, fallback)

		res, err := uc.GenerateRecommendations(ctx, NewGenerateRecommendationsReq("u1"))
		require.NoError(t, err)
		require.Len(t, res.Recommendations, 1)
		assert.Equal(t, "https://shop/jacket", res.Recommendations[0].URL)
		assert.Equal(t, "189", res.Recommendations[0].Price)
		assert.Equal(t, "90% style match", res.Recommendations[0].Reason)

		assert.Zero(t, fallback.calls)
		require.Len(t, recRepo.created, 1)
		assert.NotEmpty(t, recRepo.created[0][0].ID)
		require.Len(t, outboxRepo.created, 1)
		assert.Equal(t, RecommendationsGenerated, outboxRepo.created[0].EventType)
		assert.Equal(t, []string{"u1"}, cacheRepo.deleted)
	})

	t.Run("transient failure falls back once", func(t *testing.T) {
		primary := &fakeSource{name: SourceCorpus, err: e.ErrNoCandidates}
		fallback := &fakeSource{name: SourceGenerative, candidates: []domain.Candidate{
			{Title: "Tee", URL: "https://shop/tee", Reason: "Fits your basics"},
		}}

		uc := newTestUC(&fakeSavedItemRepo{items: savedItems}, &fakeRecRepo{}, &fakeOutboxRepo{}, &fakeCacheRepo{}, &fakeVectorRepo{}, &fakeTrManager{}, &fakeEmbedder{}, primary, fallback)

		res, err := uc.GenerateRecommendations(ctx, NewGenerateRecommendationsReq("u1"))
		require.NoError(t, err)
		require.Len(t, res.Recommendations, 1)
		assert.Equal(t, "Fits your basics", res.Recommendations[0].Reason)
		assert.Equal(t, 1, primary.calls)
		assert.Equal(t, 1, fallback.calls)
	})

	t.Run("two transient failures end with empty success", func(t *testing.T) {
		primary := &fakeSource{name: SourceCorpus, err: e.ErrNoCandidates}
		fallback := &fakeSource{name: SourceGenerative, err: e.ErrMalformedGeneration}
		third := &fakeSource{name: SourceDiscovery, candidates: []domain.Candidate{{Title: "X", URL: "https://x"}}}

		recRepo := &fakeRecRepo{}
		uc := newTestUC(&fakeSavedItemRepo{items: savedItems}, recRepo, &fakeOutboxRepo{}, &fakeCacheRepo{}, &fakeVectorRepo{}, &fakeTrManager{}, &fakeEmbedder{}, primary, fallback, third)

		res, err := uc.GenerateRecommendations(ctx, NewGenerateRecommendationsReq("u1"))
		require.NoError(t, err)
		assert.Empty(t, res.Recommendations)
		assert.Zero(t, third.calls, "only one fallback hop is allowed")
		assert.Empty(t, recRepo.created)
	})

	t.Run("fatal source error is not retried", func(t *testing.T) {
		fatal := errors.New("source panic-grade failure")
		primary := &fakeSource{name: SourceCorpus, err: fatal}
		fallback := &fakeSource{name: SourceGenerative}

		uc := newTestUC(&fakeSavedItemRepo{items: savedItems}, &fakeRecRepo{}, &fakeOutboxRepo{}, &fakeCacheRepo{}, &fakeVectorRepo{}, &fakeTrManager{}, &fakeEmbedder{}, primary, fallback)

		_, err := uc.GenerateRecommendations(ctx, NewGenerateRecommendationsReq("u1"))
		require.Error(t, err)
		assert.ErrorIs(t, err, fatal)
		assert.Zero(t, fallback.calls)
	})

	t.Run("persistence failure does not change the response", func(t *testing.T) {
		primary := &fakeSource{name: SourceCorpus, candidates: []domain.Candidate{
			{Title: "Jacket", URL: "https://shop/jacket"},
		}}

		uc := newTestUC(&fakeSavedItemRepo{items: savedItems}, &fakeRecRepo{}, &fakeOutboxRepo{}, &fakeCacheRepo{}, &fakeVectorRepo{}, &fakeTrManager{err: errors.New("tx begin failed")}, &fakeEmbedder{}, primary)

		res, err := uc.GenerateRecommendations(ctx, NewGenerateRecommendationsReq("u1"))
		require.NoError(t, err)
		assert.Len(t, res.Recommendations, 1)
	})
}

func TestListRecommendations(t *testing.T) {
	ctx := context.Background()

	t.Run("empty user id is a validation error", func(t *testing.T) {
		uc := newTestUC(&fakeSavedItemRepo{}, &fakeRecRepo{}, &fakeOutboxRepo{}, &fakeCacheRepo{}, &fakeVectorRepo{}, &fakeTrManager{}, &fakeEmbedder{})

		_, err := uc.ListRecommendations(ctx, "")
		assert.ErrorIs(t, err, e.ErrUserIDRequired)
	})

	t.Run("cache hit skips the database", func(t *testing.T) {
		cacheRepo := &fakeCacheRepo{stored: map[string][]RecommendationInfo{
			"u1": {{URL: "https://cached", Title: "Cached"}},
		}}
		recRepo := &fakeRecRepo{listErr: errors.New("must not be called")}
		uc := newTestUC(&fakeSavedItemRepo{}, recRepo, &fakeOutboxRepo{}, cacheRepo, &fakeVectorRepo{}, &fakeTrManager{}, &fakeEmbedder{})

		res, err := uc.ListRecommendations(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, res.Recommendations, 1)
		assert.Equal(t, "https://cached", res.Recommendations[0].URL)
	})

	t.Run("cache miss reads the database and warms the cache", func(t *testing.T) {
		cacheRepo := &fakeCacheRepo{}
		recRepo := &fakeRecRepo{list: []domain.Recommendation{
			{URL: "https://db", Title: "From DB", Brand: "B", Price: "10", Reason: "r"},
		}}
		uc := newTestUC(&fakeSavedItemRepo{}, recRepo, &fakeOutboxRepo{}, cacheRepo, &fakeVectorRepo{}, &fakeTrManager{}, &fakeEmbedder{})

		res, err := uc.ListRecommendations(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, res.Recommendations, 1)
		assert.Equal(t, "https://db", res.Recommendations[0].URL)

		// фоновый прогрев
		assert.Eventually(t, func() bool {
			cached, _ := cacheRepo.GetRecommendations(ctx, "u1")
			return len(cached) == 1
		}, time.Second, 10*time.Millisecond)
	})
}

func TestGenerateItemEmbedding(t *testing.T) {
	ctx := context.Background()

	t.Run("link id is required", func(t *testing.T) {
		uc := newTestUC(&fakeSavedItemRepo{}, &fakeRecRepo{}, &fakeOutboxRepo{}, &fakeCacheRepo{}, &fakeVectorRepo{}, &fakeTrManager{}, &fakeEmbedder{})

		err := uc.GenerateItemEmbedding(ctx, NewGenerateEmbeddingReq("", "Title", "", ""))
		assert.ErrorIs(t, err, e.ErrLinkIDRequired)
	})

	t.Run("all text fields empty is a validation error", func(t *testing.T) {
		uc := newTestUC(&fakeSavedItemRepo{}, &fakeRecRepo{}, &fakeOutboxRepo{}, &fakeCacheRepo{}, &fakeVectorRepo{}, &fakeTrManager{}, &fakeEmbedder{})

		err := uc.GenerateItemEmbedding(ctx, NewGenerateEmbeddingReq("link-1", " ", "", "	"))
		assert.ErrorIs(t, err, e.ErrEmbeddingTextEmpty)
	})

	t.Run("embeds stores and mirrors the vector", func(t *testing.T) {
		itemRepo := &fakeSavedItemRepo{
			byID: &domain.SavedItem{ID: "link-1", UserID: "u1", URL: "https://shop/x"},
		}
		vectorRepo := &fakeVectorRepo{}
		embedder := &fakeEmbedder{vector: []float32{0.1, 0.2}}
		uc := newTestUC(itemRepo, &fakeRecRepo{}, &fakeOutboxRepo{}, &fakeCacheRepo{}, vectorRepo, &fakeTrManager{}, embedder)

		err := uc.GenerateItemEmbedding(ctx, NewGenerateEmbeddingReq("link-1", "Wool Coat", "COS", "heavy winter coat"))
		require.NoError(t, err)
		assert.Equal(t, []float32{0.1, 0.2}, itemRepo.updated["link-1"])
		require.Len(t, vectorRepo.upserts, 1)
		assert.Equal(t, "link-1", vectorRepo.upserts[0][0].Payload["link_id"])
	})

	t.Run("embedding failure surfaces as error", func(t *testing.T) {
		embedder := &fakeEmbedder{err: errors.New("model overloaded")}
		uc := newTestUC(&fakeSavedItemRepo{}, &fakeRecRepo{}, &fakeOutboxRepo{}, &fakeCacheRepo{}, &fakeVectorRepo{}, &fakeTrManager{}, embedder)

		err := uc.GenerateItemEmbedding(ctx, NewGenerateEmbeddingReq("link-1", "Title", "", ""))
		assert.Error(t, err)
	})

	t.Run("mirror failure does not fail the request", func(t *testing.T) {
		itemRepo := &fakeSavedItemRepo{byIDErr: errors.New("row vanished")}
		embedder := &fakeEmbedder{vector: []float32{0.1}}
		uc := newTestUC(itemRepo, &fakeRecRepo{}, &fakeOutboxRepo{}, &fakeCacheRepo{}, &fakeVectorRepo{}, &fakeTrManager{}, embedder)

		err := uc.GenerateItemEmbedding(ctx, NewGenerateEmbeddingReq("link-1", "Title", "", ""))
		assert.NoError(t, err)
	})
}
