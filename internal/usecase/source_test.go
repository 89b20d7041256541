package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stylefeed/go-backend/internal/cfg"
	"github.com/stylefeed/go-backend/internal/domain"
	"github.com/stylefeed/go-backend/pkg/e"
)

func TestIsTransientSourceErr(t *testing.T) {
	assert.True(t, IsTransientSourceErr(e.ErrNoCandidates))
	assert.True(t, IsTransientSourceErr(e.ErrEmbeddingUnavailable))
	assert.True(t, IsTransientSourceErr(e.ErrMalformedGeneration))
	assert.True(t, IsTransientSourceErr(context.DeadlineExceeded))
	assert.False(t, IsTransientSourceErr(errors.New("disk on fire")))
	assert.False(t, IsTransientSourceErr(nil))
}

func TestCorpusSimilaritySource(t *testing.T) {
	ctx := context.Background()
	recommendCfg := &cfg.RecommendCfg{MinCorpusSize: 2, CorpusLimit: 150, TopK: 8}

	corpus := []domain.SavedItem{
		{ID: "c1", Title: "Denim Jacket", Brand: "Levi's", URL: "https://shop/1", Embedding: []float32{1, 0}},
		{ID: "c2", Title: "Chinos", Brand: "Dockers", URL: "https://shop/2", Embedding: []float32{0, 1}},
	}

	t.Run("small corpus is a transient no-candidates error", func(t *testing.T) {
		repo := &fakeSavedItemRepo{corpus: corpus[:1]}
		source := NewCorpusSimilaritySource(repo, &fakeEmbedder{}, recommendCfg, fakeLogger{})

		_, err := source.Fetch(ctx, domain.NewStyleProfile("x"), nil, "u1")
		assert.ErrorIs(t, err, e.ErrNoCandidates)
		assert.True(t, IsTransientSourceErr(err))
	})

	t.Run("corpus read failure is fatal", func(t *testing.T) {
		repo := &fakeSavedItemRepo{corpusErr: errors.New("db down")}
		source := NewCorpusSimilaritySource(repo, &fakeEmbedder{}, recommendCfg, fakeLogger{})

		_, err := source.Fetch(ctx, domain.NewStyleProfile("x"), nil, "u1")
		require.Error(t, err)
		assert.False(t, IsTransientSourceErr(err))
	})

	t.Run("embeds the profile text when vector is missing", func(t *testing.T) {
		repo := &fakeSavedItemRepo{corpus: corpus}
		embedder := &fakeEmbedder{vector: []float32{1, 0}}
		source := NewCorpusSimilaritySource(repo, embedder, recommendCfg, fakeLogger{})

		profile := domain.NewStyleProfile("Levi's Denim Jacket")
		candidates, err := source.Fetch(ctx, profile, nil, "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, embedder.calls)
		assert.Equal(t, []float32{1, 0}, profile.Embedding)

		require.Len(t, candidates, 2)
		assert.Equal(t, "Denim Jacket", candidates[0].Title)
		require.NotNil(t, candidates[0].Score)
		assert.InDelta(t, 1.0, *candidates[0].Score, 1e-9)
	})

	t.Run("reuses an existing profile vector", func(t *testing.T) {
		repo := &fakeSavedItemRepo{corpus: corpus}
		embedder := &fakeEmbedder{}
		source := NewCorpusSimilaritySource(repo, embedder, recommendCfg, fakeLogger{})

		profile := &domain.StyleProfile{Summary: "x", Embedding: []float32{0, 1}}
		candidates, err := source.Fetch(ctx, profile, nil, "u1")
		require.NoError(t, err)
		assert.Zero(t, embedder.calls)
		assert.Equal(t, "Chinos", candidates[0].Title)
	})

	t.Run("embedding failure maps to transient unavailable", func(t *testing.T) {
		repo := &fakeSavedItemRepo{corpus: corpus}
		embedder := &fakeEmbedder{err: errors.New("429 too many requests")}
		source := NewCorpusSimilaritySource(repo, embedder, recommendCfg, fakeLogger{})

		_, err := source.Fetch(ctx, domain.NewStyleProfile("x"), nil, "u1")
		assert.ErrorIs(t, err, e.ErrEmbeddingUnavailable)
	})

	t.Run("respects top-k", func(t *testing.T) {
		repo := &fakeSavedItemRepo{corpus: corpus}
		source := NewCorpusSimilaritySource(repo, &fakeEmbedder{}, &cfg.RecommendCfg{MinCorpusSize: 2, CorpusLimit: 150, TopK: 1}, fakeLogger{})

		profile := &domain.StyleProfile{Summary: "x", Embedding: []float32{1, 0}}
		candidates, err := source.Fetch(ctx, profile, nil, "u1")
		require.NoError(t, err)
		assert.Len(t, candidates, 1)
	})
}

func TestGenerativeSource(t *testing.T) {
	ctx := context.Background()
	profile := domain.NewStyleProfile("COS Wool Coat 250")

	t.Run("maps a valid payload to candidates", func(t *testing.T) {
		generative := &fakeGenerative{raw: []byte(`{"recommendations":[
			{"title":"Cashmere Scarf","brand":"Acne Studios","price":"180","link":"https://shop/scarf","reason":"Completes the coat look"}
		]}`)}
		source := NewGenerativeSource(generative, fakeLogger{})

		candidates, err := source.Fetch(ctx, profile, nil, "u1")
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, "Cashmere Scarf", candidates[0].Title)
		assert.Equal(t, "https://shop/scarf", candidates[0].Link)
		assert.Equal(t, "Completes the coat look", candidates[0].Reason)
		assert.Nil(t, candidates[0].Score)
	})

	t.Run("invalid JSON is malformed generation", func(t *testing.T) {
		generative := &fakeGenerative{raw: []byte(`here are some products: ...`)}
		source := NewGenerativeSource(generative, fakeLogger{})

		_, err := source.Fetch(ctx, profile, nil, "u1")
		assert.ErrorIs(t, err, e.ErrMalformedGeneration)
	})

	t.Run("missing recommendations field is malformed generation", func(t *testing.T) {
		generative := &fakeGenerative{raw: []byte(`{"items":[]}`)}
		source := NewGenerativeSource(generative, fakeLogger{})

		_, err := source.Fetch(ctx, profile, nil, "u1")
		assert.ErrorIs(t, err, e.ErrMalformedGeneration)
	})

	t.Run("empty but present recommendations is a success", func(t *testing.T) {
		generative := &fakeGenerative{raw: []byte(`{"recommendations":[]}`)}
		source := NewGenerativeSource(generative, fakeLogger{})

		candidates, err := source.Fetch(ctx, profile, nil, "u1")
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})

	t.Run("transport error passes through", func(t *testing.T) {
		fatal := errors.New("connect: connection refused")
		generative := &fakeGenerative{err: fatal}
		source := NewGenerativeSource(generative, fakeLogger{})

		_, err := source.Fetch(ctx, profile, nil, "u1")
		assert.ErrorIs(t, err, fatal)
	})
}

func TestDiscoverySource(t *testing.T) {
	ctx := context.Background()
	discoveryCfg := &cfg.DiscoveryCfg{MaxResults: 5}
	profile := domain.NewStyleProfile("Nike Air Max 90 129.99")
	items := []domain.SavedItem{{URL: "https://shop/airmax"}}

	t.Run("primary query is by url when an item url exists", func(t *testing.T) {
		discovery := &fakeDiscovery{responses: []*DiscoverySearchRes{
			{Results: []DiscoveryItem{{Title: "Air Max 95", Source: "Nike", Price: "150", Link: "https://shop/95", Thumbnail: "https://cdn/95.jpg"}}},
		}}
		source := NewDiscoverySource(discovery, discoveryCfg, fakeLogger{})

		candidates, err := source.Fetch(ctx, profile, items, "u1")
		require.NoError(t, err)
		require.Len(t, discovery.requests, 1)
		assert.Equal(t, "https://shop/airmax", discovery.requests[0].URL)
		assert.Empty(t, discovery.requests[0].Query)

		require.Len(t, candidates, 1)
		assert.Equal(t, "Nike", candidates[0].Source)
	})

	t.Run("falls back to the text query form on failure", func(t *testing.T) {
		discovery := &fakeDiscovery{
			errs: []error{errors.New("upstream 500")},
			responses: []*DiscoverySearchRes{
				nil,
				{Results: []DiscoveryItem{{Title: "Found by text"}}},
			},
		}
		source := NewDiscoverySource(discovery, discoveryCfg, fakeLogger{})

		candidates, err := source.Fetch(ctx, profile, items, "u1")
		require.NoError(t, err)
		require.Len(t, discovery.requests, 2)
		assert.Empty(t, discovery.requests[1].URL)
		assert.Equal(t, profile.Summary, discovery.requests[1].Query)
		require.Len(t, candidates, 1)
		assert.Equal(t, "Found by text", candidates[0].Title)
	})

	t.Run("double failure gives empty success", func(t *testing.T) {
		discovery := &fakeDiscovery{errs: []error{errors.New("boom"), errors.New("boom again")}}
		source := NewDiscoverySource(discovery, discoveryCfg, fakeLogger{})

		candidates, err := source.Fetch(ctx, profile, items, "u1")
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})

	t.Run("no saved url means text query first", func(t *testing.T) {
		discovery := &fakeDiscovery{responses: []*DiscoverySearchRes{{}}}
		source := NewDiscoverySource(discovery, discoveryCfg, fakeLogger{})

		_, err := source.Fetch(ctx, profile, nil, "u1")
		require.NoError(t, err)
		require.Len(t, discovery.requests, 1)
		assert.Equal(t, profile.Summary, discovery.requests[0].Query)
	})
}
