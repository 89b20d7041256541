package usecase

import (
	"context"
	"sync"

	trm "github.com/avito-tech/go-transaction-manager/trm/v2"

	"github.com/stylefeed/go-backend/internal/domain"
)

type fakeLogger struct{}

func (fakeLogger) Debugf(format string, args ...any)            {}
func (fakeLogger) Infof(format string, args ...any)             {}
func (fakeLogger) Warnf(format string, args ...any)             {}
func (fakeLogger) Errorf(err error, format string, args ...any) {}

type fakeSavedItemRepo struct {
	items     []domain.SavedItem
	itemsErr  error
	corpus    []domain.SavedItem
	corpusErr error

	byID     *domain.SavedItem
	byIDErr  error
	updated  map[string][]float32
	updateMu sync.Mutex
}

func (f *fakeSavedItemRepo) ListByUser(ctx context.Context, userID string) ([]domain.SavedItem, error) {
	return f.items, f.itemsErr
}

func (f *fakeSavedItemRepo) GetByID(ctx context.Context, id string) (*domain.SavedItem, error) {
	return f.byID, f.byIDErr
}

func (f *fakeSavedItemRepo) ListEmbeddedExcluding(ctx context.Context, userID string, limit int) ([]domain.SavedItem, error) {
	return f.corpus, f.corpusErr
}

func (f *fakeSavedItemRepo) UpdateEmbedding(ctx context.Context, id string, vector []float32) error {
	f.updateMu.Lock()
	defer f.updateMu.Unlock()
	if f.updated == nil {
		f.updated = make(map[string][]float32)
	}
	f.updated[id] = vector
	return nil
}

type fakeRecRepo struct {
	created [][]domain.Recommendation
	crErr   error
	list    []domain.Recommendation
	listErr error
}

func (f *fakeRecRepo) CreateBatch(ctx context.Context, recs []domain.Recommendation) error {
	if f.crErr != nil {
		return f.crErr
	}
	f.created = append(f.created, recs)
	return nil
}

func (f *fakeRecRepo) ListByUser(ctx context.Context, userID string) ([]domain.Recommendation, error) {
	return f.list, f.listErr
}

type fakeOutboxRepo struct {
	created []*OutboxEvent
}

func (f *fakeOutboxRepo) Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	f.created = append(f.created, event)
	return event, nil
}

func (f *fakeOutboxRepo) GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) MarkAsProcessed(ctx context.Context, id int64) error {
	return nil
}

type fakeCacheRepo struct {
	mu      sync.Mutex
	stored  map[string][]RecommendationInfo
	deleted []string
	getErr  error
}

func (f *fakeCacheRepo) GetRecommendations(ctx context.Context, userID string) ([]RecommendationInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.stored[userID], nil
}

func (f *fakeCacheRepo) SetRecommendations(ctx context.Context, userID string, recs []RecommendationInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stored == nil {
		f.stored = make(map[string][]RecommendationInfo)
	}
	f.stored[userID] = recs
	return nil
}

func (f *fakeCacheRepo) DeleteRecommendations(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, userID)
	return nil
}

type fakeVectorRepo struct {
	upserts [][]domain.Embedding
}

func (f *fakeVectorRepo) Upsert(ctx context.Context, vectors []domain.Embedding) error {
	f.upserts = append(f.upserts, vectors)
	return nil
}

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	return f.vector, f.err
}

type fakeGenerative struct {
	raw []byte
	err error
}

func (f *fakeGenerative) Generate(ctx context.Context, systemPrompt, userPrompt string) ([]byte, error) {
	return f.raw, f.err
}

type fakeDiscovery struct {
	requests  []*DiscoverySearchReq
	responses []*DiscoverySearchRes
	errs      []error
}

func (f *fakeDiscovery) Search(ctx context.Context, req *DiscoverySearchReq) (*DiscoverySearchRes, error) {
	i := len(f.requests)
	f.requests = append(f.requests, req)
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return &DiscoverySearchRes{}, nil
}

type fakeSource struct {
	name       string
	candidates []domain.Candidate
	err        error
	calls      int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(ctx context.Context, profile *domain.StyleProfile, items []domain.SavedItem, userID string) ([]domain.Candidate, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates, nil
}

type fakeTrManager struct {
	err error
}

func (f *fakeTrManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(ctx)
}

func (f *fakeTrManager) DoWithSettings(ctx context.Context, settings trm.Settings, fn func(ctx context.Context) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(ctx)
}
