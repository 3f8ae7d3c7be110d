package search

import (
	"context"
	"sync"

	"github.com/kailas-cloud/placesearch/internal/domain/place"
	"github.com/kailas-cloud/placesearch/internal/domain/search/result"
	"github.com/kailas-cloud/placesearch/internal/workers"
)

// --- Mocks ---

type mockStore struct {
	mu sync.Mutex

	byIDsFn      func(ids []int64, radius float64) ([]place.WithDistance, error)
	byCategoryFn func(category string, radius float64) ([]place.WithDistance, error)
	recordsFn    func(ids []int64) ([]place.Place, error)

	byIDsCalls      int
	byCategoryCalls int
	recordsCalls    int
}

func (m *mockStore) WithinRadiusByIDs(
	_ context.Context, ids []int64, _, _, radius float64,
) ([]place.WithDistance, error) {
	m.mu.Lock()
	m.byIDsCalls++
	m.mu.Unlock()
	if m.byIDsFn == nil {
		return nil, nil
	}
	return m.byIDsFn(ids, radius)
}

func (m *mockStore) WithinRadiusByCategory(
	_ context.Context, category string, _, _, radius float64,
) ([]place.WithDistance, error) {
	m.mu.Lock()
	m.byCategoryCalls++
	m.mu.Unlock()
	if m.byCategoryFn == nil {
		return nil, nil
	}
	return m.byCategoryFn(category, radius)
}

func (m *mockStore) ByIDsWithKeywords(_ context.Context, ids []int64) ([]place.Place, error) {
	m.mu.Lock()
	m.recordsCalls++
	m.mu.Unlock()
	if m.recordsFn == nil {
		return nil, nil
	}
	return m.recordsFn(ids)
}

func (m *mockStore) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byIDsCalls + m.byCategoryCalls + m.recordsCalls
}

type mockMoments struct {
	counts map[int64]int64
	err    error
	calls  int
	mu     sync.Mutex
}

func (m *mockMoments) CountPublicByPlaceIDs(_ context.Context, _ []int64) (map[int64]int64, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.counts == nil {
		return map[int64]int64{}, nil
	}
	return m.counts, nil
}

// mockBookmarks answers per requester; a nil requester yields an empty map.
type mockBookmarks struct {
	byUser     map[int64]map[int64]bool
	err        error
	calls      int
	requesters []*int64
	mu         sync.Mutex
}

func (m *mockBookmarks) StatusMap(_ context.Context, requester *int64, _ []int64) (map[int64]bool, error) {
	m.mu.Lock()
	m.calls++
	m.requesters = append(m.requesters, requester)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if requester == nil {
		return map[int64]bool{}, nil
	}
	if s, ok := m.byUser[*requester]; ok {
		return s, nil
	}
	return map[int64]bool{}, nil
}

type mockRecommender struct {
	resp           place.AIResponse
	err            error
	calls          int
	lastQuery      string
	lastCredential string
}

func (m *mockRecommender) Recommend(_ context.Context, query, credential string) (place.AIResponse, error) {
	m.calls++
	m.lastQuery = query
	m.lastCredential = credential
	return m.resp, m.err
}

type cacheKey struct {
	category string
	lat, lng float64
}

// mockCache is an exact-key in-memory cache.
type mockCache struct {
	entries map[cacheKey][]result.Cached
	getErr  error
	putErr  error
	gets    int
	puts    int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[cacheKey][]result.Cached)}
}

func (m *mockCache) Get(_ context.Context, category string, lat, lng float64) ([]result.Cached, bool, error) {
	m.gets++
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	items, ok := m.entries[cacheKey{category, lat, lng}]
	return items, ok, nil
}

func (m *mockCache) Put(_ context.Context, category string, lat, lng float64, items []result.Cached) error {
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	m.entries[cacheKey{category, lat, lng}] = items
	return nil
}

// --- Helpers ---

type fixture struct {
	store     *mockStore
	moments   *mockMoments
	bookmarks *mockBookmarks
	rec       *mockRecommender
	cache     *mockCache
}

func newFixture() *fixture {
	return &fixture{
		store:     &mockStore{},
		moments:   &mockMoments{},
		bookmarks: &mockBookmarks{},
		rec:       &mockRecommender{},
		cache:     newMockCache(),
	}
}

func (f *fixture) collaborators() Collaborators {
	return Collaborators{
		Store:     f.store,
		Moments:   f.moments,
		Bookmarks: f.bookmarks,
		Pool:      workers.NewPool(4),
	}
}

func (f *fixture) aiStrategy(radius, fallback float64) *AIQueryStrategy {
	return NewAIQueryStrategy(f.collaborators(), f.rec, NewAssembler(), radius, fallback)
}

func (f *fixture) categoryStrategy(radius float64) *CategoryStrategy {
	return NewCategoryStrategy(f.collaborators(), f.cache, NewAssembler(), radius)
}

func f64(v float64) *float64 { return &v }

func i64(v int64) *int64 { return &v }

func ids(items []result.Item) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func sameIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
