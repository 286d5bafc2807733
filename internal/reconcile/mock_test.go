package reconcile

import (
	"context"
	"sync"

	"github.com/KingPinFPV/basarometer-sub000/internal/model"
)

// mockBulk returns a fixed catalog, optionally alongside an error to
// exercise the partial-collection path.
type mockBulk struct {
	records []model.BaseRecord
	err     error
}

func (m *mockBulk) FetchBaseRecords(context.Context) ([]model.BaseRecord, error) {
	return m.records, m.err
}

// mockVerifier serves canned candidates per site and counts calls.
type mockVerifier struct {
	mu    sync.Mutex
	sites []string
	fn    func(site, query string) ([]model.CandidateRecord, error)
	calls int
}

func (m *mockVerifier) AvailableSites() []string { return m.sites }

func (m *mockVerifier) SearchSite(_ context.Context, site, query string) ([]model.CandidateRecord, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.fn == nil {
		return nil, nil
	}
	return m.fn(site, query)
}

func (m *mockVerifier) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
