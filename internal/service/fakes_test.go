package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kilimo-tech/farmgate-pos/internal/core"
)

// fakeProductRepo is an in-memory core.ProductRepository.
type fakeProductRepo struct {
	mu              sync.Mutex
	products        []*core.Product
	err             error
	fetchCalls      int
	lastCategoryIDs []string
}

func (f *fakeProductRepo) GetWithCategories(_ context.Context, categoryIDs []string) ([]*core.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	f.lastCategoryIDs = categoryIDs
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, id string) (*core.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: product %s", core.ErrNotFound, id)
}

// fakeReportCache is an in-memory core.ReportCache keyed by userID and key.
type fakeReportCache struct {
	mu      sync.Mutex
	entries map[string]map[string]*core.CachedReport
	getErr  error
	setErr  error
}

func newFakeReportCache() *fakeReportCache {
	return &fakeReportCache{entries: make(map[string]map[string]*core.CachedReport)}
}

func (f *fakeReportCache) Get(_ context.Context, userID, key string) (*core.CachedReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if entry, ok := f.entries[userID][key]; ok {
		return entry, nil
	}
	return nil, fmt.Errorf("%w: no cached report", core.ErrNotFound)
}

func (f *fakeReportCache) Set(_ context.Context, userID, key string, report *core.CachedReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	if f.entries[userID] == nil {
		f.entries[userID] = make(map[string]*core.CachedReport)
	}
	f.entries[userID][key] = report
	return nil
}

func (f *fakeReportCache) ClearUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, userID)
	return nil
}

func (f *fakeReportCache) count(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries[userID])
}

// fakeUserRepo is an in-memory core.UserRepository.
type fakeUserRepo struct {
	mu             sync.Mutex
	users          map[string]*core.User
	getByIDErr     error
	lastTemporary  bool
	resetCalls     int
	lastResetHash  string
	clearedFirstID string
}

func newFakeUserRepo(users ...*core.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*core.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("%w: user %s", core.ErrNotFound, id)
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", core.ErrNotFound, username)
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("%w: email %s", core.ErrNotFound, email)
}

func (f *fakeUserRepo) Create(_ context.Context, user *core.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id string, passwordHash string, temporary bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("%w: user %s", core.ErrNotFound, id)
	}
	u.PasswordHash = passwordHash
	u.TemporaryPassword = temporary
	f.lastTemporary = temporary
	return nil
}

func (f *fakeUserRepo) ClearFirstLogin(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("%w: user %s", core.ErrNotFound, id)
	}
	u.FirstLogin = false
	f.clearedFirstID = id
	return nil
}

func (f *fakeUserRepo) ResetPassword(_ context.Context, userID string, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("%w: user %s", core.ErrNotFound, userID)
	}
	u.PasswordHash = passwordHash
	u.TemporaryPassword = true
	f.resetCalls++
	f.lastResetHash = passwordHash
	return nil
}

// fixedClock returns a clock pinned to the pointed-at time, so tests can
// advance it between calls.
func fixedClock(at *time.Time) core.Clock {
	return func() time.Time { return *at }
}
