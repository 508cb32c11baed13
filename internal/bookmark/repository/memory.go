package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AlibekovAA/linkmark/internal/bookmark/domain"
	userdomain "github.com/AlibekovAA/linkmark/internal/user/domain"
)

// OwnerLookup resolves owner details for bookmarks kept in memory.
type OwnerLookup interface {
	FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error)
}

// MemoryRepository keeps bookmarks in process memory. Transactions take the
// write lock for their whole duration and restore a snapshot on error.
type MemoryRepository struct {
	mu     sync.RWMutex
	byID   map[domain.ID]domain.Bookmark
	byCode map[string]domain.ID
	nextID domain.ID
	owners OwnerLookup
	now    func() time.Time
}

func NewMemoryRepository(owners OwnerLookup) *MemoryRepository {
	return &MemoryRepository{
		byID:   make(map[domain.ID]domain.Bookmark),
		byCode: make(map[string]domain.ID),
		owners: owners,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepository) List(ctx context.Context, query domain.ListQuery) ([]domain.Bookmark, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(query.Search)
	matched := make([]domain.Bookmark, 0)
	for _, b := range r.byID {
		if b.UserID != query.UserID {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(b.Body), needle) &&
			!strings.Contains(strings.ToLower(b.URL), needle) &&
			!strings.Contains(strings.ToLower(b.ShortCode), needle) {
			continue
		}
		matched = append(matched, b)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	if query.Offset >= len(matched) {
		return []domain.Bookmark{}, nil
	}
	matched = matched[query.Offset:]
	if query.Limit >= 0 && query.Limit < len(matched) {
		matched = matched[:query.Limit]
	}

	for i := range matched {
		matched[i] = r.withOwner(ctx, matched[i])
	}
	return matched, nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id domain.ID) (domain.Bookmark, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.byID[id]
	if !ok {
		return domain.Bookmark{}, ErrBookmarkNotFound
	}
	return r.withOwner(ctx, b), nil
}

func (r *MemoryRepository) Stats(_ context.Context, userID userdomain.ID) ([]domain.Stat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := []domain.Stat{}
	for _, b := range r.byID {
		if b.UserID == userID {
			stats = append(stats, domain.Stat{ID: b.ID, URL: b.URL, ShortCode: b.ShortCode, Visits: b.Visits})
		}
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].ID < stats[j].ID })
	return stats, nil
}

func (r *MemoryRepository) IncrementVisits(_ context.Context, code string) (domain.Visit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byCode[code]
	if !ok {
		return domain.Visit{}, ErrBookmarkNotFound
	}
	b := r.byID[id]
	b.Visits++
	r.byID[id] = b
	return domain.Visit{URL: b.URL, Visits: b.Visits}, nil
}

func (r *MemoryRepository) ShortCodeExists(_ context.Context, code string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byCode[code]
	return ok, nil
}

func (r *MemoryRepository) WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := r.snapshot()
	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.restore(snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	byID   map[domain.ID]domain.Bookmark
	byCode map[string]domain.ID
	nextID domain.ID
}

func (r *MemoryRepository) snapshot() memorySnapshot {
	s := memorySnapshot{
		byID:   make(map[domain.ID]domain.Bookmark, len(r.byID)),
		byCode: make(map[string]domain.ID, len(r.byCode)),
		nextID: r.nextID,
	}
	for k, v := range r.byID {
		s.byID[k] = v
	}
	for k, v := range r.byCode {
		s.byCode[k] = v
	}
	return s
}

func (r *MemoryRepository) restore(s memorySnapshot) {
	r.byID = s.byID
	r.byCode = s.byCode
	r.nextID = s.nextID
}

func (r *MemoryRepository) withOwner(ctx context.Context, b domain.Bookmark) domain.Bookmark {
	b.Owner.ID = b.UserID
	if r.owners == nil {
		return b
	}
	if user, err := r.owners.FindByID(ctx, b.UserID); err == nil {
		b.Owner = user.Summary()
	}
	return b
}

// memoryTx runs with the repository write lock already held.
type memoryTx struct {
	repo *MemoryRepository
}

func (t *memoryTx) LockURL(context.Context, string) error {
	return nil
}

func (t *memoryTx) URLExists(_ context.Context, url string) (bool, error) {
	for _, b := range t.repo.byID {
		if b.URL == url {
			return true, nil
		}
	}
	return false, nil
}

func (t *memoryTx) ShortCodeExists(_ context.Context, code string) (bool, error) {
	_, ok := t.repo.byCode[code]
	return ok, nil
}

func (t *memoryTx) Insert(ctx context.Context, b domain.Bookmark) (domain.Bookmark, error) {
	if _, taken := t.repo.byCode[b.ShortCode]; taken {
		return domain.Bookmark{}, ErrShortCodeTaken
	}

	t.repo.nextID++
	now := t.repo.now()
	b.ID = t.repo.nextID
	b.Visits = 0
	b.CreatedAt = now
	b.UpdatedAt = now

	t.repo.byID[b.ID] = b
	t.repo.byCode[b.ShortCode] = b.ID
	return t.repo.withOwner(ctx, b), nil
}

func (t *memoryTx) FindByIDForUpdate(ctx context.Context, id domain.ID) (domain.Bookmark, error) {
	b, ok := t.repo.byID[id]
	if !ok {
		return domain.Bookmark{}, ErrBookmarkNotFound
	}
	return t.repo.withOwner(ctx, b), nil
}

func (t *memoryTx) Update(ctx context.Context, b domain.Bookmark) (domain.Bookmark, error) {
	stored, ok := t.repo.byID[b.ID]
	if !ok {
		return domain.Bookmark{}, ErrBookmarkNotFound
	}
	stored.Body = b.Body
	stored.URL = b.URL
	stored.UpdatedAt = t.repo.now()
	t.repo.byID[b.ID] = stored
	return t.repo.withOwner(ctx, stored), nil
}

func (t *memoryTx) Delete(_ context.Context, id domain.ID) error {
	b, ok := t.repo.byID[id]
	if !ok {
		return ErrBookmarkNotFound
	}
	delete(t.repo.byID, id)
	delete(t.repo.byCode, b.ShortCode)
	return nil
}
