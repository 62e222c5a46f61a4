package users

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/userauth/internal/common"
	"github.com/dmitrijs2005/userauth/internal/server/models"
)

// MemoryRepository is a process-local Repository. Create checks both unique
// keys and inserts under one write lock, so concurrent duplicates leave a
// single record.
type MemoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]*models.User
	byName  map[string]int64
	byEmail map[string]int64
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[int64]*models.User),
		byName:  make(map[string]int64),
		byEmail: make(map[string]int64),
		now:     time.Now,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[user.UserName]; ok {
		return nil, common.ErrAlreadyExists
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return nil, common.ErrAlreadyExists
	}

	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = r.now().UTC()

	stored := user.Clone()
	r.byID[stored.ID] = stored
	r.byName[stored.UserName] = stored.ID
	r.byEmail[stored.Email] = stored.ID

	return user, nil
}

func (r *MemoryRepository) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	return r.lookup(ctx, r.byName, userName)
}

func (r *MemoryRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.lookup(ctx, r.byEmail, email)
}

func (r *MemoryRepository) ExistsByUserName(ctx context.Context, userName string) (bool, error) {
	return r.exists(ctx, r.byName, userName)
}

func (r *MemoryRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, r.byEmail, email)
}

func (r *MemoryRepository) List(ctx context.Context) ([]*models.User, error) {
	return r.filter(ctx, func(*models.User) bool { return true })
}

func (r *MemoryRepository) FindByRole(ctx context.Context, role string) ([]*models.User, error) {
	return r.filter(ctx, func(u *models.User) bool { return slices.Contains(u.Roles, role) })
}

func (r *MemoryRepository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byName, u.UserName)
	delete(r.byEmail, u.Email)
	return nil
}

func (r *MemoryRepository) lookup(ctx context.Context, index map[string]int64, key string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := index[key]
	if !ok {
		return nil, common.ErrNotFound
	}
	return r.byID[id].Clone(), nil
}

func (r *MemoryRepository) exists(ctx context.Context, index map[string]int64, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := index[key]
	return ok, nil
}

func (r *MemoryRepository) filter(ctx context.Context, keep func(*models.User) bool) ([]*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*models.User, 0, len(r.byID))
	for _, u := range r.byID {
		if keep(u) {
			list = append(list, u.Clone())
		}
	}
	slices.SortFunc(list, func(a, b *models.User) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return list, nil
}
