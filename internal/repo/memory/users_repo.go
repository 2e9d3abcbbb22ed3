package memory

import (
	"context"
	"sync"

	"github.com/geocoder89/accounthub/internal/domain/user"
	"github.com/google/uuid"
)

// UsersRepo keeps accounts in process memory. Email uniqueness is enforced
// under the write lock, so concurrent duplicate inserts cannot both succeed.
type UsersRepo struct {
	mu      sync.RWMutex
	items   map[string]user.User // id -> user
	byEmail map[string]string    // email -> id
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items:   make(map[string]user.User),
		byEmail: make(map[string]string),
	}
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return r.items[id], nil
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[u.Email]; taken {
		return user.User{}, user.ErrEmailTaken
	}

	u.ID = uuid.NewString()
	r.items[u.ID] = u
	r.byEmail[u.Email] = u.ID

	return u, nil
}

// Count reports how many accounts are stored; tests use it to assert on inserts.
func (r *UsersRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return nil
}
