// Package redis stores accounts in Redis: one hash per user plus a string key
// per email pointing at the user id. Claiming the email key and writing the
// hash happen in one server-side script, so a user either exists with its
// email index or not at all.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/geocoder89/accounthub/internal/domain/user"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "accounthub"

// KEYS[1] email key, KEYS[2] user hash; ARGV[1] user id, then field/value pairs.
var createUserScript = goredis.NewScript(`
if redis.call("SETNX", KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call("HSET", KEYS[2], unpack(ARGV, 2))
return 1
`)

type UsersRepo struct {
	rdb    *goredis.Client
	prefix string
}

func NewUsersRepo(rdb *goredis.Client, prefix string) *UsersRepo {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &UsersRepo{rdb: rdb, prefix: prefix}
}

func (r *UsersRepo) userKey(id string) string {
	return r.prefix + ":user:" + id
}

func (r *UsersRepo) emailKey(email string) string {
	return r.prefix + ":user_email:" + email
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	id, err := r.rdb.Get(ctx, r.emailKey(email)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, fmt.Errorf("redis error: %w", err)
	}

	return r.getByID(ctx, id)
}

func (r *UsersRepo) getByID(ctx context.Context, id string) (user.User, error) {
	fields, err := r.rdb.HGetAll(ctx, r.userKey(id)).Result()
	if err != nil {
		return user.User{}, fmt.Errorf("redis error: %w", err)
	}

	// the email key can briefly exist before its hash is written
	if len(fields) == 0 {
		return user.User{}, user.ErrNotFound
	}

	return decodeUser(fields)
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	u.ID = uuid.NewString()

	args := []any{u.ID}
	for field, value := range encodeUser(u) {
		args = append(args, field, value)
	}

	created, err := createUserScript.Run(ctx, r.rdb, []string{r.emailKey(u.Email), r.userKey(u.ID)}, args...).Int()
	if err != nil {
		return user.User{}, fmt.Errorf("redis error: %w", err)
	}
	if created == 0 {
		return user.User{}, user.ErrEmailTaken
	}

	return u, nil
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func encodeUser(u user.User) map[string]any {
	fields := map[string]any{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"created_at": u.CreatedAt.UTC().UnixMilli(),
		"updated_at": u.UpdatedAt.UTC().UnixMilli(),
	}

	if u.PasswordHash != nil {
		fields["password_hash"] = *u.PasswordHash
	}
	if u.GoogleID != nil {
		fields["google_id"] = *u.GoogleID
	}

	return fields
}

func decodeUser(fields map[string]string) (user.User, error) {
	u := user.User{
		ID:    fields["id"],
		Name:  fields["name"],
		Email: fields["email"],
	}

	if v, ok := fields["password_hash"]; ok {
		u.PasswordHash = &v
	}
	if v, ok := fields["google_id"]; ok {
		u.GoogleID = &v
	}

	created, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return user.User{}, fmt.Errorf("decode created_at: %w", err)
	}
	updated, err := strconv.ParseInt(fields["updated_at"], 10, 64)
	if err != nil {
		return user.User{}, fmt.Errorf("decode updated_at: %w", err)
	}

	u.CreatedAt = time.UnixMilli(created).UTC()
	u.UpdatedAt = time.UnixMilli(updated).UTC()

	return u, nil
}
