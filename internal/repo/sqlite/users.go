package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/accounthub/internal/domain/user"
	"github.com/geocoder89/accounthub/internal/observability"
	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

type UsersRepo struct {
	db   *sql.DB
	prom *observability.Prom
}

func NewUsersRepo(db *sql.DB, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{db: db, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_email", `WHERE email = ?`, email)
}

func (r *UsersRepo) getOne(ctx context.Context, op, where string, arg any) (user.User, error) {
	var (
		u                      user.User
		passwordHash, googleID sql.NullString
		createdAt, updatedAt   int64
	)

	err := r.observe(op, func() error {
		return r.db.QueryRowContext(ctx,
			`SELECT id, name, email, password_hash, google_id, created_at, updated_at
			 FROM users `+where,
			arg,
		).Scan(&u.ID, &u.Name, &u.Email, &passwordHash, &googleID, &createdAt, &updatedAt)
	})

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, fmt.Errorf("db error: %w", err)
	}

	u.PasswordHash = stringPtr(passwordHash)
	u.GoogleID = stringPtr(googleID)
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)

	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	u.ID = uuid.NewString()

	err := r.observe("users.create", func() error {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO users (id, name, email, password_hash, google_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			u.ID, u.Name, u.Email, nullString(u.PasswordHash), nullString(u.GoogleID),
			toMillis(u.CreatedAt), toMillis(u.UpdatedAt),
		)
		return err
	})

	if err != nil {
		if isEmailUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, fmt.Errorf("db error: %w", err)
	}

	return u, nil
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func isEmailUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "users.email")
}
