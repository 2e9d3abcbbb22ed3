package db

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/geocoder89/accounthub/internal/account"
	"github.com/geocoder89/accounthub/internal/auth"
	"github.com/geocoder89/accounthub/internal/config"
	"github.com/geocoder89/accounthub/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpen_SQLiteMigratesAndPings(t *testing.T) {
	cfg := config.Config{
		StoreDriver: config.DriverSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "accounthub.db"),
	}

	store, err := Open(context.Background(), cfg, nil, discard())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Ping(context.Background()))
	assert.Equal(t, config.DriverSQLite, store.Driver)

	// migrations are idempotent
	reopened, err := Open(context.Background(), cfg, nil, discard())
	require.NoError(t, err)
	reopened.Close()
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.Config{StoreDriver: "mongo"}, nil, discard())
	require.Error(t, err)
}

func TestEnsureSeedUser(t *testing.T) {
	store, err := Open(context.Background(), config.Config{StoreDriver: config.DriverMemory}, nil, discard())
	require.NoError(t, err)

	svc := account.NewService(store.Users, security.NewPasswordHasher(bcrypt.MinCost), auth.NewManager("k"), discard(), nil)

	cfg := config.Config{SeedUserEmail: "admin@example.com", SeedUserPassword: "password123", SeedUserName: "Admin"}

	created, err := EnsureSeedUser(context.Background(), svc, cfg)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = EnsureSeedUser(context.Background(), svc, cfg)
	require.NoError(t, err)
	assert.False(t, created)

	_, err = svc.Login(context.Background(), "admin@example.com", "password123")
	require.NoError(t, err)

	created, err = EnsureSeedUser(context.Background(), svc, config.Config{})
	require.NoError(t, err)
	assert.False(t, created)
}
