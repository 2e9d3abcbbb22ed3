package db

import (
	"context"
	"errors"

	"github.com/geocoder89/accounthub/internal/account"
	"github.com/geocoder89/accounthub/internal/config"
)

// EnsureSeedUser registers the bootstrap account from config if one is
// configured. An existing account with that email is left untouched.
func EnsureSeedUser(ctx context.Context, svc *account.Service, cfg config.Config) (bool, error) {
	if cfg.SeedUserEmail == "" || cfg.SeedUserPassword == "" {
		return false, nil
	}

	_, err := svc.Register(ctx, cfg.SeedUserName, cfg.SeedUserEmail, cfg.SeedUserPassword)

	if errors.Is(err, account.ErrUserExists) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}
