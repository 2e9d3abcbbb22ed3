// Package account implements registration, login and caller identity
// resolution on top of a credential store, a password hasher and a token manager.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/geocoder89/accounthub/internal/auth"
	"github.com/geocoder89/accounthub/internal/domain/user"
	"github.com/geocoder89/accounthub/internal/security"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPasswordTooLong is returned by Register for passwords bcrypt cannot hash.
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

// UserStore is the credential store. GetByEmail returns user.ErrNotFound when
// no account matches; Create assigns the ID and returns user.ErrEmailTaken if
// the store itself rejects a duplicate email.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

type TokenManager interface {
	Issue(userID, email string) (string, error)
	Verify(token string) (*auth.Claims, error)
}

// Recorder receives one outcome per operation. Optional.
type Recorder interface {
	ObserveAuth(op, result string)
}

type Service struct {
	users    UserStore
	hasher   PasswordHasher
	tokens   TokenManager
	log      *slog.Logger
	recorder Recorder
	tracer   trace.Tracer
}

func NewService(users UserStore, hasher PasswordHasher, tokens TokenManager, log *slog.Logger, recorder Recorder) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		log:      log,
		recorder: recorder,
		tracer:   otel.Tracer("github.com/geocoder89/accounthub/internal/account"),
	}
}

func (s *Service) Register(ctx context.Context, name, email, password string) (p user.Profile, err error) {
	ctx, span := s.tracer.Start(ctx, "account.Register")
	defer func() { s.finish(span, "register", err) }()

	if len(password) > security.MaxPasswordBytes {
		err = ErrPasswordTooLong
		return
	}

	err = s.ensureEmailFree(ctx, email)
	if err != nil {
		return
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		err = fmt.Errorf("hash password: %w", err)
		return
	}

	return s.create(ctx, user.NewWithPassword(name, email, hash))
}

// RegisterWithSSO creates an account bound to a Google identity. googleId
// uniqueness is not checked here or by the stores: two emails may share one.
func (s *Service) RegisterWithSSO(ctx context.Context, name, email, googleID string) (p user.Profile, err error) {
	ctx, span := s.tracer.Start(ctx, "account.RegisterWithSSO")
	defer func() { s.finish(span, "register_sso", err) }()

	err = s.ensureEmailFree(ctx, email)
	if err != nil {
		return
	}

	return s.create(ctx, user.NewWithGoogle(name, email, googleID))
}

func (s *Service) Login(ctx context.Context, email, password string) (res user.LoginResult, err error) {
	ctx, span := s.tracer.Start(ctx, "account.Login")
	defer func() { s.finish(span, "login", err) }()

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			err = ErrInvalidCredentials
			return
		}
		err = fmt.Errorf("find user by email: %w", err)
		return
	}

	if !u.HasPassword() {
		s.log.DebugContext(ctx, "password login on sso account", "user_id", u.ID)
		err = ErrInvalidCredentials
		return
	}

	if !s.hasher.Verify(password, *u.PasswordHash) {
		err = ErrInvalidCredentials
		return
	}

	token, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		err = fmt.Errorf("issue token: %w", err)
		return
	}

	span.SetAttributes(attribute.String("user.id", u.ID))

	return user.LoginResult{Token: token, User: u.Profile()}, nil
}

// WhoAmI resolves the caller from an Authorization header value. The claims are
// returned as-is; the store is not consulted.
func (s *Service) WhoAmI(ctx context.Context, authorization string) (id user.Identity, err error) {
	ctx, span := s.tracer.Start(ctx, "account.WhoAmI")
	defer func() { s.finish(span, "whoami", err) }()

	raw := auth.BearerToken(authorization)
	if raw == "" {
		err = auth.ErrNoToken
		return
	}

	claims, err := s.tokens.Verify(raw)
	if err != nil {
		s.log.DebugContext(ctx, "token rejected", "err", err)
		return
	}

	return user.Identity{ID: claims.UserID, Email: claims.Email}, nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.users.GetByEmail(ctx, email)

	switch {
	case err == nil:
		return ErrUserExists
	case errors.Is(err, user.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("find user by email: %w", err)
	}
}

func (s *Service) create(ctx context.Context, u user.User) (user.Profile, error) {
	created, err := s.users.Create(ctx, u)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			// lost the check-then-insert race; the store constraint caught it
			s.log.WarnContext(ctx, "duplicate email rejected by store")
			return user.Profile{}, ErrUserExists
		}
		return user.Profile{}, fmt.Errorf("create user: %w", err)
	}

	return created.Profile(), nil
}

func (s *Service) finish(span trace.Span, op string, err error) {
	defer span.End()

	result := Outcome(err)
	if s.recorder != nil {
		s.recorder.ObserveAuth(op, result)
	}

	if err != nil && result == "error" {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.String("account.result", result))
}

// Outcome maps an operation error to a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUserExists):
		return "user_exists"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrPasswordTooLong):
		return "password_too_long"
	case errors.Is(err, auth.ErrNoToken):
		return "no_token"
	case errors.Is(err, auth.ErrExpiredToken):
		return "expired_token"
	case errors.Is(err, auth.ErrInvalidToken):
		return "invalid_token"
	default:
		return "error"
	}
}
