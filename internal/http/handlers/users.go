package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/accounthub/internal/account"
	"github.com/geocoder89/accounthub/internal/domain/user"
	"github.com/geocoder89/accounthub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type AccountService interface {
	Register(ctx context.Context, name, email, password string) (user.Profile, error)
	RegisterWithSSO(ctx context.Context, name, email, googleID string) (user.Profile, error)
	Login(ctx context.Context, email, password string) (user.LoginResult, error)
}

type UsersHandler struct {
	accounts AccountService
	log      *slog.Logger
}

func NewUsersHandler(accounts AccountService, log *slog.Logger) *UsersHandler {
	return &UsersHandler{accounts: accounts, log: log}
}

// bcrypt plus one or two store round trips
const accountOpTimeout = 5 * time.Second

func (h *UsersHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), accountOpTimeout)
	defer cancel()

	profile, err := h.accounts.Register(cctx, req.Name, req.Email, req.Password)
	if err != nil {
		h.respondAccountError(ctx, "register", err)
		return
	}

	ctx.JSON(http.StatusCreated, profile)
}

func (h *UsersHandler) RegisterGoogle(ctx *gin.Context) {
	var req user.RegisterSSORequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), accountOpTimeout)
	defer cancel()

	profile, err := h.accounts.RegisterWithSSO(cctx, req.Name, req.Email, req.GoogleID)
	if err != nil {
		h.respondAccountError(ctx, "register_sso", err)
		return
	}

	ctx.JSON(http.StatusCreated, profile)
}

func (h *UsersHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), accountOpTimeout)
	defer cancel()

	res, err := h.accounts.Login(cctx, req.Email, req.Password)
	if err != nil {
		h.respondAccountError(ctx, "login", err)
		return
	}

	ctx.JSON(http.StatusOK, res)
}

// Me runs behind RequireAuth, which already resolved the caller.
func (h *UsersHandler) Me(ctx *gin.Context) {
	id, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "no_token", "No token provided")
		return
	}

	ctx.JSON(http.StatusOK, id)
}

func (h *UsersHandler) respondAccountError(ctx *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, account.ErrUserExists):
		RespondError(ctx, http.StatusBadRequest, "user_exists", "User already exists", nil)
	case errors.Is(err, account.ErrPasswordTooLong):
		RespondError(ctx, http.StatusBadRequest, "password_too_long", "Password must be at most 72 bytes", nil)
	case errors.Is(err, account.ErrInvalidCredentials):
		RespondError(ctx, http.StatusBadRequest, "invalid_credentials", "Invalid credentials", nil)
	default:
		h.log.ErrorContext(ctx.Request.Context(), "account operation failed",
			"op", op,
			"err", err,
			"request_id", requestIDFrom(ctx),
		)
		RespondInternal(ctx, "Something went wrong")
	}
}
