package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	deliverycontext "megafast/internal/delivery/context"
	"megafast/internal/domain/entity"
	domainerrors "megafast/internal/domain/errors"
	"megafast/internal/domain/repository"
	"megafast/internal/domain/service"
	"megafast/internal/usecase"

	"github.com/pkg/errors"
)

const bootstrapAdminName = "Administrateur"

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	userRepo repository.UserRepository
	hasher   service.PasswordHasher
	issuer   service.TokenIssuer
	logger   *slog.Logger
	now      func() time.Time
}

// NewSessionService is the constructor for sessionService.
// issuer is nil when identities come from Firebase; Login and Refresh are then disabled.
func NewSessionService(
	userRepo repository.UserRepository,
	hasher service.PasswordHasher,
	issuer service.TokenIssuer,
	logger *slog.Logger,
) usecase.SessionUsecase {
	return &sessionService{
		userRepo: userRepo,
		hasher:   hasher,
		issuer:   issuer,
		logger:   logger,
		now:      time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.Logger(ctx, srv.logger)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login checks credentials and issues a token pair.
func (srv *sessionService) Login(ctx context.Context, email, password string) (*usecase.LoginResult, error) {
	if srv.issuer == nil {
		return nil, domainerrors.ErrForbidden.WithDetails("local login is disabled")
	}

	user, err := srv.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}

		return nil, storeError(err, "failed to find user")
	}
	if user.PasswordHash == "" || !srv.hasher.Check(password, user.PasswordHash) {
		srv.log(ctx).Info("Login rejected", slog.String("user_id", user.ID))

		return nil, domainerrors.ErrInvalidCredentials
	}

	result, err := srv.issue(user)
	if err != nil {
		return nil, err
	}
	srv.log(ctx).Info("User logged in", slog.String("user_id", user.ID), slog.String("role", user.Role.String()))

	return result, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (srv *sessionService) Refresh(ctx context.Context, refreshToken string) (*usecase.LoginResult, error) {
	if srv.issuer == nil {
		return nil, domainerrors.ErrForbidden.WithDetails("local login is disabled")
	}

	userID, err := srv.issuer.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, domainerrors.ErrUnauthorized.WithDetails("invalid refresh token")
	}

	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUnauthorized.WithDetails("unknown user")
		}

		return nil, storeError(err, "failed to find user")
	}

	return srv.issue(user)
}

// ResolveCaller loads the profile of an authenticated user.
func (srv *sessionService) ResolveCaller(ctx context.Context, userID string) (*entity.UserProfile, error) {
	if userID == "" {
		return nil, domainerrors.ErrUnauthorized
	}

	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUnauthorized.WithDetails("no profile for this account")
		}

		return nil, storeError(err, "failed to resolve caller")
	}

	return user, nil
}

// EnsureAdmin creates the bootstrap admin when its email is still free.
func (srv *sessionService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	_, err := srv.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		srv.log(ctx).Debug("Bootstrap admin already exists", slog.String("email", email))

		return nil
	case !errors.Is(err, repository.ErrUserNotFound):
		return storeError(err, "failed to look up bootstrap admin")
	}

	hash, err := srv.hasher.Hash(password)
	if err != nil {
		return domainerrors.ErrPasswordHashFailed.WithDetails(err.Error())
	}

	admin := &entity.UserProfile{
		Email:        email,
		DisplayName:  bootstrapAdminName,
		Role:         entity.RoleAdmin,
		PasswordHash: hash,
		CreatedAt:    srv.now(),
	}
	if err := srv.userRepo.Create(ctx, admin); err != nil {
		return storeError(err, "failed to create bootstrap admin")
	}
	srv.log(ctx).Info("Bootstrap admin created", slog.String("user_id", admin.ID), slog.String("email", email))

	return nil
}

func (srv *sessionService) issue(user *entity.UserProfile) (*usecase.LoginResult, error) {
	accessToken, refreshToken, err := srv.issuer.GenerateTokens(user.ID, entity.Roles{user.Role}.ToStrings())
	if err != nil {
		return nil, domainerrors.ErrInternalError.WithDetails("failed to generate tokens")
	}

	return &usecase.LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(srv.issuer.GetAccessTokenDuration().Seconds()),
		User:         user,
	}, nil
}
