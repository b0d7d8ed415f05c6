package service

import (
	"context"
	"log/slog"
	"strings"

	"biolink/internal/cache"
	"biolink/internal/middleware"
	"biolink/internal/models"
	"biolink/internal/observability"
	"biolink/internal/repository"
	"biolink/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	users    repository.UserRepository
	sessions *SessionManager
	cache    *cache.Store
	hashCost int
}

type RegisterInput struct {
	Username string
	Password string
	Confirm  string
}

func NewAuthService(users repository.UserRepository, sessions *SessionManager, store *cache.Store) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		cache:    store,
		hashCost: bcrypt.DefaultCost,
	}
}

// Register creates a user with a bcrypt password hash.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	span, ctx := observability.StartSpan(ctx, "auth.Register")
	defer span.End()

	username := strings.TrimSpace(in.Username)
	if err := validation.ValidateRegistration(username, in.Password, in.Confirm); err != nil {
		observability.AuthEvents.WithLabelValues("register", "invalid").Inc()
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if existing != nil {
		observability.AuthEvents.WithLabelValues("register", "duplicate").Inc()
		return nil, models.NewDuplicateUsernameError(username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		span.SetError(err)
		return nil, models.NewInternalError(err)
	}

	user := &models.User{Username: username, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent register can still lose the race on the unique index.
		if models.IsCode(err, models.CodeDuplicateUsername) {
			observability.AuthEvents.WithLabelValues("register", "duplicate").Inc()
		}
		span.SetError(err)
		return nil, err
	}

	observability.AuthEvents.WithLabelValues("register", "ok").Inc()
	middleware.Logger.InfoContext(ctx, "User registered", slog.Uint64("user_id", uint64(user.ID)))
	return user, nil
}

// Login verifies credentials and issues a new session. Unknown users and wrong
// passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	span, ctx := observability.StartSpan(ctx, "auth.Login")
	defer span.End()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		observability.AuthEvents.WithLabelValues("login", "invalid").Inc()
		return nil, models.NewInvalidCredentialsError()
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		observability.AuthEvents.WithLabelValues("login", "rejected").Inc()
		return nil, models.NewInvalidCredentialsError()
	}

	session, err := s.sessions.Issue(user.ID)
	if err != nil {
		span.SetError(err)
		return nil, models.NewInternalError(err)
	}
	session.User = user

	span.AddAttributes(attribute.Int64("user.id", int64(user.ID)))
	observability.AuthEvents.WithLabelValues("login", "ok").Inc()
	return session, nil
}

// Logout revokes the token's jti until its natural expiry. Invalid tokens and a
// missing cache are not errors.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	observability.AuthEvents.WithLabelValues("logout", "ok").Inc()

	claims, err := s.sessions.Parse(token)
	if err != nil {
		return nil
	}
	if err := s.cache.RevokeSession(ctx, claims.JTI, claims.ExpiresAt); err != nil {
		middleware.Logger.WarnContext(ctx, "Failed to revoke session", slog.String("error", err.Error()))
	}
	return nil
}

// CurrentUser resolves token to its user. It returns nil, nil for absent,
// invalid, expired or revoked tokens and for users that no longer exist.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}

	claims, err := s.sessions.Parse(token)
	if err != nil {
		return nil, nil
	}
	if s.cache.IsSessionRevoked(ctx, claims.JTI) {
		return nil, nil
	}

	return s.users.GetByID(ctx, claims.UserID)
}
