package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"signdesk/internal/model"
	"signdesk/internal/repository"
	"signdesk/internal/session"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrSignupFields       = errors.New("name and email are required")
)

// AuthService manages account creation and bearer-token sessions.
type AuthService interface {
	// Signup registers a new account with a bcrypt-hashed password.
	Signup(ctx context.Context, name, email, password string) (*model.User, error)

	// Login verifies the credentials and issues an opaque bearer token
	// backed by a Redis session with a TTL.
	Login(ctx context.Context, email, password string) (string, *model.User, error)

	// Logout revokes the session behind the token. Unknown tokens are a no-op.
	Logout(ctx context.Context, token string) error
}

type authService struct {
	users      repository.UserRepository
	sessions   *session.RedisStore
	sessionTTL time.Duration
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users repository.UserRepository, sessions *session.RedisStore, sessionTTL time.Duration) AuthService {
	return &authService{users: users, sessions: sessions, sessionTTL: sessionTTL}
}

func (s *authService) Signup(ctx context.Context, name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return nil, ErrSignupFields
	}
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	created, err := s.users.Create(ctx, user)
	if err != nil {
		// The FindByEmail check above races with concurrent signups; the
		// UNIQUE constraint on email is the authority.
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return "", nil, err
	}
	sess := session.Session{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.sessions.Save(ctx, token, sess, s.sessionTTL); err != nil {
		return "", nil, fmt.Errorf("save session: %w", err)
	}
	return token, user, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
