// Package auth covers account registration, login and request
// authentication. Passwords are stored as bcrypt hashes; sessions are
// stateless HS256 JWTs carrying the user id as subject.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserStore persists accounts. CreateUser returns ErrUserExists on a
// username collision; UserByUsername returns ErrInvalidCredentials for
// unknown names so callers cannot probe for accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u User) error
	UserByUsername(ctx context.Context, username string) (User, error)
	UserByID(ctx context.Context, id string) (User, error)
}

type Service struct {
	users  UserStore
	secret []byte
	ttl    time.Duration

	now func() time.Time
}

func NewService(users UserStore, secret string, ttl time.Duration) *Service {
	return &Service{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Register creates an account and returns a fresh session token.
func (s *Service) Register(ctx context.Context, username, password string) (User, string, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 {
		return User{}, "", fmt.Errorf("%w: username must be at least 3 characters", ErrInvalidCredentials)
	}
	if len(password) < 8 {
		return User{}, "", fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, "", fmt.Errorf("hash password: %w", err)
	}

	u := User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return User{}, "", err
	}

	token, err := s.issueToken(u)
	if err != nil {
		return User{}, "", err
	}
	return u, token, nil
}

// Login checks the credentials and returns a fresh session token.
func (s *Service) Login(ctx context.Context, username, password string) (User, string, error) {
	u, err := s.users.UserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return User{}, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, "", ErrInvalidCredentials
	}
	token, err := s.issueToken(u)
	if err != nil {
		return User{}, "", err
	}
	return u, token, nil
}

// Verify parses a bearer token and returns the subject user id.
func (s *Service) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// CurrentUser resolves a bearer token to its account.
func (s *Service) CurrentUser(ctx context.Context, tokenString string) (User, error) {
	id, err := s.Verify(tokenString)
	if err != nil {
		return User{}, err
	}
	u, err := s.users.UserByID(ctx, id)
	if err != nil {
		return User{}, ErrInvalidToken
	}
	return u, nil
}

func (s *Service) issueToken(u User) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   u.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
