package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"rivo_backend/internal/auth/password"
	"rivo_backend/internal/auth/repository"
	"rivo_backend/platform/apperr"
	"rivo_backend/platform/config"
	"rivo_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
)

const (
	accessTokenType = "access"

	RoleAdmin = "admin"
	RoleUser  = "user"

	msgInvalidCredentials = "invalid credentials"
	msgAccountInactive    = "account is inactive"
)

// PasswordSource supplies the current bcrypt hash of the system password.
type PasswordSource interface {
	SystemPasswordHash() string
}

type Service struct {
	repo     repository.UserReader
	cfg      config.AuthServiceConfig
	password PasswordSource
	log      *logger.Logger
	now      func() time.Time
}

func New(repo repository.UserReader, cfg config.AuthServiceConfig, pw PasswordSource, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, password: pw, log: log, now: time.Now}
}

// Login checks the shared system password, then the user's status, and
// issues an access token.
func (s *Service) Login(ctx context.Context, login, plainPassword string) (string, time.Time, Profile, error) {
	hash := s.password.SystemPasswordHash()
	if hash == "" || password.Compare(hash, plainPassword) != nil {
		s.log.AuthEvent("login", login, false, "bad password")
		return "", time.Time{}, Profile{}, apperr.Unauthorized(msgInvalidCredentials)
	}

	user, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.AuthEvent("login", login, false, "unknown user")
			return "", time.Time{}, Profile{}, apperr.Unauthorized(msgInvalidCredentials)
		}
		return "", time.Time{}, Profile{}, err
	}

	if user.Status == repository.StatusInactive {
		s.log.AuthEvent("login", login, false, "inactive")
		return "", time.Time{}, Profile{}, apperr.Forbidden(msgAccountInactive)
	}

	token, expiresAt, err := s.signAccessToken(user)
	if err != nil {
		return "", time.Time{}, Profile{}, apperr.Internal("failed to issue token", err)
	}

	s.log.AuthEvent("login", user.Username, true, "")
	return token, expiresAt, toProfile(user), nil
}

func (s *Service) GetMe(ctx context.Context, userID int64) (Profile, error) {
	return s.GetUserByID(ctx, userID)
}

// GetUserByID returns the profile of a user.
func (s *Service) GetUserByID(ctx context.Context, userID int64) (Profile, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Profile{}, apperr.NotFound("user not found")
		}
		return Profile{}, err
	}
	return toProfile(user), nil
}

func (s *Service) signAccessToken(user repository.User) (string, time.Time, error) {
	roles := []string{RoleUser}
	if user.IsAdmin {
		roles = append(roles, RoleAdmin)
	}

	now := s.now()
	expiresAt := now.Add(s.cfg.GetAccessTokenTTL())
	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(user.ID, 10),
		"type":  accessTokenType,
		"roles": roles,
		"exp":   expiresAt.Unix(),
		"iat":   now.Unix(),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func toProfile(u repository.User) Profile {
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Status:    u.Status,
		IsAdmin:   u.IsAdmin,
	}
}
