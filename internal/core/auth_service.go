package core

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/auth"
	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/store"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// AuthService handles registration, login and session bootstrap.
type AuthService struct {
	data   *store.DataManager
	logger *zap.Logger
}

func NewAuthService(data *store.DataManager, logger *zap.Logger) *AuthService {
	return &AuthService{data: data, logger: logger}
}

func (s *AuthService) Register(displayName, email, password string) (*store.User, string, error) {
	displayName = strings.TrimSpace(displayName)
	email = strings.TrimSpace(email)
	if displayName == "" || email == "" || password == "" {
		return nil, "", ErrMissingFields
	}
	if !emailPattern.MatchString(email) {
		return nil, "", ErrInvalidEmail
	}

	existing, err := s.data.GetUserByEmail(email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}

	user, err := s.data.CreateUser(displayName, email, auth.HashPassword(password))
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("user registered", zap.String("userId", user.ID))
	return user, auth.IssueToken(user.ID), nil
}

// Login verifies credentials. Any failure surfaces as the same generic
// error, whether the email is unknown or the password wrong.
func (s *AuthService) Login(email, password string) (*store.User, string, error) {
	user, err := s.data.GetUserByEmail(strings.TrimSpace(email))
	if err != nil {
		return nil, "", err
	}
	if user == nil || user.PasswordHash == store.PasswordResetSentinel ||
		!auth.CheckPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}
	return user, auth.IssueToken(user.ID), nil
}

// Session resolves a bearer token back to its user.
func (s *AuthService) Session(token string) (*store.User, error) {
	userID, err := auth.VerifyToken(token)
	if err != nil {
		return nil, err
	}
	user, err := s.data.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, auth.ErrInvalidToken
	}
	return user, nil
}
