package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/logger"
	"propdesk-backend/internal/repository"
	"propdesk-backend/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
)

type authService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	logger.EnterMethod("authService.Login", "email", email)

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.ExitMethodWithError("authService.Login", err)
			return "", nil, err
		}
		logger.ExitMethodWithError("authService.Login", ErrInvalidCredentials)
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.ExitMethodWithError("authService.Login", ErrInvalidCredentials, "userID", user.ID)
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		logger.ExitMethodWithError("authService.Login", ErrAccountDisabled, "userID", user.ID)
		return "", nil, ErrAccountDisabled
	}

	token, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		logger.ExitMethodWithError("authService.Login", err, "userID", user.ID)
		return "", nil, err
	}

	logger.ExitMethod("authService.Login", "userID", user.ID, "role", user.Role)
	return token, user, nil
}
