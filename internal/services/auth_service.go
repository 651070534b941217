package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"collabhub_backend/internal/auth"
	"collabhub_backend/internal/email"
	"collabhub_backend/internal/logger"
	"collabhub_backend/internal/models"
	"collabhub_backend/internal/repositories"
	"collabhub_backend/internal/services/dto"
	"collabhub_backend/pkg/apperrors"
)

type AuthService interface {
	Register(req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(req *dto.LoginRequest) (*dto.AuthResponse, error)

	// LoginWithGoogle signs in (or registers) the Google account
	// identified by the verified ID token payload.
	LoginWithGoogle(googleID, emailAddr, name string) (*dto.AuthResponse, error)

	RefreshToken(refreshToken string) (*dto.AuthResponse, error)
	Logout(refreshToken string) error
	LogoutAll(userID string) error
}

type AuthServiceImpl struct {
	userRepo      repositories.UserRepository
	tokens        *auth.TokenManager
	refreshTTL    time.Duration
	emailProvider email.Provider
	frontendURL   string
}

func NewAuthService(
	userRepo repositories.UserRepository,
	tokens *auth.TokenManager,
	refreshTTL time.Duration,
	emailProvider email.Provider,
	frontendURL string,
) AuthService {
	return &AuthServiceImpl{
		userRepo:      userRepo,
		tokens:        tokens,
		refreshTTL:    refreshTTL,
		emailProvider: emailProvider,
		frontendURL:   frontendURL,
	}
}

func (s *AuthServiceImpl) Register(req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePasswordStrength(req.Password); err != nil {
		return nil, apperrors.ValidationError(err.Error())
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hashed,
		Role:         models.UserRoleUser,
		Status:       models.UserStatusActive,
	}
	profile := &models.Profile{
		Name:         req.Name,
		Role:         req.Role,
		Availability: models.AvailabilityAvailable,
	}

	if err := s.userRepo.CreateWithProfile(user, profile); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	s.sendWelcomeEmail(user.Email, req.Name)

	return s.issueTokens(user)
}

func (s *AuthServiceImpl) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	// OAuth-only accounts have no local password
	if user.PasswordHash == "" || !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if user.Status != models.UserStatusActive {
		return nil, apperrors.NewForbiddenError("Account is suspended")
	}

	return s.issueTokens(user)
}

func (s *AuthServiceImpl) LoginWithGoogle(googleID, emailAddr, name string) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByGoogleID(googleID)
	if err == nil {
		if user.Status != models.UserStatusActive {
			return nil, apperrors.NewForbiddenError("Account is suspended")
		}
		return s.issueTokens(user)
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperrors.InternalError(err)
	}

	// link to an existing local account with the same email
	user, err = s.userRepo.FindByEmail(emailAddr)
	if err == nil {
		user.GoogleID = googleID
		if err := s.userRepo.Update(user); err != nil {
			return nil, apperrors.InternalError(err)
		}
		if user.Status != models.UserStatusActive {
			return nil, apperrors.NewForbiddenError("Account is suspended")
		}
		return s.issueTokens(user)
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperrors.InternalError(err)
	}

	// first sign-in: register a new account
	user = &models.User{
		Email:    emailAddr,
		GoogleID: googleID,
		Role:     models.UserRoleUser,
		Status:   models.UserStatusActive,
	}
	profile := &models.Profile{
		Name:         name,
		Role:         "Other",
		Availability: models.AvailabilityAvailable,
	}
	if err := s.userRepo.CreateWithProfile(user, profile); err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.sendWelcomeEmail(user.Email, name)

	return s.issueTokens(user)
}

func (s *AuthServiceImpl) RefreshToken(refreshToken string) (*dto.AuthResponse, error) {
	stored, err := s.userRepo.FindRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeInvalidToken, "auth", "Invalid refresh token", 401)
	}

	if time.Now().After(stored.ExpiresAt) {
		_ = s.userRepo.DeleteRefreshToken(refreshToken)
		return nil, apperrors.New(apperrors.CodeTokenExpired, "auth", "Refresh token expired", 401)
	}

	user, err := s.userRepo.FindByID(stored.UserID)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeInvalidToken, "auth", "Invalid refresh token", 401)
	}

	// rotation: the used token is burned
	if err := s.userRepo.DeleteRefreshToken(refreshToken); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return s.issueTokens(user)
}

func (s *AuthServiceImpl) Logout(refreshToken string) error {
	if err := s.userRepo.DeleteRefreshToken(refreshToken); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *AuthServiceImpl) LogoutAll(userID string) error {
	if err := s.userRepo.DeleteUserRefreshTokens(userID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *AuthServiceImpl) issueTokens(user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	refreshToken := generateRandomToken()
	if err := s.userRepo.CreateRefreshToken(&models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(s.refreshTTL),
	}); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         dto.NewUserDTO(user),
	}, nil
}

func (s *AuthServiceImpl) sendWelcomeEmail(to, name string) {
	if s.emailProvider == nil {
		return
	}
	go func() {
		err := s.emailProvider.SendTemplate(
			[]string{to},
			"Welcome to CollabHub",
			email.TemplateWelcome,
			email.TemplateData{
				"Name":       name,
				"ProfileURL": s.frontendURL + "/profile",
			},
		)
		if err != nil {
			logger.WithError(err).Warn("failed to send welcome email")
		}
	}()
}

func generateRandomToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
