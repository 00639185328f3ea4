package services

import (
	"context"
	"errors"
	"strings"

	"natillera-miahorro/internal/adapters/persistence/models"
	"natillera-miahorro/internal/adapters/persistence/repositories"
	"natillera-miahorro/internal/config"
	"natillera-miahorro/internal/core/domain"
	"natillera-miahorro/internal/pkg/jwt"
	"natillera-miahorro/internal/pkg/logger"
	"natillera-miahorro/internal/pkg/password"
	"natillera-miahorro/internal/pkg/validation"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo repositories.UserRepository
	cfg      *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repositories.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required"`
}

// LoginInput represents login input
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User        *models.UserResponse `json:"user"`
	AccessToken string               `json:"access_token"`
}

// Register creates an operator account. The first account ever created is
// the administrator.
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	input.Username = strings.TrimSpace(input.Username)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if !password.ValidatePassword(input.Password) {
		return nil, domain.ErrWeakPassword
	}

	// 1. Check if username already exists
	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	// 2. Pick role
	role := domain.RoleOperator
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		role = domain.RoleAdmin
	}

	// 3. Hash password
	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	// 4. Create user
	user := &models.User{
		Username: input.Username,
		Password: hashedPassword,
		Role:     string(role),
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, err
	}

	logger.Log.Info("User registered",
		zap.String("username", user.Username),
		zap.String("role", user.Role))

	return s.issue(user)
}

// Login checks the password against the stored bcrypt hash
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	input.Username = strings.TrimSpace(input.Username)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, domain.ErrLoginFailed
		}
		return nil, err
	}
	if !password.Verify(input.Password, user.Password) {
		return nil, domain.ErrLoginFailed
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	logger.Log.Info("User logged in", zap.String("username", user.Username))

	return s.issue(user)
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// GetUserByID gets a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResponse, error) {
	token, err := jwt.GenerateAccessToken(
		user.ID,
		user.Username,
		user.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		User:        user.ToResponse(),
		AccessToken: token,
	}, nil
}
