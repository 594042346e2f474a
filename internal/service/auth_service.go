package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tienda/internal/models"
	"tienda/internal/repository"
	"tienda/internal/utils"
	"tienda/pkg/logger"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService struct {
	userRepo      *repository.UserRepository
	tokens        *repository.TokenStore
	jwtSecret     string
	jwtExpiration time.Duration
}

func NewAuthService(userRepo *repository.UserRepository, tokens *repository.TokenStore, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		tokens:        tokens,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func (s *AuthService) Register(ctx context.Context, username, email, password string, phoneNumber *string) (*models.User, string, error) {
	logger.Log.Debug("Processing user registration",
		zap.String("username", username),
		zap.String("email", email),
	)

	fieldErrs := FieldErrors{}

	existing, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		logger.Log.Error("Failed to check email existence",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, "", err
	}
	if existing != nil {
		fieldErrs.Add("email", "The email has already been taken.")
	}

	existing, err = s.userRepo.GetUserByUsername(username)
	if err != nil {
		logger.Log.Error("Failed to check username existence",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, "", err
	}
	if existing != nil {
		fieldErrs.Add("username", "The username has already been taken.")
	}

	if len(fieldErrs) > 0 {
		logger.Log.Warn("Registration validation failed",
			zap.String("username", username),
			zap.String("email", email),
		)
		return nil, "", fieldErrs
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		logger.Log.Error("Failed to hash password", zap.Error(err))
		return nil, "", err
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		PhoneNumber:  phoneNumber,
		Role:         models.RoleUser,
	}

	if err := s.userRepo.CreateUser(user); err != nil {
		// A concurrent registration can still slip past the existence
		// checks; the unique index is the authority.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			fieldErrs.Add("email", "The email or username has already been taken.")
			return nil, "", fieldErrs
		}
		logger.Log.Error("Failed to create user in database",
			zap.String("username", username),
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, "", err
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, "", err
	}

	logger.Log.Info("User registered successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("username", username),
	)

	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	logger.Log.Debug("Processing user login",
		zap.String("email", email),
	)

	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		logger.Log.Error("Failed to get user by email",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, "", err
	}
	if user == nil {
		logger.Log.Warn("Login failed: user not found",
			zap.String("email", email),
		)
		return nil, "", ErrInvalidCredentials
	}

	if !utils.VerifyPassword(password, user.PasswordHash) {
		logger.Log.Warn("Login failed: invalid password",
			zap.String("email", email),
			zap.String("user_id", user.ID.String()),
		)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, "", err
	}

	logger.Log.Info("User logged in successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)

	return user, token, nil
}

// Logout revokes the presenting token.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID, jti string) error {
	if err := s.tokens.Revoke(ctx, userID, jti); err != nil {
		logger.Log.Error("Failed to revoke token",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("User logged out",
		zap.String("user_id", userID.String()),
	)
	return nil
}

// LogoutAll revokes every token issued to the user.
func (s *AuthService) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	if err := s.tokens.RevokeAll(ctx, userID); err != nil {
		logger.Log.Error("Failed to revoke all tokens",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("All sessions revoked",
		zap.String("user_id", userID.String()),
	)
	return nil
}

// Refresh revokes the presenting token and issues a fresh one.
func (s *AuthService) Refresh(ctx context.Context, user *models.User, jti string) (string, error) {
	if err := s.tokens.Revoke(ctx, user.ID, jti); err != nil {
		return "", err
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return "", err
	}

	logger.Log.Info("Token refreshed",
		zap.String("user_id", user.ID.String()),
	)
	return token, nil
}

func (s *AuthService) issueToken(ctx context.Context, user *models.User) (string, error) {
	token, claims, err := utils.GenerateToken(user, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		logger.Log.Error("Failed to generate JWT token",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return "", err
	}

	if err := s.tokens.Save(ctx, user.ID, claims.ID, s.jwtExpiration); err != nil {
		logger.Log.Error("Failed to register issued token",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return "", err
	}

	return token, nil
}
