package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tienda/internal/models"
	"tienda/internal/policy"
	"tienda/internal/repository"
	"tienda/internal/utils"
	"tienda/pkg/logger"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUserForbidden = errors.New("not allowed to manage this user")
	ErrWrongPassword = errors.New("current password is incorrect")
)

// UserInput carries the full-update payload. Optional fields absent
// from the request clear the stored value, per full-update semantics.
type UserInput struct {
	Username    string
	Email       string
	PhoneNumber *string
}

// UserPatch carries a partial update; nil fields are left untouched.
type UserPatch struct {
	Username    *string
	Email       *string
	PhoneNumber *string
}

type UserService struct {
	userRepo *repository.UserRepository
	tokens   *repository.TokenStore
}

func NewUserService(userRepo *repository.UserRepository, tokens *repository.TokenStore) *UserService {
	return &UserService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

func (s *UserService) List() ([]*models.User, error) {
	users, err := s.userRepo.GetAllUsers()
	if err != nil {
		logger.Log.Error("Failed to fetch users", zap.Error(err))
		return nil, err
	}
	return users, nil
}

func (s *UserService) Get(id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(id)
	if err != nil {
		logger.Log.Error("Failed to fetch user",
			zap.String("user_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Update replaces the user's profile. Self-only: admins cannot edit
// other accounts through this path.
func (s *UserService) Update(actor *models.User, id uuid.UUID, in UserInput) (*models.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if !policy.IsSelf(actor, user.ID) {
		return nil, ErrUserForbidden
	}

	if err := s.checkIdentityTaken(in.Username, in.Email, id); err != nil {
		return nil, err
	}

	user.Username = in.Username
	user.Email = in.Email
	user.PhoneNumber = in.PhoneNumber

	if err := s.userRepo.SaveUser(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			fieldErrs := FieldErrors{}
			fieldErrs.Add("username", "The username or email has already been taken.")
			return nil, fieldErrs
		}
		logger.Log.Error("Failed to update user",
			zap.String("user_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("User updated",
		zap.String("user_id", id.String()),
	)
	return user, nil
}

// Patch applies only the fields present in the request.
func (s *UserService) Patch(actor *models.User, id uuid.UUID, p UserPatch) (*models.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if !policy.IsSelf(actor, user.ID) {
		return nil, ErrUserForbidden
	}

	fieldErrs := FieldErrors{}
	if p.Username != nil {
		taken, err := s.userRepo.UsernameTaken(*p.Username, id)
		if err != nil {
			return nil, err
		}
		if taken {
			fieldErrs.Add("username", "The username has already been taken.")
		}
	}
	if p.Email != nil {
		taken, err := s.userRepo.EmailTaken(*p.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			fieldErrs.Add("email", "The email has already been taken.")
		}
	}
	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	if p.Username != nil {
		user.Username = *p.Username
	}
	if p.Email != nil {
		user.Email = *p.Email
	}
	if p.PhoneNumber != nil {
		user.PhoneNumber = p.PhoneNumber
	}

	if err := s.userRepo.SaveUser(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			fieldErrs.Add("username", "The username or email has already been taken.")
			return nil, fieldErrs
		}
		logger.Log.Error("Failed to patch user",
			zap.String("user_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("User partially updated",
		zap.String("user_id", id.String()),
	)
	return user, nil
}

// ChangePassword verifies the current password before replacing the
// stored hash. A mismatch is a credential failure, distinct from the
// ownership check.
func (s *UserService) ChangePassword(actor *models.User, id uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.Get(id)
	if err != nil {
		return err
	}

	if !policy.IsSelf(actor, user.ID) {
		return ErrUserForbidden
	}

	if !utils.VerifyPassword(currentPassword, user.PasswordHash) {
		logger.Log.Warn("Password change rejected: wrong current password",
			zap.String("user_id", id.String()),
		)
		return ErrWrongPassword
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		logger.Log.Error("Failed to hash new password", zap.Error(err))
		return err
	}

	user.PasswordHash = hash
	if err := s.userRepo.SaveUser(user); err != nil {
		logger.Log.Error("Failed to store new password",
			zap.String("user_id", id.String()),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("Password changed",
		zap.String("user_id", id.String()),
	)
	return nil
}

// Delete removes the account. Every session token the user holds is
// revoked first, then the record is deleted.
func (s *UserService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	user, err := s.Get(id)
	if err != nil {
		return err
	}

	if !policy.IsSelf(actor, user.ID) {
		return ErrUserForbidden
	}

	if err := s.tokens.RevokeAll(ctx, user.ID); err != nil {
		logger.Log.Error("Failed to revoke tokens for deleted user",
			zap.String("user_id", id.String()),
			zap.Error(err),
		)
		return err
	}

	if err := s.userRepo.DeleteUser(user.ID); err != nil {
		logger.Log.Error("Failed to delete user",
			zap.String("user_id", id.String()),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("User deleted",
		zap.String("user_id", id.String()),
	)
	return nil
}

func (s *UserService) checkIdentityTaken(username, email string, excludeID uuid.UUID) error {
	fieldErrs := FieldErrors{}

	taken, err := s.userRepo.UsernameTaken(username, excludeID)
	if err != nil {
		return err
	}
	if taken {
		fieldErrs.Add("username", "The username has already been taken.")
	}

	taken, err = s.userRepo.EmailTaken(email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		fieldErrs.Add("email", "The email has already been taken.")
	}

	if len(fieldErrs) > 0 {
		return fieldErrs
	}
	return nil
}
