package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Evgen-Mutagen/finances/internal/core"
	"github.com/Evgen-Mutagen/finances/internal/model"
	"github.com/Evgen-Mutagen/finances/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier checks an email/password pair and returns the matching
// user. ok is false for unknown emails and wrong passwords alike.
type CredentialVerifier interface {
	VerifyCredential(ctx context.Context, email, password string) (user *model.User, ok bool, err error)
}

type UserService struct {
	store     repository.Store
	logger    *zap.Logger
	hashCost  int
	dummyHash []byte
}

func NewUserService(store repository.Store, logger *zap.Logger) *UserService {
	return newUserService(store, logger, bcrypt.DefaultCost)
}

func newUserService(store repository.Store, logger *zap.Logger, cost int) *UserService {
	// compared against when the email is unknown so both login failures cost one bcrypt run
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	if err != nil {
		panic(fmt.Sprintf("failed to prepare dummy hash: %v", err))
	}
	return &UserService{
		store:     store,
		logger:    logger,
		hashCost:  cost,
		dummyHash: dummy,
	}
}

var _ core.UserService = (*UserService)(nil)

func (s *UserService) CreateUser(ctx context.Context, in model.CreateUserInput) (*model.User, error) {
	if err := validateCreateUser(in); err != nil {
		return nil, err
	}

	email := model.NormalizeEmail(in.Email)
	existing, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, core.ErrEmailTaken
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Balance:      decimal.Zero,
	}

	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, core.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email))

	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err)
	}
	return user, nil
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.store.Users().GetByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		return nil, userLookupError(err)
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id string, in model.UpdateUserInput) (*model.User, error) {
	if err := validateUpdateUser(in); err != nil {
		return nil, err
	}

	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err)
	}

	in.Apply(user)
	if in.Password != nil {
		if user.PasswordHash, err = s.hashPassword(*in.Password); err != nil {
			return nil, err
		}
	}

	if err := s.store.Users().Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, core.ErrEmailTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, core.ErrUserNotFound
		default:
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	s.logger.Info("User updated",
		zap.String("user_id", user.ID),
		zap.Bool("password_changed", in.Password != nil))

	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.store.Users().Delete(ctx, id); err != nil {
		return userLookupError(err)
	}
	s.logger.Info("User deleted", zap.String("user_id", id))
	return nil
}

func (s *UserService) ValidateCredential(ctx context.Context, email, password string) (bool, error) {
	_, ok, err := s.VerifyCredential(ctx, email, password)
	return ok, err
}

func (s *UserService) VerifyCredential(ctx context.Context, email, password string) (*model.User, bool, error) {
	user, err := s.store.Users().GetByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, false, nil
	}
	return user, true, nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func userLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return core.ErrUserNotFound
	}
	return fmt.Errorf("failed to get user: %w", err)
}
