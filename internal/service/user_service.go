package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"artmarket/internal/domain"
	"artmarket/internal/repository"
)

// UserService cubre las operaciones de cuenta fuera del ciclo de sesión.
type UserService struct {
	logger *zap.Logger
	users  repository.UserRepository
}

func NewUserService(logger *zap.Logger, users repository.UserRepository) *UserService {
	return &UserService{logger: logger, users: users}
}

// UserUpdateInput lista explícitamente los campos editables de la cuenta.
// El rol y los campos de seguridad no se tocan por esta vía.
type UserUpdateInput struct {
	Name      *string
	Email     *string
	AvatarURL *string
	Location  *string
}

func (s *UserService) Get(ctx context.Context, id string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// Update aplica solo los campos permitidos sobre la cuenta.
func (s *UserService) Update(ctx context.Context, id string, input UserUpdateInput) (domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return domain.User{}, &ValidationError{Field: "name", Reason: "required"}
		}
		user.Name = name
	}
	if input.Email != nil {
		emailAddr := normalizeEmail(*input.Email)
		if !emailPattern.MatchString(emailAddr) {
			return domain.User{}, &ValidationError{Field: "email", Reason: "invalid format"}
		}
		if !strings.EqualFold(emailAddr, user.Email) {
			taken, err := s.users.TakenField(ctx, "", emailAddr)
			if err != nil {
				return domain.User{}, err
			}
			if taken == "email" {
				return domain.User{}, &DuplicateFieldError{Field: "email"}
			}
			user.Email = emailAddr
		}
	}
	if input.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*input.AvatarURL)
	}
	if input.Location != nil {
		user.Location = strings.TrimSpace(*input.Location)
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// Delete elimina la cuenta; el perfil asociado cae en cascada.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	s.logger.Info("user deleted", zap.String("user_id", id))
	return nil
}
