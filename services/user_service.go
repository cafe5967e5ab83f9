package services

import (
	"context"
	"errors"
	"strings"

	"newsroom-cms/models"
	"newsroom-cms/repositories"

	"gorm.io/gorm"
)

type UserService interface {
	ListUsers(ctx context.Context, actor models.Actor) ([]models.User, error)
	CreateUser(ctx context.Context, actor models.Actor, req models.CreateUserRequest) (*models.User, error)
	UpdateUser(ctx context.Context, actor models.Actor, id uint, req models.UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, actor models.Actor, id uint) error
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) ListUsers(ctx context.Context, actor models.Actor) ([]models.User, error) {
	if err := requireRole(actor, models.RoleAdmin, "manage users"); err != nil {
		return nil, err
	}
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, storeError(err, "user not found")
	}
	return users, nil
}

func (s *userService) CreateUser(ctx context.Context, actor models.Actor, req models.CreateUserRequest) (*models.User, error) {
	if err := requireRole(actor, models.RoleAdmin, "manage users"); err != nil {
		return nil, err
	}
	if !req.Role.Valid() {
		return nil, models.ErrorValidation{Field: "role", Message: "unknown role"}
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     normalizeEmail(req.Email),
		Password:  hashed,
		Role:      req.Role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.ErrorConflict{Message: "email already registered"}
		}
		return nil, storeError(err, "user not found")
	}
	return user, nil
}

// UpdateUser replaces names, email and role. The password changes only when
// a new one is supplied.
func (s *userService) UpdateUser(ctx context.Context, actor models.Actor, id uint, req models.UpdateUserRequest) (*models.User, error) {
	if err := requireRole(actor, models.RoleAdmin, "manage users"); err != nil {
		return nil, err
	}
	if !req.Role.Valid() {
		return nil, models.ErrorValidation{Field: "role", Message: "unknown role"}
	}
	if actor.ID == id && req.Role != models.RoleAdmin {
		return nil, models.ErrorValidation{Field: "role", Message: "admins cannot demote themselves"}
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "user not found")
	}

	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)
	user.Email = normalizeEmail(req.Email)
	user.Role = req.Role
	if req.Password != "" {
		hashed, err := hashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.ErrorConflict{Message: "email already registered"}
		}
		return nil, storeError(err, "user not found")
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, actor models.Actor, id uint) error {
	if err := requireRole(actor, models.RoleAdmin, "manage users"); err != nil {
		return err
	}
	if actor.ID == id {
		return models.ErrorValidation{Message: "admins cannot delete themselves"}
	}
	return storeError(s.userRepo.Delete(ctx, id), "user not found")
}
