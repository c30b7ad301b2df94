package service

import (
	"context"
	"strings"

	"github.com/Astemirdum/library-lending/lending/internal/errs"
	"github.com/Astemirdum/library-lending/lending/internal/model"
	"github.com/Astemirdum/library-lending/lending/internal/repository"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func (s *Service) CreateUser(ctx context.Context, req model.CreateUserRequest) (model.User, error) {
	u := model.User{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
		Role:  req.Role,
	}
	if u.Name == "" || u.Email == "" {
		return model.User{}, errs.Validation("name and email are required")
	}
	if u.Role == "" {
		u.Role = model.RoleMember
	}
	if u.Role != model.RoleMember && u.Role != model.RoleAdmin {
		return model.User{}, errs.Validation("role must be admin or member")
	}
	u, err := s.repo.CreateUser(ctx, u)
	if err != nil {
		return model.User{}, err
	}
	s.log.Info("user created", zap.Int64("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (model.User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.ListUsers(ctx, "")
}

func (s *Service) SetUserRole(ctx context.Context, id int64, role model.Role) error {
	if role != model.RoleMember && role != model.RoleAdmin {
		return errs.Validation("role must be admin or member")
	}
	if err := s.repo.SetUserRole(ctx, id, role); err != nil {
		return errors.Wrap(err, "set user role")
	}
	s.log.Info("user role set", zap.Int64("user_id", id), zap.String("role", string(role)))
	return nil
}

// DeleteUser removes a member together with the history of their loans,
// fines and payments. Admins, and members with active loans or unpaid fines,
// cannot be deleted.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	ctx = context.WithoutCancel(ctx)
	err := s.repo.WithTx(ctx, func(repo repository.Repository) error {
		u, err := repo.GetUser(ctx, id)
		if err != nil {
			return err
		}
		if u.Role == model.RoleAdmin {
			return errs.ErrAdminUndeletable
		}
		active, err := repo.CountActiveByUser(ctx, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return errs.ErrActiveLoans
		}
		unpaid, err := repo.CountUnpaidByUser(ctx, id)
		if err != nil {
			return err
		}
		if unpaid > 0 {
			return errs.ErrUnpaidFines
		}
		if err = repo.DeleteUserHistory(ctx, id); err != nil {
			return err
		}
		return repo.DeleteUser(ctx, id)
	})
	if err != nil {
		return errors.Wrap(err, "delete user")
	}
	s.log.Info("user deleted", zap.Int64("user_id", id))
	return nil
}

// EnsureAdmin creates the admin account when no admin exists yet.
func (s *Service) EnsureAdmin(ctx context.Context, name, email string) error {
	if strings.TrimSpace(email) == "" {
		return nil
	}
	admins, err := s.repo.ListUsers(ctx, model.RoleAdmin)
	if err != nil {
		return err
	}
	if len(admins) > 0 {
		return nil
	}
	_, err = s.CreateUser(ctx, model.CreateUserRequest{Name: name, Email: email, Role: model.RoleAdmin})
	if errors.Is(err, errs.ErrConflict) {
		s.log.Warn("admin email already taken by a member", zap.String("email", email))
		return nil
	}
	return err
}
