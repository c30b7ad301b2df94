package repository

import (
	"context"

	"github.com/Astemirdum/library-lending/lending/internal/errs"
	"github.com/Astemirdum/library-lending/lending/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
)

var userColumns = []string{"id", "name", "email", "role"}

func (r *repository) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	if u.Role == "" {
		u.Role = model.RoleMember
	}
	qb := r.qb.Insert(usersTableName).
		Columns("name", "email", "role").
		Values(u.Name, u.Email, string(u.Role))
	id, err := r.insertID(ctx, qb)
	if err != nil {
		return model.User{}, errors.Wrap(err, "create user")
	}
	u.ID = id
	return u, nil
}

func (r *repository) GetUser(ctx context.Context, id int64) (model.User, error) {
	qb := r.qb.Select(userColumns...).
		From(usersTableName).
		Where(sq.Eq{"id": id})
	var u model.User
	if err := r.get(ctx, &u, qb); err != nil {
		return model.User{}, notFound(err, errs.ErrUserNotFound)
	}
	return u, nil
}

// ListUsers returns the users ordered by id, only those with role when it is set.
func (r *repository) ListUsers(ctx context.Context, role model.Role) ([]model.User, error) {
	qb := r.qb.Select(userColumns...).
		From(usersTableName).
		OrderBy("id")
	if role != "" {
		qb = qb.Where(sq.Eq{"role": string(role)})
	}
	users := make([]model.User, 0)
	if err := r.selectAll(ctx, &users, qb); err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return users, nil
}

func (r *repository) SetUserRole(ctx context.Context, id int64, role model.Role) error {
	qb := r.qb.Update(usersTableName).
		Set("role", string(role)).
		Where(sq.Eq{"id": id})
	n, err := r.exec(ctx, qb)
	if err != nil {
		return errors.Wrap(err, "set user role")
	}
	if n == 0 {
		return errs.ErrUserNotFound
	}
	return nil
}

func (r *repository) DeleteUser(ctx context.Context, id int64) error {
	n, err := r.exec(ctx, r.qb.Delete(usersTableName).Where(sq.Eq{"id": id}))
	if err != nil {
		return errors.Wrap(err, "delete user")
	}
	if n == 0 {
		return errs.ErrUserNotFound
	}
	return nil
}
