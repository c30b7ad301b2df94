package auth

import (
	"context"

	"github.com/pkg/errors"
)

const (
	XUserIDHeader   = "X-User-Id"
	XUserRoleHeader = "X-User-Role"

	RoleAdmin  = "admin"
	RoleMember = "member"
)

type authKey struct{}

type Identity struct {
	UserID int64
	Role   string
}

var ErrNoIdentity = errors.New("no user identity in context")

func SetAuthContext(ctx context.Context, userID int64, role string) context.Context {
	return context.WithValue(ctx, authKey{}, Identity{UserID: userID, Role: role})
}

func FromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(authKey{}).(Identity)
	if !ok {
		return Identity{}, ErrNoIdentity
	}
	return id, nil
}

func GetUserID(ctx context.Context) (int64, error) {
	id, err := FromContext(ctx)
	if err != nil {
		return 0, err
	}
	return id.UserID, nil
}

func IsAdmin(ctx context.Context) bool {
	id, err := FromContext(ctx)
	return err == nil && id.Role == RoleAdmin
}
