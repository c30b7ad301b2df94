package auth_test

import (
	"context"
	"testing"

	"github.com/Astemirdum/library-lending/pkg/auth"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestAuthContext(t *testing.T) {
	t.Parallel()
	_, err := auth.GetUserID(context.Background())
	require.True(t, errors.Is(err, auth.ErrNoIdentity))
	require.False(t, auth.IsAdmin(context.Background()))

	ctx := auth.SetAuthContext(context.Background(), 7, auth.RoleAdmin)
	id, err := auth.GetUserID(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(7), id)
	require.True(t, auth.IsAdmin(ctx))

	ctx = auth.SetAuthContext(context.Background(), 8, auth.RoleMember)
	require.False(t, auth.IsAdmin(ctx))
}
