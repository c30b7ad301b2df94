package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/Astemirdum/library-lending/pkg/auth"
	md "github.com/Astemirdum/library-lending/pkg/middleware"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestAuthContext(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		userID   string
		role     string
		wantCode int
		wantBody string
	}{
		{name: "member", userID: "3", wantCode: http.StatusOK, wantBody: "3 false"},
		{name: "admin", userID: "1", role: auth.RoleAdmin, wantCode: http.StatusOK, wantBody: "1 true"},
		{name: "missing", userID: "", wantCode: http.StatusUnauthorized},
		{name: "garbage", userID: "abc", wantCode: http.StatusUnauthorized},
		{name: "negative", userID: "-4", wantCode: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := echo.New()
			e.GET("/", func(c echo.Context) error {
				ctx := c.Request().Context()
				id, err := auth.GetUserID(ctx)
				if err != nil {
					return err
				}
				if auth.IsAdmin(ctx) {
					return c.String(http.StatusOK, strconv.FormatInt(id, 10)+" true")
				}
				return c.String(http.StatusOK, strconv.FormatInt(id, 10)+" false")
			}, md.AuthContext)

			r := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tt.userID != "" {
				r.Header.Set(auth.XUserIDHeader, tt.userID)
			}
			if tt.role != "" {
				r.Header.Set(auth.XUserRoleHeader, tt.role)
			}
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				require.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestAdminOnly(t *testing.T) {
	t.Parallel()
	e := echo.New()
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, md.AuthContext, md.AdminOnly)

	r := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	r.Header.Set(auth.XUserIDHeader, "2")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)
	require.Equal(t, http.StatusForbidden, w.Code)

	r = httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	r.Header.Set(auth.XUserIDHeader, "1")
	r.Header.Set(auth.XUserRoleHeader, auth.RoleAdmin)
	w = httptest.NewRecorder()
	e.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
}
