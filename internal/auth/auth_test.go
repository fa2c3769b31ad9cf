package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, string) {
	t.Helper()
	e := echo.New()
	var seen string
	e.GET("/", func(c echo.Context) error {
		seen, _ = c.Get("user_id").(string)
		return c.NoContent(http.StatusOK)
	}, JwtAuthMiddleware(testSecret))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func TestJwtAuthMiddleware_Bearer(t *testing.T) {
	token, err := GenerateAccessToken(testSecret, "user-1", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec, userID := serve(t, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", userID)
}

func TestJwtAuthMiddleware_Cookie(t *testing.T) {
	token, err := GenerateAccessToken(testSecret, "user-2", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "access-token", Value: token})

	rec, userID := serve(t, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-2", userID)
}

func TestJwtAuthMiddleware_Rejects(t *testing.T) {
	expired, err := GenerateAccessToken(testSecret, "user-1", -time.Minute)
	require.NoError(t, err)

	wrongKey, err := GenerateAccessToken("other-secret", "user-1", time.Minute)
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, &JwtCustomClaims{UserID: "user-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"garbage", "Bearer not-a-token"},
		{"expired", "Bearer " + expired},
		{"wrong key", "Bearer " + wrongKey},
		{"none algorithm", "Bearer " + noneAlg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec, userID := serve(t, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Empty(t, userID)
		})
	}
}
