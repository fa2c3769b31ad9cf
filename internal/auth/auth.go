/*
Package auth resolves the caller's identity from a bearer token before any
assistant work starts. Tokens are issued by the account service; this package
only verifies them.
*/
package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// JwtCustomClaims are the claims the account service puts in access tokens.
type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// JwtAuthMiddleware verifies HS256 access tokens from the Authorization header
// or the access-token cookie and stores the user ID in the echo context.
func JwtAuthMiddleware(secret string) echo.MiddlewareFunc {
	key := []byte(secret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			logger := zerolog.Ctx(c.Request().Context())

			tokenString, ok := tokenFromRequest(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing access token"})
			}

			token, err := jwt.ParseWithClaims(tokenString, &JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
				// Verify signing method
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return key, nil
			})
			if err != nil || !token.Valid {
				logger.Warn().Err(err).Msg("Token validation error")
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
			}

			claims, ok := token.Claims.(*JwtCustomClaims)
			if !ok || claims.UserID == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
			}

			c.Set("user_id", claims.UserID)
			return next(c)
		}
	}
}

func tokenFromRequest(c echo.Context) (string, bool) {
	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer "), true
	}
	if cookie, err := c.Cookie("access-token"); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return "", false
}

// GenerateAccessToken signs a short-lived token for userID. Used by tooling and tests;
// production tokens come from the account service.
func GenerateAccessToken(secret, userID string, ttl time.Duration) (string, error) {
	claims := &JwtCustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   userID,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
