package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UserIDKey is the echo context key holding the authenticated donor ID.
const UserIDKey = "user_id"

// Auth validates the bearer token and stores the subject in context.
// Token issuance lives in the auth service; this only parses.
func Auth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := subjectFromRequest(c, secret)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"status": false,
					"msg":    "Invalid or missing token",
					"obj":    nil,
				})
			}
			c.Set(UserIDKey, userID)
			return next(c)
		}
	}
}

// OptionalAuth stores the subject when a valid bearer token is present and
// passes through otherwise. Used on the payment callback, where anonymous
// donors are legitimate.
func OptionalAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if userID, ok := subjectFromRequest(c, secret); ok {
				c.Set(UserIDKey, userID)
			}
			return next(c)
		}
	}
}

func subjectFromRequest(c echo.Context, secret string) (string, bool) {
	if secret == "" {
		return "", false
	}

	header := c.Request().Header.Get("Authorization")
	raw := strings.TrimPrefix(header, "Bearer ")
	if raw == header || raw == "" {
		// Gateways strip headers on redirect; accept the token as a query
		// parameter on callback URLs.
		raw = c.QueryParam("token")
	}
	if raw == "" {
		return "", false
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", false
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", false
	}
	return sub, true
}

// UserID returns the authenticated donor ID, empty for anonymous requests.
func UserID(c echo.Context) string {
	id, _ := c.Get(UserIDKey).(string)
	return id
}

// CORS configures CORS headers.
func CORS() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("Access-Control-Allow-Origin", "*")
			c.Response().Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Response().Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if c.Request().Method == "OPTIONS" {
				return c.NoContent(http.StatusOK)
			}
			return next(c)
		}
	}
}

// RequestLogger logs each request with its latency and status.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.RealIP()))
			return err
		}
	}
}
