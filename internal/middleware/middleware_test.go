package middleware

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

func signedToken(t *testing.T, subject, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func invoke(mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, string) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var capturedUserID string
	handler := mw(func(c echo.Context) error {
		capturedUserID = UserID(c)
		return c.NoContent(http.StatusOK)
	})
	_ = handler(c)
	return rec, capturedUserID
}

func TestAuthBearerHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/donations", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "user-42", testSecret))

	rec, userID := invoke(Auth(testSecret), req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", userID)
}

func TestAuthTokenQueryParam(t *testing.T) {
	// Gateways strip the Authorization header when redirecting back.
	req := httptest.NewRequest(http.MethodGet, "/payment/callback?token="+signedToken(t, "user-42", testSecret), nil)

	rec, userID := invoke(Auth(testSecret), req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", userID)
}

func TestAuthRejectsMissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/donations", nil)

	rec, _ := invoke(Auth(testSecret), req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsWrongSecret(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/donations", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "user-42", "other-secret"))

	rec, _ := invoke(Auth(testSecret), req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/donations", nil)
	req.Header.Set("Authorization", "Bearer "+signed)

	rec, _ := invoke(Auth(testSecret), req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuthPassesAnonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/payment/callback?gateway=A", nil)

	rec, userID := invoke(OptionalAuth(testSecret), req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", userID)
}

func TestOptionalAuthAttachesValidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/payment/callback?token="+signedToken(t, "user-7", testSecret), nil)

	rec, userID := invoke(OptionalAuth(testSecret), req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-7", userID)
}

func TestOptionalAuthIgnoresInvalidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/payment/callback?token=garbage", nil)

	rec, userID := invoke(OptionalAuth(testSecret), req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", userID)
}
