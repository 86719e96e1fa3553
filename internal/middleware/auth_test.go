package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const testSecret = "jwt-test-secret"

func signedToken(t *testing.T, secret, sub string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func invoke(t *testing.T, authz string) (*httptest.ResponseRecorder, string) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set(echo.HeaderAuthorization, authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotUser string
	next := func(c echo.Context) error {
		gotUser, _ = c.Get("user_id").(string)
		return c.NoContent(http.StatusOK)
	}

	if err := JWTAuth(testSecret)(next)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, gotUser
}

func TestJWTAuth_ValidToken(t *testing.T) {
	rec, user := invoke(t, "Bearer "+signedToken(t, testSecret, "user-42"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if user != "user-42" {
		t.Fatalf("expected user_id to be set, got %q", user)
	}
}

func TestJWTAuth_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		authz string
	}{
		{name: "missing header", authz: ""},
		{name: "not bearer", authz: "Basic abc"},
		{name: "garbage token", authz: "Bearer not.a.jwt"},
		{name: "wrong secret", authz: "Bearer " + signedTokenWrongSecret(t)},
		{name: "missing subject", authz: "Bearer " + signedToken(t, testSecret, "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, user := invoke(t, tt.authz)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if user != "" {
				t.Fatalf("expected no user_id, got %q", user)
			}
		})
	}
}

func signedTokenWrongSecret(t *testing.T) string {
	return signedToken(t, "other-secret", "user-42")
}
