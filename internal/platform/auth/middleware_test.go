package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func signToken(t *testing.T, key []byte, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := token.SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func baseClaims(sub uuid.UUID) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.String(),
			Issuer:    "https://idp.example.com",
			Audience:  jwt.ClaimStrings{"caresync"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Name: "Dr. Adaeze Obi",
		Role: "physician",
	}
}

func runMiddleware(t *testing.T, mw echo.MiddlewareFunc, authorization string) (error, Principal) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got Principal
	h := mw(func(c echo.Context) error {
		got = PrincipalFromContext(c.Request().Context())
		return nil
	})
	return h(c), got
}

func TestJWTMiddlewareValidToken(t *testing.T) {
	key := []byte("test-signing-key")
	sub := uuid.New()
	raw := signToken(t, key, baseClaims(sub))

	mw := JWTMiddleware(JWTConfig{
		Issuer:     "https://idp.example.com",
		Audience:   "caresync",
		SigningKey: key,
	})

	err, p := runMiddleware(t, mw, "Bearer "+raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != sub {
		t.Errorf("expected principal id %s, got %s", sub, p.ID)
	}
	if p.Role != "physician" || p.Name != "Dr. Adaeze Obi" {
		t.Errorf("unexpected principal: %+v", p)
	}
}

func TestJWTMiddlewareMissingToken(t *testing.T) {
	mw := JWTMiddleware(JWTConfig{SigningKey: []byte("k")})
	err, _ := runMiddleware(t, mw, "")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestJWTMiddlewareWrongIssuer(t *testing.T) {
	key := []byte("test-signing-key")
	claims := baseClaims(uuid.New())
	claims.Issuer = "https://evil.example.com"
	raw := signToken(t, key, claims)

	mw := JWTMiddleware(JWTConfig{Issuer: "https://idp.example.com", SigningKey: key})
	err, _ := runMiddleware(t, mw, "Bearer "+raw)
	if err == nil {
		t.Fatal("expected issuer rejection")
	}
}

func TestJWTMiddlewareExpiredToken(t *testing.T) {
	key := []byte("test-signing-key")
	claims := baseClaims(uuid.New())
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	raw := signToken(t, key, claims)

	mw := JWTMiddleware(JWTConfig{SigningKey: key})
	err, _ := runMiddleware(t, mw, "Bearer "+raw)
	if err == nil {
		t.Fatal("expected expired-token rejection")
	}
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		role    string
		allowed bool
	}{
		{"physician", true},
		{"nurse", false},
		{"admin", true},
	}
	for _, tc := range cases {
		t.Run(tc.role, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			ctx := WithPrincipal(req.Context(), Principal{ID: uuid.New(), Role: tc.role})
			req = req.WithContext(ctx)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			h := RequireRole("physician", "pharmacist")(func(c echo.Context) error { return nil })
			err := h(c)
			if tc.allowed && err != nil {
				t.Errorf("expected %s to pass, got %v", tc.role, err)
			}
			if !tc.allowed && err == nil {
				t.Errorf("expected %s to be rejected", tc.role)
			}
		})
	}
}
