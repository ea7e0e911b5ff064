package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testProvider(t *testing.T) *JWTProvider {
	t.Helper()
	logger := zerolog.Nop()
	p, err := NewJWTProvider(&logger, &Config{Secret: testSecret})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

func signToken(t *testing.T, userID int64, secret string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func identityEcho() (http.Handler, *User, *bool) {
	var captured User
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if user, ok := UserFromContext(r.Context()); ok {
			captured = user
		}
		w.WriteHeader(http.StatusOK)
	})
	return h, &captured, &called
}

func TestAuthenticate_ValidTokenSetsUser(t *testing.T) {
	p := testProvider(t)
	next, user, _ := identityEcho()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 42, testSecret, time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()

	p.Authenticate(next, true).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if user.UserID != 42 {
		t.Errorf("expected user 42 in context, got %d", user.UserID)
	}
}

func TestAuthenticate_MissingTokenOnRequiredRoute(t *testing.T) {
	p := testProvider(t)
	next, _, called := identityEcho()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	p.Authenticate(next, true).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if *called {
		t.Error("handler must not run without identity on a required route")
	}
}

func TestAuthenticate_MissingTokenOnOptionalRoute(t *testing.T) {
	p := testProvider(t)
	next, _, called := identityEcho()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	p.Authenticate(next, false).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !*called {
		t.Errorf("optional route should pass through anonymously, got %d", rec.Code)
	}
}

func TestAuthenticate_InvalidTokenOnOptionalRouteIsAnonymous(t *testing.T) {
	p := testProvider(t)
	next, user, called := identityEcho()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 42, "wrong-secret-wrong-secret-wrong!", time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()

	p.Authenticate(next, false).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !*called {
		t.Fatalf("optional route should degrade to anonymous, got %d", rec.Code)
	}
	if user.UserID != 0 {
		t.Errorf("invalid token must not yield an identity, got %d", user.UserID)
	}
}

func TestAuthenticate_RejectsBadTokens(t *testing.T) {
	p := testProvider(t)

	cases := []struct {
		name  string
		token string
	}{
		{"wrong secret", signToken(t, 42, "wrong-secret-wrong-secret-wrong!", time.Now().Add(time.Hour))},
		{"expired", signToken(t, 42, testSecret, time.Now().Add(-time.Hour))},
		{"zero user id", signToken(t, 0, testSecret, time.Now().Add(time.Hour))},
		{"garbage", "not.a.token"},
	}

	for _, c := range cases {
		next, _, called := identityEcho()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+c.token)
		rec := httptest.NewRecorder()

		p.Authenticate(next, true).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", c.name, rec.Code)
		}
		if *called {
			t.Errorf("%s: handler ran with an invalid token", c.name)
		}
	}
}

func TestNewJWTProvider_RequiresSecret(t *testing.T) {
	logger := zerolog.Nop()
	if _, err := NewJWTProvider(&logger, &Config{}); err == nil {
		t.Fatal("expected an error for an empty secret")
	}
}
