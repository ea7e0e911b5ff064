package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

type Config struct {
	// Secret signs bearer tokens with HMAC-SHA256. Tokens are issued by
	// the surrounding identity service using the same secret.
	Secret string `env:"AUTH_JWT_SECRET,required" validate:"required,min=32"`
}

// Claims carried by a bearer token.
type Claims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// JWTProvider extracts the caller identity from Authorization headers.
type JWTProvider struct {
	secret []byte
	logger *zerolog.Logger
}

func NewJWTProvider(logger *zerolog.Logger, cfg *Config) (*JWTProvider, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}

	return &JWTProvider{
		secret: []byte(cfg.Secret),
		logger: logger,
	}, nil
}

// Authenticate wraps a handler with bearer identity extraction. When
// required is false, an absent or invalid token degrades to an anonymous
// request instead of failing it.
func (p *JWTProvider) Authenticate(next http.Handler, required bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		if !strings.HasPrefix(authHeader, "Bearer ") || token == "" {
			if required {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		claims, err := p.parse(token)
		if err != nil {
			if required {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			p.logger.Debug().Err(err).Msg("Ignoring invalid bearer token on optional route")
			next.ServeHTTP(w, r)
			return
		}

		ctx := ContextWithUser(r.Context(), User{UserID: claims.UserID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (p *JWTProvider) parse(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.UserID <= 0 {
		return nil, errors.New("token missing user id")
	}

	return claims, nil
}
