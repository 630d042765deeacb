package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the handshake cookie carrying the session token.
const CookieName = "token"

var (
	ErrNoToken      = errors.New("no session token")
	ErrInvalidToken = errors.New("invalid session token")
)

// TokenVerifier resolves a session token to a user id.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (int, error)
}

// JWTVerifier validates HS256-signed session tokens issued by the
// application's auth endpoints.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier constructs a JWTVerifier.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify checks signature and expiry and returns the user id claim.
func (v *JWTVerifier) Verify(_ context.Context, token string) (int, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	if id := userIDFromClaims(claims); id > 0 {
		return id, nil
	}
	return 0, ErrInvalidToken
}

// The issuing side writes the user id either as a numeric userId claim or
// as the subject.
func userIDFromClaims(claims jwt.MapClaims) int {
	if v, ok := claims["userId"].(float64); ok {
		return int(v)
	}
	switch sub := claims["sub"].(type) {
	case float64:
		return int(sub)
	case string:
		if id, err := strconv.Atoi(sub); err == nil {
			return id
		}
	}
	return 0
}

// TokenFromCookieHeader extracts the session token from a raw Cookie
// header, as presented by the websocket handshake.
func TokenFromCookieHeader(header string) (string, error) {
	if header == "" {
		return "", ErrNoToken
	}
	req := http.Request{Header: http.Header{"Cookie": {header}}}
	cookie, err := req.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", ErrNoToken
	}
	return cookie.Value, nil
}
