package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type claims struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuthenticator issues and checks HS256 tokens carrying the username.
type JWTAuthenticator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTAuthenticator(secret string, ttl time.Duration) *JWTAuthenticator {
	return &JWTAuthenticator{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (a *JWTAuthenticator) Generate(id Identity) (string, error) {
	if id.Username == "" {
		return "", errors.New("username is required")
	}
	now := a.now()
	c := claims{
		Username:    id.Username,
		DisplayName: id.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Authenticate reads the token from the token query parameter, which browsers
// can set on websocket URLs, or from an Authorization bearer header.
func (a *JWTAuthenticator) Authenticate(r *http.Request) (Identity, error) {
	raw := r.URL.Query().Get("token")
	if raw == "" {
		raw = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	if raw == "" {
		return Identity{}, ErrUnauthenticated
	}
	return a.Parse(raw)
}

func (a *JWTAuthenticator) Parse(raw string) (Identity, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	if c.Username == "" {
		return Identity{}, ErrUnauthenticated
	}
	return Identity{Username: c.Username, DisplayName: c.DisplayName}, nil
}
