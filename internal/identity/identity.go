// Package identity resolves who is on the other end of a connection and
// what their display name is. Authorization always uses the username; the
// display name is presentation only.
package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var ErrUnauthenticated = errors.New("unauthenticated")
var ErrUnknownPlayer = errors.New("unknown player")

type Identity struct {
	Username    string
	DisplayName string
}

type Authenticator interface {
	Authenticate(r *http.Request) (Identity, error)
}

// Directory maps usernames to display names.
type Directory interface {
	DisplayName(ctx context.Context, username string) (string, error)
	SetDisplayName(ctx context.Context, username, displayName string) error
}

// DevAuthenticator trusts the username and displayName query parameters.
// It is meant for local play where no secret is configured.
type DevAuthenticator struct{}

func (DevAuthenticator) Authenticate(r *http.Request) (Identity, error) {
	q := r.URL.Query()
	username := strings.TrimSpace(q.Get("username"))
	if username == "" {
		return Identity{}, ErrUnauthenticated
	}
	return Identity{
		Username:    username,
		DisplayName: strings.TrimSpace(q.Get("displayName")),
	}, nil
}

// ResolveName returns the display name for username, falling back to the
// username itself when the directory has none.
func ResolveName(ctx context.Context, dir Directory, username string) string {
	if dir == nil {
		return username
	}
	name, err := dir.DisplayName(ctx, username)
	if err != nil || name == "" {
		return username
	}
	return name
}
