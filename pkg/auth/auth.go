package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v4"
)

const (
	XUserNameHeader = "X-User-Name"
	XUserRoleHeader = "X-User-Role"

	RoleAdmin = "admin"
	RoleUser  = "user"
)

// JWTKey is the HS256 key for the optional in-process JWT check.
// Set once at startup from config; empty disables JWT validation.
var JWTKey []byte

type Profile struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type Claims struct {
	Profile Profile `json:"profile"`
	jwt.RegisteredClaims
}

type Identity struct {
	Username string
	Role     string
}

func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}

type ctxKey struct{}

func SetAuthContext(ctx context.Context, username, role string) context.Context {
	return context.WithValue(ctx, ctxKey{}, Identity{Username: username, Role: role})
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
