// Package token turns bearer access tokens into a client-side identity and
// keeps the current token in memory. Signatures are not checked here: the
// client only reads claims the server issued; the server verifies them on
// every request.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/hirenest/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrMissingRole  = errors.New("token carries no user type")
)

// now is swapped in tests.
var now = time.Now

var (
	roleClaims   = []string{"userType", "user_type", "role"}
	emailClaims  = []string{"email", "sub"}
	nameClaims   = []string{"fullName", "name", "displayName"}
	avatarClaims = []string{"profileImage", "avatar", "picture"}
)

// Decode derives an identity from raw. It is the only place in the module
// that reads token claims.
func Decode(raw string) (models.Identity, error) {
	return DecodeWithDefaults(raw, models.Identity{})
}

// DecodeWithDefaults is Decode, with Email and UserType taken from defaults
// when the token does not carry them (OAuth callbacks pass both alongside
// the token).
func DecodeWithDefaults(raw string, defaults models.Identity) (models.Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.Identity{}, ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id := models.Identity{
		Subject:      stringClaim(claims, "sub", "userId", "id"),
		Email:        emailClaim(claims),
		DisplayName:  stringClaim(claims, nameClaims...),
		ProfileImage: stringClaim(claims, avatarClaims...),
	}

	if role := stringClaim(claims, roleClaims...); role != "" {
		ut, err := models.ParseUserType(role)
		if err != nil {
			return models.Identity{}, fmt.Errorf("%w: %q", ErrMissingRole, role)
		}
		id.UserType = ut
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}

	if id.Email == "" {
		id.Email = defaults.Email
	}
	if id.UserType == "" {
		id.UserType = defaults.UserType
	}
	if id.UserType == "" {
		return models.Identity{}, ErrMissingRole
	}
	if id.Expired(now()) {
		return models.Identity{}, ErrTokenExpired
	}
	return id, nil
}

func stringClaim(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		if v, ok := claims[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// emailClaim prefers "email"; "sub" counts only when it looks like an address.
func emailClaim(claims jwt.MapClaims) string {
	for _, k := range emailClaims {
		if v, ok := claims[k].(string); ok && strings.Contains(v, "@") {
			return v
		}
	}
	return ""
}
