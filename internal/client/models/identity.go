// Package models defines client-side data models: the authentication
// session, the company-verification state and local notifications.
package models

import (
	"errors"
	"strings"
	"time"
)

// UserType is the role carried in the access token.
type UserType string

const (
	UserTypeSeeker   UserType = "SEEKER"
	UserTypeEmployer UserType = "EMPLOYER"
	UserTypeAdmin    UserType = "ADMIN"
)

var ErrUnknownUserType = errors.New("unknown user type")

// ParseUserType accepts any casing and the legacy "JOB_SEEKER" spelling.
func ParseUserType(s string) (UserType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SEEKER", "JOB_SEEKER":
		return UserTypeSeeker, nil
	case "EMPLOYER":
		return UserTypeEmployer, nil
	case "ADMIN":
		return UserTypeAdmin, nil
	default:
		return "", ErrUnknownUserType
	}
}

// Identity is what the client knows about the logged-in user. Email and
// UserType come from token claims; DisplayName and ProfileImage may be
// filled later by profile enrichment.
type Identity struct {
	Subject      string
	Email        string
	UserType     UserType
	DisplayName  string
	ProfileImage string
	// ExpiresAt is zero when the token carries no exp claim.
	ExpiresAt time.Time
}

// Expired reports whether the identity's token is past its expiry at now.
func (i Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// Account identifies whose data this is on a shared client: the token
// subject, or the email when the token carries none.
func (i Identity) Account() string {
	if i.Subject != "" {
		return i.Subject
	}
	return strings.ToLower(strings.TrimSpace(i.Email))
}

// HasRole reports whether the identity's role is one of allowed.
func (i Identity) HasRole(allowed ...UserType) bool {
	for _, r := range allowed {
		if i.UserType == r {
			return true
		}
	}
	return false
}
