package models

import "time"

// OTPPurpose tells the verify-otp step which flow it belongs to.
type OTPPurpose string

const (
	OTPPurposeNone       OTPPurpose = ""
	OTPPurposeRegister   OTPPurpose = "REGISTER"
	OTPPurposeAdminLogin OTPPurpose = "ADMIN_LOGIN"
	OTPPurposeReset      OTPPurpose = "RESET_PASSWORD"
)

// Session is an immutable snapshot of the authentication context. The
// session manager replaces it as a whole; callers get copies.
type Session struct {
	// Token is the bearer access token. It is never persisted.
	Token    string
	Identity *Identity

	Loading      bool
	CheckingAuth bool
	LastError    string

	// Fields below belong to multi-step flows and are cleared when the
	// flow completes.
	PendingEmail       string
	OTPPurpose         OTPPurpose
	RoleSelectionToken string
	ResetToken         string
}

// IsAuthenticated is true iff a non-expired token is held and an identity
// was derived from it.
func (s Session) IsAuthenticated(now time.Time) bool {
	return s.Token != "" && s.Identity != nil && !s.Identity.Expired(now)
}

// Clone returns a deep copy safe to hand to other goroutines.
func (s Session) Clone() Session {
	if s.Identity != nil {
		id := *s.Identity
		s.Identity = &id
	}
	return s
}

// WithoutFlow returns s with every multi-step field cleared.
func (s Session) WithoutFlow() Session {
	s.PendingEmail = ""
	s.OTPPurpose = OTPPurposeNone
	s.RoleSelectionToken = ""
	s.ResetToken = ""
	return s
}
