// Package services contains the application services of the HireNest
// client. This file defines the session manager: the single owner of the
// authentication state and of every auth-related network flow.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/hirenest/internal/client/client"
	"github.com/dmitrijs2005/hirenest/internal/client/models"
	"github.com/dmitrijs2005/hirenest/internal/logging"
	"github.com/dmitrijs2005/hirenest/internal/token"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("access denied for this role")
)

// DefaultEnrichTimeout bounds the background profile fetch.
const DefaultEnrichTimeout = 10 * time.Second

// OTPResult tells the caller where a verify-otp step left the user.
type OTPResult int

const (
	// OTPResultLoggedIn means the server issued a token and the session is
	// authenticated.
	OTPResultLoggedIn OTPResult = iota + 1
	// OTPResultRoleSelection means an OAuth sign-up still needs a role; call
	// SelectRole.
	OTPResultRoleSelection
	// OTPResultVerified means the email is confirmed but no token was issued;
	// the caller should send the user to login.
	OTPResultVerified
	// OTPResultResetReady means a password-reset code was accepted; call
	// ResetPassword.
	OTPResultResetReady
)

func (r OTPResult) String() string {
	switch r {
	case OTPResultLoggedIn:
		return "logged_in"
	case OTPResultRoleSelection:
		return "role_selection"
	case OTPResultVerified:
		return "verified"
	case OTPResultResetReady:
		return "reset_ready"
	default:
		return "unknown"
	}
}

// SessionManager defines the authentication operations.
//
// Contract:
//   - Every mutation replaces the session snapshot as a whole and then
//     notifies subscribers with the new snapshot.
//   - Failed user-initiated calls set LastError and leave the rest of the
//     state as it was. Nothing is retried automatically.
//   - Initialize and Logout never fail because of the network.
//
// All methods must honor context cancellation/timeouts.
type SessionManager interface {
	Initialize(ctx context.Context) error
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, email, password string, userType models.UserType) (*client.AuthResponse, error)
	VerifyOTP(ctx context.Context, code string) (OTPResult, error)
	SelectRole(ctx context.Context, role models.UserType) error
	SocialLogin(ctx context.Context, rawToken, email string, role models.UserType) error
	AdminLogin(ctx context.Context, email, password string) (otpRequired bool, err error)
	ForgotPassword(ctx context.Context, email string) error
	VerifyResetOTP(ctx context.Context, code string) error
	ResetPassword(ctx context.Context, newPassword string) error
	Logout(ctx context.Context) error

	CanAccess(allowed ...models.UserType) bool
	Authorize(allowed ...models.UserType) error

	Snapshot() models.Session
	Subscribe(fn func(models.Session)) (unsubscribe func())

	// Wait blocks until background profile enrichment has finished.
	Wait()
}

type sessionManager struct {
	client        client.Client
	tokens        *token.Holder
	log           logging.Logger
	now           func() time.Time
	enrichTimeout time.Duration

	mu    sync.Mutex
	state models.Session
	// gen changes whenever the token changes; late enrichment results
	// carrying an older gen are dropped.
	gen     uint64
	subs    map[uint64]func(models.Session)
	nextSub uint64

	refresh singleflight.Group
	wg      sync.WaitGroup
}

type SessionOption func(*sessionManager)

func WithClock(now func() time.Time) SessionOption {
	return func(m *sessionManager) {
		m.now = now
	}
}

func WithEnrichTimeout(d time.Duration) SessionOption {
	return func(m *sessionManager) {
		m.enrichTimeout = d
	}
}

// NewSessionManager constructs a SessionManager. tokens must be the same
// holder the API client reads its bearer token from.
func NewSessionManager(c client.Client, tokens *token.Holder, log logging.Logger, opts ...SessionOption) SessionManager {
	m := &sessionManager{
		client:        c,
		tokens:        tokens,
		log:           log.With("component", "session"),
		now:           time.Now,
		enrichTimeout: DefaultEnrichTimeout,
		subs:          make(map[uint64]func(models.Session)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// apply runs fn on a copy of the state and publishes the copy if fn
// returns true.
func (m *sessionManager) apply(fn func(s *models.Session) bool) {
	m.mu.Lock()
	next := m.state.Clone()
	if !fn(&next) {
		m.mu.Unlock()
		return
	}
	m.state = next
	subs := make([]func(models.Session), 0, len(m.subs))
	for _, s := range m.subs {
		subs = append(subs, s)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(next.Clone())
	}
}

func (m *sessionManager) update(fn func(s *models.Session)) {
	m.apply(func(s *models.Session) bool {
		fn(s)
		return true
	})
}

func (m *sessionManager) startLoading() {
	m.update(func(s *models.Session) {
		s.Loading = true
		s.LastError = ""
	})
}

func (m *sessionManager) stopLoading() {
	m.update(func(s *models.Session) { s.Loading = false })
}

// fail records the user-facing message of err and returns err.
func (m *sessionManager) fail(err error) error {
	msg := client.Message(err)
	m.update(func(s *models.Session) { s.LastError = msg })
	return err
}

// authenticate derives the identity from raw and installs both the token
// and the identity in one replacement. The holder changes under the same
// lock, so subscribers never see it disagree with the session.
// Multi-step flow fields are cleared.
func (m *sessionManager) authenticate(ctx context.Context, raw string, defaults models.Identity) error {
	id, err := token.DecodeWithDefaults(raw, defaults)
	if err != nil {
		return fmt.Errorf("token: %w", err)
	}

	var gen uint64
	m.update(func(s *models.Session) {
		flowless := s.WithoutFlow()
		*s = flowless
		s.Token = raw
		s.Identity = &id
		s.LastError = ""
		m.gen++
		gen = m.gen
		m.tokens.Set(raw)
	})

	m.log.Info(ctx, "session established", "email", id.Email, "role", id.UserType)
	m.enrich(ctx, gen)
	return nil
}

// enrich fetches the profile in the background and merges display fields
// into the identity. It never fails the session.
func (m *sessionManager) enrich(ctx context.Context, gen uint64) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.enrichTimeout)
		defer cancel()

		p, err := m.client.Profile(ctx)
		if err != nil {
			m.log.Warn(ctx, "profile enrichment failed", "error", err)
			return
		}

		m.apply(func(s *models.Session) bool {
			if m.gen != gen || s.Identity == nil {
				return false
			}
			changed := false
			if name := p.DisplayName(); name != "" && name != s.Identity.DisplayName {
				s.Identity.DisplayName = name
				changed = true
			}
			if img := p.Image(); img != "" && img != s.Identity.ProfileImage {
				s.Identity.ProfileImage = img
				changed = true
			}
			return changed
		})
	}()
}

// reset drops the token and identity. CheckingAuth is preserved so the
// caller's deferred clear still applies.
func (m *sessionManager) reset() {
	m.update(func(s *models.Session) {
		checking := s.CheckingAuth
		*s = models.Session{CheckingAuth: checking}
		m.gen++
		m.tokens.Clear()
	})
}

func (m *sessionManager) Initialize(ctx context.Context) error {
	m.update(func(s *models.Session) { s.CheckingAuth = true })
	defer m.update(func(s *models.Session) { s.CheckingAuth = false })

	if raw := m.tokens.AccessToken(); raw != "" {
		snap := m.Snapshot()
		if snap.Token == raw && snap.IsAuthenticated(m.now()) {
			return nil
		}
		if err := m.authenticate(ctx, raw, models.Identity{}); err == nil {
			return nil
		}
		m.log.Debug(ctx, "in-memory token unusable, trying refresh")
	}

	v, err, _ := m.refresh.Do("refresh", func() (any, error) {
		return m.client.Refresh(ctx)
	})
	if err != nil {
		m.log.Debug(ctx, "silent refresh failed", "error", err)
		m.reset()
		return nil
	}

	resp := v.(*client.AuthResponse)
	raw := resp.BearerToken()
	if snap := m.Snapshot(); raw != "" && snap.Token == raw && snap.IsAuthenticated(m.now()) {
		return nil
	}
	if err := m.authenticate(ctx, raw, models.Identity{}); err != nil {
		m.log.Warn(ctx, "refresh returned an unusable token", "error", err)
		m.reset()
	}
	return nil
}

func requireFields(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return client.NewValidationError(pairs[i] + " is required")
		}
	}
	return nil
}

func (m *sessionManager) Login(ctx context.Context, email, password string) error {
	if err := requireFields("email", email, "password", password); err != nil {
		return m.fail(err)
	}

	m.startLoading()
	defer m.stopLoading()

	resp, err := m.client.Login(ctx, client.LoginRequest{Email: strings.TrimSpace(email), Password: password})
	if err != nil {
		return m.fail(fmt.Errorf("login: %w", err))
	}

	if err := m.authenticate(ctx, resp.BearerToken(), models.Identity{}); err != nil {
		return m.fail(fmt.Errorf("login: %w", err))
	}
	return nil
}

func (m *sessionManager) Register(ctx context.Context, email, password string, userType models.UserType) (*client.AuthResponse, error) {
	if err := requireFields("email", email, "password", password, "user type", string(userType)); err != nil {
		return nil, m.fail(err)
	}
	if _, err := models.ParseUserType(string(userType)); err != nil || userType == models.UserTypeAdmin {
		return nil, m.fail(client.NewValidationError("user type must be SEEKER or EMPLOYER"))
	}

	m.startLoading()
	defer m.stopLoading()

	email = strings.TrimSpace(email)
	resp, err := m.client.Register(ctx, client.RegisterRequest{Email: email, Password: password, UserType: userType})
	if err != nil {
		return nil, m.fail(fmt.Errorf("register: %w", err))
	}

	m.update(func(s *models.Session) {
		s.PendingEmail = email
		s.OTPPurpose = models.OTPPurposeRegister
	})
	return resp, nil
}

func (m *sessionManager) VerifyOTP(ctx context.Context, code string) (OTPResult, error) {
	snap := m.Snapshot()
	if snap.PendingEmail == "" {
		return 0, m.fail(client.NewValidationError("no verification in progress"))
	}
	if err := requireFields("code", code); err != nil {
		return 0, m.fail(err)
	}
	code = strings.TrimSpace(code)

	if snap.OTPPurpose == models.OTPPurposeReset {
		if err := m.VerifyResetOTP(ctx, code); err != nil {
			return 0, err
		}
		return OTPResultResetReady, nil
	}

	m.startLoading()
	defer m.stopLoading()

	req := client.VerifyOTPRequest{Email: snap.PendingEmail, OTP: code, Type: string(snap.OTPPurpose)}

	var (
		resp *client.AuthResponse
		err  error
	)
	if snap.OTPPurpose == models.OTPPurposeAdminLogin {
		resp, err = m.client.AdminVerifyOTP(ctx, req)
	} else {
		resp, err = m.client.VerifyOTP(ctx, req)
	}
	if err != nil {
		return 0, m.fail(fmt.Errorf("verify otp: %w", err))
	}

	switch {
	case resp.BearerToken() != "":
		if err := m.authenticate(ctx, resp.BearerToken(), models.Identity{Email: snap.PendingEmail}); err != nil {
			return 0, m.fail(fmt.Errorf("verify otp: %w", err))
		}
		return OTPResultLoggedIn, nil
	case resp.RequiresRoleSelection:
		m.update(func(s *models.Session) {
			*s = s.WithoutFlow()
			s.RoleSelectionToken = resp.TempToken
		})
		return OTPResultRoleSelection, nil
	default:
		m.update(func(s *models.Session) { *s = s.WithoutFlow() })
		return OTPResultVerified, nil
	}
}

func (m *sessionManager) SelectRole(ctx context.Context, role models.UserType) error {
	snap := m.Snapshot()
	if snap.RoleSelectionToken == "" {
		return m.fail(client.NewValidationError("no role selection in progress"))
	}
	if role != models.UserTypeSeeker && role != models.UserTypeEmployer {
		return m.fail(client.NewValidationError("role must be SEEKER or EMPLOYER"))
	}

	m.startLoading()
	defer m.stopLoading()

	resp, err := m.client.SelectRole(ctx, snap.RoleSelectionToken, role)
	if err != nil {
		return m.fail(fmt.Errorf("select role: %w", err))
	}

	if err := m.authenticate(ctx, resp.BearerToken(), models.Identity{UserType: role}); err != nil {
		return m.fail(fmt.Errorf("select role: %w", err))
	}
	return nil
}

// SocialLogin installs a token delivered by an OAuth redirect. email and
// role fill in claims the token lacks.
func (m *sessionManager) SocialLogin(ctx context.Context, rawToken, email string, role models.UserType) error {
	if err := requireFields("token", rawToken); err != nil {
		return m.fail(err)
	}

	if err := m.authenticate(ctx, strings.TrimSpace(rawToken), models.Identity{Email: email, UserType: role}); err != nil {
		return m.fail(fmt.Errorf("social login: %w", err))
	}
	return nil
}

func (m *sessionManager) AdminLogin(ctx context.Context, email, password string) (bool, error) {
	if err := requireFields("email", email, "password", password); err != nil {
		return false, m.fail(err)
	}

	m.startLoading()
	defer m.stopLoading()

	email = strings.TrimSpace(email)
	resp, err := m.client.AdminLogin(ctx, client.LoginRequest{Email: email, Password: password})
	if err != nil {
		return false, m.fail(fmt.Errorf("admin login: %w", err))
	}

	if raw := resp.BearerToken(); raw != "" {
		if err := m.authenticate(ctx, raw, models.Identity{Email: email, UserType: models.UserTypeAdmin}); err != nil {
			return false, m.fail(fmt.Errorf("admin login: %w", err))
		}
		return false, nil
	}

	m.update(func(s *models.Session) {
		s.PendingEmail = email
		s.OTPPurpose = models.OTPPurposeAdminLogin
	})
	return true, nil
}

func (m *sessionManager) ForgotPassword(ctx context.Context, email string) error {
	if err := requireFields("email", email); err != nil {
		return m.fail(err)
	}

	m.startLoading()
	defer m.stopLoading()

	email = strings.TrimSpace(email)
	if _, err := m.client.ForgotPassword(ctx, client.ForgotPasswordRequest{Email: email}); err != nil {
		return m.fail(fmt.Errorf("forgot password: %w", err))
	}

	m.update(func(s *models.Session) {
		*s = s.WithoutFlow()
		s.PendingEmail = email
		s.OTPPurpose = models.OTPPurposeReset
	})
	return nil
}

func (m *sessionManager) VerifyResetOTP(ctx context.Context, code string) error {
	snap := m.Snapshot()
	if snap.OTPPurpose != models.OTPPurposeReset || snap.PendingEmail == "" {
		return m.fail(client.NewValidationError("no password reset in progress"))
	}
	if err := requireFields("code", code); err != nil {
		return m.fail(err)
	}
	code = strings.TrimSpace(code)

	m.startLoading()
	defer m.stopLoading()

	resp, err := m.client.VerifyResetOTP(ctx, client.VerifyOTPRequest{
		Email: snap.PendingEmail,
		OTP:   code,
		Type:  string(models.OTPPurposeReset),
	})
	if err != nil {
		return m.fail(fmt.Errorf("verify reset code: %w", err))
	}

	resetToken := resp.ResetToken
	if resetToken == "" {
		resetToken = resp.Token
	}
	if resetToken == "" {
		resetToken = code
	}

	m.update(func(s *models.Session) { s.ResetToken = resetToken })
	return nil
}

func (m *sessionManager) ResetPassword(ctx context.Context, newPassword string) error {
	snap := m.Snapshot()
	if snap.ResetToken == "" {
		return m.fail(client.NewValidationError("reset code has not been verified"))
	}
	if err := requireFields("new password", newPassword); err != nil {
		return m.fail(err)
	}

	m.startLoading()
	defer m.stopLoading()

	err := m.client.ResetPassword(ctx, client.ResetPasswordRequest{
		Email:       snap.PendingEmail,
		ResetToken:  snap.ResetToken,
		NewPassword: newPassword,
	})
	if err != nil {
		return m.fail(fmt.Errorf("reset password: %w", err))
	}

	m.update(func(s *models.Session) { *s = s.WithoutFlow() })
	return nil
}

// Logout tells the server (best-effort) and always clears local state.
func (m *sessionManager) Logout(ctx context.Context) error {
	if err := m.client.Logout(ctx); err != nil {
		m.log.Warn(ctx, "logout call failed", "error", err)
	}

	m.update(func(s *models.Session) {
		*s = models.Session{}
		m.gen++
		m.tokens.Clear()
	})
	return nil
}

func (m *sessionManager) CanAccess(allowed ...models.UserType) bool {
	return m.Authorize(allowed...) == nil
}

// Authorize returns ErrNotAuthenticated or ErrForbidden. An empty allowed
// set admits any authenticated user.
func (m *sessionManager) Authorize(allowed ...models.UserType) error {
	s := m.Snapshot()
	if !s.IsAuthenticated(m.now()) {
		return ErrNotAuthenticated
	}
	if len(allowed) > 0 && !s.Identity.HasRole(allowed...) {
		return ErrForbidden
	}
	return nil
}

func (m *sessionManager) Snapshot() models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// Subscribe registers fn for every future snapshot. fn runs on the
// goroutine that made the change, so deliveries from different goroutines
// may arrive out of order; use Snapshot for the latest state.
func (m *sessionManager) Subscribe(fn func(models.Session)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *sessionManager) Wait() {
	m.wg.Wait()
}
