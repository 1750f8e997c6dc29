package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/hirenest/internal/client/client"
	"github.com/dmitrijs2005/hirenest/internal/client/models"
	"github.com/dmitrijs2005/hirenest/internal/client/services"
	"github.com/dmitrijs2005/hirenest/internal/logging"
)

type fakeSession struct {
	mu   sync.Mutex
	snap models.Session
	subs []func(models.Session)

	calls []string

	lastEmail    string
	lastPassword string
	lastRole     models.UserType
	lastCode     string
	lastToken    string

	otpResult   services.OTPResult
	otpRequired bool
	registerRes *client.AuthResponse
	err         error
	waited      bool
}

func sessionFor(email string, role models.UserType) models.Session {
	return models.Session{
		Token: "tok",
		Identity: &models.Identity{
			Email:     email,
			UserType:  role,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
}

func (f *fakeSession) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

// set replaces the snapshot and notifies subscribers like the real manager.
func (f *fakeSession) set(s models.Session) {
	f.mu.Lock()
	f.snap = s
	subs := append([]func(models.Session){}, f.subs...)
	f.mu.Unlock()
	for _, fn := range subs {
		fn(s)
	}
}

func (f *fakeSession) Initialize(ctx context.Context) error {
	f.record("initialize")
	return nil
}

func (f *fakeSession) Login(ctx context.Context, email, password string) error {
	f.record("login")
	f.lastEmail, f.lastPassword = email, password
	if f.err != nil {
		return f.err
	}
	f.set(sessionFor(email, models.UserTypeEmployer))
	return nil
}

func (f *fakeSession) Register(ctx context.Context, email, password string, userType models.UserType) (*client.AuthResponse, error) {
	f.record("register")
	f.lastEmail, f.lastPassword, f.lastRole = email, password, userType
	return f.registerRes, f.err
}

func (f *fakeSession) VerifyOTP(ctx context.Context, code string) (services.OTPResult, error) {
	f.record("verify-otp")
	f.lastCode = code
	return f.otpResult, f.err
}

func (f *fakeSession) SelectRole(ctx context.Context, role models.UserType) error {
	f.record("select-role")
	f.lastRole = role
	return f.err
}

func (f *fakeSession) SocialLogin(ctx context.Context, rawToken, email string, role models.UserType) error {
	f.record("social-login")
	f.lastToken, f.lastEmail, f.lastRole = rawToken, email, role
	return f.err
}

func (f *fakeSession) AdminLogin(ctx context.Context, email, password string) (bool, error) {
	f.record("admin-login")
	f.lastEmail, f.lastPassword = email, password
	return f.otpRequired, f.err
}

func (f *fakeSession) ForgotPassword(ctx context.Context, email string) error {
	f.record("forgot-password")
	f.lastEmail = email
	return f.err
}

func (f *fakeSession) VerifyResetOTP(ctx context.Context, code string) error {
	f.record("verify-reset-otp")
	return f.err
}

func (f *fakeSession) ResetPassword(ctx context.Context, newPassword string) error {
	f.record("reset-password")
	f.lastPassword = newPassword
	return f.err
}

func (f *fakeSession) Logout(ctx context.Context) error {
	f.record("logout")
	f.set(models.Session{})
	return nil
}

func (f *fakeSession) CanAccess(allowed ...models.UserType) bool {
	s := f.Snapshot()
	return s.IsAuthenticated(time.Now()) && s.Identity.HasRole(allowed...)
}

func (f *fakeSession) Authorize(allowed ...models.UserType) error {
	if !f.CanAccess(allowed...) {
		return services.ErrForbidden
	}
	return nil
}

func (f *fakeSession) Snapshot() models.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap.Clone()
}

func (f *fakeSession) Subscribe(fn func(models.Session)) func() {
	f.mu.Lock()
	f.subs = append(f.subs, fn)
	idx := len(f.subs) - 1
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.subs[idx] = func(models.Session) {}
		f.mu.Unlock()
	}
}

func (f *fakeSession) Wait() {
	f.mu.Lock()
	f.waited = true
	f.mu.Unlock()
}

type fakeVerification struct {
	mu sync.Mutex

	status  models.Verification
	queue   []models.QueueItem
	current models.Verification
	err     error

	resets     int
	loads      int
	lastReq    services.SubmitRequest
	lastDoc    client.Document
	lastCode   string
	lastID     string
	lastAction models.ReviewAction
	lastReason string
}

func (f *fakeVerification) FetchStatus(ctx context.Context) (models.Verification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.current = f.status
	return f.status, nil
}

func (f *fakeVerification) Submit(ctx context.Context, req services.SubmitRequest, doc client.Document) (models.Verification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastReq, f.lastDoc = req, doc
	if f.err != nil {
		return nil, f.err
	}
	return models.Pending{Submission: models.Submission{CompanyName: req.CompanyName}}, nil
}

func (f *fakeVerification) VerifyCode(ctx context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCode = code
	return f.err
}

func (f *fakeVerification) ListPending(ctx context.Context) ([]models.QueueItem, error) {
	return f.LoadPending(ctx)
}

func (f *fakeVerification) ListAll(ctx context.Context) ([]models.QueueItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue, f.err
}

func (f *fakeVerification) Review(ctx context.Context, id string, action models.ReviewAction, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastID, f.lastAction, f.lastReason = id, action, reason
	return f.err
}

func (f *fakeVerification) LoadStatus(ctx context.Context) (models.Verification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.status == nil {
		return models.NotSubmitted{}, nil
	}
	return f.status, nil
}

func (f *fakeVerification) LoadPending(ctx context.Context) ([]models.QueueItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return f.queue, f.err
}

func (f *fakeVerification) SetCurrent(v models.Verification) {
	f.mu.Lock()
	f.current = v
	f.mu.Unlock()
}

func (f *fakeVerification) Current() models.Verification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *fakeVerification) Queue() ([]models.QueueItem, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue, false
}

func (f *fakeVerification) Reset() {
	f.mu.Lock()
	f.resets++
	f.current = nil
	f.mu.Unlock()
}

func (f *fakeVerification) Loads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

func (f *fakeVerification) Resets() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resets
}

// syncBuffer is a bytes.Buffer safe for the watcher goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type testApp struct {
	*App
	session       *fakeSession
	verification  *fakeVerification
	notifications services.NotificationService
	out           *syncBuffer
}

func newTestApp(t *testing.T, input string) *testApp {
	t.Helper()
	log := logging.NewNop()
	ta := &testApp{
		session:       &fakeSession{},
		verification:  &fakeVerification{},
		notifications: services.NewNotificationService(nil, 0, log),
		out:           &syncBuffer{},
	}
	ta.App = newApp(Deps{
		Log:           log,
		Session:       ta.session,
		Verification:  ta.verification,
		Notifications: ta.notifications,
		In:            strings.NewReader(input),
		Out:           ta.out,
	})
	t.Cleanup(ta.App.Close)
	return ta
}

// stubPrompts replaces the interactive helpers with canned answers.
func stubPrompts(t *testing.T, texts []string, passwords ...string) {
	t.Helper()
	origST, origGP, origML := getSimpleText, getPassword, getMultiline

	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			return "", io.EOF
		}
		v := texts[0]
		texts = texts[1:]
		return v, nil
	}
	getMultiline = func(r *bufio.Reader, p string, w io.Writer) (string, error) {
		return getSimpleText(r, p, w)
	}
	getPassword = func(_ string, _ io.Writer) ([]byte, error) {
		if len(passwords) == 0 {
			return nil, io.EOF
		}
		v := passwords[0]
		passwords = passwords[1:]
		return []byte(v), nil
	}

	t.Cleanup(func() {
		getSimpleText, getPassword, getMultiline = origST, origGP, origML
	})
}
