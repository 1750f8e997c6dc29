package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/hirenest/internal/client/client"
	"github.com/dmitrijs2005/hirenest/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// fakeClient implements client.Client for service unit tests. Every call
// is counted by method name; Last* fields capture arguments.
type fakeClient struct {
	mu    sync.Mutex
	calls map[string]int

	RegisterRet *client.AuthResponse
	RegisterErr error

	VerifyOTPRet *client.AuthResponse
	VerifyOTPErr error

	LoginRet *client.AuthResponse
	LoginErr error

	LogoutErr error

	RefreshRet *client.AuthResponse
	RefreshErr error
	// RefreshBlock, when set, makes Refresh wait until it is closed.
	RefreshBlock chan struct{}

	ForgotErr         error
	VerifyResetRet    *client.AuthResponse
	VerifyResetErr    error
	ResetPasswordErr  error
	AdminLoginRet     *client.AuthResponse
	AdminLoginErr     error
	AdminVerifyOTPRet *client.AuthResponse
	AdminVerifyOTPErr error
	SelectRoleRet     *client.AuthResponse
	SelectRoleErr     error

	ProfileRet *client.Profile
	ProfileErr error
	// ProfileBlock, when set, makes Profile wait until it is closed.
	ProfileBlock chan struct{}

	SubmitErr  error
	StatusRet  []models.Verification
	StatusErr  error
	VerifyErr  error
	PendingRet []models.QueueItem
	PendingErr error
	AllRet     []models.QueueItem
	AllErr     error
	ReviewErr  error

	LastLogin         client.LoginRequest
	LastRegister      client.RegisterRequest
	LastVerifyOTP     client.VerifyOTPRequest
	LastSelectToken   string
	LastSelectRole    models.UserType
	LastSubmit        client.SubmitVerificationRequest
	LastCode          string
	LastReviewID      string
	LastReviewAction  models.ReviewAction
	LastReviewReason  string
	LastResetPassword client.ResetPasswordRequest
}

var _ client.Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{calls: make(map[string]int)}
}

func (f *fakeClient) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeClient) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeClient) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func authOrEmpty(r *client.AuthResponse) *client.AuthResponse {
	if r == nil {
		return &client.AuthResponse{}
	}
	return r
}

func (f *fakeClient) Register(ctx context.Context, req client.RegisterRequest) (*client.AuthResponse, error) {
	f.record("Register")
	f.LastRegister = req
	if f.RegisterErr != nil {
		return nil, f.RegisterErr
	}
	return authOrEmpty(f.RegisterRet), nil
}

func (f *fakeClient) VerifyOTP(ctx context.Context, req client.VerifyOTPRequest) (*client.AuthResponse, error) {
	f.record("VerifyOTP")
	f.LastVerifyOTP = req
	if f.VerifyOTPErr != nil {
		return nil, f.VerifyOTPErr
	}
	return authOrEmpty(f.VerifyOTPRet), nil
}

func (f *fakeClient) Login(ctx context.Context, req client.LoginRequest) (*client.AuthResponse, error) {
	f.record("Login")
	f.LastLogin = req
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	return authOrEmpty(f.LoginRet), nil
}

func (f *fakeClient) Logout(ctx context.Context) error {
	f.record("Logout")
	return f.LogoutErr
}

func (f *fakeClient) Refresh(ctx context.Context) (*client.AuthResponse, error) {
	f.record("Refresh")
	if f.RefreshBlock != nil {
		<-f.RefreshBlock
	}
	if f.RefreshErr != nil {
		return nil, f.RefreshErr
	}
	return authOrEmpty(f.RefreshRet), nil
}

func (f *fakeClient) ForgotPassword(ctx context.Context, req client.ForgotPasswordRequest) (*client.AuthResponse, error) {
	f.record("ForgotPassword")
	if f.ForgotErr != nil {
		return nil, f.ForgotErr
	}
	return &client.AuthResponse{}, nil
}

func (f *fakeClient) VerifyResetOTP(ctx context.Context, req client.VerifyOTPRequest) (*client.AuthResponse, error) {
	f.record("VerifyResetOTP")
	f.LastVerifyOTP = req
	if f.VerifyResetErr != nil {
		return nil, f.VerifyResetErr
	}
	return authOrEmpty(f.VerifyResetRet), nil
}

func (f *fakeClient) ResetPassword(ctx context.Context, req client.ResetPasswordRequest) error {
	f.record("ResetPassword")
	f.LastResetPassword = req
	return f.ResetPasswordErr
}

func (f *fakeClient) AdminLogin(ctx context.Context, req client.LoginRequest) (*client.AuthResponse, error) {
	f.record("AdminLogin")
	f.LastLogin = req
	if f.AdminLoginErr != nil {
		return nil, f.AdminLoginErr
	}
	return authOrEmpty(f.AdminLoginRet), nil
}

func (f *fakeClient) AdminVerifyOTP(ctx context.Context, req client.VerifyOTPRequest) (*client.AuthResponse, error) {
	f.record("AdminVerifyOTP")
	f.LastVerifyOTP = req
	if f.AdminVerifyOTPErr != nil {
		return nil, f.AdminVerifyOTPErr
	}
	return authOrEmpty(f.AdminVerifyOTPRet), nil
}

func (f *fakeClient) SelectRole(ctx context.Context, tempToken string, role models.UserType) (*client.AuthResponse, error) {
	f.record("SelectRole")
	f.LastSelectToken = tempToken
	f.LastSelectRole = role
	if f.SelectRoleErr != nil {
		return nil, f.SelectRoleErr
	}
	return authOrEmpty(f.SelectRoleRet), nil
}

func (f *fakeClient) Profile(ctx context.Context) (*client.Profile, error) {
	f.record("Profile")
	if f.ProfileBlock != nil {
		<-f.ProfileBlock
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ProfileErr != nil {
		return nil, f.ProfileErr
	}
	if f.ProfileRet == nil {
		return &client.Profile{}, nil
	}
	p := *f.ProfileRet
	return &p, nil
}

func (f *fakeClient) SubmitVerification(ctx context.Context, req client.SubmitVerificationRequest) error {
	f.record("SubmitVerification")
	f.LastSubmit = req
	return f.SubmitErr
}

// VerificationStatus pops StatusRet front to back; the last element
// repeats.
func (f *fakeClient) VerificationStatus(ctx context.Context) (models.Verification, error) {
	f.record("VerificationStatus")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StatusErr != nil {
		return nil, f.StatusErr
	}
	if len(f.StatusRet) == 0 {
		return models.NotSubmitted{}, nil
	}
	v := f.StatusRet[0]
	if len(f.StatusRet) > 1 {
		f.StatusRet = f.StatusRet[1:]
	}
	return v, nil
}

func (f *fakeClient) SetStatus(v ...models.Verification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.StatusRet = v
}

func (f *fakeClient) VerifyCode(ctx context.Context, code string) error {
	f.record("VerifyCode")
	f.LastCode = code
	return f.VerifyErr
}

func (f *fakeClient) PendingVerifications(ctx context.Context) ([]models.QueueItem, error) {
	f.record("PendingVerifications")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PendingErr != nil {
		return nil, f.PendingErr
	}
	out := make([]models.QueueItem, len(f.PendingRet))
	copy(out, f.PendingRet)
	return out, nil
}

func (f *fakeClient) SetPending(items ...models.QueueItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PendingRet = items
}

func (f *fakeClient) AllVerifications(ctx context.Context) ([]models.QueueItem, error) {
	f.record("AllVerifications")
	if f.AllErr != nil {
		return nil, f.AllErr
	}
	out := make([]models.QueueItem, len(f.AllRet))
	copy(out, f.AllRet)
	return out, nil
}

func (f *fakeClient) ReviewVerification(ctx context.Context, id string, action models.ReviewAction, reason string) error {
	f.record("ReviewVerification")
	f.LastReviewID = id
	f.LastReviewAction = action
	f.LastReviewReason = reason
	return f.ReviewErr
}

// ---- helpers ----

func makeToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func tokenFor(t *testing.T, email string, role models.UserType) string {
	t.Helper()
	return makeToken(t, jwt.MapClaims{"sub": "1", "email": email, "userType": string(role)})
}

func pendingItem(id string, at time.Time) models.QueueItem {
	return models.QueueItem{
		ID:            id,
		EmployerEmail: id + "@corp.io",
		Verification:  models.Pending{Submission: models.Submission{CompanyName: "Co " + id, SubmittedAt: at}},
	}
}
