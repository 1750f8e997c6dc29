package client

import (
	"context"

	"github.com/dmitrijs2005/hirenest/internal/client/models"
)

// API paths. The server contract is fixed; see package doc.
const (
	pathRegister       = "/api/v1/auth/register"
	pathVerifyOTP      = "/api/v1/auth/verify-otp"
	pathLogin          = "/api/v1/auth/login"
	pathLogout         = "/api/v1/auth/logout"
	pathRefresh        = "/api/v1/auth/refresh"
	pathForgotPassword = "/api/v1/auth/forgot-password"
	pathVerifyResetOTP = "/api/v1/auth/verify-reset-otp"
	pathResetPassword  = "/api/v1/auth/reset-password"
	pathSelectRole     = "/api/v1/auth/select-role"
	pathAdminLogin     = "/api/v1/admin/auth/login"
	pathAdminVerifyOTP = "/api/v1/admin/auth/verify-otp"
	pathProfile        = "/api/v1/users/me"

	pathSubmitVerification = "/api/v1/employer/verification"
	pathVerificationStatus = "/api/v1/employer/verification/status"
	pathVerifyCode         = "/api/v1/employer/verification/verify-code"
	pathAdminVerifications = "/api/v1/admin/company-verifications"
	pathAdminPending       = "/api/v1/admin/company-verifications/pending"
)

// Client is the transport-agnostic contract the services depend on.
type Client interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) (*AuthResponse, error)
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*AuthResponse, error)
	VerifyResetOTP(ctx context.Context, req VerifyOTPRequest) (*AuthResponse, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	AdminLogin(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	AdminVerifyOTP(ctx context.Context, req VerifyOTPRequest) (*AuthResponse, error)
	SelectRole(ctx context.Context, tempToken string, role models.UserType) (*AuthResponse, error)
	Profile(ctx context.Context) (*Profile, error)

	SubmitVerification(ctx context.Context, req SubmitVerificationRequest) error
	VerificationStatus(ctx context.Context) (models.Verification, error)
	VerifyCode(ctx context.Context, code string) error
	PendingVerifications(ctx context.Context) ([]models.QueueItem, error)
	AllVerifications(ctx context.Context) ([]models.QueueItem, error)
	ReviewVerification(ctx context.Context, id string, action models.ReviewAction, reason string) error
}
