package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/hirenest/internal/client/models"
)

func (c *HTTPClient) postAuth(ctx context.Context, path string, body any) (*AuthResponse, error) {
	resp := &AuthResponse{}
	if err := c.doRequest(ctx, http.MethodPost, path, nil, body, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	return c.postAuth(ctx, pathRegister, req)
}

func (c *HTTPClient) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*AuthResponse, error) {
	return c.postAuth(ctx, pathVerifyOTP, req)
}

func (c *HTTPClient) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	return c.postAuth(ctx, pathLogin, req)
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodPost, pathLogout, nil, nil, nil)
}

// Refresh relies solely on the refresh cookie held in the jar.
func (c *HTTPClient) Refresh(ctx context.Context) (*AuthResponse, error) {
	return c.postAuth(ctx, pathRefresh, nil)
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*AuthResponse, error) {
	return c.postAuth(ctx, pathForgotPassword, req)
}

func (c *HTTPClient) VerifyResetOTP(ctx context.Context, req VerifyOTPRequest) (*AuthResponse, error) {
	return c.postAuth(ctx, pathVerifyResetOTP, req)
}

func (c *HTTPClient) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	return c.doRequest(ctx, http.MethodPost, pathResetPassword, nil, req, nil)
}

func (c *HTTPClient) AdminLogin(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	return c.postAuth(ctx, pathAdminLogin, req)
}

func (c *HTTPClient) AdminVerifyOTP(ctx context.Context, req VerifyOTPRequest) (*AuthResponse, error) {
	return c.postAuth(ctx, pathAdminVerifyOTP, req)
}

// SelectRole completes an OAuth sign-up; the server takes its payload from
// the query string.
func (c *HTTPClient) SelectRole(ctx context.Context, tempToken string, role models.UserType) (*AuthResponse, error) {
	q := url.Values{}
	q.Set("token", tempToken)
	q.Set("role", string(role))

	resp := &AuthResponse{}
	if err := c.doRequest(ctx, http.MethodPost, pathSelectRole, q, nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *HTTPClient) Profile(ctx context.Context) (*Profile, error) {
	p := &Profile{}
	if err := c.doRequest(ctx, http.MethodGet, pathProfile, nil, nil, p); err != nil {
		return nil, err
	}
	return p, nil
}
