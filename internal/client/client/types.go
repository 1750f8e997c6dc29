package client

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/hirenest/internal/client/models"
)

type RegisterRequest struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	UserType models.UserType `json:"userType"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
	Type  string `json:"type,omitempty"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	ResetToken  string `json:"resetToken"`
	NewPassword string `json:"newPassword"`
}

// AuthResponse covers every auth endpoint; each fills only some fields.
type AuthResponse struct {
	AccessToken           string `json:"accessToken"`
	Token                 string `json:"token"`
	RequiresRoleSelection bool   `json:"requiresRoleSelection"`
	TempToken             string `json:"tempToken"`
	OTPToken              string `json:"otpToken"`
	ResetToken            string `json:"resetToken"`
	Message               string `json:"message"`
}

// BearerToken returns the access token under either of its names.
func (r *AuthResponse) BearerToken() string {
	if r == nil {
		return ""
	}
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

// Profile is the subset of the user profile used for display.
type Profile struct {
	FullName     string `json:"fullName"`
	Name         string `json:"name"`
	ProfileImage string `json:"profileImage"`
	Avatar       string `json:"avatar"`
}

func (p Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Name
}

func (p Profile) Image() string {
	if p.ProfileImage != "" {
		return p.ProfileImage
	}
	return p.Avatar
}

// Document is the file attached to a verification submission.
type Document struct {
	FileName    string
	ContentType string
	Content     io.Reader
}

type SubmitVerificationRequest struct {
	CompanyName string
	TaxID       string
	Website     string
	Document    Document
}

type verifyCodeRequest struct {
	Code string `json:"code"`
}

type reviewRequest struct {
	Action          models.ReviewAction `json:"action"`
	RejectionReason string              `json:"rejectionReason,omitempty"`
}

// flexID accepts both numeric and string identifiers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type employerDTO struct {
	Email string `json:"email"`
}

// VerificationDTO is the wire shape of a verification record. It is turned
// into the models.Verification variant by ToModel and never leaves this
// package otherwise.
type VerificationDTO struct {
	ID              flexID       `json:"id"`
	CompanyName     string       `json:"companyName"`
	TaxID           string       `json:"taxId"`
	Website         string       `json:"website"`
	DocumentURL     string       `json:"documentUrl"`
	Status          string       `json:"status"`
	RejectionReason string       `json:"rejectionReason"`
	CodeUsed        bool         `json:"codeUsed"`
	SubmittedAt     *time.Time   `json:"submittedAt"`
	CreatedAt       *time.Time   `json:"createdAt"`
	ReviewedAt      *time.Time   `json:"reviewedAt"`
	EmployerEmail   string       `json:"employerEmail"`
	Employer        *employerDTO `json:"employer"`
}

func (d VerificationDTO) submission() models.Submission {
	s := models.Submission{
		CompanyName: d.CompanyName,
		TaxID:       d.TaxID,
		Website:     d.Website,
		DocumentURL: d.DocumentURL,
	}
	switch {
	case d.SubmittedAt != nil:
		s.SubmittedAt = *d.SubmittedAt
	case d.CreatedAt != nil:
		s.SubmittedAt = *d.CreatedAt
	}
	return s
}

// ToModel converts the DTO into its tagged variant.
func (d VerificationDTO) ToModel() (models.Verification, error) {
	var reviewedAt time.Time
	if d.ReviewedAt != nil {
		reviewedAt = *d.ReviewedAt
	}

	switch strings.ToUpper(d.Status) {
	case string(models.StatusNotSubmitted), "":
		return models.NotSubmitted{}, nil
	case string(models.StatusPending):
		return models.Pending{Submission: d.submission()}, nil
	case string(models.StatusApproved):
		return models.Approved{Submission: d.submission(), ReviewedAt: reviewedAt, CodeUsed: d.CodeUsed}, nil
	case string(models.StatusBanned), "REJECTED":
		return models.Banned{Submission: d.submission(), ReviewedAt: reviewedAt, RejectionReason: d.RejectionReason}, nil
	default:
		return nil, fmt.Errorf("unknown verification status %s", strconv.Quote(d.Status))
	}
}

func (d VerificationDTO) toQueueItem() (models.QueueItem, error) {
	v, err := d.ToModel()
	if err != nil {
		return models.QueueItem{}, err
	}
	email := d.EmployerEmail
	if email == "" && d.Employer != nil {
		email = d.Employer.Email
	}
	return models.QueueItem{ID: string(d.ID), EmployerEmail: email, Verification: v}, nil
}
