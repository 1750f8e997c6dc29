package cli

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/hirenest/internal/client/client"
	"github.com/dmitrijs2005/hirenest/internal/client/models"
	"github.com/dmitrijs2005/hirenest/internal/client/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubDocument(t *testing.T) *string {
	t.Helper()
	var opened string
	orig := openDocument
	openDocument = func(path string) (client.Document, func() error, error) {
		opened = path
		if path == "missing.pdf" {
			return client.Document{}, nil, errors.New("no such file")
		}
		return client.Document{FileName: path, ContentType: "application/pdf", Content: strings.NewReader("%PDF")}, func() error { return nil }, nil
	}
	t.Cleanup(func() { openDocument = orig })
	return &opened
}

func TestDescribeVerification(t *testing.T) {
	assert.Contains(t, describeVerification(nil), "Not submitted")
	assert.Contains(t, describeVerification(models.NotSubmitted{}), "Not submitted")
	assert.Contains(t, describeVerification(models.Pending{Submission: models.Submission{CompanyName: "Acme"}}), "Pending review")
	assert.Contains(t, describeVerification(models.Approved{Submission: models.Submission{CompanyName: "Acme"}}), "verify-code")
	assert.Contains(t, describeVerification(models.Approved{CodeUsed: true}), "confirmed")

	banned := describeVerification(models.Banned{RejectionReason: "fake documents"})
	assert.Contains(t, banned, "cannot be resubmitted")
	assert.Contains(t, banned, "fake documents")
}

func TestStatus(t *testing.T) {
	ta := newTestApp(t, "")
	ta.verification.status = models.Approved{Submission: models.Submission{CompanyName: "Acme"}}

	require.NoError(t, ta.Status(context.Background()))
	assert.Contains(t, ta.out.String(), "Approved: Acme")
}

func TestSubmit(t *testing.T) {
	t.Run("sends fields and document", func(t *testing.T) {
		ta := newTestApp(t, "")
		opened := stubDocument(t)
		stubPrompts(t, []string{"Acme", "TAX-1", "", "proof.pdf"})

		require.NoError(t, ta.Submit(context.Background()))

		assert.Equal(t, services.SubmitRequest{CompanyName: "Acme", TaxID: "TAX-1"}, ta.verification.lastReq)
		assert.Equal(t, "proof.pdf", *opened)
		assert.Equal(t, "application/pdf", ta.verification.lastDoc.ContentType)
		assert.Contains(t, ta.out.String(), "Submitted.")
	})

	t.Run("document is required", func(t *testing.T) {
		ta := newTestApp(t, "")
		stubDocument(t)
		stubPrompts(t, []string{"Acme", "TAX-1", "", ""})

		require.ErrorIs(t, ta.Submit(context.Background()), client.ErrValidation)
	})

	t.Run("unreadable document", func(t *testing.T) {
		ta := newTestApp(t, "")
		stubDocument(t)
		stubPrompts(t, []string{"Acme", "TAX-1", "", "missing.pdf"})

		require.Error(t, ta.Submit(context.Background()))
		assert.Empty(t, ta.verification.lastReq.CompanyName)
	})
}

func TestVerifyCode(t *testing.T) {
	ta := newTestApp(t, "")
	stubPrompts(t, []string{"654321"})

	require.NoError(t, ta.VerifyCode(context.Background()))
	assert.Equal(t, "654321", ta.verification.lastCode)
	assert.Contains(t, ta.out.String(), "Company confirmed.")
}

func TestReview(t *testing.T) {
	t.Run("usage", func(t *testing.T) {
		ta := newTestApp(t, "")
		require.NoError(t, ta.Review(context.Background(), []string{"7"}))
		require.NoError(t, ta.Review(context.Background(), []string{"7", "maybe"}))
		assert.Empty(t, ta.verification.lastID)
		assert.Equal(t, 2, strings.Count(ta.out.String(), "Usage: review"))
	})

	t.Run("approve", func(t *testing.T) {
		ta := newTestApp(t, "")
		require.NoError(t, ta.Review(context.Background(), []string{"7", "APPROVE"}))
		assert.Equal(t, "7", ta.verification.lastID)
		assert.Equal(t, models.ReviewApprove, ta.verification.lastAction)
		assert.Empty(t, ta.verification.lastReason)
	})

	t.Run("reject asks for a reason", func(t *testing.T) {
		ta := newTestApp(t, "")
		stubPrompts(t, []string{"blurry scan"})

		require.NoError(t, ta.Review(context.Background(), []string{"9", "reject"}))
		assert.Equal(t, models.ReviewReject, ta.verification.lastAction)
		assert.Equal(t, "blurry scan", ta.verification.lastReason)
	})
}

func TestPendingAndAll(t *testing.T) {
	ta := newTestApp(t, "")

	require.NoError(t, ta.Pending(context.Background()))
	assert.Contains(t, ta.out.String(), "No verification records")

	submitted := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ta.verification.queue = []models.QueueItem{
		{ID: "1", EmployerEmail: "a@acme.io", Verification: models.Pending{Submission: models.Submission{CompanyName: "Acme", TaxID: "T1", SubmittedAt: submitted}}},
		{ID: "2", EmployerEmail: "b@beta.io", Verification: models.Banned{Submission: models.Submission{CompanyName: "Beta"}}},
	}

	require.NoError(t, ta.All(context.Background()))
	out := ta.out.String()
	assert.Contains(t, out, "EMPLOYER")
	assert.Contains(t, out, "a@acme.io")
	assert.Contains(t, out, "PENDING")
	assert.Contains(t, out, "BANNED")
}
