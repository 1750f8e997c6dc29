package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/hirenest/internal/client/models"
)

// SubmitVerification uploads the company details and document. It uses the
// extended upload timeout.
func (c *HTTPClient) SubmitVerification(ctx context.Context, req SubmitVerificationRequest) error {
	fields := map[string]string{
		"companyName": req.CompanyName,
		"taxId":       req.TaxID,
		"website":     req.Website,
	}
	return c.doMultipart(ctx, pathSubmitVerification, fields, "document", req.Document, nil)
}

// VerificationStatus returns the current record. A 404 comes back as an
// *Error of KindNotFound; mapping it to NotSubmitted is the caller's call.
func (c *HTTPClient) VerificationStatus(ctx context.Context) (models.Verification, error) {
	var dto VerificationDTO
	if err := c.doRequest(ctx, http.MethodGet, pathVerificationStatus, nil, nil, &dto); err != nil {
		return nil, err
	}
	v, err := dto.ToModel()
	if err != nil {
		return nil, &Error{Kind: KindServer, Message: "Unexpected response from server.", Err: err}
	}
	return v, nil
}

func (c *HTTPClient) VerifyCode(ctx context.Context, code string) error {
	return c.doRequest(ctx, http.MethodPost, pathVerifyCode, nil, verifyCodeRequest{Code: code}, nil)
}

func (c *HTTPClient) PendingVerifications(ctx context.Context) ([]models.QueueItem, error) {
	return c.listVerifications(ctx, pathAdminPending)
}

func (c *HTTPClient) AllVerifications(ctx context.Context) ([]models.QueueItem, error) {
	return c.listVerifications(ctx, pathAdminVerifications)
}

func (c *HTTPClient) listVerifications(ctx context.Context, path string) ([]models.QueueItem, error) {
	var dtos []VerificationDTO
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &dtos); err != nil {
		return nil, err
	}

	items := make([]models.QueueItem, 0, len(dtos))
	for _, d := range dtos {
		it, err := d.toQueueItem()
		if err != nil {
			return nil, &Error{Kind: KindServer, Message: "Unexpected response from server.", Err: fmt.Errorf("record %s: %w", d.ID, err)}
		}
		items = append(items, it)
	}
	return items, nil
}

func (c *HTTPClient) ReviewVerification(ctx context.Context, id string, action models.ReviewAction, reason string) error {
	path := pathAdminVerifications + "/" + url.PathEscape(id) + "/review"
	return c.doRequest(ctx, http.MethodPut, path, nil, reviewRequest{Action: action, RejectionReason: reason}, nil)
}
