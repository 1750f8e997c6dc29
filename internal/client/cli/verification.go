package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/hirenest/internal/client/client"
	"github.com/dmitrijs2005/hirenest/internal/client/models"
	"github.com/dmitrijs2005/hirenest/internal/client/services"
)

const timeLayout = "2006-01-02 15:04"

// openDocument is a test seam for reading the proof document from disk.
var openDocument = func(path string) (client.Document, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return client.Document{}, nil, err
	}
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if ct == "" {
		ct = "application/octet-stream"
	}
	return client.Document{FileName: filepath.Base(path), ContentType: ct, Content: f}, f.Close, nil
}

func describeVerification(v models.Verification) string {
	switch s := v.(type) {
	case nil, models.NotSubmitted:
		return "Not submitted. Use 'submit' to send your company details."
	case models.Pending:
		return fmt.Sprintf("Pending review (submitted %s for %s).", s.SubmittedAt.Local().Format(timeLayout), s.CompanyName)
	case models.Approved:
		if s.CodeUsed {
			return fmt.Sprintf("Approved and confirmed: %s.", s.CompanyName)
		}
		return fmt.Sprintf("Approved: %s. Enter the confirmation code with 'verify-code'.", s.CompanyName)
	case models.Banned:
		msg := "Rejected. This verification cannot be resubmitted."
		if s.RejectionReason != "" {
			msg += " Reason: " + s.RejectionReason
		}
		return msg
	default:
		return string(v.Status())
	}
}

// Status fetches and prints the employer's verification record.
func (a *App) Status(ctx context.Context) error {
	v, err := a.verification.FetchStatus(ctx)
	if err != nil {
		return err
	}
	a.println(describeVerification(v))
	return nil
}

// Submit prompts for the company details and a proof document and sends
// them for review.
func (a *App) Submit(ctx context.Context) error {
	var req services.SubmitRequest
	var err error

	if req.CompanyName, err = a.prompt("Company name"); err != nil {
		return err
	}
	if req.TaxID, err = a.prompt("Tax ID"); err != nil {
		return err
	}
	if req.Website, err = a.prompt("Website (optional)"); err != nil {
		return err
	}
	path, err := a.prompt("Path to proof document")
	if err != nil {
		return err
	}
	if path == "" {
		return client.NewValidationError("A proof document is required.")
	}

	doc, closeDoc, err := openDocument(path)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	defer func() { _ = closeDoc() }()

	v, err := a.verification.Submit(ctx, req, doc)
	if err != nil {
		return err
	}
	a.println("Submitted.", describeVerification(v))
	return nil
}

// VerifyCode sends the six-digit confirmation code of an approved company.
func (a *App) VerifyCode(ctx context.Context) error {
	code, err := a.prompt("Enter the 6-digit confirmation code")
	if err != nil {
		return err
	}
	if err := a.verification.VerifyCode(ctx, code); err != nil {
		return err
	}
	a.println("Company confirmed.")
	return nil
}

// Pending lists records waiting for review.
func (a *App) Pending(ctx context.Context) error {
	items, err := a.verification.ListPending(ctx)
	if err != nil {
		return err
	}
	a.printQueue(items)
	return nil
}

// All lists every verification record.
func (a *App) All(ctx context.Context) error {
	items, err := a.verification.ListAll(ctx)
	if err != nil {
		return err
	}
	a.printQueue(items)
	return nil
}

// Review approves or rejects a record.
//
//	review <id> approve|reject
func (a *App) Review(ctx context.Context, args []string) error {
	if len(args) != 2 {
		a.println("Usage: review <id> approve|reject")
		return nil
	}

	var (
		action models.ReviewAction
		reason string
		err    error
	)
	switch strings.ToLower(args[1]) {
	case "approve":
		action = models.ReviewApprove
	case "reject":
		action = models.ReviewReject
		if reason, err = getMultiline(a.reader, "Rejection reason", a.out); err != nil {
			return err
		}
	default:
		a.println("Usage: review <id> approve|reject")
		return nil
	}

	if err := a.verification.Review(ctx, args[0], action, reason); err != nil {
		return err
	}
	a.printf("Record %s updated. Run 'pending' or 'all' to refresh the list.\n", args[0])
	a.triggerWatch()
	return nil
}

func (a *App) printQueue(items []models.QueueItem) {
	if len(items) == 0 {
		a.println("No verification records")
		return
	}

	a.outMu.Lock()
	defer a.outMu.Unlock()

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMPLOYER\tCOMPANY\tTAX ID\tSTATUS\tSUBMITTED")
	for _, it := range items {
		sub, _ := models.SubmissionOf(it.Verification)
		status := "-"
		if it.Verification != nil {
			status = string(it.Verification.Status())
		}
		submitted := "-"
		if !sub.SubmittedAt.IsZero() {
			submitted = sub.SubmittedAt.Local().Format(timeLayout)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", it.ID, it.EmployerEmail, sub.CompanyName, sub.TaxID, status, submitted)
	}
	_ = tw.Flush()
}
