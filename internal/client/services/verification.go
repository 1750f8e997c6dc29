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
)

// ErrVerificationBanned is returned by Submit when the current record is
// BANNED. A banned record is final for the client. Submit fetches the
// record first when nothing is cached yet.
var ErrVerificationBanned = errors.New("company verification was rejected and cannot be resubmitted")

// SubmitRequest carries the company fields of a verification submission.
type SubmitRequest struct {
	CompanyName string
	TaxID       string
	Website     string
}

// VerificationService drives the employer verification lifecycle and the
// admin review queue.
//
// FetchStatus, ListPending and ListAll update the cached state returned by
// Current and Queue. LoadStatus and LoadPending fetch without touching the
// cache; background watchers use them together with SetCurrent so that a
// stopped watcher never writes.
type VerificationService interface {
	FetchStatus(ctx context.Context) (models.Verification, error)
	Submit(ctx context.Context, req SubmitRequest, doc client.Document) (models.Verification, error)
	VerifyCode(ctx context.Context, code string) error

	ListPending(ctx context.Context) ([]models.QueueItem, error)
	ListAll(ctx context.Context) ([]models.QueueItem, error)
	Review(ctx context.Context, id string, action models.ReviewAction, reason string) error

	LoadStatus(ctx context.Context) (models.Verification, error)
	LoadPending(ctx context.Context) ([]models.QueueItem, error)
	SetCurrent(v models.Verification)

	// Current returns the last known record, or nil before the first fetch.
	Current() models.Verification
	// Queue returns a copy of the cached admin queue. stale is true after a
	// local review until the next listing.
	Queue() (items []models.QueueItem, stale bool)
	// Reset drops all cached state and discards in-flight results.
	Reset()
}

type verificationService struct {
	client client.Client
	log    logging.Logger
	now    func() time.Time

	mu      sync.Mutex
	gen     uint64
	current models.Verification
	queue   []models.QueueItem
	stale   bool
}

func NewVerificationService(c client.Client, log logging.Logger) VerificationService {
	return &verificationService{
		client: c,
		log:    log.With("component", "verification"),
		now:    time.Now,
	}
}

func (s *verificationService) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// LoadStatus fetches the employer's record. A missing record is
// NotSubmitted, not an error.
func (s *verificationService) LoadStatus(ctx context.Context) (models.Verification, error) {
	v, err := s.client.VerificationStatus(ctx)
	if errors.Is(err, client.ErrNotFound) {
		return models.NotSubmitted{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("verification status: %w", err)
	}
	return v, nil
}

func (s *verificationService) FetchStatus(ctx context.Context) (models.Verification, error) {
	gen := s.generation()

	v, err := s.LoadStatus(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.gen == gen {
		s.current = v
	}
	s.mu.Unlock()
	return v, nil
}

func (s *verificationService) SetCurrent(v models.Verification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = v
}

func (s *verificationService) Current() models.Verification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *verificationService) Submit(ctx context.Context, req SubmitRequest, doc client.Document) (models.Verification, error) {
	if strings.TrimSpace(req.CompanyName) == "" {
		return nil, client.NewValidationError("company name is required")
	}
	if doc.Content == nil || strings.TrimSpace(doc.FileName) == "" {
		return nil, client.NewValidationError("a verification document is required")
	}

	// The ban check needs a known record; fetch one if nothing is cached.
	cur := s.Current()
	if cur == nil {
		v, err := s.FetchStatus(ctx)
		if err != nil {
			return nil, err
		}
		cur = v
	}
	if _, banned := cur.(models.Banned); banned {
		return nil, ErrVerificationBanned
	}

	err := s.client.SubmitVerification(ctx, client.SubmitVerificationRequest{
		CompanyName: strings.TrimSpace(req.CompanyName),
		TaxID:       strings.TrimSpace(req.TaxID),
		Website:     strings.TrimSpace(req.Website),
		Document:    doc,
	})
	if err != nil {
		return nil, fmt.Errorf("submit verification: %w", err)
	}
	s.log.Info(ctx, "verification submitted", "company", req.CompanyName)

	v, err := s.FetchStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("submitted, but status refresh failed: %w", err)
	}
	return v, nil
}

func isSixDigits(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *verificationService) VerifyCode(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if !isSixDigits(code) {
		return client.NewValidationError("confirmation code must be 6 digits")
	}

	if err := s.client.VerifyCode(ctx, code); err != nil {
		return fmt.Errorf("verify code: %w", err)
	}

	s.mu.Lock()
	if a, ok := s.current.(models.Approved); ok {
		a.CodeUsed = true
		s.current = a
	}
	s.mu.Unlock()
	return nil
}

func (s *verificationService) LoadPending(ctx context.Context) ([]models.QueueItem, error) {
	items, err := s.client.PendingVerifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("pending verifications: %w", err)
	}
	models.SortQueue(items)
	return items, nil
}

func (s *verificationService) ListPending(ctx context.Context) ([]models.QueueItem, error) {
	return s.list(ctx, s.LoadPending)
}

func (s *verificationService) ListAll(ctx context.Context) ([]models.QueueItem, error) {
	return s.list(ctx, func(ctx context.Context) ([]models.QueueItem, error) {
		items, err := s.client.AllVerifications(ctx)
		if err != nil {
			return nil, fmt.Errorf("all verifications: %w", err)
		}
		models.SortQueue(items)
		return items, nil
	})
}

func (s *verificationService) list(ctx context.Context, load func(context.Context) ([]models.QueueItem, error)) ([]models.QueueItem, error) {
	gen := s.generation()

	items, err := load(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.gen == gen {
		s.queue = cloneQueue(items)
		s.stale = false
	}
	s.mu.Unlock()
	return items, nil
}

func (s *verificationService) Queue() ([]models.QueueItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneQueue(s.queue), s.stale
}

// Review sends an admin decision. REJECT without a reason never reaches
// the network.
func (s *verificationService) Review(ctx context.Context, id string, action models.ReviewAction, reason string) error {
	id = strings.TrimSpace(id)
	reason = strings.TrimSpace(reason)

	if id == "" {
		return client.NewValidationError("verification id is required")
	}
	switch action {
	case models.ReviewApprove:
	case models.ReviewReject:
		if reason == "" {
			return client.NewValidationError("a rejection reason is required")
		}
	default:
		return client.NewValidationError(fmt.Sprintf("unknown review action %q", action))
	}

	if err := s.client.ReviewVerification(ctx, id, action, reason); err != nil {
		return fmt.Errorf("review verification: %w", err)
	}
	s.log.Info(ctx, "verification reviewed", "id", id, "action", action)

	reviewedAt := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, it := range s.queue {
		if it.ID != id {
			continue
		}
		sub, _ := models.SubmissionOf(it.Verification)
		if action == models.ReviewApprove {
			s.queue[i].Verification = models.Approved{Submission: sub, ReviewedAt: reviewedAt}
		} else {
			s.queue[i].Verification = models.Banned{Submission: sub, ReviewedAt: reviewedAt, RejectionReason: reason}
		}
	}
	s.stale = true
	return nil
}

func (s *verificationService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.current = nil
	s.queue = nil
	s.stale = false
}

func cloneQueue(items []models.QueueItem) []models.QueueItem {
	if items == nil {
		return nil
	}
	out := make([]models.QueueItem, len(items))
	copy(out, items)
	return out
}
