package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/hirenest/internal/client/models"
	"github.com/dmitrijs2005/hirenest/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/hirenest/internal/logging"
)

const codeUsedSuffix = "+CODE_USED"

// statusBaseline is what the employer watcher remembers between polls.
type statusBaseline struct {
	status   models.VerificationStatus
	codeUsed bool
}

func baselineOf(v models.Verification) statusBaseline {
	b := statusBaseline{status: v.Status()}
	if a, ok := v.(models.Approved); ok {
		b.codeUsed = a.CodeUsed
	}
	return b
}

func (b statusBaseline) String() string {
	if b.codeUsed {
		return string(b.status) + codeUsedSuffix
	}
	return string(b.status)
}

func parseBaseline(s string) statusBaseline {
	b := statusBaseline{}
	if strings.HasSuffix(s, codeUsedSuffix) {
		b.codeUsed = true
		s = strings.TrimSuffix(s, codeUsedSuffix)
	}
	b.status = models.VerificationStatus(s)
	return b
}

// EmployerStatusWatch turns verification status changes into
// notifications for one account. Use Fetch as a Poller's FetchFunc.
type EmployerStatusWatch struct {
	verification  VerificationService
	notifications NotificationService
	meta          metadata.Repository
	key           string
	log           logging.Logger
}

// NewEmployerStatusWatch constructs the watch for account. meta may be nil,
// in which case the baseline lives only in the verification cache, which
// must be Reset when the account changes.
func NewEmployerStatusWatch(v VerificationService, n NotificationService, meta metadata.Repository, account string, log logging.Logger) *EmployerStatusWatch {
	return &EmployerStatusWatch{
		verification:  v,
		notifications: n,
		meta:          meta,
		key:           metadata.AccountKey(metadata.KeyVerificationStatus, account),
		log:           log.With("watch", "employer_status"),
	}
}

func (w *EmployerStatusWatch) Fetch(ctx context.Context) (func(), error) {
	v, err := w.verification.LoadStatus(ctx)
	if err != nil {
		return nil, err
	}
	return func() { w.apply(ctx, v) }, nil
}

func (w *EmployerStatusWatch) previous(ctx context.Context) (statusBaseline, bool) {
	if cur := w.verification.Current(); cur != nil {
		return baselineOf(cur), true
	}
	if w.meta == nil {
		return statusBaseline{}, false
	}
	s, ok, err := metadata.GetString(ctx, w.meta, w.key)
	if err != nil {
		w.log.Warn(ctx, "failed to read status baseline", "error", err)
		return statusBaseline{}, false
	}
	if !ok {
		return statusBaseline{}, false
	}
	return parseBaseline(s), true
}

func (w *EmployerStatusWatch) apply(ctx context.Context, v models.Verification) {
	prev, known := w.previous(ctx)
	next := baselineOf(v)

	w.verification.SetCurrent(v)
	if w.meta != nil {
		if err := w.meta.Set(ctx, w.key, []byte(next.String())); err != nil {
			w.log.Warn(ctx, "failed to persist status baseline", "error", err)
		}
	}

	if !known {
		w.log.Debug(ctx, "status baseline established", "status", next.status)
		return
	}

	title, message, severity, changed := describeTransition(prev, next, v)
	if !changed {
		return
	}

	if _, err := w.notifications.Add(ctx, title, message, severity); err != nil {
		w.log.Warn(ctx, "notification not persisted", "error", err)
	}
}

func describeTransition(prev, next statusBaseline, v models.Verification) (title, message string, severity models.Severity, changed bool) {
	if prev.status != next.status {
		switch rec := v.(type) {
		case models.Approved:
			return "Verification approved",
				"Your company verification was approved. Enter the confirmation code to finish.",
				models.SeveritySuccess, true
		case models.Banned:
			msg := "Your company verification was rejected."
			if rec.RejectionReason != "" {
				msg += " Reason: " + rec.RejectionReason
			}
			return "Verification rejected", msg, models.SeverityError, true
		case models.Pending:
			return "Verification under review",
				"Your company verification is pending review.",
				models.SeverityInfo, true
		default:
			return "Verification status changed",
				fmt.Sprintf("Your verification status is now %s.", next.status),
				models.SeverityInfo, true
		}
	}

	if next.status == models.StatusApproved && !prev.codeUsed && next.codeUsed {
		return "Company confirmed", "Your confirmation code was accepted.", models.SeverityInfo, true
	}
	return "", "", "", false
}

// AdminQueueWatch notifies an administrator when the pending queue grows.
// Shrinking is silent. Each account gets its own watch.
type AdminQueueWatch struct {
	verification  VerificationService
	notifications NotificationService
	meta          metadata.Repository
	key           string
	log           logging.Logger

	// last and known are only touched from apply, which the poller
	// serialises.
	last  int
	known bool
}

func NewAdminQueueWatch(v VerificationService, n NotificationService, meta metadata.Repository, account string, log logging.Logger) *AdminQueueWatch {
	return &AdminQueueWatch{
		verification:  v,
		notifications: n,
		meta:          meta,
		key:           metadata.AccountKey(metadata.KeyPendingCount, account),
		log:           log.With("watch", "admin_queue"),
	}
}

func (w *AdminQueueWatch) Fetch(ctx context.Context) (func(), error) {
	items, err := w.verification.LoadPending(ctx)
	if err != nil {
		return nil, err
	}
	count := models.CountPending(items)
	return func() { w.apply(ctx, count) }, nil
}

func (w *AdminQueueWatch) previous(ctx context.Context) (int, bool) {
	if w.known {
		return w.last, true
	}
	if w.meta == nil {
		return 0, false
	}
	n, ok, err := metadata.GetInt(ctx, w.meta, w.key)
	if err != nil {
		w.log.Warn(ctx, "failed to read queue baseline", "error", err)
		return 0, false
	}
	return n, ok
}

func (w *AdminQueueWatch) apply(ctx context.Context, count int) {
	prev, known := w.previous(ctx)

	w.last, w.known = count, true
	if w.meta != nil {
		if err := metadata.SetInt(ctx, w.meta, w.key, count); err != nil {
			w.log.Warn(ctx, "failed to persist queue baseline", "error", err)
		}
	}

	if !known || count <= prev {
		return
	}

	added := count - prev
	noun := "requests"
	if added == 1 {
		noun = "request"
	}
	msg := fmt.Sprintf("%d new company verification %s awaiting review.", added, noun)
	if _, err := w.notifications.Add(ctx, "New verification requests", msg, models.SeverityInfo); err != nil {
		w.log.Warn(ctx, "notification not persisted", "error", err)
	}
}

// NewEmployerStatusPoller wires an EmployerStatusWatch into a Poller.
func NewEmployerStatusPoller(w *EmployerStatusWatch, interval time.Duration, log logging.Logger) *Poller {
	return NewPoller("employer_status", interval, w.Fetch, log)
}

// NewAdminQueuePoller wires an AdminQueueWatch into a Poller.
func NewAdminQueuePoller(w *AdminQueueWatch, interval time.Duration, log logging.Logger) *Poller {
	return NewPoller("admin_queue", interval, w.Fetch, log)
}
