package models

import (
	"sort"
	"time"
)

// VerificationStatus is the server-side state of an employer's
// company-identity audit.
type VerificationStatus string

const (
	StatusNotSubmitted VerificationStatus = "NOT_SUBMITTED"
	StatusPending      VerificationStatus = "PENDING"
	StatusApproved     VerificationStatus = "APPROVED"
	StatusBanned       VerificationStatus = "BANNED"
)

// Submission is the data an employer sent for review.
type Submission struct {
	CompanyName string
	TaxID       string
	Website     string
	DocumentURL string
	SubmittedAt time.Time
}

// Verification is one of NotSubmitted, Pending, Approved or Banned. Each
// variant carries only the fields that are valid in its state.
type Verification interface {
	Status() VerificationStatus
	isVerification()
}

type NotSubmitted struct{}

type Pending struct {
	Submission
}

type Approved struct {
	Submission
	ReviewedAt time.Time
	// CodeUsed flips to true once the confirmation code has been accepted.
	CodeUsed bool
}

type Banned struct {
	Submission
	ReviewedAt      time.Time
	RejectionReason string
}

func (NotSubmitted) Status() VerificationStatus { return StatusNotSubmitted }
func (Pending) Status() VerificationStatus      { return StatusPending }
func (Approved) Status() VerificationStatus     { return StatusApproved }
func (Banned) Status() VerificationStatus       { return StatusBanned }

func (NotSubmitted) isVerification() {}
func (Pending) isVerification()      {}
func (Approved) isVerification()     {}
func (Banned) isVerification()       {}

// SubmissionOf returns the submission behind v, if there is one.
func SubmissionOf(v Verification) (Submission, bool) {
	switch s := v.(type) {
	case Pending:
		return s.Submission, true
	case Approved:
		return s.Submission, true
	case Banned:
		return s.Submission, true
	default:
		return Submission{}, false
	}
}

// FullyConfirmed reports whether v is approved and its confirmation code
// has been used.
func FullyConfirmed(v Verification) bool {
	a, ok := v.(Approved)
	return ok && a.CodeUsed
}

// ReviewAction is the admin decision on a pending record.
type ReviewAction string

const (
	ReviewApprove ReviewAction = "APPROVE"
	ReviewReject  ReviewAction = "REJECT"
)

// QueueItem is one employer's record as seen by an administrator.
type QueueItem struct {
	ID            string
	EmployerEmail string
	Verification  Verification
}

func (q QueueItem) SubmittedAt() time.Time {
	s, _ := SubmissionOf(q.Verification)
	return s.SubmittedAt
}

// SortQueue orders items newest submission first. Ties keep server order.
func SortQueue(items []QueueItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].SubmittedAt().After(items[j].SubmittedAt())
	})
}

// CountPending returns how many items are in the PENDING state.
func CountPending(items []QueueItem) int {
	n := 0
	for _, it := range items {
		if it.Verification != nil && it.Verification.Status() == StatusPending {
			n++
		}
	}
	return n
}
