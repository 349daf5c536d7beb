package domain

import (
	"context"

	"github.com/smallevents/gatekeeper/internal/submission"
)

// ProcessSubmissionResult reports what happened to one webhook delivery.
// Created is false when the invoice number was already on file and the
// existing ticket is returned instead. NotifyErr carries a QR or email
// failure on the fresh path; the ticket row is committed regardless.
type ProcessSubmissionResult struct {
	Ticket    Ticket
	Created   bool
	NotifyErr error
}

// CheckInRequest identifies a ticket by id or invoice number. EventID,
// when set, scopes the scan: a ticket for another event is not found.
type CheckInRequest struct {
	Ref     string
	EventID string
}

// LookupRequest fetches a ticket by invoice number. EventID, when set,
// scopes the lookup the same way it scopes a check-in.
type LookupRequest struct {
	InvoiceNo string
	EventID   string
}

type SearchRequest struct {
	EventID string
	Query   string
}

type Service interface {
	ProcessSubmission(context.Context, submission.ParsedSubmission) (ProcessSubmissionResult, error)
	CheckIn(context.Context, CheckInRequest) (Ticket, error)
	Lookup(context.Context, LookupRequest) (Ticket, error)
	Search(context.Context, SearchRequest) ([]Ticket, error)
}
