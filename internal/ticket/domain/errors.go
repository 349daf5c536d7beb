package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound         = errors.New("not_found")
	ErrInvalidReference = errors.New("invalid_reference")
	ErrMissingEmail     = errors.New("missing_email")
	ErrMissingFormID    = errors.New("missing_form_id")
	ErrMissingInvoiceNo = errors.New("missing_invoice_no")
)

// AlreadyCheckedInError carries who used the ticket and when, so a second
// scan at the gate can show the operator what happened the first time.
type AlreadyCheckedInError struct {
	Name        string
	CheckedInAt time.Time
}

func (e *AlreadyCheckedInError) Error() string {
	return fmt.Sprintf("ticket already checked in at %s", e.CheckedInAt.Format(time.RFC3339))
}
