package domain

import (
	"context"
	"errors"
	"time"
)

// EnsureEventRequest resolves an event for an inbound webhook. Title is
// only used when the form id has never been seen and a placeholder event
// must be created.
type EnsureEventRequest struct {
	FormID string
	Title  string
}

// UpsertEventRequest carries one form from the provider listing; the sync
// upserts it by form id.
type UpsertEventRequest struct {
	FormID    string
	Title     string
	StartTime *time.Time
	EndTime   *time.Time
}

type GetEventRequest struct {
	ID string
}

type Service interface {
	EnsureByFormID(context.Context, EnsureEventRequest) (Event, error)
	Upsert(context.Context, UpsertEventRequest) (Event, error)
	GetByID(context.Context, GetEventRequest) (Event, error)
}

var (
	ErrInvalidFormID = errors.New("invalid_form_id")
	ErrInvalidID     = errors.New("invalid_id")
	ErrNotFound      = errors.New("not_found")
)
