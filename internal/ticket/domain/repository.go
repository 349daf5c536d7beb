package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, ticket *Ticket) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Ticket, error)
	FindByInvoiceNo(ctx context.Context, db *gorm.DB, invoiceNo string) (*Ticket, error)

	// MarkCheckedIn flips checked_in only when it is still false and
	// reports whether this call won. Concurrent scans of the same ticket
	// race on the conditional update, never on a read-check-write.
	MarkCheckedIn(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (bool, error)

	Search(ctx context.Context, db *gorm.DB, eventID snowflake.ID, query string, limit int) ([]Ticket, error)
}
