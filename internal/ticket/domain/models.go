package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Ticket is one paid registration. InvoiceNo is the idempotency key: the
// webhook provider retries deliveries, and the unique index makes a replay
// resolve to the row the first delivery created.
type Ticket struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	InvoiceNo      string            `gorm:"not null;uniqueIndex" json:"invoice_no"`
	UserID         snowflake.ID      `gorm:"not null;index" json:"user_id"`
	EventID        snowflake.ID      `gorm:"not null;index" json:"event_id"`
	Name           string            `gorm:"not null" json:"name"`
	Email          string            `gorm:"not null" json:"email"`
	Phone          string            `json:"phone"`
	Church         string            `json:"church"`
	YouthMinistry  string            `json:"youth_ministry"`
	Quantity       int               `gorm:"not null;default:1" json:"quantity"`
	ProductDetails string            `json:"product_details"`
	TotalAmount    float64           `json:"total_amount"`
	CheckedIn      bool              `gorm:"not null;default:false" json:"checked_in"`
	CheckInTime    *time.Time        `json:"check_in_time,omitempty"`
	Metadata       datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt      time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null" json:"updated_at"`
}
