package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Event struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	FormID    string       `gorm:"not null;uniqueIndex" json:"form_id"`
	Slug      string       `gorm:"not null" json:"slug"`
	Title     string       `gorm:"not null" json:"title"`
	StartTime time.Time    `gorm:"not null" json:"start_time"`
	EndTime   time.Time    `gorm:"not null" json:"end_time"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}
