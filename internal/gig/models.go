package gig

import (
	"time"

	"github.com/pulsehustle/pulsehustle/internal/models"
)

type Status string

const (
	StatusPosted     Status = "posted"
	StatusProcessing Status = "processing"
	StatusPaid       Status = "paid"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// ValidStatus reports whether s is one of the recognized gig states.
// The transition graph is deliberately unrestricted: any status may
// move to any other status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPosted, StatusProcessing, StatusPaid, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// terminal states block edits through Update (but not ChangeStatus)
func terminal(s Status) bool {
	return s == StatusCompleted || s == StatusCancelled
}

type PaymentType string

const (
	PaymentFixed  PaymentType = "fixed"
	PaymentHourly PaymentType = "hourly"
)

const (
	DefaultHours = 40
	DefaultPay   = 600

	// fraction of a gig's pay transferred to the performing worker
	WorkerShare = 0.95
)

type Gig struct {
	ID             string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title          string            `gorm:"type:varchar(255);not null" json:"title"`
	Description    string            `gorm:"type:text" json:"description"`
	Hours          int               `gorm:"not null" json:"hours"`
	Pay            int64             `gorm:"not null" json:"pay"`
	WorkerRate     int64             `gorm:"not null" json:"worker_rate"`
	PlatformFee    int64             `gorm:"not null" json:"platform_fee"`
	PaymentType    PaymentType       `gorm:"type:varchar(16);not null" json:"payment_type"`
	Location       string            `gorm:"type:varchar(128)" json:"location"`
	Remote         bool              `json:"remote"`
	UserID         string            `gorm:"type:varchar(36);index;not null" json:"user_id"`
	PaymentID      *string           `gorm:"type:varchar(36);index" json:"payment_id,omitempty"`
	Status         Status            `gorm:"type:varchar(16);index;not null" json:"status"`
	SkillsRequired models.StringList `gorm:"type:text" json:"skills_required"`
	Duration       string            `gorm:"type:varchar(64)" json:"duration"`
	CreatedAt      time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func (Gig) TableName() string { return "gigs" }
