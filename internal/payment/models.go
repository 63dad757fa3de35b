package payment

import (
	"time"

	"github.com/pulsehustle/pulsehustle/internal/models"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

// GigPrice is the fixed price charged when a gig is created through
// the pay-and-post flow.
const GigPrice = 600

type Payment struct {
	ID          string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Amount      int64          `gorm:"not null" json:"amount"`
	Status      Status         `gorm:"type:varchar(16);index;not null" json:"status"`
	Method      string         `gorm:"column:payment_method;type:varchar(32);not null" json:"payment_method"`
	Description string         `gorm:"type:text" json:"description"`
	UserID      *string        `gorm:"type:varchar(36);index" json:"user_id,omitempty"`
	Metadata    models.JSONMap `gorm:"type:text" json:"metadata"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }
