package stats

import "time"

const (
	// the one aggregate counters record representing platform totals
	SingletonID = 1

	WeeklyGoal       = 10
	AnnualProjection = WeeklyGoal * 52
	LaunchDate       = "2024-04-08"
)

type Row struct {
	ID               int       `gorm:"primaryKey" json:"-"`
	JobsCreated      int64     `gorm:"not null;default:0" json:"jobs_created"`
	JobsCompleted    int64     `gorm:"not null;default:0" json:"jobs_completed"`
	TotalEarnings    int64     `gorm:"not null;default:0" json:"total_earnings"`
	WorkerEarnings   int64     `gorm:"not null;default:0" json:"worker_earnings"`
	PlatformFees     int64     `gorm:"not null;default:0" json:"platform_fees"`
	WeeklyGoal       int       `gorm:"not null;default:10" json:"weekly_goal"`
	AnnualProjection int       `gorm:"not null;default:520" json:"annual_projection"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (Row) TableName() string { return "stats" }

// Snapshot is the stats payload returned to callers, the stored
// counters plus fixed platform constants.
type Snapshot struct {
	JobsCreated      int64  `json:"jobs_created"`
	JobsCompleted    int64  `json:"jobs_completed"`
	TotalEarnings    int64  `json:"total_earnings"`
	WorkerEarnings   int64  `json:"worker_earnings"`
	PlatformFees     int64  `json:"platform_fees"`
	WeeklyGoal       int    `json:"weekly_goal"`
	AnnualProjection int    `json:"annual_projection"`
	LaunchDate       string `json:"launch_date"`
}
