package matching

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pulsehustle/pulsehustle/internal/models"
)

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// TopMatches caps how many scored profiles a completed job retains.
const TopMatches = 5

type ProfileScore struct {
	ProfileID string  `json:"profile_id"`
	Score     float64 `json:"score"`
}

type ScoreList []ProfileScore

func (l ScoreList) Value() (driver.Value, error) {
	if l == nil {
		l = ScoreList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *ScoreList) Scan(src any) error {
	if src == nil {
		*l = ScoreList{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type for ScoreList: %T", src)
	}
}

type Job struct {
	ID string `gorm:"primaryKey;size:26" json:"id"` // ULID length

	GigID string `gorm:"type:varchar(36);index;not null" json:"gig_id"`

	Status JobStatus `gorm:"type:varchar(16);index;not null" json:"status"`

	MatchedProfiles models.StringList `gorm:"type:text" json:"matched_profiles"`
	MatchingScore   ScoreList         `gorm:"type:text" json:"matching_score"`

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (Job) TableName() string { return "ai_matching_jobs" }
