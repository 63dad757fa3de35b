package profile

import (
	"time"

	"github.com/pulsehustle/pulsehustle/internal/models"
)

// Profile shares its id with the auth identity that owns it.
type Profile struct {
	ID         string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username   string            `gorm:"type:varchar(64);uniqueIndex" json:"username"`
	FullName   string            `gorm:"type:varchar(128)" json:"full_name"`
	Bio        string            `gorm:"type:text" json:"bio"`
	AvatarURL  string            `gorm:"type:varchar(512)" json:"avatar_url"`
	Website    string            `gorm:"type:varchar(512)" json:"website"`
	Location   string            `gorm:"type:varchar(128)" json:"location"`
	Skills     models.StringList `gorm:"type:text" json:"skills"`
	HourlyRate int64             `json:"hourly_rate"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }
