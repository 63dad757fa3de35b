package matching

import (
	"context"
	"time"

	"github.com/pulsehustle/pulsehustle/internal/models"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, j *Job) error {
	return r.db.WithContext(ctx).Create(j).Error
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Job, error) {
	var j Job
	if err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *Repo) MarkProcessing(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&Job{}).
		Where("id = ?", id).
		Update("status", JobProcessing).Error
}

func (r *Repo) MarkCompleted(ctx context.Context, id string, matched []string, scores ScoreList) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":           JobCompleted,
			"matched_profiles": models.StringList(matched),
			"matching_score":   scores,
			"completed_at":     &now,
		}).Error
}

func (r *Repo) MarkFailed(ctx context.Context, id string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       JobFailed,
			"completed_at": &now,
		}).Error
}

// LatestCompletedForGig returns the most recently completed job for a
// gig, or gorm.ErrRecordNotFound when none exists.
func (r *Repo) LatestCompletedForGig(ctx context.Context, gigID string) (*Job, error) {
	var j Job
	if err := r.db.WithContext(ctx).
		Where("gig_id = ? AND status = ?", gigID, JobCompleted).
		Order("completed_at DESC").
		First(&j).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *Repo) ListForGig(ctx context.Context, gigID string) ([]Job, error) {
	var jobs []Job
	if err := r.db.WithContext(ctx).
		Where("gig_id = ?", gigID).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}
