package profile

import (
	"context"

	"github.com/pulsehustle/pulsehustle/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Profile, error) {
	var p Profile
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Upsert(ctx context.Context, p *Profile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(p).Error
}

func (r *Repo) All(ctx context.Context) ([]Profile, error) {
	var ps []Profile
	if err := r.db.WithContext(ctx).Find(&ps).Error; err != nil {
		return nil, err
	}
	return ps, nil
}

func (r *Repo) ByIDs(ctx context.Context, ids []string) ([]Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var ps []Profile
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ps).Error; err != nil {
		return nil, err
	}
	return ps, nil
}

// BySkills returns profiles carrying every listed skill. Skills live in
// a JSON array column, so containment is an escaped LIKE per skill.
func (r *Repo) BySkills(ctx context.Context, skills []string) ([]Profile, error) {
	q := r.db.WithContext(ctx).Model(&Profile{})
	for _, skill := range skills {
		q = q.Where("skills LIKE ? ESCAPE '!'", models.LikeJSON(skill))
	}
	var ps []Profile
	if err := q.Find(&ps).Error; err != nil {
		return nil, err
	}
	return ps, nil
}
