package stats

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// EnsureRow creates the singleton counters row if it does not exist.
func (r *Repo) EnsureRow(ctx context.Context) error {
	row := Row{ID: SingletonID, WeeklyGoal: WeeklyGoal, AnnualProjection: AnnualProjection}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
}

func (r *Repo) Get(ctx context.Context) (*Row, error) {
	var row Row
	if err := r.db.WithContext(ctx).First(&row, "id = ?", SingletonID).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// IncrementCreated bumps jobs_created with a single atomic SQL add, so
// concurrent callers cannot lose updates.
func (r *Repo) IncrementCreated(ctx context.Context) error {
	return r.db.WithContext(ctx).Model(&Row{}).
		Where("id = ?", SingletonID).
		Update("jobs_created", gorm.Expr("jobs_created + 1")).Error
}

// IncrementCompleted adds one completion plus the gig's earnings split
// in one atomic statement.
func (r *Repo) IncrementCompleted(ctx context.Context, pay, workerRate, platformFee int64) error {
	return r.db.WithContext(ctx).Model(&Row{}).
		Where("id = ?", SingletonID).
		Updates(map[string]any{
			"jobs_completed":  gorm.Expr("jobs_completed + 1"),
			"total_earnings":  gorm.Expr("total_earnings + ?", pay),
			"worker_earnings": gorm.Expr("worker_earnings + ?", workerRate),
			"platform_fees":   gorm.Expr("platform_fees + ?", platformFee),
		}).Error
}

// Overwrite replaces the whole counters row with recomputed values.
func (r *Repo) Overwrite(ctx context.Context, row *Row) error {
	row.ID = SingletonID
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(row).Error
}

func (r *Repo) CountGigs(ctx context.Context) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Table("gigs").Count(&cnt).Error
	return cnt, err
}

func (r *Repo) CountCompletedGigs(ctx context.Context) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Table("gigs").Where("status = ?", "completed").Count(&cnt).Error
	return cnt, err
}

func (r *Repo) SumCompletedPayments(ctx context.Context) (int64, error) {
	var sum *int64
	err := r.db.WithContext(ctx).Table("payments").
		Where("status = ?", "completed").
		Select("SUM(amount)").
		Scan(&sum).Error
	if err != nil || sum == nil {
		return 0, err
	}
	return *sum, nil
}
