package stats

import (
	"context"
	"math"

	"github.com/pulsehustle/pulsehustle/internal/apperr"
	"github.com/pulsehustle/pulsehustle/internal/audit"
)

type Service struct {
	repo  *Repo
	audit *audit.Logger
}

func NewService(repo *Repo, auditLog *audit.Logger) *Service {
	return &Service{repo: repo, audit: auditLog}
}

// Platform recomputes the counters from the gigs and payments tables,
// overwrites the singleton row, and returns the snapshot.
func (s *Service) Platform(ctx context.Context) (*Snapshot, error) {
	s.audit.Op(ctx, "get_stats", "stats", nil)

	jobsCreated, err := s.repo.CountGigs(ctx)
	if err != nil {
		s.audit.Err(ctx, "stats error: "+err.Error(), nil)
		return nil, apperr.Upstream(err, "count gigs")
	}
	jobsCompleted, err := s.repo.CountCompletedGigs(ctx)
	if err != nil {
		s.audit.Err(ctx, "stats error: "+err.Error(), nil)
		return nil, apperr.Upstream(err, "count completed gigs")
	}
	totalEarnings, err := s.repo.SumCompletedPayments(ctx)
	if err != nil {
		s.audit.Err(ctx, "stats error: "+err.Error(), nil)
		return nil, apperr.Upstream(err, "sum payments")
	}

	workerEarnings := int64(math.Round(float64(totalEarnings) * 0.95))
	platformFees := totalEarnings - workerEarnings

	row := &Row{
		JobsCreated:      jobsCreated,
		JobsCompleted:    jobsCompleted,
		TotalEarnings:    totalEarnings,
		WorkerEarnings:   workerEarnings,
		PlatformFees:     platformFees,
		WeeklyGoal:       WeeklyGoal,
		AnnualProjection: AnnualProjection,
	}
	if err := s.repo.Overwrite(ctx, row); err != nil {
		s.audit.Err(ctx, "stats error: "+err.Error(), nil)
		return nil, apperr.Upstream(err, "store stats")
	}

	return &Snapshot{
		JobsCreated:      jobsCreated,
		JobsCompleted:    jobsCompleted,
		TotalEarnings:    totalEarnings,
		WorkerEarnings:   workerEarnings,
		PlatformFees:     platformFees,
		WeeklyGoal:       WeeklyGoal,
		AnnualProjection: AnnualProjection,
		LaunchDate:       LaunchDate,
	}, nil
}

func (s *Service) RecordJobCreation(ctx context.Context, gigID string) error {
	s.audit.Op(ctx, "record_job", "stats", map[string]any{"gig_id": gigID})

	if err := s.repo.EnsureRow(ctx); err != nil {
		return apperr.Upstream(err, "ensure stats row")
	}
	if err := s.repo.IncrementCreated(ctx); err != nil {
		s.audit.Err(ctx, "job recording error: "+err.Error(), map[string]any{"gig_id": gigID})
		return apperr.Upstream(err, "increment jobs_created")
	}
	return nil
}

func (s *Service) RecordJobCompletion(ctx context.Context, gigID string, pay, workerRate, platformFee int64) error {
	s.audit.Op(ctx, "record_completion", "stats", map[string]any{"gig_id": gigID})

	if err := s.repo.EnsureRow(ctx); err != nil {
		return apperr.Upstream(err, "ensure stats row")
	}
	if err := s.repo.IncrementCompleted(ctx, pay, workerRate, platformFee); err != nil {
		s.audit.Err(ctx, "completion recording error: "+err.Error(), map[string]any{"gig_id": gigID})
		return apperr.Upstream(err, "increment completion counters")
	}
	return nil
}
