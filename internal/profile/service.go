package profile

import (
	"context"
	"errors"

	"github.com/pulsehustle/pulsehustle/internal/apperr"
	"github.com/pulsehustle/pulsehustle/internal/audit"
	"gorm.io/gorm"
)

type Service struct {
	repo  *Repo
	audit *audit.Logger
}

func NewService(repo *Repo, auditLog *audit.Logger) *Service {
	return &Service{repo: repo, audit: auditLog}
}

func (s *Service) Get(ctx context.Context, userID string) (*Profile, error) {
	if userID == "" {
		return nil, apperr.Validation("user id is required")
	}
	s.audit.Op(ctx, "get_profile", "profiles", map[string]any{"user_id": userID})

	p, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("profile %s not found", userID)
		}
		return nil, apperr.Upstream(err, "get profile")
	}
	return p, nil
}

type UpsertInput struct {
	Username   string
	FullName   string
	Bio        string
	AvatarURL  string
	Website    string
	Location   string
	Skills     []string
	HourlyRate int64
}

// Upsert creates or updates the caller's profile. Only provided fields
// overwrite the stored row; zero values leave existing data alone.
func (s *Service) Upsert(ctx context.Context, userID string, in UpsertInput) (*Profile, error) {
	if userID == "" {
		return nil, apperr.Validation("user id is required")
	}
	s.audit.Op(ctx, "update_profile", "profiles", map[string]any{"user_id": userID})

	p, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Upstream(err, "load profile")
		}
		p = &Profile{ID: userID}
	}

	if in.Username != "" {
		p.Username = in.Username
	}
	if in.FullName != "" {
		p.FullName = in.FullName
	}
	if in.Bio != "" {
		p.Bio = in.Bio
	}
	if in.AvatarURL != "" {
		p.AvatarURL = in.AvatarURL
	}
	if in.Website != "" {
		p.Website = in.Website
	}
	if in.Location != "" {
		p.Location = in.Location
	}
	if in.Skills != nil {
		p.Skills = in.Skills
	}
	if in.HourlyRate > 0 {
		p.HourlyRate = in.HourlyRate
	}

	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, apperr.Upstream(err, "upsert profile")
	}
	return p, nil
}

func (s *Service) MatchingSkills(ctx context.Context, skills []string) ([]Profile, error) {
	if len(skills) == 0 {
		return nil, apperr.Validation("at least one skill is required")
	}
	ps, err := s.repo.BySkills(ctx, skills)
	if err != nil {
		return nil, apperr.Upstream(err, "list profiles by skills")
	}
	return ps, nil
}
