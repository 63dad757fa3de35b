package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pulsehustle/pulsehustle/internal/apperr"
	"github.com/pulsehustle/pulsehustle/internal/audit"
	"github.com/pulsehustle/pulsehustle/internal/gig"
	"gorm.io/gorm"
)

type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusReviewing Status = "reviewing"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusSubmitted, StatusReviewing, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

type Application struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	GigID       string    `gorm:"type:varchar(36);index;not null" json:"gig_id"`
	ApplicantID string    `gorm:"type:varchar(36);index;not null" json:"applicant_id"`
	CoverLetter string    `gorm:"type:text" json:"cover_letter"`
	Status      Status    `gorm:"type:varchar(16);index;not null" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Application) TableName() string { return "applications" }

// GigLookup resolves a gig for existence and ownership checks.
type GigLookup interface {
	GetByID(ctx context.Context, id string) (*gig.Gig, error)
}

type Service struct {
	db    *gorm.DB
	gigs  GigLookup
	audit *audit.Logger
}

func NewService(db *gorm.DB, gigs GigLookup, auditLog *audit.Logger) *Service {
	return &Service{db: db, gigs: gigs, audit: auditLog}
}

func (s *Service) Submit(ctx context.Context, gigID, applicantID, coverLetter string) (*Application, error) {
	if gigID == "" || applicantID == "" {
		return nil, apperr.Validation("gig id and applicant id are required")
	}
	if _, err := s.gigs.GetByID(ctx, gigID); err != nil {
		return nil, err
	}

	a := &Application{
		ID:          uuid.NewString(),
		GigID:       gigID,
		ApplicantID: applicantID,
		CoverLetter: coverLetter,
		Status:      StatusSubmitted,
	}
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, apperr.Upstream(err, "submit application")
	}

	s.audit.Op(ctx, "create", "applications", map[string]any{"application_id": a.ID, "gig_id": gigID})
	return a, nil
}

// ListForGig returns a gig's applications, visible to its owner only.
func (s *Service) ListForGig(ctx context.Context, gigID, userID string) ([]Application, error) {
	g, err := s.gigs.GetByID(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if g.UserID != userID {
		return nil, apperr.Permission("you do not have permission to view these applications")
	}

	var apps []Application
	if err := s.db.WithContext(ctx).
		Where("gig_id = ?", gigID).
		Order("created_at DESC").
		Find(&apps).Error; err != nil {
		return nil, apperr.Upstream(err, "list applications")
	}
	return apps, nil
}

// SetStatus moves an application through review; only the gig owner
// may do this.
func (s *Service) SetStatus(ctx context.Context, id string, status Status, userID string) (*Application, error) {
	if !ValidStatus(status) {
		return nil, apperr.Validation("invalid application status %q", status)
	}

	var a Application
	if err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("application %s not found", id)
		}
		return nil, apperr.Upstream(err, "load application")
	}

	g, err := s.gigs.GetByID(ctx, a.GigID)
	if err != nil {
		return nil, err
	}
	if g.UserID != userID {
		return nil, apperr.Permission("you do not have permission to update this application")
	}

	if err := s.db.WithContext(ctx).Model(&a).Update("status", status).Error; err != nil {
		return nil, apperr.Upstream(err, "update application status")
	}
	a.Status = status

	s.audit.Op(ctx, "update", "applications", map[string]any{"application_id": id, "status": string(status)})
	return &a, nil
}
