package gig

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/google/uuid"
	"github.com/pulsehustle/pulsehustle/internal/apperr"
	"github.com/pulsehustle/pulsehustle/internal/audit"
	"github.com/pulsehustle/pulsehustle/internal/models"
	"github.com/pulsehustle/pulsehustle/internal/realtime"
	"gorm.io/gorm"
)

// StatsRecorder receives counter side effects of gig lifecycle events.
type StatsRecorder interface {
	RecordJobCreation(ctx context.Context, gigID string) error
	RecordJobCompletion(ctx context.Context, gigID string, pay, workerRate, platformFee int64) error
}

// MatchEnqueuer schedules an AI matching job for a gig. Enqueues are
// fire-and-forget from the caller's point of view.
type MatchEnqueuer interface {
	EnqueueForGig(ctx context.Context, gigID string) error
}

type Service struct {
	repo    *Repo
	stats   StatsRecorder
	matcher MatchEnqueuer
	audit   *audit.Logger
	relay   *realtime.Relay
}

func NewService(repo *Repo, stats StatsRecorder, matcher MatchEnqueuer, auditLog *audit.Logger, relay *realtime.Relay) *Service {
	return &Service{repo: repo, stats: stats, matcher: matcher, audit: auditLog, relay: relay}
}

// SplitPay derives the worker/platform split from a total pay amount.
// The two parts always sum back to pay.
func SplitPay(pay int64) (workerRate, platformFee int64) {
	workerRate = int64(math.Round(float64(pay) * WorkerShare))
	platformFee = pay - workerRate
	return workerRate, platformFee
}

type CreateInput struct {
	Title          string
	Description    string
	Hours          int
	Pay            int64
	PaymentType    PaymentType
	Location       string
	Remote         *bool
	SkillsRequired []string
	Duration       string
	PaymentID      *string
}

func (s *Service) Create(ctx context.Context, in CreateInput, ownerID string) (*Gig, error) {
	if in.Title == "" {
		return nil, apperr.Validation("gig title is required")
	}
	if ownerID == "" {
		return nil, apperr.Validation("user id is required")
	}

	s.audit.Op(ctx, "create_gig", "gigs", map[string]any{"user_id": ownerID})

	hours := in.Hours
	if hours <= 0 {
		hours = DefaultHours
	}
	pay := in.Pay
	if pay <= 0 {
		pay = DefaultPay
	}
	workerRate, platformFee := SplitPay(pay)

	paymentType := in.PaymentType
	if paymentType == "" {
		paymentType = PaymentFixed
	}
	location := in.Location
	if location == "" {
		location = "remote"
	}
	remote := true
	if in.Remote != nil {
		remote = *in.Remote
	}
	duration := in.Duration
	if duration == "" {
		duration = fmt.Sprintf("%d hours", hours)
	}
	skills := in.SkillsRequired
	if skills == nil {
		skills = []string{}
	}

	g := &Gig{
		ID:             uuid.NewString(),
		Title:          in.Title,
		Description:    in.Description,
		Hours:          hours,
		Pay:            pay,
		WorkerRate:     workerRate,
		PlatformFee:    platformFee,
		PaymentType:    paymentType,
		Location:       location,
		Remote:         remote,
		UserID:         ownerID,
		PaymentID:      in.PaymentID,
		Status:         StatusPosted,
		SkillsRequired: skills,
		Duration:       duration,
	}

	if err := s.repo.Create(ctx, g); err != nil {
		s.audit.Err(ctx, "gig creation error: "+err.Error(), map[string]any{"user_id": ownerID})
		return nil, apperr.Upstream(err, "create gig")
	}

	// Best-effort side effects; the created gig is returned even when
	// these fail.
	if s.stats != nil {
		if err := s.stats.RecordJobCreation(ctx, g.ID); err != nil {
			log.Printf("gig: record creation stats for %s: %v", g.ID, err)
		}
	}
	if s.matcher != nil {
		if err := s.matcher.EnqueueForGig(ctx, g.ID); err != nil {
			log.Printf("gig: enqueue matching for %s: %v", g.ID, err)
		}
	}
	s.relay.Publish(ctx, realtime.Event{
		Table:   "gigs",
		Action:  realtime.ActionInsert,
		Payload: map[string]any{"id": g.ID, "user_id": g.UserID, "status": string(g.Status)},
	})

	return g, nil
}

func (s *Service) List(ctx context.Context, f Filter) (*Page, error) {
	s.audit.Op(ctx, "get_gigs", "gigs", map[string]any{"page": f.Page})

	page, err := s.repo.List(ctx, f)
	if err != nil {
		s.audit.Err(ctx, "gig retrieval error: "+err.Error(), nil)
		return nil, apperr.Upstream(err, "list gigs")
	}
	return page, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Gig, error) {
	s.audit.Op(ctx, "get_gig", "gigs", map[string]any{"gig_id": id})

	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("gig %s not found", id)
		}
		return nil, apperr.Upstream(err, "get gig")
	}
	return g, nil
}

// UpdateInput carries the whitelisted editable fields. Nil pointers
// and empty values are left untouched.
type UpdateInput struct {
	Title          string
	Description    string
	Hours          int
	Location       string
	Remote         *bool
	SkillsRequired []string
	Duration       string
	Pay            int64
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput, userID string) (*Gig, error) {
	s.audit.Op(ctx, "update_gig", "gigs", map[string]any{"gig_id": id, "user_id": userID})

	g, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.UserID != userID {
		return nil, apperr.Permission("you do not have permission to update this gig")
	}
	if terminal(g.Status) {
		return nil, apperr.InvalidState("cannot update a %s gig", g.Status)
	}

	fields := map[string]any{}
	if in.Title != "" {
		fields["title"] = in.Title
	}
	if in.Description != "" {
		fields["description"] = in.Description
	}
	if in.Hours > 0 {
		fields["hours"] = in.Hours
	}
	if in.Location != "" {
		fields["location"] = in.Location
	}
	if in.Remote != nil {
		fields["remote"] = *in.Remote
	}
	if in.SkillsRequired != nil {
		fields["skills_required"] = models.StringList(in.SkillsRequired)
	}
	if in.Duration != "" {
		fields["duration"] = in.Duration
	}
	// pay is frozen once the gig has been paid for
	if in.Pay > 0 && g.Status != StatusPaid {
		workerRate, platformFee := SplitPay(in.Pay)
		fields["pay"] = in.Pay
		fields["worker_rate"] = workerRate
		fields["platform_fee"] = platformFee
	}

	updated, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		s.audit.Err(ctx, "gig update error: "+err.Error(), map[string]any{"gig_id": id})
		return nil, apperr.Upstream(err, "update gig")
	}

	// a relevance change supersedes the prior matching job
	if in.Title != "" || in.Description != "" || in.SkillsRequired != nil {
		if s.matcher != nil {
			if err := s.matcher.EnqueueForGig(ctx, id); err != nil {
				log.Printf("gig: re-enqueue matching for %s: %v", id, err)
			}
		}
	}
	s.relay.Publish(ctx, realtime.Event{
		Table:   "gigs",
		Action:  realtime.ActionUpdate,
		Payload: map[string]any{"id": updated.ID, "user_id": updated.UserID, "status": string(updated.Status)},
	})

	return updated, nil
}

func (s *Service) ChangeStatus(ctx context.Context, id string, newStatus Status, userID string) (*Gig, error) {
	s.audit.Op(ctx, "change_status", "gigs", map[string]any{"gig_id": id, "status": string(newStatus), "user_id": userID})

	g, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.UserID != userID {
		return nil, apperr.Permission("you do not have permission to update this gig")
	}
	if !ValidStatus(newStatus) {
		return nil, apperr.Validation("invalid status %q", newStatus)
	}

	updated, err := s.repo.Update(ctx, id, map[string]any{"status": newStatus})
	if err != nil {
		s.audit.Err(ctx, "status change error: "+err.Error(), map[string]any{"gig_id": id})
		return nil, apperr.Upstream(err, "change gig status")
	}

	if newStatus == StatusCompleted && s.stats != nil {
		if err := s.stats.RecordJobCompletion(ctx, id, updated.Pay, updated.WorkerRate, updated.PlatformFee); err != nil {
			log.Printf("gig: record completion stats for %s: %v", id, err)
		}
	}
	s.relay.Publish(ctx, realtime.Event{
		Table:   "gigs",
		Action:  realtime.ActionUpdate,
		Payload: map[string]any{"id": updated.ID, "user_id": updated.UserID, "status": string(updated.Status)},
	})

	return updated, nil
}
