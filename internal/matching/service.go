package matching

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/pulsehustle/pulsehustle/internal/apperr"
	"github.com/pulsehustle/pulsehustle/internal/audit"
	"github.com/pulsehustle/pulsehustle/internal/common"
	"github.com/pulsehustle/pulsehustle/internal/profile"
	"github.com/pulsehustle/pulsehustle/internal/realtime"
	"gorm.io/gorm"
)

// GigDirectory answers existence checks without importing the gig
// package (which depends on this one for enqueues).
type GigDirectory interface {
	Exists(ctx context.Context, gigID string) (bool, error)
}

// Dispatcher hands a job id to whatever runs it: the rabbitmq
// publisher in production, an in-process goroutine otherwise.
type Dispatcher interface {
	Dispatch(ctx context.Context, jobID string) error
}

type Service struct {
	repo       *Repo
	gigs       GigDirectory
	profiles   *profile.Repo
	scorer     Scorer
	dispatcher Dispatcher
	audit      *audit.Logger
	relay      *realtime.Relay
}

func NewService(repo *Repo, gigs GigDirectory, profiles *profile.Repo, scorer Scorer, dispatcher Dispatcher, auditLog *audit.Logger, relay *realtime.Relay) *Service {
	if scorer == nil {
		scorer = NewRandomScorer()
	}
	return &Service{
		repo:       repo,
		gigs:       gigs,
		profiles:   profiles,
		scorer:     scorer,
		dispatcher: dispatcher,
		audit:      auditLog,
		relay:      relay,
	}
}

// CreateJob inserts a pending job for the gig and hands it to the
// dispatcher. The caller never observes the processing outcome.
func (s *Service) CreateJob(ctx context.Context, gigID string) (*Job, error) {
	if gigID == "" {
		return nil, apperr.Validation("gig id is required")
	}

	exists, err := s.gigs.Exists(ctx, gigID)
	if err != nil {
		return nil, apperr.Upstream(err, "check gig")
	}
	if !exists {
		return nil, apperr.NotFound("gig %s not found", gigID)
	}

	id, err := common.NewULID()
	if err != nil {
		return nil, apperr.Upstream(err, "generate job id")
	}

	j := &Job{
		ID:              id,
		GigID:           gigID,
		Status:          JobPending,
		MatchedProfiles: []string{},
		MatchingScore:   ScoreList{},
	}
	if err := s.repo.Create(ctx, j); err != nil {
		return nil, apperr.Upstream(err, "create matching job")
	}

	s.audit.Op(ctx, "create", "ai_matching_jobs", map[string]any{"job_id": j.ID, "gig_id": gigID})

	if s.dispatcher != nil {
		if err := s.dispatcher.Dispatch(ctx, j.ID); err != nil {
			log.Printf("matching: dispatch job %s: %v", j.ID, err)
		}
	}
	s.relay.Publish(ctx, realtime.Event{
		Table:   "ai_matching_jobs",
		Action:  realtime.ActionInsert,
		Payload: map[string]any{"id": j.ID, "gig_id": gigID, "status": string(JobPending)},
	})

	return j, nil
}

// EnqueueForGig satisfies gig.MatchEnqueuer.
func (s *Service) EnqueueForGig(ctx context.Context, gigID string) error {
	_, err := s.CreateJob(ctx, gigID)
	return err
}

// ProcessJob scores every profile against the job's gig, keeps the top
// five, and completes the job. Any failure flips the job to failed
// (with a completion timestamp) and is returned to the caller.
func (s *Service) ProcessJob(ctx context.Context, jobID string) error {
	if jobID == "" {
		return apperr.Validation("job id is required")
	}

	j, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("matching job %s not found", jobID)
		}
		return apperr.Upstream(err, "load matching job")
	}

	if err := s.repo.MarkProcessing(ctx, jobID); err != nil {
		return apperr.Upstream(err, "mark job processing")
	}

	scores, err := s.scoreProfiles(ctx, j.GigID)
	if err != nil {
		if mErr := s.repo.MarkFailed(ctx, jobID); mErr != nil {
			log.Printf("matching: mark job %s failed: %v", jobID, mErr)
		}
		return err
	}

	matched := make([]string, 0, len(scores))
	for _, sc := range scores {
		matched = append(matched, sc.ProfileID)
	}

	if err := s.repo.MarkCompleted(ctx, jobID, matched, scores); err != nil {
		if mErr := s.repo.MarkFailed(ctx, jobID); mErr != nil {
			log.Printf("matching: mark job %s failed: %v", jobID, mErr)
		}
		return apperr.Upstream(err, "complete matching job")
	}

	s.audit.Op(ctx, "update", "ai_matching_jobs", map[string]any{
		"job_id":        jobID,
		"status":        string(JobCompleted),
		"matches_count": len(matched),
	})
	s.relay.Publish(ctx, realtime.Event{
		Table:   "ai_matching_jobs",
		Action:  realtime.ActionUpdate,
		Payload: map[string]any{"id": jobID, "gig_id": j.GigID, "status": string(JobCompleted)},
	})

	return nil
}

func (s *Service) scoreProfiles(ctx context.Context, gigID string) (ScoreList, error) {
	profiles, err := s.profiles.All(ctx)
	if err != nil {
		return nil, apperr.Upstream(err, "list profiles")
	}

	scores := make(ScoreList, 0, len(profiles))
	for i := range profiles {
		scores = append(scores, ProfileScore{
			ProfileID: profiles[i].ID,
			Score:     s.scorer.Score(&profiles[i], gigID),
		})
	}
	sort.Slice(scores, func(a, b int) bool { return scores[a].Score > scores[b].Score })
	if len(scores) > TopMatches {
		scores = scores[:TopMatches]
	}
	return scores, nil
}

// Match is one ranked candidate returned to the gig owner.
type Match struct {
	Profile profile.Profile `json:"profile"`
	Score   float64         `json:"score"`
}

type MatchesResult struct {
	Status  JobStatus `json:"status"`
	Job     *Job      `json:"job,omitempty"`
	Matches []Match   `json:"matches,omitempty"`
}

// GigMatches joins the latest completed job's profile ids back to
// profile rows. With no completed job yet it transparently creates one
// and reports pending instead of failing.
func (s *Service) GigMatches(ctx context.Context, gigID string) (*MatchesResult, error) {
	if gigID == "" {
		return nil, apperr.Validation("gig id is required")
	}

	j, err := s.repo.LatestCompletedForGig(ctx, gigID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Upstream(err, "find matching job")
		}
		created, cErr := s.CreateJob(ctx, gigID)
		if cErr != nil {
			return nil, cErr
		}
		return &MatchesResult{Status: JobPending, Job: created}, nil
	}

	profiles, err := s.profiles.ByIDs(ctx, j.MatchedProfiles)
	if err != nil {
		return nil, apperr.Upstream(err, "load matched profiles")
	}

	scoreByID := make(map[string]float64, len(j.MatchingScore))
	for _, sc := range j.MatchingScore {
		scoreByID[sc.ProfileID] = sc.Score
	}

	matches := make([]Match, 0, len(profiles))
	for _, p := range profiles {
		matches = append(matches, Match{Profile: p, Score: scoreByID[p.ID]})
	}
	sort.Slice(matches, func(a, b int) bool { return matches[a].Score > matches[b].Score })

	return &MatchesResult{Status: JobCompleted, Job: j, Matches: matches}, nil
}

// InProcessDispatcher runs jobs on a detached goroutine after a short
// delay, preserving the fire-and-forget scheduling of environments
// without a queue.
type InProcessDispatcher struct {
	svc   *Service
	delay time.Duration
}

func NewInProcessDispatcher(delay time.Duration) *InProcessDispatcher {
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	return &InProcessDispatcher{delay: delay}
}

// Bind wires the dispatcher to the service that will process jobs.
// Needed because the service also holds the dispatcher.
func (d *InProcessDispatcher) Bind(svc *Service) { d.svc = svc }

func (d *InProcessDispatcher) Dispatch(_ context.Context, jobID string) error {
	go func() {
		time.Sleep(d.delay)
		// detached from the request; give the job its own deadline
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := d.svc.ProcessJob(ctx, jobID); err != nil {
			log.Printf("matching: process job %s: %v", jobID, err)
		}
	}()
	return nil
}
