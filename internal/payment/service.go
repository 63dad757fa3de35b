package payment

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/pulsehustle/pulsehustle/internal/apperr"
	"github.com/pulsehustle/pulsehustle/internal/audit"
	"github.com/pulsehustle/pulsehustle/internal/gig"
	"github.com/pulsehustle/pulsehustle/internal/realtime"
	"gorm.io/gorm"
)

// GigCreator posts the gig after its payment is recorded.
type GigCreator interface {
	Create(ctx context.Context, in gig.CreateInput, ownerID string) (*gig.Gig, error)
}

type Service struct {
	repo         *Repo
	gigs         GigCreator
	audit        *audit.Logger
	relay        *realtime.Relay
	paypalHandle string
}

func NewService(repo *Repo, gigs GigCreator, auditLog *audit.Logger, relay *realtime.Relay, paypalHandle string) *Service {
	if paypalHandle == "" {
		paypalHandle = "invinciblelude"
	}
	return &Service{repo: repo, gigs: gigs, audit: auditLog, relay: relay, paypalHandle: paypalHandle}
}

type RecordInput struct {
	Amount      int64
	Status      Status
	Method      string
	Description string
	UserID      *string
	Metadata    map[string]any
}

func (s *Service) Record(ctx context.Context, in RecordInput) (*Payment, error) {
	if in.Amount <= 0 || in.Method == "" || in.Status == "" {
		return nil, apperr.Validation("invalid payment data: amount, method, and status are required")
	}
	if !ValidStatus(in.Status) {
		return nil, apperr.Validation("invalid payment status %q", in.Status)
	}

	meta := in.Metadata
	if meta == nil {
		meta = map[string]any{}
	}

	p := &Payment{
		ID:          uuid.NewString(),
		Amount:      in.Amount,
		Status:      in.Status,
		Method:      in.Method,
		Description: in.Description,
		UserID:      in.UserID,
		Metadata:    meta,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apperr.Upstream(err, "record payment")
	}

	s.audit.Op(ctx, "create", "payments", map[string]any{
		"payment_id":     p.ID,
		"amount":         p.Amount,
		"payment_method": p.Method,
	})
	s.relay.Publish(ctx, realtime.Event{
		Table:   "payments",
		Action:  realtime.ActionInsert,
		Payload: map[string]any{"id": p.ID, "status": string(p.Status), "user_id": derefOr(p.UserID)},
	})

	return p, nil
}

func (s *Service) History(ctx context.Context, userID string) ([]Payment, error) {
	if userID == "" {
		return nil, apperr.Validation("user id is required")
	}
	ps, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Upstream(err, "list payments")
	}
	s.audit.Op(ctx, "read", "payments", map[string]any{"user_id": userID, "count": len(ps)})
	return ps, nil
}

type PayPalRedirect struct {
	PaymentID   string `json:"payment_id"`
	RedirectURL string `json:"redirect_url"`
}

// ProcessPayPal records a pending payment and hands back the paypal.me
// URL for the caller to navigate to. There is no webhook: the pending
// row is never automatically reconciled.
func (s *Service) ProcessPayPal(ctx context.Context, amount int64, description, redirectURL string, userID *string) (*PayPalRedirect, error) {
	p, err := s.Record(ctx, RecordInput{
		Amount:      amount,
		Status:      StatusPending,
		Method:      "paypal",
		Description: description,
		UserID:      userID,
		Metadata:    map[string]any{"redirectUrl": redirectURL},
	})
	if err != nil {
		return nil, err
	}

	return &PayPalRedirect{
		PaymentID:   p.ID,
		RedirectURL: fmt.Sprintf("https://www.paypal.com/paypalme/%s/%d", s.paypalHandle, amount),
	}, nil
}

// ProcessGigPayment records the fixed gig price as completed, then
// creates the gig referencing the payment. Gig creation failure
// compensates by marking the payment refunded rather than leaving a
// dangling completed row.
func (s *Service) ProcessGigPayment(ctx context.Context, in gig.CreateInput, userID string) (*gig.Gig, *Payment, error) {
	if userID == "" {
		return nil, nil, apperr.Validation("user id is required")
	}
	if in.Title == "" || in.Description == "" {
		return nil, nil, apperr.Validation("gig title and description are required")
	}

	workerRate, platformFee := gig.SplitPay(GigPrice)
	p, err := s.Record(ctx, RecordInput{
		Amount:      GigPrice,
		Status:      StatusCompleted,
		Method:      "paypal",
		Description: "Payment for gig: " + in.Title,
		UserID:      &userID,
		Metadata: map[string]any{
			"workerEarnings": workerRate,
			"platformFee":    platformFee,
		},
	})
	if err != nil {
		return nil, nil, err
	}

	in.Pay = GigPrice
	in.PaymentType = gig.PaymentFixed
	in.PaymentID = &p.ID

	g, err := s.gigs.Create(ctx, in, userID)
	if err != nil {
		// compensating action: void the recorded payment
		if _, rErr := s.repo.UpdateStatus(ctx, p.ID, StatusRefunded); rErr != nil {
			log.Printf("payment: refund %s after gig failure: %v", p.ID, rErr)
		}
		s.audit.Err(ctx, "gig payment error: "+err.Error(), map[string]any{"payment_id": p.ID, "user_id": userID})
		return nil, nil, err
	}

	s.audit.Op(ctx, "create", "gigs", map[string]any{
		"gig_id":     g.ID,
		"payment_id": p.ID,
		"user_id":    userID,
	})

	return g, p, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Payment, error) {
	if id == "" || status == "" {
		return nil, apperr.Validation("payment id and status are required")
	}
	if !ValidStatus(status) {
		return nil, apperr.Validation("invalid payment status %q", status)
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("payment %s not found", id)
		}
		return nil, apperr.Upstream(err, "load payment")
	}

	// no transition-adjacency restrictions: any status overwrites
	p, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, apperr.Upstream(err, "update payment status")
	}

	s.audit.Op(ctx, "update", "payments", map[string]any{"payment_id": id, "status": string(status)})
	s.relay.Publish(ctx, realtime.Event{
		Table:   "payments",
		Action:  realtime.ActionUpdate,
		Payload: map[string]any{"id": p.ID, "status": string(p.Status), "user_id": derefOr(p.UserID)},
	})

	return p, nil
}

func derefOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
