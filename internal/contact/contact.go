package contact

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pulsehustle/pulsehustle/internal/apperr"
	"github.com/pulsehustle/pulsehustle/internal/audit"
	"gorm.io/gorm"
)

type Status string

const (
	StatusQueued    Status = "queued"
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
)

type Message struct {
	ID          string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email       string     `gorm:"type:varchar(255);not null" json:"email"`
	Name        string     `gorm:"type:varchar(128)" json:"name"`
	Message     string     `gorm:"type:text" json:"message"`
	Status      Status     `gorm:"type:varchar(16);index;not null" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

func (Message) TableName() string { return "contact_messages" }

type Service struct {
	db    *gorm.DB
	audit *audit.Logger
}

func NewService(db *gorm.DB, auditLog *audit.Logger) *Service {
	return &Service{db: db, audit: auditLog}
}

type QueueInput struct {
	Email   string
	Name    string
	Message string
}

func (s *Service) Queue(ctx context.Context, in QueueInput) (*Message, error) {
	if in.Email == "" {
		return nil, apperr.Validation("email is required")
	}

	s.audit.Op(ctx, "queue_contact", "contact_messages", map[string]any{"email": in.Email})

	m := &Message{
		ID:      uuid.NewString(),
		Email:   in.Email,
		Name:    in.Name,
		Message: in.Message,
		Status:  StatusQueued,
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		s.audit.Err(ctx, "contact queue error: "+err.Error(), map[string]any{"email": in.Email})
		return nil, apperr.Upstream(err, "queue contact message")
	}
	return m, nil
}

func (s *Service) Unprocessed(ctx context.Context) ([]Message, error) {
	s.audit.Op(ctx, "get_messages", "contact_messages", nil)

	var msgs []Message
	if err := s.db.WithContext(ctx).
		Where("status = ?", StatusQueued).
		Order("created_at ASC").
		Find(&msgs).Error; err != nil {
		return nil, apperr.Upstream(err, "list contact messages")
	}
	return msgs, nil
}

func (s *Service) MarkProcessed(ctx context.Context, id string) (*Message, error) {
	if id == "" {
		return nil, apperr.Validation("message id is required")
	}

	s.audit.Op(ctx, "mark_processed", "contact_messages", map[string]any{"message_id": id})

	var m Message
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("contact message %s not found", id)
		}
		return nil, apperr.Upstream(err, "load contact message")
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&m).
		Updates(map[string]any{"status": StatusProcessed, "processed_at": &now}).Error; err != nil {
		return nil, apperr.Upstream(err, "mark message processed")
	}
	m.Status = StatusProcessed
	m.ProcessedAt = &now
	return &m, nil
}
