package audit

import (
	"context"
	"log"
	"time"

	"github.com/pulsehustle/pulsehustle/internal/models"
	"gorm.io/gorm"
)

type Log struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Operation string         `gorm:"type:varchar(64);index;not null" json:"operation"`
	Table     string         `gorm:"column:table_name;type:varchar(64);index;not null" json:"table_name"`
	Details   models.JSONMap `gorm:"type:text" json:"details"`
	UserID    *string        `gorm:"type:varchar(36);index" json:"user_id"`
	CreatedAt time.Time      `json:"created_at"`
}

func (Log) TableName() string { return "audit_logs" }

type ErrorRecord struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	Context   models.JSONMap `gorm:"type:text" json:"context"`
	CreatedAt time.Time      `json:"created_at"`
}

func (ErrorRecord) TableName() string { return "errors" }

// Logger appends audit rows as a side effect of mutating calls.
// Appends are advisory: a failed insert is logged and swallowed,
// never propagated to the caller. A nil Logger is a no-op.
type Logger struct {
	db *gorm.DB
}

func NewLogger(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Op(ctx context.Context, operation, table string, details map[string]any) {
	if l == nil || l.db == nil {
		return
	}
	row := Log{
		Operation: operation,
		Table:     table,
		Details:   details,
	}
	if uid, ok := UserIDFrom(ctx); ok {
		row.UserID = &uid
	}
	if err := l.db.WithContext(ctx).Create(&row).Error; err != nil {
		log.Printf("audit: log %s/%s failed: %v", operation, table, err)
	}
}

// Err records a service failure in the errors relation, same
// best-effort policy as Op.
func (l *Logger) Err(ctx context.Context, msg string, details map[string]any) {
	if l == nil || l.db == nil {
		return
	}
	row := ErrorRecord{Message: msg, Context: details}
	if err := l.db.WithContext(ctx).Create(&row).Error; err != nil {
		log.Printf("audit: error record failed: %v", err)
	}
}

type ctxKey struct{}

// WithUserID stamps the acting user onto the context so audit rows
// can attribute the operation.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

func UserIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKey{}).(string)
	return v, ok && v != ""
}
