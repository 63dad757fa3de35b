package gig

import (
	"context"

	"github.com/pulsehustle/pulsehustle/internal/models"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, g *Gig) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Gig, error) {
	var g Gig
	if err := r.db.WithContext(ctx).First(&g, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *Repo) Exists(ctx context.Context, id string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).Model(&Gig{}).Where("id = ?", id).Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *Repo) Update(ctx context.Context, id string, fields map[string]any) (*Gig, error) {
	if err := r.db.WithContext(ctx).Model(&Gig{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Filter mirrors the query surface of the listing endpoint. Zero
// values mean "not filtered".
type Filter struct {
	Search      string
	PaymentType PaymentType
	Location    string
	// inclusive pay range, applied when both bounds are set
	PayMin *int64
	PayMax *int64

	UserID string
	Status Status
	Remote *bool
	// AND semantics: a gig must contain every listed skill
	Skills []string

	Page    int
	PerPage int
}

type Page struct {
	Items   []Gig `json:"items"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
}

func (r *Repo) List(ctx context.Context, f Filter) (*Page, error) {
	q := r.db.WithContext(ctx).Model(&Gig{})

	if f.Search != "" {
		pat := "%" + f.Search + "%"
		q = q.Where("title LIKE ? OR description LIKE ?", pat, pat)
	}
	if f.PaymentType != "" {
		q = q.Where("payment_type = ?", f.PaymentType)
	}
	if f.Location != "" {
		q = q.Where("location = ?", f.Location)
	}
	if f.PayMin != nil {
		q = q.Where("pay >= ?", *f.PayMin)
	}
	if f.PayMax != nil {
		q = q.Where("pay <= ?", *f.PayMax)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Remote != nil {
		q = q.Where("remote = ?", *f.Remote)
	}
	for _, skill := range f.Skills {
		q = q.Where("skills_required LIKE ? ESCAPE '!'", models.LikeJSON(skill))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	page := f.Page
	if page <= 0 {
		page = 1
	}
	perPage := f.PerPage
	if perPage <= 0 {
		perPage = 10
	}

	var items []Gig
	if err := q.Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&items).Error; err != nil {
		return nil, err
	}

	return &Page{Items: items, Page: page, PerPage: perPage, Total: total}, nil
}
