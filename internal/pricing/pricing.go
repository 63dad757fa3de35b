package pricing

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/pulsehustle/pulsehustle/internal/apperr"
	"github.com/pulsehustle/pulsehustle/internal/audit"
	"github.com/pulsehustle/pulsehustle/internal/gig"
)

const (
	BaseHourlyRate = 15
	MaxHourlyRate  = 25
	DefaultHours   = 40
)

// RateQuoter produces an hourly rate for a gig of the given length.
// The shipped implementation is a uniform-random stand-in for a market
// pricing model.
type RateQuoter interface {
	HourlyRate(hours int) float64
}

type RandomQuoter struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomQuoter() *RandomQuoter {
	return &RandomQuoter{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func NewSeededQuoter(seed int64) *RandomQuoter {
	return &RandomQuoter{rng: rand.New(rand.NewSource(seed))}
}

// HourlyRate returns a rate in [15,25).
func (q *RandomQuoter) HourlyRate(_ int) float64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	rate := BaseHourlyRate + q.rng.Float64()*10
	return math.Min(math.Max(rate, BaseHourlyRate), MaxHourlyRate)
}

type Quote struct {
	TotalPrice  int64   `json:"total_price"`
	WorkerPrice int64   `json:"worker_price"`
	PlatformFee int64   `json:"platform_fee"`
	HourlyRate  float64 `json:"hourly_rate"`
	Hours       int     `json:"hours"`
}

type Service struct {
	quoter RateQuoter
	audit  *audit.Logger
}

func NewService(quoter RateQuoter, auditLog *audit.Logger) *Service {
	if quoter == nil {
		quoter = NewRandomQuoter()
	}
	return &Service{quoter: quoter, audit: auditLog}
}

func (s *Service) Calculate(ctx context.Context, hours int) (*Quote, error) {
	if hours < 0 {
		return nil, apperr.Validation("hours must not be negative")
	}
	if hours == 0 {
		hours = DefaultHours
	}

	s.audit.Op(ctx, "price_calculation", "gigs", map[string]any{"hours": hours})

	rate := s.quoter.HourlyRate(hours)
	total := int64(math.Round(float64(hours) * rate))
	worker, fee := gig.SplitPay(total)

	return &Quote{
		TotalPrice:  total,
		WorkerPrice: worker,
		PlatformFee: fee,
		HourlyRate:  rate,
		Hours:       hours,
	}, nil
}
