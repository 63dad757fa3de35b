package application

import (
	"context"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/pulsehustle/pulsehustle/internal/apperr"
	"github.com/pulsehustle/pulsehustle/internal/gig"
	"gorm.io/gorm"
)

type fakeGigs struct {
	gigs map[string]*gig.Gig
}

func (f *fakeGigs) GetByID(_ context.Context, id string) (*gig.Gig, error) {
	g, ok := f.gigs[id]
	if !ok {
		return nil, apperr.NotFound("gig %s not found", id)
	}
	return g, nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Application{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	gigs := &fakeGigs{gigs: map[string]*gig.Gig{
		"gig-1": {ID: "gig-1", Title: "t", UserID: "owner"},
	}}
	return NewService(db, gigs, nil)
}

func TestSubmit(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a, err := svc.Submit(ctx, "gig-1", "worker-1", "pick me")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if a.Status != StatusSubmitted {
		t.Fatalf("status = %q, want submitted", a.Status)
	}

	if _, err := svc.Submit(ctx, "missing-gig", "worker-1", ""); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("missing gig: got %v, want not found", err)
	}
	if _, err := svc.Submit(ctx, "", "worker-1", ""); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("empty gig id: got %v, want validation error", err)
	}
}

func TestListForGig_OwnerOnly(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, "gig-1", "worker-1", ""); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Submit(ctx, "gig-1", "worker-2", ""); err != nil {
		t.Fatalf("submit: %v", err)
	}

	apps, err := svc.ListForGig(ctx, "gig-1", "owner")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(apps) != 2 {
		t.Fatalf("len = %d, want 2", len(apps))
	}

	if _, err := svc.ListForGig(ctx, "gig-1", "worker-1"); !apperr.Is(err, apperr.KindPermission) {
		t.Fatalf("non-owner list: got %v, want permission error", err)
	}
}

func TestSetStatus(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a, err := svc.Submit(ctx, "gig-1", "worker-1", "")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	updated, err := svc.SetStatus(ctx, a.ID, StatusAccepted, "owner")
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if updated.Status != StatusAccepted {
		t.Fatalf("status = %q, want accepted", updated.Status)
	}

	if _, err := svc.SetStatus(ctx, a.ID, Status("hired"), "owner"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("bad status: got %v, want validation error", err)
	}
	if _, err := svc.SetStatus(ctx, a.ID, StatusRejected, "worker-1"); !apperr.Is(err, apperr.KindPermission) {
		t.Fatalf("non-owner: got %v, want permission error", err)
	}
	if _, err := svc.SetStatus(ctx, "missing", StatusRejected, "owner"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("missing application: got %v, want not found", err)
	}
}
