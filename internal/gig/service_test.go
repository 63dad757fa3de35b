package gig

import (
	"context"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/pulsehustle/pulsehustle/internal/apperr"
	"gorm.io/gorm"
)

type recordingStats struct {
	created   []string
	completed []string
	pay       int64
}

func (r *recordingStats) RecordJobCreation(_ context.Context, gigID string) error {
	r.created = append(r.created, gigID)
	return nil
}

func (r *recordingStats) RecordJobCompletion(_ context.Context, gigID string, pay, _, _ int64) error {
	r.completed = append(r.completed, gigID)
	r.pay = pay
	return nil
}

type recordingMatcher struct {
	enqueued []string
}

func (r *recordingMatcher) EnqueueForGig(_ context.Context, gigID string) error {
	r.enqueued = append(r.enqueued, gigID)
	return nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Gig{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (*Service, *recordingStats, *recordingMatcher) {
	t.Helper()
	db := openTestDB(t)
	st := &recordingStats{}
	m := &recordingMatcher{}
	return NewService(NewRepo(db), st, m, nil, nil), st, m
}

func TestCreate_PaySplitAndDefaults(t *testing.T) {
	svc, st, m := newTestService(t)

	g, err := svc.Create(context.Background(), CreateInput{Title: "Logo Design", Pay: 600}, "user-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if g.WorkerRate != 570 {
		t.Fatalf("worker_rate = %d, want 570", g.WorkerRate)
	}
	if g.PlatformFee != 30 {
		t.Fatalf("platform_fee = %d, want 30", g.PlatformFee)
	}
	if g.WorkerRate+g.PlatformFee != g.Pay {
		t.Fatalf("split does not sum: %d + %d != %d", g.WorkerRate, g.PlatformFee, g.Pay)
	}
	if g.Status != StatusPosted {
		t.Fatalf("status = %q, want posted", g.Status)
	}
	if g.Hours != DefaultHours {
		t.Fatalf("hours = %d, want %d", g.Hours, DefaultHours)
	}
	if g.Duration != "40 hours" {
		t.Fatalf("duration = %q, want %q", g.Duration, "40 hours")
	}
	if len(st.created) != 1 || st.created[0] != g.ID {
		t.Fatalf("expected one stats creation record for %s, got %v", g.ID, st.created)
	}
	if len(m.enqueued) != 1 || m.enqueued[0] != g.ID {
		t.Fatalf("expected exactly one matching job for %s, got %v", g.ID, m.enqueued)
	}
}

func TestCreate_SplitInvariantAcrossPayValues(t *testing.T) {
	for _, pay := range []int64{1, 7, 99, 600, 601, 12345} {
		worker, fee := SplitPay(pay)
		if worker+fee != pay {
			t.Fatalf("pay=%d: worker %d + fee %d != pay", pay, worker, fee)
		}
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, st, m := newTestService(t)

	if _, err := svc.Create(context.Background(), CreateInput{}, "user-1"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("missing title: got %v, want validation error", err)
	}
	if _, err := svc.Create(context.Background(), CreateInput{Title: "x"}, ""); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("missing owner: got %v, want validation error", err)
	}
	if len(st.created) != 0 || len(m.enqueued) != 0 {
		t.Fatalf("failed creates must not trigger side effects")
	}
}

func TestUpdate_NonOwnerRejected(t *testing.T) {
	svc, _, _ := newTestService(t)

	g, err := svc.Create(context.Background(), CreateInput{Title: "t"}, "owner")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Update(context.Background(), g.ID, UpdateInput{Title: "new"}, "intruder")
	if !apperr.Is(err, apperr.KindPermission) {
		t.Fatalf("got %v, want permission error", err)
	}

	got, err := svc.GetByID(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "t" {
		t.Fatalf("gig mutated by rejected update: title=%q", got.Title)
	}
}

func TestUpdate_TerminalStatusRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, status := range []Status{StatusCompleted, StatusCancelled} {
		g, err := svc.Create(ctx, CreateInput{Title: "t"}, "owner")
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := svc.ChangeStatus(ctx, g.ID, status, "owner"); err != nil {
			t.Fatalf("change status: %v", err)
		}
		if _, err := svc.Update(ctx, g.ID, UpdateInput{Title: "new"}, "owner"); !apperr.Is(err, apperr.KindInvalidState) {
			t.Fatalf("status %s: got %v, want invalid state error", status, err)
		}
	}
}

func TestUpdate_PayRecomputeAndFreeze(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	g, err := svc.Create(ctx, CreateInput{Title: "t", Pay: 600}, "owner")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, g.ID, UpdateInput{Pay: 1000}, "owner")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Pay != 1000 || updated.WorkerRate != 950 || updated.PlatformFee != 50 {
		t.Fatalf("pay split after update = %d/%d/%d", updated.Pay, updated.WorkerRate, updated.PlatformFee)
	}

	// pay is frozen once the gig is paid
	if _, err := svc.ChangeStatus(ctx, g.ID, StatusPaid, "owner"); err != nil {
		t.Fatalf("change status: %v", err)
	}
	frozen, err := svc.Update(ctx, g.ID, UpdateInput{Pay: 2000}, "owner")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if frozen.Pay != 1000 {
		t.Fatalf("pay changed on paid gig: %d", frozen.Pay)
	}
}

func TestUpdate_RelevanceChangeReenqueuesMatching(t *testing.T) {
	svc, _, m := newTestService(t)
	ctx := context.Background()

	g, err := svc.Create(ctx, CreateInput{Title: "t"}, "owner")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(m.enqueued) != 1 {
		t.Fatalf("expected 1 enqueue after create, got %d", len(m.enqueued))
	}

	// hours-only change does not supersede matching
	if _, err := svc.Update(ctx, g.ID, UpdateInput{Hours: 10}, "owner"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(m.enqueued) != 1 {
		t.Fatalf("hours change must not re-enqueue, got %d", len(m.enqueued))
	}

	if _, err := svc.Update(ctx, g.ID, UpdateInput{Description: "new desc"}, "owner"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(m.enqueued) != 2 {
		t.Fatalf("description change must re-enqueue, got %d", len(m.enqueued))
	}
}

func TestChangeStatus_InvalidValueRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	g, err := svc.Create(ctx, CreateInput{Title: "t"}, "owner")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.ChangeStatus(ctx, g.ID, Status("archived"), "owner"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("got %v, want validation error", err)
	}
	if _, err := svc.ChangeStatus(ctx, g.ID, StatusCompleted, "someone-else"); !apperr.Is(err, apperr.KindPermission) {
		t.Fatalf("got %v, want permission error", err)
	}
}

func TestChangeStatus_CompletionRecordsStats(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	g, err := svc.Create(ctx, CreateInput{Title: "t", Pay: 600}, "owner")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.ChangeStatus(ctx, g.ID, StatusCancelled, "owner"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if len(st.completed) != 0 {
		t.Fatalf("cancellation must not record completion")
	}

	// unrestricted transition graph: cancelled may move to completed
	if _, err := svc.ChangeStatus(ctx, g.ID, StatusCompleted, "owner"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if len(st.completed) != 1 || st.completed[0] != g.ID || st.pay != 600 {
		t.Fatalf("completion record missing: %v pay=%d", st.completed, st.pay)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.GetByID(context.Background(), "nope"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("got %v, want not found error", err)
	}
}

func TestList_PaymentTypeAndRange(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	fixtures := []CreateInput{
		{Title: "hourly in range A", Pay: 30, PaymentType: PaymentHourly},
		{Title: "hourly in range B", Pay: 45, PaymentType: PaymentHourly},
		{Title: "hourly out of range", Pay: 80, PaymentType: PaymentHourly},
		{Title: "fixed one", Pay: 25, PaymentType: PaymentFixed},
		{Title: "fixed two", Pay: 40, PaymentType: PaymentFixed},
	}
	for _, f := range fixtures {
		if _, err := svc.Create(ctx, f, "owner"); err != nil {
			t.Fatalf("create %q: %v", f.Title, err)
		}
	}

	lo, hi := int64(20), int64(50)
	page, err := svc.List(ctx, Filter{PaymentType: PaymentHourly, PayMin: &lo, PayMax: &hi})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 2 || len(page.Items) != 2 {
		t.Fatalf("expected exactly 2 in-range hourly gigs, got total=%d len=%d", page.Total, len(page.Items))
	}
	for _, g := range page.Items {
		if g.PaymentType != PaymentHourly || g.Pay < lo || g.Pay > hi {
			t.Fatalf("unexpected gig in result: %q pay=%d type=%s", g.Title, g.Pay, g.PaymentType)
		}
	}
}

func TestList_SkillsRequireAll(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Title: "both", SkillsRequired: []string{"go", "sql"}}, "owner"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Title: "only go", SkillsRequired: []string{"go"}}, "owner"); err != nil {
		t.Fatalf("create: %v", err)
	}

	page, err := svc.List(ctx, Filter{Skills: []string{"go", "sql"}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 1 || page.Items[0].Title != "both" {
		t.Fatalf("AND semantics broken: total=%d", page.Total)
	}
}

func TestList_SkillsEscapeLikeMetacharacters(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Title: "percent", SkillsRequired: []string{"100%"}}, "owner"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Title: "decoy", SkillsRequired: []string{"100x"}}, "owner"); err != nil {
		t.Fatalf("create: %v", err)
	}

	page, err := svc.List(ctx, Filter{Skills: []string{"100%"}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 1 || page.Items[0].Title != "percent" {
		t.Fatalf("wildcard leaked into skill filter: total=%d", page.Total)
	}
}

func TestList_SearchAndPagination(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		title := "plain gig"
		if i%2 == 0 {
			title = "design work"
		}
		if _, err := svc.Create(ctx, CreateInput{Title: title, Description: "stuff"}, "owner"); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	page, err := svc.List(ctx, Filter{Search: "design", Page: 1, PerPage: 4})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 6 {
		t.Fatalf("search total = %d, want 6", page.Total)
	}
	if len(page.Items) != 4 || page.Page != 1 || page.PerPage != 4 {
		t.Fatalf("pagination wrong: len=%d page=%d per_page=%d", len(page.Items), page.Page, page.PerPage)
	}

	page2, err := svc.List(ctx, Filter{Search: "design", Page: 2, PerPage: 4})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(page2.Items) != 2 {
		t.Fatalf("page 2 len = %d, want 2", len(page2.Items))
	}
}
