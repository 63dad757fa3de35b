package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gormsqlite "github.com/glebarez/sqlite"
	"github.com/pulsehustle/pulsehustle/internal/config"
	"github.com/pulsehustle/pulsehustle/internal/db"
	"github.com/pulsehustle/pulsehustle/internal/matching"
	"gorm.io/gorm"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(gormsqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := config.Config{
		JWTSecret:     "test-secret",
		ServiceAPIKey: "test-key",
		PayPalHandle:  "invinciblelude",
	}

	dispatcher := matching.NewInProcessDispatcher(time.Millisecond)
	h := NewHandler(gdb, cfg, nil, nil, dispatcher)
	return NewRouter(h, cfg)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: bad envelope %q: %v", method, path, w.Body.String(), err)
	}
	return w, env
}

func signup(t *testing.T, r *gin.Engine, email, username string) (id, token string) {
	t.Helper()
	w, env := doJSON(t, r, http.MethodPost, "/users", "", gin.H{
		"email":    email,
		"username": username,
		"password": "s3cret",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("signup: status %d body %s", w.Code, w.Body.String())
	}
	var data struct {
		ID    string `json:"id"`
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("signup data: %v", err)
	}
	return data.ID, data.Token
}

func TestPing(t *testing.T) {
	r := newTestRouter(t)
	w, env := doJSON(t, r, http.MethodGet, "/ping", "", nil)
	if w.Code != http.StatusOK || env.Code != 0 {
		t.Fatalf("ping: status %d code %d", w.Code, env.Code)
	}
}

func TestSignupAndLogin(t *testing.T) {
	r := newTestRouter(t)
	_, token := signup(t, r, "a@example.com", "alex")
	if token == "" {
		t.Fatalf("signup returned no token")
	}

	w, env := doJSON(t, r, http.MethodPost, "/login", "", gin.H{
		"email":    "a@example.com",
		"password": "s3cret",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d", w.Code)
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Token == "" {
		t.Fatalf("login data: %s", env.Data)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/login", "", gin.H{
		"email":    "a@example.com",
		"password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: status %d, want 401", w.Code)
	}
}

func TestGigLifecycleOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	_, owner := signup(t, r, "owner@example.com", "owner")
	_, other := signup(t, r, "other@example.com", "other")

	// unauthenticated create is rejected
	w, _ := doJSON(t, r, http.MethodPost, "/api/gigs", "", gin.H{"title": "x"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anon create: status %d, want 401", w.Code)
	}

	w, env := doJSON(t, r, http.MethodPost, "/api/gigs", owner, gin.H{
		"title": "Logo Design",
		"pay":   600,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("create: status %d body %s", w.Code, w.Body.String())
	}
	var created struct {
		ID          string `json:"id"`
		WorkerRate  int64  `json:"worker_rate"`
		PlatformFee int64  `json:"platform_fee"`
		Status      string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("create data: %v", err)
	}
	if created.WorkerRate != 570 || created.PlatformFee != 30 || created.Status != "posted" {
		t.Fatalf("created gig = %+v", created)
	}

	// public read
	w, _ = doJSON(t, r, http.MethodGet, "/api/gigs/"+created.ID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: status %d", w.Code)
	}

	// non-owner cannot change status
	w, _ = doJSON(t, r, http.MethodPatch, "/api/gigs/"+created.ID+"/status", other, gin.H{"status": "completed"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner status change: status %d, want 403", w.Code)
	}

	// owner cancels, then edits are blocked
	w, _ = doJSON(t, r, http.MethodPatch, "/api/gigs/"+created.ID+"/status", owner, gin.H{"status": "cancelled"})
	if w.Code != http.StatusOK {
		t.Fatalf("cancel: status %d", w.Code)
	}
	w, _ = doJSON(t, r, http.MethodPut, "/api/gigs/"+created.ID, owner, gin.H{"title": "new"})
	if w.Code != http.StatusConflict {
		t.Fatalf("edit cancelled gig: status %d, want 409", w.Code)
	}

	// listing still shows the gig
	w, env = doJSON(t, r, http.MethodGet, "/api/gigs", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d", w.Code)
	}
	var listing struct {
		Gigs []json.RawMessage `json:"gigs"`
	}
	if err := json.Unmarshal(env.Data, &listing); err != nil || len(listing.Gigs) != 1 {
		t.Fatalf("listing = %s", env.Data)
	}
}

func TestStatsEndpoint(t *testing.T) {
	r := newTestRouter(t)
	_, owner := signup(t, r, "owner@example.com", "owner")

	if w, _ := doJSON(t, r, http.MethodPost, "/api/gigs", owner, gin.H{"title": "one"}); w.Code != http.StatusOK {
		t.Fatalf("create: status %d", w.Code)
	}

	w, env := doJSON(t, r, http.MethodGet, "/api/stats", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats: status %d", w.Code)
	}
	var snap struct {
		JobsCreated int64  `json:"jobs_created"`
		WeeklyGoal  int    `json:"weekly_goal"`
		LaunchDate  string `json:"launch_date"`
	}
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		t.Fatalf("stats data: %v", err)
	}
	if snap.JobsCreated != 1 || snap.WeeklyGoal != 10 || snap.LaunchDate != "2024-04-08" {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestPriceEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/price", "", gin.H{"hours": 10})
	if w.Code != http.StatusOK {
		t.Fatalf("price: status %d", w.Code)
	}
	var quote struct {
		TotalPrice  int64   `json:"total_price"`
		WorkerPrice int64   `json:"worker_price"`
		PlatformFee int64   `json:"platform_fee"`
		HourlyRate  float64 `json:"hourly_rate"`
		Hours       int     `json:"hours"`
	}
	if err := json.Unmarshal(env.Data, &quote); err != nil {
		t.Fatalf("price data: %v", err)
	}
	if quote.Hours != 10 {
		t.Fatalf("hours = %d", quote.Hours)
	}
	if quote.HourlyRate < 15 || quote.HourlyRate >= 25 {
		t.Fatalf("rate %f out of range", quote.HourlyRate)
	}
	if quote.WorkerPrice+quote.PlatformFee != quote.TotalPrice {
		t.Fatalf("quote split does not sum: %+v", quote)
	}
}

func TestPayPalEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/payments/paypal", "", gin.H{
		"amount":      600,
		"description": "gig payment",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("paypal: status %d body %s", w.Code, w.Body.String())
	}
	var redirect struct {
		PaymentID   string `json:"payment_id"`
		RedirectURL string `json:"redirect_url"`
	}
	if err := json.Unmarshal(env.Data, &redirect); err != nil {
		t.Fatalf("paypal data: %v", err)
	}
	if redirect.RedirectURL != "https://www.paypal.com/paypalme/invinciblelude/600" {
		t.Fatalf("redirect = %q", redirect.RedirectURL)
	}
}

func TestPayAndPostGig(t *testing.T) {
	r := newTestRouter(t)
	_, owner := signup(t, r, "owner@example.com", "owner")

	w, env := doJSON(t, r, http.MethodPost, "/api/pay", owner, gin.H{
		"title":       "Logo Design",
		"description": "Need a logo",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("pay: status %d body %s", w.Code, w.Body.String())
	}
	var data struct {
		Gig struct {
			ID        string  `json:"id"`
			Pay       int64   `json:"pay"`
			PaymentID *string `json:"payment_id"`
		} `json:"gig"`
		Payment struct {
			ID     string `json:"id"`
			Amount int64  `json:"amount"`
			Status string `json:"status"`
		} `json:"payment"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("pay data: %v", err)
	}
	if data.Payment.Amount != 600 || data.Payment.Status != "completed" {
		t.Fatalf("payment = %+v", data.Payment)
	}
	if data.Gig.Pay != 600 || data.Gig.PaymentID == nil || *data.Gig.PaymentID != data.Payment.ID {
		t.Fatalf("gig not linked: %+v", data.Gig)
	}

	w, env = doJSON(t, r, http.MethodGet, "/api/payments/history", owner, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history: status %d", w.Code)
	}
	var history struct {
		Payments []json.RawMessage `json:"payments"`
	}
	if err := json.Unmarshal(env.Data, &history); err != nil || len(history.Payments) != 1 {
		t.Fatalf("history = %s", env.Data)
	}
}

func TestAdminSurfaceRequiresKey(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/messages", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing key: status %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/messages", nil)
	req.Header.Set("X-API-Key", "test-key")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid key: status %d, want 200", w.Code)
	}
}

func TestContactQueueAndAdminProcess(t *testing.T) {
	r := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/contact", "", gin.H{
		"email":   "a@example.com",
		"message": "hello",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("contact: status %d", w.Code)
	}
	var msg struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		t.Fatalf("contact data: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/messages/"+msg.ID+"/process", nil)
	req.Header.Set("X-API-Key", "test-key")
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	if w2.Code != http.StatusOK {
		t.Fatalf("process: status %d body %s", w2.Code, w2.Body.String())
	}
}

func TestUnknownRoute(t *testing.T) {
	r := newTestRouter(t)
	w, env := doJSON(t, r, http.MethodGet, "/nope", "", nil)
	if w.Code != http.StatusNotFound || env.Code != 40400 {
		t.Fatalf("status %d code %d", w.Code, env.Code)
	}
}
