package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pulsehustle/pulsehustle/internal/application"
	"github.com/pulsehustle/pulsehustle/internal/audit"
	"github.com/pulsehustle/pulsehustle/internal/common"
	"github.com/pulsehustle/pulsehustle/internal/config"
	"github.com/pulsehustle/pulsehustle/internal/contact"
	"github.com/pulsehustle/pulsehustle/internal/gig"
	"github.com/pulsehustle/pulsehustle/internal/httpapi/handlers"
	"github.com/pulsehustle/pulsehustle/internal/httpapi/middleware"
	"github.com/pulsehustle/pulsehustle/internal/matching"
	"github.com/pulsehustle/pulsehustle/internal/payment"
	"github.com/pulsehustle/pulsehustle/internal/pricing"
	"github.com/pulsehustle/pulsehustle/internal/profile"
	"github.com/pulsehustle/pulsehustle/internal/realtime"
	"github.com/pulsehustle/pulsehustle/internal/stats"
	"github.com/pulsehustle/pulsehustle/internal/store/redisstore"
	"gorm.io/gorm"
)

// NewHandler wires every domain service over the shared DB handle.
// dispatcher may be the rabbitmq publisher or the in-process fallback;
// rds and relay may be nil when redis is unavailable.
func NewHandler(gdb *gorm.DB, cfg config.Config, rds *redisstore.Store, relay *realtime.Relay, dispatcher matching.Dispatcher) *handlers.Handler {
	auditLog := audit.NewLogger(gdb)

	gigRepo := gig.NewRepo(gdb)
	profileRepo := profile.NewRepo(gdb)

	statsSvc := stats.NewService(stats.NewRepo(gdb), auditLog)
	matchingSvc := matching.NewService(matching.NewRepo(gdb), gigRepo, profileRepo, nil, dispatcher, auditLog, relay)
	if d, ok := dispatcher.(*matching.InProcessDispatcher); ok {
		d.Bind(matchingSvc)
	}
	gigSvc := gig.NewService(gigRepo, statsSvc, matchingSvc, auditLog, relay)
	paymentSvc := payment.NewService(payment.NewRepo(gdb), gigSvc, auditLog, relay, cfg.PayPalHandle)

	return &handlers.Handler{
		DB:    gdb,
		Cfg:   cfg,
		Redis: rds,

		GigSvc:         gigSvc,
		PaymentSvc:     paymentSvc,
		MatchingSvc:    matchingSvc,
		StatsSvc:       statsSvc,
		ContactSvc:     contact.NewService(gdb, auditLog),
		ProfileSvc:     profile.NewService(profileRepo, auditLog),
		ApplicationSvc: application.NewService(gdb, gigSvc, auditLog),
		PricingSvc:     pricing.NewService(nil, auditLog),
		Audit:          auditLog,
	}
}

func NewRouter(h *handlers.Handler, cfg config.Config) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.GET("/ping", h.Ping)

	// auth
	r.POST("/users", h.CreateUser)
	r.POST("/login", h.Login)

	// public browse surface
	r.GET("/api/gigs", h.ListGigs)
	r.GET("/api/gigs/:id", h.GetGig)
	r.POST("/api/price", h.CalculatePrice)
	r.GET("/api/stats", h.GetStats)
	r.POST("/api/contact", h.QueueContact)
	r.POST("/api/payments/paypal", h.ProcessPayPal)
	r.GET("/api/profiles/:id", h.GetProfile)

	// JWT required
	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.JWTSecret))
	authGroup.GET("/me", h.Me)
	authGroup.PUT("/me/profile", h.UpdateMyProfile)

	authGroup.POST("/api/gigs", h.CreateGig)
	authGroup.PUT("/api/gigs/:id", h.UpdateGig)
	authGroup.PATCH("/api/gigs/:id/status", h.ChangeGigStatus)
	authGroup.GET("/api/gigs/:id/matches", h.GetGigMatches)

	authGroup.POST("/api/pay", h.ProcessGigPayment)
	authGroup.GET("/api/payments/history", h.PaymentHistory)

	authGroup.POST("/api/gigs/:id/applications", h.SubmitApplication)
	authGroup.GET("/api/gigs/:id/applications", h.ListApplications)
	authGroup.PATCH("/api/applications/:id/status", h.SetApplicationStatus)

	// admin surface behind the shared service key
	admin := r.Group("/api/admin")
	admin.Use(middleware.APIKeyRequired(cfg.ServiceAPIKey))
	admin.GET("/messages", h.AdminListMessages)
	admin.POST("/messages/:id/process", h.AdminProcessMessage)
	admin.PATCH("/payments/:id/status", h.UpdatePaymentStatus)

	return r
}
