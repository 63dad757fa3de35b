package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pulsehustle/pulsehustle/internal/apperr"
	"github.com/pulsehustle/pulsehustle/internal/application"
	"github.com/pulsehustle/pulsehustle/internal/audit"
	"github.com/pulsehustle/pulsehustle/internal/common"
	"github.com/pulsehustle/pulsehustle/internal/config"
	"github.com/pulsehustle/pulsehustle/internal/contact"
	"github.com/pulsehustle/pulsehustle/internal/gig"
	"github.com/pulsehustle/pulsehustle/internal/httpapi/middleware"
	"github.com/pulsehustle/pulsehustle/internal/matching"
	"github.com/pulsehustle/pulsehustle/internal/payment"
	"github.com/pulsehustle/pulsehustle/internal/pricing"
	"github.com/pulsehustle/pulsehustle/internal/profile"
	"github.com/pulsehustle/pulsehustle/internal/stats"
	"github.com/pulsehustle/pulsehustle/internal/store/redisstore"
	"gorm.io/gorm"
)

type Handler struct {
	DB    *gorm.DB
	Cfg   config.Config
	Redis *redisstore.Store

	GigSvc         *gig.Service
	PaymentSvc     *payment.Service
	MatchingSvc    *matching.Service
	StatsSvc       *stats.Service
	ContactSvc     *contact.Service
	ProfileSvc     *profile.Service
	ApplicationSvc *application.Service
	PricingSvc     *pricing.Service
	Audit          *audit.Logger
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

func userIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// failErr maps the service error taxonomy onto HTTP statuses and
// envelope codes.
func failErr(c *gin.Context, err error) {
	msg := err.Error()
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		common.Fail(c, http.StatusBadRequest, 10001, msg)
	case apperr.KindNotFound:
		common.Fail(c, http.StatusNotFound, 40401, msg)
	case apperr.KindPermission:
		common.Fail(c, http.StatusForbidden, 40301, msg)
	case apperr.KindInvalidState:
		common.Fail(c, http.StatusConflict, 40901, msg)
	default:
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
	}
}
