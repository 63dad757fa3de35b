package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pulsehustle/pulsehustle/internal/application"
	"github.com/pulsehustle/pulsehustle/internal/audit"
	"github.com/pulsehustle/pulsehustle/internal/common"
	"github.com/pulsehustle/pulsehustle/internal/contact"
	"github.com/pulsehustle/pulsehustle/internal/profile"
	"github.com/pulsehustle/pulsehustle/internal/stats"
)

const statsCacheTTL = 30 * time.Second

func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	if h.Redis != nil {
		var cached stats.Snapshot
		if hit, err := h.Redis.GetCachedStats(ctx, &cached); err == nil && hit {
			common.OK(c, cached)
			return
		}
	}

	snap, err := h.StatsSvc.Platform(ctx)
	if err != nil {
		failErr(c, err)
		return
	}
	if h.Redis != nil {
		_ = h.Redis.SetCachedStats(ctx, snap, statsCacheTTL)
	}
	common.OK(c, snap)
}

type contactReq struct {
	Email   string `json:"email" binding:"required"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (h *Handler) QueueContact(c *gin.Context) {
	var req contactReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	m, err := h.ContactSvc.Queue(c.Request.Context(), contact.QueueInput{
		Email:   req.Email,
		Name:    req.Name,
		Message: req.Message,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, m)
}

func (h *Handler) AdminListMessages(c *gin.Context) {
	msgs, err := h.ContactSvc.Unprocessed(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, gin.H{"messages": msgs})
}

func (h *Handler) AdminProcessMessage(c *gin.Context) {
	m, err := h.ContactSvc.MarkProcessed(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, m)
}

func (h *Handler) GetProfile(c *gin.Context) {
	p, err := h.ProfileSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, p)
}

type profileReq struct {
	Username   string   `json:"username"`
	FullName   string   `json:"full_name"`
	Bio        string   `json:"bio"`
	AvatarURL  string   `json:"avatar_url"`
	Website    string   `json:"website"`
	Location   string   `json:"location"`
	Skills     []string `json:"skills"`
	HourlyRate int64    `json:"hourly_rate"`
}

func (h *Handler) UpdateMyProfile(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req profileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	ctx := audit.WithUserID(c.Request.Context(), uid)
	p, err := h.ProfileSvc.Upsert(ctx, uid, profile.UpsertInput{
		Username:   req.Username,
		FullName:   req.FullName,
		Bio:        req.Bio,
		AvatarURL:  req.AvatarURL,
		Website:    req.Website,
		Location:   req.Location,
		Skills:     req.Skills,
		HourlyRate: req.HourlyRate,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, p)
}

type applyReq struct {
	CoverLetter string `json:"cover_letter"`
}

func (h *Handler) SubmitApplication(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req applyReq
	_ = c.ShouldBindJSON(&req)

	ctx := audit.WithUserID(c.Request.Context(), uid)
	a, err := h.ApplicationSvc.Submit(ctx, c.Param("id"), uid, req.CoverLetter)
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, a)
}

func (h *Handler) ListApplications(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	apps, err := h.ApplicationSvc.ListForGig(c.Request.Context(), c.Param("id"), uid)
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, gin.H{"applications": apps})
}

type applicationStatusReq struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) SetApplicationStatus(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req applicationStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	ctx := audit.WithUserID(c.Request.Context(), uid)
	a, err := h.ApplicationSvc.SetStatus(ctx, c.Param("id"), application.Status(req.Status), uid)
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, a)
}
