package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pulsehustle/pulsehustle/internal/audit"
	"github.com/pulsehustle/pulsehustle/internal/common"
	"github.com/pulsehustle/pulsehustle/internal/gig"
)

type createGigReq struct {
	Title          string   `json:"title" binding:"required"`
	Description    string   `json:"description"`
	Hours          int      `json:"hours"`
	Pay            int64    `json:"pay"`
	PaymentType    string   `json:"payment_type"`
	Location       string   `json:"location"`
	Remote         *bool    `json:"remote"`
	SkillsRequired []string `json:"skills_required"`
	Duration       string   `json:"duration"`
}

func (h *Handler) CreateGig(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req createGigReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	ctx := audit.WithUserID(c.Request.Context(), uid)
	g, err := h.GigSvc.Create(ctx, gig.CreateInput{
		Title:          req.Title,
		Description:    req.Description,
		Hours:          req.Hours,
		Pay:            req.Pay,
		PaymentType:    gig.PaymentType(req.PaymentType),
		Location:       req.Location,
		Remote:         req.Remote,
		SkillsRequired: req.SkillsRequired,
		Duration:       req.Duration,
	}, uid)
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, g)
}

func (h *Handler) ListGigs(c *gin.Context) {
	f := gig.Filter{
		Search:      c.Query("search"),
		PaymentType: gig.PaymentType(c.Query("payment_type")),
		Location:    c.Query("location"),
		UserID:      c.Query("user_id"),
		Status:      gig.Status(c.Query("status")),
	}

	if v := c.Query("remote"); v != "" {
		remote := v == "true" || v == "1"
		f.Remote = &remote
	}
	if v := c.Query("pay_min"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.PayMin = &n
		}
	}
	if v := c.Query("pay_max"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.PayMax = &n
		}
	}
	if v := c.Query("skills"); v != "" {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				f.Skills = append(f.Skills, s)
			}
		}
	}
	f.Page, _ = strconv.Atoi(c.Query("page"))
	f.PerPage, _ = strconv.Atoi(c.Query("per_page"))

	page, err := h.GigSvc.List(c.Request.Context(), f)
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, gin.H{
		"gigs": page.Items,
		"pagination": gin.H{
			"page":     page.Page,
			"per_page": page.PerPage,
			"total":    page.Total,
		},
	})
}

func (h *Handler) GetGig(c *gin.Context) {
	g, err := h.GigSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, g)
}

type updateGigReq struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Hours          int      `json:"hours"`
	Location       string   `json:"location"`
	Remote         *bool    `json:"remote"`
	SkillsRequired []string `json:"skills_required"`
	Duration       string   `json:"duration"`
	Pay            int64    `json:"pay"`
}

func (h *Handler) UpdateGig(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req updateGigReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	ctx := audit.WithUserID(c.Request.Context(), uid)
	g, err := h.GigSvc.Update(ctx, c.Param("id"), gig.UpdateInput{
		Title:          req.Title,
		Description:    req.Description,
		Hours:          req.Hours,
		Location:       req.Location,
		Remote:         req.Remote,
		SkillsRequired: req.SkillsRequired,
		Duration:       req.Duration,
		Pay:            req.Pay,
	}, uid)
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, g)
}

type changeStatusReq struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) ChangeGigStatus(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req changeStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	ctx := audit.WithUserID(c.Request.Context(), uid)
	g, err := h.GigSvc.ChangeStatus(ctx, c.Param("id"), gig.Status(req.Status), uid)
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, g)
}

func (h *Handler) GetGigMatches(c *gin.Context) {
	res, err := h.MatchingSvc.GigMatches(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, res)
}
