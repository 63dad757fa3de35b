package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pulsehustle/pulsehustle/internal/audit"
	"github.com/pulsehustle/pulsehustle/internal/common"
	"github.com/pulsehustle/pulsehustle/internal/gig"
	"github.com/pulsehustle/pulsehustle/internal/payment"
)

type paypalReq struct {
	Amount      int64  `json:"amount" binding:"required"`
	Description string `json:"description"`
	RedirectURL string `json:"redirect_url"`
}

// ProcessPayPal is a fire-and-forget redirect: no webhook ever
// confirms the external payment.
func (h *Handler) ProcessPayPal(c *gin.Context) {
	var req paypalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	var userID *string
	if uid, ok := userIDFromContext(c); ok {
		userID = &uid
	}

	res, err := h.PaymentSvc.ProcessPayPal(c.Request.Context(), req.Amount, req.Description, req.RedirectURL, userID)
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, gin.H{
		"payment_id":   res.PaymentID,
		"redirect_url": res.RedirectURL,
		"message":      "Redirecting to PayPal...",
	})
}

type gigPaymentReq struct {
	Title          string   `json:"title" binding:"required"`
	Description    string   `json:"description" binding:"required"`
	Hours          int      `json:"hours"`
	SkillsRequired []string `json:"skills_required"`
	Duration       string   `json:"duration"`
}

func (h *Handler) ProcessGigPayment(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req gigPaymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	ctx := audit.WithUserID(c.Request.Context(), uid)
	g, p, err := h.PaymentSvc.ProcessGigPayment(ctx, gig.CreateInput{
		Title:          req.Title,
		Description:    req.Description,
		Hours:          req.Hours,
		SkillsRequired: req.SkillsRequired,
		Duration:       req.Duration,
	}, uid)
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, gin.H{"gig": g, "payment": p})
}

func (h *Handler) PaymentHistory(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	ps, err := h.PaymentSvc.History(c.Request.Context(), uid)
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, gin.H{"payments": ps})
}

type paymentStatusReq struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) UpdatePaymentStatus(c *gin.Context) {
	var req paymentStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	p, err := h.PaymentSvc.UpdateStatus(c.Request.Context(), c.Param("id"), payment.Status(req.Status))
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, p)
}

type priceReq struct {
	Hours int `json:"hours"`
}

func (h *Handler) CalculatePrice(c *gin.Context) {
	var req priceReq
	_ = c.ShouldBindJSON(&req) // empty body means default hours

	q, err := h.PricingSvc.Calculate(c.Request.Context(), req.Hours)
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, q)
}
