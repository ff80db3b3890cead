package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	rentalapp "github.com/rentdesk/backend/internal/application/rental"
	"github.com/rentdesk/backend/internal/domain/rental"
	"github.com/rentdesk/backend/internal/interfaces/http/dto"
)

// PaymentHandler handles rent transaction endpoints
type PaymentHandler struct {
	BaseHandler
	service *rentalapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(service *rentalapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// Confirm marks a lease's transaction for a period as paid
func (h *PaymentHandler) Confirm(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req rentalapp.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tx, err := h.service.ConfirmPayment(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// GeneratePeriodRequest names the billing period to generate
type GeneratePeriodRequest struct {
	Year  int `json:"year" binding:"required,min=1970,max=9999"`
	Month int `json:"month" binding:"required,min=1,max=12"`
}

// GeneratePeriodResponse reports how many transactions a generation
// run created
type GeneratePeriodResponse struct {
	Period  string `json:"period"`
	Created int    `json:"created"`
}

// Generate creates the period's pending transactions for all active leases
func (h *PaymentHandler) Generate(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req GeneratePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	period := rental.Period{Year: req.Year, Month: time.Month(req.Month)}

	created, err := h.service.GeneratePeriod(c.Request.Context(), scope, period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, GeneratePeriodResponse{Period: period.String(), Created: created})
}

// ListPeriod returns the scope's transactions for one period
func (h *PaymentHandler) ListPeriod(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var q dto.PeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	period := rental.Period{Year: q.Year, Month: time.Month(q.Month)}

	transactions, err := h.service.ListPeriod(c.Request.Context(), scope, period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, transactions, len(transactions))
}
