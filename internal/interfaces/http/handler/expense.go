package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	rentalapp "github.com/rentdesk/backend/internal/application/rental"
	"github.com/rentdesk/backend/internal/domain/rental"
	"github.com/rentdesk/backend/internal/interfaces/http/dto"
)

// ExpenseHandler handles expense endpoints
type ExpenseHandler struct {
	BaseHandler
	service *rentalapp.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(service *rentalapp.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{service: service}
}

// Record creates a new expense in the caller's scope
func (h *ExpenseHandler) Record(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req rentalapp.RecordExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	expense, err := h.service.Record(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, expense)
}

// Delete removes an expense
func (h *ExpenseHandler) Delete(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "invalid expense id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), scope, uuid.MustParse(idReq.ID)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// expenseListQuery optionally narrows the listing to one period
type expenseListQuery struct {
	Year  int `form:"year" binding:"omitempty,min=1970,max=9999"`
	Month int `form:"month" binding:"omitempty,min=1,max=12"`
}

// List returns the scope's expenses, optionally filtered to a period
func (h *ExpenseHandler) List(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var q expenseListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var period *rental.Period
	if q.Year != 0 && q.Month != 0 {
		period = &rental.Period{Year: q.Year, Month: time.Month(q.Month)}
	}

	expenses, err := h.service.List(c.Request.Context(), scope, period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, expenses, len(expenses))
}
