package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rentdesk/backend/internal/application/financial"
	"github.com/rentdesk/backend/internal/domain/rental"
	"github.com/rentdesk/backend/internal/interfaces/http/dto"
)

// FinancialStatsHandler serves the cached KPI read path
type FinancialStatsHandler struct {
	BaseHandler
	stats      *financial.StatsService
	dispatcher *financial.InvalidationDispatcher
}

// NewFinancialStatsHandler creates a new FinancialStatsHandler
func NewFinancialStatsHandler(stats *financial.StatsService, dispatcher *financial.InvalidationDispatcher) *FinancialStatsHandler {
	return &FinancialStatsHandler{stats: stats, dispatcher: dispatcher}
}

// Monthly returns the scope's KPI snapshot for one billing period
func (h *FinancialStatsHandler) Monthly(c *gin.Context) {
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

	snapshot, err := h.stats.MonthlyStats(c.Request.Context(), scope, period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, snapshot)
}

// Yearly returns the scope's per-month breakdown and totals for one year
func (h *FinancialStatsHandler) Yearly(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var q dto.YearQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	stats, err := h.stats.YearlyStats(c.Request.Context(), scope, q.Year)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Invalidate drops the scope's cached statistics so the next read
// recomputes from the source of record.
func (h *FinancialStatsHandler) Invalidate(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.dispatcher.OnLeaseChanged(c.Request.Context(), scope)
	h.NoContent(c)
}
