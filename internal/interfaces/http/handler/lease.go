package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	rentalapp "github.com/rentdesk/backend/internal/application/rental"
	"github.com/rentdesk/backend/internal/domain/rental"
	"github.com/rentdesk/backend/internal/interfaces/http/dto"
)

// LeaseHandler handles lease lifecycle endpoints
type LeaseHandler struct {
	BaseHandler
	service *rentalapp.LeaseService
}

// NewLeaseHandler creates a new LeaseHandler
func NewLeaseHandler(service *rentalapp.LeaseService) *LeaseHandler {
	return &LeaseHandler{service: service}
}

// Create opens a new lease in the caller's scope
func (h *LeaseHandler) Create(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req rentalapp.CreateLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lease, err := h.service.Create(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, lease)
}

// List returns every lease in the caller's scope
func (h *LeaseHandler) List(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	leases, err := h.service.List(c.Request.Context(), scope)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, leases, len(leases))
}

// GetByID returns one lease
func (h *LeaseHandler) GetByID(c *gin.Context) {
	h.withLease(c, h.service.GetByID)
}

// Activate moves a pending lease to active
func (h *LeaseHandler) Activate(c *gin.Context) {
	h.withLease(c, h.service.Activate)
}

// Terminate ends a lease
func (h *LeaseHandler) Terminate(c *gin.Context) {
	h.withLease(c, h.service.Terminate)
}

// UpdateTerms changes the monthly amount and billing day of a live lease
func (h *LeaseHandler) UpdateTerms(c *gin.Context) {
	h.withLeaseTerms(c, h.service.UpdateTerms)
}

// AdminCorrect applies an administrative correction, allowed even on a
// terminated lease.
func (h *LeaseHandler) AdminCorrect(c *gin.Context) {
	h.withLeaseTerms(c, h.service.AdminCorrect)
}

type leaseOp func(ctx context.Context, scope rental.Scope, id uuid.UUID) (*rentalapp.LeaseResponse, error)

func (h *LeaseHandler) withLease(c *gin.Context, op leaseOp) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "invalid lease id")
		return
	}
	id := uuid.MustParse(idReq.ID)

	lease, err := op(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lease)
}

type leaseTermsOp func(ctx context.Context, scope rental.Scope, id uuid.UUID, req rentalapp.UpdateLeaseTermsRequest) (*rentalapp.LeaseResponse, error)

func (h *LeaseHandler) withLeaseTerms(c *gin.Context, op leaseTermsOp) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "invalid lease id")
		return
	}
	id := uuid.MustParse(idReq.ID)

	var req rentalapp.UpdateLeaseTermsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lease, err := op(c.Request.Context(), scope, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lease)
}
