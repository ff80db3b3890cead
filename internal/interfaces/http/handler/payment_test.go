package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentdesk/backend/internal/interfaces/http/dto"
)

func TestPaymentHandler_ConfirmExactlyOnce(t *testing.T) {
	f := newAPIFixture(t)
	leaseID := f.createLease(t, 120000, true)

	body := gin.H{
		"leaseId": leaseID.String(),
		"year":    2025,
		"month":   6,
		"amount":  120000,
	}

	w := f.do(t, http.MethodPost, "/payments/confirm", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "paid", data["status"])
	assert.Equal(t, "2025-06", data["period"])

	// A second confirmation of the same period must be rejected
	w = f.do(t, http.MethodPost, "/payments/confirm", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	resp = decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeAlreadyPaid, resp.Error.Code)
}

func TestPaymentHandler_GenerateAndList(t *testing.T) {
	f := newAPIFixture(t)
	f.createLease(t, 100000, true)
	f.createLease(t, 150000, true)
	f.createLease(t, 90000, false) // pending, not generated

	w := f.do(t, http.MethodPost, "/payments/generate", gin.H{"year": 2025, "month": 7})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(2), data["created"])
	assert.Equal(t, "2025-07", data["period"])

	// Second run creates nothing new
	w = f.do(t, http.MethodPost, "/payments/generate", gin.H{"year": 2025, "month": 7})
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeResponse(t, w)
	assert.Equal(t, float64(0), resp.Data.(map[string]interface{})["created"])

	w = f.do(t, http.MethodGet, "/payments?year=2025&month=7", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 2, resp.Meta.Total)
}

func TestPaymentHandler_Confirm_InvalidMonth(t *testing.T) {
	f := newAPIFixture(t)
	leaseID := f.createLease(t, 120000, true)

	w := f.do(t, http.MethodPost, "/payments/confirm", gin.H{
		"leaseId": leaseID.String(),
		"year":    2025,
		"month":   13,
		"amount":  120000,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
