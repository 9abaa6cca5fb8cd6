package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/juajobs/juajobs-backend/internal/dto"
	"github.com/juajobs/juajobs-backend/internal/http/handlers/common"
	"github.com/juajobs/juajobs-backend/internal/mpesa"
	"github.com/juajobs/juajobs-backend/internal/pkg/apperror"
	"github.com/juajobs/juajobs-backend/internal/service"
)

// PaymentHandler serves payment reads, charge initiation and the
// provider callback.
type PaymentHandler struct {
	payments *service.PaymentService
}

func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Get handles GET /api/payments/:id.
func (h *PaymentHandler) Get(c *gin.Context) {
	userID, role, ok := common.Identity(c)
	if !ok {
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	payment, err := h.payments.GetPayment(c.Request.Context(), userID, role, id)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// ListMine handles GET /api/payments/mine. Returns payments where the
// caller is payer or payee.
func (h *PaymentHandler) ListMine(c *gin.Context) {
	userID, _, ok := common.Identity(c)
	if !ok {
		return
	}

	limit, offset := common.GetPagination(c)

	payments, err := h.payments.ListMine(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondList(c, payments, limit, offset)
}

// Initiate handles POST /api/payments/:id/initiate. The STK push runs in
// the background, the payment stays pending until the callback arrives.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	userID, _, ok := common.Identity(c)
	if !ok {
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	payment, err := h.payments.Initiate(c.Request.Context(), userID, id)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, payment)
}

// UpdateStatus handles PATCH /api/payments/:id/status.
func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	userID, role, ok := common.Identity(c)
	if !ok {
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	var req dto.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondValidation(c, err)
		return
	}

	payment, err := h.payments.UpdateStatus(c.Request.Context(), userID, role, id, req.Status, req.FailureReason)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// Callback handles POST /api/payments/callback from the payment provider.
// The route is unauthenticated; the HMAC signature over the raw body is
// the only credential.
func (h *PaymentHandler) Callback(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		common.RespondError(c, apperror.New(apperror.ErrCodeBadRequest, "cannot read callback body"))
		return
	}

	if !h.payments.ValidateCallbackSignature(c.GetHeader("X-Signature"), body) {
		common.RespondError(c, apperror.New(apperror.ErrCodeUnauthorized, "invalid callback signature"))
		return
	}

	var payload mpesa.CallbackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		common.RespondError(c, apperror.New(apperror.ErrCodeBadRequest, "malformed callback body"))
		return
	}
	if payload.ProviderRef == "" || payload.Status == "" {
		common.RespondError(c, apperror.New(apperror.ErrCodeValidation, "provider_ref and status are required"))
		return
	}

	payment, err := h.payments.HandleCallback(c.Request.Context(), payload)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// Refund handles POST /api/admin/payments/:id/refund.
func (h *PaymentHandler) Refund(c *gin.Context) {
	_, role, ok := common.Identity(c)
	if !ok {
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	payment, err := h.payments.Refund(c.Request.Context(), role, id)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}
