package handler

import (
	"net/http"

	"github.com/campusmarket/backend/internal/contextkeys"
	"github.com/campusmarket/backend/internal/domain"
	"github.com/campusmarket/backend/internal/service"
)

// EntitlementHandler handles tier upgrade and status endpoints.
type EntitlementHandler struct {
	svc *service.EntitlementService
}

// NewEntitlementHandler creates a new EntitlementHandler.
func NewEntitlementHandler(svc *service.EntitlementService) *EntitlementHandler {
	return &EntitlementHandler{svc: svc}
}

// Initiate handles POST /api/entitlement/initiate.
func (h *EntitlementHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := r.Context().Value(contextkeys.SellerID).(string)
	if !ok || sellerID == "" {
		JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req domain.InitiateRequest
	if err := DecodeValid(r, &req); err != nil {
		Error(w, err)
		return
	}

	resp, err := h.svc.Initiate(r.Context(), sellerID, domain.Tier(req.Tier))
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, resp)
}

// Activate handles POST /api/entitlement/activate. Returns 402 when the
// gateway would not confirm the payment.
func (h *EntitlementHandler) Activate(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := r.Context().Value(contextkeys.SellerID).(string)
	if !ok || sellerID == "" {
		JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req domain.ActivateRequest
	if err := DecodeValid(r, &req); err != nil {
		Error(w, err)
		return
	}

	sub, err := h.svc.Activate(r.Context(), sellerID, domain.Tier(req.Tier), req.TransactionRef)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"tier":      sub.Tier,
		"expiresAt": sub.ExpiresAt,
	})
}

// Status handles GET /api/entitlement/status.
func (h *EntitlementHandler) Status(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := r.Context().Value(contextkeys.SellerID).(string)
	if !ok || sellerID == "" {
		JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	status, err := h.svc.CurrentTier(r.Context(), sellerID)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, status)
}

// Sweep handles POST /api/entitlement/sweep (admin only; the ticker runs the
// same job, this just triggers it on demand).
func (h *EntitlementHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ExpireDue(r.Context())
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]int64{"expired": n})
}
