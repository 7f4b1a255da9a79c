package handler

import (
	"net/http"

	"github.com/campusmarket/backend/internal/contextkeys"
	"github.com/campusmarket/backend/internal/domain"
	"github.com/campusmarket/backend/internal/service"
	"github.com/go-chi/chi/v5"
)

// ListingHandler handles listing browse, publish, and mutation endpoints.
type ListingHandler struct {
	svc *service.DashboardService
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(svc *service.DashboardService) *ListingHandler {
	return &ListingHandler{svc: svc}
}

func tierParam(r *http.Request) (domain.Tier, error) {
	tier, err := domain.ParseTier(chi.URLParam(r, "tier"))
	if err != nil {
		return "", domain.ErrBadRequest("unknown tier")
	}
	return tier, nil
}

// Browse handles GET /api/listings/{tier}, optionally filtered by sellerId.
func (h *ListingHandler) Browse(w http.ResponseWriter, r *http.Request) {
	tier, err := tierParam(r)
	if err != nil {
		Error(w, err)
		return
	}

	views, err := h.svc.Browse(r.Context(), tier, r.URL.Query().Get("sellerId"))
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, views)
}

// Publish handles POST /api/listings/{tier}.
func (h *ListingHandler) Publish(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := r.Context().Value(contextkeys.SellerID).(string)
	if !ok || sellerID == "" {
		JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	tier, err := tierParam(r)
	if err != nil {
		Error(w, err)
		return
	}

	var req domain.PublishRequest
	if err := DecodeValid(r, &req); err != nil {
		Error(w, err)
		return
	}

	view, err := h.svc.Publish(r.Context(), sellerID, tier, &req)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusCreated, view)
}

// Delete handles DELETE /api/listings/{tier}/{id}.
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := r.Context().Value(contextkeys.SellerID).(string)
	if !ok || sellerID == "" {
		JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	tier, err := tierParam(r)
	if err != nil {
		Error(w, err)
		return
	}

	if err := h.svc.Delete(r.Context(), tier, chi.URLParam(r, "id"), sellerID); err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// ToggleSold handles PATCH /api/listings/{tier}/{id}. Responds 409 for
// premium listings, which carry no sold state.
func (h *ListingHandler) ToggleSold(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := r.Context().Value(contextkeys.SellerID).(string)
	if !ok || sellerID == "" {
		JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	tier, err := tierParam(r)
	if err != nil {
		Error(w, err)
		return
	}

	var req domain.ToggleSoldRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	view, err := h.svc.ToggleSold(r.Context(), tier, chi.URLParam(r, "id"), sellerID, req.SoldOut)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, view)
}

// Dashboard handles GET /api/dashboard: the seller's own listings across all
// three collections, annotated.
func (h *ListingHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := r.Context().Value(contextkeys.SellerID).(string)
	if !ok || sellerID == "" {
		JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	resp, err := h.svc.ListForSeller(r.Context(), sellerID)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, resp)
}
