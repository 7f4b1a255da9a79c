package handler

import (
	"net/http"

	"github.com/campusmarket/backend/internal/service"
	"github.com/go-chi/chi/v5"
)

// AdminHandler handles admin-only seller management endpoints.
type AdminHandler struct {
	auth *service.AuthService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(auth *service.AuthService) *AdminHandler {
	return &AdminHandler{auth: auth}
}

// ListSellers handles GET /api/admin/sellers.
func (h *AdminHandler) ListSellers(w http.ResponseWriter, r *http.Request) {
	sellers, err := h.auth.ListSellers(r.Context())
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, sellers)
}

// VerifySeller handles POST /api/admin/sellers/{id}/verify.
func (h *AdminHandler) VerifySeller(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Verified bool `json:"verified"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	if err := h.auth.SetVerified(r.Context(), chi.URLParam(r, "id"), req.Verified); err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]bool{"verified": req.Verified})
}
