package handler

import (
	"net/http"

	"github.com/campusmarket/backend/internal/domain"
)

// TiersHandler serves the public tier catalog.
type TiersHandler struct{}

// NewTiersHandler creates a new TiersHandler.
func NewTiersHandler() *TiersHandler {
	return &TiersHandler{}
}

// List handles GET /api/tiers.
func (h *TiersHandler) List(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, domain.AvailableTiers())
}
