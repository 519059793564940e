package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fjod/go_cart/ecommerce-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type CartService interface {
	GetCart(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error)
	AddItem(ctx context.Context, line *domain.Cart) (uuid.UUID, error)
}

type CartHandler struct {
	service CartService
}

func NewCartHandler(service CartService) *CartHandler {
	return &CartHandler{service: service}
}

type AddItemRequestDTO struct {
	CartID    string `json:"cartId"`
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// GetCart handles GET /api/cart/{cartid}. The all-zero id means "no cart"
// and yields 204.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cartID, err := uuid.Parse(chi.URLParam(r, "cartid"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_cart_id", "cartid must be a UUID")
		return
	}
	if cartID == uuid.Nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	items, err := h.service.GetCart(r.Context(), cartID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, items)
}

// AddItem handles POST /api/cart and responds with the cart id the line was
// added to.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	line := &domain.Cart{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	}
	if req.CartID != "" {
		cartID, err := uuid.Parse(req.CartID)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid_cart_id", "cartId must be a UUID")
			return
		}
		line.CartID = cartID
	}

	cartID, err := h.service.AddItem(r.Context(), line)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, cartID)
}
