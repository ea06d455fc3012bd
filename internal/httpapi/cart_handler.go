package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ready2shop/storefront/internal/cart"
	"github.com/ready2shop/storefront/internal/catalog"
)

type CartHandler struct {
	registry *Registry
	catalog  catalog.RepoInterface
	timeout  time.Duration
}

func NewCartHandler(registry *Registry, repo catalog.RepoInterface, timeout time.Duration) *CartHandler {
	return &CartHandler{
		registry: registry,
		catalog:  repo,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
}

type CartResponseDTO struct {
	Items         []cart.LineItem `json:"items"`
	TotalPrice    float64         `json:"totalPrice"`
	TotalQuantity int             `json:"totalQuantity"`
}

func cartResponse(engine *cart.Engine) CartResponseDTO {
	totals := engine.Totals()
	return CartResponseDTO{
		Items:         engine.Items(),
		TotalPrice:    totals.TotalPrice,
		TotalQuantity: totals.TotalQuantity,
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	session := h.registry.session(getSessionID(r.Context()))
	respondJSON(w, http.StatusOK, cartResponse(session.cart))
}

// AddItem resolves the product and adds a line item, merging quantities
// for a product already in the cart.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	product, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "could not load product")
		return
	}

	session := h.registry.session(getSessionID(r.Context()))
	session.cart.AddItem(cart.LineItem{
		ID:        product.ID,
		Name:      product.Name,
		UnitPrice: product.UnitPrice,
		ImageURL:  product.ImageURL,
	})

	respondJSON(w, http.StatusCreated, cartResponse(session.cart))
}

func (h *CartHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	session := h.registry.session(getSessionID(r.Context()))
	session.cart.DecrementItem(productID)
	respondJSON(w, http.StatusOK, cartResponse(session.cart))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	session := h.registry.session(getSessionID(r.Context()))
	session.cart.RemoveItem(productID)
	respondJSON(w, http.StatusOK, cartResponse(session.cart))
}

func productIDParam(r *http.Request) (int64, error) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		return 0, errors.New("invalid product id")
	}
	return productID, nil
}
