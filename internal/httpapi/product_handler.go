package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/ready2shop/storefront/internal/catalog"
)

type ProductHandler struct {
	catalog catalog.RepoInterface
	timeout time.Duration
}

func NewProductHandler(repo catalog.RepoInterface, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: repo,
		timeout: timeout,
	}
}

// List serves paged product queries: by keyword when one is given, by
// category otherwise (category defaults to 1, matching the storefront's
// landing page).
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	page := intQuery(r, "page", 1)
	size := intQuery(r, "size", 0)

	var (
		result *catalog.Page
		err    error
	)
	if keyword := r.URL.Query().Get("keyword"); keyword != "" {
		result, err = h.catalog.Search(ctx, keyword, page, size)
	} else {
		categoryID := int64(intQuery(r, "category", 1))
		result, err = h.catalog.ByCategory(ctx, categoryID, page, size)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not load products")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func intQuery(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
