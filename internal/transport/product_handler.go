package transport

import (
	"net/http"
	"strings"

	"orderdesk-be/internal/apperror"
	"orderdesk-be/internal/product"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ProductHandler struct {
	svc product.Service
}

func NewProductHandler(svc product.Service) *ProductHandler {
	return &ProductHandler{svc: svc}
}

func (h *ProductHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	businessID, err := parseUUID("businessID", chi.URLParam(r, "businessID"))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	q, err := productQuery(businessID, r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	products, err := h.svc.ListProducts(r.Context(), q)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	out := make([]ProductView, 0, len(products))
	for _, p := range products {
		out = append(out, toProductView(p))
	}
	WriteData(w, http.StatusOK, out)
}

// productQuery maps ?q=&status=&limit=&page= onto a catalog query. Like
// orders, a search term wins over the status filter.
func productQuery(businessID uuid.UUID, r *http.Request) (product.Query, error) {
	params := r.URL.Query()

	limit, page, err := pageParams(r, product.DefaultLimit, product.MaxLimit)
	if err != nil {
		return nil, err
	}
	offset := (page - 1) * limit

	if term := strings.TrimSpace(params.Get("q")); term != "" {
		return product.BySearchTerm{BusinessID: businessID, Term: term, Limit: limit, Offset: offset}, nil
	}

	var status product.Status
	if raw := params.Get("status"); raw != "" {
		st, ok := product.ParseStatus(raw)
		if !ok {
			return nil, apperror.ValidationField("status", "unknown product status "+raw)
		}
		status = st
	}
	return product.ByStoreAndStatus{BusinessID: businessID, Status: status, Limit: limit, Offset: offset}, nil
}
