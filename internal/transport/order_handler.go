package transport

import (
	"net/http"
	"strconv"
	"strings"

	"orderdesk-be/internal/apperror"
	"orderdesk-be/internal/order"
	"orderdesk-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type OrderHandler struct {
	svc order.Service
}

func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

func (h *OrderHandler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{orderID}", h.Get)
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	businessID, err := parseUUID("businessID", chi.URLParam(r, "businessID"))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var req order.Request
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	actorID, _ := utils.GetActorIDFromContext(r.Context())

	o, err := h.svc.CreateOrder(r.Context(), businessID, actorID, req)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	w.Header().Set("Location", r.URL.Path+"/"+o.ID.String())
	WriteData(w, http.StatusCreated, toSummary(o))
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	businessID, err := parseUUID("businessID", chi.URLParam(r, "businessID"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	orderID, err := parseUUID("orderID", chi.URLParam(r, "orderID"))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	o, err := h.svc.GetOrder(r.Context(), businessID, orderID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, toDetail(o))
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	businessID, err := parseUUID("businessID", chi.URLParam(r, "businessID"))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	q, err := listQuery(businessID, r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	orders, err := h.svc.ListOrders(r.Context(), q)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	out := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		out = append(out, toSummary(o))
	}
	WriteData(w, http.StatusOK, out)
}

// listQuery turns ?status=&q=&limit=&page= into a typed order query. A
// search term takes precedence over the status filter.
func listQuery(businessID uuid.UUID, r *http.Request) (order.Query, error) {
	params := r.URL.Query()

	limit, page, err := pageParams(r, order.DefaultLimit, order.MaxLimit)
	if err != nil {
		return nil, err
	}
	offset := order.Offset(page, limit)

	if term := strings.TrimSpace(params.Get("q")); term != "" {
		return order.BySearchTerm{BusinessID: businessID, Term: term, Limit: limit, Offset: offset}, nil
	}

	var status order.Status
	if raw := params.Get("status"); raw != "" {
		st, ok := order.ParseStatus(strings.ToUpper(raw))
		if !ok {
			return nil, apperror.ValidationField("status", "unknown order status "+raw)
		}
		status = st
	}
	return order.ByStoreAndStatus{BusinessID: businessID, Status: status, Limit: limit, Offset: offset}, nil
}

// pageParams reads ?limit= and ?page=, clamping limit to maxLimit. page
// starts at 1.
func pageParams(r *http.Request, defaultLimit, maxLimit int) (limit, page int, err error) {
	params := r.URL.Query()

	limit = defaultLimit
	if raw := params.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, apperror.ValidationField("limit", "must be a positive integer")
		}
		if limit > maxLimit {
			limit = maxLimit
		}
	}
	page = 1
	if raw := params.Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, apperror.ValidationField("page", "must be a positive integer")
		}
	}
	return limit, page, nil
}
