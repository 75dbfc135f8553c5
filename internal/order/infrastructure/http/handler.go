package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/stackline/order-service/internal/order/application"
	"github.com/stackline/order-service/internal/order/domain"
	"github.com/stackline/order-service/pkg/tracing"
)

const (
	keyOrderCache = "order:%s"
	orderCacheTTL = 5 * time.Minute
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	redis   *redis.Client
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service, rdb *redis.Client) *Handler {
	return &Handler{
		log:     log,
		service: service,
		redis:   rdb,
		tracer:  otel.Tracer("order-http"),
	}
}

type createOrderReq struct {
	CustomerID string               `json:"customer_id"`
	Items      []domain.ItemRequest `json:"items"`
}

type errorResp struct {
	Error string `json:"error"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/products", h.listProducts)
	return r
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "invalid body"})
		return
	}
	if req.CustomerID == "" || len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "customer_id and items are required"})
		return
	}
	for _, item := range req.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResp{Error: "every item needs a product_id and a positive quantity"})
			return
		}
	}

	traceparent := r.Header.Get(tracing.TraceparentHeader)
	if traceparent == "" {
		traceparent = tracing.Traceparent(ctx)
	}

	order, err := h.service.PlaceOrder(ctx, req.CustomerID, req.Items, traceparent)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.cacheOrder(r, *order)
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrder")
	defer span.End()

	id := chi.URLParam(r, "id")
	if cached, err := h.redis.Get(ctx, fmt.Sprintf(keyOrderCache, id)).Result(); err == nil && cached != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(cached))
		return
	}

	order, err := h.service.GetOrder(ctx, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.cacheOrder(r, order)
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListProducts")
	defer span.End()

	products, err := h.service.ListProducts(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) cacheOrder(r *http.Request, order domain.Order) {
	b, err := json.Marshal(order)
	if err != nil {
		return
	}
	if err := h.redis.Set(r.Context(), fmt.Sprintf(keyOrderCache, order.ID), b, orderCacheTTL).Err(); err != nil {
		h.log.Warn("order cache write failed", "order_id", order.ID, "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound     *domain.ProductsNotFoundError
		insufficient *domain.InsufficientStockError
	)
	switch {
	case errors.Is(err, domain.ErrCustomerNotFound),
		errors.Is(err, domain.ErrNoProductsFound),
		errors.Is(err, domain.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, errorResp{Error: err.Error()})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResp{Error: notFound.Error()})
	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusConflict, errorResp{Error: insufficient.Error()})
	default:
		h.log.Error("request failed", "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
