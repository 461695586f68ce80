package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ariefcatur/go-artisan-market/internal/market"
	"github.com/ariefcatur/go-artisan-market/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Engine *market.Engine
	Reader market.Reader
	DB     Pinger
	Redis  *redis.Client // boleh nil (test); cache di-skip
	Log    *zap.SugaredLogger
}

type PlaceOrderReq struct {
	CustomerID string             `json:"customer_id"`
	ShopID     string             `json:"shop_id"`
	Items      []market.ItemInput `json:"items"`
}

func (h *Handler) Register(r *chi.Mux) {
	r.Post("/orders", h.placeOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/products", h.listProducts)
	r.Get("/products/geosearch", h.geosearch)
	r.Get("/inventory-alerts", h.listAlerts)
	r.Get("/healthz", h.health)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.CustomerID == "" || req.ShopID == "" {
		writeErr(w, http.StatusBadRequest, "missing fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := h.Engine.PlaceOrder(ctx, req.CustomerID, req.ShopID, req.Items)
	if err != nil {
		writeErr(w, statusFor(err), err.Error())
		return
	}

	h.cacheOrder(ctx, order)
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeErr(w, http.StatusBadRequest, "missing id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// 1) coba cache
	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrderCache, orderID)
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	// 2) fallback DB
	order, err := h.Reader.GetOrder(ctx, orderID)
	if err != nil {
		writeErr(w, statusFor(err), err.Error())
		return
	}
	h.cacheOrder(ctx, order)
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) cacheOrder(ctx context.Context, o *market.Order) {
	if h.Redis == nil {
		return
	}
	b, err := json.Marshal(o)
	if err != nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderCache, o.ID)
	if err := h.Redis.Set(ctx, key, b, redisx.TTLOrderCache).Err(); err != nil {
		h.Log.Debugw("order cache set failed", "order_id", o.ID, "error", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, market.ErrLockTimeout):
		return http.StatusServiceUnavailable
	case errors.Is(err, market.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, market.ErrEmptyOrder):
		return http.StatusBadRequest
	}
	var notFound *market.ProductNotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound
	}
	var badQty *market.InvalidQuantityError
	var short *market.InsufficientInventoryError
	var wrongShop *market.WrongShopError
	if errors.As(err, &badQty) || errors.As(err, &short) || errors.As(err, &wrongShop) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
