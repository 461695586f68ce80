package httpx

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-artisan-market/internal/market"
	"github.com/google/uuid"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Reader.ListProducts(ctx)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *Handler) geosearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	latStr, lngStr := q.Get("lat"), q.Get("lng")
	if latStr == "" || lngStr == "" {
		writeErr(w, http.StatusBadRequest, "missing latitude/longitude")
		return
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid latitude")
		return
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid longitude")
		return
	}
	radius := 10.0
	if s := q.Get("radius"); s != "" {
		if radius, err = strconv.ParseFloat(s, 64); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid radius")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Reader.SearchProducts(ctx, lat, lng, radius, q.Get("category"))
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if ps == nil {
		ps = []market.Product{}
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	shopID := r.URL.Query().Get("shop")
	if _, err := uuid.Parse(shopID); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid shop id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	alerts, err := h.Reader.ListAlerts(ctx, shopID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if alerts == nil {
		alerts = []market.InventoryAlert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

// health: probe liveness dengan query trivial ke storage.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.DB.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "db": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
