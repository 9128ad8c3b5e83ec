package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/nightcaplab/cocktail-courier/internal/hub"
	kafkax "github.com/nightcaplab/cocktail-courier/internal/kafka"
	"github.com/nightcaplab/cocktail-courier/internal/metrics"
	"github.com/nightcaplab/cocktail-courier/internal/orders"
	"github.com/nightcaplab/cocktail-courier/internal/redisx"
)

// OrdersHandler translates HTTP requests into Store/Lifecycle calls. All
// status writes route through Lifecycle; the store is consulted directly
// only for reads. Producer and Redis may be nil (tests, minimal deploys).
type OrdersHandler struct {
	Store     orders.Store
	Lifecycle *orders.Lifecycle
	Hub       *hub.Hub
	Producer  orders.EventPublisher // order.created
	Redis     *redis.Client
	Service   string
	Log       zerolog.Logger
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/api/orders", h.createOrder)
	r.Get("/api/orders/{id}", h.getOrder)
	r.Get("/api/orders/{id}/eta", h.getETA)
	r.Get("/api/user/{userId}/orders", h.listUserOrders)
	r.Patch("/api/orders/{id}/status", h.updateStatus)
	r.Patch("/api/partner/orders/{id}/status", h.forceStatus)
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWS)
	}
}

type createOrderReq struct {
	UserID          string             `json:"userId"`
	Items           []orders.OrderItem `json:"items"`
	Subtotal        float64            `json:"subtotal"`
	DeliveryFee     float64            `json:"deliveryFee"`
	Total           float64            `json:"total"`
	Status          string             `json:"status"`
	DeliveryAddress string             `json:"deliveryAddress"`
	DeliveryTime    time.Time          `json:"deliveryTime"`
}

// validate returns the offending field names. Totals are checked to the
// cent; the store never recomputes them.
func (req *createOrderReq) validate() []string {
	var bad []string
	if req.UserID == "" {
		bad = append(bad, "userId")
	}
	if len(req.Items) == 0 {
		bad = append(bad, "items")
	}
	for i, it := range req.Items {
		if it.Quantity < 1 || it.Name == "" || it.Price < 0 {
			bad = append(bad, fmt.Sprintf("items[%d]", i))
		}
	}
	if req.Subtotal <= 0 {
		bad = append(bad, "subtotal")
	}
	if req.DeliveryFee < 0 {
		bad = append(bad, "deliveryFee")
	}
	if math.Abs(req.Total-(req.Subtotal+req.DeliveryFee)) > 0.005 {
		bad = append(bad, "total")
	}
	if req.Status != "" && req.Status != string(orders.StatusPending) {
		bad = append(bad, "status")
	}
	if req.DeliveryAddress == "" {
		bad = append(bad, "deliveryAddress")
	}
	if req.DeliveryTime.IsZero() {
		bad = append(bad, "deliveryTime")
	}
	return bad
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDomainErr(w http.ResponseWriter, err error) {
	var nf *orders.NotFoundError
	var it *orders.InvalidTransitionError
	var ve *orders.ValidationError
	switch {
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": nf.Error()})
	case errors.As(err, &it):
		writeJSON(w, http.StatusConflict, map[string]string{"error": it.Error()})
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "fields": ve.Fields})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if bad := req.validate(); len(bad) > 0 {
		writeDomainErr(w, &orders.ValidationError{Fields: bad})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Store.CreateOrder(ctx, orders.NewOrderInput{
		UserID:          req.UserID,
		Items:           req.Items,
		Subtotal:        req.Subtotal,
		DeliveryFee:     req.DeliveryFee,
		Total:           req.Total,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryTime:    req.DeliveryTime,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	metrics.OrdersCreated.Inc()

	// no notification here: nothing can be subscribed to a brand-new order
	h.publishCreated(r, o)
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) publishCreated(r *http.Request, o orders.Order) {
	if h.Producer == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: strconv.FormatInt(o.ID, 10),
		Payload: kafkax.MustMarshal(orders.OrderCreatedPayload{
			OrderID: o.ID, UserID: o.UserID, Total: o.Total, Items: len(o.Items),
		}),
	}
	h.Producer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// cache first, store as truth
	key := fmt.Sprintf(redisx.KeyOrder, id)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	o, err := h.Store.GetOrder(ctx, id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, key, kafkax.MustMarshal(o), redisx.TTLOrderCache).Err()
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) getETA(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Store.GetOrder(ctx, id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"orderId": o.ID,
		"eta":     orders.EstimateDelivery(o, time.Now()),
	})
}

func (h *OrdersHandler) listUserOrders(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Store.GetOrdersByUser(ctx, userID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if list == nil {
		list = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, list)
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	status, ok := h.statusFromBody(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Lifecycle.UpdateStatus(ctx, id, status, r.Header.Get("X-Request-Id"))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	h.invalidateCache(ctx, id)
	writeJSON(w, http.StatusOK, o)
}

// forceStatus is the partner dashboard override. It is deliberately a
// separate route: it skips the transition table, requires an actor
// identity, and every use lands in the audit trail.
func (h *OrdersHandler) forceStatus(w http.ResponseWriter, r *http.Request) {
	actor := r.Header.Get("X-Partner-Actor")
	if actor == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing X-Partner-Actor header"})
		return
	}
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	status, ok := h.statusFromBody(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Lifecycle.ForceStatus(ctx, id, status, actor, r.Header.Get("X-Request-Id"))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	h.invalidateCache(ctx, id)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) orderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return 0, false
	}
	return id, true
}

func (h *OrdersHandler) statusFromBody(w http.ResponseWriter, r *http.Request) (orders.Status, bool) {
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		writeDomainErr(w, &orders.ValidationError{Fields: []string{"status"}})
		return "", false
	}
	status, err := orders.ParseStatus(req.Status)
	if err != nil {
		writeDomainErr(w, &orders.ValidationError{Fields: []string{"status"}})
		return "", false
	}
	return status, true
}

func (h *OrdersHandler) invalidateCache(ctx context.Context, id int64) {
	if h.Redis == nil {
		return
	}
	if err := h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrder, id)).Err(); err != nil {
		h.Log.Warn().Err(err).Int64("order_id", id).Msg("cache invalidation failed")
	}
}
