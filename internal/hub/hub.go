// Package hub maintains live tracking subscriptions and pushes order-state
// changes to connected clients. Subscriptions are ephemeral: they live and
// die with their WebSocket connection, nothing is buffered for absent
// clients, and a reconnecting client re-registers to get current state.
package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/nightcaplab/cocktail-courier/internal/metrics"
	"github.com/nightcaplab/cocktail-courier/internal/orders"
)

type Hub struct {
	reg      *registry
	store    orders.Store
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

func New(store orders.Store, log zerolog.Logger) *Hub {
	return &Hub{
		reg:   newRegistry(),
		store: store,
		log:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the tracking page is served from arbitrary storefront hosts
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// OrderUpdated implements orders.Notifier. The frame is marshaled once and
// fanned out to every subscriber currently bound to this order; a drop on
// one connection does not affect the rest.
func (h *Hub) OrderUpdated(o orders.Order) {
	frame, err := json.Marshal(orderUpdateMsg{Type: msgTypeOrderUpdate, Order: o})
	if err != nil {
		h.log.Error().Err(err).Int64("order_id", o.ID).Msg("marshal order update")
		return
	}
	subs := h.reg.snapshot(subKey{userID: o.UserID, orderID: o.ID})
	for _, s := range subs {
		if !s.enqueue(frame) {
			h.log.Warn().Int64("order_id", o.ID).Msg("dropped update for slow or closed connection")
		}
	}
}

// ServeWS upgrades the request and runs the connection's pumps. Updates are
// delivered only after the client sends a register frame.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	metrics.WSConnections.Inc()
	c := newConn(ws, h)
	go c.writePump()
	c.readPump()
}

func (h *Hub) lookupContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 3*time.Second)
}
