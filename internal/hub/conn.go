package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nightcaplab/cocktail-courier/internal/metrics"
	"github.com/nightcaplab/cocktail-courier/internal/orders"
)

const (
	sendBuffer   = 16
	writeTimeout = 10 * time.Second
)

// conn is one tracking connection. The read pump handles register frames,
// the write pump drains send. A failed or slow connection only ever loses
// its own frames.
type conn struct {
	ws   *websocket.Conn
	hub  *Hub
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newConn(ws *websocket.Conn, h *Hub) *conn {
	return &conn{
		ws:   ws,
		hub:  h,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

func (c *conn) enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *conn) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

// readPump runs on the connection's own goroutine and is the only place
// this connection's binding is created or replaced.
func (c *conn) readPump() {
	defer func() {
		c.hub.reg.unbind(c)
		c.close()
		metrics.WSConnections.Dec()
	}()

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		var msg registerMsg
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != msgTypeRegister {
			c.hub.log.Debug().Err(err).Msg("ignoring unrecognized tracking frame")
			continue
		}
		c.register(msg.UserID, msg.OrderID)
	}
}

// register binds the connection and pushes the current order state when the
// order exists and has moved past pending, so a late subscriber sees where
// the order is now rather than waiting for the next transition. Registering
// for an order that does not exist is accepted silently.
func (c *conn) register(userID string, orderID int64) {
	c.hub.reg.bind(c, subKey{userID: userID, orderID: orderID})

	ctx, cancel := c.hub.lookupContext()
	defer cancel()
	o, err := c.hub.store.GetOrder(ctx, orderID)
	if err != nil || o.UserID != userID || o.Status == orders.StatusPending {
		return
	}
	frame, err := json.Marshal(orderUpdateMsg{Type: msgTypeOrderUpdate, Order: o})
	if err != nil {
		return
	}
	if c.enqueue(frame) {
		c.hub.log.Debug().Int64("order_id", orderID).Str("user_id", userID).
			Msg("sent snapshot to late subscriber")
	}
}

func (c *conn) writePump() {
	for {
		select {
		case <-c.done:
			return
		case frame := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.close()
				return
			}
			metrics.UpdatesPushed.Inc()
		}
	}
}
