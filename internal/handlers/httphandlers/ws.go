package httphandlers

import (
	"net/http"
	"time"

	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale/crowdsale"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	eventsBufferSize = 256
	wsWriteTimeout   = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Events streams sale events to a websocket client. Events are dropped for a client
// that cannot keep up, the sale is never blocked by a slow reader
func (h *HTTPHandler) Events(ctx *gin.Context) {
	events := make(chan crowdsale.Event, eventsBufferSize)
	sub := h.sale.SubscribeEvents(events)
	defer sub.Unsubscribe()

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		// upgrader has already replied with an error status
		h.log.Debugf("websocket upgrade failed: %s", err)
		return
	}
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	h.log.Debugf("events client connected %s", remote)
	defer h.log.Debugf("events client disconnected %s", remote)

	// the client is not expected to send anything, reading detects disconnect
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	out := make(chan *EventResponse, eventsBufferSize)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range out {
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debugf("events client %s write error: %s", remote, err)
				_ = conn.Close()
				return
			}
		}
	}()
	defer func() {
		close(out)
		<-writerDone
	}()

	for {
		select {
		case <-closed:
			return
		case <-writerDone:
			return
		case <-ctx.Request.Context().Done():
			return
		case <-sub.Err():
			return
		case e := <-events:
			select {
			case out <- mapEvent(e):
			default:
				h.log.Warnf("events client %s is too slow, dropped %s event %s", remote, e.Kind, e.ID)
			}
		}
	}
}
