package relay

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard and the test pages may be served from other ports
	// (satellite test servers), so cross-origin upgrades are expected.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades the request and runs the connection's read loop until the
// peer goes away. Malformed frames are dropped; they never reach a group.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("relay: upgrade: %v", err)
		return
	}
	client := h.Register(ws)
	defer func() {
		h.Disconnect(client)
		ws.Close()
	}()

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("relay: read from %s: %v", client.ID, err)
			}
			return
		}
		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			log.Printf("relay: dropping malformed frame from %s: %v", client.ID, err)
			continue
		}
		if ev.Type == "" {
			log.Printf("relay: dropping event without a type from %s", client.ID)
			continue
		}
		h.HandleEvent(client, ev)
	}
}
