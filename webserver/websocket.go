package webserver

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

type wsClient struct {
	ws           *websocket.Conn
	send         chan []byte
	removeClient chan<- *wsClient
	done         <-chan struct{}
	onMsg        func([]byte)
}

func (web *WebServer) webSocketHdlr(w http.ResponseWriter, req *http.Request) {

	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Printf("unable to open ws for %v\n", req.RemoteAddr)
		return
	}

	c := &wsClient{
		ws:           conn,
		send:         make(chan []byte, 8),
		removeClient: web.removeWsClient,
		done:         web.done,
		onMsg:        web.handleClientMsg,
	}

	go c.write()
	go c.read()

	select {
	case web.addWsClient <- c:
	case <-web.done:
		close(c.send)
	}
}

// handleClientMsg applies control messages received through the
// websocket. The same message types as on the REST API are accepted.
func (web *WebServer) handleClientMsg(data []byte) {
	msg := AudioControlVolume{}
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Println("webserver: unable to unmarshal client message", string(data))
		return
	}

	if msg.Volume != nil && *msg.Volume >= 0 && *msg.Volume <= 100 {
		web.volume.Set(float32(*msg.Volume) / 100)
		web.updateWsClients()
	}
}

func (c *wsClient) write() {
	defer c.ws.Close()

	for msg := range c.send {
		if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.ws.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *wsClient) read() {
	defer func() {
		select {
		case c.removeClient <- c:
		case <-c.done:
		}
	}()

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		c.onMsg(data)
	}
}
