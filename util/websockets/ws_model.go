package websockets

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Message types pushed to clients
const (
	MsgTypeSubscribe    = "subscribe"
	MsgTypeReportUpdate = "report_update"
	MsgTypeChatUpdate   = "chat_update"
)

// Client represents a connected WebSocket user
type Client struct {
	Conn   *websocket.Conn
	UserID string
}

type WebSocketManager struct {
	clients    map[*websocket.Conn]*Client
	broadcast  chan []byte
	register   chan *Client
	unregister chan *websocket.Conn
	mu         sync.Mutex
}

// Message struct for incoming WebSocket messages
type Message struct {
	Type   string `json:"type"`
	UserID string `json:"user_id,omitempty"`
}

// Update is the envelope pushed to every connected client when a
// materialized view changes.
type Update struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}
