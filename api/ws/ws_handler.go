package ws

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"

	"github.com/gorilla/websocket"
)

type Handler struct {
	Hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{Hub: hub}
}

// NewWsUpgrader builds an upgrader that accepts any origin when
// allowedOrigin is empty.
func (h *Handler) NewWsUpgrader(allowedOrigin string) websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
		Subprotocols: []string{"cipherpost-v1"},
	}
}

// ServeWS handles websocket requests from the peer.
func (h *Handler) ServeWS(wsUpgrader websocket.Upgrader, w http.ResponseWriter, r *http.Request, shutdownCtx context.Context) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade ws connection: %v", err)
		return
	}

	remoteAddr := r.RemoteAddr
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		remoteAddr = host
	}

	client := NewClient(h.Hub, conn, remoteAddr, h.HandleWsMessage)
	h.Hub.OpenCh <- client

	// Start pumps
	go client.ReadPump()
	go client.WritePump(shutdownCtx)
}

// Websocket message structs
type message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type inboxMessage struct {
	Username string `json:"username"`
}

type responseMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func (h *Handler) HandleWsMessage(client *Client, messageType int, messageBytes []byte) {
	var msg message
	if err := json.Unmarshal(messageBytes, &msg); err != nil {
		log.Printf("Invalid JSON: %v", err)
		return
	}

	var resp responseMessage

	switch msg.Type {
	case "subscribe":
		var inboxMsg inboxMessage
		if err := json.Unmarshal(msg.Data, &inboxMsg); err != nil {
			log.Printf("Invalid subscribe data: %v", err)
			return
		}
		resp = h.handleSubscribe(client, inboxMsg)

	case "unsubscribe":
		var inboxMsg inboxMessage
		if err := json.Unmarshal(msg.Data, &inboxMsg); err != nil {
			log.Printf("Invalid unsubscribe data: %v", err)
			return
		}
		resp = h.handleUnsubscribe(client, inboxMsg)

	default:
		log.Printf("Unknown message type: %v", msg.Type)
	}

	if resp.Type != "" {
		respBytes, err := json.Marshal(resp)
		if err != nil {
			log.Printf("Error marshaling response JSON: %v", err)
			return
		}
		client.Send <- respBytes
	}
}

func (h *Handler) handleSubscribe(client *Client, inboxMsg inboxMessage) responseMessage {
	resp := responseMessage{
		Type: "subscribe_response",
	}

	if inboxMsg.Username == "" {
		resp.Data = map[string]any{"success": false, "username": inboxMsg.Username}
		return resp
	}

	h.Hub.SubscribeCh <- subscription{client: client, username: inboxMsg.Username}
	resp.Data = map[string]any{"success": true, "username": inboxMsg.Username}
	return resp
}

func (h *Handler) handleUnsubscribe(client *Client, inboxMsg inboxMessage) responseMessage {
	resp := responseMessage{
		Type: "unsubscribe_response",
	}

	if inboxMsg.Username == "" {
		resp.Data = map[string]any{"success": false, "username": inboxMsg.Username}
		return resp
	}

	h.Hub.UnsubscribeCh <- subscription{client: client, username: inboxMsg.Username}
	resp.Data = map[string]any{"success": true, "username": inboxMsg.Username}
	return resp
}
