package dev

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// MessageType represents the type of live-reload message.
type MessageType string

const (
	MessageReload  MessageType = "reload"
	MessageHotSwap MessageType = "hotswap"
	MessageError   MessageType = "error"
	MessageClear   MessageType = "clear"
)

// Message is sent to browsers via WebSocket.
type Message struct {
	Type  MessageType `json:"type"`
	Route string      `json:"route,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Hub manages WebSocket connections for live reload and hot swap.
type Hub struct {
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
}

// NewHub creates a new reload hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWebSocket handles WebSocket upgrade and connection.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	// Keep connection alive until client disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// NotifyReload sends a full page reload message to all clients.
func (h *Hub) NotifyReload() {
	h.broadcast(Message{Type: MessageReload})
}

// NotifyHotSwap tells clients that the component for a route id was
// replaced.
func (h *Hub) NotifyHotSwap(routeID string) {
	h.broadcast(Message{Type: MessageHotSwap, Route: routeID})
}

// NotifyError sends an error overlay message to all clients.
func (h *Hub) NotifyError(errMsg string) {
	h.broadcast(Message{Type: MessageError, Error: errMsg})
}

// ClearError clears the error overlay on all clients.
func (h *Hub) ClearError() {
	h.broadcast(Message{Type: MessageClear})
}

// broadcast sends a message to all connected clients.
func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			h.mu.Lock()
			delete(h.clients, client)
			h.mu.Unlock()
			client.Close()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes all client connections.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}

// ReloadScript is the JavaScript injected into shell pages in development.
// It connects to the reload hub, reloads the page on rebuild or hot swap,
// and shows build errors as an overlay.
const ReloadScript = `
(function() {
    'use strict';

    var reconnectDelay = 1000;
    var maxReconnectDelay = 30000;
    var boot = window.__VIADUCT__ || {};
    var wsPath = boot.wsPath || '/_viaduct/ws';
    var ws = null;

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        ws = new WebSocket(protocol + '//' + location.host + wsPath);

        ws.onopen = function() {
            console.log('[viaduct] live reload connected');
            reconnectDelay = 1000;
            clearErrorOverlay();
        };

        ws.onmessage = function(e) {
            var msg;
            try {
                msg = JSON.parse(e.data);
            } catch (err) {
                return;
            }

            switch (msg.type) {
                case 'reload':
                    console.log('[viaduct] reloading...');
                    location.reload();
                    break;

                case 'hotswap':
                    console.log('[viaduct] component swapped:', msg.route);
                    location.reload();
                    break;

                case 'error':
                    console.error('[viaduct] error:', msg.error);
                    showErrorOverlay(msg.error);
                    break;

                case 'clear':
                    clearErrorOverlay();
                    break;
            }
        };

        ws.onclose = function() {
            setTimeout(function() {
                reconnectDelay = Math.min(reconnectDelay * 2, maxReconnectDelay);
                connect();
            }, reconnectDelay);
        };

        ws.onerror = function() {
            ws.close();
        };
    }

    function showErrorOverlay(error) {
        clearErrorOverlay();

        var overlay = document.createElement('div');
        overlay.id = 'viaduct-error-overlay';
        overlay.style.cssText = 'position:fixed;top:0;left:0;right:0;bottom:0;background:rgba(0,0,0,0.9);color:#fff;font-family:monospace;font-size:14px;padding:20px;overflow:auto;z-index:999999;';

        var pre = document.createElement('pre');
        pre.style.cssText = 'white-space:pre-wrap;word-wrap:break-word;background:#1a1a1a;padding:20px;border-radius:8px;border:1px solid #333;';
        pre.textContent = error;

        overlay.appendChild(pre);
        document.body.appendChild(overlay);
    }

    function clearErrorOverlay() {
        var overlay = document.getElementById('viaduct-error-overlay');
        if (overlay) {
            overlay.remove();
        }
    }

    if (document.readyState === 'loading') {
        document.addEventListener('DOMContentLoaded', connect);
    } else {
        connect();
    }
})();
`
