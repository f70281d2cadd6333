package main

import (
	"fmt"
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// client is one WebSocket connection, host or player. The read pump feeds
// the room's event channel; the write pump drains send.
type client struct {
	id   string
	conn *websocket.Conn
	send chan serverMessage
}

func (c *client) readPump(room *Room) {
	defer func() {
		room.unreg <- c
		_ = c.conn.Close()
	}()

	for {
		var msg clientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		room.events <- inbound{client: c, msg: msg}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func serveWS(room *Room, logger zerolog.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}

		c := &client{
			id:   uuid.NewString(),
			conn: conn,
			send: make(chan serverMessage, 16),
		}

		room.register <- c

		go c.writePump()
		c.readPump(room)
	}
}

// localIP returns the first non-loopback IPv4 address, which is what the
// host display renders into the join QR for phones on the same network.
func localIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "localhost"
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return "localhost"
}

// joinQRHandler serves a PNG QR code pointing phones at the join page.
func joinQRHandler(cfg *Config, path string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		url := fmt.Sprintf("%s://%s:%d%s%s", cfg.scheme(), localIP(), cfg.port, cfg.prefix, path)

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

// registerHeadlineGame sets up routes so that:
//   - $path        → landing page for joining players
//   - $path/ws     → the game WebSocket, shared by host and players
//   - $path/qr     → PNG QR code for the join URL
func registerHeadlineGame(cfg *Config, path string, mux *httprouter.Router, room *Room, logger zerolog.Logger) {
	mux.GET(cfg.prefix+path, serveGamePage(cfg))
	mux.GET(cfg.prefix+path+"/ws", serveWS(room, logger))
	mux.GET(cfg.prefix+path+"/qr", joinQRHandler(cfg, path))
}
