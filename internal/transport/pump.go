package transport

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/StoreStation/voxelengine/internal/wire"
)

// readPump decodes inbound frames and forwards completed messages to
// inbox. It owns the only reader of c.conn, per gorilla/websocket's
// single-reader-goroutine requirement.
func (c *Client) readPump(inbox chan<- Inbound, onClose func(*Client)) {
	defer func() {
		onClose(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		message := frame
		if wire.IsFragment(frame) {
			full, complete := c.reassembler.Add(frame)
			if !complete {
				continue
			}
			message = full
		}

		packets, err := wire.DecodeMessage(message)
		if err != nil {
			return
		}
		for _, p := range packets {
			inbox <- Inbound{ClientID: c.ID, Packet: p}
		}
	}
}

// writePump is the single goroutine allowed to call c.conn.WriteMessage,
// draining c.send and sending periodic pings to detect dead peers.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer c.conn.Close()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closed:
			return
		}
	}
}
