package main

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
)

// progressFrame is one websocket update about a running job.
type progressFrame struct {
	JobID    string  `json:"job_id"`
	Progress float64 `json:"progress"`
	Workers  int     `json:"workers"`
	Status   string  `json:"status"`
}

// progressHub fans job progress out to all connected websocket clients.
type progressHub struct {
	m    sync.Mutex
	subs map[*websocket.Conn]struct{}
}

func newProgressHub() *progressHub {
	return &progressHub{
		subs: make(map[*websocket.Conn]struct{}),
	}
}

// handler upgrades the request and keeps the connection subscribed until
// the client goes away. Clients only listen; reads serve to detect close.
func (h *progressHub) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"}, // TODO: tighten in prod
		})
		if err != nil {
			log.Println(err)
			return
		}

		h.add(conn)
		defer h.remove(conn)

		for {
			if _, _, err := conn.Read(c.Request.Context()); err != nil {
				return
			}
		}
	}
}

func (h *progressHub) add(conn *websocket.Conn) {
	h.m.Lock()
	h.subs[conn] = struct{}{}
	n := len(h.subs)
	h.m.Unlock()

	log.Printf("progress subscribers: %d", n)
}

func (h *progressHub) remove(conn *websocket.Conn) {
	h.m.Lock()
	if _, ok := h.subs[conn]; ok {
		delete(h.subs, conn)
		conn.CloseNow()
	}
	n := len(h.subs)
	h.m.Unlock()

	log.Printf("progress subscribers: %d", n)
}

// broadcast sends the frame to every subscriber, dropping any connection
// that can no longer be written to.
func (h *progressHub) broadcast(f progressFrame) {
	h.m.Lock()
	conns := make([]*websocket.Conn, 0, len(h.subs))
	for conn := range h.subs {
		conns = append(conns, conn)
	}
	h.m.Unlock()

	for _, conn := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := wsjson.Write(ctx, conn, f)
		cancel()
		if err != nil {
			h.remove(conn)
		}
	}
}
