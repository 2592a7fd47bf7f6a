package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/clearing/internal/engine"
	"github.com/talgya/clearing/internal/world"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Clients only send control frames.
	maxMessageSize = 512
)

// StreamFrame is one message pushed on /api/v1/stream.
type StreamFrame struct {
	Tick  uint64         `json:"tick"`
	Time  string         `json:"time"`
	World world.Snapshot `json:"world"`
}

// streamSnapshots writes a frame every interval until the peer leaves or ctx ends.
func streamSnapshots(ctx context.Context, conn *websocket.Conn, sim *engine.Simulation, interval time.Duration) {
	defer conn.Close()

	// The read pump only exists to process pongs and notice the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(maxMessageSize)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.Debug("stream read failed", "error", err)
				}
				return
			}
		}
	}()

	frames := time.NewTicker(interval)
	defer frames.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	slog.Info("stream client connected", "remote", conn.RemoteAddr().String())
	defer slog.Info("stream client disconnected", "remote", conn.RemoteAddr().String())

	send := func() bool {
		tick := sim.CurrentTick()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := conn.WriteJSON(StreamFrame{
			Tick:  tick,
			Time:  engine.TickTime(tick),
			World: sim.World().Snapshot(),
		})
		return err == nil
	}

	if !send() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
			return
		case <-closed:
			return
		case <-frames.C:
			if !send() {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
