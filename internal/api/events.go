package api

import (
	"context"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/campusgraph/socialgraph/internal/ws"
)

// streamHandler upgrades the request to a WebSocket that receives relationship
// events for the node named in the path.
func streamHandler(log *logrus.Logger, hub *ws.Hub, corsOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, ok := pathIDs(c, "id")
		if !ok {
			return
		}

		conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
			OriginPatterns:       corsOrigins,
			CompressionMode:      websocket.CompressionContextTakeover,
			CompressionThreshold: 128,
		})
		if err != nil {
			log.WithError(err).Error("websocket accept failed")
			return
		}

		client := ws.NewClient(hub, conn, ids[0])
		hub.Register(client)

		// Cancel when the request ends or the hub stops.
		streamCtx, cancel := context.WithCancel(context.WithoutCancel(c.Request.Context()))
		go func() {
			select {
			case <-c.Request.Context().Done():
			case <-hub.Done():
			case <-streamCtx.Done():
			}
			cancel()
		}()

		go client.WritePump(streamCtx)
		client.ReadPump(streamCtx)
		cancel()
	}
}
