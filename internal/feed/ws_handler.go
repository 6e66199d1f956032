package feed

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/google/uuid"
	"github.com/hertz-contrib/websocket"
	"github.com/mbeoliero/kit/log"
)

// HandleHertzConnection handles a WebSocket connection from Hertz using hertz-contrib/websocket
func (s *FeedServer) HandleHertzConnection(ctx context.Context, c *app.RequestContext, upgrader *websocket.HertzUpgrader) {
	if s.onlineConnNum.Load() >= s.maxConnNum {
		c.String(503, "connection limit exceeded")
		return
	}

	token := string(c.Query(QueryToken))
	sendId := string(c.Query(QuerySendId))
	platformIdStr := string(c.Query(QueryPlatformId))

	if token == "" || sendId == "" {
		c.String(400, "missing required parameters")
		return
	}

	platformId := 0
	if platformIdStr != "" {
		platformId, _ = strconv.Atoi(platformIdStr)
	}

	claims, err := s.authService.ValidateTokenWithUser(ctx, token, sendId, platformId)
	if err != nil {
		log.CtxDebug(ctx, "token validation failed: send_id=%s, error=%v", sendId, err)
		c.String(401, "unauthorized")
		return
	}

	err = upgrader.Upgrade(c, func(conn *websocket.Conn) {
		connId := uuid.New().String()
		wsConn := NewHertzWebSocketClientConn(conn, s.cfg.WebSocket.MaxMessageSize, PongWait, PingPeriod)
		client := NewClient(wsConn, claims.UserId, claims.PlatformId, token, connId, s)

		s.registerChan <- client

		// Blocking: the upgrade callback owns the connection lifetime
		client.readLoop()
	})

	if err != nil {
		log.CtxWarn(ctx, "websocket upgrade failed: %v", err)
		return
	}
}
