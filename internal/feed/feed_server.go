package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mbeoliero/kit/log"
	"github.com/openhrm/pulse/internal/config"
	"github.com/openhrm/pulse/internal/entity"
	"github.com/openhrm/pulse/internal/indicator"
	"github.com/openhrm/pulse/internal/service"
	"github.com/openhrm/pulse/pkg/errcode"
	"github.com/redis/go-redis/v9"
)

// FeedServer pushes row change events over WebSocket. Services hand it
// events through the FeedPusher interface; clients additionally issue a
// small set of requests (send, typing, mark read, watch indicator) on the
// same connection.
type FeedServer struct {
	upgrader       *websocket.Upgrader
	cfg            *config.Config
	userMap        *UserMap
	registerChan   chan *Client
	unregisterChan chan *Client
	pushChan       chan *PushTask
	authService    *service.AuthService
	msgService     *service.MessageService
	convService    *service.ConversationService
	typingService  *service.TypingService
	indicators     *indicator.Store
	onlineUserNum  atomic.Int64
	onlineConnNum  atomic.Int64
	maxConnNum     int64
}

// PushTask represents one event fan-out
type PushTask struct {
	Event     *entity.ChangeEvent
	TargetIds []string
	ExcludeId string // Exclude specific connection Id
}

// NewFeedServer creates a new feed server
func NewFeedServer(cfg *config.Config, rdb *redis.Client, svcs *service.Services) *FeedServer {
	upgrader := &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	server := &FeedServer{
		upgrader:       upgrader,
		cfg:            cfg,
		userMap:        NewUserMap(rdb),
		registerChan:   make(chan *Client, 1000),
		unregisterChan: make(chan *Client, 1000),
		pushChan:       make(chan *PushTask, cfg.WebSocket.PushChannelSize),
		authService:    svcs.Auth,
		msgService:     svcs.Message,
		convService:    svcs.Conversation,
		typingService:  svcs.Typing,
		indicators:     svcs.Indicator,
		maxConnNum:     cfg.WebSocket.MaxConnNum,
	}

	return server
}

// Run starts the feed server loops
func (s *FeedServer) Run(ctx context.Context) {
	go s.eventLoop(ctx)

	workerNum := s.cfg.WebSocket.PushWorkerNum
	if workerNum <= 0 {
		workerNum = 10
	}
	for i := 0; i < workerNum; i++ {
		go s.pushLoop(ctx)
	}
	log.Info("started %d push workers", workerNum)
}

// eventLoop handles client registration and unregistration
func (s *FeedServer) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-s.registerChan:
			s.registerClient(ctx, client)
		case client := <-s.unregisterChan:
			s.unregisterClient(ctx, client)
		}
	}
}

// pushLoop handles async event pushing
func (s *FeedServer) pushLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-s.pushChan:
			s.processPushTask(ctx, task)
		}
	}
}

// processPushTask delivers one event to every live connection of its targets
func (s *FeedServer) processPushTask(ctx context.Context, task *PushTask) {
	for _, userId := range task.TargetIds {
		clients, ok := s.userMap.GetAll(userId)
		if !ok {
			continue
		}

		for _, client := range clients {
			if task.ExcludeId != "" && client.ConnId == task.ExcludeId {
				continue
			}

			if err := client.PushEvent(ctx, task.Event); err != nil {
				log.CtxDebug(ctx, "push to client failed: user_id=%s, conn_id=%s, error=%v", userId, client.ConnId, err)
			}
		}
	}
}

// registerClient registers a client
func (s *FeedServer) registerClient(ctx context.Context, client *Client) {
	existingClients, exists := s.userMap.GetAll(client.UserId)
	if !exists {
		s.onlineUserNum.Add(1)
	}

	s.userMap.Register(ctx, client)
	s.onlineConnNum.Add(1)

	log.CtxInfo(ctx, "client registered: user_id=%s, platform_id=%d, conn_id=%s, existing_conns=%d, online_users=%d, online_conns=%d",
		client.UserId, client.PlatformId, client.ConnId, len(existingClients), s.onlineUserNum.Load(), s.onlineConnNum.Load())
}

// unregisterClient unregisters a client
func (s *FeedServer) unregisterClient(ctx context.Context, client *Client) {
	isUserOffline := s.userMap.Unregister(ctx, client)
	s.onlineConnNum.Add(-1)

	if isUserOffline {
		s.onlineUserNum.Add(-1)
	}

	log.CtxInfo(ctx, "client unregistered: user_id=%s, platform_id=%d, conn_id=%s, user_offline=%v, online_users=%d, online_conns=%d",
		client.UserId, client.PlatformId, client.ConnId, isUserOffline, s.onlineUserNum.Load(), s.onlineConnNum.Load())
}

// UnregisterClient queues client for unregistration
func (s *FeedServer) UnregisterClient(client *Client) {
	select {
	case s.unregisterChan <- client:
	default:
		log.Warn("unregister channel full: user_id=%s", client.UserId)
	}
}

// HandleConnection handles a new WebSocket connection (net/http handler)
func (s *FeedServer) HandleConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if s.onlineConnNum.Load() >= s.maxConnNum {
		http.Error(w, "connection limit exceeded", http.StatusServiceUnavailable)
		return
	}

	token := r.URL.Query().Get(QueryToken)
	sendId := r.URL.Query().Get(QuerySendId)
	platformIdStr := r.URL.Query().Get(QueryPlatformId)

	if token == "" || sendId == "" {
		http.Error(w, "missing required parameters", http.StatusBadRequest)
		return
	}

	platformId := 0
	if platformIdStr != "" {
		platformId, _ = strconv.Atoi(platformIdStr)
	}

	// Token-store check included: a logged-out or kicked token cannot
	// open a feed connection even before JWT expiry.
	claims, err := s.authService.ValidateTokenWithUser(ctx, token, sendId, platformId)
	if err != nil {
		log.CtxDebug(ctx, "token validation failed: send_id=%s, error=%v", sendId, err)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.CtxWarn(ctx, "websocket upgrade failed: %v", err)
		return
	}

	connId := uuid.New().String()
	wsConn := NewWebSocketClientConn(conn, s.cfg.WebSocket.MaxMessageSize, PongWait, PingPeriod)
	client := NewClient(wsConn, claims.UserId, claims.PlatformId, token, connId, s)

	s.registerChan <- client

	client.Start()
}

// AsyncPushToUsers queues an event push to users. Implements
// service.FeedPusher.
func (s *FeedServer) AsyncPushToUsers(event *entity.ChangeEvent, userIds []string, excludeConnId string) {
	task := &PushTask{
		Event:     event,
		TargetIds: userIds,
		ExcludeId: excludeConnId,
	}

	select {
	case s.pushChan <- task:
	default:
		log.Warn("push channel full, event dropped: table=%s, action=%s", event.Table, event.Action)
	}
}

// IsOnline reports whether the user has a live connection anywhere.
// Implements service.FeedPusher.
func (s *FeedServer) IsOnline(userId string) bool {
	return s.userMap.IsOnline(context.Background(), userId)
}

// GetOnlineUserCount returns online user count
func (s *FeedServer) GetOnlineUserCount() int64 {
	return s.onlineUserNum.Load()
}

// GetOnlineConnCount returns online connection count
func (s *FeedServer) GetOnlineConnCount() int64 {
	return s.onlineConnNum.Load()
}

// ========== Request Handlers ==========

// HandleSendMsg handles send message request
func (s *FeedServer) HandleSendMsg(ctx context.Context, client *Client, req *WSRequest) ([]byte, error) {
	var sendReq SendMsgReq
	if err := json.Unmarshal(req.Data, &sendReq); err != nil {
		return nil, errcode.ErrInvalidParam
	}

	msg, err := s.msgService.SendMessage(ctx, client.UserId, &service.SendMessageRequest{
		ClientMsgId:    sendReq.ClientMsgId,
		RecvId:         sendReq.RecvId,
		ConversationId: sendReq.ConversationId,
		MsgType:        sendReq.MsgType,
		Body:           sendReq.Body,
	})
	if err != nil {
		return nil, err
	}

	return json.Marshal(msg.ToMessageInfo())
}

// HandleTypingStart handles typing start/refresh
func (s *FeedServer) HandleTypingStart(ctx context.Context, client *Client, req *WSRequest) ([]byte, error) {
	var typingReq TypingReq
	if err := json.Unmarshal(req.Data, &typingReq); err != nil {
		return nil, errcode.ErrInvalidParam
	}

	status, err := s.typingService.Start(ctx, client.UserId, typingReq.ConversationId)
	if err != nil {
		return nil, err
	}

	return json.Marshal(status)
}

// HandleTypingStop handles typing stop
func (s *FeedServer) HandleTypingStop(ctx context.Context, client *Client, req *WSRequest) ([]byte, error) {
	var typingReq TypingReq
	if err := json.Unmarshal(req.Data, &typingReq); err != nil {
		return nil, errcode.ErrInvalidParam
	}

	if err := s.typingService.Stop(ctx, client.UserId, typingReq.ConversationId); err != nil {
		return nil, err
	}

	return nil, nil
}

// HandleMarkConvRead handles mark conversation read
func (s *FeedServer) HandleMarkConvRead(ctx context.Context, client *Client, req *WSRequest) ([]byte, error) {
	var readReq MarkConvReadReq
	if err := json.Unmarshal(req.Data, &readReq); err != nil {
		return nil, errcode.ErrInvalidParam
	}

	info, err := s.convService.MarkConversationRead(ctx, client.UserId, readReq.ConversationId)
	if err != nil {
		return nil, err
	}

	return json.Marshal(info)
}

// HandleWatchIndicator subscribes the connection to another user's send
// indicator. The current snapshot comes back as the response; subsequent
// changes arrive as WSIndicatorState pushes until the connection closes.
func (s *FeedServer) HandleWatchIndicator(ctx context.Context, client *Client, req *WSRequest) ([]byte, error) {
	var watchReq WatchIndicatorReq
	if err := json.Unmarshal(req.Data, &watchReq); err != nil {
		return nil, errcode.ErrInvalidParam
	}
	if watchReq.UserId == "" {
		return nil, errcode.ErrInvalidParam
	}

	first := true
	var snapshot *IndicatorStateData

	unsubscribe := s.indicators.Subscribe(watchReq.UserId, func(state indicator.State) {
		data := &IndicatorStateData{
			UserId:    state.UserId,
			Active:    state.Active,
			UpdatedAt: state.UpdatedAt,
		}
		// The initial snapshot is delivered synchronously during Subscribe
		// and becomes the request's response.
		if first {
			first = false
			snapshot = data
			return
		}
		if err := client.PushIndicatorState(data); err != nil {
			log.Debug("push indicator failed: watcher=%s, user_id=%s, error=%v",
				client.UserId, state.UserId, err)
		}
	})

	client.watchIndicator(watchReq.UserId, unsubscribe)

	return json.Marshal(snapshot)
}
