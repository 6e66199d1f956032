package tests

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// Feed request identifiers
const (
	WSSendMsg        = 1001
	WSTypingStart    = 1002
	WSTypingStop     = 1003
	WSMarkConvRead   = 1004
	WSWatchIndicator = 1005

	WSPushEvent      = 2001
	WSIndicatorState = 2002
)

// WSRequest is a feed request frame
type WSRequest struct {
	ReqIdentifier int32           `json:"req_identifier"`
	MsgIncr       string          `json:"msg_incr"`
	OperationId   string          `json:"operation_id"`
	SendId        string          `json:"send_id"`
	Data          json.RawMessage `json:"data"`
}

// WSResponse is a feed response or push frame
type WSResponse struct {
	ReqIdentifier int32           `json:"req_identifier"`
	MsgIncr       string          `json:"msg_incr"`
	OperationId   string          `json:"operation_id"`
	ErrCode       int             `json:"err_code"`
	ErrMsg        string          `json:"err_msg"`
	Data          json.RawMessage `json:"data"`
}

// PushEvent is the row change payload of a WSPushEvent frame
type PushEvent struct {
	Table  string          `json:"table"`
	Action string          `json:"action"`
	Row    json.RawMessage `json:"row"`
}

// WSClient is a feed test client
type WSClient struct {
	conn    *websocket.Conn
	userId  string
	frames  chan WSResponse
	done    chan struct{}
	msgIncr atomic.Int64
}

// NewWSClient dials the feed endpoint
func NewWSClient(token, userId string) (*WSClient, error) {
	host := testConfig.BaseURL
	if len(host) > 7 && host[:7] == "http://" {
		host = host[7:]
	}
	u := url.URL{
		Scheme:   "ws",
		Host:     host,
		Path:     "/ws",
		RawQuery: fmt.Sprintf("token=%s&send_id=%s&platform_id=1", token, userId),
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial websocket: %w", err)
	}

	client := &WSClient{
		conn:   conn,
		userId: userId,
		frames: make(chan WSResponse, 100),
		done:   make(chan struct{}),
	}

	go client.readLoop()

	return client, nil
}

func (c *WSClient) readLoop() {
	defer close(c.done)
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var frame WSResponse
		if err := json.Unmarshal(message, &frame); err != nil {
			continue
		}

		select {
		case c.frames <- frame:
		default:
		}
	}
}

// Send sends a request frame and returns its msg_incr
func (c *WSClient) Send(reqIdentifier int32, data interface{}) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	incr := fmt.Sprintf("%d", c.msgIncr.Add(1))
	req := WSRequest{
		ReqIdentifier: reqIdentifier,
		MsgIncr:       incr,
		SendId:        c.userId,
		Data:          raw,
	}

	frame, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	return incr, c.conn.WriteMessage(websocket.TextMessage, frame)
}

// WaitForResponse waits for the response echoing msgIncr
func (c *WSClient) WaitForResponse(msgIncr string, timeout time.Duration) (*WSResponse, error) {
	deadline := time.After(timeout)
	for {
		select {
		case frame := <-c.frames:
			if frame.MsgIncr == msgIncr {
				return &frame, nil
			}
		case <-deadline:
			return nil, fmt.Errorf("timeout waiting for response %s", msgIncr)
		case <-c.done:
			return nil, fmt.Errorf("connection closed")
		}
	}
}

// WaitForPush waits for a WSPushEvent matching table and action
func (c *WSClient) WaitForPush(table, action string, timeout time.Duration) (*PushEvent, error) {
	deadline := time.After(timeout)
	for {
		select {
		case frame := <-c.frames:
			if frame.ReqIdentifier != WSPushEvent {
				continue
			}
			var event PushEvent
			if err := json.Unmarshal(frame.Data, &event); err != nil {
				continue
			}
			if event.Table == table && event.Action == action {
				return &event, nil
			}
		case <-deadline:
			return nil, fmt.Errorf("timeout waiting for push %s/%s", table, action)
		case <-c.done:
			return nil, fmt.Errorf("connection closed")
		}
	}
}

// WaitForIndicator waits for a WSIndicatorState frame
func (c *WSClient) WaitForIndicator(timeout time.Duration) (map[string]interface{}, error) {
	deadline := time.After(timeout)
	for {
		select {
		case frame := <-c.frames:
			if frame.ReqIdentifier != WSIndicatorState {
				continue
			}
			var state map[string]interface{}
			if err := json.Unmarshal(frame.Data, &state); err != nil {
				continue
			}
			return state, nil
		case <-deadline:
			return nil, fmt.Errorf("timeout waiting for indicator state")
		case <-c.done:
			return nil, fmt.Errorf("connection closed")
		}
	}
}

// Close closes the connection
func (c *WSClient) Close() error {
	return c.conn.Close()
}

func TestFeed_Connect(t *testing.T) {
	userId := generateUserId("ws_conn_")
	_, token := RegisterAndLogin(t, userId, "WS Conn User", "password123")

	t.Run("connect with valid token", func(t *testing.T) {
		wsClient, err := NewWSClient(token, userId)
		if err != nil {
			t.Fatalf("connect websocket failed: %v", err)
		}
		defer wsClient.Close()
	})

	t.Run("connect with invalid token", func(t *testing.T) {
		if _, err := NewWSClient("invalid_token", userId); err == nil {
			t.Error("should fail with invalid token")
		}
	})

	t.Run("connect with mismatched send_id", func(t *testing.T) {
		if _, err := NewWSClient(token, "emp_someone_else"); err == nil {
			t.Error("should fail when send_id does not match the token")
		}
	})
}

func TestFeed_MessagePush(t *testing.T) {
	senderId := generateUserId("ws_snd_")
	recvId := generateUserId("ws_rcv_")
	sender, _ := RegisterAndLogin(t, senderId, "WS Sender", "password123")
	_, recvToken := RegisterAndLogin(t, recvId, "WS Receiver", "password123")

	recvWS, err := NewWSClient(recvToken, recvId)
	if err != nil {
		t.Fatalf("connect receiver websocket failed: %v", err)
	}
	defer recvWS.Close()

	time.Sleep(100 * time.Millisecond)

	t.Run("message insert pushed to online receiver", func(t *testing.T) {
		SendDirectMessage(t, sender, recvId, "pushed over the feed")

		event, err := recvWS.WaitForPush("messages", "insert", 5*time.Second)
		if err != nil {
			t.Fatalf("wait for push failed: %v", err)
		}

		var msg MessageInfo
		if err := json.Unmarshal(event.Row, &msg); err != nil {
			t.Fatalf("parse pushed row failed: %v", err)
		}
		if msg.Body != "pushed over the feed" {
			t.Errorf("unexpected pushed body: %s", msg.Body)
		}
		if msg.SenderId != senderId {
			t.Errorf("unexpected pushed sender: %s", msg.SenderId)
		}
	})

	t.Run("read flip pushed back to the watcher", func(t *testing.T) {
		msg := SendDirectMessage(t, sender, recvId, "watch the receipt")

		// Receiver acks over the same socket
		incr, err := recvWS.Send(WSMarkConvRead, map[string]string{
			"conversation_id": msg.ConversationId,
		})
		if err != nil {
			t.Fatalf("send mark read failed: %v", err)
		}

		resp, err := recvWS.WaitForResponse(incr, 5*time.Second)
		if err != nil {
			t.Fatalf("wait for response failed: %v", err)
		}
		if resp.ErrCode != 0 {
			t.Fatalf("mark read over feed failed: %s", resp.ErrMsg)
		}
	})
}

func TestFeed_TypingPush(t *testing.T) {
	typistId := generateUserId("ws_typ_")
	watcherId := generateUserId("ws_wat_")
	typist, _ := RegisterAndLogin(t, typistId, "WS Typist", "password123")
	_, watcherToken := RegisterAndLogin(t, watcherId, "WS Watcher", "password123")

	msg := SendDirectMessage(t, typist, watcherId, "conversation opener")
	conversationId := msg.ConversationId

	watcherWS, err := NewWSClient(watcherToken, watcherId)
	if err != nil {
		t.Fatalf("connect watcher websocket failed: %v", err)
	}
	defer watcherWS.Close()

	time.Sleep(100 * time.Millisecond)

	t.Run("typing start pushed to peer", func(t *testing.T) {
		resp, err := typist.POST("/typing/start", map[string]string{
			"conversation_id": conversationId,
		})
		if err != nil {
			t.Fatalf("start typing failed: %v", err)
		}
		AssertSuccess(t, resp)

		event, err := watcherWS.WaitForPush("typing_status", "insert", 5*time.Second)
		if err != nil {
			t.Fatalf("wait for typing push failed: %v", err)
		}

		var status TypingStatus
		if err := json.Unmarshal(event.Row, &status); err != nil {
			t.Fatalf("parse typing row failed: %v", err)
		}
		if status.UserId != typistId {
			t.Errorf("unexpected typist: %s", status.UserId)
		}
	})

	t.Run("typing expiry pushed without an explicit stop", func(t *testing.T) {
		// No stop call: the server-side timer should announce the expiry
		if _, err := watcherWS.WaitForPush("typing_status", "delete", 5*time.Second); err != nil {
			t.Fatalf("wait for typing expiry push failed: %v", err)
		}
	})
}

func TestFeed_Indicator(t *testing.T) {
	senderId := generateUserId("ws_ind_s_")
	watcherId := generateUserId("ws_ind_w_")
	sender, _ := RegisterAndLogin(t, senderId, "Indicator Sender", "password123")
	_, watcherToken := RegisterAndLogin(t, watcherId, "Indicator Watcher", "password123")

	SendDirectMessage(t, sender, watcherId, "conversation opener")

	watcherWS, err := NewWSClient(watcherToken, watcherId)
	if err != nil {
		t.Fatalf("connect watcher websocket failed: %v", err)
	}
	defer watcherWS.Close()

	time.Sleep(100 * time.Millisecond)

	// The indicator belongs to the sender, not the conversation
	incr, err := watcherWS.Send(WSWatchIndicator, map[string]string{
		"user_id": senderId,
	})
	if err != nil {
		t.Fatalf("send watch indicator failed: %v", err)
	}

	resp, err := watcherWS.WaitForResponse(incr, 5*time.Second)
	if err != nil {
		t.Fatalf("wait for watch response failed: %v", err)
	}
	if resp.ErrCode != 0 {
		t.Fatalf("watch indicator failed: %s", resp.ErrMsg)
	}

	t.Run("activation pushed when a message lands", func(t *testing.T) {
		SendDirectMessage(t, sender, watcherId, "triggers the pulse")

		state, err := watcherWS.WaitForIndicator(5 * time.Second)
		if err != nil {
			t.Fatalf("wait for indicator failed: %v", err)
		}
		if active, _ := state["active"].(bool); !active {
			t.Error("indicator should be active right after a send")
		}
		if uid, _ := state["user_id"].(string); uid != senderId {
			t.Errorf("indicator should belong to the sender, got %q", uid)
		}
	})

	t.Run("deactivation pushed after the pulse elapses", func(t *testing.T) {
		// Default pulse is 3s
		state, err := watcherWS.WaitForIndicator(5 * time.Second)
		if err != nil {
			t.Fatalf("wait for deactivation failed: %v", err)
		}
		if active, _ := state["active"].(bool); active {
			t.Error("indicator should deactivate on its own")
		}
	})
}
