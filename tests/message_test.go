package tests

import (
	"fmt"
	"net/http"
	"testing"
)

// SendMessageRequest represents send message request
type SendMessageRequest struct {
	ClientMsgId    string `json:"client_msg_id"`
	RecvId         string `json:"recv_id,omitempty"`
	ConversationId string `json:"conversation_id,omitempty"`
	MsgType        int32  `json:"msg_type"`
	Body           string `json:"body"`
}

// MessageInfo represents a message with its read-state timestamps
type MessageInfo struct {
	Id             int64  `json:"id"`
	ConversationId string `json:"conversation_id"`
	ClientMsgId    string `json:"client_msg_id"`
	SenderId       string `json:"sender_id"`
	MsgType        int32  `json:"msg_type"`
	Body           string `json:"body"`
	Status         string `json:"status"`
	SentAt         *int64 `json:"sent_at"`
	DeliveredAt    *int64 `json:"delivered_at"`
	ReadAt         *int64 `json:"read_at"`
	EditedAt       *int64 `json:"edited_at,omitempty"`
}

// HistoryResponse represents paged message history
type HistoryResponse struct {
	Messages []MessageInfo `json:"messages"`
	Total    int64         `json:"total"`
}

const MsgTypeText = 1

// SendDirectMessage sends a text message and returns its info
func SendDirectMessage(t *testing.T, client *APIClient, recvId, text string) *MessageInfo {
	t.Helper()

	resp, err := client.POST("/msg/send", SendMessageRequest{
		ClientMsgId: generateClientMsgId(),
		RecvId:      recvId,
		MsgType:     MsgTypeText,
		Body:        text,
	})
	if err != nil {
		t.Fatalf("send message failed: %v", err)
	}
	AssertSuccess(t, resp, "send message should succeed")

	var msg MessageInfo
	if err := resp.ParseData(&msg); err != nil {
		t.Fatalf("parse message info failed: %v", err)
	}
	return &msg
}

func TestMessage_SendDirect(t *testing.T) {
	user1Id := generateUserId("msg_a_")
	user2Id := generateUserId("msg_b_")
	client1, _ := RegisterAndLogin(t, user1Id, "Msg User A", "password123")
	RegisterAndLogin(t, user2Id, "Msg User B", "password123")

	t.Run("send text message", func(t *testing.T) {
		msg := SendDirectMessage(t, client1, user2Id, "Hello there")

		if msg.SenderId != user1Id {
			t.Errorf("expected sender_id=%s, got %s", user1Id, msg.SenderId)
		}
		if msg.Status != "sent" {
			t.Errorf("freshly sent message should be status=sent, got %s", msg.Status)
		}
		if msg.SentAt == nil {
			t.Error("sent_at should be set")
		}
		if msg.DeliveredAt != nil || msg.ReadAt != nil {
			t.Error("delivered_at and read_at should be unset on send")
		}
		if msg.ConversationId == "" {
			t.Error("conversation_id should be assigned")
		}
	})

	t.Run("send without client_msg_id", func(t *testing.T) {
		resp, err := client1.POST("/msg/send", SendMessageRequest{
			RecvId:  user2Id,
			MsgType: MsgTypeText,
			Body:    "no client id",
		})
		if err != nil {
			t.Fatalf("send message failed: %v", err)
		}

		AssertInvalidField(t, resp, "client_msg_id")
	})

	t.Run("send to self is rejected", func(t *testing.T) {
		resp, err := client1.POST("/msg/send", SendMessageRequest{
			ClientMsgId: generateClientMsgId(),
			RecvId:      user1Id,
			MsgType:     MsgTypeText,
			Body:        "talking to myself",
		})
		if err != nil {
			t.Fatalf("send message failed: %v", err)
		}

		AssertError(t, resp, http.StatusBadRequest, "sending to self should be rejected")
	})

	t.Run("send idempotency", func(t *testing.T) {
		clientMsgId := generateClientMsgId()
		req := SendMessageRequest{
			ClientMsgId: clientMsgId,
			RecvId:      user2Id,
			MsgType:     MsgTypeText,
			Body:        "idempotent message",
		}

		resp1, err := client1.POST("/msg/send", req)
		if err != nil {
			t.Fatalf("send message failed: %v", err)
		}
		AssertSuccess(t, resp1, "first send should succeed")

		var msg1 MessageInfo
		if err := resp1.ParseData(&msg1); err != nil {
			t.Fatalf("parse message info failed: %v", err)
		}

		resp2, err := client1.POST("/msg/send", req)
		if err != nil {
			t.Fatalf("send message failed: %v", err)
		}
		AssertSuccess(t, resp2, "second send should also succeed")

		var msg2 MessageInfo
		if err := resp2.ParseData(&msg2); err != nil {
			t.Fatalf("parse message info failed: %v", err)
		}

		if msg1.Id != msg2.Id {
			t.Errorf("idempotent sends should return the same message: %d vs %d", msg1.Id, msg2.Id)
		}
	})
}

func TestMessage_ReadStateTransitions(t *testing.T) {
	senderId := generateUserId("rs_sender_")
	recvId := generateUserId("rs_recv_")
	sender, _ := RegisterAndLogin(t, senderId, "RS Sender", "password123")
	receiver, _ := RegisterAndLogin(t, recvId, "RS Receiver", "password123")

	t.Run("delivered then read", func(t *testing.T) {
		msg := SendDirectMessage(t, sender, recvId, "state machine")

		resp, err := receiver.POST(fmt.Sprintf("/msg/%d/delivered", msg.Id), nil)
		if err != nil {
			t.Fatalf("mark delivered failed: %v", err)
		}
		AssertSuccess(t, resp, "mark delivered should succeed")

		var delivered MessageInfo
		if err := resp.ParseData(&delivered); err != nil {
			t.Fatalf("parse message failed: %v", err)
		}
		if delivered.Status != "delivered" {
			t.Errorf("expected status=delivered, got %s", delivered.Status)
		}
		if delivered.DeliveredAt == nil {
			t.Error("delivered_at should be set")
		}

		resp, err = receiver.POST(fmt.Sprintf("/msg/%d/read", msg.Id), nil)
		if err != nil {
			t.Fatalf("mark read failed: %v", err)
		}
		AssertSuccess(t, resp, "mark read should succeed")

		var read MessageInfo
		if err := resp.ParseData(&read); err != nil {
			t.Fatalf("parse message failed: %v", err)
		}
		if read.Status != "read" {
			t.Errorf("expected status=read, got %s", read.Status)
		}
		if read.ReadAt == nil {
			t.Error("read_at should be set")
		}
	})

	t.Run("read backfills delivered", func(t *testing.T) {
		msg := SendDirectMessage(t, sender, recvId, "skipping delivered")

		// Mark read without ever acknowledging delivery
		resp, err := receiver.POST(fmt.Sprintf("/msg/%d/read", msg.Id), nil)
		if err != nil {
			t.Fatalf("mark read failed: %v", err)
		}
		AssertSuccess(t, resp, "mark read should succeed")

		var read MessageInfo
		if err := resp.ParseData(&read); err != nil {
			t.Fatalf("parse message failed: %v", err)
		}
		if read.DeliveredAt == nil {
			t.Error("read should backfill delivered_at")
		}
		if read.Status != "read" {
			t.Errorf("expected status=read, got %s", read.Status)
		}
	})

	t.Run("timestamps never regress", func(t *testing.T) {
		msg := SendDirectMessage(t, sender, recvId, "forward only")

		resp, err := receiver.POST(fmt.Sprintf("/msg/%d/read", msg.Id), nil)
		if err != nil {
			t.Fatalf("mark read failed: %v", err)
		}
		AssertSuccess(t, resp)

		var first MessageInfo
		if err := resp.ParseData(&first); err != nil {
			t.Fatalf("parse message failed: %v", err)
		}

		// A second read (or a late delivered ack) must not move anything
		resp, err = receiver.POST(fmt.Sprintf("/msg/%d/read", msg.Id), nil)
		if err != nil {
			t.Fatalf("mark read failed: %v", err)
		}
		AssertSuccess(t, resp, "repeat read should be a no-op, not an error")

		var second MessageInfo
		if err := resp.ParseData(&second); err != nil {
			t.Fatalf("parse message failed: %v", err)
		}
		if *first.ReadAt != *second.ReadAt {
			t.Errorf("read_at moved on repeat: %d vs %d", *first.ReadAt, *second.ReadAt)
		}

		resp, err = receiver.POST(fmt.Sprintf("/msg/%d/delivered", msg.Id), nil)
		if err != nil {
			t.Fatalf("mark delivered failed: %v", err)
		}
		AssertSuccess(t, resp, "late delivered ack should be a no-op")

		var third MessageInfo
		if err := resp.ParseData(&third); err != nil {
			t.Fatalf("parse message failed: %v", err)
		}
		if *third.DeliveredAt != *first.DeliveredAt {
			t.Errorf("delivered_at moved after read: %d vs %d", *third.DeliveredAt, *first.DeliveredAt)
		}
	})

	t.Run("sender cannot acknowledge own message", func(t *testing.T) {
		msg := SendDirectMessage(t, sender, recvId, "not yours to ack")

		resp, err := sender.POST(fmt.Sprintf("/msg/%d/read", msg.Id), nil)
		if err != nil {
			t.Fatalf("mark read failed: %v", err)
		}
		AssertError(t, resp, http.StatusForbidden, "sender must not mark own message read")
	})
}

func TestMessage_Edit(t *testing.T) {
	senderId := generateUserId("edit_sender_")
	recvId := generateUserId("edit_recv_")
	sender, _ := RegisterAndLogin(t, senderId, "Edit Sender", "password123")
	receiver, _ := RegisterAndLogin(t, recvId, "Edit Receiver", "password123")

	msg := SendDirectMessage(t, sender, recvId, "original body")

	t.Run("sender edits body", func(t *testing.T) {
		resp, err := sender.PUT(fmt.Sprintf("/msg/%d/edit", msg.Id), map[string]string{"body": "edited body"})
		if err != nil {
			t.Fatalf("edit message failed: %v", err)
		}
		AssertSuccess(t, resp, "edit should succeed")

		var edited MessageInfo
		if err := resp.ParseData(&edited); err != nil {
			t.Fatalf("parse message failed: %v", err)
		}
		if edited.Body != "edited body" {
			t.Errorf("expected edited body, got %s", edited.Body)
		}
		if edited.EditedAt == nil {
			t.Error("edited_at should be set")
		}
	})

	t.Run("non-sender cannot edit", func(t *testing.T) {
		resp, err := receiver.PUT(fmt.Sprintf("/msg/%d/edit", msg.Id), map[string]string{"body": "hijacked"})
		if err != nil {
			t.Fatalf("edit message failed: %v", err)
		}
		AssertError(t, resp, http.StatusForbidden, "only the sender may edit")
	})
}

func TestMessage_History(t *testing.T) {
	senderId := generateUserId("hist_sender_")
	recvId := generateUserId("hist_recv_")
	sender, _ := RegisterAndLogin(t, senderId, "Hist Sender", "password123")
	RegisterAndLogin(t, recvId, "Hist Receiver", "password123")

	var conversationId string
	for i := 0; i < 5; i++ {
		msg := SendDirectMessage(t, sender, recvId, fmt.Sprintf("Message %d", i+1))
		conversationId = msg.ConversationId
	}

	t.Run("history newest first", func(t *testing.T) {
		resp, err := sender.GET(fmt.Sprintf("/msg/history?conversation_id=%s&limit=10", conversationId))
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		AssertSuccess(t, resp, "history should succeed")

		var hist HistoryResponse
		if err := resp.ParseData(&hist); err != nil {
			t.Fatalf("parse history failed: %v", err)
		}

		if len(hist.Messages) != 5 {
			t.Fatalf("expected 5 messages, got %d", len(hist.Messages))
		}
		if hist.Total != 5 {
			t.Errorf("expected total=5, got %d", hist.Total)
		}
		if hist.Messages[0].Body != "Message 5" {
			t.Errorf("expected newest first, got %s", hist.Messages[0].Body)
		}
	})

	t.Run("history with limit and offset", func(t *testing.T) {
		resp, err := sender.GET(fmt.Sprintf("/msg/history?conversation_id=%s&limit=2&offset=2", conversationId))
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		AssertSuccess(t, resp)

		var hist HistoryResponse
		if err := resp.ParseData(&hist); err != nil {
			t.Fatalf("parse history failed: %v", err)
		}
		if len(hist.Messages) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(hist.Messages))
		}
		if hist.Messages[0].Body != "Message 3" {
			t.Errorf("expected Message 3 at offset 2, got %s", hist.Messages[0].Body)
		}
	})

	t.Run("outsider cannot read history", func(t *testing.T) {
		outsiderId := generateUserId("hist_out_")
		outsider, _ := RegisterAndLogin(t, outsiderId, "Hist Outsider", "password123")

		resp, err := outsider.GET(fmt.Sprintf("/msg/history?conversation_id=%s", conversationId))
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		AssertError(t, resp, http.StatusForbidden, "non-participant must not read history")
	})
}

func TestMessage_Receipt(t *testing.T) {
	senderId := generateUserId("rcpt_sender_")
	recvId := generateUserId("rcpt_recv_")
	sender, _ := RegisterAndLogin(t, senderId, "Rcpt Sender", "password123")
	receiver, _ := RegisterAndLogin(t, recvId, "Rcpt Receiver", "password123")

	msg := SendDirectMessage(t, sender, recvId, "receipt please")

	resp, err := receiver.POST(fmt.Sprintf("/msg/%d/read", msg.Id), nil)
	if err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	AssertSuccess(t, resp)

	t.Run("sender sees receipt", func(t *testing.T) {
		resp, err := sender.GET(fmt.Sprintf("/msg/%d/receipt", msg.Id))
		if err != nil {
			t.Fatalf("receipt failed: %v", err)
		}
		AssertSuccess(t, resp, "receipt should succeed")

		var receipt struct {
			MessageId   int64  `json:"message_id"`
			Status      string `json:"status"`
			DeliveredAt *int64 `json:"delivered_at"`
			ReadAt      *int64 `json:"read_at"`
		}
		if err := resp.ParseData(&receipt); err != nil {
			t.Fatalf("parse receipt failed: %v", err)
		}

		if receipt.Status != "read" {
			t.Errorf("expected status=read, got %s", receipt.Status)
		}
		if receipt.ReadAt == nil || receipt.DeliveredAt == nil {
			t.Error("receipt should carry both timestamps")
		}
	})
}
