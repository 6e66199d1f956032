package tests

import (
	"fmt"
	"net/http"
	"testing"
)

// UnreadInfo represents one conversation's unread state
type UnreadInfo struct {
	ConversationId string `json:"conversation_id"`
	UnreadCount    int64  `json:"unread_count"`
	LastReadAt     int64  `json:"last_read_at,omitempty"`
}

// UnreadTotal represents the badge summary
type UnreadTotal struct {
	Total         int64        `json:"total"`
	Conversations []UnreadInfo `json:"conversations"`
}

// ConversationInfo represents conversation info
type ConversationInfo struct {
	Id        string `json:"id"`
	Type      int32  `json:"type"`
	Title     string `json:"title"`
	CreatedBy string `json:"created_by"`
}

// GetUnread fetches the caller's unread count for one conversation
func GetUnread(t *testing.T, client *APIClient, conversationId string) *UnreadInfo {
	t.Helper()

	resp, err := client.GET("/conversation/unread_count?conversation_id=" + conversationId)
	if err != nil {
		t.Fatalf("get unread count failed: %v", err)
	}
	AssertSuccess(t, resp, "unread count should succeed")

	var info UnreadInfo
	if err := resp.ParseData(&info); err != nil {
		t.Fatalf("parse unread info failed: %v", err)
	}
	return &info
}

// CreateGroupAndGetId creates a group conversation and returns its id
func CreateGroupAndGetId(t *testing.T, client *APIClient, title string, memberIds []string) string {
	t.Helper()

	resp, err := client.POST("/conversation/group", map[string]interface{}{
		"title":      title,
		"member_ids": memberIds,
	})
	if err != nil {
		t.Fatalf("create group failed: %v", err)
	}
	AssertSuccess(t, resp, "create group should succeed")

	var conv ConversationInfo
	if err := resp.ParseData(&conv); err != nil {
		t.Fatalf("parse conversation failed: %v", err)
	}
	if conv.Id == "" {
		t.Fatal("group conversation id should not be empty")
	}
	return conv.Id
}

func TestConversation_UnreadLifecycle(t *testing.T) {
	senderId := generateUserId("un_sender_")
	recvId := generateUserId("un_recv_")
	sender, _ := RegisterAndLogin(t, senderId, "Unread Sender", "password123")
	receiver, _ := RegisterAndLogin(t, recvId, "Unread Receiver", "password123")

	var conversationId string
	for i := 0; i < 3; i++ {
		msg := SendDirectMessage(t, sender, recvId, fmt.Sprintf("unread %d", i+1))
		conversationId = msg.ConversationId
	}

	t.Run("counter increments per message", func(t *testing.T) {
		info := GetUnread(t, receiver, conversationId)
		if info.UnreadCount != 3 {
			t.Errorf("expected unread=3, got %d", info.UnreadCount)
		}
	})

	t.Run("sender has no unread for own messages", func(t *testing.T) {
		info := GetUnread(t, sender, conversationId)
		if info.UnreadCount != 0 {
			t.Errorf("expected unread=0 for sender, got %d", info.UnreadCount)
		}
	})

	t.Run("reading history does not reset the counter", func(t *testing.T) {
		resp, err := receiver.GET("/msg/history?conversation_id=" + conversationId)
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		AssertSuccess(t, resp)

		info := GetUnread(t, receiver, conversationId)
		if info.UnreadCount != 3 {
			t.Errorf("history must not touch the counter, got %d", info.UnreadCount)
		}
	})

	t.Run("mark conversation read resets the counter", func(t *testing.T) {
		resp, err := receiver.POST("/conversation/mark_read", map[string]string{
			"conversation_id": conversationId,
		})
		if err != nil {
			t.Fatalf("mark read failed: %v", err)
		}
		AssertSuccess(t, resp, "mark conversation read should succeed")

		var info UnreadInfo
		if err := resp.ParseData(&info); err != nil {
			t.Fatalf("parse unread info failed: %v", err)
		}
		if info.UnreadCount != 0 {
			t.Errorf("expected unread=0 after mark read, got %d", info.UnreadCount)
		}

		// And every message from the peer is now read
		histResp, err := receiver.GET("/msg/history?conversation_id=" + conversationId)
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		AssertSuccess(t, histResp)

		var hist HistoryResponse
		if err := histResp.ParseData(&hist); err != nil {
			t.Fatalf("parse history failed: %v", err)
		}
		for _, m := range hist.Messages {
			if m.SenderId != recvId && m.Status != "read" {
				t.Errorf("message %d should be read after conversation mark, got %s", m.Id, m.Status)
			}
		}
	})

	t.Run("new message after reset increments again", func(t *testing.T) {
		SendDirectMessage(t, sender, recvId, "after reset")

		info := GetUnread(t, receiver, conversationId)
		if info.UnreadCount != 1 {
			t.Errorf("expected unread=1 after new message, got %d", info.UnreadCount)
		}
	})

	t.Run("non-participant cannot mark read", func(t *testing.T) {
		outsiderId := generateUserId("un_out_")
		outsider, _ := RegisterAndLogin(t, outsiderId, "Unread Outsider", "password123")

		resp, err := outsider.POST("/conversation/mark_read", map[string]string{
			"conversation_id": conversationId,
		})
		if err != nil {
			t.Fatalf("mark read failed: %v", err)
		}
		AssertError(t, resp, http.StatusForbidden, "outsider must not mark read")
	})
}

func TestConversation_UnreadTotal(t *testing.T) {
	recvId := generateUserId("tot_recv_")
	sender1Id := generateUserId("tot_s1_")
	sender2Id := generateUserId("tot_s2_")
	receiver, _ := RegisterAndLogin(t, recvId, "Total Receiver", "password123")
	sender1, _ := RegisterAndLogin(t, sender1Id, "Total Sender 1", "password123")
	sender2, _ := RegisterAndLogin(t, sender2Id, "Total Sender 2", "password123")

	SendDirectMessage(t, sender1, recvId, "from sender 1")
	SendDirectMessage(t, sender1, recvId, "from sender 1 again")
	SendDirectMessage(t, sender2, recvId, "from sender 2")

	resp, err := receiver.GET("/conversation/unread_total")
	if err != nil {
		t.Fatalf("unread total failed: %v", err)
	}
	AssertSuccess(t, resp, "unread total should succeed")

	var total UnreadTotal
	if err := resp.ParseData(&total); err != nil {
		t.Fatalf("parse unread total failed: %v", err)
	}

	if total.Total != 3 {
		t.Errorf("expected total=3, got %d", total.Total)
	}
	if len(total.Conversations) != 2 {
		t.Errorf("expected 2 conversations with unread, got %d", len(total.Conversations))
	}
}

func TestConversation_UnreadTotalTracksReset(t *testing.T) {
	recvId := generateUserId("trk_recv_")
	senderId := generateUserId("trk_snd_")
	receiver, _ := RegisterAndLogin(t, recvId, "Tracking Receiver", "password123")
	sender, _ := RegisterAndLogin(t, senderId, "Tracking Sender", "password123")

	var conversationId string
	for i := 0; i < 2; i++ {
		msg := SendDirectMessage(t, sender, recvId, fmt.Sprintf("tracked %d", i+1))
		conversationId = msg.ConversationId
	}

	getTotal := func() *UnreadTotal {
		t.Helper()
		resp, err := receiver.GET("/conversation/unread_total")
		if err != nil {
			t.Fatalf("unread total failed: %v", err)
		}
		AssertSuccess(t, resp)

		var total UnreadTotal
		if err := resp.ParseData(&total); err != nil {
			t.Fatalf("parse unread total failed: %v", err)
		}
		return &total
	}

	if total := getTotal(); total.Total != 2 {
		t.Fatalf("expected total=2 before read, got %d", total.Total)
	}

	resp, err := receiver.POST("/conversation/mark_read", map[string]string{
		"conversation_id": conversationId,
	})
	if err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	AssertSuccess(t, resp)

	// The badge view follows the authoritative counters, never a stale
	// pre-reset value
	if total := getTotal(); total.Total != 0 || len(total.Conversations) != 0 {
		t.Fatalf("expected empty badge right after read, got total=%d with %d conversations",
			total.Total, len(total.Conversations))
	}

	SendDirectMessage(t, sender, recvId, "tracked again")
	if total := getTotal(); total.Total != 1 {
		t.Fatalf("expected total=1 after new message, got %d", total.Total)
	}
}

func TestConversation_Group(t *testing.T) {
	ownerId := generateUserId("grp_owner_")
	member1Id := generateUserId("grp_m1_")
	member2Id := generateUserId("grp_m2_")
	owner, _ := RegisterAndLogin(t, ownerId, "Group Owner", "password123")
	member1, _ := RegisterAndLogin(t, member1Id, "Group Member 1", "password123")
	RegisterAndLogin(t, member2Id, "Group Member 2", "password123")

	groupId := CreateGroupAndGetId(t, owner, "Project Chat", []string{member1Id, member2Id})

	t.Run("participants listed with roles", func(t *testing.T) {
		resp, err := owner.GET(fmt.Sprintf("/conversation/%s/participants", groupId))
		if err != nil {
			t.Fatalf("participants failed: %v", err)
		}
		AssertSuccess(t, resp, "participants should succeed")

		var result struct {
			Participants []struct {
				UserId string `json:"user_id"`
				Role   int32  `json:"role"`
			} `json:"participants"`
		}
		if err := resp.ParseData(&result); err != nil {
			t.Fatalf("parse participants failed: %v", err)
		}

		if len(result.Participants) != 3 {
			t.Fatalf("expected 3 participants, got %d", len(result.Participants))
		}
		for _, p := range result.Participants {
			if p.UserId == ownerId && p.Role != 1 {
				t.Errorf("creator should have admin role, got %d", p.Role)
			}
		}
	})

	t.Run("group message fans out unread to all but sender", func(t *testing.T) {
		resp, err := owner.POST("/msg/send", SendMessageRequest{
			ClientMsgId:    generateClientMsgId(),
			ConversationId: groupId,
			MsgType:        MsgTypeText,
			Body:           "hello team",
		})
		if err != nil {
			t.Fatalf("send group message failed: %v", err)
		}
		AssertSuccess(t, resp, "group send should succeed")

		if info := GetUnread(t, member1, groupId); info.UnreadCount != 1 {
			t.Errorf("member1 expected unread=1, got %d", info.UnreadCount)
		}
		if info := GetUnread(t, owner, groupId); info.UnreadCount != 0 {
			t.Errorf("sender expected unread=0, got %d", info.UnreadCount)
		}
	})

	t.Run("non-member cannot send to group", func(t *testing.T) {
		outsiderId := generateUserId("grp_out_")
		outsider, _ := RegisterAndLogin(t, outsiderId, "Group Outsider", "password123")

		resp, err := outsider.POST("/msg/send", SendMessageRequest{
			ClientMsgId:    generateClientMsgId(),
			ConversationId: groupId,
			MsgType:        MsgTypeText,
			Body:           "let me in",
		})
		if err != nil {
			t.Fatalf("send failed: %v", err)
		}
		AssertError(t, resp, http.StatusForbidden, "outsider must not send to group")
	})

	t.Run("group needs members", func(t *testing.T) {
		resp, err := owner.POST("/conversation/group", map[string]interface{}{
			"title":      "Lonely Group",
			"member_ids": []string{},
		})
		if err != nil {
			t.Fatalf("create group failed: %v", err)
		}
		AssertError(t, resp, http.StatusBadRequest, "group without members should be rejected")
	})
}
