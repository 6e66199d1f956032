package entity

import (
	"testing"

	"github.com/openhrm/pulse/pkg/constant"
	"github.com/stretchr/testify/assert"
)

func ptr(v int64) *int64 { return &v }

func TestMessage_StatusDerivation(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{
			name: "no timestamps means sending",
			msg:  Message{},
			want: constant.MsgStatusSending,
		},
		{
			name: "sent only",
			msg:  Message{SentAt: ptr(1000)},
			want: constant.MsgStatusSent,
		},
		{
			name: "delivered wins over sent",
			msg:  Message{SentAt: ptr(1000), DeliveredAt: ptr(1100)},
			want: constant.MsgStatusDelivered,
		},
		{
			name: "read wins over delivered and sent",
			msg:  Message{SentAt: ptr(1000), DeliveredAt: ptr(1100), ReadAt: ptr(1200)},
			want: constant.MsgStatusRead,
		},
		{
			name: "read wins even without delivered",
			msg:  Message{SentAt: ptr(1000), ReadAt: ptr(1200)},
			want: constant.MsgStatusRead,
		},
		{
			name: "read wins even without sent",
			msg:  Message{ReadAt: ptr(1200)},
			want: constant.MsgStatusRead,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.msg.Status())
		})
	}
}

func TestMessage_ToMessageInfoCarriesStatus(t *testing.T) {
	msg := Message{
		Id:             42,
		ConversationId: "dm_a:b",
		SenderId:       "a",
		Body:           "hello",
		SentAt:         ptr(1000),
		DeliveredAt:    ptr(1100),
	}

	info := msg.ToMessageInfo()
	assert.Equal(t, constant.MsgStatusDelivered, info.Status)
	assert.Equal(t, int64(42), info.Id)
	assert.Nil(t, info.ReadAt)
}

func TestMessage_ReadReceipt(t *testing.T) {
	msg := Message{Id: 7, SentAt: ptr(1000), ReadAt: ptr(2000)}

	r := msg.ToReadReceipt()
	assert.Equal(t, int64(7), r.MessageId)
	assert.Equal(t, constant.MsgStatusRead, r.Status)
	assert.Equal(t, int64(2000), *r.ReadAt)
	assert.Nil(t, r.DeliveredAt)
}
