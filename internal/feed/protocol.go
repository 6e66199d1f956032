package feed

import "encoding/json"

// WSRequest represents a feed request frame
type WSRequest struct {
	ReqIdentifier int32           `json:"req_identifier"` // Request type
	MsgIncr       string          `json:"msg_incr"`       // Client message counter/trace Id
	OperationId   string          `json:"operation_id"`   // Operation Id
	SendId        string          `json:"send_id"`        // Sender user Id
	Data          json.RawMessage `json:"data"`           // Business data
}

// WSResponse represents a feed response frame
type WSResponse struct {
	ReqIdentifier int32           `json:"req_identifier"` // Request type (echo back)
	MsgIncr       string          `json:"msg_incr"`       // Message counter (echo back)
	OperationId   string          `json:"operation_id"`   // Operation Id (echo back)
	ErrCode       int             `json:"err_code"`       // Error code, 0 = success
	ErrMsg        string          `json:"err_msg"`        // Error message
	Data          json.RawMessage `json:"data"`           // Response data
}

// SendMsgReq represents send message request data
type SendMsgReq struct {
	ClientMsgId    string `json:"client_msg_id"`
	RecvId         string `json:"recv_id,omitempty"`
	ConversationId string `json:"conversation_id,omitempty"`
	MsgType        int32  `json:"msg_type"`
	Body           string `json:"body"`
}

// TypingReq represents a typing start/stop request
type TypingReq struct {
	ConversationId string `json:"conversation_id"`
}

// MarkConvReadReq represents a mark conversation read request
type MarkConvReadReq struct {
	ConversationId string `json:"conversation_id"`
}

// WatchIndicatorReq represents an indicator subscription request
type WatchIndicatorReq struct {
	UserId string `json:"user_id"`
}

// IndicatorStateData is the pushed indicator snapshot
type IndicatorStateData struct {
	UserId    string `json:"user_id"`
	Active    bool   `json:"active"`
	UpdatedAt int64  `json:"updated_at"`
}

// Encode encodes data to JSON bytes
func Encode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// Decode decodes JSON bytes to struct
func Decode(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
