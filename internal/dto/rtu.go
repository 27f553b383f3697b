package dto

import "github.com/google/uuid"

// RTURequest 是 /rtu WebSocket 连接上的请求信封。
// 同一条连接上可以复用任意多个请求/响应对，靠 ID 关联。
type RTURequest struct {
	ID    uuid.UUID      `json:"id"`
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

// RTUReply 是对应的响应信封，ReqID 指回触发它的请求。
type RTUReply struct {
	ID    uuid.UUID      `json:"id"`
	ReqID uuid.UUID      `json:"req_id"`
	Data  map[string]any `json:"data"`
}

// NewRTUReply 构造一个带新生成 ID 的响应信封。
func NewRTUReply(reqID uuid.UUID, data map[string]any) RTUReply {
	return RTUReply{
		ID:    uuid.New(),
		ReqID: reqID,
		Data:  data,
	}
}
