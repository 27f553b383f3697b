package websocket_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noteable-io/minor-illusion/internal/domain"
	"github.com/noteable-io/minor-illusion/internal/dto"
	wsHandler "github.com/noteable-io/minor-illusion/internal/handler/websocket"
	"github.com/noteable-io/minor-illusion/internal/infra/persistence/memory"
	"github.com/noteable-io/minor-illusion/internal/service"
)

// rtuFixture 起一个只挂 /rtu 的真实 HTTP 服务器并拨通一条 WebSocket 连接。
type rtuFixture struct {
	conn *websocket.Conn
	auth *service.AuthService
	user *domain.User
}

func newRTUFixture(t *testing.T) *rtuFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := memory.NewUserStore()
	user := &domain.User{Name: "alice", Password: "pw1"}
	require.NoError(t, users.Create(context.Background(), user))

	authService, err := service.NewAuthService(users, memory.UnitOfWork{}, "test-secret", 24)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/rtu", wsHandler.NewRTUHandler(authService).HandleConnection)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/rtu"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err, "WebSocket 拨号应成功")
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	return &rtuFixture{conn: conn, auth: authService, user: user}
}

// roundTrip 发送一条请求信封并读回对应回复。
func (f *rtuFixture) roundTrip(t *testing.T, event string, data map[string]any) (uuid.UUID, dto.RTUReply) {
	t.Helper()
	req := dto.RTURequest{ID: uuid.New(), Event: event, Data: data}
	require.NoError(t, f.conn.WriteJSON(req))

	var reply dto.RTUReply
	require.NoError(t, f.conn.ReadJSON(&reply))
	return req.ID, reply
}

func TestRTU_SessionStatsBeforeAuth(t *testing.T) {
	f := newRTUFixture(t)

	reqID, reply := f.roundTrip(t, "session_stats", map[string]any{})

	assert.Equal(t, reqID, reply.ReqID, "回复必须指回触发它的请求")
	assert.NotEqual(t, reqID, reply.ID, "回复有自己独立的 ID")
	assert.Equal(t, "Not authenticated", reply.Data["user"])
	// 计数是回复之前的快照: 本条请求已读入，回复还没写出
	assert.Equal(t, float64(1), reply.Data["n_read"])
	assert.Equal(t, float64(0), reply.Data["n_written"])
}

func TestRTU_AuthThenStats(t *testing.T) {
	f := newRTUFixture(t)
	token, err := f.auth.CreateToken(f.user.Name)
	require.NoError(t, err)

	_, reply := f.roundTrip(t, "auth", map[string]any{"token": token})

	assert.Equal(t, "alice", reply.Data["name"])
	assert.Equal(t, f.user.ID.String(), reply.Data["id"])
	assert.NotContains(t, reply.Data, "password")

	// 认证状态在后续请求中保留
	_, reply = f.roundTrip(t, "session_stats", map[string]any{})
	assert.Equal(t, "alice", reply.Data["user"])
	assert.Equal(t, float64(2), reply.Data["n_read"])
	assert.Equal(t, float64(1), reply.Data["n_written"])
}

func TestRTU_AuthRejectsBadToken(t *testing.T) {
	f := newRTUFixture(t)

	_, reply := f.roundTrip(t, "auth", map[string]any{"token": "garbage"})

	assert.Equal(t, "could not validate credentials", reply.Data["error"])

	// 认证失败后会话继续，且仍是未认证状态
	_, reply = f.roundTrip(t, "session_stats", map[string]any{})
	assert.Equal(t, "Not authenticated", reply.Data["user"])
}

func TestRTU_AuthMissingToken(t *testing.T) {
	f := newRTUFixture(t)

	_, reply := f.roundTrip(t, "auth", map[string]any{})

	assert.Equal(t, "token is required", reply.Data["error"])
}

func TestRTU_UnknownEvent(t *testing.T) {
	f := newRTUFixture(t)

	reqID, reply := f.roundTrip(t, "no_such_event", map[string]any{})

	assert.Equal(t, reqID, reply.ReqID)
	assert.Equal(t, "unknown event: no_such_event", reply.Data["error"])
}

func TestRTU_MultiplexedRequests(t *testing.T) {
	// 同一条连接上串行复用多个请求，每条回复都对应各自的请求
	f := newRTUFixture(t)

	for i := 1; i <= 3; i++ {
		reqID, reply := f.roundTrip(t, "session_stats", map[string]any{})
		assert.Equal(t, reqID, reply.ReqID)
		assert.Equal(t, float64(i), reply.Data["n_read"])
		assert.Equal(t, float64(i-1), reply.Data["n_written"])
	}
}
