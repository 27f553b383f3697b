// Package websocket 实现 /rtu 实时接口：
// 一条长连接上多路复用多个请求/响应对，替代一请求一连接的 HTTP 调用。
package websocket

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/noteable-io/minor-illusion/internal/domain"
	"github.com/noteable-io/minor-illusion/internal/dto"
	"github.com/noteable-io/minor-illusion/internal/middleware"
)

// maxMessageSize 限制单条入站消息的大小。
const maxMessageSize = 4096

// RTUHandler 负责 /rtu 的连接升级和会话生命周期。
// 认证不在升级阶段做，而是连接内通过 "auth" 事件完成。
type RTUHandler struct {
	upgrader websocket.Upgrader
	resolver middleware.TokenResolver
}

// NewRTUHandler 创建 RTUHandler 实例。
func NewRTUHandler(resolver middleware.TokenResolver) *RTUHandler {
	if resolver == nil {
		panic("TokenResolver cannot be nil for RTUHandler")
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// TODO: 生产环境应配置具体的允许来源
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	return &RTUHandler{upgrader: upgrader, resolver: resolver}
}

// HandleConnection 处理 GET /rtu 的升级请求，然后把连接交给会话循环。
func (h *RTUHandler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 失败时已经写了 HTTP 错误响应，这里只记录日志
		logrus.WithError(err).Error("RTU: Failed to upgrade connection")
		return
	}
	logrus.Info("RTU: Connection upgraded to WebSocket")

	session := newSession(conn, h.resolver)
	session.listen(c.Request.Context())
}

// session 是一条 /rtu 连接的状态：读写计数和连接内认证出的用户。
// 循环严格串行：读一条、分发、写一条回复，没有并发在途请求。
type session struct {
	conn     *websocket.Conn
	resolver middleware.TokenResolver
	nRead    int
	nWritten int
	user     *domain.User
}

func newSession(conn *websocket.Conn, resolver middleware.TokenResolver) *session {
	return &session{conn: conn, resolver: resolver}
}

// listen 运行会话循环，直到对端关闭连接或读出错。
func (s *session) listen(ctx context.Context) {
	defer func() {
		s.conn.Close()
		logrus.WithFields(logrus.Fields{
			"n_read":    s.nRead,
			"n_written": s.nWritten,
		}).Info("RTU: Session closed")
	}()

	s.conn.SetReadLimit(maxMessageSize)

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).Warn("RTU: Read error (unexpected close)")
			} else {
				logrus.Debug("RTU: Connection closed")
			}
			return
		}
		s.nRead++

		reply := s.process(ctx, raw)

		payload, err := json.Marshal(reply)
		if err != nil {
			logrus.WithError(err).Error("RTU: Failed to marshal reply")
			return
		}
		if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logrus.WithError(err).Warn("RTU: Failed to write reply")
			return
		}
		s.nWritten++
	}
}

// process 分发一条请求信封并构造回复。
// 对请求格式错误和未知事件都以错误数据回复，不中断会话。
func (s *session) process(ctx context.Context, raw []byte) dto.RTUReply {
	var req dto.RTURequest
	if err := json.Unmarshal(raw, &req); err != nil {
		logrus.WithError(err).Warn("RTU: Malformed request envelope")
		return dto.NewRTUReply(req.ID, map[string]any{"error": "malformed request"})
	}

	switch req.Event {
	case "auth":
		return dto.NewRTUReply(req.ID, s.authUser(ctx, req.Data))
	case "session_stats":
		return dto.NewRTUReply(req.ID, s.sessionStats())
	default:
		logrus.WithField("event", req.Event).Warn("RTU: Unknown event")
		return dto.NewRTUReply(req.ID, map[string]any{"error": "unknown event: " + req.Event})
	}
}

// authUser 处理 "auth" 事件：用 data.token 走与 HTTP 认证门相同的解析逻辑，
// 成功后把用户保留在会话上，回复用户的公开字段。
func (s *session) authUser(ctx context.Context, data map[string]any) map[string]any {
	token, _ := data["token"].(string)
	if token == "" {
		return map[string]any{"error": "token is required"}
	}

	user, err := s.resolver.ResolveToken(ctx, token)
	if err != nil {
		logrus.WithError(err).Warn("RTU: Auth event failed")
		return map[string]any{"error": "could not validate credentials"}
	}

	s.user = user
	logrus.WithField("username", user.Name).Info("RTU: Session authenticated")

	out := dto.NewUserOut(user)
	return map[string]any{
		"id":         out.ID.String(),
		"created_at": out.CreatedAt,
		"name":       out.Name,
	}
}

// sessionStats 处理 "session_stats" 事件。
// 计数反映的是本条回复之前的读写次数。
func (s *session) sessionStats() map[string]any {
	username := "Not authenticated"
	if s.user != nil {
		username = s.user.Name
	}
	return map[string]any{
		"n_read":    s.nRead,
		"n_written": s.nWritten,
		"user":      username,
	}
}
