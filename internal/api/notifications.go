package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"talento/internal/apperr"
	"talento/internal/auth"
	"talento/internal/model"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const (
	unreadLimit      = 50
	socketWriteWait  = 10 * time.Second
	msgNotifRequired = "notificationId шаардлагатай"
	msgNotifNotFound = "Мэдэгдэл олдсонгүй"
	msgNoStreaming   = "Streaming unsupported"
)

type readRequest struct {
	NotificationID string `json:"notificationId" validate:"required"`
}

func (s *server) notificationRoutes(api *mux.Router) {
	member := group(api, auth.RequireRole())
	member.HandleFunc("/notifications", s.listNotifications).Methods(http.MethodGet)
	member.HandleFunc("/notifications", s.markNotificationRead).Methods(http.MethodPatch)

	live := group(api, s.Auth.AuthenticateQuery)
	live.Use(auth.RequireRole())
	live.HandleFunc("/notifications/stream", s.streamNotifications).Methods(http.MethodGet)
	live.HandleFunc("/notifications/ws", s.notificationSocket).Methods(http.MethodGet)
}

// listNotifications 返回最近的未读通知。
func (s *server) listNotifications(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.FromContext(r.Context())
	out, err := s.Store.ListUnreadNotifications(r.Context(), sess.UserID, unreadLimit)
	s.reply(w, r, http.StatusOK, out, err)
}

func (s *server) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.FromContext(r.Context())
	var req readRequest
	if err := decode(r, &req, msgNotifRequired); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.Store.MarkNotificationRead(r.Context(), req.NotificationID, sess.UserID); err != nil {
		s.fail(w, r, notFound(err, msgNotifNotFound))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type streamEvent struct {
	Type         string              `json:"type"`
	Notification *model.Notification `json:"notification,omitempty"`
}

// streamNotifications 以 SSE 推送新通知：先发 connected，之后按 StreamInterval 轮询。
// 客户端断开后返回。
func (s *server) streamNotifications(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.fail(w, r, apperr.Internal(msgNoStreaming, nil))
		return
	}
	sess, _ := auth.FromContext(r.Context())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	emit := func(ev streamEvent) error { return writeEvent(w, ev) }
	s.pollNotifications(r.Context(), sess.UserID, emit, flusher.Flush)
}

var upgrader = websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 4096}

// notificationSocket 与 SSE 相同的推送，走 WebSocket。客户端发来的消息被忽略。
func (s *server) notificationSocket(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.FromContext(r.Context())
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	emit := func(ev streamEvent) error {
		if err := conn.SetWriteDeadline(time.Now().Add(socketWriteWait)); err != nil {
			return err
		}
		return conn.WriteJSON(ev)
	}
	s.pollNotifications(ctx, sess.UserID, emit, func() {})
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(socketWriteWait))
}

// pollNotifications 发送 connected 后轮询新通知，直到 ctx 结束或写入失败。
// 同一连接在去重窗口内对同一通知只推送一次。
func (s *server) pollNotifications(ctx context.Context, userID string, emit func(streamEvent) error, flush func()) {
	connID := uuid.NewString()
	if err := emit(streamEvent{Type: "connected"}); err != nil {
		return
	}
	flush()

	since := time.Now()
	ticker := time.NewTicker(s.StreamInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		fresh, err := s.Store.ListNotificationsSince(ctx, userID, since)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.Logger.Warn().Err(err).Str("user_id", userID).Msg("poll notifications failed")
			continue
		}
		for i := range fresh {
			n := fresh[i]
			if n.CreatedAt.After(since) {
				since = n.CreatedAt
			}
			if s.StreamDedup != nil && s.StreamDedup.Seen("stream:"+connID+":"+n.ID) {
				continue
			}
			if err := emit(streamEvent{Type: "new_notification", Notification: &n}); err != nil {
				return
			}
		}
		flush()
	}
}

func writeEvent(w http.ResponseWriter, ev streamEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}
