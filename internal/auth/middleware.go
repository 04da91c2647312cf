package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"talento/internal/apperr"
	"talento/internal/model"
)

type contextKey struct{}

// Session 当前请求的登录信息。
type Session struct {
	UserID    string
	Role      model.Role
	CompanyID string
}

// WithSession 将会话写入 context。
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext 读取会话。
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}

// Authenticate 解析 Authorization 头中的 Bearer token。
// 解析失败时不拦截请求，由 Require 决定是否拒绝。
func (s *Service) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, s.attach(r, bearer(r)))
	})
}

// AuthenticateQuery 在没有会话时读取 ?token= 参数，只挂在 EventSource 与 WebSocket 路由上，
// 浏览器无法为这两类连接设置请求头。
func (s *Service) AuthenticateQuery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			r = s.attach(r, r.URL.Query().Get("token"))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Service) attach(r *http.Request, token string) *http.Request {
	if token == "" {
		return r
	}
	claims, err := s.Parse(token)
	if err != nil {
		return r
	}
	return r.WithContext(WithSession(r.Context(), Session{
		UserID:    claims.UserID,
		Role:      claims.Role,
		CompanyID: claims.CompanyID,
	}))
}

// RequireRole 要求登录；未登录返回 401，角色不符返回 403。roles 为空时只要求登录。
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return Require(apperr.KindForbidden, roles...)
}

// Require 同 RequireRole，但角色不符时以 deny 类别拒绝。
func Require(deny apperr.Kind, roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := FromContext(r.Context())
			if !ok {
				writeError(w, apperr.Unauthorized("Нэвтрэх шаардлагатай"))
				return
			}
			if len(roles) > 0 && !hasRole(sess.Role, roles) {
				writeError(w, apperr.New(deny, "Хандах эрхгүй байна", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hasRole(role model.Role, roles []model.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func bearer(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperr.HTTPStatus(err))
	_ = json.NewEncoder(w).Encode(map[string]string{"error": apperr.Message(err, "")})
}
