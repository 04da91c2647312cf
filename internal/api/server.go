// Package api 暴露 Talento 的 HTTP 接口。
package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"talento/internal/apperr"
	"talento/internal/auth"
	"talento/internal/hr"
	"talento/internal/matcher"
	"talento/internal/model"
	"talento/internal/notifier"
	"talento/internal/questionnaire"
	"talento/internal/scheduler"
	"talento/internal/schema"
	"talento/internal/storage"
	"talento/internal/upload"
	"talento/internal/workflow"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const (
	msgServerError = "Серверийн алдаа гарлаа"
	msgBadPayload  = "Хүсэлтийн өгөгдөл буруу байна"
	msgLoginNeeded = "Нэвтрэх шаардлагатай"
)

// Scheduler 抽象调度接口，供管理员手动触发维护。
type Scheduler interface {
	RunOnce(ctx context.Context) (scheduler.Report, error)
}

// Deps 汇总 HTTP 层依赖。
type Deps struct {
	Store          *storage.Store
	Auth           *auth.Service
	Accounts       *auth.Accounts
	Workflow       *workflow.Service
	HR             *hr.Service
	Questionnaires *questionnaire.Service
	Matcher        *matcher.Matcher
	Uploads        *upload.Store
	Notify         *notifier.Dispatcher
	Scheduler      Scheduler
	// StreamDedup 抑制 SSE 重复推送，为空时不去重。
	StreamDedup    *notifier.Dedup
	StreamInterval time.Duration
	Logger         zerolog.Logger
}

type server struct {
	Deps
}

// NewHandler 构造 HTTP 路由。
func NewHandler(d Deps) http.Handler {
	if d.StreamInterval <= 0 {
		d.StreamInterval = 5 * time.Second
	}
	if d.Notify == nil {
		d.Notify = notifier.NewDispatcher(d.Logger, nil)
	}
	s := &server{Deps: d}

	r := mux.NewRouter()
	r.Use(s.logRequests, d.Auth.Authenticate)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	s.authRoutes(api)
	s.applicationRoutes(api)
	s.jobRoutes(api)
	s.fileRoutes(api)
	s.hrRoutes(api)
	s.questionnaireRoutes(api)
	s.notificationRoutes(api)

	if d.Uploads != nil {
		files := http.FileServer(http.Dir(d.Uploads.Dir()))
		prefix := d.Uploads.URLPrefix() + "/"
		r.PathPrefix(prefix).Handler(http.StripPrefix(prefix, files))
	}
	return r
}

// group 返回带角色校验的子路由。
func group(r *mux.Router, mw func(http.Handler) http.Handler) *mux.Router {
	sub := r.NewRoute().Subrouter()
	sub.Use(mux.MiddlewareFunc(mw))
	return sub
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.Logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack 透传给底层 writer，WebSocket 升级依赖它。
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Flush 透传给底层 writer，SSE 依赖它。
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// currentUser 读取当前登录账号。
func (s *server) currentUser(r *http.Request) (*model.User, error) {
	sess, ok := auth.FromContext(r.Context())
	if !ok {
		return nil, apperr.Unauthorized(msgLoginNeeded)
	}
	u, err := s.Store.GetUser(r.Context(), sess.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.Unauthorized(msgLoginNeeded)
	}
	return u, err
}

// decode 解析 JSON 请求体并按 validate 标签校验。
func decode(r *http.Request, v any, msg string) error {
	if err := readJSON(r, v); err != nil {
		return apperr.New(apperr.KindValidation, msgBadPayload, err)
	}
	return schema.Check(v, msg)
}

func readJSON(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v)
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, map[string]string{"error": apperr.Message(err, msgServerError)})
}

// reply 出错时写错误，否则以 status 写出 v。
func (s *server) reply(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, status, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func pageParams(r *http.Request) (limit, page int) {
	limit, page = 20, 1
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			if v > 100 {
				v = 100
			}
			limit = v
		}
	}
	if p := r.URL.Query().Get("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	return limit, page
}
