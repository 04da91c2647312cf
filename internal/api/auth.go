package api

import (
	"net/http"

	"talento/internal/apperr"
	"talento/internal/auth"
	"talento/internal/model"

	"github.com/gorilla/mux"
)

const (
	msgRegistered     = "Амжилттай бүртгэгдлээ"
	msgProfileUpdated = "Профайл амжилттай шинэчлэгдлээ"
)

func (s *server) authRoutes(api *mux.Router) {
	api.HandleFunc("/auth/register", s.register).Methods(http.MethodPost)
	api.HandleFunc("/auth/register/employer", s.registerEmployer).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)
	api.Handle("/auth/me", auth.RequireRole()(http.HandlerFunc(s.me))).Methods(http.MethodGet)
	api.Handle("/user/update-profile", auth.RequireRole()(http.HandlerFunc(s.updateProfile))).Methods(http.MethodPatch)

	admin := group(api, auth.RequireRole(model.RoleAdmin))
	admin.HandleFunc("/admin/register", s.registerAdmin).Methods(http.MethodPost)
}

func (s *server) register(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.Accounts.Register(r.Context(), in, model.RoleJobSeeker)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": msgRegistered, "user": u})
}

func (s *server) registerEmployer(w http.ResponseWriter, r *http.Request) {
	var in auth.EmployerInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.Accounts.RegisterEmployer(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": msgRegistered, "user": u})
}

// registerAdmin 仅管理员可创建新的管理员账号。
func (s *server) registerAdmin(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.Accounts.Register(r.Context(), in, model.RoleAdmin)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": msgRegistered, "user": u})
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	var in auth.LoginInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	token, err := s.Accounts.Login(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, token)
}

func (s *server) me(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var in auth.ProfileInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	sess, _ := auth.FromContext(r.Context())
	u, err := s.Accounts.UpdateProfile(r.Context(), sess.UserID, in)
	if err != nil {
		s.fail(w, r, notFound(err, msgLoginNeeded))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": msgProfileUpdated, "user": u})
}

// decodeBody 只解析请求体，校验交给业务层。
func decodeBody(r *http.Request, v any) error {
	if err := readJSON(r, v); err != nil {
		return apperr.New(apperr.KindValidation, msgBadPayload, err)
	}
	return nil
}
