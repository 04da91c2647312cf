package api

import (
	"net/http"
	"strings"
	"time"

	"talento/internal/apperr"
	"talento/internal/auth"
	"talento/internal/model"
	"talento/internal/storage"
	"talento/internal/workflow"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"
)

const (
	msgStatusRequired = "Статус шаардлагатай"
	msgNoCompany      = "Танд компани бүртгэгдээгүй байна"
	msgQuestionnaire  = "Асуулга сонгоно уу"
	msgQuestionSent   = "Асуулга амжилттай илгээгдлээ"
	msgMaintenance    = "Засвар үйлчилгээ амжилттай"
)

const newApplicationWindow = 24 * time.Hour

type statusRequest struct {
	Status model.ApplicationStatus `json:"status" validate:"required"`
}

type applyRequest struct {
	CVID    string `json:"cvId"`
	Message string `json:"message"`
}

type sendQuestionnaireRequest struct {
	QuestionnaireID string `json:"questionnaireId" validate:"required"`
}

func (s *server) applicationRoutes(api *mux.Router) {
	// 通用状态接口沿用旧行为：角色不符同样返回 401。
	status := group(api, auth.Require(apperr.KindUnauthorized, model.RoleAdmin))
	status.HandleFunc("/admin/applications/{id}/status", s.adminStatus).Methods(http.MethodPatch)

	admin := group(api, auth.RequireRole(model.RoleAdmin))
	admin.HandleFunc("/admin/applications/new-count", s.adminNewCount).Methods(http.MethodGet)
	admin.HandleFunc("/admin/applications", s.adminApplications).Methods(http.MethodGet)
	admin.HandleFunc("/admin/applications/{id}/approve", s.adminApprove).Methods(http.MethodPost)
	admin.HandleFunc("/admin/applications/{id}/reject", s.adminReject).Methods(http.MethodPost)
	admin.HandleFunc("/admin/stats", s.adminStats).Methods(http.MethodGet)
	admin.HandleFunc("/admin/maintenance", s.adminMaintenance).Methods(http.MethodPost)

	employer := group(api, auth.RequireRole(model.RoleEmployer))
	employer.HandleFunc("/employer/applications", s.employerApplications).Methods(http.MethodGet)
	employer.HandleFunc("/employer/new-applications", s.employerNewCount).Methods(http.MethodGet)
	employer.HandleFunc("/employer/applications/{id}/status", s.employerStatus).Methods(http.MethodPatch)
	employer.HandleFunc("/employer/applications/{id}/approve", s.employerApprove).Methods(http.MethodPost)
	employer.HandleFunc("/employer/applications/{id}/send-questionnaire", s.sendQuestionnaire).Methods(http.MethodPost)

	seeker := group(api, auth.RequireRole())
	seeker.HandleFunc("/jobs/{id}/apply", s.apply).Methods(http.MethodPost)
	seeker.HandleFunc("/jobseeker/applications", s.myApplications).Methods(http.MethodGet)
}

func (s *server) adminStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decode(r, &req, msgStatusRequired); err != nil {
		s.fail(w, r, err)
		return
	}
	app, err := s.Workflow.RequestTransition(r.Context(), mux.Vars(r)["id"], req.Status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": workflow.MsgStatusUpdated, "application": app})
}

func (s *server) adminApprove(w http.ResponseWriter, r *http.Request) {
	app, err := s.Workflow.Approve(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (s *server) adminReject(w http.ResponseWriter, r *http.Request) {
	app, err := s.Workflow.Reject(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// adminApplications 按状态筛选，未知状态视为不过滤。
func (s *server) adminApplications(w http.ResponseWriter, r *http.Request) {
	q := storage.ApplicationQuery{}
	if st := model.ApplicationStatus(strings.ToUpper(r.URL.Query().Get("status"))); st.Valid() {
		q.Status = st
	}
	apps, err := s.Store.ListApplications(r.Context(), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

func (s *server) adminNewCount(w http.ResponseWriter, r *http.Request) {
	n, err := s.Store.CountApplications(r.Context(), storage.ApplicationQuery{Status: model.StatusEmployerApproved})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

// Stats 管理后台概览。
type Stats struct {
	Users               int64 `json:"totalUsers"`
	Jobs                int64 `json:"totalJobs"`
	Applications        int64 `json:"totalApplications"`
	Companies           int64 `json:"totalCompanies"`
	PendingApplications int64 `json:"pendingApplications"`
	ApprovedByAdmin     int64 `json:"adminApprovedApplications"`
}

func (s *server) adminStats(w http.ResponseWriter, r *http.Request) {
	var st Stats
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		st.Users, err = s.Store.CountUsers(ctx, "")
		return err
	})
	g.Go(func() (err error) {
		st.Jobs, err = s.Store.CountJobs(ctx, storage.JobQueryOptions{})
		return err
	})
	g.Go(func() (err error) {
		st.Applications, err = s.Store.CountApplications(ctx, storage.ApplicationQuery{})
		return err
	})
	g.Go(func() (err error) {
		st.Companies, err = s.Store.CountCompanies(ctx)
		return err
	})
	g.Go(func() (err error) {
		st.PendingApplications, err = s.Store.CountApplications(ctx, storage.ApplicationQuery{Status: model.StatusPending})
		return err
	})
	g.Go(func() (err error) {
		st.ApprovedByAdmin, err = s.Store.CountApplications(ctx, storage.ApplicationQuery{Status: model.StatusAdminApproved})
		return err
	})
	if err := g.Wait(); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// adminMaintenance 手动触发一次定时维护。
func (s *server) adminMaintenance(w http.ResponseWriter, r *http.Request) {
	if s.Scheduler == nil {
		s.fail(w, r, apperr.NotFound("Хуудас олдсонгүй"))
		return
	}
	report, err := s.Scheduler.RunOnce(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": msgMaintenance, "report": report})
}

// employerApplications 返回雇主公司的申请；带 jobId 时同时标记为已查看。
func (s *server) employerApplications(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if u.CompanyID == nil {
		s.fail(w, r, apperr.Forbidden(msgNoCompany))
		return
	}
	q := storage.ApplicationQuery{CompanyID: *u.CompanyID, JobID: r.URL.Query().Get("jobId")}
	if st := model.ApplicationStatus(strings.ToUpper(r.URL.Query().Get("status"))); st.Valid() {
		q.Status = st
	}
	apps, err := s.Store.ListApplications(r.Context(), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if q.JobID != "" {
		if err := s.Store.MarkApplicationsViewed(r.Context(), q.JobID, time.Now()); err != nil {
			s.Logger.Warn().Err(err).Str("job_id", q.JobID).Msg("mark applications viewed failed")
		}
	}
	writeJSON(w, http.StatusOK, apps)
}

// employerNewCount 统计待处理且 24 小时内未查看的申请。
func (s *server) employerNewCount(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if u.CompanyID == nil {
		s.fail(w, r, apperr.Forbidden(msgNoCompany))
		return
	}
	n, err := s.Store.CountNewApplications(r.Context(), *u.CompanyID, time.Now().Add(-newApplicationWindow))
	s.reply(w, r, http.StatusOK, map[string]int64{"count": n}, err)
}

func (s *server) employerStatus(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req statusRequest
	if err := decode(r, &req, msgStatusRequired); err != nil {
		s.fail(w, r, err)
		return
	}
	app, err := s.Workflow.EmployerTransition(r.Context(), mux.Vars(r)["id"], u, req.Status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": workflow.MsgStatusUpdated, "application": app})
}

func (s *server) employerApprove(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	app, err := s.Workflow.EmployerApprove(r.Context(), mux.Vars(r)["id"], u)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (s *server) sendQuestionnaire(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req sendQuestionnaireRequest
	if err := decode(r, &req, msgQuestionnaire); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.Questionnaires.Send(r.Context(), u, mux.Vars(r)["id"], req.QuestionnaireID); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msgQuestionSent})
}

func (s *server) apply(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req applyRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	app, err := s.Workflow.Apply(r.Context(), u, mux.Vars(r)["id"], req.CVID, req.Message)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": workflow.MsgApplied, "application": app})
}

func (s *server) myApplications(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.FromContext(r.Context())
	apps, err := s.Store.ListApplications(r.Context(), storage.ApplicationQuery{UserID: sess.UserID})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}
