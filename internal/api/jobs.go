package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"talento/internal/apperr"
	"talento/internal/auth"
	"talento/internal/cvtext"
	"talento/internal/model"
	"talento/internal/notifier"
	"talento/internal/storage"

	"github.com/gorilla/mux"
)

const (
	msgJobFields      = "Гарчиг болон тайлбар шаардлагатай"
	msgJobNotFound    = "Ажлын байр олдсонгүй"
	msgCVContent      = "CV content is required"
	msgCVNotFound     = "CV олдсонгүй"
	msgJobSaved       = "Ажлын байр хадгалагдлаа"
	msgJobUnsaved     = "Хадгалсан ажлын байр устгагдлаа"
	msgCVReviewStatus = "Буруу статус"
	msgNoAccess       = "Хандах эрхгүй байна"
)

type jobRequest struct {
	Title        string        `json:"title" validate:"required"`
	Description  string        `json:"description" validate:"required"`
	Requirements string        `json:"requirements"`
	Location     string        `json:"location"`
	Salary       string        `json:"salary"`
	Type         model.JobType `json:"type" validate:"omitempty,oneof=FULL_TIME PART_TIME CONTRACT INTERNSHIP"`
	CompanyID    string        `json:"companyId"`
}

type jobUpdateRequest struct {
	jobRequest
	Status model.JobStatus `json:"status" validate:"omitempty,oneof=ACTIVE CLOSED"`
}

type matchRequest struct {
	Content string `json:"content"`
	CVID    string `json:"cvId"`
}

type saveJobRequest struct {
	JobID string `json:"jobId" validate:"required"`
}

type cvReviewRequest struct {
	Status model.CVStatus `json:"status" validate:"required,oneof=APPROVED REJECTED"`
}

func (s *server) jobRoutes(api *mux.Router) {
	api.HandleFunc("/jobs", s.listJobs).Methods(http.MethodGet)

	posting := group(api, auth.RequireRole(model.RoleEmployer, model.RoleAdmin))
	posting.HandleFunc("/jobs", s.createJob).Methods(http.MethodPost)
	posting.HandleFunc("/employer/jobs", s.companyJobs).Methods(http.MethodGet)
	posting.HandleFunc("/employer/jobs/{id}", s.companyJob).Methods(http.MethodGet)
	posting.HandleFunc("/employer/jobs/{id}", s.updateJob).Methods(http.MethodPut)
	posting.HandleFunc("/employer/jobs/{id}", s.deleteJob).Methods(http.MethodDelete)

	member := group(api, auth.RequireRole())
	member.HandleFunc("/jobs/match", s.matchJobs).Methods(http.MethodPost)
	member.HandleFunc("/jobs/save", s.saveJob).Methods(http.MethodPost)
	member.HandleFunc("/jobs/save/{jobId}", s.unsaveJob).Methods(http.MethodDelete)
	member.HandleFunc("/jobs/saved", s.savedJobs).Methods(http.MethodGet)

	employer := group(api, auth.RequireRole(model.RoleEmployer))
	employer.HandleFunc("/employer/cvs", s.employerCVs).Methods(http.MethodGet)
	employer.HandleFunc("/employer/cvs/{id}", s.reviewCV).Methods(http.MethodPatch)

	api.HandleFunc("/jobs/{id}", s.getJob).Methods(http.MethodGet)
}

// listJobs 分页返回在招职位，分页信息写在响应头中。
func (s *server) listJobs(w http.ResponseWriter, r *http.Request) {
	limit, page := pageParams(r)
	opts := storage.JobQueryOptions{
		Status:    model.JobStatusActive,
		CompanyID: r.URL.Query().Get("companyId"),
		Search:    r.URL.Query().Get("q"),
	}
	total, err := s.Store.CountJobs(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	opts.Offset = (page - 1) * limit
	opts.Limit = limit + 1
	jobs, err := s.Store.ListJobs(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	hasMore := len(jobs) > limit
	if hasMore {
		jobs = jobs[:limit]
	}

	w.Header().Set("X-Page", strconv.Itoa(page))
	w.Header().Set("X-Limit", strconv.Itoa(limit))
	w.Header().Set("X-Has-More", strconv.FormatBool(hasMore))
	w.Header().Set("X-Total", strconv.FormatInt(total, 10))
	writeJSON(w, http.StatusOK, jobs)
}

func (s *server) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.Store.GetJob(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, notFound(err, msgJobNotFound))
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// createJob 雇主只能以自己的公司发布，管理员须指定 companyId。
func (s *server) createJob(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req jobRequest
	if err := decode(r, &req, msgJobFields); err != nil {
		s.fail(w, r, err)
		return
	}
	companyID := req.CompanyID
	if u.Role == model.RoleEmployer {
		if u.CompanyID == nil {
			s.fail(w, r, apperr.Forbidden(msgNoCompany))
			return
		}
		companyID = *u.CompanyID
	}
	if _, err := s.Store.GetCompany(r.Context(), companyID); err != nil {
		s.fail(w, r, notFound(err, "Компани олдсонгүй"))
		return
	}
	job := &model.Job{
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Requirements: req.Requirements,
		Location:     req.Location,
		Salary:       req.Salary,
		Type:         req.Type,
		Status:       model.JobStatusActive,
		CompanyID:    companyID,
	}
	if job.Type == "" {
		job.Type = model.JobTypeFullTime
	}
	if err := s.Store.CreateJob(r.Context(), job); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

// companyJobs 返回本公司全部职位（含已关闭），管理员看到全部。
func (s *server) companyJobs(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var opts storage.JobQueryOptions
	if u.Role != model.RoleAdmin {
		if u.CompanyID == nil {
			s.fail(w, r, apperr.Forbidden(msgNoCompany))
			return
		}
		opts.CompanyID = *u.CompanyID
	}
	jobs, err := s.Store.ListJobs(r.Context(), opts)
	s.reply(w, r, http.StatusOK, jobs, err)
}

func (s *server) companyJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.ownedJob(r)
	s.reply(w, r, http.StatusOK, job, err)
}

// updateJob 整体替换职位的可编辑字段，status 为空时保持原状态。
func (s *server) updateJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.ownedJob(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req jobUpdateRequest
	if err := decode(r, &req, msgJobFields); err != nil {
		s.fail(w, r, err)
		return
	}
	job.Title = strings.TrimSpace(req.Title)
	job.Description = req.Description
	job.Requirements = req.Requirements
	job.Location = req.Location
	job.Salary = req.Salary
	if req.Type != "" {
		job.Type = req.Type
	}
	if req.Status != "" {
		job.Status = req.Status
	}
	if err := s.Store.UpdateJob(r.Context(), job); err != nil {
		s.fail(w, r, notFound(err, msgJobNotFound))
		return
	}
	s.Logger.Info().Str("job_id", job.ID).Str("status", string(job.Status)).Msg("job updated")
	writeJSON(w, http.StatusOK, job)
}

// deleteJob 删除职位，连带其申请与收藏。
func (s *server) deleteJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.ownedJob(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.Store.DeleteJob(r.Context(), job.ID); err != nil {
		s.fail(w, r, notFound(err, msgJobNotFound))
		return
	}
	s.Logger.Info().Str("job_id", job.ID).Msg("job deleted")
	writeJSON(w, http.StatusOK, deleted)
}

// ownedJob 读取路径中的职位。雇主只能访问本公司职位，其他公司的职位视为不存在。
func (s *server) ownedJob(r *http.Request) (*model.Job, error) {
	u, err := s.currentUser(r)
	if err != nil {
		return nil, err
	}
	id := mux.Vars(r)["id"]
	if u.Role == model.RoleAdmin {
		job, err := s.Store.GetJob(r.Context(), id)
		if err != nil {
			return nil, notFound(err, msgJobNotFound)
		}
		return job, nil
	}
	if u.CompanyID == nil {
		return nil, apperr.Forbidden(msgNoCompany)
	}
	job, err := s.Store.GetCompanyJob(r.Context(), id, *u.CompanyID)
	if err != nil {
		return nil, notFound(err, msgJobNotFound)
	}
	return job, nil
}

// matchJobs 对 CV 文本推荐职位；可直接传 content，或传自己的 cvId。
func (s *server) matchJobs(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	content := req.Content
	if content == "" && req.CVID != "" {
		sess, _ := auth.FromContext(r.Context())
		cv, err := s.Store.GetUserCV(r.Context(), req.CVID, sess.UserID)
		if err != nil {
			s.fail(w, r, notFound(err, msgCVNotFound))
			return
		}
		content = cv.Content
	}
	if strings.TrimSpace(content) == "" {
		s.fail(w, r, apperr.Validation(msgCVContent))
		return
	}
	if strings.Contains(content, "<") {
		if text, err := cvtext.FromHTML(content); err == nil {
			content = text
		}
	}
	matches, err := s.Matcher.Recommend(r.Context(), content)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *server) saveJob(w http.ResponseWriter, r *http.Request) {
	var req saveJobRequest
	if err := decode(r, &req, msgJobNotFound); err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.Store.GetJob(r.Context(), req.JobID); err != nil {
		s.fail(w, r, notFound(err, msgJobNotFound))
		return
	}
	sess, _ := auth.FromContext(r.Context())
	if err := s.Store.SaveJob(r.Context(), sess.UserID, req.JobID); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msgJobSaved})
}

func (s *server) unsaveJob(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.FromContext(r.Context())
	if err := s.Store.UnsaveJob(r.Context(), sess.UserID, mux.Vars(r)["jobId"]); err != nil {
		s.fail(w, r, notFound(err, msgJobNotFound))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msgJobUnsaved})
}

func (s *server) savedJobs(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.FromContext(r.Context())
	saved, err := s.Store.ListSavedJobs(r.Context(), sess.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// employerCVs 返回投递到本公司职位的简历。
func (s *server) employerCVs(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if u.CompanyID == nil {
		s.fail(w, r, apperr.Forbidden(msgNoCompany))
		return
	}
	apps, err := s.Store.ListApplications(r.Context(), storage.ApplicationQuery{CompanyID: *u.CompanyID})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	seen := make(map[string]bool)
	cvs := []model.CV{}
	for _, app := range apps {
		if app.CV == nil || seen[app.CV.ID] {
			continue
		}
		seen[app.CV.ID] = true
		cvs = append(cvs, *app.CV)
	}
	writeJSON(w, http.StatusOK, cvs)
}

// reviewCV 雇主审核简历并通知求职者。只能审核投递到本公司的简历。
func (s *server) reviewCV(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if u.CompanyID == nil {
		s.fail(w, r, apperr.Forbidden(msgNoCompany))
		return
	}
	var req cvReviewRequest
	if err := decode(r, &req, msgCVReviewStatus); err != nil {
		s.fail(w, r, err)
		return
	}
	ctx := r.Context()
	cv, err := s.Store.GetCV(ctx, mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, notFound(err, msgCVNotFound))
		return
	}
	submitted, err := s.Store.CVSubmittedTo(ctx, cv.ID, *u.CompanyID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !submitted {
		s.fail(w, r, apperr.Forbidden(msgNoAccess))
		return
	}
	if err := s.Store.UpdateCVStatus(ctx, cv.ID, req.Status); err != nil {
		s.fail(w, r, notFound(err, msgCVNotFound))
		return
	}
	cv.Status = req.Status

	owner, err := s.Store.GetUser(ctx, cv.UserID)
	if err != nil {
		s.Logger.Warn().Err(err).Str("cv_id", cv.ID).Msg("cv owner lookup failed")
	} else if err := s.Notify.Send(ctx, s.Store, notifier.RecipientOf(owner), notifier.CVReviewNotice(req.Status == model.CVStatusApproved)); err != nil {
		s.Logger.Warn().Err(err).Str("cv_id", cv.ID).Msg("cv review notice failed")
	}
	writeJSON(w, http.StatusOK, cv)
}

// notFound 将存储层的 ErrNotFound 转为带提示的 NotFound。
func notFound(err error, msg string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return err
}
