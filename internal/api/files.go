package api

import (
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"strings"

	"talento/internal/apperr"
	"talento/internal/auth"
	"talento/internal/cvtext"
	"talento/internal/model"

	"github.com/gorilla/mux"
)

const (
	msgFileRequired = "Файл оруулна уу"
	msgCVDeleted    = "CV устгагдлаа"
	msgLogoUpdated  = "Лого амжилттай шинэчлэгдлээ"
	msgAttached     = "Хавсралт амжилттай хадгалагдлаа"
	msgCVRequired   = "CV сонгоно уу"
	msgCVFileGone   = "CV файл олдсонгүй"
)

func (s *server) fileRoutes(api *mux.Router) {
	member := group(api, auth.RequireRole())
	member.HandleFunc("/user/cvs", s.uploadCV).Methods(http.MethodPost)
	member.HandleFunc("/user/cvs", s.listCVs).Methods(http.MethodGet)
	member.HandleFunc("/user/cvs/{id}", s.deleteCV).Methods(http.MethodDelete)
	member.HandleFunc("/cv/download", s.downloadCV).Methods(http.MethodGet)

	employer := group(api, auth.RequireRole(model.RoleEmployer))
	employer.HandleFunc("/employer/upload-logo", s.uploadLogo).Methods(http.MethodPost)
	employer.HandleFunc("/questionnaires/{id}/upload-attachment", s.uploadAttachment).Methods(http.MethodPost)
}

// uploadCV 保存简历文件并抽取文本；无法抽取时可由表单 content 字段补充。
func (s *server) uploadCV(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.FromContext(r.Context())
	file, header, err := r.FormFile("file")
	if err != nil {
		s.fail(w, r, apperr.New(apperr.KindValidation, msgFileRequired, err))
		return
	}
	defer file.Close()

	saved, err := s.Uploads.SaveDocument("cvs", header.Filename, file)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	content := strings.TrimSpace(r.FormValue("content"))
	if content == "" {
		text, err := cvtext.Extract(saved.Data)
		switch {
		case errors.Is(err, cvtext.ErrUnsupported):
			s.Logger.Debug().Str("mime", saved.MIME).Msg("cv text not extracted")
		case err != nil:
			s.Logger.Warn().Err(err).Str("file", saved.Name).Msg("cv text extraction failed")
		default:
			content = text
		}
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = header.Filename
	}
	cv := &model.CV{
		UserID:   sess.UserID,
		Title:    title,
		FileURL:  saved.URL,
		FileName: saved.Name,
		Content:  content,
		Status:   model.CVStatusPending,
	}
	if err := s.Store.CreateCV(r.Context(), cv); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cv)
}

func (s *server) listCVs(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.FromContext(r.Context())
	cvs, err := s.Store.ListCVs(r.Context(), sess.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cvs)
}

func (s *server) deleteCV(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.FromContext(r.Context())
	if err := s.Store.DeleteCV(r.Context(), mux.Vars(r)["id"], sess.UserID); err != nil {
		s.fail(w, r, notFound(err, msgCVNotFound))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msgCVDeleted})
}

func (s *server) uploadLogo(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if u.CompanyID == nil {
		s.fail(w, r, apperr.Forbidden(msgNoCompany))
		return
	}
	file, header, err := r.FormFile("logo")
	if err != nil {
		s.fail(w, r, apperr.New(apperr.KindValidation, msgFileRequired, err))
		return
	}
	defer file.Close()

	saved, err := s.Uploads.SaveImage("logos", header.Filename, file)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.Store.UpdateCompanyLogo(r.Context(), *u.CompanyID, saved.URL); err != nil {
		s.fail(w, r, notFound(err, "Компани олдсонгүй"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msgLogoUpdated, "logoUrl": saved.URL})
}

func (s *server) uploadAttachment(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.fail(w, r, apperr.New(apperr.KindValidation, msgFileRequired, err))
		return
	}
	defer file.Close()

	id := mux.Vars(r)["id"]
	if _, err := s.Questionnaires.Get(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	saved, err := s.Uploads.SaveDocument("questionnaires", header.Filename, file)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.Questionnaires.SetAttachment(r.Context(), u, id, saved.URL, saved.Name); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": msgAttached, "file": saved})
}

// downloadCV 以附件形式返回简历原文件。
// 本人、管理员，以及收到过该简历投递的公司雇主可以下载。
func (s *server) downloadCV(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	cvID := r.URL.Query().Get("cvId")
	if cvID == "" {
		s.fail(w, r, apperr.Validation(msgCVRequired))
		return
	}
	ctx := r.Context()
	cv, err := s.Store.GetCV(ctx, cvID)
	if err != nil {
		s.fail(w, r, notFound(err, msgCVNotFound))
		return
	}

	allowed := u.Role == model.RoleAdmin || cv.UserID == u.ID
	if !allowed && u.Role == model.RoleEmployer && u.CompanyID != nil {
		if allowed, err = s.Store.CVSubmittedTo(ctx, cv.ID, *u.CompanyID); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	if !allowed {
		s.fail(w, r, apperr.Forbidden(msgNoAccess))
		return
	}
	if cv.FileURL == "" {
		s.fail(w, r, apperr.NotFound(msgCVFileGone))
		return
	}

	f, err := s.Uploads.Open(cv.FileURL)
	if errors.Is(err, fs.ErrNotExist) {
		s.Logger.Warn().Str("cv_id", cv.ID).Str("file_url", cv.FileURL).Msg("cv file missing on disk")
		s.fail(w, r, apperr.NotFound(msgCVFileGone))
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	name := cv.FileName
	if name == "" {
		name = info.Name()
	}
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.ServeContent(w, r, name, info.ModTime(), f)
}
