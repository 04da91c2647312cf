package api

import (
	"net/http"

	"talento/internal/apperr"
	"talento/internal/auth"
	"talento/internal/model"
	"talento/internal/questionnaire"

	"github.com/gorilla/mux"
)

const (
	msgAnswersRequired = "Хариултууд шаардлагатай"
	msgSubmitted       = "Хариулт амжилттай илгээгдлээ"
)

type submitRequest struct {
	Answers *questionnaire.Answers `json:"answers"`
}

func (s *server) questionnaireRoutes(api *mux.Router) {
	employer := group(api, auth.RequireRole(model.RoleEmployer))
	employer.HandleFunc("/employer/questionnaires", s.listQuestionnaires).Methods(http.MethodGet)
	employer.HandleFunc("/employer/questionnaires", s.createQuestionnaire).Methods(http.MethodPost)
	employer.HandleFunc("/employer/questionnaires/{id}", s.updateQuestionnaire).Methods(http.MethodPut)
	employer.HandleFunc("/employer/questionnaires/{id}", s.deleteQuestionnaire).Methods(http.MethodDelete)
	employer.HandleFunc("/employer/questionnaires/{id}/responses", s.questionnaireResponses).Methods(http.MethodGet)

	member := group(api, auth.RequireRole())
	member.HandleFunc("/jobseeker/questionnaires", s.myResponses).Methods(http.MethodGet)
	member.HandleFunc("/questionnaires/{id}", s.getQuestionnaire).Methods(http.MethodGet)
	member.HandleFunc("/questionnaires/{id}/submit", s.submitQuestionnaire).Methods(http.MethodPost)
	member.HandleFunc("/questionnaires/{id}/submit-government", s.submitGovernment).Methods(http.MethodPost)
}

func (s *server) listQuestionnaires(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := s.Questionnaires.List(r.Context(), u)
	s.reply(w, r, http.StatusOK, out, err)
}

// myResponses 返回当前用户提交过的问卷答复。
func (s *server) myResponses(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.FromContext(r.Context())
	out, err := s.Store.ListUserResponses(r.Context(), sess.UserID)
	s.reply(w, r, http.StatusOK, out, err)
}

func (s *server) createQuestionnaire(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var in questionnaire.Input
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := s.Questionnaires.Create(r.Context(), u, in)
	s.reply(w, r, http.StatusCreated, out, err)
}

func (s *server) updateQuestionnaire(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var in questionnaire.Input
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := s.Questionnaires.Update(r.Context(), u, mux.Vars(r)["id"], in)
	s.reply(w, r, http.StatusOK, out, err)
}

func (s *server) deleteQuestionnaire(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.reply(w, r, http.StatusOK, deleted, s.Questionnaires.Delete(r.Context(), u, mux.Vars(r)["id"]))
}

func (s *server) questionnaireResponses(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := s.Questionnaires.Responses(r.Context(), u, mux.Vars(r)["id"])
	s.reply(w, r, http.StatusOK, out, err)
}

func (s *server) getQuestionnaire(w http.ResponseWriter, r *http.Request) {
	out, err := s.Questionnaires.Get(r.Context(), mux.Vars(r)["id"])
	s.reply(w, r, http.StatusOK, out, err)
}

func (s *server) submitQuestionnaire(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req submitRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Answers == nil {
		s.fail(w, r, apperr.Validation(msgAnswersRequired))
		return
	}
	resp, err := s.Questionnaires.Submit(r.Context(), u, mux.Vars(r)["id"], req.Answers)
	s.reply(w, r, http.StatusCreated, map[string]any{"message": msgSubmitted, "response": resp}, err)
}

func (s *server) submitGovernment(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var in questionnaire.GovernmentInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	resp, err := s.Questionnaires.SubmitGovernment(r.Context(), u, mux.Vars(r)["id"], in)
	s.reply(w, r, http.StatusCreated, map[string]any{"message": questionnaire.MsgGovernmentSent, "response": resp}, err)
}
