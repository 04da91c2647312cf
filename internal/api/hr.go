package api

import (
	"net/http"
	"strings"

	"talento/internal/auth"
	"talento/internal/hr"
	"talento/internal/model"
	"talento/internal/storage"

	"github.com/gorilla/mux"
)

const msgDeleted = "Амжилттай устгагдлаа"

func (s *server) hrRoutes(api *mux.Router) {
	h := group(api, auth.RequireRole(model.RoleEmployer, model.RoleHR, model.RoleAdmin))

	h.HandleFunc("/hr/employees", s.listEmployees).Methods(http.MethodGet)
	h.HandleFunc("/hr/employees", s.createEmployee).Methods(http.MethodPost)
	h.HandleFunc("/hr/employees/{id}", s.getEmployee).Methods(http.MethodGet)
	h.HandleFunc("/hr/employees/{id}", s.updateEmployee).Methods(http.MethodPut)
	h.HandleFunc("/hr/employees/{id}", s.deleteEmployee).Methods(http.MethodDelete)

	h.HandleFunc("/hr/departments", s.listDepartments).Methods(http.MethodGet)
	h.HandleFunc("/hr/departments", s.createDepartment).Methods(http.MethodPost)
	h.HandleFunc("/hr/departments/{id}", s.getDepartment).Methods(http.MethodGet)
	h.HandleFunc("/hr/departments/{id}", s.updateDepartment).Methods(http.MethodPut)
	h.HandleFunc("/hr/departments/{id}", s.deleteDepartment).Methods(http.MethodDelete)

	h.HandleFunc("/hr/positions", s.listPositions).Methods(http.MethodGet)
	h.HandleFunc("/hr/positions", s.createPosition).Methods(http.MethodPost)
	h.HandleFunc("/hr/positions/{id}", s.getPosition).Methods(http.MethodGet)
	h.HandleFunc("/hr/positions/{id}", s.updatePosition).Methods(http.MethodPut)
	h.HandleFunc("/hr/positions/{id}", s.deletePosition).Methods(http.MethodDelete)

	h.HandleFunc("/hr/contracts", s.listContracts).Methods(http.MethodGet)
	h.HandleFunc("/hr/contracts", s.createContract).Methods(http.MethodPost)
	h.HandleFunc("/hr/contracts/{id}", s.getContract).Methods(http.MethodGet)
	h.HandleFunc("/hr/contracts/{id}", s.updateContract).Methods(http.MethodPut)
	h.HandleFunc("/hr/contracts/{id}", s.deleteContract).Methods(http.MethodDelete)

	h.HandleFunc("/hr/decisions", s.listDecisions).Methods(http.MethodGet)
	h.HandleFunc("/hr/decisions", s.createDecision).Methods(http.MethodPost)
	h.HandleFunc("/hr/decisions/{id}", s.getDecision).Methods(http.MethodGet)
	h.HandleFunc("/hr/decisions/{id}", s.updateDecision).Methods(http.MethodPut)
	h.HandleFunc("/hr/decisions/{id}", s.deleteDecision).Methods(http.MethodDelete)

	s.recordRoutes(h, "/hr/rewards", model.RecordReward)
	s.recordRoutes(h, "/hr/penalties", model.RecordPenalty)
}

// recordRoutes 奖励与处分共用一套处理函数，按 kind 区分。
func (s *server) recordRoutes(h *mux.Router, prefix string, kind model.RecordKind) {
	h.HandleFunc(prefix, func(w http.ResponseWriter, r *http.Request) {
		out, err := s.HR.ListRecords(r.Context(), kind, r.URL.Query().Get("employeeId"))
		s.reply(w, r, http.StatusOK, out, err)
	}).Methods(http.MethodGet)
	h.HandleFunc(prefix, func(w http.ResponseWriter, r *http.Request) {
		var in hr.RecordInput
		if err := decodeBody(r, &in); err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := s.HR.CreateRecord(r.Context(), kind, in)
		s.reply(w, r, http.StatusCreated, out, err)
	}).Methods(http.MethodPost)
	h.HandleFunc(prefix+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		out, err := s.HR.GetRecord(r.Context(), kind, mux.Vars(r)["id"])
		s.reply(w, r, http.StatusOK, out, err)
	}).Methods(http.MethodGet)
	h.HandleFunc(prefix+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		var in hr.RecordInput
		if err := decodeBody(r, &in); err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := s.HR.UpdateRecord(r.Context(), kind, mux.Vars(r)["id"], in)
		s.reply(w, r, http.StatusOK, out, err)
	}).Methods(http.MethodPut)
	h.HandleFunc(prefix+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.reply(w, r, http.StatusOK, deleted, s.HR.DeleteRecord(r.Context(), kind, mux.Vars(r)["id"]))
	}).Methods(http.MethodDelete)
}

var deleted = map[string]string{"message": msgDeleted}

// employees

func (s *server) listEmployees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := s.HR.ListEmployees(r.Context(), storage.EmployeeQuery{
		DepartmentID: q.Get("departmentId"),
		PositionID:   q.Get("positionId"),
		Status:       model.EmployeeStatus(strings.ToUpper(q.Get("status"))),
		Search:       q.Get("search"),
	})
	s.reply(w, r, http.StatusOK, out, err)
}

func (s *server) createEmployee(w http.ResponseWriter, r *http.Request) {
	var in hr.EmployeeInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := s.HR.CreateEmployee(r.Context(), in)
	s.reply(w, r, http.StatusCreated, out, err)
}

func (s *server) getEmployee(w http.ResponseWriter, r *http.Request) {
	out, err := s.HR.GetEmployee(r.Context(), mux.Vars(r)["id"])
	s.reply(w, r, http.StatusOK, out, err)
}

func (s *server) updateEmployee(w http.ResponseWriter, r *http.Request) {
	var in hr.EmployeeUpdate
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := s.HR.UpdateEmployee(r.Context(), mux.Vars(r)["id"], in)
	s.reply(w, r, http.StatusOK, out, err)
}

func (s *server) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	s.reply(w, r, http.StatusOK, deleted, s.HR.DeleteEmployee(r.Context(), mux.Vars(r)["id"]))
}

// departments

func (s *server) listDepartments(w http.ResponseWriter, r *http.Request) {
	out, err := s.HR.ListDepartments(r.Context())
	s.reply(w, r, http.StatusOK, out, err)
}

func (s *server) createDepartment(w http.ResponseWriter, r *http.Request) {
	var in hr.DepartmentInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := s.HR.CreateDepartment(r.Context(), in)
	s.reply(w, r, http.StatusCreated, out, err)
}

func (s *server) getDepartment(w http.ResponseWriter, r *http.Request) {
	out, err := s.HR.GetDepartment(r.Context(), mux.Vars(r)["id"])
	s.reply(w, r, http.StatusOK, out, err)
}

func (s *server) updateDepartment(w http.ResponseWriter, r *http.Request) {
	var in hr.DepartmentInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := s.HR.UpdateDepartment(r.Context(), mux.Vars(r)["id"], in)
	s.reply(w, r, http.StatusOK, out, err)
}

func (s *server) deleteDepartment(w http.ResponseWriter, r *http.Request) {
	s.reply(w, r, http.StatusOK, deleted, s.HR.DeleteDepartment(r.Context(), mux.Vars(r)["id"]))
}

// positions

func (s *server) listPositions(w http.ResponseWriter, r *http.Request) {
	out, err := s.HR.ListPositions(r.Context(), r.URL.Query().Get("departmentId"))
	s.reply(w, r, http.StatusOK, out, err)
}

func (s *server) createPosition(w http.ResponseWriter, r *http.Request) {
	var in hr.PositionInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := s.HR.CreatePosition(r.Context(), in)
	s.reply(w, r, http.StatusCreated, out, err)
}

func (s *server) getPosition(w http.ResponseWriter, r *http.Request) {
	out, err := s.HR.GetPosition(r.Context(), mux.Vars(r)["id"])
	s.reply(w, r, http.StatusOK, out, err)
}

func (s *server) updatePosition(w http.ResponseWriter, r *http.Request) {
	var in hr.PositionInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := s.HR.UpdatePosition(r.Context(), mux.Vars(r)["id"], in)
	s.reply(w, r, http.StatusOK, out, err)
}

func (s *server) deletePosition(w http.ResponseWriter, r *http.Request) {
	s.reply(w, r, http.StatusOK, deleted, s.HR.DeletePosition(r.Context(), mux.Vars(r)["id"]))
}

// contracts

func (s *server) listContracts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := s.HR.ListContracts(r.Context(), q.Get("employeeId"), q.Get("status"))
	s.reply(w, r, http.StatusOK, out, err)
}

func (s *server) createContract(w http.ResponseWriter, r *http.Request) {
	var in hr.ContractInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := s.HR.CreateContract(r.Context(), in)
	s.reply(w, r, http.StatusCreated, out, err)
}

func (s *server) getContract(w http.ResponseWriter, r *http.Request) {
	out, err := s.HR.GetContract(r.Context(), mux.Vars(r)["id"])
	s.reply(w, r, http.StatusOK, out, err)
}

func (s *server) updateContract(w http.ResponseWriter, r *http.Request) {
	var in hr.ContractInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := s.HR.UpdateContract(r.Context(), mux.Vars(r)["id"], in)
	s.reply(w, r, http.StatusOK, out, err)
}

func (s *server) deleteContract(w http.ResponseWriter, r *http.Request) {
	s.reply(w, r, http.StatusOK, deleted, s.HR.DeleteContract(r.Context(), mux.Vars(r)["id"]))
}

// decisions

func (s *server) listDecisions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := s.HR.ListDecisions(r.Context(), q.Get("employeeId"), q.Get("type"))
	s.reply(w, r, http.StatusOK, out, err)
}

func (s *server) createDecision(w http.ResponseWriter, r *http.Request) {
	var in hr.DecisionInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := s.HR.CreateDecision(r.Context(), in)
	s.reply(w, r, http.StatusCreated, out, err)
}

func (s *server) getDecision(w http.ResponseWriter, r *http.Request) {
	out, err := s.HR.GetDecision(r.Context(), mux.Vars(r)["id"])
	s.reply(w, r, http.StatusOK, out, err)
}

func (s *server) updateDecision(w http.ResponseWriter, r *http.Request) {
	var in hr.DecisionInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := s.HR.UpdateDecision(r.Context(), mux.Vars(r)["id"], in)
	s.reply(w, r, http.StatusOK, out, err)
}

func (s *server) deleteDecision(w http.ResponseWriter, r *http.Request) {
	s.reply(w, r, http.StatusOK, deleted, s.HR.DeleteDecision(r.Context(), mux.Vars(r)["id"]))
}
