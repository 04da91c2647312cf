package hr

import (
	"context"
	"errors"
	"strings"

	"talento/internal/apperr"
	"talento/internal/model"
	"talento/internal/schema"
	"talento/internal/storage"
)

// EmployeeInput 新增员工请求。
type EmployeeInput struct {
	EmployeeID       string `json:"employeeId" validate:"required"`
	FirstName        string `json:"firstName" validate:"required"`
	LastName         string `json:"lastName" validate:"required"`
	MiddleName       string `json:"middleName"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phoneNumber" validate:"required"`
	DateOfBirth      string `json:"dateOfBirth" validate:"required"`
	Gender           string `json:"gender" validate:"required,oneof=MALE FEMALE OTHER UNKNOWN"`
	Address          string `json:"address" validate:"required"`
	EmergencyContact string `json:"emergencyContact"`
	EmergencyPhone   string `json:"emergencyPhone"`
	HireDate         string `json:"hireDate" validate:"required"`
	PositionID       string `json:"positionId" validate:"required"`
	DepartmentID     string `json:"departmentId" validate:"required"`
	ManagerID        string `json:"managerId"`
}

// EmployeeUpdate 更新员工请求，空的部门/职位表示保持不变。
type EmployeeUpdate struct {
	FirstName        string `json:"firstName" validate:"required"`
	LastName         string `json:"lastName" validate:"required"`
	MiddleName       string `json:"middleName"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phoneNumber"`
	PositionID       string `json:"positionId"`
	DepartmentID     string `json:"departmentId"`
	ManagerID        string `json:"managerId"`
	Status           string `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE ON_LEAVE TERMINATED"`
	Address          string `json:"address"`
	EmergencyContact string `json:"emergencyContact"`
	EmergencyPhone   string `json:"emergencyPhone"`
	TerminationDate  string `json:"terminationDate"`
}

// CreateEmployee 手动新增员工。
func (s *Service) CreateEmployee(ctx context.Context, in EmployeeInput) (*model.Employee, error) {
	if err := schema.Check(&in, msgRequired); err != nil {
		return nil, err
	}
	dob, err := schema.ParseDate(in.DateOfBirth)
	if err != nil {
		return nil, badDate(err)
	}
	hired, err := schema.ParseDate(in.HireDate)
	if err != nil {
		return nil, badDate(err)
	}

	var id string
	err = s.store.Transaction(ctx, func(tx *storage.Store) error {
		taken, err := tx.EmployeeCodeExists(ctx, in.EmployeeID)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Validation("Энэ ажилтны дугаар өмнө нь ашиглагдсан байна")
		}
		if err := emailFree(ctx, tx, in.Email, "", "Энэ имэйл өмнө нь ашиглагдсан байна"); err != nil {
			return err
		}
		if err := checkOrg(ctx, tx, in.DepartmentID, in.PositionID); err != nil {
			return err
		}
		manager, err := checkManager(ctx, tx, in.ManagerID)
		if err != nil {
			return err
		}

		emp := &model.Employee{
			EmployeeID:       in.EmployeeID,
			FirstName:        in.FirstName,
			LastName:         in.LastName,
			MiddleName:       in.MiddleName,
			Email:            in.Email,
			Phone:            in.Phone,
			DateOfBirth:      dob,
			Gender:           model.Gender(in.Gender),
			Address:          in.Address,
			EmergencyContact: in.EmergencyContact,
			EmergencyPhone:   in.EmergencyPhone,
			DepartmentID:     in.DepartmentID,
			PositionID:       in.PositionID,
			ManagerID:        manager,
			Status:           model.EmployeeActive,
			HireDate:         hired,
		}
		if err := tx.CreateEmployee(ctx, emp); err != nil {
			return duplicate(err, "Энэ ажилтны дугаар эсвэл имэйл өмнө нь ашиглагдсан байна")
		}
		id = emp.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.store.GetEmployee(ctx, id)
}

// GetEmployee 获取员工。
func (s *Service) GetEmployee(ctx context.Context, id string) (*model.Employee, error) {
	emp, err := s.store.GetEmployee(ctx, id)
	if err != nil {
		return nil, notFound(err, "Ажилтан олдсонгүй")
	}
	return emp, nil
}

// ListEmployees 员工列表，未知状态值被忽略。
func (s *Service) ListEmployees(ctx context.Context, q storage.EmployeeQuery) ([]model.Employee, error) {
	switch q.Status {
	case model.EmployeeActive, model.EmployeeInactive, model.EmployeeOnLeave, model.EmployeeTerminated:
	default:
		q.Status = ""
	}
	return s.store.ListEmployees(ctx, q)
}

// UpdateEmployee 更新员工。
func (s *Service) UpdateEmployee(ctx context.Context, id string, in EmployeeUpdate) (*model.Employee, error) {
	if err := schema.Check(&in, "Нэр, овог, имэйл заавал оруулах шаардлагатай"); err != nil {
		return nil, err
	}
	terminated, err := schema.ParseOptionalDate(in.TerminationDate)
	if err != nil {
		return nil, badDate(err)
	}

	err = s.store.Transaction(ctx, func(tx *storage.Store) error {
		emp, err := tx.GetEmployee(ctx, id)
		if err != nil {
			return notFound(err, "Ажилтан олдсонгүй")
		}
		if err := emailFree(ctx, tx, in.Email, id, "Энэ имэйл өөр ажилтнаас ашиглагдсан байна"); err != nil {
			return err
		}

		dept, pos := emp.DepartmentID, emp.PositionID
		if in.DepartmentID != "" {
			dept = in.DepartmentID
		}
		if in.PositionID != "" {
			pos = in.PositionID
		}
		if err := checkOrg(ctx, tx, dept, pos); err != nil {
			return err
		}
		if in.ManagerID == id {
			return apperr.Validation("Ажилтан өөрийгөө удирдах боломжгүй")
		}
		manager, err := checkManager(ctx, tx, in.ManagerID)
		if err != nil {
			return err
		}

		emp.FirstName = in.FirstName
		emp.LastName = in.LastName
		emp.MiddleName = in.MiddleName
		emp.Email = in.Email
		emp.Phone = in.Phone
		emp.DepartmentID = dept
		emp.PositionID = pos
		emp.ManagerID = manager
		emp.Status = model.EmployeeStatus(in.Status)
		if emp.Status == "" {
			emp.Status = model.EmployeeActive
		}
		emp.Address = in.Address
		emp.EmergencyContact = in.EmergencyContact
		emp.EmergencyPhone = in.EmergencyPhone
		emp.TerminationDate = terminated
		if err := tx.SaveEmployee(ctx, emp); err != nil {
			return duplicate(err, "Энэ имэйл өөр ажилтнаас ашиглагдсан байна")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.store.GetEmployee(ctx, id)
}

// DeleteEmployee 删除员工及其合同、决定与奖惩记录。
func (s *Service) DeleteEmployee(ctx context.Context, id string) error {
	return notFound(s.store.DeleteEmployee(ctx, id), "Ажилтан олдсонгүй")
}

func emailFree(ctx context.Context, st *storage.Store, email, selfID, msg string) error {
	other, err := st.GetEmployeeByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if other.ID != selfID {
		return apperr.Validation(msg)
	}
	return nil
}

func checkOrg(ctx context.Context, st *storage.Store, departmentID, positionID string) error {
	if _, err := st.GetDepartment(ctx, departmentID); err != nil {
		return notFound(err, "Хэлтэс олдсонгүй")
	}
	if _, err := st.GetPosition(ctx, positionID); err != nil {
		return notFound(err, "Албан тушаал олдсонгүй")
	}
	return nil
}

func checkManager(ctx context.Context, st *storage.Store, managerID string) (*string, error) {
	managerID = strings.TrimSpace(managerID)
	if managerID == "" {
		return nil, nil
	}
	if _, err := st.GetEmployee(ctx, managerID); err != nil {
		return nil, notFound(err, "Удирдагч олдсонгүй")
	}
	return &managerID, nil
}
