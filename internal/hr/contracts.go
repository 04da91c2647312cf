package hr

import (
	"context"
	"errors"
	"strings"
	"time"

	"talento/internal/apperr"
	"talento/internal/model"
	"talento/internal/schema"
	"talento/internal/storage"
	"talento/internal/workflow"
)

const (
	msgContractNotFound = "Гэрээ олдсонгүй"
	msgContractTaken    = "Энэ гэрээний дугаар өмнө нь ашиглагдсан байна"
	msgHolderNotFound   = "Ажилтны эсвэл хэрэглэгчийн олдсонгүй"
)

// ContractInput 合同请求。EmployeeID 也可以是求职者账号 ID，此时会先为其建档。
type ContractInput struct {
	ContractNumber  string  `json:"contractNumber" validate:"required"`
	EmployeeID      string  `json:"employeeId" validate:"required"`
	ContractType    string  `json:"contractType" validate:"required,oneof=FULL_TIME PART_TIME CONTRACT INTERNSHIP"`
	StartDate       string  `json:"startDate" validate:"required"`
	EndDate         string  `json:"endDate"`
	Salary          float64 `json:"salary" validate:"gt=0"`
	Currency        string  `json:"currency" validate:"omitempty,len=3"`
	ProbationPeriod *int    `json:"probationPeriod" validate:"omitempty,gte=0"`
	WorkSchedule    string  `json:"workSchedule"`
	Benefits        string  `json:"benefits"`
	Terms           string  `json:"terms"`
	DocumentURL     string  `json:"documentUrl"`
	Status          string  `json:"status" validate:"omitempty,oneof=ACTIVE EXPIRED TERMINATED CANCELLED"`
}

// CreateContract 新增合同；同一员工原有的 ACTIVE 合同自动置为 EXPIRED。
func (s *Service) CreateContract(ctx context.Context, in ContractInput) (*model.EmploymentContract, error) {
	if err := schema.Check(&in, msgRequired); err != nil {
		return nil, err
	}
	start, end, err := contractDates(in)
	if err != nil {
		return nil, err
	}

	var id string
	err = s.store.Transaction(ctx, func(tx *storage.Store) error {
		emp, err := s.resolveHolder(ctx, tx, in.EmployeeID)
		if err != nil {
			return err
		}
		c := &model.EmploymentContract{EmployeeID: emp.ID}
		applyContract(c, in, start, end)
		if c.Status == "" {
			c.Status = model.ContractActive
		}
		if err := tx.CreateContract(ctx, c); err != nil {
			return duplicate(err, msgContractTaken)
		}
		id = c.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("contract_id", id).Str("number", in.ContractNumber).Msg("contract created")
	return s.store.GetContract(ctx, id)
}

// resolveHolder 先按员工 ID 查找；找不到时按账号 ID 查找并自动建档，已有同邮箱档案则直接复用。
func (s *Service) resolveHolder(ctx context.Context, tx *storage.Store, id string) (*model.Employee, error) {
	emp, err := tx.GetEmployee(ctx, id)
	if err == nil {
		return emp, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	user, err := tx.GetUser(ctx, id)
	if err != nil {
		return nil, notFound(err, msgHolderNotFound)
	}
	if user.Email == "" {
		return nil, apperr.NotFound(msgHolderNotFound)
	}
	emp, err = workflow.Provision(ctx, tx, user, s.now())
	if err != nil {
		return nil, err
	}
	if emp != nil {
		s.logger.Info().Str("user_id", user.ID).Str("employee_id", emp.EmployeeID).Msg("employee provisioned for contract")
		return emp, nil
	}
	emp, err = tx.GetEmployeeByEmail(ctx, user.Email)
	if err != nil {
		return nil, notFound(err, msgHolderNotFound)
	}
	return emp, nil
}

// GetContract 获取合同。
func (s *Service) GetContract(ctx context.Context, id string) (*model.EmploymentContract, error) {
	c, err := s.store.GetContract(ctx, id)
	if err != nil {
		return nil, notFound(err, msgContractNotFound)
	}
	return c, nil
}

// ListContracts 合同列表，未知状态忽略。
func (s *Service) ListContracts(ctx context.Context, employeeID, status string) ([]model.EmploymentContract, error) {
	st := model.ContractStatus(strings.ToUpper(status))
	switch st {
	case model.ContractActive, model.ContractExpired, model.ContractTerminated, model.ContractCancelled:
	default:
		st = ""
	}
	return s.store.ListContracts(ctx, employeeID, st)
}

// UpdateContract 更新合同，持有人不可变更。
func (s *Service) UpdateContract(ctx context.Context, id string, in ContractInput) (*model.EmploymentContract, error) {
	if err := schema.Check(&in, msgRequired); err != nil {
		return nil, err
	}
	start, end, err := contractDates(in)
	if err != nil {
		return nil, err
	}
	c, err := s.store.GetContract(ctx, id)
	if err != nil {
		return nil, notFound(err, msgContractNotFound)
	}
	if in.EmployeeID != c.EmployeeID {
		return nil, apperr.Validation("Гэрээний ажилтныг өөрчлөх боломжгүй")
	}
	applyContract(c, in, start, end)
	c.Employee = nil
	if err := s.store.SaveContract(ctx, c); err != nil {
		return nil, duplicate(err, msgContractTaken)
	}
	return s.store.GetContract(ctx, id)
}

// DeleteContract 删除合同。
func (s *Service) DeleteContract(ctx context.Context, id string) error {
	return notFound(s.store.DeleteContract(ctx, id), msgContractNotFound)
}

func contractDates(in ContractInput) (time.Time, *time.Time, error) {
	start, err := schema.ParseDate(in.StartDate)
	if err != nil {
		return time.Time{}, nil, badDate(err)
	}
	end, err := schema.ParseOptionalDate(in.EndDate)
	if err != nil {
		return time.Time{}, nil, badDate(err)
	}
	if end != nil && end.Before(start) {
		return time.Time{}, nil, apperr.Validation("Дуусах огноо эхлэх огнооноос өмнө байж болохгүй")
	}
	return start, end, nil
}

func applyContract(c *model.EmploymentContract, in ContractInput, start time.Time, end *time.Time) {
	c.ContractNumber = in.ContractNumber
	c.ContractType = model.ContractType(in.ContractType)
	c.StartDate = start
	c.EndDate = end
	c.Salary = in.Salary
	c.Currency = strings.ToUpper(in.Currency)
	if c.Currency == "" {
		c.Currency = "MNT"
	}
	c.ProbationMonths = in.ProbationPeriod
	c.WorkSchedule = in.WorkSchedule
	c.Benefits = in.Benefits
	c.Terms = in.Terms
	c.DocumentURL = in.DocumentURL
	if in.Status != "" {
		c.Status = model.ContractStatus(in.Status)
	}
}
