package hr

import (
	"context"
	"strings"

	"talento/internal/model"
	"talento/internal/schema"
	"talento/internal/storage"
)

const msgDecisionNotFound = "Шийдвэр олдсонгүй"

// DecisionInput 人事决定请求。
type DecisionInput struct {
	DecisionNumber string `json:"decisionNumber" validate:"required"`
	Title          string `json:"title" validate:"required"`
	Description    string `json:"description" validate:"required"`
	Type           string `json:"type" validate:"required,oneof=HIRING PROMOTION TRANSFER TERMINATION SALARY_CHANGE OTHER"`
	EmployeeID     string `json:"employeeId" validate:"required"`
	DecisionDate   string `json:"decisionDate" validate:"required"`
	EffectiveDate  string `json:"effectiveDate"`
	Reason         string `json:"reason"`
	Details        string `json:"details"`
	DocumentURL    string `json:"documentUrl"`
	CreatedBy      string `json:"createdBy"`
	Status         string `json:"status" validate:"omitempty,oneof=ACTIVE CANCELLED"`
}

// CreateDecision 新增人事决定，员工须存在且编号唯一。
func (s *Service) CreateDecision(ctx context.Context, in DecisionInput) (*model.Decision, error) {
	d := &model.Decision{Status: model.DecisionActive}
	if err := s.fillDecision(ctx, s.store, d, in); err != nil {
		return nil, err
	}
	if err := s.store.CreateDecision(ctx, d); err != nil {
		return nil, duplicate(err, "Энэ шийдвэрийн дугаар өмнө нь ашиглагдсан байна")
	}
	s.logger.Info().Str("decision_id", d.ID).Str("type", string(d.Type)).Msg("decision created")
	return s.store.GetDecision(ctx, d.ID)
}

// GetDecision 获取人事决定。
func (s *Service) GetDecision(ctx context.Context, id string) (*model.Decision, error) {
	d, err := s.store.GetDecision(ctx, id)
	if err != nil {
		return nil, notFound(err, msgDecisionNotFound)
	}
	return d, nil
}

// ListDecisions 人事决定列表。
func (s *Service) ListDecisions(ctx context.Context, employeeID, typ string) ([]model.Decision, error) {
	return s.store.ListDecisions(ctx, employeeID, model.DecisionType(strings.ToUpper(typ)))
}

// UpdateDecision 更新人事决定。
func (s *Service) UpdateDecision(ctx context.Context, id string, in DecisionInput) (*model.Decision, error) {
	err := s.store.Transaction(ctx, func(tx *storage.Store) error {
		d, err := tx.GetDecision(ctx, id)
		if err != nil {
			return notFound(err, msgDecisionNotFound)
		}
		if err := s.fillDecision(ctx, tx, d, in); err != nil {
			return err
		}
		d.Employee = nil
		return duplicate(tx.SaveDecision(ctx, d), "Энэ шийдвэрийн дугаар өөр шийдвэрт ашиглагдсан байна")
	})
	if err != nil {
		return nil, err
	}
	return s.store.GetDecision(ctx, id)
}

// DeleteDecision 删除人事决定。
func (s *Service) DeleteDecision(ctx context.Context, id string) error {
	return notFound(s.store.DeleteDecision(ctx, id), msgDecisionNotFound)
}

func (s *Service) fillDecision(ctx context.Context, st *storage.Store, d *model.Decision, in DecisionInput) error {
	if err := schema.Check(&in, msgRequired); err != nil {
		return err
	}
	decided, err := schema.ParseDate(in.DecisionDate)
	if err != nil {
		return badDate(err)
	}
	effective, err := schema.ParseOptionalDate(in.EffectiveDate)
	if err != nil {
		return badDate(err)
	}
	if _, err := st.GetEmployee(ctx, in.EmployeeID); err != nil {
		return notFound(err, "Ажилтны олдсонгүй")
	}

	d.DecisionNumber = in.DecisionNumber
	d.Title = in.Title
	d.Description = in.Description
	d.Type = model.DecisionType(in.Type)
	d.EmployeeID = in.EmployeeID
	d.DecisionDate = decided
	d.EffectiveDate = effective
	d.Reason = in.Reason
	d.Details = in.Details
	d.DocumentURL = in.DocumentURL
	if in.CreatedBy != "" {
		d.CreatedBy = in.CreatedBy
	}
	if in.Status != "" {
		d.Status = model.DecisionStatus(in.Status)
	}
	return nil
}
