package hr

import (
	"context"
	"strings"

	"talento/internal/model"
	"talento/internal/schema"
)

const msgRecordNotFound = "Бүртгэл олдсонгүй"

// 界面未填写时使用的默认类型与状态。
var recordDefaults = map[model.RecordKind]struct{ typ, status string }{
	model.RecordReward:  {typ: "Урамшуулал", status: "Олгосон"},
	model.RecordPenalty: {typ: "Анхааруулга", status: "Бүртгэгдсэн"},
}

// RecordInput 奖惩记录请求。
type RecordInput struct {
	EmployeeID  string  `json:"employeeId" validate:"required"`
	Type        string  `json:"type"`
	Reason      string  `json:"reason"`
	Amount      float64 `json:"amount" validate:"gte=0"`
	Date        string  `json:"date" validate:"required"`
	Status      string  `json:"status"`
	IssuedBy    string  `json:"issuedBy"`
	OrderNumber string  `json:"orderNumber"`
}

// CreateRecord 为员工新增奖励或处分。
func (s *Service) CreateRecord(ctx context.Context, kind model.RecordKind, in RecordInput) (*model.EmployeeRecord, error) {
	rec := &model.EmployeeRecord{Kind: kind}
	if err := s.fillRecord(ctx, rec, in); err != nil {
		return nil, err
	}
	if err := s.store.CreateRecord(ctx, rec); err != nil {
		return nil, err
	}
	s.logger.Info().Str("record_id", rec.ID).Str("kind", string(kind)).Str("employee_id", rec.EmployeeID).Msg("employee record created")
	return s.store.GetRecord(ctx, kind, rec.ID)
}

// GetRecord 获取奖惩记录。
func (s *Service) GetRecord(ctx context.Context, kind model.RecordKind, id string) (*model.EmployeeRecord, error) {
	rec, err := s.store.GetRecord(ctx, kind, id)
	if err != nil {
		return nil, notFound(err, msgRecordNotFound)
	}
	return rec, nil
}

// ListRecords 奖惩记录列表。
func (s *Service) ListRecords(ctx context.Context, kind model.RecordKind, employeeID string) ([]model.EmployeeRecord, error) {
	return s.store.ListRecords(ctx, kind, employeeID)
}

// UpdateRecord 更新奖惩记录。
func (s *Service) UpdateRecord(ctx context.Context, kind model.RecordKind, id string, in RecordInput) (*model.EmployeeRecord, error) {
	rec, err := s.store.GetRecord(ctx, kind, id)
	if err != nil {
		return nil, notFound(err, msgRecordNotFound)
	}
	if err := s.fillRecord(ctx, rec, in); err != nil {
		return nil, err
	}
	rec.Employee = nil
	if err := s.store.SaveRecord(ctx, rec); err != nil {
		return nil, err
	}
	return s.store.GetRecord(ctx, kind, id)
}

// DeleteRecord 删除奖惩记录。
func (s *Service) DeleteRecord(ctx context.Context, kind model.RecordKind, id string) error {
	return notFound(s.store.DeleteRecord(ctx, kind, id), msgRecordNotFound)
}

func (s *Service) fillRecord(ctx context.Context, rec *model.EmployeeRecord, in RecordInput) error {
	if err := schema.Check(&in, msgRequired); err != nil {
		return err
	}
	date, err := schema.ParseDate(in.Date)
	if err != nil {
		return badDate(err)
	}
	if _, err := s.store.GetEmployee(ctx, in.EmployeeID); err != nil {
		return notFound(err, "Ажилтны олдсонгүй")
	}

	def := recordDefaults[rec.Kind]
	rec.EmployeeID = in.EmployeeID
	rec.Type = orDefault(in.Type, def.typ)
	rec.Status = orDefault(in.Status, def.status)
	rec.Reason = strings.TrimSpace(in.Reason)
	rec.Amount = in.Amount
	rec.Date = date
	rec.IssuedBy = in.IssuedBy
	rec.OrderNumber = in.OrderNumber
	return nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
