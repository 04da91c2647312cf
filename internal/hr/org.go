package hr

import (
	"context"
	"errors"

	"talento/internal/apperr"
	"talento/internal/model"
	"talento/internal/schema"
	"talento/internal/storage"
)

// DepartmentInput 部门请求。
type DepartmentInput struct {
	Name        string `json:"name" validate:"required"`
	Code        string `json:"code" validate:"required"`
	Description string `json:"description"`
}

// PositionInput 职位请求。
type PositionInput struct {
	Title        string   `json:"title" validate:"required"`
	Code         string   `json:"code" validate:"required"`
	DepartmentID string   `json:"departmentId" validate:"required"`
	Description  string   `json:"description"`
	MinSalary    *float64 `json:"minSalary" validate:"omitempty,gte=0"`
	MaxSalary    *float64 `json:"maxSalary" validate:"omitempty,gte=0"`
	Requirements string   `json:"requirements"`
}

const msgDeptNotFound = "Хэлтэс олдсонгүй"

// CreateDepartment 新增部门，编码唯一。
func (s *Service) CreateDepartment(ctx context.Context, in DepartmentInput) (*model.Department, error) {
	if err := schema.Check(&in, "Нэр болон код заавал оруулах шаардлагатай"); err != nil {
		return nil, err
	}
	if err := codeFree(ctx, s.store.GetDepartmentByCode, in.Code, "", "Энэ код өмнө нь ашиглагдсан байна"); err != nil {
		return nil, err
	}
	d := &model.Department{Name: in.Name, Code: in.Code, Description: in.Description}
	if err := s.store.CreateDepartment(ctx, d); err != nil {
		return nil, duplicate(err, "Энэ код өмнө нь ашиглагдсан байна")
	}
	return d, nil
}

// GetDepartment 获取部门。
func (s *Service) GetDepartment(ctx context.Context, id string) (*model.Department, error) {
	d, err := s.store.GetDepartment(ctx, id)
	if err != nil {
		return nil, notFound(err, msgDeptNotFound)
	}
	return d, nil
}

// ListDepartments 部门列表。
func (s *Service) ListDepartments(ctx context.Context) ([]model.Department, error) {
	return s.store.ListDepartments(ctx)
}

// UpdateDepartment 更新部门。
func (s *Service) UpdateDepartment(ctx context.Context, id string, in DepartmentInput) (*model.Department, error) {
	if err := schema.Check(&in, "Нэр болон код заавал оруулах шаардлагатай"); err != nil {
		return nil, err
	}
	d, err := s.store.GetDepartment(ctx, id)
	if err != nil {
		return nil, notFound(err, msgDeptNotFound)
	}
	if err := codeFree(ctx, s.store.GetDepartmentByCode, in.Code, id, "Энэ код өөр хэлтэсэд ашиглагдсан байна"); err != nil {
		return nil, err
	}
	d.Name, d.Code, d.Description = in.Name, in.Code, in.Description
	if err := s.store.SaveDepartment(ctx, d); err != nil {
		return nil, duplicate(err, "Энэ код өөр хэлтэсэд ашиглагдсан байна")
	}
	return d, nil
}

// DeleteDepartment 删除部门；仍有员工或职位时拒绝。
func (s *Service) DeleteDepartment(ctx context.Context, id string) error {
	return s.store.Transaction(ctx, func(tx *storage.Store) error {
		if _, err := tx.GetDepartment(ctx, id); err != nil {
			return notFound(err, msgDeptNotFound)
		}
		employees, positions, err := tx.DepartmentUsage(ctx, id)
		if err != nil {
			return err
		}
		if employees > 0 {
			return apperr.Validation("Энэ хэлтэсэд ажилтнууд байгаа тул устгах боломжгүй")
		}
		if positions > 0 {
			return apperr.Validation("Энэ хэлтэсэд албан тушаалууд байгаа тул устгах боломжгүй")
		}
		return tx.DeleteDepartment(ctx, id)
	})
}

// CreatePosition 新增职位，所属部门须存在。
func (s *Service) CreatePosition(ctx context.Context, in PositionInput) (*model.Position, error) {
	if err := schema.Check(&in, "Гарчиг, код болон хэлтэс заавал оруулах шаардлагатай"); err != nil {
		return nil, err
	}
	if err := salaryRange(in); err != nil {
		return nil, err
	}
	if err := codeFree(ctx, s.store.GetPositionByCode, in.Code, "", "Энэ код өмнө нь ашиглагдсан байна"); err != nil {
		return nil, err
	}
	if _, err := s.store.GetDepartment(ctx, in.DepartmentID); err != nil {
		return nil, notFound(err, msgDeptNotFound)
	}
	p := &model.Position{
		Title:        in.Title,
		Code:         in.Code,
		DepartmentID: in.DepartmentID,
		Description:  in.Description,
		MinSalary:    in.MinSalary,
		MaxSalary:    in.MaxSalary,
		Requirements: in.Requirements,
	}
	if err := s.store.CreatePosition(ctx, p); err != nil {
		return nil, duplicate(err, "Энэ код өмнө нь ашиглагдсан байна")
	}
	return s.store.GetPosition(ctx, p.ID)
}

// GetPosition 获取职位。
func (s *Service) GetPosition(ctx context.Context, id string) (*model.Position, error) {
	p, err := s.store.GetPosition(ctx, id)
	if err != nil {
		return nil, notFound(err, "Албан тушаал олдсонгүй")
	}
	return p, nil
}

// ListPositions 职位列表。
func (s *Service) ListPositions(ctx context.Context, departmentID string) ([]model.Position, error) {
	return s.store.ListPositions(ctx, departmentID)
}

// UpdatePosition 更新职位。
func (s *Service) UpdatePosition(ctx context.Context, id string, in PositionInput) (*model.Position, error) {
	if err := schema.Check(&in, "Нэр, код болон хэлтэс заавал оруулах шаардлагатай"); err != nil {
		return nil, err
	}
	if err := salaryRange(in); err != nil {
		return nil, err
	}
	p, err := s.store.GetPosition(ctx, id)
	if err != nil {
		return nil, notFound(err, "Албан тушаал олдсонгүй")
	}
	if err := codeFree(ctx, s.store.GetPositionByCode, in.Code, id, "Энэ код өөр албан тушаалд ашиглагдсан байна"); err != nil {
		return nil, err
	}
	if _, err := s.store.GetDepartment(ctx, in.DepartmentID); err != nil {
		return nil, notFound(err, msgDeptNotFound)
	}
	p.Title, p.Code, p.DepartmentID = in.Title, in.Code, in.DepartmentID
	p.Description, p.Requirements = in.Description, in.Requirements
	p.MinSalary, p.MaxSalary = in.MinSalary, in.MaxSalary
	if err := s.store.SavePosition(ctx, p); err != nil {
		return nil, duplicate(err, "Энэ код өөр албан тушаалд ашиглагдсан байна")
	}
	return s.store.GetPosition(ctx, id)
}

// DeletePosition 删除职位；仍有员工时拒绝。
func (s *Service) DeletePosition(ctx context.Context, id string) error {
	return s.store.Transaction(ctx, func(tx *storage.Store) error {
		if _, err := tx.GetPosition(ctx, id); err != nil {
			return notFound(err, "Албан тушаал олдсонгүй")
		}
		n, err := tx.CountPositionEmployees(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.Validation("Энэ албан тушаалд ажилтнууд байгаа тул устгах боломжгүй")
		}
		return tx.DeletePosition(ctx, id)
	})
}

func salaryRange(in PositionInput) error {
	if in.MinSalary != nil && in.MaxSalary != nil && *in.MinSalary > *in.MaxSalary {
		return apperr.Validation("Цалингийн доод хэмжээ дээд хэмжээнээс их байж болохгүй")
	}
	return nil
}

// codeFree 检查编码未被 selfID 以外的记录占用。
func codeFree[T interface{ *model.Department | *model.Position }](ctx context.Context, lookup func(context.Context, string) (T, error), code, selfID, msg string) error {
	found, err := lookup(ctx, code)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if recordID(found) != selfID {
		return apperr.Validation(msg)
	}
	return nil
}

func recordID(v any) string {
	switch r := v.(type) {
	case *model.Department:
		return r.ID
	case *model.Position:
		return r.ID
	}
	return ""
}
