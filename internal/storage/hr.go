package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"talento/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnsureDepartment 按编码获取部门，不存在时以 defaults 创建。
func (s *Store) EnsureDepartment(ctx context.Context, defaults model.Department) (*model.Department, error) {
	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Omit(clause.Associations).Create(&defaults)
	if tx.Error != nil {
		return nil, translate("upsert department", tx.Error)
	}
	return s.GetDepartmentByCode(ctx, defaults.Code)
}

// EnsurePosition 按编码获取职位，不存在时以 defaults 创建。
func (s *Store) EnsurePosition(ctx context.Context, defaults model.Position) (*model.Position, error) {
	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Omit(clause.Associations).Create(&defaults)
	if tx.Error != nil {
		return nil, translate("upsert position", tx.Error)
	}
	return s.GetPositionByCode(ctx, defaults.Code)
}

// CreateDepartment 新增部门。
func (s *Store) CreateDepartment(ctx context.Context, d *model.Department) error {
	return translate("create department", s.db.WithContext(ctx).Omit(clause.Associations).Create(d).Error)
}

// GetDepartment 获取部门及其职位。
func (s *Store) GetDepartment(ctx context.Context, id string) (*model.Department, error) {
	return first[model.Department](ctx, s.db, "get department", "id = ?", []any{id}, "Positions")
}

// GetDepartmentByCode 按编码获取部门。
func (s *Store) GetDepartmentByCode(ctx context.Context, code string) (*model.Department, error) {
	return first[model.Department](ctx, s.db, "get department by code", "code = ?", []any{code})
}

// ListDepartments 返回全部部门，按名称排序。
func (s *Store) ListDepartments(ctx context.Context) ([]model.Department, error) {
	var out []model.Department
	if err := s.db.WithContext(ctx).Preload("Positions").Order("name ASC").Find(&out).Error; err != nil {
		return nil, translate("list departments", err)
	}
	return out, nil
}

// SaveDepartment 更新部门。
func (s *Store) SaveDepartment(ctx context.Context, d *model.Department) error {
	return save(ctx, s.db, "save department", d)
}

// DeleteDepartment 删除部门。
func (s *Store) DeleteDepartment(ctx context.Context, id string) error {
	return deleteByID[model.Department](ctx, s.db, "delete department", id)
}

// DepartmentUsage 返回部门下的员工数与职位数。
func (s *Store) DepartmentUsage(ctx context.Context, id string) (employees, positions int64, err error) {
	if err = s.db.WithContext(ctx).Model(&model.Employee{}).Where("department_id = ?", id).Count(&employees).Error; err != nil {
		return 0, 0, translate("count department employees", err)
	}
	if err = s.db.WithContext(ctx).Model(&model.Position{}).Where("department_id = ?", id).Count(&positions).Error; err != nil {
		return 0, 0, translate("count department positions", err)
	}
	return employees, positions, nil
}

// CreatePosition 新增职位。
func (s *Store) CreatePosition(ctx context.Context, p *model.Position) error {
	return translate("create position", s.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error)
}

// GetPosition 获取职位及所属部门。
func (s *Store) GetPosition(ctx context.Context, id string) (*model.Position, error) {
	return first[model.Position](ctx, s.db, "get position", "id = ?", []any{id}, "Department")
}

// GetPositionByCode 按编码获取职位。
func (s *Store) GetPositionByCode(ctx context.Context, code string) (*model.Position, error) {
	return first[model.Position](ctx, s.db, "get position by code", "code = ?", []any{code})
}

// ListPositions 返回职位列表，departmentID 非空时按部门过滤。
func (s *Store) ListPositions(ctx context.Context, departmentID string) ([]model.Position, error) {
	var out []model.Position
	q := s.db.WithContext(ctx).Preload("Department").Order("title ASC")
	if departmentID != "" {
		q = q.Where("department_id = ?", departmentID)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, translate("list positions", err)
	}
	return out, nil
}

// SavePosition 更新职位。
func (s *Store) SavePosition(ctx context.Context, p *model.Position) error {
	return save(ctx, s.db, "save position", p)
}

// DeletePosition 删除职位。
func (s *Store) DeletePosition(ctx context.Context, id string) error {
	return deleteByID[model.Position](ctx, s.db, "delete position", id)
}

// CountPositionEmployees 统计使用该职位的员工数。
func (s *Store) CountPositionEmployees(ctx context.Context, id string) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Employee{}).Where("position_id = ?", id).Count(&n).Error; err != nil {
		return 0, translate("count position employees", err)
	}
	return n, nil
}

// EmployeeQuery 员工列表筛选条件。
type EmployeeQuery struct {
	DepartmentID string
	PositionID   string
	Status       model.EmployeeStatus
	Search       string
}

// CreateEmployee 新增员工档案。
func (s *Store) CreateEmployee(ctx context.Context, e *model.Employee) error {
	return translate("create employee", s.db.WithContext(ctx).Omit(clause.Associations).Create(e).Error)
}

// GetEmployee 获取员工及其部门、职位、上级。
func (s *Store) GetEmployee(ctx context.Context, id string) (*model.Employee, error) {
	return first[model.Employee](ctx, s.db, "get employee", "id = ?", []any{id}, "Department", "Position", "Manager")
}

// GetEmployeeByEmail 按邮箱精确匹配员工（区分大小写）。
func (s *Store) GetEmployeeByEmail(ctx context.Context, email string) (*model.Employee, error) {
	return first[model.Employee](ctx, s.db, "get employee by email", "email = ?", []any{email})
}

// EmployeeCodeExists 判断业务编号是否已被占用。
func (s *Store) EmployeeCodeExists(ctx context.Context, code string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Employee{}).Where("employee_id = ?", code).Count(&n).Error; err != nil {
		return false, translate("check employee code", err)
	}
	return n > 0, nil
}

// ListEmployees 返回员工列表，按创建时间倒序。
func (s *Store) ListEmployees(ctx context.Context, q EmployeeQuery) ([]model.Employee, error) {
	var out []model.Employee
	db := s.db.WithContext(ctx).Preload("Department").Preload("Position").Order("created_at DESC")
	if q.DepartmentID != "" {
		db = db.Where("department_id = ?", q.DepartmentID)
	}
	if q.PositionID != "" {
		db = db.Where("position_id = ?", q.PositionID)
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		like := fmt.Sprintf("%%%s%%", strings.ToLower(term))
		db = db.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(employee_id) LIKE ?", like, like, like, like)
	}
	if err := db.Find(&out).Error; err != nil {
		return nil, translate("list employees", err)
	}
	return out, nil
}

// SaveEmployee 更新员工档案。
func (s *Store) SaveEmployee(ctx context.Context, e *model.Employee) error {
	return save(ctx, s.db, "save employee", e)
}

// DeleteEmployee 删除员工及其合同、决定与奖惩记录。
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("employee_id = ?", id).Delete(&model.EmploymentContract{}).Error; err != nil {
			return translate("delete employee contracts", err)
		}
		if err := tx.Where("employee_id = ?", id).Delete(&model.Decision{}).Error; err != nil {
			return translate("delete employee decisions", err)
		}
		if err := tx.Where("employee_id = ?", id).Delete(&model.EmployeeRecord{}).Error; err != nil {
			return translate("delete employee records", err)
		}
		if err := tx.Model(&model.Employee{}).Where("manager_id = ?", id).Update("manager_id", nil).Error; err != nil {
			return translate("detach subordinates", err)
		}
		return deleteByID[model.Employee](ctx, tx, "delete employee", id)
	})
}

// CountEmployees 按状态统计员工，status 为空时统计全部。
func (s *Store) CountEmployees(ctx context.Context, status model.EmployeeStatus) (int64, error) {
	var n int64
	q := s.db.WithContext(ctx).Model(&model.Employee{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, translate("count employees", err)
	}
	return n, nil
}

// CreateContract 新增合同，并将该员工其余 ACTIVE 合同置为 EXPIRED。
func (s *Store) CreateContract(ctx context.Context, c *model.EmploymentContract) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.EmploymentContract{}).
			Where("employee_id = ? AND status = ?", c.EmployeeID, model.ContractActive).
			Update("status", model.ContractExpired).Error; err != nil {
			return translate("expire previous contracts", err)
		}
		return translate("create contract", tx.Omit(clause.Associations).Create(c).Error)
	})
}

// GetContract 获取合同及员工。
func (s *Store) GetContract(ctx context.Context, id string) (*model.EmploymentContract, error) {
	return first[model.EmploymentContract](ctx, s.db, "get contract", "id = ?", []any{id}, "Employee")
}

// ListContracts 返回合同列表，可按员工与状态过滤。
func (s *Store) ListContracts(ctx context.Context, employeeID string, status model.ContractStatus) ([]model.EmploymentContract, error) {
	var out []model.EmploymentContract
	q := s.db.WithContext(ctx).Preload("Employee").Order("start_date DESC")
	if employeeID != "" {
		q = q.Where("employee_id = ?", employeeID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, translate("list contracts", err)
	}
	return out, nil
}

// SaveContract 更新合同。
func (s *Store) SaveContract(ctx context.Context, c *model.EmploymentContract) error {
	return save(ctx, s.db, "save contract", c)
}

// DeleteContract 删除合同。
func (s *Store) DeleteContract(ctx context.Context, id string) error {
	return deleteByID[model.EmploymentContract](ctx, s.db, "delete contract", id)
}

// ExpireContracts 将结束日期早于 now 的 ACTIVE 合同置为 EXPIRED，返回影响行数。
func (s *Store) ExpireContracts(ctx context.Context, now time.Time) (int64, error) {
	tx := s.db.WithContext(ctx).Model(&model.EmploymentContract{}).
		Where("status = ? AND end_date IS NOT NULL AND end_date < ?", model.ContractActive, now).
		Update("status", model.ContractExpired)
	if tx.Error != nil {
		return 0, translate("expire contracts", tx.Error)
	}
	return tx.RowsAffected, nil
}

// CreateDecision 新增人事决定。
func (s *Store) CreateDecision(ctx context.Context, d *model.Decision) error {
	return translate("create decision", s.db.WithContext(ctx).Omit(clause.Associations).Create(d).Error)
}

// GetDecision 获取人事决定及员工。
func (s *Store) GetDecision(ctx context.Context, id string) (*model.Decision, error) {
	return first[model.Decision](ctx, s.db, "get decision", "id = ?", []any{id}, "Employee")
}

// ListDecisions 返回人事决定列表，可按员工与类型过滤。
func (s *Store) ListDecisions(ctx context.Context, employeeID string, typ model.DecisionType) ([]model.Decision, error) {
	var out []model.Decision
	q := s.db.WithContext(ctx).Preload("Employee").Order("decision_date DESC")
	if employeeID != "" {
		q = q.Where("employee_id = ?", employeeID)
	}
	if typ != "" {
		q = q.Where("type = ?", typ)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, translate("list decisions", err)
	}
	return out, nil
}

// SaveDecision 更新人事决定。
func (s *Store) SaveDecision(ctx context.Context, d *model.Decision) error {
	return save(ctx, s.db, "save decision", d)
}

// DeleteDecision 删除人事决定。
func (s *Store) DeleteDecision(ctx context.Context, id string) error {
	return deleteByID[model.Decision](ctx, s.db, "delete decision", id)
}

// CreateRecord 新增奖惩记录。
func (s *Store) CreateRecord(ctx context.Context, r *model.EmployeeRecord) error {
	return translate("create employee record", s.db.WithContext(ctx).Omit(clause.Associations).Create(r).Error)
}

// GetRecord 按类别获取奖惩记录及员工。
func (s *Store) GetRecord(ctx context.Context, kind model.RecordKind, id string) (*model.EmployeeRecord, error) {
	return first[model.EmployeeRecord](ctx, s.db, "get employee record", "id = ? AND kind = ?", []any{id, kind}, "Employee")
}

// ListRecords 返回某类奖惩记录，按日期倒序；employeeID 非空时按员工过滤。
func (s *Store) ListRecords(ctx context.Context, kind model.RecordKind, employeeID string) ([]model.EmployeeRecord, error) {
	var out []model.EmployeeRecord
	q := s.db.WithContext(ctx).Preload("Employee").Where("kind = ?", kind).Order("date DESC")
	if employeeID != "" {
		q = q.Where("employee_id = ?", employeeID)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, translate("list employee records", err)
	}
	return out, nil
}

// SaveRecord 更新奖惩记录。
func (s *Store) SaveRecord(ctx context.Context, r *model.EmployeeRecord) error {
	return save(ctx, s.db, "save employee record", r)
}

// DeleteRecord 删除奖惩记录。
func (s *Store) DeleteRecord(ctx context.Context, kind model.RecordKind, id string) error {
	tx := s.db.WithContext(ctx).Where("id = ? AND kind = ?", id, kind).Delete(&model.EmployeeRecord{})
	if tx.Error != nil {
		return translate("delete employee record", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("delete employee record: %w", ErrNotFound)
	}
	return nil
}
