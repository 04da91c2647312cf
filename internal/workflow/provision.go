package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"talento/internal/model"
	"talento/internal/storage"
)

const (
	defaultFirstName = "Нэргүй"
	defaultLastName  = "Овоггүй"
	defaultPhone     = "00000000"
	defaultAddress   = "Тодорхойлоогүй"
)

// ProvisionStore 自动建档所需的存储操作。
type ProvisionStore interface {
	GetEmployeeByEmail(ctx context.Context, email string) (*model.Employee, error)
	EnsureDepartment(ctx context.Context, defaults model.Department) (*model.Department, error)
	EnsurePosition(ctx context.Context, defaults model.Position) (*model.Position, error)
	EmployeeCodeExists(ctx context.Context, code string) (bool, error)
	CreateEmployee(ctx context.Context, e *model.Employee) error
}

// SplitName 按空白拆分显示名：首段为名，其余以单个空格连接为姓。
func SplitName(name string) (first, last string) {
	parts := strings.Fields(name)
	first, last = defaultFirstName, defaultLastName
	if len(parts) > 0 {
		first = parts[0]
	}
	if len(parts) > 1 {
		last = strings.Join(parts[1:], " ")
	}
	return first, last
}

// Provision 确保申请人存在员工档案。邮箱为空或档案已存在时返回 (nil, nil)。
func Provision(ctx context.Context, st ProvisionStore, user *model.User, now time.Time) (*model.Employee, error) {
	if user == nil || user.Email == "" {
		return nil, nil
	}

	existing, err := st.GetEmployeeByEmail(ctx, user.Email)
	if err == nil && existing != nil {
		return nil, nil
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("lookup employee: %w", err)
	}

	dept, err := st.EnsureDepartment(ctx, model.Department{
		Name:        "Тодорхойгүй",
		Description: "Анхны автоматаар үүсгэсэн хэлтэс",
		Code:        model.UnassignedCode,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure department: %w", err)
	}
	pos, err := st.EnsurePosition(ctx, model.Position{
		Title:        "Тодорхойгүй",
		Description:  "Анхны автоматаар үүсгэсэн албан тушаал",
		Code:         model.UnassignedCode,
		DepartmentID: dept.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure position: %w", err)
	}

	code, err := nextEmployeeCode(ctx, st, now)
	if err != nil {
		return nil, err
	}

	first, last := SplitName(user.Name)
	phone := user.PhoneNumber
	if phone == "" {
		phone = defaultPhone
	}

	emp := &model.Employee{
		EmployeeID:   code,
		FirstName:    first,
		LastName:     last,
		Email:        user.Email,
		Phone:        phone,
		DateOfBirth:  time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Gender:       model.GenderUnknown,
		Address:      defaultAddress,
		DepartmentID: dept.ID,
		PositionID:   pos.ID,
		Status:       model.EmployeeActive,
		HireDate:     now,
	}
	if err := st.CreateEmployee(ctx, emp); err != nil {
		return nil, fmt.Errorf("create employee: %w", err)
	}
	return emp, nil
}

// nextEmployeeCode 生成 EMP-<毫秒时间戳>，同一毫秒内冲突时顺延。
func nextEmployeeCode(ctx context.Context, st ProvisionStore, now time.Time) (string, error) {
	ms := now.UnixMilli()
	for i := 0; i < 1000; i++ {
		code := fmt.Sprintf("EMP-%d", ms+int64(i))
		taken, err := st.EmployeeCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("no free employee code near %d", ms)
}
