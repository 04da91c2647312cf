package hr

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"talento/internal/apperr"
	"talento/internal/model"
	"talento/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, *storage.Store) {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "hr.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc := New(store, zerolog.New(io.Discard))
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC) }
	return svc, store
}

func seedOrg(t *testing.T, svc *Service) (*model.Department, *model.Position) {
	t.Helper()
	ctx := context.Background()
	dept, err := svc.CreateDepartment(ctx, DepartmentInput{Name: "Engineering", Code: "ENG"})
	require.NoError(t, err)
	pos, err := svc.CreatePosition(ctx, PositionInput{Title: "Developer", Code: "DEV", DepartmentID: dept.ID})
	require.NoError(t, err)
	return dept, pos
}

func employeeInput(code, email string, dept *model.Department, pos *model.Position) EmployeeInput {
	return EmployeeInput{
		EmployeeID:   code,
		FirstName:    "Saraa",
		LastName:     "Bold",
		Email:        email,
		Phone:        "99112233",
		DateOfBirth:  "1995-04-12",
		Gender:       "FEMALE",
		Address:      "Ulaanbaatar",
		HireDate:     "2024-01-15",
		DepartmentID: dept.ID,
		PositionID:   pos.ID,
	}
}

func TestDepartmentCodeUniqueness(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	dept, err := svc.CreateDepartment(ctx, DepartmentInput{Name: "Sales", Code: "SAL"})
	require.NoError(t, err)

	_, err = svc.CreateDepartment(ctx, DepartmentInput{Name: "Other", Code: "SAL"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	other, err := svc.CreateDepartment(ctx, DepartmentInput{Name: "Support", Code: "SUP"})
	require.NoError(t, err)
	_, err = svc.UpdateDepartment(ctx, other.ID, DepartmentInput{Name: "Support", Code: "SAL"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	updated, err := svc.UpdateDepartment(ctx, dept.ID, DepartmentInput{Name: "Sales & Marketing", Code: "SAL"})
	require.NoError(t, err, "keeping its own code is allowed")
	assert.Equal(t, "Sales & Marketing", updated.Name)

	_, err = svc.CreateDepartment(ctx, DepartmentInput{Name: "No code"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestDeleteDepartmentInUse(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	dept, pos := seedOrg(t, svc)

	err := svc.DeleteDepartment(ctx, dept.ID)
	require.Error(t, err)
	assert.Equal(t, "Энэ хэлтэсэд албан тушаалууд байгаа тул устгах боломжгүй", apperr.Message(err, ""))

	_, err = svc.CreateEmployee(ctx, employeeInput("E-1", "saraa@x.com", dept, pos))
	require.NoError(t, err)
	err = svc.DeleteDepartment(ctx, dept.ID)
	assert.Equal(t, "Энэ хэлтэсэд ажилтнууд байгаа тул устгах боломжгүй", apperr.Message(err, ""))

	err = svc.DeletePosition(ctx, pos.ID)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	empty, err := svc.CreateDepartment(ctx, DepartmentInput{Name: "Empty", Code: "EMP"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteDepartment(ctx, empty.ID))
	assert.True(t, apperr.Is(svc.DeleteDepartment(ctx, empty.ID), apperr.KindNotFound))
}

func TestPositionValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	dept, _ := seedOrg(t, svc)

	_, err := svc.CreatePosition(ctx, PositionInput{Title: "Ghost", Code: "GH", DepartmentID: "missing"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	low, high := 5000.0, 1000.0
	_, err = svc.CreatePosition(ctx, PositionInput{Title: "QA", Code: "QA", DepartmentID: dept.ID, MinSalary: &low, MaxSalary: &high})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.CreatePosition(ctx, PositionInput{Title: "Dup", Code: "DEV", DepartmentID: dept.ID})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	list, err := svc.ListPositions(ctx, dept.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestEmployeeLifecycle(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	dept, pos := seedOrg(t, svc)

	emp, err := svc.CreateEmployee(ctx, employeeInput("E-1", "saraa@x.com", dept, pos))
	require.NoError(t, err)
	require.NotNil(t, emp.Department)
	assert.Equal(t, "ENG", emp.Department.Code)
	assert.Equal(t, model.EmployeeActive, emp.Status)

	_, err = svc.CreateEmployee(ctx, employeeInput("E-1", "other@x.com", dept, pos))
	assert.True(t, apperr.Is(err, apperr.KindValidation), "duplicate employee code")
	_, err = svc.CreateEmployee(ctx, employeeInput("E-2", "saraa@x.com", dept, pos))
	assert.True(t, apperr.Is(err, apperr.KindValidation), "duplicate email")

	in := employeeInput("E-3", "bad-date@x.com", dept, pos)
	in.HireDate = "yesterday"
	_, err = svc.CreateEmployee(ctx, in)
	assert.Equal(t, msgBadDate, apperr.Message(err, ""))

	_, err = svc.UpdateEmployee(ctx, emp.ID, EmployeeUpdate{FirstName: "Saraa", LastName: "Bold", Email: "saraa@x.com", ManagerID: emp.ID})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	updated, err := svc.UpdateEmployee(ctx, emp.ID, EmployeeUpdate{FirstName: "Saraa", LastName: "Bat", Email: "saraa@x.com", Status: "ON_LEAVE"})
	require.NoError(t, err)
	assert.Equal(t, "Bat", updated.LastName)
	assert.Equal(t, model.EmployeeOnLeave, updated.Status)
	assert.Equal(t, dept.ID, updated.DepartmentID, "empty department keeps the current one")

	list, err := svc.ListEmployees(ctx, storage.EmployeeQuery{Status: "bogus"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteEmployee(ctx, emp.ID))
	_, err = svc.GetEmployee(ctx, emp.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestContractForUserProvisionsEmployee(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	user := &model.User{Name: "Tuya Gan Bold", Email: "tuya@x.com", Role: model.RoleJobSeeker}
	require.NoError(t, store.CreateUser(ctx, user))

	c, err := svc.CreateContract(ctx, ContractInput{
		ContractNumber: "C-001",
		EmployeeID:     user.ID,
		ContractType:   "FULL_TIME",
		StartDate:      "2024-05-01",
		Salary:         2500000,
	})
	require.NoError(t, err)
	require.NotNil(t, c.Employee)
	assert.Equal(t, "tuya@x.com", c.Employee.Email)
	assert.Equal(t, "Gan Bold", c.Employee.LastName)
	assert.Equal(t, "MNT", c.Currency)
	assert.Equal(t, model.ContractActive, c.Status)

	second, err := svc.CreateContract(ctx, ContractInput{
		ContractNumber: "C-002",
		EmployeeID:     user.ID,
		ContractType:   "PART_TIME",
		StartDate:      "2024-06-01",
		Salary:         1000000,
	})
	require.NoError(t, err)
	assert.Equal(t, c.EmployeeID, second.EmployeeID, "existing employee is reused by email")

	first, err := svc.GetContract(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractExpired, first.Status)

	_, err = svc.CreateContract(ctx, ContractInput{
		ContractNumber: "C-002",
		EmployeeID:     c.EmployeeID,
		ContractType:   "FULL_TIME",
		StartDate:      "2024-07-01",
		Salary:         1,
	})
	assert.Equal(t, msgContractTaken, apperr.Message(err, ""))

	_, err = svc.CreateContract(ctx, ContractInput{
		ContractNumber: "C-003",
		EmployeeID:     "nobody",
		ContractType:   "FULL_TIME",
		StartDate:      "2024-07-01",
		Salary:         1,
	})
	assert.Equal(t, msgHolderNotFound, apperr.Message(err, ""))

	_, err = svc.CreateContract(ctx, ContractInput{
		ContractNumber: "C-004",
		EmployeeID:     c.EmployeeID,
		ContractType:   "FULL_TIME",
		StartDate:      "2024-07-01",
		EndDate:        "2024-06-01",
		Salary:         1,
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	active, err := svc.ListContracts(ctx, c.EmployeeID, "active")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "C-002", active[0].ContractNumber)

	require.NoError(t, svc.DeleteContract(ctx, c.ID))
	assert.True(t, apperr.Is(svc.DeleteContract(ctx, c.ID), apperr.KindNotFound))
}

func TestDecisions(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	dept, pos := seedOrg(t, svc)
	emp, err := svc.CreateEmployee(ctx, employeeInput("E-1", "saraa@x.com", dept, pos))
	require.NoError(t, err)

	in := DecisionInput{
		DecisionNumber: "D-1",
		Title:          "Томилох тухай",
		Description:    "Ажилд томилох",
		Type:           "HIRING",
		EmployeeID:     emp.ID,
		DecisionDate:   "2024-05-02",
	}
	d, err := svc.CreateDecision(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, model.DecisionActive, d.Status)
	require.NotNil(t, d.Employee)

	_, err = svc.CreateDecision(ctx, in)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	missing := in
	missing.DecisionNumber = "D-2"
	missing.EmployeeID = "ghost"
	_, err = svc.CreateDecision(ctx, missing)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	in.Status = "CANCELLED"
	updated, err := svc.UpdateDecision(ctx, d.ID, in)
	require.NoError(t, err)
	assert.Equal(t, model.DecisionCancelled, updated.Status)

	list, err := svc.ListDecisions(ctx, emp.ID, "hiring")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteDecision(ctx, d.ID))
	_, err = svc.GetDecision(ctx, d.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestRewardsAndPenalties(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	dept, pos := seedOrg(t, svc)
	emp, err := svc.CreateEmployee(ctx, employeeInput("E-1", "saraa@x.com", dept, pos))
	require.NoError(t, err)

	reward, err := svc.CreateRecord(ctx, model.RecordReward, RecordInput{EmployeeID: emp.ID, Amount: 500000, Date: "2024-05-02"})
	require.NoError(t, err)
	assert.Equal(t, "Урамшуулал", reward.Type)
	assert.Equal(t, "Олгосон", reward.Status)
	require.NotNil(t, reward.Employee)
	assert.Equal(t, emp.ID, reward.Employee.ID)

	penalty, err := svc.CreateRecord(ctx, model.RecordPenalty, RecordInput{EmployeeID: emp.ID, Reason: "Хоцорсон", Date: "2024-05-03"})
	require.NoError(t, err)
	assert.Equal(t, "Анхааруулга", penalty.Type)

	_, err = svc.CreateRecord(ctx, model.RecordPenalty, RecordInput{EmployeeID: "ghost", Date: "2024-05-03"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = svc.CreateRecord(ctx, model.RecordPenalty, RecordInput{EmployeeID: emp.ID, Date: "yesterday"})
	assert.Equal(t, msgBadDate, apperr.Message(err, ""))
	_, err = svc.CreateRecord(ctx, model.RecordReward, RecordInput{EmployeeID: emp.ID, Amount: -1, Date: "2024-05-03"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	rewards, err := svc.ListRecords(ctx, model.RecordReward, "")
	require.NoError(t, err)
	require.Len(t, rewards, 1)
	assert.Equal(t, reward.ID, rewards[0].ID)

	_, err = svc.GetRecord(ctx, model.RecordReward, penalty.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "kinds do not mix")

	updated, err := svc.UpdateRecord(ctx, model.RecordPenalty, penalty.ID, RecordInput{EmployeeID: emp.ID, Type: "Сануулга", Status: "Хэрэгжүүлсэн", Date: "2024-05-04"})
	require.NoError(t, err)
	assert.Equal(t, "Хэрэгжүүлсэн", updated.Status)
	assert.Equal(t, "Сануулга", updated.Type)

	require.NoError(t, svc.DeleteEmployee(ctx, emp.ID))
	penalties, err := svc.ListRecords(ctx, model.RecordPenalty, "")
	require.NoError(t, err)
	assert.Empty(t, penalties, "records go with the employee")
	assert.True(t, apperr.Is(svc.DeleteRecord(ctx, model.RecordReward, reward.ID), apperr.KindNotFound))
}
