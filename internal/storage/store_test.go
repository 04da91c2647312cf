package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"talento/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "talento.db"))
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedApplication(t *testing.T, store *Store, status model.ApplicationStatus) *model.JobApplication {
	t.Helper()
	ctx := context.Background()

	company := model.Company{Name: "Acme"}
	if err := store.CreateCompany(ctx, &company); err != nil {
		t.Fatalf("CreateCompany error: %v", err)
	}
	job := model.Job{Title: "Backend Engineer", CompanyID: company.ID, Requirements: "Go, SQL"}
	if err := store.CreateJob(ctx, &job); err != nil {
		t.Fatalf("CreateJob error: %v", err)
	}
	user := model.User{Name: "Bat Erdene", Email: "bat@example.com", Role: model.RoleJobSeeker}
	if err := store.CreateUser(ctx, &user); err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	app := model.JobApplication{JobID: job.ID, UserID: user.ID, Status: status}
	if err := store.CreateApplication(ctx, &app); err != nil {
		t.Fatalf("CreateApplication error: %v", err)
	}
	return &app
}

func TestStoreListJobsOrderedAndFiltered(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	company := model.Company{Name: "Acme"}
	if err := store.CreateCompany(ctx, &company); err != nil {
		t.Fatalf("CreateCompany error: %v", err)
	}

	older := model.Job{Title: "Designer", CompanyID: company.ID, Status: model.JobStatusActive}
	if err := store.CreateJob(ctx, &older); err != nil {
		t.Fatalf("CreateJob error: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	newer := model.Job{Title: "Developer", CompanyID: company.ID, Status: model.JobStatusActive}
	if err := store.CreateJob(ctx, &newer); err != nil {
		t.Fatalf("CreateJob error: %v", err)
	}
	closed := model.Job{Title: "Closed role", CompanyID: company.ID, Status: model.JobStatusClosed}
	if err := store.CreateJob(ctx, &closed); err != nil {
		t.Fatalf("CreateJob error: %v", err)
	}

	got, err := store.ListActiveJobs(ctx)
	if err != nil {
		t.Fatalf("ListActiveJobs error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 active jobs, got %d", len(got))
	}
	if got[0].ID != newer.ID { // created_at desc
		t.Fatalf("expected most recent job first, got %s", got[0].Title)
	}
	if got[0].Company == nil || got[0].Company.Name != "Acme" {
		t.Fatalf("expected company to be preloaded")
	}

	total, err := store.CountJobs(ctx, JobQueryOptions{Search: "DEV"})
	if err != nil {
		t.Fatalf("CountJobs error: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 job matching search, got %d", total)
	}
}

func TestGetApplicationNotFound(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	_, err := store.GetApplication(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateApplicationStatusChecksVersion(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	app := seedApplication(t, store, model.StatusPending)

	if err := store.UpdateApplicationStatus(ctx, app.ID, app.Version, model.StatusEmployerApproved); err != nil {
		t.Fatalf("UpdateApplicationStatus error: %v", err)
	}
	// A second writer still holding the old version must lose.
	err := store.UpdateApplicationStatus(ctx, app.ID, app.Version, model.StatusRejected)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	got, err := store.GetApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("GetApplication error: %v", err)
	}
	if got.Status != model.StatusEmployerApproved {
		t.Fatalf("expected EMPLOYER_APPROVED, got %s", got.Status)
	}
	if got.Version != app.Version+1 {
		t.Fatalf("expected version %d, got %d", app.Version+1, got.Version)
	}
	if got.Job == nil || got.User == nil {
		t.Fatalf("expected job and user to be preloaded")
	}
}

func TestTransactionRollsBack(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	app := seedApplication(t, store, model.StatusPending)

	boom := errors.New("boom")
	err := store.Transaction(ctx, func(tx *Store) error {
		if err := tx.UpdateApplicationStatus(ctx, app.ID, app.Version, model.StatusRejected); err != nil {
			return err
		}
		if err := tx.CreateNotification(ctx, &model.Notification{UserID: app.UserID, Title: "x", Type: model.NotifyError}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, err := store.GetApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("GetApplication error: %v", err)
	}
	if got.Status != model.StatusPending {
		t.Fatalf("expected status rolled back to PENDING, got %s", got.Status)
	}
	n, err := store.CountNotifications(ctx, app.UserID)
	if err != nil {
		t.Fatalf("CountNotifications error: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected notification rolled back, got %d", n)
	}
}

func TestEnsureDepartmentIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.EnsureDepartment(ctx, model.Department{Name: "A", Code: model.UnassignedCode})
	if err != nil {
		t.Fatalf("EnsureDepartment error: %v", err)
	}
	second, err := store.EnsureDepartment(ctx, model.Department{Name: "B", Code: model.UnassignedCode})
	if err != nil {
		t.Fatalf("EnsureDepartment second error: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same department, got %s and %s", first.ID, second.ID)
	}
	if second.Name != "A" {
		t.Fatalf("expected existing name to be kept, got %s", second.Name)
	}
}

func TestCreateContractExpiresPrevious(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	dept, err := store.EnsureDepartment(ctx, model.Department{Name: "Ops", Code: "OPS"})
	if err != nil {
		t.Fatalf("EnsureDepartment error: %v", err)
	}
	pos, err := store.EnsurePosition(ctx, model.Position{Title: "Clerk", Code: "CLERK", DepartmentID: dept.ID})
	if err != nil {
		t.Fatalf("EnsurePosition error: %v", err)
	}
	emp := model.Employee{EmployeeID: "EMP-1", FirstName: "A", LastName: "B", Email: "a@b.c", DepartmentID: dept.ID, PositionID: pos.ID, Status: model.EmployeeActive}
	if err := store.CreateEmployee(ctx, &emp); err != nil {
		t.Fatalf("CreateEmployee error: %v", err)
	}

	first := model.EmploymentContract{ContractNumber: "C-1", EmployeeID: emp.ID, ContractType: model.ContractFullTime, StartDate: time.Now(), Salary: 1, Status: model.ContractActive}
	if err := store.CreateContract(ctx, &first); err != nil {
		t.Fatalf("CreateContract error: %v", err)
	}
	second := model.EmploymentContract{ContractNumber: "C-2", EmployeeID: emp.ID, ContractType: model.ContractFullTime, StartDate: time.Now(), Salary: 2, Status: model.ContractActive}
	if err := store.CreateContract(ctx, &second); err != nil {
		t.Fatalf("CreateContract second error: %v", err)
	}

	active, err := store.ListContracts(ctx, emp.ID, model.ContractActive)
	if err != nil {
		t.Fatalf("ListContracts error: %v", err)
	}
	if len(active) != 1 || active[0].ID != second.ID {
		t.Fatalf("expected only the newest contract active, got %+v", active)
	}

	dup := model.EmploymentContract{ContractNumber: "C-2", EmployeeID: emp.ID, ContractType: model.ContractFullTime, StartDate: time.Now()}
	if err := store.CreateContract(ctx, &dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for reused contract number, got %v", err)
	}
}

func TestExpireContractsAndPruneNotifications(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()
	past := now.Add(-24 * time.Hour)

	c := model.EmploymentContract{ContractNumber: "C-9", EmployeeID: "e", ContractType: model.ContractContract, StartDate: past.Add(-time.Hour), EndDate: &past, Status: model.ContractActive}
	if err := store.CreateContract(ctx, &c); err != nil {
		t.Fatalf("CreateContract error: %v", err)
	}
	n, err := store.ExpireContracts(ctx, now)
	if err != nil {
		t.Fatalf("ExpireContracts error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expired contract, got %d", n)
	}

	note := model.Notification{UserID: "u", Title: "t", Type: model.NotifyInfo}
	if err := store.CreateNotification(ctx, &note); err != nil {
		t.Fatalf("CreateNotification error: %v", err)
	}
	if err := store.MarkNotificationRead(ctx, note.ID, "u"); err != nil {
		t.Fatalf("MarkNotificationRead error: %v", err)
	}
	if err := store.MarkNotificationRead(ctx, note.ID, "someone-else"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign notification, got %v", err)
	}
	pruned, err := store.DeleteReadNotificationsBefore(ctx, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("DeleteReadNotificationsBefore error: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("expected 1 pruned notification, got %d", pruned)
	}
}
