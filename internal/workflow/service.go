package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"talento/internal/apperr"
	"talento/internal/model"
	"talento/internal/notifier"
	"talento/internal/storage"

	"github.com/rs/zerolog"
)

// 对外消息。
const (
	MsgStatusUpdated = "Статус амжилттай шинэчлэгдлээ"
	MsgApplied       = "Өргөдөл амжилттай илгээгдлээ"
	msgNotFound      = "Өргөдөл олдсонгүй"
	msgInvalidMove   = "Энэ статус руу шилжих боломжгүй"
	msgInvalidStatus = "Буруу статус"
	msgConflict      = "Өргөдөл өөр хүсэлтээр өөрчлөгдсөн байна. Дахин оролдоно уу"
	msgNotOwner      = "Энэ өргөдлийг өөрчлөх эрхгүй байна"
	msgServerError   = "Серверийн алдаа гарлаа"
	msgCVRequired    = "CV сонгоно уу"
	msgJobNotFound   = "Ажлын байр олдсонгүй"
	msgCVNotFound    = "CV олдсонгүй"
	msgDuplicate     = "Та энэ ажлын байранд аль хэдийн өргөдөл илгээсэн байна"
	msgJobClosed     = "Энэ ажлын байрны зар хаагдсан байна"
)

// ErrDuplicateApplication 同一用户重复申请同一职位。
var ErrDuplicateApplication = errors.New("duplicate application")

// Config 工作流配置。
type Config struct {
	// NotifyEmployerApproved 控制通用状态接口迁移到 EMPLOYER_APPROVED 时是否通知申请人。
	NotifyEmployerApproved bool `yaml:"notify_employer_approved" json:"notify_employer_approved"`
}

// Service 执行状态迁移。状态写入、员工建档与站内通知在同一事务中完成，
// 状态写入以版本号为条件，并发修改时返回 Conflict。
type Service struct {
	store  *storage.Store
	notify *notifier.Dispatcher
	cfg    Config
	logger zerolog.Logger
	now    func() time.Time
}

// New 创建 Service。
func New(store *storage.Store, notify *notifier.Dispatcher, cfg Config, logger zerolog.Logger) *Service {
	if notify == nil {
		notify = notifier.NewDispatcher(logger, nil)
	}
	return &Service{store: store, notify: notify, cfg: cfg, logger: logger, now: time.Now}
}

type outbound struct {
	to notifier.Recipient
	n  model.Notification
}

type guardFunc func(app *model.JobApplication) error

type noticeFunc func(ctx context.Context, tx *storage.Store, app *model.JobApplication) ([]outbound, error)

// RequestTransition 按状态表迁移申请状态。
func (s *Service) RequestTransition(ctx context.Context, id string, target model.ApplicationStatus) (*model.JobApplication, error) {
	if !target.Valid() {
		return nil, apperr.Validation(msgInvalidStatus)
	}
	guard := func(app *model.JobApplication) error {
		if !CanTransition(app.Status, target) {
			return apperr.New(apperr.KindInvalidTransition, msgInvalidMove, nil)
		}
		return nil
	}
	notices := func(_ context.Context, _ *storage.Store, app *model.JobApplication) ([]outbound, error) {
		if target == model.StatusEmployerApproved {
			if !s.cfg.NotifyEmployerApproved {
				return nil, nil
			}
			return applicantNotice(app, notifier.EmployerApprovedNotice(jobTitle(app))), nil
		}
		if n, ok := notifier.StatusNotice(target, jobTitle(app)); ok {
			return applicantNotice(app, n), nil
		}
		return nil, nil
	}
	return s.transition(ctx, id, target, guard, notices)
}

// Approve 管理员快捷审批：EMPLOYER_APPROVED → ADMIN_APPROVED。
func (s *Service) Approve(ctx context.Context, id string) (*model.JobApplication, error) {
	guard := func(app *model.JobApplication) error {
		if app.Status != model.StatusEmployerApproved {
			return apperr.New(apperr.KindInvalidTransition, msgInvalidMove, nil)
		}
		return nil
	}
	notices := func(_ context.Context, _ *storage.Store, app *model.JobApplication) ([]outbound, error) {
		return applicantNotice(app, notifier.AdminApprovedCVNotice(jobTitle(app), app.JobID)), nil
	}
	return s.transition(ctx, id, model.StatusAdminApproved, guard, notices)
}

// Reject 管理员快捷拒绝：PENDING 或 EMPLOYER_APPROVED → REJECTED。
func (s *Service) Reject(ctx context.Context, id string) (*model.JobApplication, error) {
	guard := func(app *model.JobApplication) error {
		if app.Status != model.StatusPending && app.Status != model.StatusEmployerApproved {
			return apperr.New(apperr.KindInvalidTransition, msgInvalidMove, nil)
		}
		return nil
	}
	notices := func(_ context.Context, _ *storage.Store, app *model.JobApplication) ([]outbound, error) {
		return applicantNotice(app, notifier.RejectedNotice(jobTitle(app))), nil
	}
	return s.transition(ctx, id, model.StatusRejected, guard, notices)
}

// EmployerTransition 雇主初审：仅允许 PENDING → EMPLOYER_APPROVED / REJECTED，且雇主须属于职位所在公司。
func (s *Service) EmployerTransition(ctx context.Context, id string, employer *model.User, target model.ApplicationStatus) (*model.JobApplication, error) {
	if target != model.StatusEmployerApproved && target != model.StatusRejected {
		return nil, apperr.Validation(msgInvalidStatus)
	}
	notices := func(_ context.Context, _ *storage.Store, app *model.JobApplication) ([]outbound, error) {
		if target == model.StatusEmployerApproved {
			return applicantNotice(app, notifier.EmployerApprovedNotice(jobTitle(app))), nil
		}
		return applicantNotice(app, notifier.RejectedNotice(jobTitle(app))), nil
	}
	return s.transition(ctx, id, target, employerGuard(employer), notices)
}

// EmployerApprove 雇主快捷通过，并请求全部管理员审批。
func (s *Service) EmployerApprove(ctx context.Context, id string, employer *model.User) (*model.JobApplication, error) {
	notices := func(ctx context.Context, tx *storage.Store, app *model.JobApplication) ([]outbound, error) {
		admins, err := tx.ListUsersByRole(ctx, model.RoleAdmin)
		if err != nil {
			return nil, fmt.Errorf("list admins: %w", err)
		}
		applicant := ""
		if app.User != nil {
			applicant = app.User.Name
		}
		n := notifier.AdminApprovalRequestNotice(app.ID, jobTitle(app), applicant)
		out := make([]outbound, 0, len(admins))
		for i := range admins {
			out = append(out, outbound{to: notifier.RecipientOf(&admins[i]), n: n})
		}
		return out, nil
	}
	return s.transition(ctx, id, model.StatusEmployerApproved, employerGuard(employer), notices)
}

func employerGuard(employer *model.User) guardFunc {
	return func(app *model.JobApplication) error {
		if employer == nil || employer.CompanyID == nil || app.Job == nil || *employer.CompanyID != app.Job.CompanyID {
			return apperr.Forbidden(msgNotOwner)
		}
		if app.Status != model.StatusPending {
			return apperr.New(apperr.KindInvalidTransition, msgInvalidMove, nil)
		}
		return nil
	}
}

func (s *Service) transition(ctx context.Context, id string, target model.ApplicationStatus, guard guardFunc, notices noticeFunc) (*model.JobApplication, error) {
	var (
		updated *model.JobApplication
		pending []notifier.Pending
	)

	err := s.store.Transaction(ctx, func(tx *storage.Store) error {
		app, err := tx.GetApplication(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound(msgNotFound)
		}
		if err != nil {
			return err
		}
		if err := guard(app); err != nil {
			return err
		}

		if err := tx.UpdateApplicationStatus(ctx, app.ID, app.Version, target); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return apperr.New(apperr.KindConflict, msgConflict, err)
			}
			return err
		}
		app.Status = target
		app.Version++

		if provisions(target) {
			emp, err := Provision(ctx, tx, app.User, s.now())
			if err != nil {
				return fmt.Errorf("provision employee: %w", err)
			}
			if emp != nil {
				s.logger.Info().Str("application_id", app.ID).Str("employee_id", emp.EmployeeID).Msg("employee provisioned")
			}
		}

		out, err := notices(ctx, tx, app)
		if err != nil {
			return err
		}
		for _, o := range out {
			p, err := s.notify.Record(ctx, tx, o.to, o.n)
			if err != nil {
				return err
			}
			pending = append(pending, p)
		}

		updated = app
		return nil
	})
	if err != nil {
		return nil, s.classify(err, "application transition", id)
	}

	s.notify.Flush(ctx, pending...)
	s.logger.Info().Str("application_id", id).Str("status", string(target)).Msg("application status updated")
	return updated, nil
}

// Apply 求职者提交申请，并通知职位所属公司的账号。
func (s *Service) Apply(ctx context.Context, applicant *model.User, jobID, cvID, message string) (*model.JobApplication, error) {
	if strings.TrimSpace(cvID) == "" {
		return nil, apperr.Validation(msgCVRequired)
	}

	var (
		app     *model.JobApplication
		pending []notifier.Pending
	)
	err := s.store.Transaction(ctx, func(tx *storage.Store) error {
		job, err := tx.GetJob(ctx, jobID)
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound(msgJobNotFound)
		}
		if err != nil {
			return err
		}
		if job.Status == model.JobStatusClosed {
			return apperr.Validation(msgJobClosed)
		}
		if _, err := tx.GetUserCV(ctx, cvID, applicant.ID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperr.NotFound(msgCVNotFound)
			}
			return err
		}
		if _, err := tx.FindApplication(ctx, applicant.ID, jobID); err == nil {
			return apperr.New(apperr.KindValidation, msgDuplicate, ErrDuplicateApplication)
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		created := &model.JobApplication{
			JobID:   jobID,
			UserID:  applicant.ID,
			CVID:    &cvID,
			Message: strings.TrimSpace(message),
			Status:  model.StatusPending,
		}
		if err := tx.CreateApplication(ctx, created); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				return apperr.New(apperr.KindValidation, msgDuplicate, ErrDuplicateApplication)
			}
			return err
		}

		staff, err := tx.ListCompanyUsers(ctx, job.CompanyID)
		if err != nil {
			return err
		}
		n := notifier.NewApplicationNotice(job.ID, job.Title)
		for i := range staff {
			p, err := s.notify.Record(ctx, tx, notifier.RecipientOf(&staff[i]), n)
			if err != nil {
				return err
			}
			pending = append(pending, p)
		}
		app = created
		return nil
	})
	if err != nil {
		return nil, s.classify(err, "apply", jobID)
	}
	s.notify.Flush(ctx, pending...)
	return app, nil
}

// classify 保留已分类错误，其余记录日志并包装为 Internal。
func (s *Service) classify(err error, op, id string) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	s.logger.Error().Err(err).Str("op", op).Str("id", id).Msg("workflow failed")
	return apperr.Internal(msgServerError, err)
}

func applicantNotice(app *model.JobApplication, n model.Notification) []outbound {
	to := notifier.RecipientOf(app.User)
	to.UserID = app.UserID
	return []outbound{{to: to, n: n}}
}

func jobTitle(app *model.JobApplication) string {
	if app.Job == nil {
		return ""
	}
	return app.Job.Title
}
