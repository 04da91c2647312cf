package storage

import (
	"context"
	"fmt"
	"time"

	"talento/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApplicationQuery 描述申请列表的筛选条件。
type ApplicationQuery struct {
	Status    model.ApplicationStatus
	JobID     string
	CompanyID string
	UserID    string
	Limit     int
}

// CreateApplication 新增求职申请，状态默认 PENDING。
func (s *Store) CreateApplication(ctx context.Context, app *model.JobApplication) error {
	if app.Status == "" {
		app.Status = model.StatusPending
	}
	return translate("create application", s.db.WithContext(ctx).Omit(clause.Associations).Create(app).Error)
}

// GetApplication 获取申请及其职位、申请人、简历。
func (s *Store) GetApplication(ctx context.Context, id string) (*model.JobApplication, error) {
	return first[model.JobApplication](ctx, s.db, "get application", "id = ?", []any{id}, "Job", "Job.Company", "User", "CV")
}

// FindApplication 查找用户对职位的已有申请。
func (s *Store) FindApplication(ctx context.Context, userID, jobID string) (*model.JobApplication, error) {
	return first[model.JobApplication](ctx, s.db, "find application", "user_id = ? AND job_id = ?", []any{userID, jobID})
}

// ListApplications 返回按创建时间倒序的申请列表。
func (s *Store) ListApplications(ctx context.Context, q ApplicationQuery) ([]model.JobApplication, error) {
	var apps []model.JobApplication
	query := applyApplicationFilters(s.db.WithContext(ctx).Model(&model.JobApplication{}), q).
		Preload("Job").Preload("Job.Company").Preload("User").Preload("CV").
		Order("job_applications.created_at DESC")
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if err := query.Find(&apps).Error; err != nil {
		return nil, translate("list applications", err)
	}
	return apps, nil
}

// CountApplications 统计满足条件的申请数量。
func (s *Store) CountApplications(ctx context.Context, q ApplicationQuery) (int64, error) {
	var n int64
	if err := applyApplicationFilters(s.db.WithContext(ctx).Model(&model.JobApplication{}), q).Count(&n).Error; err != nil {
		return 0, translate("count applications", err)
	}
	return n, nil
}

func applyApplicationFilters(db *gorm.DB, q ApplicationQuery) *gorm.DB {
	if q.Status != "" {
		db = db.Where("job_applications.status = ?", q.Status)
	}
	if q.JobID != "" {
		db = db.Where("job_applications.job_id = ?", q.JobID)
	}
	if q.UserID != "" {
		db = db.Where("job_applications.user_id = ?", q.UserID)
	}
	if q.CompanyID != "" {
		db = db.Where("job_applications.job_id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).Model(&model.Job{}).Select("id").Where("company_id = ?", q.CompanyID))
	}
	return db
}

// UpdateApplicationStatus 以版本号为条件写入新状态并递增版本。
// 版本不匹配（已被并发修改或记录不存在）时返回 ErrConflict。
func (s *Store) UpdateApplicationStatus(ctx context.Context, id string, version int, status model.ApplicationStatus) error {
	tx := s.db.WithContext(ctx).Model(&model.JobApplication{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]any{
			"status":     status,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if tx.Error != nil {
		return translate("update application status", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("update application status %s@%d: %w", id, version, ErrConflict)
	}
	return nil
}

// SetApplicationQuestionnaire 关联下发给申请人的问卷。
func (s *Store) SetApplicationQuestionnaire(ctx context.Context, id, questionnaireID string) error {
	tx := s.db.WithContext(ctx).Model(&model.JobApplication{}).Where("id = ?", id).Update("questionnaire_id", questionnaireID)
	if tx.Error != nil {
		return translate("set application questionnaire", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return translate("set application questionnaire", ErrNotFound)
	}
	return nil
}

// MarkApplicationsViewed 将职位下尚未查看的申请标记为已查看。
func (s *Store) MarkApplicationsViewed(ctx context.Context, jobID string, at time.Time) error {
	tx := s.db.WithContext(ctx).Model(&model.JobApplication{}).
		Where("job_id = ? AND viewed_at IS NULL", jobID).
		Update("viewed_at", at)
	return translate("mark applications viewed", tx.Error)
}

// CountNewApplications 统计公司待处理且未查看（或查看早于 seenBefore）的申请。
func (s *Store) CountNewApplications(ctx context.Context, companyID string, seenBefore time.Time) (int64, error) {
	var n int64
	q := applyApplicationFilters(s.db.WithContext(ctx).Model(&model.JobApplication{}),
		ApplicationQuery{CompanyID: companyID, Status: model.StatusPending})
	if err := q.Where("(job_applications.viewed_at IS NULL OR job_applications.viewed_at < ?)", seenBefore).
		Count(&n).Error; err != nil {
		return 0, translate("count new applications", err)
	}
	return n, nil
}
