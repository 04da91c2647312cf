package storage

import (
	"context"
	"fmt"
	"strings"

	"talento/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JobQueryOptions 提供职位查询过滤条件。
type JobQueryOptions struct {
	Limit     int
	Offset    int
	CompanyID string
	Status    model.JobStatus
	Search    string
}

// CreateJob 新增职位。
func (s *Store) CreateJob(ctx context.Context, job *model.Job) error {
	return translate("create job", s.db.WithContext(ctx).Omit(clause.Associations).Create(job).Error)
}

// GetJob 根据 ID 获取职位（含公司）。
func (s *Store) GetJob(ctx context.Context, id string) (*model.Job, error) {
	return first[model.Job](ctx, s.db, "get job", "id = ?", []any{id}, "Company")
}

// GetCompanyJob 获取属于指定公司的职位。
func (s *Store) GetCompanyJob(ctx context.Context, id, companyID string) (*model.Job, error) {
	return first[model.Job](ctx, s.db, "get company job", "id = ? AND company_id = ?", []any{id, companyID}, "Company")
}

// UpdateJob 保存职位的可编辑字段。
func (s *Store) UpdateJob(ctx context.Context, job *model.Job) error {
	return save(ctx, s.db, "update job", job)
}

// DeleteJob 删除职位及其申请与收藏。
func (s *Store) DeleteJob(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", id).Delete(&model.JobApplication{}).Error; err != nil {
			return translate("delete job applications", err)
		}
		if err := tx.Where("job_id = ?", id).Delete(&model.SavedJob{}).Error; err != nil {
			return translate("delete saved jobs", err)
		}
		return deleteByID[model.Job](ctx, tx, "delete job", id)
	})
}

// ListJobs 返回按创建时间倒序的职位列表。
func (s *Store) ListJobs(ctx context.Context, opts JobQueryOptions) ([]model.Job, error) {
	var jobs []model.Job
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	query := applyJobFilters(s.db.WithContext(ctx).Model(&model.Job{}), opts).Preload("Company").Order("created_at DESC")
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	if err := query.Find(&jobs).Error; err != nil {
		return nil, translate("list jobs", err)
	}
	return jobs, nil
}

// CountJobs 返回满足过滤条件的职位数量。
func (s *Store) CountJobs(ctx context.Context, opts JobQueryOptions) (int64, error) {
	var total int64
	query := applyJobFilters(s.db.WithContext(ctx).Model(&model.Job{}), opts)
	if err := query.Count(&total).Error; err != nil {
		return 0, translate("count jobs", err)
	}
	return total, nil
}

// ListActiveJobs 返回所有招聘中的职位，供匹配打分使用。
func (s *Store) ListActiveJobs(ctx context.Context) ([]model.Job, error) {
	return s.ListJobs(ctx, JobQueryOptions{Status: model.JobStatusActive})
}

func applyJobFilters(db *gorm.DB, opts JobQueryOptions) *gorm.DB {
	if opts.CompanyID != "" {
		db = db.Where("company_id = ?", opts.CompanyID)
	}
	if opts.Status != "" {
		db = db.Where("status = ?", opts.Status)
	}
	if term := strings.TrimSpace(opts.Search); term != "" {
		like := fmt.Sprintf("%%%s%%", strings.ToLower(term))
		db = db.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	return db
}

// CreateCV 新增简历记录。
func (s *Store) CreateCV(ctx context.Context, cv *model.CV) error {
	return translate("create cv", s.db.WithContext(ctx).Create(cv).Error)
}

// GetUserCV 获取属于指定用户的简历。
func (s *Store) GetUserCV(ctx context.Context, id, userID string) (*model.CV, error) {
	return first[model.CV](ctx, s.db, "get cv", "id = ? AND user_id = ?", []any{id, userID})
}

// GetCV 根据 ID 获取简历，不校验归属。
func (s *Store) GetCV(ctx context.Context, id string) (*model.CV, error) {
	return first[model.CV](ctx, s.db, "get cv", "id = ?", []any{id})
}

// UpdateCVStatus 更新简历审核状态。
func (s *Store) UpdateCVStatus(ctx context.Context, id string, status model.CVStatus) error {
	tx := s.db.WithContext(ctx).Model(&model.CV{}).Where("id = ?", id).Update("status", status)
	if tx.Error != nil {
		return translate("update cv status", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return translate("update cv status", ErrNotFound)
	}
	return nil
}

// ListCVs 返回用户的全部简历。
func (s *Store) ListCVs(ctx context.Context, userID string) ([]model.CV, error) {
	var cvs []model.CV
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&cvs).Error; err != nil {
		return nil, translate("list cvs", err)
	}
	return cvs, nil
}

// DeleteCV 删除用户的简历。
func (s *Store) DeleteCV(ctx context.Context, id, userID string) error {
	tx := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.CV{})
	if tx.Error != nil {
		return translate("delete cv", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return translate("delete cv", ErrNotFound)
	}
	return nil
}

// CVSubmittedTo 判断简历是否投递过该公司的职位。
func (s *Store) CVSubmittedTo(ctx context.Context, cvID, companyID string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.JobApplication{}).
		Where("cv_id = ? AND job_id IN (?)", cvID,
			s.db.Session(&gorm.Session{NewDB: true}).Model(&model.Job{}).Select("id").Where("company_id = ?", companyID)).
		Count(&n).Error; err != nil {
		return false, translate("check cv submission", err)
	}
	return n > 0, nil
}

// SaveJob 收藏职位，重复收藏为空操作。
func (s *Store) SaveJob(ctx context.Context, userID, jobID string) error {
	saved := model.SavedJob{UserID: userID, JobID: jobID}
	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "job_id"}},
		DoNothing: true,
	}).Create(&saved)
	return translate("save job", tx.Error)
}

// UnsaveJob 取消收藏。
func (s *Store) UnsaveJob(ctx context.Context, userID, jobID string) error {
	tx := s.db.WithContext(ctx).Where("user_id = ? AND job_id = ?", userID, jobID).Delete(&model.SavedJob{})
	if tx.Error != nil {
		return translate("unsave job", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return translate("unsave job", ErrNotFound)
	}
	return nil
}

// ListSavedJobs 返回用户收藏的职位，最新收藏在前。
func (s *Store) ListSavedJobs(ctx context.Context, userID string) ([]model.SavedJob, error) {
	var saved []model.SavedJob
	if err := s.db.WithContext(ctx).
		Preload("Job").Preload("Job.Company").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&saved).Error; err != nil {
		return nil, translate("list saved jobs", err)
	}
	return saved, nil
}
