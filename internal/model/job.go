package model

import (
	"time"

	"gorm.io/gorm"
)

// JobType 表示雇佣形式。
type JobType string

const (
	JobTypeFullTime   JobType = "FULL_TIME"
	JobTypePartTime   JobType = "PART_TIME"
	JobTypeContract   JobType = "CONTRACT"
	JobTypeInternship JobType = "INTERNSHIP"
)

// JobStatus 表示职位是否仍在招聘。
type JobStatus string

const (
	JobStatusActive JobStatus = "ACTIVE"
	JobStatusClosed JobStatus = "CLOSED"
)

// Job 表示一个职位
// - Requirements: 自由文本，匹配打分的输入
// - Salary: 展示用文本，不做解析
// - CompanyID: 发布公司
type Job struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Title        string    `gorm:"not null" json:"title"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements"`
	Location     string    `json:"location"`
	Salary       string    `json:"salary,omitempty"`
	Type         JobType   `gorm:"size:20;default:FULL_TIME" json:"type"`
	Status       JobStatus `gorm:"size:20;index;default:ACTIVE" json:"status"`
	CompanyID    string    `gorm:"size:36;index;not null" json:"companyId"`
	Company      *Company  `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (j *Job) BeforeCreate(*gorm.DB) error {
	assignID(&j.ID)
	return nil
}

// CVStatus 表示简历审核状态。
type CVStatus string

const (
	CVStatusPending  CVStatus = "PENDING"
	CVStatusApproved CVStatus = "APPROVED"
	CVStatusRejected CVStatus = "REJECTED"
)

// CV 表示求职者上传的简历文件及其抽取文本。
type CV struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;index;not null" json:"userId"`
	Title     string    `json:"title"`
	FileURL   string    `json:"fileUrl"`
	FileName  string    `json:"fileName"`
	Content   string    `json:"content,omitempty"`
	Status    CVStatus  `gorm:"size:20;default:PENDING" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *CV) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// SavedJob 记录求职者收藏的职位，(user_id, job_id) 唯一。
type SavedJob struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;uniqueIndex:idx_saved_user_job;not null" json:"userId"`
	JobID     string    `gorm:"size:36;uniqueIndex:idx_saved_user_job;not null" json:"jobId"`
	Job       *Job      `gorm:"foreignKey:JobID" json:"job,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *SavedJob) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}
