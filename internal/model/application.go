package model

import (
	"time"

	"gorm.io/gorm"
)

// ApplicationStatus 表示求职申请所处的审批阶段。
type ApplicationStatus string

const (
	StatusPending          ApplicationStatus = "PENDING"
	StatusEmployerApproved ApplicationStatus = "EMPLOYER_APPROVED"
	StatusAdminApproved    ApplicationStatus = "ADMIN_APPROVED"
	StatusApproved         ApplicationStatus = "APPROVED"
	StatusRejected         ApplicationStatus = "REJECTED"
)

// Valid 判断状态是否属于枚举。
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusEmployerApproved, StatusAdminApproved, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// JobApplication 表示求职者对某职位的申请。
// Status 只能经由状态机修改；Version 在每次状态写入时自增，用于乐观并发控制。
type JobApplication struct {
	ID              string            `gorm:"primaryKey;size:36" json:"id"`
	JobID           string            `gorm:"size:36;index;not null" json:"jobId"`
	Job             *Job              `gorm:"foreignKey:JobID" json:"job,omitempty"`
	UserID          string            `gorm:"size:36;index;not null" json:"userId"`
	User            *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CVID            *string           `gorm:"column:cv_id;size:36" json:"cvId,omitempty"`
	CV              *CV               `gorm:"foreignKey:CVID" json:"cv,omitempty"`
	Message         string            `json:"message"`
	Status          ApplicationStatus `gorm:"size:20;index;not null;default:PENDING" json:"status"`
	ViewedAt        *time.Time        `json:"viewedAt,omitempty"`
	QuestionnaireID *string           `gorm:"size:36" json:"questionnaireId,omitempty"`
	Version         int               `gorm:"not null;default:0" json:"version"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

func (a *JobApplication) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	return nil
}
