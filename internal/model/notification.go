package model

import (
	"time"

	"gorm.io/gorm"
)

// NotificationType 通知类型标签，前端据此选择样式。
type NotificationType string

const (
	NotifySuccess               NotificationType = "SUCCESS"
	NotifyError                 NotificationType = "ERROR"
	NotifyInfo                  NotificationType = "INFO"
	NotifyApplication           NotificationType = "APPLICATION"
	NotifyCVApproved            NotificationType = "CV_APPROVED"
	NotifyCVRejected            NotificationType = "CV_REJECTED"
	NotifyAdminApprovalRequest  NotificationType = "ADMIN_APPROVAL_REQUEST"
	NotifyQuestionnaire         NotificationType = "QUESTIONNAIRE"
	NotifyQuestionnaireResponse NotificationType = "QUESTIONNAIRE_RESPONSE"
)

// Notification 站内通知，归属接收者。
type Notification struct {
	ID        string           `gorm:"primaryKey;size:36" json:"id"`
	UserID    string           `gorm:"size:36;index;not null" json:"userId"`
	Title     string           `gorm:"not null" json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `gorm:"size:32;not null" json:"type"`
	Link      string           `json:"link,omitempty"`
	Read      bool             `gorm:"index;default:false" json:"read"`
	CreatedAt time.Time        `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

func (n *Notification) BeforeCreate(*gorm.DB) error {
	assignID(&n.ID)
	return nil
}
