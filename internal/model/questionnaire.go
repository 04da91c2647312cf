package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuestionnaireType 问卷类型。
type QuestionnaireType string

const (
	QuestionnaireCustom             QuestionnaireType = "CUSTOM"
	QuestionnaireGovernmentEmployee QuestionnaireType = "GOVERNMENT_EMPLOYEE"
)

// QuestionType 题型。
type QuestionType string

const (
	QuestionText           QuestionType = "TEXT"
	QuestionSingleChoice   QuestionType = "SINGLE_CHOICE"
	QuestionMultipleChoice QuestionType = "MULTIPLE_CHOICE"
)

// Questionnaire 由雇主创建，可通过申请下发给求职者。
type Questionnaire struct {
	ID             string            `gorm:"primaryKey;size:36" json:"id"`
	CompanyID      string            `gorm:"size:36;index;not null" json:"companyId"`
	Title          string            `gorm:"not null" json:"title"`
	Description    string            `json:"description"`
	Type           QuestionnaireType `gorm:"size:32;default:CUSTOM" json:"type"`
	AttachmentURL  string            `json:"attachmentUrl,omitempty"`
	AttachmentName string            `json:"attachmentName,omitempty"`
	Questions      []Question        `gorm:"foreignKey:QuestionnaireID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

func (q *Questionnaire) BeforeCreate(*gorm.DB) error {
	assignID(&q.ID)
	return nil
}

// Question 问卷题目，Options 为选择题选项（JSON 数组）。
type Question struct {
	ID              string         `gorm:"primaryKey;size:36" json:"id"`
	QuestionnaireID string         `gorm:"size:36;index;not null" json:"questionnaireId"`
	Text            string         `gorm:"not null" json:"text"`
	Type            QuestionType   `gorm:"size:20;default:TEXT" json:"type"`
	Required        bool           `json:"required"`
	Options         datatypes.JSON `json:"options,omitempty"`
	Order           int            `gorm:"column:sort_order" json:"order"`
}

func (q *Question) BeforeCreate(*gorm.DB) error {
	assignID(&q.ID)
	return nil
}

// QuestionnaireResponse 求职者提交的答卷，每人每份问卷一份。
type QuestionnaireResponse struct {
	ID              string         `gorm:"primaryKey;size:36" json:"id"`
	QuestionnaireID string         `gorm:"size:36;uniqueIndex:idx_response_user;not null" json:"questionnaireId"`
	Questionnaire   *Questionnaire `gorm:"foreignKey:QuestionnaireID;references:ID" json:"questionnaire,omitempty"`
	UserID          string         `gorm:"size:36;uniqueIndex:idx_response_user;not null" json:"userId"`
	User            *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	AttachmentURL   string         `json:"attachmentUrl,omitempty"`
	FormData        datatypes.JSON `json:"formData,omitempty"`
	Answers         []Answer       `gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
}

func (r *QuestionnaireResponse) BeforeCreate(*gorm.DB) error {
	assignID(&r.ID)
	return nil
}

// Answer 单题答案。QuestionID 为题目 ID 或政府表单的摘要键。
type Answer struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	ResponseID string `gorm:"size:36;index;not null" json:"responseId"`
	QuestionID string `gorm:"size:64;not null" json:"questionId"`
	Value      string `json:"value"`
}

func (a *Answer) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	return nil
}

// All 返回需要迁移的全部模型。
func All() []any {
	return []any{
		&Company{}, &User{}, &Job{}, &CV{}, &JobApplication{}, &SavedJob{},
		&Department{}, &Position{}, &Employee{}, &EmploymentContract{}, &Decision{}, &EmployeeRecord{},
		&Notification{}, &Questionnaire{}, &Question{}, &QuestionnaireResponse{}, &Answer{},
	}
}
