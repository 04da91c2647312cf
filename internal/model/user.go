package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role 表示账号角色。
type Role string

const (
	RoleJobSeeker Role = "JOB_SEEKER"
	RoleEmployer  Role = "EMPLOYER"
	RoleHR        Role = "HR"
	RoleAdmin     Role = "ADMIN"
)

// Valid 判断角色是否属于已知集合。
func (r Role) Valid() bool {
	switch r {
	case RoleJobSeeker, RoleEmployer, RoleHR, RoleAdmin:
		return true
	}
	return false
}

// User 表示平台账号。
// - Email: 登录名，全局唯一
// - CompanyID: 雇主/HR 所属公司
// - PasswordHash: bcrypt 哈希，不对外序列化
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PhoneNumber  string    `json:"phoneNumber"`
	PasswordHash string    `json:"-"`
	Role         Role      `gorm:"size:20;index;not null;default:JOB_SEEKER" json:"role"`
	CompanyID    *string   `gorm:"size:36;index" json:"companyId,omitempty"`
	Company      *Company  `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	ProfileImage string    `json:"profileImage,omitempty"`
	FacebookURL  string    `json:"facebookUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	assignID(&u.ID)
	return nil
}

// Company 表示雇主公司。
type Company struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Logo        string    `json:"logo,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (c *Company) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
