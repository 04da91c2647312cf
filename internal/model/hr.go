package model

import (
	"time"

	"gorm.io/gorm"
)

// Gender 性别。
type Gender string

const (
	GenderMale    Gender = "MALE"
	GenderFemale  Gender = "FEMALE"
	GenderOther   Gender = "OTHER"
	GenderUnknown Gender = "UNKNOWN"
)

// EmployeeStatus 员工在职状态。
type EmployeeStatus string

const (
	EmployeeActive     EmployeeStatus = "ACTIVE"
	EmployeeInactive   EmployeeStatus = "INACTIVE"
	EmployeeOnLeave    EmployeeStatus = "ON_LEAVE"
	EmployeeTerminated EmployeeStatus = "TERMINATED"
)

// UnassignedCode 是自动建档时兜底部门与职位的编码。
const UnassignedCode = "UNASSIGNED"

// Department 部门，Code 唯一。
type Department struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	Name        string     `gorm:"not null" json:"name"`
	Code        string     `gorm:"uniqueIndex;not null" json:"code"`
	Description string     `json:"description"`
	Positions   []Position `gorm:"foreignKey:DepartmentID" json:"positions,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (d *Department) BeforeCreate(*gorm.DB) error {
	assignID(&d.ID)
	return nil
}

// Position 职位（岗位编制），归属于某个部门。
type Position struct {
	ID           string      `gorm:"primaryKey;size:36" json:"id"`
	Title        string      `gorm:"not null" json:"title"`
	Code         string      `gorm:"uniqueIndex;not null" json:"code"`
	Description  string      `json:"description"`
	MinSalary    *float64    `json:"minSalary,omitempty"`
	MaxSalary    *float64    `json:"maxSalary,omitempty"`
	Requirements string      `json:"requirements,omitempty"`
	DepartmentID string      `gorm:"size:36;index;not null" json:"departmentId"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func (p *Position) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// Employee 表示 HR 管理的员工档案，与登录账号 User 相互独立。
// - EmployeeID: 业务编号，形如 EMP-<毫秒时间戳>
// - Email: 全局唯一，自动建档按此去重
// - ManagerID: 可选，自关联
type Employee struct {
	ID               string         `gorm:"primaryKey;size:36" json:"id"`
	EmployeeID       string         `gorm:"uniqueIndex;not null" json:"employeeId"`
	FirstName        string         `gorm:"not null" json:"firstName"`
	LastName         string         `gorm:"not null" json:"lastName"`
	MiddleName       string         `json:"middleName,omitempty"`
	Email            string         `gorm:"uniqueIndex;not null" json:"email"`
	Phone            string         `json:"phone"`
	DateOfBirth      time.Time      `json:"dateOfBirth"`
	Gender           Gender         `gorm:"size:10;default:UNKNOWN" json:"gender"`
	Address          string         `json:"address"`
	EmergencyContact string         `json:"emergencyContact,omitempty"`
	EmergencyPhone   string         `json:"emergencyPhone,omitempty"`
	DepartmentID     string         `gorm:"size:36;index;not null" json:"departmentId"`
	Department       *Department    `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	PositionID       string         `gorm:"size:36;index;not null" json:"positionId"`
	Position         *Position      `gorm:"foreignKey:PositionID" json:"position,omitempty"`
	ManagerID        *string        `gorm:"size:36;index" json:"managerId,omitempty"`
	Manager          *Employee      `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	Status           EmployeeStatus `gorm:"size:20;index;default:ACTIVE" json:"status"`
	HireDate         time.Time      `json:"hireDate"`
	TerminationDate  *time.Time     `json:"terminationDate,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

func (e *Employee) BeforeCreate(*gorm.DB) error {
	assignID(&e.ID)
	return nil
}

// ContractType 劳动合同类型。
type ContractType string

const (
	ContractFullTime   ContractType = "FULL_TIME"
	ContractPartTime   ContractType = "PART_TIME"
	ContractContract   ContractType = "CONTRACT"
	ContractInternship ContractType = "INTERNSHIP"
)

// ContractStatus 合同状态。
type ContractStatus string

const (
	ContractActive     ContractStatus = "ACTIVE"
	ContractExpired    ContractStatus = "EXPIRED"
	ContractTerminated ContractStatus = "TERMINATED"
	ContractCancelled  ContractStatus = "CANCELLED"
)

// EmploymentContract 劳动合同；同一员工同一时间最多一份 ACTIVE。
type EmploymentContract struct {
	ID              string         `gorm:"primaryKey;size:36" json:"id"`
	ContractNumber  string         `gorm:"uniqueIndex;not null" json:"contractNumber"`
	EmployeeID      string         `gorm:"size:36;index;not null" json:"employeeId"`
	Employee        *Employee      `gorm:"foreignKey:EmployeeID;references:ID" json:"employee,omitempty"`
	ContractType    ContractType   `gorm:"size:20;not null" json:"contractType"`
	StartDate       time.Time      `json:"startDate"`
	EndDate         *time.Time     `json:"endDate,omitempty"`
	Salary          float64        `json:"salary"`
	Currency        string         `gorm:"size:8;default:MNT" json:"currency"`
	ProbationMonths *int           `json:"probationPeriod,omitempty"`
	WorkSchedule    string         `json:"workSchedule,omitempty"`
	Benefits        string         `json:"benefits,omitempty"`
	Terms           string         `json:"terms,omitempty"`
	DocumentURL     string         `json:"documentUrl,omitempty"`
	Status          ContractStatus `gorm:"size:20;index;default:ACTIVE" json:"status"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

func (c *EmploymentContract) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// DecisionType 人事决定类型。
type DecisionType string

const (
	DecisionHiring       DecisionType = "HIRING"
	DecisionPromotion    DecisionType = "PROMOTION"
	DecisionTransfer     DecisionType = "TRANSFER"
	DecisionTermination  DecisionType = "TERMINATION"
	DecisionSalaryChange DecisionType = "SALARY_CHANGE"
	DecisionOther        DecisionType = "OTHER"
)

// DecisionStatus 决定是否生效。
type DecisionStatus string

const (
	DecisionActive    DecisionStatus = "ACTIVE"
	DecisionCancelled DecisionStatus = "CANCELLED"
)

// Decision 人事决定（任命、调岗、解聘等）。
type Decision struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	DecisionNumber string         `gorm:"uniqueIndex;not null" json:"decisionNumber"`
	Title          string         `gorm:"not null" json:"title"`
	Description    string         `json:"description"`
	Type           DecisionType   `gorm:"size:20;not null" json:"type"`
	EmployeeID     string         `gorm:"size:36;index;not null" json:"employeeId"`
	Employee       *Employee      `gorm:"foreignKey:EmployeeID;references:ID" json:"employee,omitempty"`
	DecisionDate   time.Time      `json:"decisionDate"`
	EffectiveDate  *time.Time     `json:"effectiveDate,omitempty"`
	Reason         string         `json:"reason,omitempty"`
	Details        string         `json:"details,omitempty"`
	DocumentURL    string         `json:"documentUrl,omitempty"`
	CreatedBy      string         `gorm:"size:36" json:"createdBy"`
	Status         DecisionStatus `gorm:"size:20;default:ACTIVE" json:"status"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

func (d *Decision) BeforeCreate(*gorm.DB) error {
	assignID(&d.ID)
	return nil
}

// RecordKind 区分奖励与处分。
type RecordKind string

const (
	RecordReward  RecordKind = "REWARD"
	RecordPenalty RecordKind = "PENALTY"
)

// EmployeeRecord 员工奖惩记录。Type 与 Status 为界面自由填写的文本。
type EmployeeRecord struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	Kind        RecordKind `gorm:"size:10;index;not null" json:"kind"`
	EmployeeID  string     `gorm:"size:36;index;not null" json:"employeeId"`
	Employee    *Employee  `gorm:"foreignKey:EmployeeID;references:ID" json:"employee,omitempty"`
	Type        string     `gorm:"not null" json:"type"`
	Reason      string     `json:"reason"`
	Amount      float64    `json:"amount"`
	Date        time.Time  `json:"date"`
	Status      string     `json:"status"`
	IssuedBy    string     `json:"issuedBy"`
	OrderNumber string     `json:"orderNumber"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (r *EmployeeRecord) BeforeCreate(*gorm.DB) error {
	assignID(&r.ID)
	return nil
}
