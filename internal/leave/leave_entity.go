package leave

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPendingSupervisor  Status = "pending_supervisor"
	StatusPendingHR          Status = "pending_hr"
	StatusApproved           Status = "approved"
	StatusRejectedSupervisor Status = "rejected_supervisor"
	StatusRejectedHR         Status = "rejected_hr"
	StatusCancelled          Status = "cancelled"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

type LeaveType string

const (
	TypeVacation  LeaveType = "vacation"
	TypeSick      LeaveType = "sick"
	TypePersonal  LeaveType = "personal"
	TypeEmergency LeaveType = "emergency"
	TypeMaternity LeaveType = "maternity"
	TypeService   LeaveType = "service"
)

// Approval is one review stage. A pending stage has every other field nil.
type Approval struct {
	Status         ApprovalStatus `gorm:"type:varchar(16);not null;default:'pending'"`
	ApprovedBy     *uuid.UUID     `gorm:"type:uuid"`
	ApprovedByName *string        `gorm:"type:varchar(255)"`
	ApprovedAt     *time.Time
	Comments       *string `gorm:"type:text"`
}

func PendingApproval() Approval {
	return Approval{Status: ApprovalPending}
}

// LeaveRequest keeps a snapshot of the requester taken at submission; it is
// never re-derived from the directory afterwards.
type LeaveRequest struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID    uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_employee"`
	EmployeeName  string    `gorm:"type:varchar(255);not null"`
	EmployeeEmail string    `gorm:"type:varchar(255);not null"`
	Department    string    `gorm:"type:varchar(100);not null;index:idx_leave_requests_department_status"`
	Designation   string    `gorm:"type:varchar(100)"`

	LeaveType    LeaveType `gorm:"type:varchar(16);not null"`
	StartDate    time.Time `gorm:"type:date;not null"`
	EndDate      time.Time `gorm:"type:date;not null"`
	NumberOfDays int       `gorm:"not null"`
	ReasonNotes  string    `gorm:"type:text;not null"`

	Status             Status   `gorm:"type:varchar(32);not null;index:idx_leave_requests_department_status"`
	SupervisorApproval Approval `gorm:"embedded;embeddedPrefix:supervisor_"`
	HRApproval         Approval `gorm:"embedded;embeddedPrefix:hr_"`

	Documents []LeaveDocument `gorm:"foreignKey:LeaveRequestID;constraint:OnDelete:CASCADE"`

	CancellationReason *string `gorm:"type:text"`
	CancelledAt        *time.Time

	CreatedAt time.Time `gorm:"index:idx_leave_requests_employee"`
	UpdatedAt time.Time
}

func (LeaveRequest) TableName() string { return "leave_requests" }

// LeaveDocument is one supporting file; Position keeps upload order.
type LeaveDocument struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	LeaveRequestID uuid.UUID `gorm:"type:uuid;not null;index"`
	Position       int       `gorm:"not null"`
	Name           string    `gorm:"type:varchar(255);not null"`
	URL            string    `gorm:"type:text;not null"`
	Key            string    `gorm:"type:text;not null"`
	ContentType    string    `gorm:"type:varchar(128)"`
	UploadedAt     time.Time `gorm:"not null"`
}

func (LeaveDocument) TableName() string { return "leave_documents" }
