package events

import "time"

const LeaveStatusChangedTopic = "lcms.leave.status.v1"

const (
	LeaveSubmitted = "leave_submitted"
	LeaveEdited    = "leave_edited"
	LeaveDecided   = "leave_decided"
	LeaveCancelled = "leave_cancelled"
)

// LeaveStatusChangedEvent is emitted in the same transaction as every status write.
type LeaveStatusChangedEvent struct {
	EventType     string    `json:"event_type"`
	RequestID     string    `json:"request_id,omitempty"`
	LeaveID       string    `json:"leave_id"`
	EmployeeID    string    `json:"employee_id"`
	EmployeeName  string    `json:"employee_name"`
	EmployeeEmail string    `json:"employee_email"`
	Department    string    `json:"department"`
	LeaveType     string    `json:"leave_type"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	NumberOfDays  int       `json:"number_of_days"`
	FromStatus    string    `json:"from_status,omitempty"`
	ToStatus      string    `json:"to_status"`
	ActorID       string    `json:"actor_id"`
	ActorName     string    `json:"actor_name,omitempty"`
	Comments      string    `json:"comments,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
