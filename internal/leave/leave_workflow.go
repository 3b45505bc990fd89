package leave

import (
	"strings"
	"time"

	"go-lcms/internal/credit"
	leaveerrors "go-lcms/internal/leave/errors"
	"go-lcms/internal/session"
)

const dateLayout = "2006-01-02"

const DefaultCancellationReason = "Cancelled by employee"

var LeaveTypes = []LeaveType{TypeVacation, TypeSick, TypePersonal, TypeEmergency, TypeMaternity, TypeService}

var bucketByType = map[LeaveType]credit.Bucket{
	TypeVacation:  credit.BucketRegular,
	TypeSick:      credit.BucketSick,
	TypePersonal:  credit.BucketSpecial,
	TypeEmergency: credit.BucketEmergency,
	TypeMaternity: credit.BucketMaternity,
	TypeService:   credit.BucketService,
}

func ParseLeaveType(s string) (LeaveType, error) {
	t := LeaveType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := bucketByType[t]; !ok {
		return "", leaveerrors.ErrInvalidLeaveType
	}
	return t, nil
}

// BucketFor is the ledger bucket a leave type draws from.
func BucketFor(t LeaveType) (credit.Bucket, error) {
	b, ok := bucketByType[t]
	if !ok {
		return "", leaveerrors.ErrInvalidLeaveType
	}
	return b, nil
}

func ParseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

// DayCount is the inclusive number of calendar days; weekends and holidays count.
// Both dates are UTC midnights, so whole Unix days never lose precision.
func DayCount(start, end time.Time) int {
	return int((end.Unix()-start.Unix())/secondsPerDay) + 1
}

const secondsPerDay = 24 * 60 * 60

// Today is the current calendar date in loc, as a UTC midnight comparable with ParseDate.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Draft is a validated submission or edit.
type Draft struct {
	Type   LeaveType
	Bucket credit.Bucket
	Start  time.Time
	End    time.Time
	Days   int
	Reason string
}

// ValidateDraft checks a request before any I/O. NumberOfDays is always
// recomputed; a non-zero caller value that disagrees is rejected.
func ValidateDraft(req LeaveDraft, today time.Time) (Draft, error) {
	if strings.TrimSpace(req.LeaveType) == "" {
		return Draft{}, leaveerrors.ErrInvalidLeaveType
	}
	t, err := ParseLeaveType(req.LeaveType)
	if err != nil {
		return Draft{}, err
	}
	bucket, err := BucketFor(t)
	if err != nil {
		return Draft{}, err
	}

	start, err := ParseDate(req.StartDate)
	if err != nil {
		return Draft{}, err
	}
	end, err := ParseDate(req.EndDate)
	if err != nil {
		return Draft{}, err
	}
	if start.Before(today) {
		return Draft{}, leaveerrors.ErrStartDateInPast
	}
	if end.Before(start) {
		return Draft{}, leaveerrors.ErrInvalidDateRange
	}

	days := DayCount(start, end)
	if req.NumberOfDays != 0 && req.NumberOfDays != days {
		return Draft{}, leaveerrors.ErrNumberOfDaysMismatch
	}

	reason := strings.TrimSpace(req.ReasonNotes)
	if reason == "" {
		return Draft{}, leaveerrors.ErrReasonRequired
	}

	return Draft{Type: t, Bucket: bucket, Start: start, End: end, Days: days, Reason: reason}, nil
}

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func ParseDecision(s string) (Decision, error) {
	switch d := Decision(strings.ToLower(strings.TrimSpace(s))); d {
	case DecisionApprove, DecisionReject:
		return d, nil
	default:
		return "", leaveerrors.ErrInvalidDecision
	}
}

// NextStatus is the review state machine: supervisors act on
// pending_supervisor, hr on pending_hr, nothing else moves.
func NextStatus(current Status, role session.Role, d Decision) (Status, error) {
	switch role {
	case session.RoleSupervisor:
		if current != StatusPendingSupervisor {
			return "", leaveerrors.ErrInvalidTransition
		}
		if d == DecisionApprove {
			return StatusPendingHR, nil
		}
		return StatusRejectedSupervisor, nil
	case session.RoleHR:
		if current != StatusPendingHR {
			return "", leaveerrors.ErrInvalidTransition
		}
		if d == DecisionApprove {
			return StatusApproved, nil
		}
		return StatusRejectedHR, nil
	default:
		return "", leaveerrors.ErrRoleCannotDecide
	}
}

var statuses = []Status{
	StatusPendingSupervisor,
	StatusPendingHR,
	StatusApproved,
	StatusRejectedSupervisor,
	StatusRejectedHR,
	StatusCancelled,
}

func ParseStatus(s string) (Status, bool) {
	v := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range statuses {
		if st == v {
			return v, true
		}
	}
	return "", false
}

func IsPending(s Status) bool {
	return s == StatusPendingSupervisor || s == StatusPendingHR
}

func CanEdit(s Status) error {
	if !IsPending(s) {
		return leaveerrors.ErrNotEditable
	}
	return nil
}

// CanCancel allows pending requests, and approved ones whose start date is
// strictly after today.
func CanCancel(l LeaveRequest, today time.Time) error {
	switch {
	case IsPending(l.Status):
		return nil
	case l.Status == StatusApproved:
		if l.StartDate.After(today) {
			return nil
		}
		return leaveerrors.ErrAlreadyStarted
	default:
		return leaveerrors.ErrNotCancellable
	}
}

var baseStatusText = map[Status]string{
	StatusPendingSupervisor:  "Pending Supervisor Approval",
	StatusPendingHR:          "Pending HR Approval",
	StatusApproved:           "Approved",
	StatusRejectedSupervisor: "Rejected by Supervisor",
	StatusRejectedHR:         "Rejected by HR",
	StatusCancelled:          "Cancelled",
}

// reviewers get the short labels.
var statusTextOverrides = map[session.Role]map[Status]string{
	session.RoleSupervisor: {
		StatusPendingSupervisor: "Pending Supervisor",
		StatusPendingHR:         "Pending HR",
	},
	session.RoleHR: {
		StatusPendingSupervisor: "Pending Supervisor",
		StatusPendingHR:         "Pending HR",
	},
}

func StatusText(s Status, audience session.Role) string {
	if text, ok := statusTextOverrides[audience][s]; ok {
		return text
	}
	if text, ok := baseStatusText[s]; ok {
		return text
	}
	return string(s)
}

var leaveTypeLabels = map[LeaveType]string{
	TypeVacation:  "Regular Leave",
	TypeSick:      "Sick Leave",
	TypePersonal:  "Special Privilege Leave",
	TypeEmergency: "Emergency Leave",
	TypeMaternity: "Maternity/Paternity Leave",
	TypeService:   "Service Incentive Leave",
}

func LeaveTypeLabel(t LeaveType) string {
	if label, ok := leaveTypeLabels[t]; ok {
		return label
	}
	return string(t)
}
