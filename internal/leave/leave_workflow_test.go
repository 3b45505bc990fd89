package leave_test

import (
	"testing"
	"time"

	"go-lcms/internal/credit"
	"go-lcms/internal/leave"
	leaveerrors "go-lcms/internal/leave/errors"
	"go-lcms/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestBucketFor(t *testing.T) {
	cases := map[leave.LeaveType]credit.Bucket{
		leave.TypeVacation:  credit.BucketRegular,
		leave.TypeSick:      credit.BucketSick,
		leave.TypePersonal:  credit.BucketSpecial,
		leave.TypeEmergency: credit.BucketEmergency,
		leave.TypeMaternity: credit.BucketMaternity,
		leave.TypeService:   credit.BucketService,
	}
	for lt, want := range cases {
		got, err := leave.BucketFor(lt)
		assert.NoError(t, err)
		assert.Equal(t, want, got, string(lt))
	}

	_, err := leave.BucketFor("sabbatical")
	assert.ErrorIs(t, err, leaveerrors.ErrInvalidLeaveType)
}

func TestDayCount(t *testing.T) {
	// Monday to Wednesday inclusive.
	assert.Equal(t, 3, leave.DayCount(date("2026-11-02"), date("2026-11-04")))
	assert.Equal(t, 1, leave.DayCount(date("2026-11-02"), date("2026-11-02")))
	// weekends are not excluded
	assert.Equal(t, 7, leave.DayCount(date("2026-11-02"), date("2026-11-08")))
	// across the DST change in zones that have one; dates are UTC so it stays whole
	assert.Equal(t, 2, leave.DayCount(date("2026-03-08"), date("2026-03-09")))
	// spans longer than time.Duration can hold
	assert.Equal(t, 136601, leave.DayCount(date("2026-01-01"), date("2400-01-01")))
	assert.Equal(t, 2912443, leave.DayCount(date("2026-01-01"), date("9999-12-31")))
}

func TestToday(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	now := time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC) // already the 20th in UTC+8

	assert.Equal(t, date("2026-10-20"), leave.Today(now, loc))
	assert.Equal(t, date("2026-10-19"), leave.Today(now, time.UTC))
}

func TestValidateDraft(t *testing.T) {
	today := date("2026-10-19")
	valid := leave.LeaveDraft{
		LeaveType:   "vacation",
		StartDate:   "2026-11-02",
		EndDate:     "2026-11-04",
		ReasonNotes: "  family trip  ",
	}

	t.Run("success recomputes days", func(t *testing.T) {
		d, err := leave.ValidateDraft(valid, today)
		require.NoError(t, err)
		assert.Equal(t, 3, d.Days)
		assert.Equal(t, credit.BucketRegular, d.Bucket)
		assert.Equal(t, "family trip", d.Reason)
	})

	t.Run("success start today", func(t *testing.T) {
		req := valid
		req.StartDate = "2026-10-19"
		req.EndDate = "2026-10-19"
		d, err := leave.ValidateDraft(req, today)
		require.NoError(t, err)
		assert.Equal(t, 1, d.Days)
	})

	t.Run("success matching caller day count", func(t *testing.T) {
		req := valid
		req.NumberOfDays = 3
		_, err := leave.ValidateDraft(req, today)
		assert.NoError(t, err)
	})

	tests := []struct {
		name   string
		modify func(*leave.LeaveDraft)
		want   error
	}{
		{"missing type", func(r *leave.LeaveDraft) { r.LeaveType = "" }, leaveerrors.ErrInvalidLeaveType},
		{"unknown type", func(r *leave.LeaveDraft) { r.LeaveType = "sabbatical" }, leaveerrors.ErrInvalidLeaveType},
		{"bad date", func(r *leave.LeaveDraft) { r.StartDate = "11/02/2026" }, leaveerrors.ErrInvalidDateFormat},
		{"missing end", func(r *leave.LeaveDraft) { r.EndDate = "" }, leaveerrors.ErrInvalidDateFormat},
		{"start in past", func(r *leave.LeaveDraft) { r.StartDate = "2026-10-18" }, leaveerrors.ErrStartDateInPast},
		{"end before start", func(r *leave.LeaveDraft) { r.EndDate = "2026-11-01" }, leaveerrors.ErrInvalidDateRange},
		{"day count mismatch", func(r *leave.LeaveDraft) { r.NumberOfDays = 5 }, leaveerrors.ErrNumberOfDaysMismatch},
		{"blank reason", func(r *leave.LeaveDraft) { r.ReasonNotes = "   " }, leaveerrors.ErrReasonRequired},
	}
	for _, tt := range tests {
		t.Run("negative "+tt.name, func(t *testing.T) {
			req := valid
			tt.modify(&req)
			_, err := leave.ValidateDraft(req, today)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNextStatus(t *testing.T) {
	tests := []struct {
		current leave.Status
		role    session.Role
		d       leave.Decision
		want    leave.Status
		err     error
	}{
		{leave.StatusPendingSupervisor, session.RoleSupervisor, leave.DecisionApprove, leave.StatusPendingHR, nil},
		{leave.StatusPendingSupervisor, session.RoleSupervisor, leave.DecisionReject, leave.StatusRejectedSupervisor, nil},
		{leave.StatusPendingHR, session.RoleHR, leave.DecisionApprove, leave.StatusApproved, nil},
		{leave.StatusPendingHR, session.RoleHR, leave.DecisionReject, leave.StatusRejectedHR, nil},
		{leave.StatusPendingSupervisor, session.RoleHR, leave.DecisionApprove, "", leaveerrors.ErrInvalidTransition},
		{leave.StatusPendingHR, session.RoleSupervisor, leave.DecisionApprove, "", leaveerrors.ErrInvalidTransition},
		{leave.StatusApproved, session.RoleHR, leave.DecisionApprove, "", leaveerrors.ErrInvalidTransition},
		{leave.StatusCancelled, session.RoleSupervisor, leave.DecisionReject, "", leaveerrors.ErrInvalidTransition},
		{leave.StatusRejectedHR, session.RoleHR, leave.DecisionApprove, "", leaveerrors.ErrInvalidTransition},
		{leave.StatusPendingSupervisor, session.RoleEmployee, leave.DecisionApprove, "", leaveerrors.ErrRoleCannotDecide},
	}
	for _, tt := range tests {
		got, err := leave.NextStatus(tt.current, tt.role, tt.d)
		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err, "%s by %s", tt.current, tt.role)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestCanCancel(t *testing.T) {
	today := date("2026-10-19")

	assert.NoError(t, leave.CanCancel(leave.LeaveRequest{Status: leave.StatusPendingSupervisor}, today))
	assert.NoError(t, leave.CanCancel(leave.LeaveRequest{Status: leave.StatusPendingHR, StartDate: date("2026-01-01")}, today))
	assert.NoError(t, leave.CanCancel(leave.LeaveRequest{Status: leave.StatusApproved, StartDate: date("2026-10-20")}, today))

	assert.ErrorIs(t, leave.CanCancel(leave.LeaveRequest{Status: leave.StatusApproved, StartDate: today}, today), leaveerrors.ErrAlreadyStarted)
	assert.ErrorIs(t, leave.CanCancel(leave.LeaveRequest{Status: leave.StatusRejectedHR}, today), leaveerrors.ErrNotCancellable)
	assert.ErrorIs(t, leave.CanCancel(leave.LeaveRequest{Status: leave.StatusCancelled}, today), leaveerrors.ErrNotCancellable)
}

func TestCanEdit(t *testing.T) {
	assert.NoError(t, leave.CanEdit(leave.StatusPendingSupervisor))
	assert.NoError(t, leave.CanEdit(leave.StatusPendingHR))
	assert.ErrorIs(t, leave.CanEdit(leave.StatusApproved), leaveerrors.ErrNotEditable)
	assert.ErrorIs(t, leave.CanEdit(leave.StatusRejectedSupervisor), leaveerrors.ErrNotEditable)
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "Pending Supervisor Approval", leave.StatusText(leave.StatusPendingSupervisor, session.RoleEmployee))
	assert.Equal(t, "Pending Supervisor", leave.StatusText(leave.StatusPendingSupervisor, session.RoleSupervisor))
	assert.Equal(t, "Pending HR", leave.StatusText(leave.StatusPendingHR, session.RoleHR))
	assert.Equal(t, "Rejected by HR", leave.StatusText(leave.StatusRejectedHR, session.RoleSupervisor))
	assert.Equal(t, "weird", leave.StatusText("weird", session.RoleEmployee))

	assert.Equal(t, "Special Privilege Leave", leave.LeaveTypeLabel(leave.TypePersonal))
	assert.Equal(t, "Maternity/Paternity Leave", leave.LeaveTypeLabel(leave.TypeMaternity))
}
