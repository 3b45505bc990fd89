package report_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"go-lcms/internal/leave"
	leaveMock "go-lcms/internal/leave/mock"
	"go-lcms/internal/report"
	reporterrors "go-lcms/internal/report/errors"
	"go-lcms/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/mock/gomock"
)

func sampleLeaves() []leave.LeaveRequest {
	sup := "Ben Reyes"
	hr := "Dan Sy"
	start := time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)
	return []leave.LeaveRequest{
		{
			ID:                 uuid.New(),
			EmployeeName:       "Ana Cruz",
			EmployeeEmail:      "ana@lcms.test",
			Department:         "IT",
			LeaveType:          leave.TypeVacation,
			StartDate:          start,
			EndDate:            start.AddDate(0, 0, 2),
			NumberOfDays:       3,
			ReasonNotes:        "Family trip",
			Status:             leave.StatusApproved,
			SupervisorApproval: leave.Approval{Status: leave.ApprovalApproved, ApprovedByName: &sup},
			HRApproval:         leave.Approval{Status: leave.ApprovalApproved, ApprovedByName: &hr},
		},
		{
			ID:                 uuid.New(),
			EmployeeName:       "Eli Tan",
			Department:         "IT",
			LeaveType:          leave.TypeSick,
			StartDate:          start,
			EndDate:            start,
			NumberOfDays:       1,
			ReasonNotes:        "Fever",
			Status:             leave.StatusPendingSupervisor,
			SupervisorApproval: leave.PendingApproval(),
			HRApproval:         leave.PendingApproval(),
		},
	}
}

func TestReportService_ExportLeaves(t *testing.T) {
	ctx := context.Background()

	t.Run("success builds both sheets", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := leaveMock.NewMockRepository(ctrl)
		svc := report.NewService(repo)

		repo.EXPECT().List(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, f leave.ListFilter) ([]leave.LeaveRequest, error) {
				assert.Equal(t, "IT", f.Department)
				require.NotNil(t, f.From)
				require.NotNil(t, f.To)
				assert.Equal(t, []leave.Status{leave.StatusApproved}, f.Statuses)
				return sampleLeaves(), nil
			})

		export, err := svc.ExportLeaves(ctx, report.ExportQuery{
			From:       "2030-03-01",
			To:         "2030-03-31",
			Department: "IT",
			Status:     "approved",
		})
		require.NoError(t, err)
		assert.Equal(t, 2, export.Rows)
		assert.Contains(t, export.FileName, ".xlsx")

		f, err := excelize.OpenReader(bytes.NewReader(export.Content))
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows("Leave Requests")
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "Request ID", rows[0][0])
		assert.Equal(t, "Ana Cruz", rows[1][1])
		assert.Equal(t, "Regular Leave", rows[1][5])
		assert.Equal(t, "Approved", rows[1][9])
		assert.Equal(t, "Ben Reyes", rows[1][10])

		summary, err := f.GetRows("Summary")
		require.NoError(t, err)
		assert.Equal(t, []string{"Status", "Requests"}, summary[0])
		assert.Contains(t, summary, []string{"Regular Leave", "3"})
	})

	t.Run("negative from after to", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := report.NewService(leaveMock.NewMockRepository(ctrl))

		_, err := svc.ExportLeaves(ctx, report.ExportQuery{From: "2030-04-01", To: "2030-03-01"})
		assert.ErrorIs(t, err, reporterrors.ErrInvalidRange)
	})

	t.Run("negative bad date", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := report.NewService(leaveMock.NewMockRepository(ctrl))

		_, err := svc.ExportLeaves(ctx, report.ExportQuery{From: "03/01/2030"})
		assert.ErrorIs(t, err, reporterrors.ErrInvalidDate)
	})

	t.Run("negative unknown status", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := report.NewService(leaveMock.NewMockRepository(ctrl))

		_, err := svc.ExportLeaves(ctx, report.ExportQuery{Status: "archived"})
		assert.ErrorIs(t, err, reporterrors.ErrInvalidStatus)
	})

	t.Run("negative store failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := leaveMock.NewMockRepository(ctrl)
		svc := report.NewService(repo)

		repo.EXPECT().List(ctx, gomock.Any()).Return(nil, errors.New("db down"))

		_, err := svc.ExportLeaves(ctx, report.ExportQuery{})
		assert.ErrorIs(t, err, apperror.ErrStoreUnavailable)
	})
}
