package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-lcms/internal/leave"
	reporterrors "go-lcms/internal/report/errors"
	"go-lcms/internal/session"
	"go-lcms/internal/shared/apperror"
	"go-lcms/internal/shared/contextutil"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	sheetRequests = "Leave Requests"
	sheetSummary  = "Summary"
)

var requestHeader = []any{
	"Request ID", "Employee", "Email", "Department", "Designation", "Leave Type",
	"Start Date", "End Date", "Days", "Status", "Supervisor", "Supervisor Decision",
	"HR", "HR Decision", "Reason", "Cancellation Reason", "Submitted At",
}

type Service interface {
	ExportLeaves(ctx context.Context, q ExportQuery) (Export, error)
}

type service struct {
	repo   leave.Repository
	now    func() time.Time
	logger *zap.Logger
}

func NewService(repo leave.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("report.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("report.service")
	}
	return &service{repo: repo, now: time.Now, logger: l}
}

func (s *service) ExportLeaves(ctx context.Context, q ExportQuery) (Export, error) {
	rid := contextutil.GetRequestID(ctx)
	filter, err := toFilter(q)
	if err != nil {
		s.logger.Warn("export leaves invalid query", zap.String("request_id", rid), zap.Error(err))
		return Export{}, err
	}

	leaves, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("export leaves list failed", zap.String("request_id", rid), zap.Error(err))
		return Export{}, apperror.WrapWith(apperror.ErrStoreUnavailable, err)
	}

	content, err := buildWorkbook(leaves)
	if err != nil {
		s.logger.Error("export leaves build workbook failed", zap.String("request_id", rid), zap.Error(err))
		return Export{}, apperror.WrapWith(reporterrors.ErrExportFailed, err)
	}

	s.logger.Info("export leaves success",
		zap.String("request_id", rid),
		zap.Int("rows", len(leaves)),
		zap.String("department", filter.Department),
	)
	return Export{
		FileName: fmt.Sprintf("leave-requests-%s.xlsx", s.now().UTC().Format("20060102-150405")),
		Rows:     len(leaves),
		Content:  content,
	}, nil
}

func toFilter(q ExportQuery) (leave.ListFilter, error) {
	filter := leave.ListFilter{Department: strings.TrimSpace(q.Department)}

	if q.From != "" {
		from, err := leave.ParseDate(q.From)
		if err != nil {
			return filter, reporterrors.ErrInvalidDate
		}
		filter.From = &from
	}
	if q.To != "" {
		to, err := leave.ParseDate(q.To)
		if err != nil {
			return filter, reporterrors.ErrInvalidDate
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return filter, reporterrors.ErrInvalidRange
	}
	if q.Status != "" {
		st, ok := leave.ParseStatus(q.Status)
		if !ok {
			return filter, reporterrors.ErrInvalidStatus
		}
		filter.Statuses = []leave.Status{st}
	}
	return filter, nil
}

func buildWorkbook(leaves []leave.LeaveRequest) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetRequests); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(sheetRequests, "A1", &requestHeader); err != nil {
		return nil, err
	}
	for i, l := range leaves {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := requestRow(l)
		if err := f.SetSheetRow(sheetRequests, cell, &row); err != nil {
			return nil, err
		}
	}
	if err := f.SetRowStyle(sheetRequests, 1, 1, bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheetRequests, "A", "Q", 20); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(sheetSummary); err != nil {
		return nil, err
	}
	if err := writeSummary(f, leaves); err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(sheetSummary, 1, 1, bold); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func requestRow(l leave.LeaveRequest) []any {
	cancellation := ""
	if l.CancellationReason != nil {
		cancellation = *l.CancellationReason
	}
	return []any{
		l.ID.String(),
		l.EmployeeName,
		l.EmployeeEmail,
		l.Department,
		l.Designation,
		leave.LeaveTypeLabel(l.LeaveType),
		l.StartDate.Format("2006-01-02"),
		l.EndDate.Format("2006-01-02"),
		l.NumberOfDays,
		leave.StatusText(l.Status, session.RoleHR),
		approverName(l.SupervisorApproval),
		string(l.SupervisorApproval.Status),
		approverName(l.HRApproval),
		string(l.HRApproval.Status),
		l.ReasonNotes,
		cancellation,
		l.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func approverName(a leave.Approval) string {
	if a.ApprovedByName == nil {
		return ""
	}
	return *a.ApprovedByName
}

// writeSummary adds request counts per status and approved days per leave type.
func writeSummary(f *excelize.File, leaves []leave.LeaveRequest) error {
	byStatus := map[leave.Status]int{}
	approvedDays := map[leave.LeaveType]int{}
	for _, l := range leaves {
		byStatus[l.Status]++
		if l.Status == leave.StatusApproved {
			approvedDays[l.LeaveType] += l.NumberOfDays
		}
	}

	rows := [][]any{{"Status", "Requests"}}
	for _, st := range []leave.Status{
		leave.StatusPendingSupervisor,
		leave.StatusPendingHR,
		leave.StatusApproved,
		leave.StatusRejectedSupervisor,
		leave.StatusRejectedHR,
		leave.StatusCancelled,
	} {
		rows = append(rows, []any{leave.StatusText(st, session.RoleHR), byStatus[st]})
	}
	rows = append(rows, []any{}, []any{"Leave Type", "Approved Days"})
	for _, t := range leave.LeaveTypes {
		rows = append(rows, []any{leave.LeaveTypeLabel(t), approvedDays[t]})
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetSummary, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheetSummary, "A", "B", 28)
}
