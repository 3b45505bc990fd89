package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go-lcms/internal/credit"
	"go-lcms/internal/document"
	documenterrors "go-lcms/internal/document/errors"
	"go-lcms/internal/employee"
	"go-lcms/internal/events"
	leaveerrors "go-lcms/internal/leave/errors"
	"go-lcms/internal/messaging/kafka"
	"go-lcms/internal/session"
	"go-lcms/internal/shared/apperror"
	"go-lcms/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Directory resolves requester and approver identity; employee.Service satisfies it.
type Directory interface {
	GetByID(ctx context.Context, id string) (employee.EmployeeResponse, error)
}

type Service interface {
	Submit(ctx context.Context, sess session.Session, req LeaveDraft, files []document.File) (LeaveResponse, error)
	// Edit sends the request back to pending_supervisor with both approvals
	// cleared, whichever stage it had reached.
	Edit(ctx context.Context, sess session.Session, id string, req EditLeaveRequest, files []document.File) (LeaveResponse, error)
	Decide(ctx context.Context, sess session.Session, id string, req DecisionRequest) (LeaveResponse, error)
	Cancel(ctx context.Context, sess session.Session, id string, reason string) (LeaveResponse, error)
	GetByID(ctx context.Context, sess session.Session, id string) (LeaveResponse, error)
	ListForEmployee(ctx context.Context, sess session.Session, employeeID string) ([]LeaveResponse, error)
	ListPendingForRole(ctx context.Context, sess session.Session, role session.Role, scope string) ([]LeaveResponse, error)
	ListReviewedBySupervisor(ctx context.Context, sess session.Session, department string) ([]LeaveResponse, error)
	Balances(ctx context.Context, sess session.Session) (credit.BalancesResponse, error)
	// OpenDocument reads a stored attachment by blob key for a caller allowed to
	// view the request it belongs to.
	OpenDocument(ctx context.Context, sess session.Session, key string) (DocumentContent, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	credits   credit.Repository
	directory Directory
	uploader  *document.Uploader
	outbox    kafka.OutboxRepository
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewService wires the engine. outboxRepo may be nil, in which case no
// events are queued. loc decides what "today" is for date validation.
func NewService(
	db *sql.DB,
	repo Repository,
	credits credit.Repository,
	directory Directory,
	uploader *document.Uploader,
	outboxRepo kafka.OutboxRepository,
	loc *time.Location,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	if loc == nil {
		loc = time.Local
	}
	return &service{
		db:        db,
		repo:      repo,
		credits:   credits,
		directory: directory,
		uploader:  uploader,
		outbox:    outboxRepo,
		loc:       loc,
		now:       time.Now,
		logger:    l,
	}
}

func (s *service) Submit(ctx context.Context, sess session.Session, req LeaveDraft, files []document.File) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("submit leave requested",
		zap.String("request_id", rid),
		zap.String("employee_id", sess.UserID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	draft, err := ValidateDraft(req, Today(s.now(), s.loc))
	if err != nil {
		s.logger.Warn("submit leave validation failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}
	if err := s.uploader.ValidateAll(files); err != nil {
		return LeaveResponse{}, err
	}

	requester, err := s.directory.GetByID(ctx, sess.UserID)
	if err != nil {
		s.logger.Warn("submit leave requester lookup failed",
			zap.String("request_id", rid),
			zap.String("employee_id", sess.UserID),
			zap.Error(err),
		)
		return LeaveResponse{}, mapRepositoryError(err)
	}
	employeeID, err := uuid.Parse(requester.ID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidEmployeeID
	}

	if err := s.checkCredits(ctx, requester.ID, draft); err != nil {
		s.logger.Warn("submit leave credit check failed",
			zap.String("request_id", rid),
			zap.String("employee_id", requester.ID),
			zap.String("bucket", string(draft.Bucket)),
			zap.Int("requested", draft.Days),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	leaveID := uuid.New()
	stored, err := s.uploader.UploadAll(ctx, leaveID.String(), files)
	if err != nil {
		return LeaveResponse{}, err
	}
	committed := false
	defer func() {
		if !committed {
			s.uploader.Discard(ctx, stored)
		}
	}()

	now := s.now().UTC()
	l := &LeaveRequest{
		ID:                 leaveID,
		EmployeeID:         employeeID,
		EmployeeName:       requester.Name,
		EmployeeEmail:      requester.Email,
		Department:         requester.Department,
		Designation:        requester.Designation,
		LeaveType:          draft.Type,
		StartDate:          draft.Start,
		EndDate:            draft.End,
		NumberOfDays:       draft.Days,
		ReasonNotes:        draft.Reason,
		Status:             StatusPendingSupervisor,
		SupervisorApproval: PendingApproval(),
		HRApproval:         PendingApproval(),
		Documents:          toDocuments(leaveID, stored, 0),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("submit leave begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, l); err != nil {
		s.logger.Error("submit leave persist failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if err := s.enqueue(ctx, tx, events.LeaveSubmitted, *l, "", sess.UserID, requester.Name, ""); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("submit leave commit failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}
	committed = true

	s.logger.Info("submit leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_id", requester.ID),
		zap.Int("number_of_days", l.NumberOfDays),
		zap.Int("documents", len(l.Documents)),
	)
	return mapToResponse(*l, sess.Role), nil
}

func (s *service) Edit(ctx context.Context, sess session.Session, id string, req EditLeaveRequest, files []document.File) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("edit leave requested",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("employee_id", sess.UserID),
	)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	draft, err := ValidateDraft(req.LeaveDraft, Today(s.now(), s.loc))
	if err != nil {
		s.logger.Warn("edit leave validation failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	if err := s.uploader.ValidateAll(files); err != nil {
		return LeaveResponse{}, err
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if l.EmployeeID.String() != sess.UserID {
		s.logger.Warn("edit leave by non owner", zap.String("leave_id", id), zap.String("actor_id", sess.UserID))
		return LeaveResponse{}, leaveerrors.ErrNotOwner
	}
	if err := CanEdit(l.Status); err != nil {
		s.logger.Warn("edit leave invalid state", zap.String("leave_id", id), zap.String("status", string(l.Status)))
		return LeaveResponse{}, err
	}

	kept, removed, err := splitDocuments(l.Documents, req.RemoveDocuments)
	if err != nil {
		return LeaveResponse{}, err
	}
	if err := s.checkCredits(ctx, l.EmployeeID.String(), draft); err != nil {
		s.logger.Warn("edit leave credit check failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	stored, err := s.uploader.UploadAll(ctx, id, files)
	if err != nil {
		return LeaveResponse{}, err
	}
	committed := false
	defer func() {
		if !committed {
			s.uploader.Discard(ctx, stored)
		}
	}()

	now := s.now().UTC()
	changes := map[string]any{
		"leave_type":     draft.Type,
		"start_date":     draft.Start,
		"end_date":       draft.End,
		"number_of_days": draft.Days,
		"reason_notes":   draft.Reason,
		"status":         StatusPendingSupervisor,
		"updated_at":     now,
	}
	addApprovalChanges(changes, "supervisor_", PendingApproval())
	addApprovalChanges(changes, "hr_", PendingApproval())

	docs := append(renumber(kept), toDocuments(l.ID, stored, len(kept))...)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("edit leave begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	ok, err := qtx.Transition(ctx, id, l.Status, changes)
	if err != nil {
		s.logger.Error("edit leave persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if !ok {
		s.logger.Warn("edit leave lost race", zap.String("leave_id", id), zap.String("expected_status", string(l.Status)))
		return LeaveResponse{}, leaveerrors.ErrConcurrentUpdate
	}
	if err := qtx.ReplaceDocuments(ctx, l.ID, docs); err != nil {
		s.logger.Error("edit leave documents persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	from := l.Status
	l.LeaveType = draft.Type
	l.StartDate = draft.Start
	l.EndDate = draft.End
	l.NumberOfDays = draft.Days
	l.ReasonNotes = draft.Reason
	l.Status = StatusPendingSupervisor
	l.SupervisorApproval = PendingApproval()
	l.HRApproval = PendingApproval()
	l.Documents = docs
	l.UpdatedAt = now

	if err := s.enqueue(ctx, tx, events.LeaveEdited, *l, from, sess.UserID, l.EmployeeName, ""); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("edit leave commit failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}
	committed = true
	s.uploader.Discard(ctx, toStored(removed))

	s.logger.Info("edit leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("from_status", string(from)),
		zap.Int("number_of_days", l.NumberOfDays),
	)
	return mapToResponse(*l, sess.Role), nil
}

func (s *service) Decide(ctx context.Context, sess session.Session, id string, req DecisionRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("decide leave requested",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("actor_id", sess.UserID),
		zap.String("role", string(sess.Role)),
		zap.String("decision", req.Decision),
	)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	decision, err := ParseDecision(req.Decision)
	if err != nil {
		return LeaveResponse{}, err
	}
	if sess.Role != session.RoleSupervisor && sess.Role != session.RoleHR {
		return LeaveResponse{}, leaveerrors.ErrRoleCannotDecide
	}

	approver, err := s.directory.GetByID(ctx, sess.UserID)
	if err != nil {
		s.logger.Error("decide leave approver lookup failed",
			zap.String("request_id", rid),
			zap.String("actor_id", sess.UserID),
			zap.Error(err),
		)
		return LeaveResponse{}, apperror.WrapWith(leaveerrors.ErrApproverLookupFailed, err)
	}
	approverID, err := uuid.Parse(approver.ID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrApproverLookupFailed
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if l.EmployeeID == approverID {
		return LeaveResponse{}, leaveerrors.ErrSelfDecision
	}
	if sess.Role == session.RoleSupervisor && !sameDepartment(approver.Department, l.Department) {
		s.logger.Warn("decide leave outside department",
			zap.String("leave_id", id),
			zap.String("actor_department", approver.Department),
			zap.String("leave_department", l.Department),
		)
		return LeaveResponse{}, leaveerrors.ErrOutsideDepartment
	}

	next, err := NextStatus(l.Status, sess.Role, decision)
	if err != nil {
		s.logger.Warn("decide leave invalid transition",
			zap.String("leave_id", id),
			zap.String("status", string(l.Status)),
			zap.String("role", string(sess.Role)),
		)
		return LeaveResponse{}, err
	}
	bucket, err := BucketFor(l.LeaveType)
	if err != nil {
		return LeaveResponse{}, err
	}

	now := s.now().UTC()
	approval := Approval{
		Status:         ApprovalApproved,
		ApprovedBy:     &approverID,
		ApprovedByName: &approver.Name,
		ApprovedAt:     &now,
	}
	if decision == DecisionReject {
		approval.Status = ApprovalRejected
	}
	if c := strings.TrimSpace(req.Comments); c != "" {
		approval.Comments = &c
	}

	prefix := "supervisor_"
	if sess.Role == session.RoleHR {
		prefix = "hr_"
	}
	changes := map[string]any{"status": next, "updated_at": now}
	addApprovalChanges(changes, prefix, approval)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("decide leave begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}
	defer tx.Rollback()

	ok, err := s.repo.WithTx(tx).Transition(ctx, id, l.Status, changes)
	if err != nil {
		s.logger.Error("decide leave persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if !ok {
		s.logger.Warn("decide leave lost race", zap.String("leave_id", id), zap.String("expected_status", string(l.Status)))
		return LeaveResponse{}, leaveerrors.ErrConcurrentUpdate
	}

	deducted := false
	if next == StatusApproved {
		ledger := s.credits.WithTx(tx)
		ok, err := ledger.Deduct(ctx, l.EmployeeID.String(), bucket, l.NumberOfDays)
		if err != nil {
			s.logger.Error("decide leave deduct credits failed", zap.String("leave_id", id), zap.Error(err))
			return LeaveResponse{}, mapRepositoryError(err)
		}
		if !ok {
			available := 0
			if c, err := ledger.FindBucket(ctx, l.EmployeeID.String(), bucket); err == nil {
				available = c.Remaining
			}
			s.logger.Warn("decide leave insufficient credits at approval",
				zap.String("leave_id", id),
				zap.String("bucket", string(bucket)),
				zap.Int("available", available),
				zap.Int("requested", l.NumberOfDays),
			)
			return LeaveResponse{}, &leaveerrors.InsufficientCreditsError{
				Bucket:    string(bucket),
				Available: available,
				Requested: l.NumberOfDays,
			}
		}
		deducted = true
	}

	from := l.Status
	l.Status = next
	l.UpdatedAt = now
	if sess.Role == session.RoleHR {
		l.HRApproval = approval
	} else {
		l.SupervisorApproval = approval
	}

	if err := s.enqueue(ctx, tx, events.LeaveDecided, *l, from, approver.ID, approver.Name, req.Comments); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		if deducted {
			s.logger.Error("decide leave commit failed after credit deduction, status and ledger need reconciling",
				zap.String("request_id", rid),
				zap.String("leave_id", id),
				zap.String("employee_id", l.EmployeeID.String()),
				zap.String("bucket", string(bucket)),
				zap.Int("days", l.NumberOfDays),
				zap.Error(err),
			)
		} else {
			s.logger.Error("decide leave commit failed", zap.String("request_id", rid), zap.Error(err))
		}
		return LeaveResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("decide leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("from_status", string(from)),
		zap.String("to_status", string(next)),
		zap.Bool("credits_deducted", deducted),
	)
	return mapToResponse(*l, sess.Role), nil
}

func (s *service) Cancel(ctx context.Context, sess session.Session, id string, reason string) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("cancel leave requested",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("employee_id", sess.UserID),
	)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if l.EmployeeID.String() != sess.UserID {
		s.logger.Warn("cancel leave by non owner", zap.String("leave_id", id), zap.String("actor_id", sess.UserID))
		return LeaveResponse{}, leaveerrors.ErrNotOwner
	}
	if err := CanCancel(*l, Today(s.now(), s.loc)); err != nil {
		s.logger.Warn("cancel leave invalid state",
			zap.String("leave_id", id),
			zap.String("status", string(l.Status)),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultCancellationReason
	}
	now := s.now().UTC()
	changes := map[string]any{
		"status":              StatusCancelled,
		"cancellation_reason": reason,
		"cancelled_at":        now,
		"updated_at":          now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("cancel leave begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}
	defer tx.Rollback()

	ok, err := s.repo.WithTx(tx).Transition(ctx, id, l.Status, changes)
	if err != nil {
		s.logger.Error("cancel leave persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if !ok {
		s.logger.Warn("cancel leave lost race", zap.String("leave_id", id), zap.String("expected_status", string(l.Status)))
		return LeaveResponse{}, leaveerrors.ErrConcurrentUpdate
	}

	restored := false
	if l.Status == StatusApproved {
		bucket, err := BucketFor(l.LeaveType)
		if err != nil {
			return LeaveResponse{}, err
		}
		ok, err := s.credits.WithTx(tx).Restore(ctx, l.EmployeeID.String(), bucket, l.NumberOfDays)
		if err != nil {
			s.logger.Error("cancel leave restore credits failed", zap.String("leave_id", id), zap.Error(err))
			return LeaveResponse{}, mapRepositoryError(err)
		}
		if !ok {
			s.logger.Error("cancel leave ledger bucket missing, nothing restored",
				zap.String("leave_id", id),
				zap.String("employee_id", l.EmployeeID.String()),
				zap.String("bucket", string(bucket)),
			)
		}
		restored = ok
	}

	from := l.Status
	l.Status = StatusCancelled
	l.CancellationReason = &reason
	l.CancelledAt = &now
	l.UpdatedAt = now

	if err := s.enqueue(ctx, tx, events.LeaveCancelled, *l, from, sess.UserID, l.EmployeeName, reason); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		if restored {
			s.logger.Error("cancel leave commit failed after credit restore, status and ledger need reconciling",
				zap.String("request_id", rid),
				zap.String("leave_id", id),
				zap.Int("days", l.NumberOfDays),
				zap.Error(err),
			)
		} else {
			s.logger.Error("cancel leave commit failed", zap.String("request_id", rid), zap.Error(err))
		}
		return LeaveResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("cancel leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("from_status", string(from)),
		zap.Bool("credits_restored", restored),
	)
	return mapToResponse(*l, sess.Role), nil
}

func (s *service) GetByID(ctx context.Context, sess session.Session, id string) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if err := s.canView(ctx, sess, l.EmployeeID.String(), l.Department); err != nil {
		return LeaveResponse{}, err
	}
	return mapToResponse(*l, sess.Role), nil
}

func (s *service) OpenDocument(ctx context.Context, sess session.Session, key string) (DocumentContent, error) {
	key = strings.TrimPrefix(key, "/")
	leaveID, ok := leaveIDFromKey(key)
	if !ok {
		return DocumentContent{}, leaveerrors.ErrDocumentNotFound
	}
	l, err := s.repo.FindByID(ctx, leaveID)
	if err != nil {
		mapped := mapRepositoryError(err)
		if errors.Is(mapped, leaveerrors.ErrLeaveNotFound) {
			return DocumentContent{}, leaveerrors.ErrDocumentNotFound
		}
		return DocumentContent{}, mapped
	}
	if err := s.canView(ctx, sess, l.EmployeeID.String(), l.Department); err != nil {
		s.logger.Warn("document access denied",
			zap.String("leave_id", leaveID),
			zap.String("user_id", sess.UserID),
			zap.Error(err),
		)
		return DocumentContent{}, err
	}

	// Only blobs still recorded on the request are served.
	var doc *LeaveDocument
	for i := range l.Documents {
		if l.Documents[i].Key == key {
			doc = &l.Documents[i]
			break
		}
	}
	if doc == nil {
		return DocumentContent{}, leaveerrors.ErrDocumentNotFound
	}

	content, err := s.uploader.Open(ctx, key)
	if err != nil {
		if errors.Is(err, documenterrors.ErrBlobNotFound) {
			s.logger.Error("document row without blob", zap.String("leave_id", leaveID), zap.String("key", key))
			return DocumentContent{}, leaveerrors.ErrDocumentNotFound
		}
		return DocumentContent{}, apperror.WrapWith(apperror.ErrStoreUnavailable, err)
	}
	return DocumentContent{Name: doc.Name, ContentType: doc.ContentType, Content: content}, nil
}

// leaveIDFromKey extracts {id} from leave-requests/{id}/{file}.
func leaveIDFromKey(key string) (string, bool) {
	parts := strings.Split(key, "/")
	if len(parts) != 3 || parts[0] != "leave-requests" || parts[2] == "" {
		return "", false
	}
	if _, err := uuid.Parse(parts[1]); err != nil {
		return "", false
	}
	return parts[1], true
}

func (s *service) ListForEmployee(ctx context.Context, sess session.Session, employeeID string) ([]LeaveResponse, error) {
	if employeeID == "" {
		employeeID = sess.UserID
	}
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, leaveerrors.ErrInvalidEmployeeID
	}

	if employeeID != sess.UserID {
		target, err := s.directory.GetByID(ctx, employeeID)
		if err != nil {
			return nil, mapRepositoryError(err)
		}
		if err := s.canView(ctx, sess, employeeID, target.Department); err != nil {
			return nil, err
		}
	}

	leaves, err := s.repo.List(ctx, ListFilter{EmployeeID: employeeID})
	if err != nil {
		s.logger.Error("list leaves for employee failed", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(leaves, sess.Role), nil
}

// ListPendingForRole returns the queue a reviewer acts on. Supervisors are
// pinned to their own department; hr may narrow by scope.
func (s *service) ListPendingForRole(ctx context.Context, sess session.Session, role session.Role, scope string) ([]LeaveResponse, error) {
	filter := ListFilter{Department: strings.TrimSpace(scope)}

	switch role {
	case session.RoleSupervisor:
		filter.Statuses = []Status{StatusPendingSupervisor}
	case session.RoleHR:
		filter.Statuses = []Status{StatusPendingHR}
	default:
		return nil, leaveerrors.ErrRoleCannotDecide
	}

	switch sess.Role {
	case session.RoleHR:
	case session.RoleSupervisor:
		if role != session.RoleSupervisor {
			return nil, leaveerrors.ErrRoleCannotDecide
		}
		dept, err := s.ownDepartment(ctx, sess, filter.Department)
		if err != nil {
			return nil, err
		}
		filter.Department = dept
	default:
		return nil, leaveerrors.ErrRoleCannotDecide
	}

	leaves, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("list pending leaves failed", zap.String("role", string(role)), zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(leaves, sess.Role), nil
}

// ListReviewedBySupervisor lists requests a supervisor already approved,
// whatever hr did with them afterwards.
func (s *service) ListReviewedBySupervisor(ctx context.Context, sess session.Session, department string) ([]LeaveResponse, error) {
	filter := ListFilter{
		Department:       strings.TrimSpace(department),
		SupervisorStatus: ApprovalApproved,
	}

	switch sess.Role {
	case session.RoleHR:
	case session.RoleSupervisor:
		dept, err := s.ownDepartment(ctx, sess, filter.Department)
		if err != nil {
			return nil, err
		}
		filter.Department = dept
	default:
		return nil, leaveerrors.ErrRoleCannotDecide
	}

	leaves, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("list reviewed leaves failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(leaves, sess.Role), nil
}

func (s *service) Balances(ctx context.Context, sess session.Session) (credit.BalancesResponse, error) {
	credits, err := s.credits.FindByEmployee(ctx, sess.UserID)
	if err != nil {
		s.logger.Error("get balances failed", zap.String("employee_id", sess.UserID), zap.Error(err))
		return credit.BalancesResponse{}, mapRepositoryError(err)
	}
	return credit.NewBalancesResponse(sess.UserID, credits), nil
}

// checkCredits compares the request with the bucket's remaining days. A
// missing bucket counts as zero available.
func (s *service) checkCredits(ctx context.Context, employeeID string, d Draft) error {
	c, err := s.credits.FindBucket(ctx, employeeID, d.Bucket)
	if err != nil {
		if credit.IsNotFound(err) {
			return &leaveerrors.InsufficientCreditsError{Bucket: string(d.Bucket), Available: 0, Requested: d.Days}
		}
		return mapRepositoryError(err)
	}
	if d.Days > c.Remaining {
		return &leaveerrors.InsufficientCreditsError{Bucket: string(d.Bucket), Available: c.Remaining, Requested: d.Days}
	}
	return nil
}

func (s *service) canView(ctx context.Context, sess session.Session, ownerID, department string) error {
	switch {
	case ownerID == sess.UserID, sess.Role == session.RoleHR:
		return nil
	case sess.Role == session.RoleSupervisor:
		if _, err := s.ownDepartment(ctx, sess, department); err != nil {
			return err
		}
		return nil
	default:
		return leaveerrors.ErrNotOwner
	}
}

// ownDepartment resolves the supervisor's department and rejects a scope
// naming any other one.
func (s *service) ownDepartment(ctx context.Context, sess session.Session, scope string) (string, error) {
	me, err := s.directory.GetByID(ctx, sess.UserID)
	if err != nil {
		s.logger.Warn("resolve supervisor department failed", zap.String("actor_id", sess.UserID), zap.Error(err))
		return "", mapRepositoryError(err)
	}
	if scope != "" && !sameDepartment(scope, me.Department) {
		return "", leaveerrors.ErrOutsideDepartment
	}
	return me.Department, nil
}

func (s *service) enqueue(ctx context.Context, tx *sql.Tx, eventType string, l LeaveRequest, from Status, actorID, actorName, comments string) error {
	if s.outbox == nil {
		return nil
	}
	rid := contextutil.GetRequestID(ctx)

	event := events.LeaveStatusChangedEvent{
		EventType:     eventType,
		RequestID:     rid,
		LeaveID:       l.ID.String(),
		EmployeeID:    l.EmployeeID.String(),
		EmployeeName:  l.EmployeeName,
		EmployeeEmail: l.EmployeeEmail,
		Department:    l.Department,
		LeaveType:     string(l.LeaveType),
		StartDate:     l.StartDate.Format(dateLayout),
		EndDate:       l.EndDate.Format(dateLayout),
		NumberOfDays:  l.NumberOfDays,
		FromStatus:    string(from),
		ToStatus:      string(l.Status),
		ActorID:       actorID,
		ActorName:     actorName,
		Comments:      comments,
		OccurredAt:    l.UpdatedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}

	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "leave_request",
		AggregateID:   l.ID.String(),
		EventType:     eventType,
		Topic:         events.LeaveStatusChangedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("leave outbox persist failed",
			zap.String("leave_id", l.ID.String()),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return mapRepositoryError(err)
	}
	return nil
}

func sameDepartment(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func addApprovalChanges(changes map[string]any, prefix string, a Approval) {
	changes[prefix+"status"] = a.Status
	changes[prefix+"approved_by"] = a.ApprovedBy
	changes[prefix+"approved_by_name"] = a.ApprovedByName
	changes[prefix+"approved_at"] = a.ApprovedAt
	changes[prefix+"comments"] = a.Comments
}

func splitDocuments(docs []LeaveDocument, remove []int) ([]LeaveDocument, []LeaveDocument, error) {
	drop := make(map[int]bool, len(remove))
	for _, i := range remove {
		if i < 0 || i >= len(docs) {
			return nil, nil, leaveerrors.ErrInvalidDocumentIndex
		}
		drop[i] = true
	}

	kept := make([]LeaveDocument, 0, len(docs))
	var removed []LeaveDocument
	for i, d := range docs {
		if drop[i] {
			removed = append(removed, d)
			continue
		}
		kept = append(kept, d)
	}
	return kept, removed, nil
}

func renumber(docs []LeaveDocument) []LeaveDocument {
	for i := range docs {
		docs[i].Position = i
	}
	return docs
}

func toDocuments(leaveID uuid.UUID, stored []document.Stored, offset int) []LeaveDocument {
	docs := make([]LeaveDocument, 0, len(stored))
	for i, st := range stored {
		docs = append(docs, LeaveDocument{
			ID:             uuid.New(),
			LeaveRequestID: leaveID,
			Position:       offset + i,
			Name:           st.Name,
			URL:            st.URL,
			Key:            st.Key,
			ContentType:    st.ContentType,
			UploadedAt:     st.UploadedAt,
		})
	}
	return docs
}

func toStored(docs []LeaveDocument) []document.Stored {
	stored := make([]document.Stored, 0, len(docs))
	for _, d := range docs {
		stored = append(stored, document.Stored{Name: d.Name, URL: d.URL, Key: d.Key})
	}
	return stored
}

func mapToResponse(l LeaveRequest, audience session.Role) LeaveResponse {
	resp := LeaveResponse{
		ID:                  l.ID.String(),
		EmployeeID:          l.EmployeeID.String(),
		EmployeeName:        l.EmployeeName,
		EmployeeEmail:       l.EmployeeEmail,
		Department:          l.Department,
		Designation:         l.Designation,
		LeaveType:           string(l.LeaveType),
		LeaveTypeText:       LeaveTypeLabel(l.LeaveType),
		StartDate:           l.StartDate.Format(dateLayout),
		EndDate:             l.EndDate.Format(dateLayout),
		NumberOfDays:        l.NumberOfDays,
		ReasonNotes:         l.ReasonNotes,
		Status:              string(l.Status),
		StatusText:          StatusText(l.Status, audience),
		SupervisorApproval:  mapApproval(l.SupervisorApproval),
		HRApproval:          mapApproval(l.HRApproval),
		SupportingDocuments: make([]DocumentResponse, 0, len(l.Documents)),
		CancellationReason:  l.CancellationReason,
		CreatedAt:           l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           l.UpdatedAt.Format(time.RFC3339),
	}
	for _, d := range l.Documents {
		resp.SupportingDocuments = append(resp.SupportingDocuments, DocumentResponse{
			Name:        d.Name,
			URL:         d.URL,
			ContentType: d.ContentType,
			UploadedAt:  d.UploadedAt.Format(time.RFC3339),
		})
	}
	if l.CancelledAt != nil {
		v := l.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &v
	}
	return resp
}

func mapApproval(a Approval) ApprovalResponse {
	resp := ApprovalResponse{
		Status:         string(a.Status),
		ApprovedByName: a.ApprovedByName,
		Comments:       a.Comments,
	}
	if resp.Status == "" {
		resp.Status = string(ApprovalPending)
	}
	if a.ApprovedBy != nil {
		v := a.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if a.ApprovedAt != nil {
		v := a.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	return resp
}

func mapToListResponse(leaves []LeaveRequest, audience session.Role) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l, audience)
	}
	return resp
}
