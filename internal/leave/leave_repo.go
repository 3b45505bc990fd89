package leave

import (
	"context"
	"database/sql"
	"time"

	"go-lcms/internal/shared/connection"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter narrows list queries; zero values mean no constraint.
type ListFilter struct {
	EmployeeID       string
	Department       string
	Statuses         []Status
	SupervisorStatus ApprovalStatus
	From             *time.Time
	To               *time.Time
}

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	List(ctx context.Context, filter ListFilter) ([]LeaveRequest, error)
	// Transition applies changes only while the row is still in status from.
	// false means another writer got there first.
	Transition(ctx context.Context, id string, from Status, changes map[string]any) (bool, error)
	ReplaceDocuments(ctx context.Context, leaveID uuid.UUID, docs []LeaveDocument) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: connection.BindTx(r.db, tx)}
}

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Documents", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]LeaveRequest, error) {
	db := r.db.WithContext(ctx).
		Preload("Documents", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })

	if filter.EmployeeID != "" {
		db = db.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Department != "" {
		db = db.Where("department = ?", filter.Department)
	}
	if len(filter.Statuses) > 0 {
		db = db.Where("status IN ?", filter.Statuses)
	}
	if filter.SupervisorStatus != "" {
		db = db.Where("supervisor_status = ?", filter.SupervisorStatus)
	}
	if filter.From != nil {
		db = db.Where("end_date >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("start_date <= ?", *filter.To)
	}

	var leaves []LeaveRequest
	err := db.Order("created_at DESC").Find(&leaves).Error
	return leaves, err
}

func (r *repository) Transition(ctx context.Context, id string, from Status, changes map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(changes)
	return res.RowsAffected == 1, res.Error
}

// ReplaceDocuments rewrites the document list; callers run it inside the
// transaction that changes the request.
func (r *repository) ReplaceDocuments(ctx context.Context, leaveID uuid.UUID, docs []LeaveDocument) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("leave_request_id = ?", leaveID).Delete(&LeaveDocument{}).Error; err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}
	return db.Create(&docs).Error
}
