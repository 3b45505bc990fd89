package credit

import (
	"context"
	"database/sql"

	"go-lcms/internal/shared/connection"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=credit_repo.go -destination=mock/credit_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByEmployee(ctx context.Context, employeeID string) ([]LeaveCredit, error)
	FindBucket(ctx context.Context, employeeID string, bucket Bucket) (*LeaveCredit, error)
	// Deduct takes n days only if at least n remain; false means nothing changed.
	Deduct(ctx context.Context, employeeID string, bucket Bucket, n int) (bool, error)
	// Restore gives back up to n days, never driving used below zero.
	Restore(ctx context.Context, employeeID string, bucket Bucket, n int) (bool, error)
	SetDays(ctx context.Context, employeeID string, bucket Bucket, days int) (bool, error)
	CreateMissing(ctx context.Context, credits []LeaveCredit) error
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

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]LeaveCredit, error) {
	var credits []LeaveCredit
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Find(&credits).Error
	return credits, err
}

func (r *repository) FindBucket(ctx context.Context, employeeID string, bucket Bucket) (*LeaveCredit, error) {
	var c LeaveCredit
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND bucket = ?", employeeID, bucket).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) Deduct(ctx context.Context, employeeID string, bucket Bucket, n int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&LeaveCredit{}).
		Where("employee_id = ? AND bucket = ? AND remaining >= ?", employeeID, bucket, n).
		Updates(map[string]any{
			"used":      gorm.Expr("used + ?", n),
			"remaining": gorm.Expr("remaining - ?", n),
		})
	return res.RowsAffected == 1, res.Error
}

func (r *repository) Restore(ctx context.Context, employeeID string, bucket Bucket, n int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&LeaveCredit{}).
		Where("employee_id = ? AND bucket = ?", employeeID, bucket).
		Updates(map[string]any{
			"used":      gorm.Expr("CASE WHEN used > ? THEN used - ? ELSE 0 END", n, n),
			"remaining": gorm.Expr("days - (CASE WHEN used > ? THEN used - ? ELSE 0 END)", n, n),
		})
	return res.RowsAffected == 1, res.Error
}

// SetDays re-allots a bucket; refused (false) when days would drop below used.
func (r *repository) SetDays(ctx context.Context, employeeID string, bucket Bucket, days int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&LeaveCredit{}).
		Where("employee_id = ? AND bucket = ? AND used <= ?", employeeID, bucket, days).
		Updates(map[string]any{
			"days":      days,
			"remaining": gorm.Expr("? - used", days),
		})
	return res.RowsAffected == 1, res.Error
}

func (r *repository) CreateMissing(ctx context.Context, credits []LeaveCredit) error {
	if len(credits) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&credits).Error
}
