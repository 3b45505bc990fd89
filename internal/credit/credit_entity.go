package credit

import (
	"time"

	"github.com/google/uuid"
)

type Bucket string

const (
	BucketRegular   Bucket = "regularLeave"
	BucketSick      Bucket = "sickLeave"
	BucketSpecial   Bucket = "specialLeave"
	BucketEmergency Bucket = "emergencyLeave"
	BucketMaternity Bucket = "maternityLeave"
	BucketService   Bucket = "serviceLeave"
)

// Buckets in display order.
var Buckets = []Bucket{
	BucketRegular,
	BucketSick,
	BucketSpecial,
	BucketEmergency,
	BucketMaternity,
	BucketService,
}

// DefaultAllotment seeds a new employee's ledger.
var DefaultAllotment = map[Bucket]int{
	BucketRegular:   15,
	BucketSick:      15,
	BucketSpecial:   3,
	BucketEmergency: 3,
	BucketMaternity: 105,
	BucketService:   5,
}

func ParseBucket(s string) (Bucket, bool) {
	for _, b := range Buckets {
		if string(b) == s {
			return b, true
		}
	}
	return "", false
}

// LeaveCredit is one ledger bucket. Remaining always equals Days - Used.
type LeaveCredit struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_credit_bucket"`
	Bucket     Bucket    `gorm:"type:varchar(32);not null;uniqueIndex:uq_leave_credit_bucket"`
	Days       int       `gorm:"not null;default:0"`
	Used       int       `gorm:"not null;default:0"`
	Remaining  int       `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (LeaveCredit) TableName() string { return "leave_credits" }
