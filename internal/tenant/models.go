package tenant

import "time"

// Tenant statuses. A deleted tenant is soft-deleted: the row survives for the
// retention window with Status = deleted, all isolation rules still apply,
// and only a platform operator can reach its data (export) before purge.
const (
	StatusActive    = "active"
	StatusTrialing  = "trialing"
	StatusSuspended = "suspended"
	StatusCanceled  = "canceled"
	StatusDeleted   = "deleted"
)

// Tenant is an isolated customer organization. ID is immutable after
// creation; every tenant-scoped record in the system references it.
type Tenant struct {
	ID     string `json:"id" gorm:"primaryKey;type:uuid"`
	Name   string `json:"name" gorm:"size:255;not null"`
	Slug   string `json:"slug" gorm:"size:100;uniqueIndex;not null"`
	Status string `json:"status" gorm:"size:50;not null;default:active"`

	Plan string `json:"plan" gorm:"size:50;not null;default:free"`

	// Quotas
	MaxUsers   int `json:"maxUsers" gorm:"default:25"`
	MaxTickets int `json:"maxTickets" gorm:"default:10000"`

	CreatedAt time.Time  `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time  `json:"updatedAt" gorm:"not null;autoUpdateTime"`
	DeletedAt *time.Time `json:"deletedAt,omitempty" gorm:"index"`
	DeletedBy string     `json:"deletedBy,omitempty" gorm:"size:100"`
}

// SoftDeleted reports whether the tenant is inside the post-delete retention
// window.
func (t *Tenant) SoftDeleted() bool {
	return t.Status == StatusDeleted || t.DeletedAt != nil
}
