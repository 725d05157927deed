package audit

import "time"

// Entry is one append-only audit record. Entries are written at the moment a
// privileged or sensitive action is authorized, before the action itself
// runs, and are never updated or deleted by application code.
type Entry struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid"`
	ActorID        string    `json:"actorId" gorm:"type:uuid;not null;index"`
	ActorRole      string    `json:"actorRole" gorm:"size:50;not null"`
	Action         string    `json:"action" gorm:"size:255;not null;index"`
	TargetTenantID string    `json:"targetTenantId" gorm:"type:uuid;not null;index"`
	Payload        any       `json:"payload,omitempty" gorm:"type:jsonb"`
	RequestID      string    `json:"requestId,omitempty" gorm:"size:100;index"`
	CreatedAt      time.Time `json:"createdAt" gorm:"not null;autoCreateTime;index"`
}
