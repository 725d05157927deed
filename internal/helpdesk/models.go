package helpdesk

import "time"

// Ticket statuses.
const (
	TicketOpen     = "open"
	TicketPending  = "pending"
	TicketResolved = "resolved"
	TicketClosed   = "closed"
)

// Ticket priorities.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Customer is a tenant-owned end user who raises tickets. TenantID is set
// from the request scope at creation and never changes afterwards.
type Customer struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	TenantID  string    `gorm:"type:uuid;not null;index:idx_customers_tenant" json:"tenantId"`
	Email     string    `gorm:"size:255;not null;uniqueIndex:uniq_customers_tenant_email,composite:tenant_email" json:"email"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Ticket is the unit of support work inside one tenant.
type Ticket struct {
	ID         string     `gorm:"type:uuid;primarykey" json:"id"`
	TenantID   string     `gorm:"type:uuid;not null;index:idx_tickets_tenant" json:"tenantId"`
	CustomerID string     `gorm:"type:uuid;not null;index" json:"customerId"`
	AssigneeID string     `gorm:"type:uuid" json:"assigneeId,omitempty"`
	TeamID     string     `gorm:"type:uuid" json:"teamId,omitempty"`
	Subject    string     `gorm:"size:500;not null" json:"subject"`
	Status     string     `gorm:"size:20;not null;default:open;index" json:"status"`
	Priority   string     `gorm:"size:20;not null;default:normal" json:"priority"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
}

// Message is one entry in a ticket's conversation. Internal messages are
// agent-only notes hidden from the customer role.
type Message struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	TenantID  string    `gorm:"type:uuid;not null;index:idx_messages_tenant" json:"tenantId"`
	TicketID  string    `gorm:"type:uuid;not null;index" json:"ticketId"`
	AuthorID  string    `gorm:"type:uuid;not null" json:"authorId"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Internal  bool      `gorm:"not null;default:false" json:"internal"`
	CreatedAt time.Time `json:"createdAt"`
}

// Team is a tenant-owned group of agents used for ticket routing.
type Team struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	TenantID  string    `gorm:"type:uuid;not null;index:idx_teams_tenant" json:"tenantId"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func validTicketStatus(s string) bool {
	switch s {
	case TicketOpen, TicketPending, TicketResolved, TicketClosed:
		return true
	}
	return false
}

func validPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
