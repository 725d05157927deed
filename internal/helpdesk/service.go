package helpdesk

import (
	"context"
	"strings"
	"time"

	"helpdesk/internal/tenant"
)

// Services never read a tenant id from client input. The effective scope
// arrives from the request context, the repositories filter by it, and every
// loaded row is re-checked against it. A row that fails the re-check answers
// as if it did not exist.

// CustomerService manages customers inside the effective tenant scope.
type CustomerService interface {
	Create(ctx context.Context, scope tenant.Scope, params CustomerParams) (*Customer, error)
	Get(ctx context.Context, scope tenant.Scope, id string) (*Customer, error)
	List(ctx context.Context, scope tenant.Scope, limit, offset int) ([]*Customer, int64, error)
	Update(ctx context.Context, scope tenant.Scope, id string, params CustomerParams) (*Customer, error)
	Delete(ctx context.Context, scope tenant.Scope, id string) error
}

// TicketService manages tickets and their conversations.
type TicketService interface {
	Create(ctx context.Context, p tenant.Principal, scope tenant.Scope, params TicketParams) (*Ticket, error)
	Get(ctx context.Context, p tenant.Principal, scope tenant.Scope, id string) (*Ticket, error)
	List(ctx context.Context, p tenant.Principal, scope tenant.Scope, f TicketFilter) ([]*Ticket, int64, error)
	Update(ctx context.Context, p tenant.Principal, scope tenant.Scope, id string, params TicketUpdateParams) (*Ticket, error)
	AddMessage(ctx context.Context, p tenant.Principal, scope tenant.Scope, ticketID string, params MessageParams) (*Message, error)
	Messages(ctx context.Context, p tenant.Principal, scope tenant.Scope, ticketID string) ([]*Message, error)
	ExportForTenant(ctx context.Context, scope tenant.Scope, tenantID string) ([]*Ticket, error)
}

// TeamService manages agent teams inside the effective tenant scope.
type TeamService interface {
	Create(ctx context.Context, scope tenant.Scope, name string) (*Team, error)
	List(ctx context.Context, scope tenant.Scope) ([]*Team, error)
	Delete(ctx context.Context, scope tenant.Scope, id string) error
}

// CustomerParams describes customer create/update inputs.
type CustomerParams struct {
	Email string
	Name  string
}

// TicketParams describes ticket creation inputs.
type TicketParams struct {
	CustomerID string
	Subject    string
	Priority   string
	TeamID     string
}

// TicketUpdateParams describes ticket update inputs. Nil fields are left
// unchanged.
type TicketUpdateParams struct {
	Subject    *string
	Status     *string
	Priority   *string
	AssigneeID *string
	TeamID     *string
}

// MessageParams describes a new conversation message.
type MessageParams struct {
	Body     string
	Internal bool
}

type customerService struct {
	customers CustomerRepository
	ids       tenant.IDGenerator
}

// NewCustomerService constructs a CustomerService.
func NewCustomerService(customers CustomerRepository, ids tenant.IDGenerator) CustomerService {
	return &customerService{customers: customers, ids: ids}
}

func (s *customerService) Create(ctx context.Context, scope tenant.Scope, params CustomerParams) (*Customer, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	name := strings.TrimSpace(params.Name)
	if email == "" || name == "" {
		return nil, ErrMissingField
	}

	id, err := s.ids.NewID()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c := &Customer{
		ID:        id,
		TenantID:  scope.TenantID,
		Email:     email,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.customers.Insert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *customerService) Get(ctx context.Context, scope tenant.Scope, id string) (*Customer, error) {
	c, err := s.customers.GetByID(ctx, scope.TenantID, id)
	if err != nil {
		return nil, err
	}
	if !tenant.OwnsResource(scope, c.TenantID) {
		return nil, tenant.ErrResourceNotFound
	}
	return c, nil
}

func (s *customerService) List(ctx context.Context, scope tenant.Scope, limit, offset int) ([]*Customer, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.customers.List(ctx, scope.TenantID, limit, offset)
}

func (s *customerService) Update(ctx context.Context, scope tenant.Scope, id string, params CustomerParams) (*Customer, error) {
	c, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if email := strings.ToLower(strings.TrimSpace(params.Email)); email != "" {
		c.Email = email
	}
	if name := strings.TrimSpace(params.Name); name != "" {
		c.Name = name
	}
	c.UpdatedAt = time.Now().UTC()
	if err := s.customers.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *customerService) Delete(ctx context.Context, scope tenant.Scope, id string) error {
	if _, err := s.Get(ctx, scope, id); err != nil {
		return err
	}
	return s.customers.Delete(ctx, scope.TenantID, id)
}

type ticketService struct {
	tickets   TicketRepository
	messages  MessageRepository
	customers CustomerRepository
	ids       tenant.IDGenerator
}

// NewTicketService constructs a TicketService.
func NewTicketService(tickets TicketRepository, messages MessageRepository, customers CustomerRepository, ids tenant.IDGenerator) TicketService {
	return &ticketService{tickets: tickets, messages: messages, customers: customers, ids: ids}
}

func (s *ticketService) Create(ctx context.Context, p tenant.Principal, scope tenant.Scope, params TicketParams) (*Ticket, error) {
	subject := strings.TrimSpace(params.Subject)
	if subject == "" {
		return nil, ErrMissingField
	}

	customerID := strings.TrimSpace(params.CustomerID)
	if p.Role == tenant.RoleCustomer {
		// Customers raise tickets only for themselves.
		customerID = p.ID
	}
	if customerID == "" {
		return nil, ErrMissingField
	}
	if p.Role != tenant.RoleCustomer {
		// The named customer must exist in the effective tenant; a foreign
		// customer id reads as absent.
		if _, err := s.customers.GetByID(ctx, scope.TenantID, customerID); err != nil {
			return nil, err
		}
	}

	priority := params.Priority
	if priority == "" {
		priority = PriorityNormal
	}
	if !validPriority(priority) {
		return nil, ErrInvalidStatus
	}

	id, err := s.ids.NewID()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	t := &Ticket{
		ID:         id,
		TenantID:   scope.TenantID,
		CustomerID: customerID,
		TeamID:     strings.TrimSpace(params.TeamID),
		Subject:    subject,
		Status:     TicketOpen,
		Priority:   priority,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.tickets.Insert(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get loads one ticket. An existing foreign-tenant ticket and a nonexistent
// ticket answer identically.
func (s *ticketService) Get(ctx context.Context, p tenant.Principal, scope tenant.Scope, id string) (*Ticket, error) {
	t, err := s.tickets.GetByID(ctx, scope.TenantID, id)
	if err != nil {
		return nil, err
	}
	if !tenant.OwnsResource(scope, t.TenantID) {
		return nil, tenant.ErrResourceNotFound
	}
	if p.Role == tenant.RoleCustomer && t.CustomerID != p.ID {
		return nil, tenant.ErrResourceNotFound
	}
	return t, nil
}

func (s *ticketService) List(ctx context.Context, p tenant.Principal, scope tenant.Scope, f TicketFilter) ([]*Ticket, int64, error) {
	if p.Role == tenant.RoleCustomer {
		f.CustomerID = p.ID
	}
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.tickets.List(ctx, scope.TenantID, f)
}

func (s *ticketService) Update(ctx context.Context, p tenant.Principal, scope tenant.Scope, id string, params TicketUpdateParams) (*Ticket, error) {
	if p.Role == tenant.RoleCustomer {
		return nil, tenant.ErrForbidden
	}
	t, err := s.Get(ctx, p, scope, id)
	if err != nil {
		return nil, err
	}

	if params.Subject != nil {
		if subject := strings.TrimSpace(*params.Subject); subject != "" {
			t.Subject = subject
		}
	}
	if params.Priority != nil && *params.Priority != "" {
		if !validPriority(*params.Priority) {
			return nil, ErrInvalidStatus
		}
		t.Priority = *params.Priority
	}
	if params.AssigneeID != nil {
		t.AssigneeID = strings.TrimSpace(*params.AssigneeID)
	}
	if params.TeamID != nil {
		t.TeamID = strings.TrimSpace(*params.TeamID)
	}
	if params.Status != nil && *params.Status != "" && *params.Status != t.Status {
		if !validTicketStatus(*params.Status) {
			return nil, ErrInvalidStatus
		}
		t.Status = *params.Status
		if t.Status == TicketResolved || t.Status == TicketClosed {
			now := time.Now().UTC()
			t.ResolvedAt = &now
		} else {
			t.ResolvedAt = nil
		}
	}
	t.UpdatedAt = time.Now().UTC()

	if err := s.tickets.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *ticketService) AddMessage(ctx context.Context, p tenant.Principal, scope tenant.Scope, ticketID string, params MessageParams) (*Message, error) {
	body := strings.TrimSpace(params.Body)
	if body == "" {
		return nil, ErrMissingField
	}
	if params.Internal && p.Role == tenant.RoleCustomer {
		return nil, tenant.ErrForbidden
	}

	t, err := s.Get(ctx, p, scope, ticketID)
	if err != nil {
		return nil, err
	}
	if t.Status == TicketClosed {
		return nil, ErrTicketClosed
	}

	id, err := s.ids.NewID()
	if err != nil {
		return nil, err
	}
	m := &Message{
		ID:        id,
		TenantID:  t.TenantID,
		TicketID:  t.ID,
		AuthorID:  p.ID,
		Body:      body,
		Internal:  params.Internal,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Insert(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Messages returns a ticket's conversation. Internal notes are visible to
// agents and above only.
func (s *ticketService) Messages(ctx context.Context, p tenant.Principal, scope tenant.Scope, ticketID string) ([]*Message, error) {
	if _, err := s.Get(ctx, p, scope, ticketID); err != nil {
		return nil, err
	}
	includeInternal := p.Role != tenant.RoleCustomer
	return s.messages.ListByTicket(ctx, scope.TenantID, ticketID, includeInternal)
}

// ExportForTenant loads all tickets of the given tenant for the operator's
// export flow. The read is pre-declared as cross-tenant; callers must have
// gated on Policy.MayCrossTenant before reaching it.
func (s *ticketService) ExportForTenant(ctx context.Context, scope tenant.Scope, tenantID string) ([]*Ticket, error) {
	tickets, _, err := s.tickets.List(ctx, tenantID, TicketFilter{Limit: 10000})
	if err != nil {
		return nil, err
	}
	out := tickets[:0]
	for _, t := range tickets {
		if tenant.OwnsResource(scope, t.TenantID, tenant.ForDeclaredCrossTenantRead()) {
			out = append(out, t)
		}
	}
	return out, nil
}

type teamService struct {
	teams TeamRepository
	ids   tenant.IDGenerator
}

// NewTeamService constructs a TeamService.
func NewTeamService(teams TeamRepository, ids tenant.IDGenerator) TeamService {
	return &teamService{teams: teams, ids: ids}
}

func (s *teamService) Create(ctx context.Context, scope tenant.Scope, name string) (*Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrMissingField
	}
	id, err := s.ids.NewID()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	t := &Team{ID: id, TenantID: scope.TenantID, Name: name, CreatedAt: now, UpdatedAt: now}
	if err := s.teams.Insert(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *teamService) List(ctx context.Context, scope tenant.Scope) ([]*Team, error) {
	return s.teams.List(ctx, scope.TenantID)
}

func (s *teamService) Delete(ctx context.Context, scope tenant.Scope, id string) error {
	t, err := s.teams.GetByID(ctx, scope.TenantID, id)
	if err != nil {
		return err
	}
	if !tenant.OwnsResource(scope, t.TenantID) {
		return tenant.ErrResourceNotFound
	}
	return s.teams.Delete(ctx, scope.TenantID, id)
}
