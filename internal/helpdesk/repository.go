package helpdesk

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"helpdesk/internal/infra"
	"helpdesk/internal/tenant"
)

// Every repository method takes the tenant id as an explicit parameter and
// folds it into the WHERE clause. A query without a tenant filter cannot be
// expressed through this interface; the service layer re-checks the rows it
// gets back anyway, so a bug in either layer alone cannot leak foreign data.

// CustomerRepository manages customers within one tenant.
type CustomerRepository interface {
	Insert(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, tenantID, id string) (*Customer, error)
	List(ctx context.Context, tenantID string, limit, offset int) ([]*Customer, int64, error)
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, tenantID, id string) error
}

// TicketRepository manages tickets within one tenant.
type TicketRepository interface {
	Insert(ctx context.Context, t *Ticket) error
	GetByID(ctx context.Context, tenantID, id string) (*Ticket, error)
	List(ctx context.Context, tenantID string, f TicketFilter) ([]*Ticket, int64, error)
	Update(ctx context.Context, t *Ticket) error
}

// MessageRepository manages ticket messages within one tenant.
type MessageRepository interface {
	Insert(ctx context.Context, m *Message) error
	ListByTicket(ctx context.Context, tenantID, ticketID string, includeInternal bool) ([]*Message, error)
}

// TeamRepository manages teams within one tenant.
type TeamRepository interface {
	Insert(ctx context.Context, t *Team) error
	GetByID(ctx context.Context, tenantID, id string) (*Team, error)
	List(ctx context.Context, tenantID string) ([]*Team, error)
	Delete(ctx context.Context, tenantID, id string) error
}

// TicketFilter narrows ticket listings.
type TicketFilter struct {
	Status     string
	Priority   string
	CustomerID string
	AssigneeID string
	Limit      int
	Offset     int
}

type customerRepository struct {
	db infra.DB
}

// NewCustomerRepository constructs a CustomerRepository backed by the given DB.
func NewCustomerRepository(db infra.DB) CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `id, tenant_id, email, name, created_at, updated_at`

func scanCustomer(row interface{ Scan(...any) error }) (*Customer, error) {
	var c Customer
	if err := row.Scan(&c.ID, &c.TenantID, &c.Email, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepository) Insert(ctx context.Context, c *Customer) error {
	const q = `
		INSERT INTO customers (id, tenant_id, email, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, q, c.ID, c.TenantID, c.Email, c.Name, c.CreatedAt, c.UpdatedAt)
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return ErrEmailExists
	}
	return err
}

func (r *customerRepository) GetByID(ctx context.Context, tenantID, id string) (*Customer, error) {
	const q = `SELECT ` + customerColumns + ` FROM customers WHERE tenant_id = $1 AND id = $2`
	c, err := scanCustomer(r.db.QueryRowContext(ctx, q, tenantID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tenant.ErrResourceNotFound
	}
	return c, err
}

func (r *customerRepository) List(ctx context.Context, tenantID string, limit, offset int) ([]*Customer, int64, error) {
	const countQ = `SELECT COUNT(*) FROM customers WHERE tenant_id = $1`
	var total int64
	if err := r.db.QueryRowContext(ctx, countQ, tenantID).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQ = `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, listQ, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var customers []*Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

func (r *customerRepository) Update(ctx context.Context, c *Customer) error {
	const q = `
		UPDATE customers
		SET email = $1, name = $2, updated_at = $3
		WHERE tenant_id = $4 AND id = $5
	`
	res, err := r.db.ExecContext(ctx, q, c.Email, c.Name, c.UpdatedAt, c.TenantID, c.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tenant.ErrResourceNotFound
	}
	return nil
}

func (r *customerRepository) Delete(ctx context.Context, tenantID, id string) error {
	const q = `DELETE FROM customers WHERE tenant_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, q, tenantID, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tenant.ErrResourceNotFound
	}
	return nil
}

type ticketRepository struct {
	db infra.DB
}

// NewTicketRepository constructs a TicketRepository backed by the given DB.
func NewTicketRepository(db infra.DB) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `id, tenant_id, customer_id, assignee_id, team_id, subject, status, priority, created_at, updated_at, resolved_at`

func scanTicket(row interface{ Scan(...any) error }) (*Ticket, error) {
	var (
		t          Ticket
		assignee   sql.NullString
		team       sql.NullString
		resolvedAt sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.TenantID, &t.CustomerID, &assignee, &team, &t.Subject,
		&t.Status, &t.Priority, &t.CreatedAt, &t.UpdatedAt, &resolvedAt); err != nil {
		return nil, err
	}
	t.AssigneeID = assignee.String
	t.TeamID = team.String
	if resolvedAt.Valid {
		t.ResolvedAt = &resolvedAt.Time
	}
	return &t, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (r *ticketRepository) Insert(ctx context.Context, t *Ticket) error {
	const q = `
		INSERT INTO tickets (id, tenant_id, customer_id, assignee_id, team_id, subject, status, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, q, t.ID, t.TenantID, t.CustomerID, nullable(t.AssigneeID), nullable(t.TeamID),
		t.Subject, t.Status, t.Priority, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *ticketRepository) GetByID(ctx context.Context, tenantID, id string) (*Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE tenant_id = $1 AND id = $2`
	t, err := scanTicket(r.db.QueryRowContext(ctx, q, tenantID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tenant.ErrResourceNotFound
	}
	return t, err
}

func (r *ticketRepository) List(ctx context.Context, tenantID string, f TicketFilter) ([]*Ticket, int64, error) {
	where := []string{"tenant_id = $1"}
	args := []any{tenantID}
	add := func(cond, val string) {
		args = append(args, val)
		where = append(where, cond+" = $"+strconv.Itoa(len(args)))
	}
	if f.Status != "" {
		add("status", f.Status)
	}
	if f.Priority != "" {
		add("priority", f.Priority)
	}
	if f.CustomerID != "" {
		add("customer_id", f.CustomerID)
	}
	if f.AssigneeID != "" {
		add("assignee_id", f.AssigneeID)
	}
	clause := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit)
	limitPos := strconv.Itoa(len(args))
	args = append(args, f.Offset)
	offsetPos := strconv.Itoa(len(args))

	q := `SELECT ` + ticketColumns + ` FROM tickets WHERE ` + clause +
		` ORDER BY created_at DESC LIMIT $` + limitPos + ` OFFSET $` + offsetPos
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tickets []*Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, 0, err
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

func (r *ticketRepository) Update(ctx context.Context, t *Ticket) error {
	const q = `
		UPDATE tickets
		SET customer_id = $1, assignee_id = $2, team_id = $3, subject = $4, status = $5,
		    priority = $6, updated_at = $7, resolved_at = $8
		WHERE tenant_id = $9 AND id = $10
	`
	res, err := r.db.ExecContext(ctx, q, t.CustomerID, nullable(t.AssigneeID), nullable(t.TeamID),
		t.Subject, t.Status, t.Priority, t.UpdatedAt, t.ResolvedAt, t.TenantID, t.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tenant.ErrResourceNotFound
	}
	return nil
}

type messageRepository struct {
	db infra.DB
}

// NewMessageRepository constructs a MessageRepository backed by the given DB.
func NewMessageRepository(db infra.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Insert(ctx context.Context, m *Message) error {
	const q = `
		INSERT INTO messages (id, tenant_id, ticket_id, author_id, body, internal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, q, m.ID, m.TenantID, m.TicketID, m.AuthorID, m.Body, m.Internal, m.CreatedAt)
	return err
}

func (r *messageRepository) ListByTicket(ctx context.Context, tenantID, ticketID string, includeInternal bool) ([]*Message, error) {
	q := `
		SELECT id, tenant_id, ticket_id, author_id, body, internal, created_at
		FROM messages
		WHERE tenant_id = $1 AND ticket_id = $2
	`
	if !includeInternal {
		q += ` AND internal = FALSE`
	}
	q += ` ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, q, tenantID, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.TenantID, &m.TicketID, &m.AuthorID, &m.Body, &m.Internal, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

type teamRepository struct {
	db infra.DB
}

// NewTeamRepository constructs a TeamRepository backed by the given DB.
func NewTeamRepository(db infra.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) Insert(ctx context.Context, t *Team) error {
	const q = `
		INSERT INTO teams (id, tenant_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, q, t.ID, t.TenantID, t.Name, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *teamRepository) GetByID(ctx context.Context, tenantID, id string) (*Team, error) {
	const q = `SELECT id, tenant_id, name, created_at, updated_at FROM teams WHERE tenant_id = $1 AND id = $2`
	var t Team
	err := r.db.QueryRowContext(ctx, q, tenantID, id).Scan(&t.ID, &t.TenantID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tenant.ErrResourceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *teamRepository) List(ctx context.Context, tenantID string) ([]*Team, error) {
	const q = `SELECT id, tenant_id, name, created_at, updated_at FROM teams WHERE tenant_id = $1 ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []*Team
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.TenantID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *teamRepository) Delete(ctx context.Context, tenantID, id string) error {
	const q = `DELETE FROM teams WHERE tenant_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, q, tenantID, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tenant.ErrResourceNotFound
	}
	return nil
}
