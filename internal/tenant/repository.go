package tenant

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"helpdesk/internal/infra"
)

// Repository manages Tenant records. Tenants themselves are platform-level
// records: they are not tenant-scoped, and every method that mutates them is
// reachable only through operator-gated service paths.
type Repository interface {
	Insert(ctx context.Context, t *Tenant) error
	GetByID(ctx context.Context, id string) (*Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
	List(ctx context.Context, limit, offset int) ([]*Tenant, int64, error)
	Update(ctx context.Context, t *Tenant) error
	SoftDelete(ctx context.Context, id, deletedBy string) error
	PurgeExpired(ctx context.Context, retention time.Duration) ([]string, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type repository struct {
	db infra.DB
}

// NewRepository constructs a Repository backed by the given DB.
func NewRepository(db infra.DB) Repository {
	return &repository{db: db}
}

const tenantColumns = `id, name, slug, status, plan, max_users, max_tickets, created_at, updated_at, deleted_at, deleted_by`

func scanTenant(row interface{ Scan(...any) error }) (*Tenant, error) {
	var (
		t         Tenant
		deletedAt sql.NullTime
		deletedBy sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Status, &t.Plan, &t.MaxUsers, &t.MaxTickets,
		&t.CreatedAt, &t.UpdatedAt, &deletedAt, &deletedBy); err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		t.DeletedAt = &deletedAt.Time
	}
	t.DeletedBy = deletedBy.String
	return &t, nil
}

func (r *repository) Insert(ctx context.Context, t *Tenant) error {
	const q = `
		INSERT INTO tenants (id, name, slug, status, plan, max_users, max_tickets, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, q, t.ID, t.Name, t.Slug, t.Status, t.Plan, t.MaxUsers, t.MaxTickets, t.CreatedAt, t.UpdatedAt)
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return ErrSlugExists
	}
	return err
}

func (r *repository) GetByID(ctx context.Context, id string) (*Tenant, error) {
	const q = `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	t, err := scanTenant(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTenantNotFound
	}
	return t, err
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*Tenant, error) {
	const q = `SELECT ` + tenantColumns + ` FROM tenants WHERE slug = $1`
	t, err := scanTenant(r.db.QueryRowContext(ctx, q, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTenantNotFound
	}
	return t, err
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]*Tenant, int64, error) {
	const countQ = `SELECT COUNT(*) FROM tenants WHERE deleted_at IS NULL`
	var total int64
	if err := r.db.QueryRowContext(ctx, countQ).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQ = `
		SELECT ` + tenantColumns + `
		FROM tenants
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, listQ, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tenants []*Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, 0, err
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return tenants, total, nil
}

func (r *repository) Update(ctx context.Context, t *Tenant) error {
	const q = `
		UPDATE tenants
		SET name = $1, slug = $2, status = $3, plan = $4, max_users = $5, max_tickets = $6, updated_at = $7
		WHERE id = $8
	`
	_, err := r.db.ExecContext(ctx, q, t.Name, t.Slug, t.Status, t.Plan, t.MaxUsers, t.MaxTickets, t.UpdatedAt, t.ID)
	return err
}

func (r *repository) SoftDelete(ctx context.Context, id, deletedBy string) error {
	const q = `
		UPDATE tenants
		SET status = $1, deleted_at = $2, deleted_by = $3, updated_at = $2
		WHERE id = $4 AND deleted_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, q, StatusDeleted, time.Now().UTC(), deletedBy, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTenantNotFound
	}
	return nil
}

// PurgeExpired hard-deletes tenants whose retention window elapsed and
// returns their ids so callers can invalidate caches. Dependent tenant-scoped
// rows are removed by ON DELETE CASCADE foreign keys.
func (r *repository) PurgeExpired(ctx context.Context, retention time.Duration) ([]string, error) {
	const q = `DELETE FROM tenants WHERE deleted_at IS NOT NULL AND deleted_at < $1 RETURNING id`
	rows, err := r.db.QueryContext(ctx, q, time.Now().UTC().Add(-retention))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists includes soft-deleted tenants: during the retention window a
// platform operator may still resolve a scope against them.
func (r *repository) Exists(ctx context.Context, id string) (bool, error) {
	const q = `SELECT 1 FROM tenants WHERE id = $1`
	var one int
	err := r.db.QueryRowContext(ctx, q, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
