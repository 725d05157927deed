package tenant

import (
	"context"
	"errors"
	"strings"
	"time"
)

// AuditRecord is the payload handed to the Auditor for a privileged or
// security-sensitive action.
type AuditRecord struct {
	ActorID        string
	ActorRole      Role
	Action         string
	TargetTenantID string
	Payload        any
}

// Auditor records privileged and security-sensitive actions. Implementations
// must be fire-and-forget from the caller's perspective: Record never fails
// and never blocks the primary action on sink errors.
type Auditor interface {
	Record(ctx context.Context, rec AuditRecord)
}

// Service manages the tenant lifecycle. Every mutating operation is gated on
// the privileged-access Policy and audited before the underlying action runs,
// so even a subsequently failed action leaves a trace of the attempt.
type Service interface {
	Create(ctx context.Context, p Principal, params CreateParams) (*Tenant, error)
	List(ctx context.Context, p Principal, limit, offset int) ([]*Tenant, int64, error)
	Get(ctx context.Context, p Principal, scope Scope, id string) (*Tenant, error)
	Update(ctx context.Context, p Principal, id string, params UpdateParams) (*Tenant, error)
	Delete(ctx context.Context, p Principal, id string) error
	Export(ctx context.Context, p Principal, id string) (*Tenant, error)
}

// CreateParams describes inputs for an operator-created tenant.
type CreateParams struct {
	Name string
	Slug string
	Plan string
}

// UpdateParams describes inputs for updating a tenant. Nil fields are left
// unchanged.
type UpdateParams struct {
	Name   *string
	Slug   *string
	Status *string
	Plan   *string
}

type service struct {
	tenants Repository
	ids     IDGenerator
	policy  Policy
	audit   Auditor
}

// NewService constructs a Service with its dependencies.
func NewService(tenants Repository, ids IDGenerator, audit Auditor) Service {
	return &service{tenants: tenants, ids: ids, audit: audit}
}

func (s *service) Create(ctx context.Context, p Principal, params CreateParams) (*Tenant, error) {
	if !s.policy.MayCrossTenant(p) {
		return nil, ErrForbidden
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, errors.New("tenant: missing name")
	}

	id, err := s.ids.NewID()
	if err != nil {
		return nil, err
	}
	slug := strings.TrimSpace(params.Slug)
	if slug == "" {
		slug = slugify(name)
	}
	if _, err := s.tenants.GetBySlug(ctx, slug); err == nil {
		return nil, ErrSlugExists
	} else if !errors.Is(err, ErrTenantNotFound) {
		return nil, err
	}
	plan := params.Plan
	if plan == "" {
		plan = "free"
	}
	now := time.Now().UTC()

	t := &Tenant{
		ID:         id,
		Name:       name,
		Slug:       slug,
		Status:     StatusTrialing,
		Plan:       plan,
		MaxUsers:   25,
		MaxTickets: 10000,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	s.audit.Record(ctx, AuditRecord{
		ActorID:        p.ID,
		ActorRole:      p.Role,
		Action:         ActionTenantCreate,
		TargetTenantID: id,
		Payload:        map[string]any{"name": name, "slug": slug, "plan": plan},
	})

	if err := s.tenants.Insert(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) List(ctx context.Context, p Principal, limit, offset int) ([]*Tenant, int64, error) {
	if !s.policy.MayCrossTenant(p) {
		return nil, 0, ErrForbidden
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.tenants.List(ctx, limit, offset)
}

// Get returns the tenant record for the operator, or for any principal whose
// effective scope is that tenant. A foreign id answers ErrTenantNotFound for
// non-privileged callers, indistinguishable from a genuinely absent tenant.
func (s *service) Get(ctx context.Context, p Principal, scope Scope, id string) (*Tenant, error) {
	if !s.policy.MayCrossTenant(p) && !OwnsResource(scope, id) {
		return nil, ErrTenantNotFound
	}
	t, err := s.tenants.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Soft-deleted tenants are invisible to normal roles during retention.
	if t.SoftDeleted() && !s.policy.MayCrossTenant(p) {
		return nil, ErrTenantNotFound
	}
	return t, nil
}

func (s *service) Update(ctx context.Context, p Principal, id string, params UpdateParams) (*Tenant, error) {
	if !s.policy.MayCrossTenant(p) {
		return nil, ErrForbidden
	}

	t, err := s.tenants.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	action := ActionTenantUpdate
	if params.Name != nil {
		if name := strings.TrimSpace(*params.Name); name != "" {
			t.Name = name
		}
	}
	if params.Slug != nil {
		if slug := strings.TrimSpace(*params.Slug); slug != "" {
			t.Slug = slug
		}
	}
	if params.Plan != nil && *params.Plan != "" {
		t.Plan = *params.Plan
	}
	if params.Status != nil && *params.Status != "" && *params.Status != t.Status {
		t.Status = *params.Status
		action = ActionTenantStatusChange
	}
	t.UpdatedAt = time.Now().UTC()

	s.audit.Record(ctx, AuditRecord{
		ActorID:        p.ID,
		ActorRole:      p.Role,
		Action:         action,
		TargetTenantID: t.ID,
		Payload:        map[string]any{"status": t.Status, "plan": t.Plan},
	})

	if err := s.tenants.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) Delete(ctx context.Context, p Principal, id string) error {
	if !s.policy.MayCrossTenant(p) {
		return ErrForbidden
	}

	s.audit.Record(ctx, AuditRecord{
		ActorID:        p.ID,
		ActorRole:      p.Role,
		Action:         ActionTenantDelete,
		TargetTenantID: id,
	})

	return s.tenants.SoftDelete(ctx, id, p.ID)
}

// Export returns a tenant record for the operator's export flow. It works on
// soft-deleted tenants too: the retention window exists exactly so that an
// operator can still extract a departed customer's data.
func (s *service) Export(ctx context.Context, p Principal, id string) (*Tenant, error) {
	if !s.policy.MayCrossTenant(p) {
		return nil, ErrForbidden
	}

	s.audit.Record(ctx, AuditRecord{
		ActorID:        p.ID,
		ActorRole:      p.Role,
		Action:         ActionTenantExport,
		TargetTenantID: id,
	})

	return s.tenants.GetByID(ctx, id)
}

// slugify derives a URL-friendly slug from a tenant name: lowercase, spaces
// collapsed to hyphens.
func slugify(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	return strings.ToLower(strings.Join(strings.Fields(trimmed), "-"))
}
