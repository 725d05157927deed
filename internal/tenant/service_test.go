package tenant

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakeRepository struct {
	items map[string]*Tenant
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{items: make(map[string]*Tenant)}
}

func (r *fakeRepository) Insert(_ context.Context, t *Tenant) error {
	for _, existing := range r.items {
		if existing.Slug == t.Slug {
			return ErrSlugExists
		}
	}
	cp := *t
	r.items[t.ID] = &cp
	return nil
}

func (r *fakeRepository) GetByID(_ context.Context, id string) (*Tenant, error) {
	if t, ok := r.items[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, ErrTenantNotFound
}

func (r *fakeRepository) GetBySlug(_ context.Context, slug string) (*Tenant, error) {
	for _, t := range r.items {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, ErrTenantNotFound
}

func (r *fakeRepository) List(_ context.Context, limit, offset int) ([]*Tenant, int64, error) {
	var out []*Tenant
	for _, t := range r.items {
		if t.DeletedAt == nil {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepository) Update(_ context.Context, t *Tenant) error {
	if _, ok := r.items[t.ID]; !ok {
		return ErrTenantNotFound
	}
	cp := *t
	r.items[t.ID] = &cp
	return nil
}

func (r *fakeRepository) SoftDelete(_ context.Context, id, deletedBy string) error {
	t, ok := r.items[id]
	if !ok || t.DeletedAt != nil {
		return ErrTenantNotFound
	}
	now := time.Now().UTC()
	t.Status = StatusDeleted
	t.DeletedAt = &now
	t.DeletedBy = deletedBy
	return nil
}

func (r *fakeRepository) PurgeExpired(_ context.Context, retention time.Duration) ([]string, error) {
	cutoff := time.Now().UTC().Add(-retention)
	var ids []string
	for id, t := range r.items {
		if t.DeletedAt != nil && t.DeletedAt.Before(cutoff) {
			ids = append(ids, id)
			delete(r.items, id)
		}
	}
	return ids, nil
}

func (r *fakeRepository) Exists(_ context.Context, id string) (bool, error) {
	_, ok := r.items[id]
	return ok, nil
}

type capturingAuditor struct {
	records []AuditRecord
}

func (a *capturingAuditor) Record(_ context.Context, rec AuditRecord) {
	a.records = append(a.records, rec)
}

type sequentialIDs struct {
	n int
}

func (g *sequentialIDs) NewID() (string, error) {
	g.n++
	return fmt.Sprintf("id-%d", g.n), nil
}

var (
	operator = Principal{ID: "op", HomeTenantID: "platform", Role: RolePlatformOperator}
	admin    = Principal{ID: "adm", HomeTenantID: "tenant-a", Role: RoleTenantAdmin}
)

func newTestService() (Service, *fakeRepository, *capturingAuditor) {
	repo := newFakeRepository()
	audit := &capturingAuditor{}
	return NewService(repo, &sequentialIDs{}, audit), repo, audit
}

func TestCreateTenant(t *testing.T) {
	svc, repo, audit := newTestService()

	created, err := svc.Create(context.Background(), operator, CreateParams{Name: "Acme Corp"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Slug != "acme-corp" {
		t.Fatalf("slug not derived, got %q", created.Slug)
	}
	if created.Status != StatusTrialing {
		t.Fatalf("new tenant status %q", created.Status)
	}
	if _, ok := repo.items[created.ID]; !ok {
		t.Fatal("tenant not persisted")
	}
	if len(audit.records) != 1 || audit.records[0].Action != ActionTenantCreate {
		t.Fatalf("audit records: %+v", audit.records)
	}
}

func TestCreateTenantForbidden(t *testing.T) {
	svc, repo, audit := newTestService()

	for _, p := range []Principal{admin, {ID: "a", HomeTenantID: "t", Role: RoleAgent}, {ID: "c", HomeTenantID: "t", Role: RoleCustomer}} {
		if _, err := svc.Create(context.Background(), p, CreateParams{Name: "X"}); !errors.Is(err, ErrForbidden) {
			t.Fatalf("role %s: expected ErrForbidden, got %v", p.Role, err)
		}
	}
	if len(repo.items) != 0 || len(audit.records) != 0 {
		t.Fatal("forbidden create left side effects")
	}
}

func TestGetTenantAntiEnumeration(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.Create(context.Background(), operator, CreateParams{Name: "Other"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A tenant admin probing a foreign tenant id gets not-found, the same
	// answer as for an id that does not exist at all.
	scope := Scope{TenantID: "tenant-a"}
	_, errForeign := svc.Get(context.Background(), admin, scope, created.ID)
	_, errAbsent := svc.Get(context.Background(), admin, scope, "no-such-tenant")
	if !errors.Is(errForeign, ErrTenantNotFound) || !errors.Is(errAbsent, ErrTenantNotFound) {
		t.Fatalf("foreign %v, absent %v", errForeign, errAbsent)
	}
}

func TestGetOwnTenant(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.items["tenant-a"] = &Tenant{ID: "tenant-a", Name: "A", Slug: "a", Status: StatusActive}

	got, err := svc.Get(context.Background(), admin, Scope{TenantID: "tenant-a"}, "tenant-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "tenant-a" {
		t.Fatalf("got %+v", got)
	}
}

func TestUpdateStatusChangeAudited(t *testing.T) {
	svc, _, audit := newTestService()

	created, err := svc.Create(context.Background(), operator, CreateParams{Name: "Acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	audit.records = nil

	status := StatusSuspended
	updated, err := svc.Update(context.Background(), operator, created.ID, UpdateParams{Status: &status})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusSuspended {
		t.Fatalf("status %q", updated.Status)
	}
	if len(audit.records) != 1 || audit.records[0].Action != ActionTenantStatusChange {
		t.Fatalf("audit records: %+v", audit.records)
	}
}

func TestDeleteIsSoft(t *testing.T) {
	svc, repo, audit := newTestService()

	created, err := svc.Create(context.Background(), operator, CreateParams{Name: "Acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Delete(context.Background(), operator, created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored := repo.items[created.ID]
	if stored == nil || stored.DeletedAt == nil || stored.Status != StatusDeleted {
		t.Fatalf("stored %+v", stored)
	}
	last := audit.records[len(audit.records)-1]
	if last.Action != ActionTenantDelete {
		t.Fatalf("last audit action %q", last.Action)
	}

	// Hidden from non-privileged callers during retention.
	if _, err := svc.Get(context.Background(), admin, Scope{TenantID: created.ID}, created.ID); !errors.Is(err, ErrTenantNotFound) {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}
}

func TestExportServesSoftDeleted(t *testing.T) {
	svc, _, audit := newTestService()

	created, err := svc.Create(context.Background(), operator, CreateParams{Name: "Acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Delete(context.Background(), operator, created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	audit.records = nil

	exported, err := svc.Export(context.Background(), operator, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exported.ID != created.ID {
		t.Fatalf("exported %+v", exported)
	}
	if len(audit.records) != 1 || audit.records[0].Action != ActionTenantExport {
		t.Fatalf("audit records: %+v", audit.records)
	}

	if _, err := svc.Export(context.Background(), admin, created.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAuditWrittenBeforeAction(t *testing.T) {
	svc, _, audit := newTestService()

	created, err := svc.Create(context.Background(), operator, CreateParams{Name: "Acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	audit.records = nil

	// Deleting twice: the second attempt fails in the repository, but the
	// attempt itself is still on record.
	if err := svc.Delete(context.Background(), operator, created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Delete(context.Background(), operator, created.ID); !errors.Is(err, ErrTenantNotFound) {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}
	if len(audit.records) != 2 {
		t.Fatalf("expected 2 audit records, got %d", len(audit.records))
	}
}
