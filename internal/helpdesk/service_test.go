package helpdesk

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"helpdesk/internal/tenant"
)

type fakeTicketRepo struct {
	items map[string]*Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{items: make(map[string]*Ticket)}
}

func (r *fakeTicketRepo) Insert(_ context.Context, t *Ticket) error {
	cp := *t
	r.items[t.ID] = &cp
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, tenantID, id string) (*Ticket, error) {
	t, ok := r.items[id]
	if !ok || t.TenantID != tenantID {
		return nil, tenant.ErrResourceNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTicketRepo) List(_ context.Context, tenantID string, f TicketFilter) ([]*Ticket, int64, error) {
	var out []*Ticket
	for _, t := range r.items {
		if t.TenantID != tenantID {
			continue
		}
		if f.CustomerID != "" && t.CustomerID != f.CustomerID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *fakeTicketRepo) Update(_ context.Context, t *Ticket) error {
	existing, ok := r.items[t.ID]
	if !ok || existing.TenantID != t.TenantID {
		return tenant.ErrResourceNotFound
	}
	cp := *t
	r.items[t.ID] = &cp
	return nil
}

type fakeMessageRepo struct {
	items []*Message
}

func (r *fakeMessageRepo) Insert(_ context.Context, m *Message) error {
	cp := *m
	r.items = append(r.items, &cp)
	return nil
}

func (r *fakeMessageRepo) ListByTicket(_ context.Context, tenantID, ticketID string, includeInternal bool) ([]*Message, error) {
	var out []*Message
	for _, m := range r.items {
		if m.TenantID != tenantID || m.TicketID != ticketID {
			continue
		}
		if m.Internal && !includeInternal {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

type fakeCustomerRepo struct {
	items map[string]*Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{items: make(map[string]*Customer)}
}

func (r *fakeCustomerRepo) Insert(_ context.Context, c *Customer) error {
	for _, existing := range r.items {
		if existing.TenantID == c.TenantID && existing.Email == c.Email {
			return ErrEmailExists
		}
	}
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) GetByID(_ context.Context, tenantID, id string) (*Customer, error) {
	c, ok := r.items[id]
	if !ok || c.TenantID != tenantID {
		return nil, tenant.ErrResourceNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCustomerRepo) List(_ context.Context, tenantID string, limit, offset int) ([]*Customer, int64, error) {
	var out []*Customer
	for _, c := range r.items {
		if c.TenantID == tenantID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, c *Customer) error {
	existing, ok := r.items[c.ID]
	if !ok || existing.TenantID != c.TenantID {
		return tenant.ErrResourceNotFound
	}
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) Delete(_ context.Context, tenantID, id string) error {
	c, ok := r.items[id]
	if !ok || c.TenantID != tenantID {
		return tenant.ErrResourceNotFound
	}
	delete(r.items, id)
	return nil
}

type countingIDs struct {
	n int
}

func (g *countingIDs) NewID() (string, error) {
	g.n++
	return fmt.Sprintf("id-%d", g.n), nil
}

var (
	agentA    = tenant.Principal{ID: "agent-1", HomeTenantID: "tenant-a", Role: tenant.RoleAgent}
	customerA = tenant.Principal{ID: "cust-1", HomeTenantID: "tenant-a", Role: tenant.RoleCustomer}
	scopeA    = tenant.Scope{TenantID: "tenant-a"}
)

func newTestTicketService() (TicketService, *fakeTicketRepo, *fakeMessageRepo) {
	tickets := newFakeTicketRepo()
	messages := &fakeMessageRepo{}
	customers := newFakeCustomerRepo()
	customers.items["cust-9"] = &Customer{ID: "cust-9", TenantID: "tenant-a", Email: "c@a.example", Name: "C"}
	svc := NewTicketService(tickets, messages, customers, &countingIDs{})
	return svc, tickets, messages
}

func TestTicketCreateStampsScopeTenant(t *testing.T) {
	svc, repo, _ := newTestTicketService()

	created, err := svc.Create(context.Background(), agentA, scopeA, TicketParams{
		CustomerID: "cust-9",
		Subject:    "printer on fire",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.TenantID != "tenant-a" {
		t.Fatalf("ticket stamped with %q", created.TenantID)
	}
	if repo.items[created.ID].TenantID != "tenant-a" {
		t.Fatal("persisted ticket carries wrong tenant")
	}
	if created.Status != TicketOpen {
		t.Fatalf("new ticket status %q", created.Status)
	}
}

func TestTicketCreateCustomerRaisesOwn(t *testing.T) {
	svc, _, _ := newTestTicketService()

	// A customer naming someone else's customer id is overridden with their
	// own identity.
	created, err := svc.Create(context.Background(), customerA, scopeA, TicketParams{
		CustomerID: "someone-else",
		Subject:    "help",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.CustomerID != customerA.ID {
		t.Fatalf("customer id %q", created.CustomerID)
	}
}

func TestTicketGetForeignTenantAnswersNotFound(t *testing.T) {
	svc, repo, _ := newTestTicketService()
	repo.items["t-foreign"] = &Ticket{ID: "t-foreign", TenantID: "tenant-b", CustomerID: "c", Subject: "x", Status: TicketOpen}

	// The existing foreign ticket and a genuinely absent one are
	// indistinguishable, and neither is a forbidden-class error.
	_, errForeign := svc.Get(context.Background(), agentA, scopeA, "t-foreign")
	_, errAbsent := svc.Get(context.Background(), agentA, scopeA, "t-missing")
	if !errors.Is(errForeign, tenant.ErrResourceNotFound) {
		t.Fatalf("foreign ticket: %v", errForeign)
	}
	if !errors.Is(errAbsent, tenant.ErrResourceNotFound) {
		t.Fatalf("absent ticket: %v", errAbsent)
	}
	if errors.Is(errForeign, tenant.ErrForbidden) {
		t.Fatal("foreign ticket leaked a forbidden-class error")
	}
}

func TestTicketOwnershipRecheck(t *testing.T) {
	_, repo, _ := newTestTicketService()

	// A repository bug that stops filtering by tenant must still not leak:
	// the service re-checks the row it got back.
	repo.items["t1"] = &Ticket{ID: "t1", TenantID: "tenant-b", CustomerID: "c", Subject: "x", Status: TicketOpen}
	leaky := &leakyTicketRepo{inner: repo}

	leakySvc := NewTicketService(leaky, &fakeMessageRepo{}, newFakeCustomerRepo(), &countingIDs{})
	if _, err := leakySvc.Get(context.Background(), agentA, scopeA, "t1"); !errors.Is(err, tenant.ErrResourceNotFound) {
		t.Fatalf("expected ErrResourceNotFound, got %v", err)
	}
}

// leakyTicketRepo simulates a repository whose GetByID forgot its tenant
// filter.
type leakyTicketRepo struct {
	inner *fakeTicketRepo
}

func (r *leakyTicketRepo) Insert(ctx context.Context, t *Ticket) error { return r.inner.Insert(ctx, t) }

func (r *leakyTicketRepo) GetByID(_ context.Context, _ string, id string) (*Ticket, error) {
	t, ok := r.inner.items[id]
	if !ok {
		return nil, tenant.ErrResourceNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *leakyTicketRepo) List(ctx context.Context, tenantID string, f TicketFilter) ([]*Ticket, int64, error) {
	return r.inner.List(ctx, tenantID, f)
}

func (r *leakyTicketRepo) Update(ctx context.Context, t *Ticket) error { return r.inner.Update(ctx, t) }

func TestTicketListCustomerPinnedToOwn(t *testing.T) {
	svc, repo, _ := newTestTicketService()
	repo.items["t1"] = &Ticket{ID: "t1", TenantID: "tenant-a", CustomerID: customerA.ID, Subject: "mine", Status: TicketOpen}
	repo.items["t2"] = &Ticket{ID: "t2", TenantID: "tenant-a", CustomerID: "other", Subject: "not mine", Status: TicketOpen}

	tickets, _, err := svc.List(context.Background(), customerA, scopeA, TicketFilter{CustomerID: "other"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tickets) != 1 || tickets[0].ID != "t1" {
		t.Fatalf("tickets %+v", tickets)
	}
}

func TestTicketUpdateCustomerForbidden(t *testing.T) {
	svc, repo, _ := newTestTicketService()
	repo.items["t1"] = &Ticket{ID: "t1", TenantID: "tenant-a", CustomerID: customerA.ID, Subject: "mine", Status: TicketOpen}

	status := TicketClosed
	if _, err := svc.Update(context.Background(), customerA, scopeA, "t1", TicketUpdateParams{Status: &status}); !errors.Is(err, tenant.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestTicketResolveSetsTimestamp(t *testing.T) {
	svc, repo, _ := newTestTicketService()
	repo.items["t1"] = &Ticket{ID: "t1", TenantID: "tenant-a", CustomerID: "c", Subject: "x", Status: TicketOpen}

	status := TicketResolved
	updated, err := svc.Update(context.Background(), agentA, scopeA, "t1", TicketUpdateParams{Status: &status})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ResolvedAt == nil {
		t.Fatal("resolved ticket has no timestamp")
	}

	status = TicketOpen
	reopened, err := svc.Update(context.Background(), agentA, scopeA, "t1", TicketUpdateParams{Status: &status})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reopened.ResolvedAt != nil {
		t.Fatal("reopened ticket kept its resolved timestamp")
	}
}

func TestMessagesInternalHiddenFromCustomer(t *testing.T) {
	svc, repo, _ := newTestTicketService()
	repo.items["t1"] = &Ticket{ID: "t1", TenantID: "tenant-a", CustomerID: customerA.ID, Subject: "x", Status: TicketOpen}

	if _, err := svc.AddMessage(context.Background(), agentA, scopeA, "t1", MessageParams{Body: "public reply"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.AddMessage(context.Background(), agentA, scopeA, "t1", MessageParams{Body: "internal note", Internal: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	asCustomer, err := svc.Messages(context.Background(), customerA, scopeA, "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(asCustomer) != 1 || asCustomer[0].Internal {
		t.Fatalf("customer sees %+v", asCustomer)
	}

	asAgent, err := svc.Messages(context.Background(), agentA, scopeA, "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(asAgent) != 2 {
		t.Fatalf("agent sees %d messages", len(asAgent))
	}
}

func TestAddMessageCustomerCannotWriteInternal(t *testing.T) {
	svc, repo, _ := newTestTicketService()
	repo.items["t1"] = &Ticket{ID: "t1", TenantID: "tenant-a", CustomerID: customerA.ID, Subject: "x", Status: TicketOpen}

	if _, err := svc.AddMessage(context.Background(), customerA, scopeA, "t1", MessageParams{Body: "note", Internal: true}); !errors.Is(err, tenant.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAddMessageClosedTicket(t *testing.T) {
	svc, repo, _ := newTestTicketService()
	repo.items["t1"] = &Ticket{ID: "t1", TenantID: "tenant-a", CustomerID: "c", Subject: "x", Status: TicketClosed}

	if _, err := svc.AddMessage(context.Background(), agentA, scopeA, "t1", MessageParams{Body: "hello"}); !errors.Is(err, ErrTicketClosed) {
		t.Fatalf("expected ErrTicketClosed, got %v", err)
	}
}

func TestCustomerCreateStampsScopeTenant(t *testing.T) {
	repo := newFakeCustomerRepo()
	svc := NewCustomerService(repo, &countingIDs{})

	created, err := svc.Create(context.Background(), scopeA, CustomerParams{Email: "Jo@Example.com", Name: "Jo"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.TenantID != "tenant-a" {
		t.Fatalf("customer stamped with %q", created.TenantID)
	}
	if created.Email != "jo@example.com" {
		t.Fatalf("email not normalized: %q", created.Email)
	}
}

func TestCustomerGetForeignNotFound(t *testing.T) {
	repo := newFakeCustomerRepo()
	repo.items["c1"] = &Customer{ID: "c1", TenantID: "tenant-b", Email: "x@y.z", Name: "X"}
	svc := NewCustomerService(repo, &countingIDs{})

	if _, err := svc.Get(context.Background(), scopeA, "c1"); !errors.Is(err, tenant.ErrResourceNotFound) {
		t.Fatalf("expected ErrResourceNotFound, got %v", err)
	}
}
