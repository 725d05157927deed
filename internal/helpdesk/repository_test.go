package helpdesk

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"
)

type capturedStmt struct {
	query string
	args  []any
}

// probeDB captures every statement the repositories emit through ExecContext
// and QueryContext. Row reads cannot be faked without a driver, so the tests
// below only exercise methods that avoid QueryRowContext.
type probeDB struct {
	calls []capturedStmt
}

func (d *probeDB) capture(query string, args []any) {
	d.calls = append(d.calls, capturedStmt{query: query, args: args})
}

func (d *probeDB) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	d.capture(query, args)
	return probeResult{}, nil
}

func (d *probeDB) QueryRowContext(_ context.Context, query string, args ...any) *sql.Row {
	d.capture(query, args)
	return nil
}

func (d *probeDB) QueryContext(_ context.Context, query string, args ...any) (*sql.Rows, error) {
	d.capture(query, args)
	return nil, errors.New("probe: no rows")
}

type probeResult struct{}

func (probeResult) LastInsertId() (int64, error) { return 0, nil }
func (probeResult) RowsAffected() (int64, error) { return 1, nil }

func assertTenantScoped(t *testing.T, stmt capturedStmt, tenantID string) {
	t.Helper()
	if !strings.Contains(stmt.query, "tenant_id") {
		t.Fatalf("statement lacks tenant column: %q", stmt.query)
	}
	for _, arg := range stmt.args {
		if arg == tenantID {
			return
		}
	}
	t.Fatalf("tenant id %q missing from args %v", tenantID, stmt.args)
}

// Every statement a repository emits must name the tenant id. This is the
// query-level half of the isolation contract; the service-level re-check of
// loaded rows is covered in service_test.go.
func TestTicketRepositoryStatementsAreTenantScoped(t *testing.T) {
	db := &probeDB{}
	repo := NewTicketRepository(db)
	now := time.Now().UTC()

	tk := &Ticket{
		ID: "t1", TenantID: "tenant-a", CustomerID: "c1", Subject: "printer on fire",
		Status: TicketOpen, Priority: PriorityNormal, CreatedAt: now, UpdatedAt: now,
	}
	if err := repo.Insert(context.Background(), tk); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.Update(context.Background(), tk); err != nil {
		t.Fatalf("update: %v", err)
	}

	if len(db.calls) != 2 {
		t.Fatalf("captured %d statements, want 2", len(db.calls))
	}
	for _, stmt := range db.calls {
		assertTenantScoped(t, stmt, "tenant-a")
	}
}

func TestCustomerRepositoryStatementsAreTenantScoped(t *testing.T) {
	db := &probeDB{}
	repo := NewCustomerRepository(db)
	now := time.Now().UTC()

	c := &Customer{ID: "c1", TenantID: "tenant-a", Email: "ada@example.com", Name: "Ada", CreatedAt: now, UpdatedAt: now}
	if err := repo.Insert(context.Background(), c); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.Update(context.Background(), c); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := repo.Delete(context.Background(), "tenant-a", "c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(db.calls) != 3 {
		t.Fatalf("captured %d statements, want 3", len(db.calls))
	}
	for _, stmt := range db.calls {
		assertTenantScoped(t, stmt, "tenant-a")
	}
}

func TestMessageRepositoryStatementsAreTenantScoped(t *testing.T) {
	db := &probeDB{}
	repo := NewMessageRepository(db)

	m := &Message{ID: "m1", TenantID: "tenant-a", TicketID: "t1", AuthorID: "u1", Body: "hello", CreatedAt: time.Now().UTC()}
	if err := repo.Insert(context.Background(), m); err != nil {
		t.Fatalf("insert: %v", err)
	}
	// List fails at scan time against the probe; the statement is still captured.
	if _, err := repo.ListByTicket(context.Background(), "tenant-a", "t1", false); err == nil {
		t.Fatal("expected probe error from list")
	}

	if len(db.calls) != 2 {
		t.Fatalf("captured %d statements, want 2", len(db.calls))
	}
	for _, stmt := range db.calls {
		assertTenantScoped(t, stmt, "tenant-a")
	}
	if !strings.Contains(db.calls[1].query, "internal = FALSE") {
		t.Fatalf("customer-visible listing must exclude internal notes: %q", db.calls[1].query)
	}
}

func TestTeamRepositoryStatementsAreTenantScoped(t *testing.T) {
	db := &probeDB{}
	repo := NewTeamRepository(db)
	now := time.Now().UTC()

	if err := repo.Insert(context.Background(), &Team{ID: "tm1", TenantID: "tenant-a", Name: "Tier 1", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.Delete(context.Background(), "tenant-a", "tm1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	for _, stmt := range db.calls {
		assertTenantScoped(t, stmt, "tenant-a")
	}
}
