package ticket

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"helpdesk/internal/helpdesk"
	"helpdesk/internal/tenant"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTicketService struct {
	tickets map[string]*helpdesk.Ticket
	created *helpdesk.Ticket
}

func (s *fakeTicketService) Create(_ context.Context, p tenant.Principal, scope tenant.Scope, params helpdesk.TicketParams) (*helpdesk.Ticket, error) {
	t := &helpdesk.Ticket{
		ID:         "t-new",
		TenantID:   scope.TenantID,
		CustomerID: params.CustomerID,
		Subject:    params.Subject,
		Status:     helpdesk.TicketOpen,
		Priority:   helpdesk.PriorityNormal,
	}
	s.created = t
	return t, nil
}

func (s *fakeTicketService) Get(_ context.Context, p tenant.Principal, scope tenant.Scope, id string) (*helpdesk.Ticket, error) {
	t, ok := s.tickets[id]
	if !ok || t.TenantID != scope.TenantID {
		return nil, tenant.ErrResourceNotFound
	}
	return t, nil
}

func (s *fakeTicketService) List(context.Context, tenant.Principal, tenant.Scope, helpdesk.TicketFilter) ([]*helpdesk.Ticket, int64, error) {
	return nil, 0, nil
}

func (s *fakeTicketService) Update(context.Context, tenant.Principal, tenant.Scope, string, helpdesk.TicketUpdateParams) (*helpdesk.Ticket, error) {
	return nil, tenant.ErrResourceNotFound
}

func (s *fakeTicketService) AddMessage(context.Context, tenant.Principal, tenant.Scope, string, helpdesk.MessageParams) (*helpdesk.Message, error) {
	return nil, tenant.ErrResourceNotFound
}

func (s *fakeTicketService) Messages(context.Context, tenant.Principal, tenant.Scope, string) ([]*helpdesk.Message, error) {
	return nil, tenant.ErrResourceNotFound
}

func (s *fakeTicketService) ExportForTenant(context.Context, tenant.Scope, string) ([]*helpdesk.Ticket, error) {
	return nil, nil
}

func newTicketRouter(svc helpdesk.TicketService, p tenant.Principal, scope tenant.Scope) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		ctx := tenant.WithPrincipal(c.Request.Context(), p)
		ctx = tenant.WithScope(ctx, scope)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	h := NewTicketHandler(svc)
	router.POST("/api/tickets", h.Create)
	router.GET("/api/tickets/:id", h.Get)
	return router
}

func TestGetForeignTicketAnswers404(t *testing.T) {
	svc := &fakeTicketService{tickets: map[string]*helpdesk.Ticket{
		"t-foreign": {ID: "t-foreign", TenantID: "tenant-b", Subject: "x"},
	}}
	agent := tenant.Principal{ID: "agent-1", HomeTenantID: "tenant-a", Role: tenant.RoleAgent}
	router := newTicketRouter(svc, agent, tenant.Scope{TenantID: "tenant-a"})

	for _, id := range []string{"t-foreign", "t-missing"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/tickets/"+id, nil)
		router.ServeHTTP(w, req)

		// Foreign and absent tickets produce byte-identical responses.
		require.Equal(t, http.StatusNotFound, w.Code, id)
		assert.JSONEq(t, `{"success":false,"message":"resource not found"}`, w.Body.String(), id)
	}
}

func TestCreateTicketUsesScopeTenant(t *testing.T) {
	svc := &fakeTicketService{}
	agent := tenant.Principal{ID: "agent-1", HomeTenantID: "tenant-a", Role: tenant.RoleAgent}
	router := newTicketRouter(svc, agent, tenant.Scope{TenantID: "tenant-a"})

	payload, _ := json.Marshal(map[string]any{"subject": "hi", "customerId": "c1"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tickets", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.created)
	assert.Equal(t, "tenant-a", svc.created.TenantID)
}
