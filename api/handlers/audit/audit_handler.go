package audit

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	response "helpdesk/api/handlers/common"
	auditSvc "helpdesk/internal/audit"
	"helpdesk/internal/tenant"

	"github.com/gin-gonic/gin"
)

// LogStore is the query surface of the audit recorder.
type LogStore interface {
	Query(ctx context.Context, p tenant.Principal, scope tenant.Scope, f auditSvc.Filter) ([]*auditSvc.Entry, error)
}

// AuditHandler exposes the audit log query and export endpoints. Access
// requires at least the tenant admin role; on top of that the recorder's
// query path pins non-privileged callers to entries targeting their
// effective tenant.
type AuditHandler struct {
	recorder LogStore
}

func NewAuditHandler(recorder LogStore) *AuditHandler {
	return &AuditHandler{recorder: recorder}
}

// canViewLogs reports whether the principal may read audit entries at all.
// Agents and customers are same-tenant role failures, not ownership ones.
func canViewLogs(p tenant.Principal) bool {
	return p.Role == tenant.RolePlatformOperator || p.Role == tenant.RoleTenantAdmin
}

type exportLogsRequest struct {
	Format         string `json:"format" binding:"required"`
	TargetTenantID string `json:"targetTenantId"`
	Action         string `json:"action"`
	Limit          int    `json:"limit"`
}

// QueryLogs lists audit entries matching the query parameters.
func (h *AuditHandler) QueryLogs(c *gin.Context) {
	p, scope, ok := response.RequestIdentity(c)
	if !ok {
		return
	}
	if !canViewLogs(p) {
		response.AbortWithError(c, tenant.ErrForbidden)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	f := auditSvc.Filter{
		ActorID:        c.Query("actorId"),
		Action:         c.Query("action"),
		TargetTenantID: c.Query("targetTenantId"),
		Limit:          limit,
		Offset:         offset,
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			f.From = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			f.To = &t
		}
	}

	entries, err := h.recorder.Query(c.Request.Context(), p, scope, f)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.APIResponse{Success: true, Data: entries})
}

// ExportLogs streams matching audit entries as a CSV or JSON attachment.
func (h *AuditHandler) ExportLogs(c *gin.Context) {
	p, scope, ok := response.RequestIdentity(c)
	if !ok {
		return
	}
	if !canViewLogs(p) {
		response.AbortWithError(c, tenant.ErrForbidden)
		return
	}
	var req exportLogsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Message: "invalid JSON body"})
		return
	}
	limit := req.Limit
	if limit <= 0 || limit > 200 {
		limit = 200
	}

	entries, err := h.recorder.Query(c.Request.Context(), p, scope, auditSvc.Filter{
		TargetTenantID: req.TargetTenantID,
		Action:         req.Action,
		Limit:          limit,
	})
	if err != nil {
		response.AbortWithError(c, err)
		return
	}

	switch req.Format {
	case "csv":
		h.exportCSV(c, entries)
	default:
		h.exportJSON(c, entries)
	}
}

func (h *AuditHandler) exportCSV(c *gin.Context, entries []*auditSvc.Entry) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename=audit_logs.csv")

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"id", "actor_id", "actor_role", "action", "target_tenant_id", "payload", "request_id", "created_at"})
	for _, e := range entries {
		var payload string
		if e.Payload != nil {
			if b, err := json.Marshal(e.Payload); err == nil {
				payload = string(b)
			}
		}
		_ = w.Write([]string{
			e.ID,
			e.ActorID,
			e.ActorRole,
			e.Action,
			e.TargetTenantID,
			payload,
			e.RequestID,
			e.CreatedAt.Format(time.RFC3339),
		})
	}
	w.Flush()
}

func (h *AuditHandler) exportJSON(c *gin.Context, entries []*auditSvc.Entry) {
	c.Header("Content-Disposition", "attachment; filename=audit_logs.json")
	c.JSON(http.StatusOK, map[string]interface{}{
		"exportedAt": time.Now().UTC().Format(time.RFC3339),
		"totalCount": len(entries),
		"logs":       entries,
	})
}
