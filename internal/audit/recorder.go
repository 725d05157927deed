package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"helpdesk/internal/infra"
	"helpdesk/internal/metrics"
	"helpdesk/internal/middleware"
	"helpdesk/internal/tenant"

	"go.uber.org/zap"
)

// Recorder writes audit entries to the audit_entries table. It implements
// tenant.Auditor.
//
// Record is synchronous and ordered (the store's atomic insert serializes
// concurrent appends), but it never fails the caller: a sink error is logged
// to the process log and swallowed, because audit completeness is layered on
// top of availability, never a precondition for it.
type Recorder struct {
	db  infra.DB
	ids tenant.IDGenerator
	log *zap.Logger
}

// NewRecorder constructs a Recorder.
func NewRecorder(db infra.DB, ids tenant.IDGenerator, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{db: db, ids: ids, log: log}
}

// Record appends one entry. Callers invoke it before or atomically with the
// action it documents, so a failed action still leaves a trace of the attempt.
func (r *Recorder) Record(ctx context.Context, rec tenant.AuditRecord) {
	if ctx == nil || rec.ActorID == "" || rec.Action == "" {
		return
	}

	id, err := r.ids.NewID()
	if err != nil {
		r.log.Error("audit entry dropped: id generation failed", zap.Error(err), zap.String("action", rec.Action))
		return
	}

	var payloadJSON []byte
	if rec.Payload != nil {
		if b, err := json.Marshal(rec.Payload); err == nil {
			payloadJSON = b
		}
	}

	const q = `
		INSERT INTO audit_entries (id, actor_id, actor_role, action, target_tenant_id, payload, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := r.db.ExecContext(ctx, q,
		id,
		rec.ActorID,
		string(rec.ActorRole),
		rec.Action,
		rec.TargetTenantID,
		jsonOrNull(payloadJSON),
		middleware.GetRequestID(ctx),
		time.Now().UTC(),
	); err != nil {
		// Fallback diagnostic surface: the attempt is at least visible in
		// process logs when the audit sink is down.
		metrics.AuditWriteFailures.Inc()
		r.log.Error("audit write failed",
			zap.Error(err),
			zap.String("actor", rec.ActorID),
			zap.String("action", rec.Action),
			zap.String("target_tenant", rec.TargetTenantID),
		)
	}
}

// Filter narrows an audit query.
type Filter struct {
	From           *time.Time
	To             *time.Time
	ActorID        string
	Action         string
	TargetTenantID string
	Limit          int
	Offset         int
}

// Query returns audit entries visible to the principal. Non-privileged
// callers are pinned to their effective scope regardless of the filter; the
// platform operator may filter by any target tenant or query across all of
// them by leaving TargetTenantID empty.
func (r *Recorder) Query(ctx context.Context, p tenant.Principal, scope tenant.Scope, f Filter) ([]*Entry, error) {
	var policy tenant.Policy

	where := ""
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		marker := "$" + strconv.Itoa(len(args))
		if where == "" {
			where = "WHERE " + cond + marker
		} else {
			where += " AND " + cond + marker
		}
	}

	if policy.MayCrossTenant(p) {
		if f.TargetTenantID != "" {
			add("target_tenant_id = ", f.TargetTenantID)
		}
	} else {
		add("target_tenant_id = ", scope.TenantID)
	}
	if f.From != nil {
		add("created_at >= ", *f.From)
	}
	if f.To != nil {
		add("created_at <= ", *f.To)
	}
	if f.ActorID != "" {
		add("actor_id = ", f.ActorID)
	}
	if f.Action != "" {
		add("action = ", f.Action)
	}

	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)

	query := "SELECT id, actor_id, actor_role, action, target_tenant_id, payload, request_id, created_at FROM audit_entries " +
		where +
		" ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var (
			e         Entry
			payload   json.RawMessage
			requestID sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorRole, &e.Action, &e.TargetTenantID, &payload, &requestID, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			var v any
			_ = json.Unmarshal(payload, &v)
			e.Payload = v
		}
		e.RequestID = requestID.String
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func jsonOrNull(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
