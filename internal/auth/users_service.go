package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"helpdesk/internal/tenant"
)

// UserService manages login identities inside the effective tenant scope.
// Role changes and credential resets are enumerated sensitive actions and are
// audited even inside the home tenant.
type UserService struct {
	users  UserRepository
	hasher PasswordHasher
	ids    tenant.IDGenerator
	policy tenant.Policy
	audit  tenant.Auditor
}

// NewUserService constructs a UserService.
func NewUserService(users UserRepository, hasher PasswordHasher, ids tenant.IDGenerator, audit tenant.Auditor) *UserService {
	return &UserService{users: users, hasher: hasher, ids: ids, audit: audit}
}

// CreateUserParams describes inputs for user provisioning.
type CreateUserParams struct {
	Email    string
	Name     string
	Role     tenant.Role
	Password string
}

func canManageUsers(p tenant.Principal) bool {
	return p.Role == tenant.RolePlatformOperator || p.Role == tenant.RoleTenantAdmin
}

// CreateUser provisions a login identity in the scope's tenant. Only a
// platform operator may mint another operator.
func (s *UserService) CreateUser(ctx context.Context, p tenant.Principal, scope tenant.Scope, params CreateUserParams) (*User, error) {
	if !canManageUsers(p) {
		return nil, tenant.ErrForbidden
	}
	email := strings.ToLower(strings.TrimSpace(params.Email))
	name := strings.TrimSpace(params.Name)
	if email == "" || name == "" || params.Password == "" {
		return nil, errors.New("auth: missing required field")
	}
	if !params.Role.Valid() {
		return nil, errors.New("auth: unknown role")
	}
	if params.Role == tenant.RolePlatformOperator && !s.policy.MayCrossTenant(p) {
		return nil, tenant.ErrForbidden
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, err
	}
	id, err := s.ids.NewID()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &User{
		ID:           id,
		TenantID:     scope.TenantID,
		Email:        email,
		Name:         name,
		Role:         string(params.Role),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Insert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangeRole updates a user's role. The target must belong to the effective
// tenant; a foreign user answers not-found.
func (s *UserService) ChangeRole(ctx context.Context, p tenant.Principal, scope tenant.Scope, userID string, role tenant.Role) (*User, error) {
	if !canManageUsers(p) {
		return nil, tenant.ErrForbidden
	}
	if !role.Valid() {
		return nil, errors.New("auth: unknown role")
	}
	if role == tenant.RolePlatformOperator && !s.policy.MayCrossTenant(p) {
		return nil, tenant.ErrForbidden
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !tenant.OwnsResource(scope, u.TenantID) {
		return nil, tenant.ErrResourceNotFound
	}

	s.audit.Record(ctx, tenant.AuditRecord{
		ActorID:        p.ID,
		ActorRole:      p.Role,
		Action:         tenant.ActionRoleChange,
		TargetTenantID: u.TenantID,
		Payload:        map[string]any{"user_id": u.ID, "from": u.Role, "to": string(role)},
	})

	u.Role = string(role)
	u.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ResetPassword replaces a user's credential. Audited before the write.
func (s *UserService) ResetPassword(ctx context.Context, p tenant.Principal, scope tenant.Scope, userID, newPassword string) error {
	if !canManageUsers(p) {
		return tenant.ErrForbidden
	}
	if newPassword == "" {
		return errors.New("auth: missing required field")
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !tenant.OwnsResource(scope, u.TenantID) {
		return tenant.ErrResourceNotFound
	}

	s.audit.Record(ctx, tenant.AuditRecord{
		ActorID:        p.ID,
		ActorRole:      p.Role,
		Action:         tenant.ActionCredentialReset,
		TargetTenantID: u.TenantID,
		Payload:        map[string]any{"user_id": u.ID},
	})

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now().UTC()
	return s.users.Update(ctx, u)
}
