package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"helpdesk/internal/infra"
	"helpdesk/internal/tenant"
)

var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// User is a login identity. Role and TenantID become the token claims that
// every later authorization decision derives from.
type User struct {
	ID           string    `gorm:"type:uuid;primarykey" json:"id"`
	TenantID     string    `gorm:"type:uuid;not null;index:idx_users_tenant" json:"tenantId"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Role         string    `gorm:"size:30;not null" json:"role"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserRepository manages login identities. Lookup by email is global: the
// email carries no tenant hint at login time, the stored record does.
type UserRepository interface {
	Insert(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, u *User) error
}

type userRepository struct {
	db infra.DB
}

// NewUserRepository constructs a UserRepository backed by the given DB.
func NewUserRepository(db infra.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, tenant_id, email, name, role, password_hash, created_at, updated_at`

func (r *userRepository) Insert(ctx context.Context, u *User) error {
	const q = `
		INSERT INTO users (id, tenant_id, email, name, role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, q, u.ID, u.TenantID, u.Email, u.Name, u.Role, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	return err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	return u, err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tenant.ErrResourceNotFound
	}
	return u, err
}

func (r *userRepository) Update(ctx context.Context, u *User) error {
	const q = `
		UPDATE users
		SET email = $1, name = $2, role = $3, password_hash = $4, updated_at = $5
		WHERE id = $6
	`
	res, err := r.db.ExecContext(ctx, q, u.Email, u.Name, u.Role, u.PasswordHash, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tenant.ErrResourceNotFound
	}
	return nil
}

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.TenantID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Service performs credential verification and token issuance.
type Service struct {
	users  UserRepository
	hasher PasswordHasher
	jwt    *JWTService
}

// NewService constructs an auth Service.
func NewService(users UserRepository, hasher PasswordHasher, jwt *JWTService) *Service {
	return &Service{users: users, hasher: hasher, jwt: jwt}
}

// Login verifies the credentials and returns a signed token plus the user.
// All failure modes collapse into ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !s.hasher.Compare(u.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	role := tenant.Role(u.Role)
	if !role.Valid() {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.jwt.Issue(tenant.Principal{ID: u.ID, HomeTenantID: u.TenantID, Role: role})
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}
