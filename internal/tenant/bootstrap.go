package tenant

import (
	"context"
	"errors"
	"time"
)

// EnsurePlatformTenant creates the dedicated system tenant that platform
// operator credentials are issued against, if it does not exist yet. It runs
// once at startup so a fresh database needs no manual insert before the first
// operator login. An empty id skips the check.
func EnsurePlatformTenant(ctx context.Context, repo Repository, id string) error {
	if id == "" {
		return nil
	}
	if _, err := repo.GetByID(ctx, id); err == nil {
		return nil
	} else if !errors.Is(err, ErrTenantNotFound) {
		return err
	}

	now := time.Now().UTC()
	err := repo.Insert(ctx, &Tenant{
		ID:        id,
		Name:      "Platform",
		Slug:      "platform",
		Status:    StatusActive,
		Plan:      "internal",
		CreatedAt: now,
		UpdatedAt: now,
	})
	// Another instance may have won the race.
	if errors.Is(err, ErrSlugExists) {
		return nil
	}
	return err
}
