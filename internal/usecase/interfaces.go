package usecase

import (
	"context"

	"yundao/internal/domain"
)

// CredentialStore resolves accounts and device bindings to stored users.
// The gateway never writes through it.
type CredentialStore interface {
	FindByAccount(ctx context.Context, account string) (*domain.User, error)
	FindByDeviceBinding(ctx context.Context, openID string) (*domain.User, error)
	RolePermissions(ctx context.Context, role string) ([]string, error)
}
