package usecase

import (
	"context"
	"errors"
	"fmt"

	"yundao/internal/domain"
	"yundao/internal/infra/password"
)

// AuthenticationEngine verifies credentials against the credential store
// and produces fully populated principals. It never returns a partial
// principal alongside an error.
type AuthenticationEngine struct {
	store  CredentialStore
	hasher password.Hasher
}

func NewAuthenticationEngine(store CredentialStore, hasher password.Hasher) *AuthenticationEngine {
	return &AuthenticationEngine{store: store, hasher: hasher}
}

func (e *AuthenticationEngine) Authenticate(ctx context.Context, account, credential string) (domain.Principal, error) {
	user, err := e.lookup(ctx, account)
	if err != nil {
		return domain.Principal{}, err
	}
	ok, err := e.hasher.Verify(user.PasswordHash, credential)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("verify credential: %w", err)
	}
	if !ok {
		return domain.Principal{}, domain.ErrIncorrectCredential
	}
	return e.principalFor(ctx, user)
}

// ReauthenticateSilently re-confirms that the account behind a
// structurally valid token still exists and is usable. The bearer token is
// the proof of prior authentication, so this is lookup-only.
func (e *AuthenticationEngine) ReauthenticateSilently(ctx context.Context, account string) (domain.Principal, error) {
	user, err := e.lookup(ctx, account)
	if err != nil {
		return domain.Principal{}, err
	}
	return e.principalFor(ctx, user)
}

// AuthenticateDevice resolves a pre-registered device binding to a
// principal without a password.
func (e *AuthenticationEngine) AuthenticateDevice(ctx context.Context, openID string) (domain.Principal, error) {
	user, err := e.store.FindByDeviceBinding(ctx, openID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Principal{}, domain.ErrUnknownDevice
		}
		return domain.Principal{}, fmt.Errorf("find device binding: %w", err)
	}
	if err := checkStatus(user.Status); err != nil {
		return domain.Principal{}, err
	}
	return e.principalFor(ctx, user)
}

func (e *AuthenticationEngine) lookup(ctx context.Context, account string) (*domain.User, error) {
	if account == "" {
		return nil, domain.ErrUnknownAccount
	}
	user, err := e.store.FindByAccount(ctx, account)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnknownAccount
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	if err := checkStatus(user.Status); err != nil {
		return nil, err
	}
	return user, nil
}

func (e *AuthenticationEngine) principalFor(ctx context.Context, user *domain.User) (domain.Principal, error) {
	permissions, err := e.store.RolePermissions(ctx, user.Role)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("load role permissions: %w", err)
	}
	return domain.Principal{
		ID:          user.ID,
		Account:     user.Account,
		Name:        user.Name,
		Roles:       []string{user.Role},
		Permissions: permissions,
	}, nil
}

func checkStatus(status string) error {
	switch status {
	case domain.StatusNormal:
		return nil
	case domain.StatusLocked:
		return domain.ErrLockedAccount
	case domain.StatusDisabled:
		return domain.ErrAccountDisabled
	default:
		return domain.ErrAccountDisabled
	}
}
