package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Vitorass0/sgu-auth-server/internal/constants"
	"github.com/Vitorass0/sgu-auth-server/internal/keycloak"
	"github.com/Vitorass0/sgu-auth-server/internal/models"
)

type roleAssigner interface {
	AssignRealmRole(ctx context.Context, principalID, roleName string) error
	AssignClientRole(ctx context.Context, principalID, clientID, roleName string) error
}

type accountStore interface {
	Create(ctx context.Context, account *models.Account) error
	DeleteByKeycloakID(ctx context.Context, keycloakID string) error
}

type unverifiedLister interface {
	ListUnverified(ctx context.Context) ([]keycloak.UserRepresentation, error)
}

// ProvisioningService owns the multi-step account creation workflow and the
// administrative account operations. Creation is transactional in spirit:
// once a principal id has been allocated at the IdP, any later failure
// triggers a best-effort delete of that principal, and the step's original
// error is what the caller sees.
type ProvisioningService struct {
	admin      IdentityAdmin
	roles      roleAssigner
	accounts   accountStore
	unverified unverifiedLister
	realm      string
	logger     *zap.Logger
}

func NewProvisioningService(admin IdentityAdmin, roles roleAssigner, accounts accountStore, unverified unverifiedLister, realm string, logger *zap.Logger) *ProvisioningService {
	return &ProvisioningService{
		admin:      admin,
		roles:      roles,
		accounts:   accounts,
		unverified: unverified,
		realm:      realm,
		logger:     logger,
	}
}

// CreateUser provisions a principal at the IdP, grants its realm role,
// records the local account mirror and triggers the verification email.
// The identifier doubles as username and email. Returns the allocated
// principal id on success.
func (s *ProvisioningService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (principalID string, err error) {
	defer func() {
		if err != nil && principalID != "" {
			s.compensate(ctx, principalID)
			principalID = ""
		}
	}()

	user := &keycloak.UserRepresentation{
		Username:      req.Email,
		Email:         req.Email,
		FirstName:     req.Email,
		LastName:      req.Email,
		Enabled:       true,
		EmailVerified: false,
		Credentials: []keycloak.CredentialRepresentation{
			{
				Type:      "password",
				Value:     req.Password,
				Temporary: false,
			},
		},
	}

	if err = s.admin.CreateUser(ctx, s.realm, user); err != nil {
		return "", err
	}

	created, err := s.admin.FindUserByUsername(ctx, s.realm, req.Email)
	if err != nil {
		return "", keycloak.NewError(keycloak.KindProvisioningFailed,
			"could not resolve the created account", err)
	}
	principalID = created.ID

	if err = s.roles.AssignRealmRole(ctx, principalID, req.Role); err != nil {
		return "", err
	}

	if s.accounts != nil {
		account := &models.Account{
			KeycloakID: principalID,
			Email:      req.Email,
			Role:       req.Role,
		}
		if err = s.accounts.Create(ctx, account); err != nil {
			return "", keycloak.NewError(keycloak.KindProvisioningFailed,
				"could not record the local account", err)
		}
	}

	if err = s.admin.ExecuteActionsEmail(ctx, s.realm, principalID, []string{constants.EmailActionVerifyEmail}); err != nil {
		return "", keycloak.NewError(keycloak.KindProvisioningFailed,
			"could not send the verification email", err)
	}

	s.logger.Info("Provisioned user",
		zap.String("user_id", principalID),
		zap.String("role", req.Role))

	return principalID, nil
}

// compensate removes a partially provisioned principal. Its own failure is
// logged only; the step error that triggered it is what gets reported. The
// rollback runs on its own deadline so it still completes when the step
// failed because the caller's context was canceled.
func (s *ProvisioningService) compensate(ctx context.Context, principalID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.DefaultTimeout)
	defer cancel()

	if delErr := s.admin.DeleteUser(ctx, s.realm, principalID); delErr != nil {
		s.logger.Error("Failed to roll back partially provisioned user",
			zap.String("user_id", principalID),
			zap.Error(delErr))
		return
	}

	if s.accounts != nil {
		if delErr := s.accounts.DeleteByKeycloakID(ctx, principalID); delErr != nil {
			s.logger.Error("Failed to roll back local account record",
				zap.String("user_id", principalID),
				zap.Error(delErr))
		}
	}

	s.logger.Warn("Rolled back partially provisioned user",
		zap.String("user_id", principalID))
}

// DeleteUser removes the principal at the IdP and its local mirror.
func (s *ProvisioningService) DeleteUser(ctx context.Context, principalID string) error {
	if err := s.admin.DeleteUser(ctx, s.realm, principalID); err != nil {
		return err
	}

	if s.accounts != nil {
		if err := s.accounts.DeleteByKeycloakID(ctx, principalID); err != nil {
			s.logger.Warn("Deleted IdP user but local account removal failed",
				zap.String("user_id", principalID),
				zap.Error(err))
		}
	}

	return nil
}

// ResetPassword triggers the UPDATE_PASSWORD required-action email for the
// account owning the address. An unknown address is reported as not found
// and no email is sent.
func (s *ProvisioningService) ResetPassword(ctx context.Context, email string) error {
	user, err := s.admin.FindUserByEmail(ctx, s.realm, email)
	if err != nil {
		return err
	}

	if err := s.admin.ExecuteActionsEmail(ctx, s.realm, user.ID, []string{constants.EmailActionUpdatePassword}); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	s.logger.Info("Triggered password reset", zap.String("user_id", user.ID))

	return nil
}

func (s *ProvisioningService) AddRoleToUser(ctx context.Context, principalID, roleName string) error {
	return s.roles.AssignRealmRole(ctx, principalID, roleName)
}

func (s *ProvisioningService) AddClientRoleToUser(ctx context.Context, principalID, clientID, roleName string) error {
	return s.roles.AssignClientRole(ctx, principalID, clientID, roleName)
}

// ListUnverifiedUsers projects the unverified principals into the
// administrative listing shape.
func (s *ProvisioningService) ListUnverifiedUsers(ctx context.Context) ([]models.UnverifiedUser, error) {
	users, err := s.unverified.ListUnverified(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.UnverifiedUser, len(users))
	for i, user := range users {
		out[i] = models.UnverifiedUser{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Enabled:  user.Enabled,
		}
	}

	return out, nil
}
