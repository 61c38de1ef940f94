package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Vitorass0/sgu-auth-server/internal/keycloak"
)

// RoleService resolves and assigns IdP roles for a principal. Realm-level
// reads go through the composite mapping so inherited roles are included.
type RoleService struct {
	admin  IdentityAdmin
	realm  string
	logger *zap.Logger
}

func NewRoleService(admin IdentityAdmin, realm string, logger *zap.Logger) *RoleService {
	return &RoleService{
		admin:  admin,
		realm:  realm,
		logger: logger,
	}
}

// EffectiveRealmRoles returns the principal's effective realm role names in
// the order the IdP reports them.
func (s *RoleService) EffectiveRealmRoles(ctx context.Context, principalID string) ([]string, error) {
	roles, err := s.admin.GetEffectiveRealmRoles(ctx, s.realm, principalID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve effective roles: %w", err)
	}

	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = role.Name
	}

	return names, nil
}

// AssignRealmRole grants a single realm role to the principal. Granting a
// role the principal already holds succeeds without error.
func (s *RoleService) AssignRealmRole(ctx context.Context, principalID, roleName string) error {
	role, err := s.admin.GetRealmRole(ctx, s.realm, roleName)
	if err != nil {
		return err
	}

	if err := s.admin.AssignRealmRoles(ctx, s.realm, principalID, []keycloak.RoleRepresentation{*role}); err != nil {
		return fmt.Errorf("failed to assign role %s: %w", roleName, err)
	}

	s.logger.Info("Assigned realm role",
		zap.String("user_id", principalID),
		zap.String("role", roleName))

	return nil
}

// AssignClientRole grants a client-scoped role. The client is looked up by
// its clientId first since role mappings are keyed by the internal UUID.
func (s *RoleService) AssignClientRole(ctx context.Context, principalID, clientID, roleName string) error {
	client, err := s.admin.GetClientByClientID(ctx, s.realm, clientID)
	if err != nil {
		return err
	}

	role, err := s.admin.GetClientRole(ctx, s.realm, client.ID, roleName)
	if err != nil {
		return err
	}

	if err := s.admin.AssignClientRoles(ctx, s.realm, principalID, client.ID, []keycloak.RoleRepresentation{*role}); err != nil {
		return fmt.Errorf("failed to assign client role %s: %w", roleName, err)
	}

	s.logger.Info("Assigned client role",
		zap.String("user_id", principalID),
		zap.String("client_id", clientID),
		zap.String("role", roleName))

	return nil
}
