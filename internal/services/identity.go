package services

import (
	"context"

	"github.com/Vitorass0/sgu-auth-server/internal/keycloak"
)

// IdentityAdmin is the administrative surface of the IdP that the services
// consume. Satisfied by *keycloak.AdminClient; narrowed here so tests can
// substitute a fake without a live Keycloak.
type IdentityAdmin interface {
	CreateUser(ctx context.Context, realm string, user *keycloak.UserRepresentation) error
	FindUserByUsername(ctx context.Context, realm, username string) (*keycloak.UserRepresentation, error)
	FindUserByEmail(ctx context.Context, realm, email string) (*keycloak.UserRepresentation, error)
	DeleteUser(ctx context.Context, realm, userID string) error
	ListUsers(ctx context.Context, realm string) ([]keycloak.UserRepresentation, error)
	GetRealmRole(ctx context.Context, realm, roleName string) (*keycloak.RoleRepresentation, error)
	AssignRealmRoles(ctx context.Context, realm, userID string, roles []keycloak.RoleRepresentation) error
	GetEffectiveRealmRoles(ctx context.Context, realm, userID string) ([]keycloak.RoleRepresentation, error)
	GetClientByClientID(ctx context.Context, realm, clientID string) (*keycloak.ClientRepresentation, error)
	GetClientRole(ctx context.Context, realm, clientUUID, roleName string) (*keycloak.RoleRepresentation, error)
	AssignClientRoles(ctx context.Context, realm, userID, clientUUID string, roles []keycloak.RoleRepresentation) error
	ExecuteActionsEmail(ctx context.Context, realm, userID string, actions []string) error
}

// RoleResolver is the slice of RoleService the token gateway and the
// provisioning orchestrator depend on.
type RoleResolver interface {
	EffectiveRealmRoles(ctx context.Context, principalID string) ([]string, error)
	AssignRealmRole(ctx context.Context, principalID, roleName string) error
}

// EmailVerificationGate refines a 401 from the token endpoint into either
// bad credentials or an unverified email.
type EmailVerificationGate interface {
	IsEmailVerified(ctx context.Context, identifier string) (bool, error)
}
