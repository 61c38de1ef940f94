package services

import (
	"context"

	"github.com/Vitorass0/sgu-auth-server/internal/keycloak"
)

// fakeAdmin implements IdentityAdmin with overridable function fields and
// records the mutating calls so tests can assert on workflow order.
type fakeAdmin struct {
	createUserFn          func(ctx context.Context, realm string, user *keycloak.UserRepresentation) error
	findUserByUsernameFn  func(ctx context.Context, realm, username string) (*keycloak.UserRepresentation, error)
	findUserByEmailFn     func(ctx context.Context, realm, email string) (*keycloak.UserRepresentation, error)
	deleteUserFn          func(ctx context.Context, realm, userID string) error
	listUsersFn           func(ctx context.Context, realm string) ([]keycloak.UserRepresentation, error)
	getRealmRoleFn        func(ctx context.Context, realm, roleName string) (*keycloak.RoleRepresentation, error)
	assignRealmRolesFn    func(ctx context.Context, realm, userID string, roles []keycloak.RoleRepresentation) error
	effectiveRealmRolesFn func(ctx context.Context, realm, userID string) ([]keycloak.RoleRepresentation, error)
	getClientFn           func(ctx context.Context, realm, clientID string) (*keycloak.ClientRepresentation, error)
	getClientRoleFn       func(ctx context.Context, realm, clientUUID, roleName string) (*keycloak.RoleRepresentation, error)
	assignClientRolesFn   func(ctx context.Context, realm, userID, clientUUID string, roles []keycloak.RoleRepresentation) error
	executeActionsFn      func(ctx context.Context, realm, userID string, actions []string) error

	deletedUsers []string
	emailActions [][]string
	calls        []string
}

func (f *fakeAdmin) CreateUser(ctx context.Context, realm string, user *keycloak.UserRepresentation) error {
	f.calls = append(f.calls, "CreateUser")
	if f.createUserFn != nil {
		return f.createUserFn(ctx, realm, user)
	}
	return nil
}

func (f *fakeAdmin) FindUserByUsername(ctx context.Context, realm, username string) (*keycloak.UserRepresentation, error) {
	f.calls = append(f.calls, "FindUserByUsername")
	if f.findUserByUsernameFn != nil {
		return f.findUserByUsernameFn(ctx, realm, username)
	}
	return &keycloak.UserRepresentation{ID: "user-1", Username: username, Email: username, EmailVerified: true}, nil
}

func (f *fakeAdmin) FindUserByEmail(ctx context.Context, realm, email string) (*keycloak.UserRepresentation, error) {
	f.calls = append(f.calls, "FindUserByEmail")
	if f.findUserByEmailFn != nil {
		return f.findUserByEmailFn(ctx, realm, email)
	}
	return &keycloak.UserRepresentation{ID: "user-1", Username: email, Email: email}, nil
}

func (f *fakeAdmin) DeleteUser(ctx context.Context, realm, userID string) error {
	f.calls = append(f.calls, "DeleteUser")
	f.deletedUsers = append(f.deletedUsers, userID)
	if f.deleteUserFn != nil {
		return f.deleteUserFn(ctx, realm, userID)
	}
	return nil
}

func (f *fakeAdmin) ListUsers(ctx context.Context, realm string) ([]keycloak.UserRepresentation, error) {
	f.calls = append(f.calls, "ListUsers")
	if f.listUsersFn != nil {
		return f.listUsersFn(ctx, realm)
	}
	return nil, nil
}

func (f *fakeAdmin) GetRealmRole(ctx context.Context, realm, roleName string) (*keycloak.RoleRepresentation, error) {
	f.calls = append(f.calls, "GetRealmRole")
	if f.getRealmRoleFn != nil {
		return f.getRealmRoleFn(ctx, realm, roleName)
	}
	return &keycloak.RoleRepresentation{ID: "role-1", Name: roleName}, nil
}

func (f *fakeAdmin) AssignRealmRoles(ctx context.Context, realm, userID string, roles []keycloak.RoleRepresentation) error {
	f.calls = append(f.calls, "AssignRealmRoles")
	if f.assignRealmRolesFn != nil {
		return f.assignRealmRolesFn(ctx, realm, userID, roles)
	}
	return nil
}

func (f *fakeAdmin) GetEffectiveRealmRoles(ctx context.Context, realm, userID string) ([]keycloak.RoleRepresentation, error) {
	f.calls = append(f.calls, "GetEffectiveRealmRoles")
	if f.effectiveRealmRolesFn != nil {
		return f.effectiveRealmRolesFn(ctx, realm, userID)
	}
	return []keycloak.RoleRepresentation{{Name: "student"}}, nil
}

func (f *fakeAdmin) GetClientByClientID(ctx context.Context, realm, clientID string) (*keycloak.ClientRepresentation, error) {
	f.calls = append(f.calls, "GetClientByClientID")
	if f.getClientFn != nil {
		return f.getClientFn(ctx, realm, clientID)
	}
	return &keycloak.ClientRepresentation{ID: "client-uuid-1", ClientID: clientID}, nil
}

func (f *fakeAdmin) GetClientRole(ctx context.Context, realm, clientUUID, roleName string) (*keycloak.RoleRepresentation, error) {
	f.calls = append(f.calls, "GetClientRole")
	if f.getClientRoleFn != nil {
		return f.getClientRoleFn(ctx, realm, clientUUID, roleName)
	}
	return &keycloak.RoleRepresentation{ID: "role-2", Name: roleName, ClientRole: true}, nil
}

func (f *fakeAdmin) AssignClientRoles(ctx context.Context, realm, userID, clientUUID string, roles []keycloak.RoleRepresentation) error {
	f.calls = append(f.calls, "AssignClientRoles")
	if f.assignClientRolesFn != nil {
		return f.assignClientRolesFn(ctx, realm, userID, clientUUID, roles)
	}
	return nil
}

func (f *fakeAdmin) ExecuteActionsEmail(ctx context.Context, realm, userID string, actions []string) error {
	f.calls = append(f.calls, "ExecuteActionsEmail")
	f.emailActions = append(f.emailActions, actions)
	if f.executeActionsFn != nil {
		return f.executeActionsFn(ctx, realm, userID, actions)
	}
	return nil
}
