package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Vitorass0/sgu-auth-server/internal/keycloak"
	"github.com/Vitorass0/sgu-auth-server/internal/models"
)

func newProvisioningService(t *testing.T, admin *fakeAdmin) *ProvisioningService {
	logger := zaptest.NewLogger(t)
	roles := NewRoleService(admin, "sgu", logger)
	verification := NewVerificationService(admin, "sgu", logger)
	return NewProvisioningService(admin, roles, nil, verification, "sgu", logger)
}

func TestCreateUserSuccess(t *testing.T) {
	admin := &fakeAdmin{}
	svc := newProvisioningService(t, admin)

	id, err := svc.CreateUser(context.Background(), &models.CreateUserRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
		Role:     "student",
	})

	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
	assert.Equal(t, []string{"CreateUser", "FindUserByUsername", "GetRealmRole", "AssignRealmRoles", "ExecuteActionsEmail"}, admin.calls)
	require.Len(t, admin.emailActions, 1)
	assert.Equal(t, []string{"VERIFY_EMAIL"}, admin.emailActions[0])
	assert.Empty(t, admin.deletedUsers)
}

func TestCreateUserDuplicateNoRollback(t *testing.T) {
	admin := &fakeAdmin{
		createUserFn: func(ctx context.Context, realm string, user *keycloak.UserRepresentation) error {
			return keycloak.NewError(keycloak.KindDuplicateIdentifier, "an account with this identifier already exists", nil)
		},
	}
	svc := newProvisioningService(t, admin)

	id, err := svc.CreateUser(context.Background(), &models.CreateUserRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
		Role:     "student",
	})

	assert.Empty(t, id)
	assert.True(t, keycloak.IsKind(err, keycloak.KindDuplicateIdentifier))
	assert.Empty(t, admin.deletedUsers, "no principal was allocated, nothing to roll back")
}

func TestCreateUserUnknownRoleRollsBack(t *testing.T) {
	admin := &fakeAdmin{
		getRealmRoleFn: func(ctx context.Context, realm, roleName string) (*keycloak.RoleRepresentation, error) {
			return nil, keycloak.NewError(keycloak.KindRoleNotFound, "role ghost not found", nil)
		},
	}
	svc := newProvisioningService(t, admin)

	id, err := svc.CreateUser(context.Background(), &models.CreateUserRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
		Role:     "ghost",
	})

	assert.Empty(t, id)
	assert.True(t, keycloak.IsKind(err, keycloak.KindRoleNotFound))
	assert.Equal(t, []string{"user-1"}, admin.deletedUsers, "partially provisioned principal must be removed")
	assert.Empty(t, admin.emailActions, "verification email must not be sent after a failed step")
}

func TestCreateUserEmailFailureRollsBack(t *testing.T) {
	admin := &fakeAdmin{
		executeActionsFn: func(ctx context.Context, realm, userID string, actions []string) error {
			return errors.New("smtp relay rejected the message")
		},
	}
	svc := newProvisioningService(t, admin)

	id, err := svc.CreateUser(context.Background(), &models.CreateUserRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
		Role:     "student",
	})

	assert.Empty(t, id)
	assert.True(t, keycloak.IsKind(err, keycloak.KindProvisioningFailed))
	assert.Equal(t, []string{"user-1"}, admin.deletedUsers)
}

func TestCreateUserRollbackFailureKeepsOriginalError(t *testing.T) {
	admin := &fakeAdmin{
		getRealmRoleFn: func(ctx context.Context, realm, roleName string) (*keycloak.RoleRepresentation, error) {
			return nil, keycloak.NewError(keycloak.KindRoleNotFound, "role ghost not found", nil)
		},
		deleteUserFn: func(ctx context.Context, realm, userID string) error {
			return errors.New("delete failed")
		},
	}
	svc := newProvisioningService(t, admin)

	_, err := svc.CreateUser(context.Background(), &models.CreateUserRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
		Role:     "ghost",
	})

	assert.True(t, keycloak.IsKind(err, keycloak.KindRoleNotFound),
		"the step error is reported even when the rollback itself fails")
}

func TestCreateUserRollbackSurvivesCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var rollbackCtxErr error
	admin := &fakeAdmin{
		executeActionsFn: func(ctx context.Context, realm, userID string, actions []string) error {
			cancel()
			return ctx.Err()
		},
		deleteUserFn: func(ctx context.Context, realm, userID string) error {
			rollbackCtxErr = ctx.Err()
			return nil
		},
	}
	svc := newProvisioningService(t, admin)

	_, err := svc.CreateUser(ctx, &models.CreateUserRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
		Role:     "student",
	})

	require.Error(t, err)
	assert.Equal(t, []string{"user-1"}, admin.deletedUsers)
	assert.NoError(t, rollbackCtxErr, "rollback must run on a live context after the caller gave up")
}

func TestResetPasswordUnknownEmailSendsNothing(t *testing.T) {
	admin := &fakeAdmin{
		findUserByEmailFn: func(ctx context.Context, realm, email string) (*keycloak.UserRepresentation, error) {
			return nil, keycloak.NewError(keycloak.KindUserNotFound, "user not found", nil)
		},
	}
	svc := newProvisioningService(t, admin)

	err := svc.ResetPassword(context.Background(), "nobody@example.com")

	assert.True(t, keycloak.IsKind(err, keycloak.KindUserNotFound))
	assert.Empty(t, admin.emailActions)
}

func TestResetPasswordTriggersUpdatePasswordAction(t *testing.T) {
	admin := &fakeAdmin{}
	svc := newProvisioningService(t, admin)

	err := svc.ResetPassword(context.Background(), "alice@example.com")

	require.NoError(t, err)
	require.Len(t, admin.emailActions, 1)
	assert.Equal(t, []string{"UPDATE_PASSWORD"}, admin.emailActions[0])
}

func TestAddClientRoleResolvesClientFirst(t *testing.T) {
	admin := &fakeAdmin{}
	svc := newProvisioningService(t, admin)

	err := svc.AddClientRoleToUser(context.Background(), "user-1", "frontend", "viewer")

	require.NoError(t, err)
	assert.Equal(t, []string{"GetClientByClientID", "GetClientRole", "AssignClientRoles"}, admin.calls)
}

func TestAddClientRoleUnknownClient(t *testing.T) {
	admin := &fakeAdmin{
		getClientFn: func(ctx context.Context, realm, clientID string) (*keycloak.ClientRepresentation, error) {
			return nil, keycloak.NewError(keycloak.KindClientNotFound, "client ghost not found", nil)
		},
	}
	svc := newProvisioningService(t, admin)

	err := svc.AddClientRoleToUser(context.Background(), "user-1", "ghost", "viewer")

	assert.True(t, keycloak.IsKind(err, keycloak.KindClientNotFound))
}

func TestListUnverifiedUsers(t *testing.T) {
	admin := &fakeAdmin{
		listUsersFn: func(ctx context.Context, realm string) ([]keycloak.UserRepresentation, error) {
			return []keycloak.UserRepresentation{
				{ID: "1", Username: "alice", Email: "alice@example.com", EmailVerified: true, Enabled: true},
				{ID: "2", Username: "bob", Email: "bob@example.com", EmailVerified: false, Enabled: true},
				{ID: "3", Username: "carol", Email: "carol@example.com", EmailVerified: false, Enabled: false},
			}, nil
		},
	}
	svc := newProvisioningService(t, admin)

	users, err := svc.ListUnverifiedUsers(context.Background())

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob", users[0].Username)
	assert.Equal(t, "carol", users[1].Username)
}
