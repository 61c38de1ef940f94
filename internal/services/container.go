package services

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Vitorass0/sgu-auth-server/internal/config"
	"github.com/Vitorass0/sgu-auth-server/internal/keycloak"
	"github.com/Vitorass0/sgu-auth-server/pkg/cache"
)

// Container wires the service graph once at startup and hands it to the
// handlers. All services share the single admin client session.
type Container struct {
	Tokens       *TokenService
	Roles        *RoleService
	Verification *VerificationService
	Provisioning *ProvisioningService
	Accounts     *AccountService
	OrgUnits     *OrgUnitService
}

func NewContainer(db *gorm.DB, c cache.Cache, admin *keycloak.AdminClient, cfg *config.Config, logger *zap.Logger) *Container {
	roles := NewRoleService(admin, cfg.Keycloak.Realm, logger)
	verification := NewVerificationService(admin, cfg.Keycloak.Realm, logger)

	var accounts *AccountService
	if db != nil {
		accounts = NewAccountService(db, c, logger)
	}

	var accountSink accountStore
	if accounts != nil {
		accountSink = accounts
	}

	provisioning := NewProvisioningService(admin, roles, accountSink, verification, cfg.Keycloak.Realm, logger)
	tokens := NewTokenService(cfg.Keycloak, admin.HTTPClient(), admin, roles, verification, logger)

	container := &Container{
		Tokens:       tokens,
		Roles:        roles,
		Verification: verification,
		Provisioning: provisioning,
		Accounts:     accounts,
	}

	if db != nil {
		container.OrgUnits = NewOrgUnitService(db, logger)
	}

	return container
}
