package handlers

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Vitorass0/sgu-auth-server/internal/keycloak"
	"github.com/Vitorass0/sgu-auth-server/internal/services"
	"github.com/Vitorass0/sgu-auth-server/pkg/cache"
)

type Container struct {
	Auth     *AuthHandler
	Users    *UserHandler
	OrgUnits *OrgUnitHandler
	Health   *HealthHandler
}

func NewContainer(svcs *services.Container, db *gorm.DB, c cache.Cache, admin *keycloak.AdminClient, version string, logger *zap.Logger) *Container {
	container := &Container{
		Auth:   NewAuthHandler(svcs.Tokens, logger),
		Users:  NewUserHandler(svcs.Provisioning, logger),
		Health: NewHealthHandler(db, c, admin, version, logger),
	}

	if svcs.OrgUnits != nil {
		container.OrgUnits = NewOrgUnitHandler(svcs.OrgUnits, logger)
	}

	return container
}
