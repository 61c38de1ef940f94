package routing

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/Vitorass0/sgu-auth-server/internal/constants"
	"github.com/Vitorass0/sgu-auth-server/internal/handlers"
	"github.com/Vitorass0/sgu-auth-server/internal/middleware"
)

// Router owns the route table. Credential endpoints are public behind the
// authentication rate limit; administrative endpoints require a verified
// bearer token with an operator role.
type Router struct {
	verifier middleware.TokenVerifier
	logger   *zap.Logger
}

func New(verifier middleware.TokenVerifier, logger *zap.Logger) *Router {
	return &Router{
		verifier: verifier,
		logger:   logger,
	}
}

func (r *Router) Setup(engine *gin.Engine, h *handlers.Container) {
	engine.GET(constants.PathHealth, h.Health.Health)
	engine.GET(constants.PathVersion, h.Health.Version)
	engine.GET(constants.PathSwagger+"*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := engine.Group(constants.APIBasePath)

	authGroup := api.Group(constants.PathAuth)
	authGroup.Use(middleware.AuthenticationRateLimit(r.logger))
	{
		authGroup.POST(constants.PathAuthLogin, h.Auth.Login)
		authGroup.POST(constants.PathAuthRefresh, h.Auth.Refresh)
		authGroup.POST(constants.PathAuthLogout, h.Auth.Logout)
	}

	// Self-service; rate limited like the credential endpoints since it
	// takes an email address from an unauthenticated caller.
	api.POST(constants.PathUsersResetPassword,
		middleware.AuthenticationRateLimit(r.logger), h.Users.ResetPassword)

	operators := middleware.RequireRole(constants.RoleAdministrator, constants.RoleTechnician)

	usersGroup := api.Group(constants.PathUsers)
	usersGroup.Use(middleware.StandardAPIRateLimit(r.logger))
	usersGroup.Use(middleware.AuthRequired(r.verifier, r.logger))
	usersGroup.Use(operators)
	{
		usersGroup.POST("", h.Users.CreateUser)
		usersGroup.GET("/unverified", h.Users.ListUnverified)
		usersGroup.DELETE("/:id", h.Users.DeleteUser)
		usersGroup.POST("/:id/roles", h.Users.AddRole)
		usersGroup.POST("/:id/client-roles", h.Users.AddClientRole)
	}

	if h.OrgUnits != nil {
		orgGroup := api.Group(constants.PathOrgUnits)
		orgGroup.Use(middleware.StandardAPIRateLimit(r.logger))
		orgGroup.Use(middleware.AuthRequired(r.verifier, r.logger))
		{
			orgGroup.GET("", h.OrgUnits.List)
			orgGroup.GET("/:id", h.OrgUnits.Get)
			orgGroup.POST("", operators, h.OrgUnits.Create)
			orgGroup.PUT("/:id", operators, h.OrgUnits.Update)
			orgGroup.DELETE("/:id", operators, h.OrgUnits.Delete)
		}
	}

	r.logger.Info("Routes configured", zap.String("api_version", constants.APIVersion))
}
