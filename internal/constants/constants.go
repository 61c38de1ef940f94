package constants

import "time"

const (
	BearerTokenPrefix = "Bearer "
	TokenExpiryBuffer = 60 * time.Second

	DefaultTimeout    = 30 * time.Second
	HTTPClientTimeout = 30 * time.Second
	ShutdownTimeout   = 30 * time.Second

	MinPasswordLength = 8
	MaxPasswordLength = 128

	MaxRequestSize = 1 << 20

	DefaultCacheTTL = 5 * time.Minute

	GrantTypePassword     = "password"
	GrantTypeRefreshToken = "refresh_token"

	EmailActionVerifyEmail    = "VERIFY_EMAIL"
	EmailActionUpdatePassword = "UPDATE_PASSWORD"

	RoleAdministrator = "administrator"
	RoleTechnician    = "technician"
	RoleStudent       = "student"
	RoleProfessor     = "professor"

	APIVersion  = "v1"
	APIBasePath = "/api/" + APIVersion

	PathHealth      = "/health"
	PathVersion     = "/version"
	PathSwagger     = "/swagger/"
	PathAuth        = "/auth"
	PathAuthLogin   = "/login"
	PathAuthRefresh = "/refresh"
	PathAuthLogout  = "/logout"

	PathUsers              = "/users"
	PathUsersID            = "/users/:id"
	PathUsersRoles         = "/users/:id/roles"
	PathUsersClientRoles   = "/users/:id/client-roles"
	PathUsersUnverified    = "/users/unverified"
	PathUsersResetPassword = "/users/reset-password"

	PathOrgUnits   = "/org-units"
	PathOrgUnitsID = "/org-units/:id"
)
