package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Vitorass0/sgu-auth-server/internal/keycloak"
	"github.com/Vitorass0/sgu-auth-server/pkg/cache"
)

type HealthHandler struct {
	db      *gorm.DB
	cache   cache.Cache
	admin   *keycloak.AdminClient
	version string
	logger  *zap.Logger
}

func NewHealthHandler(db *gorm.DB, c cache.Cache, admin *keycloak.AdminClient, version string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:      db,
		cache:   c,
		admin:   admin,
		version: version,
		logger:  logger,
	}
}

// @Summary Health check
// @Description Report the health of the service and its dependencies
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	checks := gin.H{}
	healthy := true

	if h.db != nil {
		if err := h.checkDatabase(); err != nil {
			checks["database"] = "unhealthy"
			healthy = false
		} else {
			checks["database"] = "healthy"
		}
	}

	if h.cache != nil {
		if err := h.cache.Ping(c.Request.Context()); err != nil {
			checks["cache"] = "unhealthy"
			healthy = false
		} else {
			checks["cache"] = "healthy"
		}
	}

	if err := h.checkIdP(c); err != nil {
		checks["identity_provider"] = "unhealthy"
		healthy = false
	} else {
		checks["identity_provider"] = "healthy"
	}

	status := http.StatusOK
	state := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":  state,
		"version": h.version,
		"checks":  checks,
	})
}

func (h *HealthHandler) checkDatabase() error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// checkIdP probes the realm discovery document rather than authenticating,
// so health polling does not consume admin sessions.
func (h *HealthHandler) checkIdP(c *gin.Context) error {
	wellKnownURL := h.admin.BaseURL() + "/realms/master/.well-known/openid-configuration"

	req, err := http.NewRequestWithContext(c.Request.Context(), "GET", wellKnownURL, nil)
	if err != nil {
		return err
	}

	resp, err := h.admin.HTTPClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("discovery endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// @Summary Version
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /version [get]
func (h *HealthHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": h.version})
}
