package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Vitorass0/sgu-auth-server/internal/keycloak"
	"github.com/Vitorass0/sgu-auth-server/internal/utils"
)

// respondWithIdPError maps a classified IdP error onto the HTTP surface.
// Messages come from the classified error itself; wrapped causes never
// reach the client.
func respondWithIdPError(c *gin.Context, err error) {
	message := "An unexpected error occurred"
	var kcErr *keycloak.Error
	if errors.As(err, &kcErr) {
		message = kcErr.Message
	}

	switch keycloak.KindOf(err) {
	case keycloak.KindInvalidCredentials:
		utils.RespondWithError(c, http.StatusUnauthorized, utils.ErrCodeInvalidCredentials, message, nil)
	case keycloak.KindEmailNotVerified:
		utils.RespondWithError(c, http.StatusUnauthorized, utils.ErrCodeEmailNotVerified, message, nil)
	case keycloak.KindRefreshFailed:
		utils.RespondWithError(c, http.StatusUnauthorized, utils.ErrCodeRefreshFailed, message, nil)
	case keycloak.KindLogoutFailed:
		utils.RespondWithError(c, http.StatusBadRequest, utils.ErrCodeLogoutFailed, message, nil)
	case keycloak.KindInvalidInput:
		utils.RespondWithError(c, http.StatusBadRequest, utils.ErrCodeBadRequest, message, nil)
	case keycloak.KindDuplicateIdentifier:
		utils.RespondWithError(c, http.StatusConflict, utils.ErrCodeDuplicateAccount, message, nil)
	case keycloak.KindUserNotFound, keycloak.KindRoleNotFound, keycloak.KindClientNotFound:
		utils.RespondWithError(c, http.StatusNotFound, utils.ErrCodeNotFound, message, nil)
	case keycloak.KindIdPUnavailable:
		utils.RespondWithError(c, http.StatusServiceUnavailable, utils.ErrCodeIdPUnavailable, message, nil)
	case keycloak.KindAuthenticationFailed:
		utils.RespondWithError(c, http.StatusBadGateway, utils.ErrCodeAuthFailed, message, nil)
	case keycloak.KindProvisioningFailed:
		utils.RespondWithError(c, http.StatusBadGateway, utils.ErrCodeProvisioningFailed, message, nil)
	default:
		utils.RespondWithError(c, http.StatusInternalServerError, utils.ErrCodeInternalError, message, nil)
	}
}
