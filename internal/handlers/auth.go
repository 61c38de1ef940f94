package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Vitorass0/sgu-auth-server/internal/constants"
	"github.com/Vitorass0/sgu-auth-server/internal/models"
	"github.com/Vitorass0/sgu-auth-server/internal/utils"
)

type TokenServiceInterface interface {
	Login(ctx context.Context, identifier, password string) (*models.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
}

type AuthHandler struct {
	tokens TokenServiceInterface
	logger *zap.Logger
}

func NewAuthHandler(tokens TokenServiceInterface, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		tokens: tokens,
		logger: logger,
	}
}

// @Summary Log in
// @Description Exchange email and password for a token pair
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} utils.SuccessResponse{data=models.TokenResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request body", err.Error())
		return
	}

	token, err := h.tokens.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondWithIdPError(c, err)
		return
	}

	utils.RespondWithSuccess(c, http.StatusOK, token)
}

// @Summary Refresh session
// @Description Exchange a refresh token for a new token pair
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body models.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} utils.SuccessResponse{data=models.TokenResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request body", err.Error())
		return
	}

	token, err := h.tokens.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondWithIdPError(c, err)
		return
	}

	utils.RespondWithSuccess(c, http.StatusOK, token)
}

// @Summary Log out
// @Description Revoke the session at the identity provider
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body models.LogoutRequest true "Refresh token"
// @Success 204
// @Failure 400 {object} utils.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req models.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request body", err.Error())
		return
	}

	accessToken := strings.TrimPrefix(c.GetHeader("Authorization"), constants.BearerTokenPrefix)

	if err := h.tokens.Logout(c.Request.Context(), accessToken, req.RefreshToken); err != nil {
		respondWithIdPError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
