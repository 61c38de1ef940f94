package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Vitorass0/sgu-auth-server/internal/models"
	"github.com/Vitorass0/sgu-auth-server/internal/utils"
)

type ProvisioningServiceInterface interface {
	CreateUser(ctx context.Context, req *models.CreateUserRequest) (string, error)
	DeleteUser(ctx context.Context, principalID string) error
	ResetPassword(ctx context.Context, email string) error
	AddRoleToUser(ctx context.Context, principalID, roleName string) error
	AddClientRoleToUser(ctx context.Context, principalID, clientID, roleName string) error
	ListUnverifiedUsers(ctx context.Context) ([]models.UnverifiedUser, error)
}

type UserHandler struct {
	provisioning ProvisioningServiceInterface
	logger       *zap.Logger
}

func NewUserHandler(provisioning ProvisioningServiceInterface, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		provisioning: provisioning,
		logger:       logger,
	}
}

// @Summary Create user
// @Description Provision a new account at the identity provider
// @Tags users
// @Accept json
// @Produce json
// @Param request body models.CreateUserRequest true "New account"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request body", err.Error())
		return
	}

	principalID, err := h.provisioning.CreateUser(c.Request.Context(), &req)
	if err != nil {
		respondWithIdPError(c, err)
		return
	}

	utils.RespondWithSuccess(c, http.StatusCreated, gin.H{"id": principalID})
}

// @Summary Delete user
// @Description Remove an account from the identity provider
// @Tags users
// @Produce json
// @Param id path string true "Principal id"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	principalID := c.Param("id")
	if principalID == "" {
		utils.RespondWithError(c, http.StatusBadRequest, utils.ErrCodeBadRequest, "Principal id is required", nil)
		return
	}

	if err := h.provisioning.DeleteUser(c.Request.Context(), principalID); err != nil {
		respondWithIdPError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Reset password
// @Description Trigger a password reset email for the account owning the address
// @Tags users
// @Accept json
// @Produce json
// @Param request body models.ResetPasswordRequest true "Account email"
// @Success 202 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /users/reset-password [post]
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request body", err.Error())
		return
	}

	if err := h.provisioning.ResetPassword(c.Request.Context(), req.Email); err != nil {
		respondWithIdPError(c, err)
		return
	}

	utils.RespondWithSuccess(c, http.StatusAccepted, gin.H{"message": "Password reset email sent"})
}

// @Summary Grant realm role
// @Description Grant a realm role to an account
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "Principal id"
// @Param request body models.AddRoleRequest true "Role name"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Router /users/{id}/roles [post]
func (h *UserHandler) AddRole(c *gin.Context) {
	principalID := c.Param("id")

	var req models.AddRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request body", err.Error())
		return
	}

	if err := h.provisioning.AddRoleToUser(c.Request.Context(), principalID, req.Role); err != nil {
		respondWithIdPError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Grant client role
// @Description Grant a client-scoped role to an account
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "Principal id"
// @Param request body models.AddClientRoleRequest true "Client and role"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Router /users/{id}/client-roles [post]
func (h *UserHandler) AddClientRole(c *gin.Context) {
	principalID := c.Param("id")

	var req models.AddClientRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request body", err.Error())
		return
	}

	if err := h.provisioning.AddClientRoleToUser(c.Request.Context(), principalID, req.ClientID, req.Role); err != nil {
		respondWithIdPError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary List unverified users
// @Description List accounts whose email has not been verified
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]models.UnverifiedUser}
// @Failure 503 {object} utils.ErrorResponse
// @Router /users/unverified [get]
func (h *UserHandler) ListUnverified(c *gin.Context) {
	users, err := h.provisioning.ListUnverifiedUsers(c.Request.Context())
	if err != nil {
		respondWithIdPError(c, err)
		return
	}

	utils.RespondWithSuccess(c, http.StatusOK, users)
}
