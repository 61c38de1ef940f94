package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Vitorass0/sgu-auth-server/internal/models"
	"github.com/Vitorass0/sgu-auth-server/internal/services"
	"github.com/Vitorass0/sgu-auth-server/internal/utils"
)

type OrgUnitHandler struct {
	orgUnits *services.OrgUnitService
	logger   *zap.Logger
}

func NewOrgUnitHandler(orgUnits *services.OrgUnitService, logger *zap.Logger) *OrgUnitHandler {
	return &OrgUnitHandler{
		orgUnits: orgUnits,
		logger:   logger,
	}
}

func respondWithOrgUnitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrOrgUnitNotFound):
		utils.RespondWithError(c, http.StatusNotFound, utils.ErrCodeNotFound, err.Error(), nil)
	case errors.Is(err, services.ErrOrgUnitHasChilds), errors.Is(err, services.ErrOrgUnitCycle):
		utils.RespondWithError(c, http.StatusConflict, utils.ErrCodeConflict, err.Error(), nil)
	default:
		utils.RespondWithError(c, http.StatusInternalServerError, utils.ErrCodeInternalError,
			"An unexpected error occurred", nil)
	}
}

// @Summary Create organizational unit
// @Tags org-units
// @Accept json
// @Produce json
// @Param request body models.CreateOrgUnitRequest true "New unit"
// @Success 201 {object} utils.SuccessResponse{data=models.OrgUnit}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /org-units [post]
func (h *OrgUnitHandler) Create(c *gin.Context) {
	var req models.CreateOrgUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request body", err.Error())
		return
	}

	unit, err := h.orgUnits.Create(c.Request.Context(), &req)
	if err != nil {
		respondWithOrgUnitError(c, err)
		return
	}

	utils.RespondWithSuccess(c, http.StatusCreated, unit)
}

// @Summary List organizational units
// @Tags org-units
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]models.OrgUnit}
// @Router /org-units [get]
func (h *OrgUnitHandler) List(c *gin.Context) {
	units, err := h.orgUnits.List(c.Request.Context())
	if err != nil {
		respondWithOrgUnitError(c, err)
		return
	}

	utils.RespondWithSuccess(c, http.StatusOK, units)
}

// @Summary Get organizational unit
// @Tags org-units
// @Produce json
// @Param id path string true "Unit id"
// @Success 200 {object} utils.SuccessResponse{data=models.OrgUnit}
// @Failure 404 {object} utils.ErrorResponse
// @Router /org-units/{id} [get]
func (h *OrgUnitHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid unit id", nil)
		return
	}

	unit, err := h.orgUnits.GetByID(c.Request.Context(), id)
	if err != nil {
		respondWithOrgUnitError(c, err)
		return
	}

	utils.RespondWithSuccess(c, http.StatusOK, unit)
}

// @Summary Update organizational unit
// @Tags org-units
// @Accept json
// @Produce json
// @Param id path string true "Unit id"
// @Param request body models.UpdateOrgUnitRequest true "Changes"
// @Success 200 {object} utils.SuccessResponse{data=models.OrgUnit}
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /org-units/{id} [put]
func (h *OrgUnitHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid unit id", nil)
		return
	}

	var req models.UpdateOrgUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request body", err.Error())
		return
	}

	unit, err := h.orgUnits.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondWithOrgUnitError(c, err)
		return
	}

	utils.RespondWithSuccess(c, http.StatusOK, unit)
}

// @Summary Delete organizational unit
// @Tags org-units
// @Produce json
// @Param id path string true "Unit id"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /org-units/{id} [delete]
func (h *OrgUnitHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid unit id", nil)
		return
	}

	if err := h.orgUnits.Delete(c.Request.Context(), id); err != nil {
		respondWithOrgUnitError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
