package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Vitorass0/sgu-auth-server/internal/models"
)

var (
	ErrOrgUnitNotFound  = errors.New("organizational unit not found")
	ErrOrgUnitHasChilds = errors.New("organizational unit has child units")
	ErrOrgUnitCycle     = errors.New("organizational unit cannot be its own ancestor")
)

// OrgUnitService manages the organizational-unit tree that accounts are
// grouped under. Parent references are validated before every write so the
// tree stays acyclic.
type OrgUnitService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewOrgUnitService(db *gorm.DB, logger *zap.Logger) *OrgUnitService {
	return &OrgUnitService{db: db, logger: logger}
}

func (s *OrgUnitService) Create(ctx context.Context, req *models.CreateOrgUnitRequest) (*models.OrgUnit, error) {
	if req.ParentID != nil {
		if _, err := s.GetByID(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}

	unit := &models.OrgUnit{
		Name:     req.Name,
		Code:     req.Code,
		ParentID: req.ParentID,
	}

	if err := s.db.WithContext(ctx).Create(unit).Error; err != nil {
		return nil, fmt.Errorf("failed to create org unit: %w", err)
	}

	s.logger.Info("Created org unit",
		zap.String("id", unit.ID.String()),
		zap.String("code", unit.Code))

	return unit, nil
}

func (s *OrgUnitService) GetByID(ctx context.Context, id uuid.UUID) (*models.OrgUnit, error) {
	var unit models.OrgUnit
	err := s.db.WithContext(ctx).Preload("Children").First(&unit, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrgUnitNotFound
		}
		return nil, fmt.Errorf("failed to load org unit: %w", err)
	}

	return &unit, nil
}

func (s *OrgUnitService) List(ctx context.Context) ([]models.OrgUnit, error) {
	var units []models.OrgUnit
	if err := s.db.WithContext(ctx).Order("code").Find(&units).Error; err != nil {
		return nil, fmt.Errorf("failed to list org units: %w", err)
	}

	return units, nil
}

func (s *OrgUnitService) Update(ctx context.Context, id uuid.UUID, req *models.UpdateOrgUnitRequest) (*models.OrgUnit, error) {
	unit, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		if err := s.checkNoCycle(ctx, id, *req.ParentID); err != nil {
			return nil, err
		}
		unit.ParentID = req.ParentID
	}
	if req.Name != nil {
		unit.Name = *req.Name
	}

	if err := s.db.WithContext(ctx).Save(unit).Error; err != nil {
		return nil, fmt.Errorf("failed to update org unit: %w", err)
	}

	return unit, nil
}

// checkNoCycle walks up from the proposed parent and rejects the update if
// the unit being moved appears among its ancestors.
func (s *OrgUnitService) checkNoCycle(ctx context.Context, id, parentID uuid.UUID) error {
	if parentID == id {
		return ErrOrgUnitCycle
	}

	current := parentID
	for {
		var unit models.OrgUnit
		err := s.db.WithContext(ctx).Select("id", "parent_id").First(&unit, "id = ?", current).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrgUnitNotFound
			}
			return fmt.Errorf("failed to walk org unit ancestry: %w", err)
		}

		if unit.ParentID == nil {
			return nil
		}
		if *unit.ParentID == id {
			return ErrOrgUnitCycle
		}
		current = *unit.ParentID
	}
}

func (s *OrgUnitService) Delete(ctx context.Context, id uuid.UUID) error {
	var childCount int64
	if err := s.db.WithContext(ctx).Model(&models.OrgUnit{}).Where("parent_id = ?", id).Count(&childCount).Error; err != nil {
		return fmt.Errorf("failed to count child units: %w", err)
	}
	if childCount > 0 {
		return ErrOrgUnitHasChilds
	}

	result := s.db.WithContext(ctx).Delete(&models.OrgUnit{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete org unit: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrOrgUnitNotFound
	}

	return nil
}
