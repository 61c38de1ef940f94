package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Vitorass0/sgu-auth-server/internal/constants"
	"github.com/Vitorass0/sgu-auth-server/internal/models"
	"github.com/Vitorass0/sgu-auth-server/pkg/cache"
)

var ErrAccountNotFound = errors.New("account not found")

// AccountService persists the application-local mirror of provisioned
// principals. Reads go through the cache when one is configured; writes
// invalidate it.
type AccountService struct {
	db     *gorm.DB
	cache  cache.Cache
	logger *zap.Logger
}

func NewAccountService(db *gorm.DB, c cache.Cache, logger *zap.Logger) *AccountService {
	return &AccountService{
		db:     db,
		cache:  c,
		logger: logger,
	}
}

func accountCacheKey(keycloakID string) string {
	return "account:kc:" + keycloakID
}

func (s *AccountService) Create(ctx context.Context, account *models.Account) error {
	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Debug("Created local account",
		zap.String("keycloak_id", account.KeycloakID),
		zap.String("email", account.Email))

	return nil
}

func (s *AccountService) GetByKeycloakID(ctx context.Context, keycloakID string) (*models.Account, error) {
	if s.cache != nil {
		var cached models.Account
		if err := s.cache.Get(ctx, accountCacheKey(keycloakID), &cached); err == nil {
			return &cached, nil
		}
	}

	var account models.Account
	err := s.db.WithContext(ctx).Where("keycloak_id = ?", keycloakID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, accountCacheKey(keycloakID), &account, constants.DefaultCacheTTL); err != nil {
			s.logger.Warn("Failed to cache account", zap.Error(err))
		}
	}

	return &account, nil
}

func (s *AccountService) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	return &account, nil
}

func (s *AccountService) List(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := s.db.WithContext(ctx).Order("created_at").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	return accounts, nil
}

func (s *AccountService) DeleteByKeycloakID(ctx context.Context, keycloakID string) error {
	result := s.db.WithContext(ctx).Where("keycloak_id = ?", keycloakID).Delete(&models.Account{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, accountCacheKey(keycloakID)); err != nil {
			s.logger.Warn("Failed to invalidate account cache", zap.Error(err))
		}
	}

	return nil
}
