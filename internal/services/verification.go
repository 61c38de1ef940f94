package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/Vitorass0/sgu-auth-server/internal/keycloak"
)

// VerificationService answers whether a principal's email address has been
// verified. It deliberately fails open: an identifier that resolves to no
// principal reports verified, so the caller falls through to the credential
// error instead of leaking which addresses exist.
type VerificationService struct {
	admin  IdentityAdmin
	realm  string
	logger *zap.Logger
}

func NewVerificationService(admin IdentityAdmin, realm string, logger *zap.Logger) *VerificationService {
	return &VerificationService{
		admin:  admin,
		realm:  realm,
		logger: logger,
	}
}

func (s *VerificationService) IsEmailVerified(ctx context.Context, identifier string) (bool, error) {
	user, err := s.admin.FindUserByEmail(ctx, s.realm, identifier)
	if err != nil {
		if keycloak.IsKind(err, keycloak.KindUserNotFound) {
			return true, nil
		}
		return false, err
	}

	return user.EmailVerified, nil
}

// ListUnverified returns every principal in the realm whose email has not
// been verified yet.
func (s *VerificationService) ListUnverified(ctx context.Context) ([]keycloak.UserRepresentation, error) {
	users, err := s.admin.ListUsers(ctx, s.realm)
	if err != nil {
		return nil, err
	}

	unverified := make([]keycloak.UserRepresentation, 0)
	for _, user := range users {
		if !user.EmailVerified {
			unverified = append(unverified, user)
		}
	}

	s.logger.Debug("Listed unverified users", zap.Int("count", len(unverified)))

	return unverified, nil
}
