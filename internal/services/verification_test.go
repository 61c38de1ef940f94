package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Vitorass0/sgu-auth-server/internal/keycloak"
)

func TestIsEmailVerified(t *testing.T) {
	tests := []struct {
		name      string
		user      *keycloak.UserRepresentation
		lookupErr error
		expected  bool
		wantErr   bool
	}{
		{
			name:     "verified user",
			user:     &keycloak.UserRepresentation{ID: "1", EmailVerified: true},
			expected: true,
		},
		{
			name:     "unverified user",
			user:     &keycloak.UserRepresentation{ID: "1", EmailVerified: false},
			expected: false,
		},
		{
			name:      "unknown user fails open",
			lookupErr: keycloak.NewError(keycloak.KindUserNotFound, "user not found", nil),
			expected:  true,
		},
		{
			name:      "lookup failure propagates",
			lookupErr: errors.New("search user failed with status 500"),
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admin := &fakeAdmin{
				findUserByEmailFn: func(ctx context.Context, realm, email string) (*keycloak.UserRepresentation, error) {
					if tt.lookupErr != nil {
						return nil, tt.lookupErr
					}
					return tt.user, nil
				},
			}
			svc := NewVerificationService(admin, "sgu", zaptest.NewLogger(t))

			verified, err := svc.IsEmailVerified(context.Background(), "alice@example.com")

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, verified)
			assert.Equal(t, []string{"FindUserByEmail"}, admin.calls, "verification looks principals up by email")
		})
	}
}
