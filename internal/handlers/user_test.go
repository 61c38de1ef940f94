package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/Vitorass0/sgu-auth-server/internal/keycloak"
	"github.com/Vitorass0/sgu-auth-server/internal/models"
)

type fakeProvisioningService struct {
	createErr     error
	deleteErr     error
	resetErr      error
	roleErr       error
	principalID   string
	unverified    []models.UnverifiedUser
	unverifiedErr error
}

func (f *fakeProvisioningService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.principalID, nil
}

func (f *fakeProvisioningService) DeleteUser(ctx context.Context, principalID string) error {
	return f.deleteErr
}

func (f *fakeProvisioningService) ResetPassword(ctx context.Context, email string) error {
	return f.resetErr
}

func (f *fakeProvisioningService) AddRoleToUser(ctx context.Context, principalID, roleName string) error {
	return f.roleErr
}

func (f *fakeProvisioningService) AddClientRoleToUser(ctx context.Context, principalID, clientID, roleName string) error {
	return f.roleErr
}

func (f *fakeProvisioningService) ListUnverifiedUsers(ctx context.Context) ([]models.UnverifiedUser, error) {
	if f.unverifiedErr != nil {
		return nil, f.unverifiedErr
	}
	return f.unverified, nil
}

func setupUserRouter(t *testing.T, svc ProvisioningServiceInterface) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewUserHandler(svc, zaptest.NewLogger(t))

	router := gin.New()
	router.POST("/users", handler.CreateUser)
	router.DELETE("/users/:id", handler.DeleteUser)
	router.POST("/users/reset-password", handler.ResetPassword)
	router.POST("/users/:id/roles", handler.AddRole)
	router.POST("/users/:id/client-roles", handler.AddClientRole)
	router.GET("/users/unverified", handler.ListUnverified)
	return router
}

func TestCreateUserEndpoint(t *testing.T) {
	validBody := `{"email":"alice@example.com","password":"correct-horse","role":"student"}`

	tests := []struct {
		name           string
		body           string
		createErr      error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "created",
			body:           validBody,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "duplicate identifier",
			body:           validBody,
			createErr:      keycloak.NewError(keycloak.KindDuplicateIdentifier, "an account with this identifier already exists", nil),
			expectedStatus: http.StatusConflict,
			expectedCode:   "DUPLICATE_ACCOUNT",
		},
		{
			name:           "unknown role",
			body:           validBody,
			createErr:      keycloak.NewError(keycloak.KindRoleNotFound, "role ghost not found", nil),
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name:           "provisioning failure",
			body:           validBody,
			createErr:      keycloak.NewError(keycloak.KindProvisioningFailed, "could not send the verification email", nil),
			expectedStatus: http.StatusBadGateway,
			expectedCode:   "PROVISIONING_FAILED",
		},
		{
			name:           "short password",
			body:           `{"email":"alice@example.com","password":"short","role":"student"}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupUserRouter(t, &fakeProvisioningService{
				createErr:   tt.createErr,
				principalID: "user-1",
			})

			req := httptest.NewRequest("POST", "/users", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeErrorCode(t, w.Body.String()))
			}
		})
	}
}

func TestDeleteUserEndpoint(t *testing.T) {
	router := setupUserRouter(t, &fakeProvisioningService{
		deleteErr: keycloak.NewError(keycloak.KindUserNotFound, "user not found", nil),
	})

	req := httptest.NewRequest("DELETE", "/users/ghost", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResetPasswordEndpoint(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		router := setupUserRouter(t, &fakeProvisioningService{})

		req := httptest.NewRequest("POST", "/users/reset-password", strings.NewReader(`{"email":"alice@example.com"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		router := setupUserRouter(t, &fakeProvisioningService{
			resetErr: keycloak.NewError(keycloak.KindUserNotFound, "user not found", nil),
		})

		req := httptest.NewRequest("POST", "/users/reset-password", strings.NewReader(`{"email":"nobody@example.com"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAddClientRoleEndpoint(t *testing.T) {
	router := setupUserRouter(t, &fakeProvisioningService{
		roleErr: keycloak.NewError(keycloak.KindClientNotFound, "client ghost not found", nil),
	})

	req := httptest.NewRequest("POST", "/users/user-1/client-roles",
		strings.NewReader(`{"client_id":"ghost","role":"viewer"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListUnverifiedEndpoint(t *testing.T) {
	router := setupUserRouter(t, &fakeProvisioningService{
		unverified: []models.UnverifiedUser{
			{ID: "2", Username: "bob", Email: "bob@example.com", Enabled: true},
		},
	})

	req := httptest.NewRequest("GET", "/users/unverified", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bob@example.com")
}
