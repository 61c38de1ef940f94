package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/Vitorass0/sgu-auth-server/internal/config"
	"github.com/Vitorass0/sgu-auth-server/internal/constants"
	"github.com/Vitorass0/sgu-auth-server/internal/keycloak"
	"github.com/Vitorass0/sgu-auth-server/internal/models"
)

// TokenService fronts the IdP token endpoint for the application realm. It
// authenticates with the confidential client credentials and refines the
// IdP's coarse HTTP statuses into the error kinds the handlers map from.
type TokenService struct {
	httpClient   *http.Client
	baseURL      string
	realm        string
	clientID     string
	clientSecret string
	admin        IdentityAdmin
	roles        RoleResolver
	gate         EmailVerificationGate
	logger       *zap.Logger
}

func NewTokenService(cfg config.KeycloakConfig, httpClient *http.Client, admin IdentityAdmin, roles RoleResolver, gate EmailVerificationGate, logger *zap.Logger) *TokenService {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.HTTPClientTimeout}
	}

	return &TokenService{
		httpClient:   httpClient,
		baseURL:      strings.TrimSuffix(cfg.URL, "/"),
		realm:        cfg.Realm,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		admin:        admin,
		roles:        roles,
		gate:         gate,
		logger:       logger,
	}
}

func (s *TokenService) tokenURL() string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", s.baseURL, s.realm)
}

func (s *TokenService) logoutURL() string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/logout", s.baseURL, s.realm)
}

// Login exchanges the identifier and password for a token pair via the
// password grant. A 401 is refined through the verification gate: an
// unverified email reports EmailNotVerified, anything else reports
// InvalidCredentials. On success the response is enriched with the
// principal's effective realm role names.
func (s *TokenService) Login(ctx context.Context, identifier, password string) (*models.TokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", constants.GrantTypePassword)
	data.Set("client_id", s.clientID)
	data.Set("client_secret", s.clientSecret)
	data.Set("username", identifier)
	data.Set("password", password)

	resp, err := s.postForm(ctx, s.tokenURL(), data, "")
	if err != nil {
		return nil, keycloak.NewError(keycloak.KindIdPUnavailable, "could not reach the identity provider", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, s.classifyUnauthorized(ctx, identifier)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		s.logger.Warn("Login rejected by identity provider",
			zap.Int("status", resp.StatusCode),
			zap.String("response", string(body)))
		return nil, keycloak.NewError(keycloak.KindAuthenticationFailed, "authentication failed",
			fmt.Errorf("token endpoint returned status %d", resp.StatusCode))
	}

	var token models.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, keycloak.NewError(keycloak.KindAuthenticationFailed, "authentication failed",
			fmt.Errorf("failed to decode token response: %w", err))
	}

	if err := s.enrichWithRoles(ctx, identifier, &token); err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", zap.String("identifier", identifier))

	return &token, nil
}

// classifyUnauthorized turns the token endpoint's 401 into the right error
// kind. The gate fails open, so a lookup failure inside it still yields the
// credential error rather than leaking account existence.
func (s *TokenService) classifyUnauthorized(ctx context.Context, identifier string) error {
	verified, err := s.gate.IsEmailVerified(ctx, identifier)
	if err != nil {
		s.logger.Warn("Email verification check failed during login",
			zap.String("identifier", identifier),
			zap.Error(err))
		verified = true
	}

	if !verified {
		return keycloak.NewError(keycloak.KindEmailNotVerified, "email address has not been verified", nil)
	}

	return keycloak.NewError(keycloak.KindInvalidCredentials, "invalid credentials", nil)
}

func (s *TokenService) enrichWithRoles(ctx context.Context, identifier string, token *models.TokenResponse) error {
	user, err := s.admin.FindUserByUsername(ctx, s.realm, identifier)
	if err != nil {
		return fmt.Errorf("failed to resolve authenticated principal: %w", err)
	}

	roles, err := s.roles.EffectiveRealmRoles(ctx, user.ID)
	if err != nil {
		return err
	}

	token.Roles = roles
	return nil
}

// RefreshToken exchanges a refresh token for a new token pair. The response
// is not role-enriched; clients keep the roles from the original login.
func (s *TokenService) RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", constants.GrantTypeRefreshToken)
	data.Set("client_id", s.clientID)
	data.Set("client_secret", s.clientSecret)
	data.Set("refresh_token", refreshToken)

	resp, err := s.postForm(ctx, s.tokenURL(), data, "")
	if err != nil {
		return nil, keycloak.NewError(keycloak.KindIdPUnavailable, "could not reach the identity provider", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, keycloak.NewError(keycloak.KindRefreshFailed, "could not refresh the session",
			fmt.Errorf("token endpoint returned status %d", resp.StatusCode))
	}

	var token models.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, keycloak.NewError(keycloak.KindRefreshFailed, "could not refresh the session",
			fmt.Errorf("failed to decode token response: %w", err))
	}

	return &token, nil
}

// Logout revokes the session at the IdP. The access token authenticates the
// call and the refresh token identifies the session to end.
func (s *TokenService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	data := url.Values{}
	data.Set("client_id", s.clientID)
	data.Set("client_secret", s.clientSecret)
	data.Set("refresh_token", refreshToken)

	resp, err := s.postForm(ctx, s.logoutURL(), data, accessToken)
	if err != nil {
		return keycloak.NewError(keycloak.KindIdPUnavailable, "could not reach the identity provider", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return keycloak.NewError(keycloak.KindLogoutFailed, "could not end the session",
			fmt.Errorf("logout endpoint returned status %d", resp.StatusCode))
	}

	s.logger.Info("User logged out")

	return nil
}

func (s *TokenService) postForm(ctx context.Context, endpoint string, data url.Values, bearerToken string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if bearerToken != "" {
		req.Header.Set("Authorization", constants.BearerTokenPrefix+bearerToken)
	}

	return s.httpClient.Do(req)
}
