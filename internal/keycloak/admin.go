package keycloak

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// AdminClient holds the single authenticated session to the Keycloak admin
// API. The administrative token is obtained against the admin realm and
// cached until shortly before expiry; every request is retried once on 401
// after invalidating the cached token. The client is constructed once at
// startup and shared by all services, so the token cache is guarded by a
// mutex.
type AdminClient struct {
	baseURL    string
	adminRealm string
	adminUser  string
	adminPass  string
	logger     *zap.Logger
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewAdminClient(baseURL, adminRealm, adminUser, adminPass string, skipTLSVerify bool, caCertPath string, logger *zap.Logger) *AdminClient {
	transport := &http.Transport{}

	if skipTLSVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true, // #nosec G402 -- User explicitly configured to skip TLS verification
			MinVersion:         tls.VersionTLS12,
		}
	} else if caCertPath != "" {
		caCert, err := os.ReadFile(filepath.Clean(caCertPath))
		if err == nil {
			caCertPool := x509.NewCertPool()
			if caCertPool.AppendCertsFromPEM(caCert) {
				transport.TLSClientConfig = &tls.Config{
					RootCAs:    caCertPool,
					MinVersion: tls.VersionTLS12,
				}
			}
		}
	}

	return &AdminClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		adminRealm: adminRealm,
		adminUser:  adminUser,
		adminPass:  adminPass,
		logger:     logger,
		httpClient: &http.Client{Timeout: 30 * time.Second, Transport: transport},
	}
}

func (c *AdminClient) BaseURL() string {
	return c.baseURL
}

func (c *AdminClient) HTTPClient() *http.Client {
	return c.httpClient
}

// TestAuthentication forces a fresh admin token. Called once at startup so a
// misconfigured admin credential fails the boot instead of the first request.
func (c *AdminClient) TestAuthentication(ctx context.Context) error {
	c.invalidateToken()

	if _, err := c.getAccessToken(ctx); err != nil {
		return fmt.Errorf("admin authentication test failed: %w", err)
	}

	c.logger.Debug("Keycloak admin authentication test successful")
	return nil
}

type UserRepresentation struct {
	ID            string                     `json:"id,omitempty"`
	Username      string                     `json:"username"`
	Email         string                     `json:"email,omitempty"`
	FirstName     string                     `json:"firstName,omitempty"`
	LastName      string                     `json:"lastName,omitempty"`
	Enabled       bool                       `json:"enabled"`
	EmailVerified bool                       `json:"emailVerified"`
	Attributes    map[string][]string        `json:"attributes,omitempty"`
	Credentials   []CredentialRepresentation `json:"credentials,omitempty"`
}

type CredentialRepresentation struct {
	Type      string `json:"type"`
	Value     string `json:"value,omitempty"`
	Temporary bool   `json:"temporary"`
}

type RoleRepresentation struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Composite   bool   `json:"composite"`
	ClientRole  bool   `json:"clientRole"`
	ContainerID string `json:"containerId,omitempty"`
}

type ClientRepresentation struct {
	ID       string `json:"id,omitempty"`
	ClientID string `json:"clientId"`
	Name     string `json:"name,omitempty"`
	Enabled  bool   `json:"enabled"`
}

// getAccessToken returns the cached admin token, fetching a fresh one when
// it is missing or about to expire. The mutex is held across the refresh so
// concurrent callers never race on the cache and at most one token request
// is in flight.
func (c *AdminClient) getAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Now().Before(c.tokenExpiry) && c.accessToken != "" {
		return c.accessToken, nil
	}

	tokenURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", c.baseURL, c.adminRealm)

	data := url.Values{}
	data.Set("grant_type", "password")
	data.Set("client_id", "admin-cli")
	data.Set("username", c.adminUser)
	data.Set("password", c.adminPass)

	req, err := http.NewRequestWithContext(ctx, "POST", tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", NewError(KindIdPUnavailable, "could not reach the identity provider", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if len(body) > 0 {
			c.logger.Debug("Admin token request error details",
				zap.Int("status", resp.StatusCode),
				zap.String("response", string(body)))
		}
		return "", fmt.Errorf("admin token request failed with status %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode admin token response: %w", err)
	}

	c.accessToken = tokenResp.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn-60) * time.Second)

	c.logger.Debug("Obtained Keycloak admin access token",
		zap.String("username", c.adminUser),
		zap.Int("expires_in", tokenResp.ExpiresIn))

	return c.accessToken, nil
}

func (c *AdminClient) invalidateToken() {
	c.mu.Lock()
	c.accessToken = ""
	c.tokenExpiry = time.Time{}
	c.mu.Unlock()
}

func (c *AdminClient) makeRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	return c.makeRequestWithRetry(ctx, method, path, body, false)
}

func (c *AdminClient) makeRequestWithRetry(ctx context.Context, method, path string, body interface{}, isRetry bool) (*http.Response, error) {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin access token: %w", err)
	}

	reqURL := fmt.Sprintf("%s/admin/realms%s", c.baseURL, path)

	var reqBody *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewError(KindIdPUnavailable, "could not reach the identity provider", err)
	}

	if resp.StatusCode == http.StatusUnauthorized && !isRetry {
		resp.Body.Close()
		c.logger.Debug("Received 401, invalidating admin token and retrying",
			zap.String("method", method), zap.String("path", path))
		c.invalidateToken()
		return c.makeRequestWithRetry(ctx, method, path, body, true)
	}

	return resp, nil
}

// CreateUser issues the principal creation call. The created id is not
// returned; callers resolve it afterwards with FindUserByUsername, matching
// the admin API contract where creation only yields a Location header.
func (c *AdminClient) CreateUser(ctx context.Context, realmName string, user *UserRepresentation) error {
	resp, err := c.makeRequest(ctx, "POST", fmt.Sprintf("/%s/users", realmName), user)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return NewError(KindDuplicateIdentifier, "an account with this identifier already exists", nil)
	}

	if resp.StatusCode != http.StatusCreated {
		return NewError(KindProvisioningFailed, "could not create the account",
			fmt.Errorf("create user failed with status %d", resp.StatusCode))
	}

	c.logger.Info("Created Keycloak user",
		zap.String("realm", realmName),
		zap.String("username", user.Username))

	return nil
}

// FindUserByUsername resolves a principal by exact username match. Exactly
// one match is required; zero matches classify as UserNotFound.
func (c *AdminClient) FindUserByUsername(ctx context.Context, realmName, username string) (*UserRepresentation, error) {
	path := fmt.Sprintf("/%s/users?username=%s&exact=true", realmName, url.QueryEscape(username))
	resp, err := c.makeRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search user failed with status %d", resp.StatusCode)
	}

	var users []UserRepresentation
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("failed to decode users response: %w", err)
	}

	if len(users) == 0 {
		return nil, NewError(KindUserNotFound, "user not found", nil)
	}
	if len(users) > 1 {
		return nil, fmt.Errorf("username %q matched %d users in realm %s", username, len(users), realmName)
	}

	return &users[0], nil
}

// FindUserByEmail resolves a principal by exact email match, filtering the
// search result to the requested address since the admin API search is
// case-insensitive and may over-match.
func (c *AdminClient) FindUserByEmail(ctx context.Context, realmName, email string) (*UserRepresentation, error) {
	path := fmt.Sprintf("/%s/users?email=%s&exact=true", realmName, url.QueryEscape(email))
	resp, err := c.makeRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search user by email failed with status %d", resp.StatusCode)
	}

	var users []UserRepresentation
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("failed to decode users response: %w", err)
	}

	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return &users[i], nil
		}
	}

	return nil, NewError(KindUserNotFound, "user not found", nil)
}

func (c *AdminClient) DeleteUser(ctx context.Context, realmName, userID string) error {
	resp, err := c.makeRequest(ctx, "DELETE", fmt.Sprintf("/%s/users/%s", realmName, userID), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return NewError(KindUserNotFound, "user not found", nil)
	}

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("delete user failed with status %d", resp.StatusCode)
	}

	c.logger.Info("Deleted Keycloak user",
		zap.String("realm", realmName),
		zap.String("user_id", userID))

	return nil
}

func (c *AdminClient) ListUsers(ctx context.Context, realmName string) ([]UserRepresentation, error) {
	resp, err := c.makeRequest(ctx, "GET", fmt.Sprintf("/%s/users", realmName), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list users failed with status %d", resp.StatusCode)
	}

	var users []UserRepresentation
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("failed to decode users response: %w", err)
	}

	return users, nil
}

func (c *AdminClient) GetRealmRole(ctx context.Context, realmName, roleName string) (*RoleRepresentation, error) {
	resp, err := c.makeRequest(ctx, "GET", fmt.Sprintf("/%s/roles/%s", realmName, url.PathEscape(roleName)), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, NewError(KindRoleNotFound, fmt.Sprintf("role %s not found", roleName), nil)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get role failed with status %d", resp.StatusCode)
	}

	var role RoleRepresentation
	if err := json.NewDecoder(resp.Body).Decode(&role); err != nil {
		return nil, fmt.Errorf("failed to decode role response: %w", err)
	}

	return &role, nil
}

func (c *AdminClient) AssignRealmRoles(ctx context.Context, realmName, userID string, roles []RoleRepresentation) error {
	path := fmt.Sprintf("/%s/users/%s/role-mappings/realm", realmName, userID)
	resp, err := c.makeRequest(ctx, "POST", path, roles)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("assign realm roles failed with status %d", resp.StatusCode)
	}

	roleNames := make([]string, len(roles))
	for i, role := range roles {
		roleNames[i] = role.Name
	}

	c.logger.Info("Assigned realm roles to user",
		zap.String("realm", realmName),
		zap.String("user_id", userID),
		zap.Strings("roles", roleNames))

	return nil
}

// GetEffectiveRealmRoles returns the composite realm-level role set as the
// IdP computes it, preserving the IdP's ordering.
func (c *AdminClient) GetEffectiveRealmRoles(ctx context.Context, realmName, userID string) ([]RoleRepresentation, error) {
	path := fmt.Sprintf("/%s/users/%s/role-mappings/realm/composite", realmName, userID)
	resp, err := c.makeRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, NewError(KindUserNotFound, "user not found", nil)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get effective realm roles failed with status %d", resp.StatusCode)
	}

	var roles []RoleRepresentation
	if err := json.NewDecoder(resp.Body).Decode(&roles); err != nil {
		return nil, fmt.Errorf("failed to decode roles response: %w", err)
	}

	return roles, nil
}

// GetClientByClientID resolves a client application by its clientId (the
// human identifier, not the internal UUID).
func (c *AdminClient) GetClientByClientID(ctx context.Context, realmName, clientID string) (*ClientRepresentation, error) {
	path := fmt.Sprintf("/%s/clients?clientId=%s", realmName, url.QueryEscape(clientID))
	resp, err := c.makeRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get client failed with status %d", resp.StatusCode)
	}

	var clients []ClientRepresentation
	if err := json.NewDecoder(resp.Body).Decode(&clients); err != nil {
		return nil, fmt.Errorf("failed to decode clients response: %w", err)
	}

	if len(clients) == 0 {
		return nil, NewError(KindClientNotFound, fmt.Sprintf("client %s not found", clientID), nil)
	}

	return &clients[0], nil
}

func (c *AdminClient) GetClientRole(ctx context.Context, realmName, clientUUID, roleName string) (*RoleRepresentation, error) {
	path := fmt.Sprintf("/%s/clients/%s/roles/%s", realmName, clientUUID, url.PathEscape(roleName))
	resp, err := c.makeRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, NewError(KindRoleNotFound, fmt.Sprintf("role %s not found", roleName), nil)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get client role failed with status %d", resp.StatusCode)
	}

	var role RoleRepresentation
	if err := json.NewDecoder(resp.Body).Decode(&role); err != nil {
		return nil, fmt.Errorf("failed to decode role response: %w", err)
	}

	return &role, nil
}

func (c *AdminClient) AssignClientRoles(ctx context.Context, realmName, userID, clientUUID string, roles []RoleRepresentation) error {
	path := fmt.Sprintf("/%s/users/%s/role-mappings/clients/%s", realmName, userID, clientUUID)
	resp, err := c.makeRequest(ctx, "POST", path, roles)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("assign client roles failed with status %d", resp.StatusCode)
	}

	c.logger.Info("Assigned client roles to user",
		zap.String("realm", realmName),
		zap.String("user_id", userID),
		zap.String("client", clientUUID))

	return nil
}

// ExecuteActionsEmail triggers required-action emails (VERIFY_EMAIL,
// UPDATE_PASSWORD). Delivery is asynchronous on the IdP side.
func (c *AdminClient) ExecuteActionsEmail(ctx context.Context, realmName, userID string, actions []string) error {
	path := fmt.Sprintf("/%s/users/%s/execute-actions-email", realmName, userID)
	resp, err := c.makeRequest(ctx, "PUT", path, actions)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return NewError(KindUserNotFound, "user not found", nil)
	}

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("execute actions email failed with status %d: %s", resp.StatusCode, string(body))
	}

	c.logger.Info("Triggered email actions",
		zap.String("realm", realmName),
		zap.String("user_id", userID),
		zap.Strings("actions", actions))

	return nil
}
