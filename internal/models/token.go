package models

// TokenResponse mirrors the IdP token endpoint payload, extended with the
// authenticated principal's effective realm role names. Constructed fresh
// per login/refresh call, never persisted.
type TokenResponse struct {
	AccessToken      string   `json:"access_token"`
	ExpiresIn        int      `json:"expires_in"`
	RefreshExpiresIn int      `json:"refresh_expires_in"`
	RefreshToken     string   `json:"refresh_token"`
	TokenType        string   `json:"token_type"`
	NotBeforePolicy  int      `json:"not-before-policy"`
	SessionState     string   `json:"session_state"`
	Scope            string   `json:"scope"`
	Roles            []string `json:"roles,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
