package domain

import "time"

// TokenPair is what login and refresh return: a short-lived access token and
// a long-lived refresh token, both JWTs signed with the session's keys.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type,omitempty"` // typically "Bearer"
	ExpiresIn    time.Duration `json:"expires_in"`           // access token lifetime
}
