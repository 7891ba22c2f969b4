package domain

import (
	"fmt"
	"strings"
)

// MinAPIKeyLength is the shortest API key accepted by validation.
// Dify dataset keys are considerably longer; anything shorter is a paste error.
const MinAPIKeyLength = 10

// MinPasswordLength is the minimum console password length accepted.
const MinPasswordLength = 6

// InstanceConfig holds everything needed to talk to one Dify instance:
// the token-authenticated content API and, optionally, the
// session-authenticated console API.
type InstanceConfig struct {
	// BaseURL is the content API base, e.g. "https://api.dify.example/v1".
	BaseURL string

	// APIKey is the dataset API key used as a bearer token on the content API.
	APIKey string

	// Email and Password are console API credentials. Both empty disables
	// app/workflow operations on this instance.
	Email    string
	Password string

	// AllowInsecureFallback permits a single retry with certificate
	// verification disabled after a TLS failure. Off unless explicitly
	// enabled for self-signed internal deployments.
	AllowInsecureFallback bool
}

// Validate normalises and checks the configuration.
// It mutates the receiver to strip whitespace and trailing slashes.
func (c *InstanceConfig) Validate() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.Email = strings.TrimSpace(c.Email)

	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("%w: base URL must start with http:// or https://, got %q", ErrInvalidConfig, c.BaseURL)
	}
	if len(c.APIKey) < MinAPIKeyLength {
		return fmt.Errorf("%w: API key too short (minimum %d characters)", ErrInvalidConfig, MinAPIKeyLength)
	}

	switch {
	case c.Email == "" && c.Password == "":
		// Console API disabled; valid.
	case c.Email == "":
		return fmt.Errorf("%w: email required when password is provided", ErrInvalidConfig)
	case c.Password == "":
		return fmt.Errorf("%w: password required when email is provided", ErrInvalidConfig)
	default:
		if !validEmail(c.Email) {
			return fmt.Errorf("%w: invalid email format: %q", ErrInvalidConfig, c.Email)
		}
		if len(c.Password) < MinPasswordLength {
			return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidConfig, MinPasswordLength)
		}
	}

	return nil
}

// HasConsoleCredentials reports whether console API operations are available.
func (c *InstanceConfig) HasConsoleCredentials() bool {
	return c.Email != "" && c.Password != ""
}

// ConsoleBaseURL derives the console API base from the content API base.
// Console endpoints live above the versioned segment, so "/v1" is stripped.
func (c *InstanceConfig) ConsoleBaseURL() string {
	return strings.TrimSuffix(c.BaseURL, "/v1")
}

// Redacted returns a loggable representation with the key masked.
func (c *InstanceConfig) Redacted() string {
	masked := "***"
	if len(c.APIKey) > 14 {
		masked = c.APIKey[:10] + "..." + c.APIKey[len(c.APIKey)-4:]
	}
	return fmt.Sprintf("InstanceConfig{base_url: %s, api_key: %s, console: %t}",
		c.BaseURL, masked, c.HasConsoleCredentials())
}

// validEmail performs the minimal shape check: one "@", non-empty local and
// domain parts, and a dot in the domain.
func validEmail(email string) bool {
	local, dom, ok := strings.Cut(email, "@")
	if !ok || local == "" || dom == "" {
		return false
	}
	return !strings.Contains(dom, "@") && strings.Contains(dom, ".")
}
