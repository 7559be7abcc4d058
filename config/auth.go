package config

import "time"

// AuthConfig contains session and password hashing configuration.
type AuthConfig struct {
	// SessionTTL is how long a login session stays valid.
	SessionTTL time.Duration `env:"AUTH_SESSION_TTL" envDefault:"24h"`

	// BcryptCost is the bcrypt work factor for password hashing.
	// Zero uses the library default.
	BcryptCost int `env:"AUTH_BCRYPT_COST" envDefault:"0"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.SessionTTL < time.Minute {
		a.SessionTTL = time.Minute
	}
	if a.BcryptCost < 0 {
		a.BcryptCost = 0
	}
}
