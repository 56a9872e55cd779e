package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables holding the API credentials.
const (
	EnvClientID     = "NAVER_CLIENT_ID"
	EnvClientSecret = "NAVER_CLIENT_SECRET"
)

// ErrMissingCredentials is returned when the API credentials are not set.
var ErrMissingCredentials = errors.New("API credentials are not set")

// Credentials authenticate against the news search API.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// LoadCredentials reads the credentials from the environment after loading
// the given .env files. Missing .env files are ignored; variables already set
// in the environment take precedence.
func LoadCredentials(envFiles ...string) (Credentials, error) {
	for _, f := range envFiles {
		if f == "" {
			continue
		}

		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Credentials{}, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	creds := Credentials{
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
	}

	if creds.ClientID == "" || creds.ClientSecret == "" {
		return creds, fmt.Errorf("%w: set %s and %s", ErrMissingCredentials, EnvClientID, EnvClientSecret)
	}

	return creds, nil
}

// String hides the secret.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{ClientID: %s, ClientSecret: ***}", c.ClientID)
}
