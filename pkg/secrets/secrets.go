package secrets

import (
	"context"
	"os"

	"intelligent-chatbot/backend/pkg/logger"
)

// Manager provides access to secrets from various sources. Provider API
// keys for the completion gateway are resolved through a Manager so the
// credential store can be swapped without touching the gateway.
type Manager interface {
	// GetSecret retrieves a secret by key.
	GetSecret(ctx context.Context, key string) (string, error)

	// GetSecretWithDefault retrieves a secret with a default value if not found.
	GetSecretWithDefault(ctx context.Context, key, defaultValue string) string
}

// NewManager returns the configured secrets manager: Vault when enabled
// via environment, otherwise plain environment variables.
func NewManager(log *logger.Logger) (Manager, error) {
	if enabled := os.Getenv("VAULT_ENABLED"); enabled == "true" || enabled == "1" {
		return NewVaultManager(log)
	}
	return EnvManager{}, nil
}

// EnvManager reads secrets from environment variables.
type EnvManager struct{}

// GetSecret retrieves a secret from the environment.
func (EnvManager) GetSecret(ctx context.Context, key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", ErrSecretNotFound
	}
	return value, nil
}

// GetSecretWithDefault retrieves a secret with a default value if not found.
func (EnvManager) GetSecretWithDefault(ctx context.Context, key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
