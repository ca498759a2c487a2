package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"intelligent-chatbot/backend/pkg/logger"

	vault "github.com/hashicorp/vault/api"
)

var (
	ErrSecretNotFound = errors.New("secret not found")
	ErrNoVaultToken   = errors.New("no vault token provided")
	ErrNoVaultAddress = errors.New("no vault address provided")
)

// VaultConfig holds configuration for the Vault client.
type VaultConfig struct {
	Address     string
	Token       string
	Namespace   string
	Timeout     time.Duration
	MaxRetries  int
	SecretsPath string
}

// VaultManager resolves secrets from HashiCorp Vault, with an in-memory
// cache and environment-variable fallback for keys absent from Vault.
type VaultManager struct {
	client   *vault.Client
	config   VaultConfig
	cache    map[string]cachedSecret
	mu       sync.RWMutex
	log      *logger.Logger
	cacheTTL time.Duration
}

type cachedSecret struct {
	value     string
	fetchedAt time.Time
}

// NewVaultManager creates a new Vault manager from environment configuration.
func NewVaultManager(log *logger.Logger) (*VaultManager, error) {
	config := VaultConfig{
		Address:     os.Getenv("VAULT_ADDR"),
		Token:       os.Getenv("VAULT_TOKEN"),
		Namespace:   os.Getenv("VAULT_NAMESPACE"),
		SecretsPath: os.Getenv("VAULT_SECRETS_PATH"),
		Timeout:     10 * time.Second,
		MaxRetries:  3,
	}

	if config.Address == "" {
		return nil, ErrNoVaultAddress
	}
	if config.Token == "" {
		return nil, ErrNoVaultToken
	}
	if config.SecretsPath == "" {
		config.SecretsPath = "secret/data/chatbot"
	}

	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = config.Address
	vaultConfig.Timeout = config.Timeout
	vaultConfig.MaxRetries = config.MaxRetries

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	client.SetToken(config.Token)
	if config.Namespace != "" {
		client.SetNamespace(config.Namespace)
	}

	return &VaultManager{
		client:   client,
		config:   config,
		cache:    make(map[string]cachedSecret),
		log:      log,
		cacheTTL: 5 * time.Minute,
	}, nil
}

// GetSecret retrieves a secret by key, preferring the cache, then
// Vault, then the process environment.
func (m *VaultManager) GetSecret(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	if cached, ok := m.cache[key]; ok && time.Since(cached.fetchedAt) < m.cacheTTL {
		m.mu.RUnlock()
		return cached.value, nil
	}
	m.mu.RUnlock()

	secret, err := m.client.Logical().ReadWithContext(ctx, m.config.SecretsPath)
	if err != nil {
		m.log.Warn("vault read failed, falling back to environment", "key", key, "error", err.Error())
		return envFallback(key)
	}

	value, ok := extractValue(secret, key)
	if !ok {
		return envFallback(key)
	}

	m.mu.Lock()
	m.cache[key] = cachedSecret{value: value, fetchedAt: time.Now()}
	m.mu.Unlock()

	return value, nil
}

// GetSecretWithDefault retrieves a secret with a default value if not found.
func (m *VaultManager) GetSecretWithDefault(ctx context.Context, key, defaultValue string) string {
	value, err := m.GetSecret(ctx, key)
	if err != nil {
		return defaultValue
	}
	return value
}

func envFallback(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", ErrSecretNotFound
}

// extractValue digs the named field out of a KV v2 secret payload.
func extractValue(secret *vault.Secret, key string) (string, bool) {
	if secret == nil || secret.Data == nil {
		return "", false
	}

	data := secret.Data
	if inner, ok := data["data"].(map[string]interface{}); ok {
		data = inner
	}

	value, ok := data[key].(string)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}
