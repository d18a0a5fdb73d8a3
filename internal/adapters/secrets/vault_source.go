package secrets

import (
	"context"
	"fmt"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"

	"github.com/kevin07696/paynearme-callbacks/internal/domain/ports"
)

// VaultSourceConfig contains configuration for the HashiCorp Vault source.
type VaultSourceConfig struct {
	// Vault server address (e.g., "https://vault.example.com:8200")
	Address string

	// Token for token authentication
	Token string

	// KV v2 mount path (default: "secret")
	MountPath string

	// Path of the secret under the mount, with a "value" field
	SecretPath string

	// Cache TTL for the secret (default: 5 minutes)
	CacheTTL time.Duration
}

// VaultSource implements SecretSource against Vault's KV v2 engine.
type VaultSource struct {
	client *vault.Client
	config *VaultSourceConfig
	logger *zap.Logger
	cache  *secretCache
}

// NewVaultSource creates a Vault-backed secret source.
func NewVaultSource(cfg *VaultSourceConfig, logger *zap.Logger) (*VaultSource, error) {
	if cfg.MountPath == "" {
		cfg.MountPath = "secret"
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("create vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	return &VaultSource{
		client: client,
		config: cfg,
		logger: logger,
		cache:  newSecretCache(cfg.CacheTTL),
	}, nil
}

// SharedSecret fetches the "value" field of the configured KV v2 secret,
// serving from cache within the TTL.
func (s *VaultSource) SharedSecret(ctx context.Context) (string, error) {
	if value, ok := s.cache.get(); ok {
		return value, nil
	}

	kv, err := s.client.KVv2(s.config.MountPath).Get(ctx, s.config.SecretPath)
	if err != nil {
		return "", fmt.Errorf("read vault secret %s: %w", s.config.SecretPath, err)
	}

	value, ok := kv.Data["value"].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("vault secret %s missing 'value' field", s.config.SecretPath)
	}

	s.logger.Debug("Fetched shared secret from Vault",
		zap.String("mount", s.config.MountPath),
		zap.String("path", s.config.SecretPath),
	)
	s.cache.set(value)
	return value, nil
}

var _ ports.SecretSource = (*VaultSource)(nil)
