package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/kevin07696/paynearme-callbacks/internal/domain/ports"
)

// LocalSource reads the shared secret from a file on disk.
// WARNING: development only. Use AWS Secrets Manager or Vault in production.
type LocalSource struct {
	path   string
	logger *zap.Logger
}

// NewLocalSource creates a filesystem-backed secret source.
func NewLocalSource(path string, logger *zap.Logger) *LocalSource {
	return &LocalSource{
		path:   path,
		logger: logger,
	}
}

// SharedSecret reads and trims the secret file.
func (s *LocalSource) SharedSecret(ctx context.Context) (string, error) {
	s.logger.Debug("Reading shared secret from filesystem",
		zap.String("path", s.path),
	)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("secret file not found: %s", s.path)
		}
		return "", fmt.Errorf("failed to read secret file: %w", err)
	}

	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return "", fmt.Errorf("secret file is empty: %s", s.path)
	}
	return secret, nil
}

var _ ports.SecretSource = (*LocalSource)(nil)
